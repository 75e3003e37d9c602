package utils

import (
	"os"
	"strings"

	"github.com/apex/log"
	"github.com/joho/godotenv"
)

// LoadEnv loads environment variables from the given .env files and
// returns the resulting environment. Variables already set in the process
// win over file values, and earlier files win over later ones.
func LoadEnv(files ...string) map[string]string {
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			log.WithError(err).WithField("file", file).Warn("could not load env file")
		}
	}

	config := make(map[string]string)
	for _, env := range os.Environ() {
		if key, value, ok := strings.Cut(env, "="); ok && key != "" {
			config[key] = value
		}
	}

	return config
}

// GetEnvWithDefault returns an environment variable value or a default if not set
func GetEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
