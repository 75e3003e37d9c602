package utils

import (
	"os"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
)

// ConfigureLogging installs the cli log handler on stderr at the level
// named by LOG_LEVEL, defaulting to info
func ConfigureLogging(cfg *Config) {
	log.SetHandler(cli.New(os.Stderr))

	level, err := log.ParseLevel(cfg.GetWithDefault("LOG_LEVEL", "info"))
	if err != nil {
		log.WithError(err).Warn("invalid LOG_LEVEL, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
}
