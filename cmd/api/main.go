package main

import (
	"os"

	"github.com/apex/log"
	"github.com/ethanbaker/flagdash/internal/api"
	"github.com/ethanbaker/flagdash/pkg/utils"
)

// Start the API server
func main() {
	// Find env file
	envFile := ".env"
	if os.Getenv("ENV_FILE") != "" {
		envFile = os.Getenv("ENV_FILE")
	}

	// Load global config
	cfg := utils.NewConfigFromEnv(envFile)
	utils.ConfigureLogging(cfg)

	// Start
	if err := api.Start(cfg); err != nil {
		log.WithError(err).Fatal("api server stopped")
	}
}
