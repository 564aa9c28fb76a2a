package main

import (
	"context"

	"prabandam/scraper/internal/config"
	"prabandam/scraper/internal/container"

	log "github.com/sirupsen/logrus"
)

func main() {
	log.Info("Starting Nalayira Divya Prabandham scraper...")

	// Load configuration using viper
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.Info("Configuration loaded successfully")

	// Initialize container with all dependencies
	app, err := container.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	// Run the scrape
	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("Scrape failed: %v", err)
	}

	log.Info("Application finished successfully")
}
