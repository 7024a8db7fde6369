// @title Trading Academy API
// @version 1.0
// @description Course catalog, enrollment and progress tracking for the trading academy.

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"flag"
	"log"

	"trading_academy_backend/internal/app"
	"trading_academy_backend/internal/config"
	"trading_academy_backend/pkg/logger"
)

func main() {
	// Command-line flags
	configDir := flag.String("config", "configs", "directory containing config.yaml")
	noSeed := flag.Bool("no-seed", false, "start with an empty course catalog")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg.NoSeed = *noSeed

	application, err := app.NewApp(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer logger.Log.Sync()

	if err := application.Run(); err != nil {
		logger.Log.Sugar().Errorf("Server stopped: %v", err)
	}
}
