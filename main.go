package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"xiv-profit/internal/api"
	"xiv-profit/internal/config"
	"xiv-profit/internal/db"
	"xiv-profit/internal/logger"
	"xiv-profit/internal/recipes"
	"xiv-profit/internal/universalis"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	flag.Parse()

	// .env is optional; real env vars win either way.
	godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	if err := logger.Configure(logger.Options{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	logger.Banner(version)

	os.MkdirAll(cfg.Data.Dir, 0755)

	database, err := db.Open(cfg.Data.Database)
	if err != nil {
		logger.Error("DB", fmt.Sprintf("Failed to open database: %v", err))
		os.Exit(1)
	}
	defer database.Close()

	if err := database.SeedPresets(api.DefaultPresets()); err != nil {
		logger.Error("DB", fmt.Sprintf("Failed to seed presets: %v", err))
		os.Exit(1)
	}

	catalog, err := recipes.Load(cfg.Data.Dir)
	if err != nil {
		logger.Error("Recipes", fmt.Sprintf("Load failed: %v", err))
		os.Exit(1)
	}
	logger.Success("Recipes", fmt.Sprintf("Loaded %d recipes", len(catalog)))

	market := universalis.NewClient(cfg.Market.BaseURL)
	srv := api.NewServer(cfg, market, catalog, database)

	if err := srv.ListenAndServe(cfg.Addr()); err != nil {
		logger.Error("Server", fmt.Sprintf("Failed: %v", err))
		os.Exit(1)
	}
}
