package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"CrediTech/internal/di"
	"CrediTech/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	envFile := flag.String("env-file", ".env", "optional dotenv file")
	flag.Parse()

	// Missing .env is normal outside local development.
	if err := godotenv.Load(*envFile); err != nil && !os.IsNotExist(err) {
		log.Printf("dotenv: %v", err)
	}

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	app, cleanup, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}
	defer cleanup()

	log.Printf("env=%s port=%d kafka=%t clickhouse=%t redis=%t",
		cfg.Environment, cfg.Server.Port, cfg.Kafka.Enabled, cfg.ClickHouse.Enabled, cfg.Cache.Redis.Enabled)

	if err := app.Run(context.Background()); err != nil {
		log.Printf("app error: %v", err)
		cleanup()
		os.Exit(1)
	}
}
