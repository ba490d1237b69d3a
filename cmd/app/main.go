package main

import (
	"flag"
	"log"
	"os"

	"SalesCast/internal/di"
	"SalesCast/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path, empty for defaults")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("salescast: config: %v", err)
	}
	log.Printf("salescast: env=%s data=%s sessions=%s archive=%t events=%t",
		cfg.Environment, cfg.Data.Path, cfg.Session.Backend,
		cfg.Archive.ClickHouse.Enabled, cfg.Events.Kafka.Enabled)

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("salescast: init: %v", err)
	}

	// Blocks until SIGINT or SIGTERM.
	if err := app.Run(); err != nil {
		log.Printf("salescast: %v", err)
		os.Exit(1)
	}
}
