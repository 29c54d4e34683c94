package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/GriffinCanCode/webtop/internal/infrastructure/config"
	"github.com/GriffinCanCode/webtop/internal/infrastructure/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Flags override environment
	flag.StringVar(&cfg.Server.Port, "port", cfg.Server.Port, "Server port")
	flag.StringVar(&cfg.Server.Host, "host", cfg.Server.Host, "Bind address")
	flag.BoolVar(&cfg.Logging.Development, "dev", cfg.Logging.Development, "Development mode (console logs, debug level)")
	flag.StringVar(&cfg.Desktop.CatalogPath, "catalog", cfg.Desktop.CatalogPath, "Icon catalog file or directory")
	flag.StringVar(&cfg.Persistence.Dir, "state-dir", cfg.Persistence.Dir, "Directory for persisted desktop state")
	flag.BoolVar(&cfg.Persistence.Enabled, "persist", cfg.Persistence.Enabled, "Persist desktop state across restarts")
	flag.Parse()

	if cfg.Logging.Development && os.Getenv("LOG_LEVEL") == "" {
		cfg.Logging.Level = "debug"
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := srv.Run(ctx)
	if err := srv.Close(); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	if runErr != nil {
		log.Fatalf("Server error: %v", runErr)
	}
}
