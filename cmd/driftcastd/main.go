// If you are AI: This is the main entrypoint for the driftcast server.
// It handles configuration loading, server startup, and graceful shutdown.

package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"

	"go.uber.org/zap"

	"driftcast/internal/config"
	"driftcast/internal/logging"
	"driftcast/internal/server"
)

// main is the entrypoint for the driftcast server. It loads configuration,
// starts the server, and handles graceful shutdown.
func main() {
	configPath := flag.String("config", "configs/driftcast.example.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	zlog, err := logging.New(cfg.Server.Debug)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zlog.Sync()

	ctx := context.Background()

	srv, err := server.New(cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to build server", zap.Error(err))
	}

	shutdownHandler := server.NewShutdownHandler(srv, ctx)

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			zlog.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	if err := shutdownHandler.Wait(); err != nil {
		log.Printf("Shutdown error: %v", err)
		os.Exit(1)
	}

	log.Println("Server shut down cleanly")
}
