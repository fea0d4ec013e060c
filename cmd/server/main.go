//go:build !js && !wasm
// +build !js,!wasm

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/himanishpuri/studiokit/internal/app"
	"github.com/himanishpuri/studiokit/internal/config"
)

var (
	configPath     string
	port           int
	dbPath         string
	tempDir        string
	outputDir      string
	allowedOrigins string
)

func init() {
	flag.StringVar(&configPath, "config", getEnvOrDefault("STUDIO_CONFIG", config.DefaultPath), "Path to YAML config file")
	flag.IntVar(&port, "port", 0, "HTTP server port (overrides config)")
	flag.StringVar(&dbPath, "db", "", "Path to SQLite database (overrides config)")
	flag.StringVar(&tempDir, "temp", "", "Temporary directory (overrides config)")
	flag.StringVar(&outputDir, "out", "", "Directory for rendered videos (overrides config)")
	flag.StringVar(&allowedOrigins, "origins", "", "Comma-separated list of allowed CORS origins (use * for all)")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if port != 0 {
		cfg.Server.Port = port
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if tempDir != "" {
		cfg.TempDir = tempDir
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	if allowedOrigins != "" {
		cfg.Server.AllowedOrigins = config.SplitList(allowedOrigins)
	}

	service, err := app.NewService(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to create service: %v", err)
	}
	defer service.Close()

	serverConfig := &ServerConfig{
		Port:           cfg.Server.Port,
		DBPath:         cfg.DBPath,
		TempDir:        cfg.TempDir,
		OutputDir:      cfg.OutputDir,
		MaxUploadBytes: cfg.Server.MaxUploadMB << 20,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}

	server, err := NewServer(service, serverConfig)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatalf("Server failed: %v", err)
	case <-sig:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Printf("Shutdown: %v", err)
		}
	}
}
