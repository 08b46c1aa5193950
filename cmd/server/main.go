// Package main - Entry point for the car price prediction server
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"car-price/internal/config"
	"car-price/internal/logging"
	"car-price/internal/server"
)

func main() {
	configPath := flag.String("config", "", "config file (default is $HOME/.car-price.json)")
	addr := flag.String("addr", "", "Server address")
	uiPath := flag.String("ui", "", "Path to UI files")
	manifest := flag.String("manifest", "", "Artifact manifest")
	flag.Parse()

	path := *configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *uiPath != "" {
		cfg.Server.UIPath = *uiPath
	}
	if *manifest != "" {
		cfg.Artifacts.Manifest = *manifest
	}

	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
	defer logging.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, cfg); err != nil {
		logging.Error("server stopped", zap.Error(err))
		logging.Sync()
		os.Exit(1)
	}
}
