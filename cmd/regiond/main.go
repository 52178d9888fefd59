package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/iudanet/conflictgen/internal/config"
	"github.com/iudanet/conflictgen/internal/server"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Parse flags
	showVersion := flag.Bool("version", false, "Show version information")
	configPath := flag.String("config", "", "Path to YAML config")
	region := flag.String("region", "", "Region name, e.g. \"West US 2\"")
	listen := flag.String("listen", "", "Listen address")
	dbPath := flag.String("db", "", "Path to SQLite database, :memory: for in-memory")
	hub := flag.String("hub", "", "Hub region for single-master mode (default: this region)")
	peers := flag.String("peers", "", "Peer regions as name=url,...")
	singleMaster := flag.Bool("single-master", false, "Accept writes only in the hub region")
	flag.Parse()

	// Show version and exit if requested
	if *showVersion {
		printVersion()
		return 0
	}

	cfg, err := config.LoadServerConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	// флаги переопределяют файл и окружение
	if *region != "" {
		cfg.Region = *region
	}
	if *listen != "" {
		cfg.Listen = *listen
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *hub != "" {
		cfg.HubRegion = *hub
	}
	if *peers != "" {
		parsed, err := config.ParsePeers(*peers)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid --peers: %v\n", err)
			return 1
		}
		cfg.Peers = parsed
	}
	if *singleMaster {
		cfg.MultiMaster = false
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		return 1
	}

	logger, err := config.NewLogger(cfg.Log, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, cfg, Version, logger)
	if err != nil {
		logger.Error("Failed to start region", "error", err)
		return 1
	}
	defer func() {
		if err := srv.Close(); err != nil {
			logger.Error("failed to close region", "error", err)
		}
	}()

	if err := srv.Run(ctx); err != nil {
		logger.Error("Region stopped with error", "error", err)
		return 1
	}
	logger.Info("Region stopped")
	return 0
}

func printVersion() {
	fmt.Printf("regiond\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
