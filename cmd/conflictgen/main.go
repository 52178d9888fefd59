package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/iudanet/conflictgen/internal/client/cli"
	"github.com/iudanet/conflictgen/internal/client/iocli"
	"github.com/iudanet/conflictgen/internal/client/storage/boltdb"
	"github.com/iudanet/conflictgen/internal/config"
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
	// Глобальные флаги
	showVersion := flag.Bool("version", false, "Show version information")
	configPath := flag.String("config", "", "Path to YAML config")
	journalPath := flag.String("journal", "", "Path to local campaign journal")
	endpoints := flag.String("endpoints", "", "Regions as name=url,... (first region is primary)")
	masterKey := flag.String("master-key", "", "Account master key (not recommended, use env var or file)")
	masterKeyFile := flag.String("master-key-file", "", "Path to file containing the master key")

	flag.Parse()

	// Show version and exit if requested
	if *showVersion {
		printVersion()
		return 0
	}

	stdio := iocli.NewStdio()

	// Получаем команду
	args := flag.Args()
	if len(args) == 0 {
		cli.PrintUsage(stdio)
		return 1
	}
	command := args[0]
	if command == "help" {
		cli.PrintUsage(stdio)
		return 0
	}

	cfg, err := config.LoadClientConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if *endpoints != "" {
		regions, err := config.ParsePeers(*endpoints)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid --endpoints: %v\n", err)
			return 1
		}
		cfg.Regions = regions
	}
	if *journalPath != "" {
		cfg.Journal = *journalPath
	}

	logger, err := config.NewLogger(cfg.Log, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	// Ctrl-C отменяет кампанию на границе раунда
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	key, err := cli.ResolveMasterKey(cfg, cli.MasterKeySources{FromFile: *masterKeyFile, FromArgs: *masterKey}, stdio)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	cfg.MasterKey = key

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		return 1
	}

	// Открываем журнал кампаний
	journal, err := boltdb.New(ctx, cfg.Journal)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open journal: %v\n", err)
		return 1
	}
	defer func() {
		if err := journal.Close(); err != nil {
			logger.Error("failed to close journal", "error", err)
		}
	}()

	dial, err := cli.NewDialer(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	c := cli.New(cfg, stdio, journal, dial, logger)
	if err := c.Run(ctx, command, args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func printVersion() {
	fmt.Printf("conflictgen\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
