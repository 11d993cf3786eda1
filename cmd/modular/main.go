package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MasterGenotype/Modular/internal/config"
)

// Exit codes
const (
	ExitSuccess        = 0
	ExitGeneralError   = 1
	ExitInvalidArgs    = 2
	ExitConfigError    = 3
	ExitAPIError       = 4
	ExitStorageError   = 5
	ExitTransferFailed = 6
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return ExitInvalidArgs
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "nexus":
		return runNexus(cmdArgs)
	case "gamebanana":
		return runGameBanana(cmdArgs)
	case "rename":
		return runRename(cmdArgs)
	case "scrape":
		return runScrape(cmdArgs)
	case "help", "-h", "--help":
		printUsage()
		return ExitSuccess
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		return ExitInvalidArgs
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: modular <command> [options]

Commands:
  nexus       Download tracked NexusMods files into object storage
  gamebanana  Download subscribed GameBanana mods into object storage
  rename      Rename numeric NexusMods folders to mod display names
  scrape      Run the download-history scraper script

Run 'modular <command> -h' for command-specific help.`)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\n[modular] Received interrupt, shutting down...")
		cancel()
	}()

	return ctx, cancel
}

// loadConfig resolves the effective configuration: defaults, then the
// config file (the default location is optional, an explicit -config path
// is not), then environment variables, then flag overrides.
func loadConfig(path string, override config.Config) (config.Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := config.DefaultPath()
		if err != nil {
			return config.Config{}, err
		}
		path = p
	}

	cfg := config.Default()
	if _, err := os.Stat(path); err == nil || explicit {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	if err := cfg.LoadFromEnv(); err != nil {
		return config.Config{}, err
	}

	return cfg.Merge(override), nil
}
