package main

import (
	"flag"
	"fmt"
	"os"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/s3blob"

	"github.com/MasterGenotype/Modular/internal/config"
	"github.com/MasterGenotype/Modular/internal/fetcher"
	"github.com/MasterGenotype/Modular/internal/gamebanana"
	"github.com/MasterGenotype/Modular/internal/httpclient"
	"github.com/MasterGenotype/Modular/internal/progress"
)

// runGameBanana downloads every file of every mod the configured member is
// subscribed to.
func runGameBanana(args []string) int {
	fs := flag.NewFlagSet("gamebanana", flag.ExitOnError)

	configPath := fs.String("config", "", "Config file path (default ~/.config/modular/config.yaml)")
	bucket := fs.String("bucket", "", "Destination bucket URL")
	userID := fs.String("user", "", "GameBanana member id")
	workers := fs.Int("workers", 0, "Number of parallel workers (0 = available parallelism)")
	pacing := fs.Duration("pacing", 0, "Per-worker pause after each request")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: modular gamebanana [options]

Download every file of every GameBanana mod the member is subscribed to
into object storage, under a GameBanana/<mod name>/ prefix.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	cfg, err := loadConfig(*configPath, config.Config{
		Bucket:           *bucket,
		GameBananaUserID: *userID,
		Workers:          *workers,
		Pacing:           *pacing,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitConfigError
	}
	if err := cfg.ValidateGameBanana(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitConfigError
	}

	ctx, cancel := signalContext()
	defer cancel()

	bkt, err := blob.OpenBucket(ctx, cfg.Bucket)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening bucket: %v\n", err)
		return ExitStorageError
	}
	defer bkt.Close()

	sink := progress.NewSink(progress.Options{})
	defer sink.Close()

	hc := httpclient.NewClient(httpclient.Options{
		Timeout:         cfg.Timeout,
		DownloadTimeout: cfg.Timeout,
	})
	client := gamebanana.NewClient(hc)

	results, err := client.DownloadAll(ctx, bkt, cfg.GameBananaUserID, gamebanana.Options{
		Workers: cfg.Workers,
		Fetcher: fetcher.Options{
			Workers:  cfg.Workers,
			Pacing:   cfg.Pacing,
			Attempts: cfg.Retry.Attempts,
			Backoff:  cfg.Retry.Backoff,
			HTTP:     hc,
		},
		Sink: sink,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitAPIError
	}

	return reportResults(results, sink)
}
