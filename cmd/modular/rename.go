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
	"github.com/MasterGenotype/Modular/internal/httpclient"
	"github.com/MasterGenotype/Modular/internal/nexus"
	"github.com/MasterGenotype/Modular/internal/progress"
	"github.com/MasterGenotype/Modular/internal/rename"
)

// runRename renames numeric NexusMods folders in the bucket to the mods'
// display names. Safe to rerun; already renamed folders are skipped.
func runRename(args []string) int {
	fs := flag.NewFlagSet("rename", flag.ExitOnError)

	configPath := fs.String("config", "", "Config file path (default ~/.config/modular/config.yaml)")
	bucket := fs.String("bucket", "", "Bucket URL")
	apiKey := fs.String("api-key", "", "NexusMods API key")
	domains := fs.String("domains", "", "Comma-separated game domains (default: every domain prefix in the bucket)")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: modular rename [options]

Rename the numeric mod folders a download run produced to the mods' display
names, looked up from the NexusMods API.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	override := config.Config{Bucket: *bucket, NexusAPIKey: *apiKey}
	if *domains != "" {
		override.Domains = splitList(*domains)
	}

	cfg, err := loadConfig(*configPath, override)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitConfigError
	}
	if err := cfg.ValidateNexus(); err != nil {
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

	hc := httpclient.NewClient(httpclient.Options{Timeout: cfg.Timeout})
	client := nexus.NewClient(cfg.NexusAPIKey, hc)

	if err := rename.Run(ctx, bkt, client, rename.Options{
		Domains: cfg.Domains,
		Sink:    sink,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitStorageError
	}

	return ExitSuccess
}
