package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/s3blob"

	"github.com/MasterGenotype/Modular/internal/config"
	"github.com/MasterGenotype/Modular/internal/fetcher"
	"github.com/MasterGenotype/Modular/internal/httpclient"
	"github.com/MasterGenotype/Modular/internal/nexus"
	"github.com/MasterGenotype/Modular/internal/progress"
)

// runNexus downloads every tracked NexusMods file for the selected game
// domains: resolve file ids and signed URLs, persist the link records, then
// transfer the archives.
func runNexus(args []string) int {
	fs := flag.NewFlagSet("nexus", flag.ExitOnError)

	configPath := fs.String("config", "", "Config file path (default ~/.config/modular/config.yaml)")
	bucket := fs.String("bucket", "", "Destination bucket URL")
	apiKey := fs.String("api-key", "", "NexusMods API key")
	domains := fs.String("domains", "", "Comma-separated game domains, e.g. skyrimspecialedition")
	workers := fs.Int("workers", 0, "Number of parallel workers (0 = available parallelism)")
	pacing := fs.Duration("pacing", 0, "Per-worker pause after each request")
	resolveOnly := fs.Bool("resolve-only", false, "Persist link records without transferring files")
	fromRecord := fs.Bool("from-record", false, "Transfer from persisted link records, skipping resolution")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: modular nexus [options]

Download every file of every tracked NexusMods mod for the configured game
domains into object storage. Resolved download links are persisted to the
bucket before any transfer starts, so an interrupted run can resume with
-from-record.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	override := config.Config{
		Bucket:      *bucket,
		NexusAPIKey: *apiKey,
		Workers:     *workers,
		Pacing:      *pacing,
	}
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
	if len(cfg.Domains) == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one game domain is required (-domains or config)")
		return ExitConfigError
	}
	if *resolveOnly && *fromRecord {
		fmt.Fprintln(os.Stderr, "Error: -resolve-only and -from-record are mutually exclusive")
		return ExitInvalidArgs
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
	client := nexus.NewClient(cfg.NexusAPIKey, hc)

	opts := nexus.PipelineOptions{
		Workers:  cfg.Workers,
		Pacing:   cfg.Pacing,
		Attempts: cfg.Retry.Attempts,
		Backoff:  cfg.Retry.Backoff,
		HTTP:     hc,
		Sink:     sink,
	}

	var tracked []int
	if !*fromRecord {
		tracked, err = client.TrackedMods(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitAPIError
		}
		sink.Printf("Found %d tracked mods.", len(tracked))
	}

	failed := 0
	for _, domain := range cfg.Domains {
		code := nexusDomain(ctx, bkt, client, domain, tracked, opts, *resolveOnly, *fromRecord)
		switch code {
		case ExitSuccess:
		case ExitTransferFailed:
			failed++
		default:
			return code
		}
	}

	if failed > 0 {
		return ExitTransferFailed
	}
	return ExitSuccess
}

func nexusDomain(ctx context.Context, bkt *blob.Bucket, client *nexus.Client, domain string, tracked []int, opts nexus.PipelineOptions, resolveOnly, fromRecord bool) int {
	opts.Sink.Printf("Processing domain %s.", domain)

	if !fromRecord {
		if _, err := client.Resolve(ctx, bkt, domain, tracked, opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error resolving %s: %v\n", domain, err)
			return ExitStorageError
		}
		if resolveOnly {
			return ExitSuccess
		}
	}

	results, err := nexus.Fetch(ctx, bkt, domain, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitStorageError
	}
	return reportResults(results, opts.Sink)
}

// reportResults summarizes a transfer run and names every failed file.
func reportResults(results []fetcher.Result, sink *progress.Sink) int {
	failed := 0
	for _, r := range results {
		if !r.OK() {
			failed++
			sink.Printf("Failed after %d attempts: %s (%v)", r.Attempts, r.Task.URL, r.Err)
		}
	}
	if failed > 0 {
		sink.Printf("Finished with %d of %d transfers failed.", failed, len(results))
		return ExitTransferFailed
	}
	sink.Printf("Finished: %d files downloaded.", len(results))
	return ExitSuccess
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
