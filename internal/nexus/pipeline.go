package nexus

import (
	"context"
	"fmt"
	"io"
	"time"

	"gocloud.dev/blob"

	"github.com/MasterGenotype/Modular/internal/fetcher"
	"github.com/MasterGenotype/Modular/internal/httpclient"
	"github.com/MasterGenotype/Modular/internal/links"
	"github.com/MasterGenotype/Modular/internal/names"
	"github.com/MasterGenotype/Modular/internal/progress"
	"github.com/MasterGenotype/Modular/pkg/workpool"
)

// PipelineOptions configures a resolve or fetch run.
type PipelineOptions struct {
	// Workers bounds each stage's parallelism.
	Workers int

	// Pacing is the per-worker sleep after each API request.
	// Default: 1s
	Pacing time.Duration

	// Attempts and Backoff control the transfer retry loop.
	Attempts int
	Backoff  time.Duration

	// HTTP is the transfer transport. Default: a client with default
	// options.
	HTTP *httpclient.Client

	// Sink receives all run output.
	Sink *progress.Sink
}

// defaults fills zero fields. The returned cleanup closes any sink this
// call created.
func (o *PipelineOptions) defaults() func() {
	if o.Pacing <= 0 {
		o.Pacing = time.Second
	}
	if o.Sink == nil {
		o.Sink = progress.NewSink(progress.Options{Output: io.Discard})
		return o.Sink.Close
	}
	return func() {}
}

// Resolve runs the metadata phase for one game domain: list file ids for
// every tracked mod, resolve signed URLs for every (mod, file) pair, and
// persist the resolved links to the bucket. Both fan-out stages fully join
// before the next stage's task set is computed.
func (c *Client) Resolve(ctx context.Context, bucket *blob.Bucket, domain string, modIDs []int, opts PipelineOptions) ([]links.Record, error) {
	defer opts.defaults()()
	sink := opts.Sink

	// Stage: mod id -> file ids.
	type fileList struct {
		modID int
		ids   []int
	}

	sink.Printf("Resolving file lists for %d mods in domain %s...", len(modIDs), domain)
	fileLists := workpool.Process(ctx, modIDs, workpool.Options{Workers: opts.Workers, Pacing: opts.Pacing},
		func(ctx context.Context, modID int) fileList {
			ids := c.FileIDs(ctx, domain, modID)
			if len(ids) == 0 {
				sink.Printf("No main files for mod %d.", modID)
			}
			return fileList{modID: modID, ids: ids}
		})

	// Stage: (mod id, file id) -> signed URL. The task set derives from
	// the fully joined previous stage.
	type pair struct {
		modID  int
		fileID int
	}

	var pairs []pair
	for _, fl := range fileLists {
		for _, fileID := range fl.ids {
			pairs = append(pairs, pair{modID: fl.modID, fileID: fileID})
		}
	}

	sink.Printf("Resolving download links for %d files in domain %s...", len(pairs), domain)
	resolved := workpool.Process(ctx, pairs, workpool.Options{Workers: opts.Workers, Pacing: opts.Pacing},
		func(ctx context.Context, p pair) links.Record {
			url := c.DownloadLink(ctx, domain, p.modID, p.fileID)
			if url == "" {
				sink.Printf("Failed to resolve link for mod %d file %d.", p.modID, p.fileID)
			}
			return links.Record{ModID: p.modID, FileID: p.fileID, URL: url}
		})

	records := resolved[:0]
	for _, r := range resolved {
		if r.URL != "" {
			records = append(records, r)
		}
	}

	if err := links.Save(ctx, bucket, links.Key(domain), records); err != nil {
		return nil, fmt.Errorf("persist download links for %s: %w", domain, err)
	}
	sink.Printf("Saved %d download links for domain %s.", len(records), domain)

	return records, nil
}

// Fetch runs the transfer phase for one game domain: re-read the persisted
// link record and download every file into the bucket.
func Fetch(ctx context.Context, bucket *blob.Bucket, domain string, opts PipelineOptions) ([]fetcher.Result, error) {
	defer opts.defaults()()

	records, err := links.Load(ctx, bucket, links.Key(domain))
	if err != nil {
		return nil, fmt.Errorf("load download links for %s: %w", domain, err)
	}
	if len(records) == 0 {
		opts.Sink.Printf("No download links found for domain %s.", domain)
		return nil, nil
	}

	tasks := make([]fetcher.Task, 0, len(records))
	for _, r := range records {
		tasks = append(tasks, fetcher.Task{
			ModID:  r.ModID,
			FileID: r.FileID,
			URL:    r.URL,
			Key:    names.DownloadKey(domain, r.ModID, r.FileID, r.URL),
		})
	}

	results := fetcher.Fetch(ctx, bucket, tasks, fetcher.Options{
		Workers:  opts.Workers,
		Pacing:   opts.Pacing,
		Attempts: opts.Attempts,
		Backoff:  opts.Backoff,
		HTTP:     opts.HTTP,
		Sink:     opts.Sink,
	})
	return results, nil
}
