package fetcher

import (
	"context"
	"fmt"
	"io"
	"time"

	"gocloud.dev/blob"

	"github.com/MasterGenotype/Modular/internal/httpclient"
	"github.com/MasterGenotype/Modular/internal/progress"
	"github.com/MasterGenotype/Modular/pkg/workpool"
)

// Options configures a transfer run.
type Options struct {
	// Workers is the number of parallel transfer workers.
	// Default: available parallelism, clamped to the task count.
	Workers int

	// Pacing is the per-worker sleep after each finished transfer.
	Pacing time.Duration

	// Attempts is the retry ceiling per transfer.
	// Default: 5
	Attempts int

	// Backoff is the fixed delay between attempts of one transfer.
	// Default: 5s
	Backoff time.Duration

	// HTTP is the transport. Default: a client with default options.
	HTTP *httpclient.Client

	// Sink receives per-task diagnostics and progress lines.
	Sink *progress.Sink
}

// Task is one file to transfer: a resolved URL and its destination key.
type Task struct {
	ModID  int
	FileID int
	URL    string
	Key    string
}

// Result is the outcome of one transfer task.
type Result struct {
	Task     Task
	Attempts int
	Err      error
}

// OK reports whether the transfer succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// Fetch transfers every task into the bucket using a bounded worker pool
// with per-task retries. It blocks until all workers have joined and
// returns one result per dequeued task.
func Fetch(ctx context.Context, bucket *blob.Bucket, tasks []Task, opts Options) []Result {
	if opts.Attempts <= 0 {
		opts.Attempts = 5
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 5 * time.Second
	}
	if opts.HTTP == nil {
		opts.HTTP = httpclient.NewClient(httpclient.DefaultOptions())
	}
	if opts.Sink == nil {
		opts.Sink = progress.NewSink(progress.Options{Output: io.Discard})
		defer opts.Sink.Close()
	}

	tracker := progress.NewTracker(len(tasks), opts.Sink)
	workers := workpool.WorkerCount(opts.Workers, len(tasks))
	if len(tasks) > 0 {
		opts.Sink.Printf("Starting download of %d files using %d concurrent workers...", len(tasks), workers)
	}

	results := workpool.Process(ctx, tasks, workpool.Options{Workers: opts.Workers, Pacing: opts.Pacing},
		func(ctx context.Context, task Task) Result {
			res := download(ctx, bucket, task, opts)
			if res.Err != nil {
				opts.Sink.Printf("Failed to download Mod ID %d, File ID %d after %d attempts: %v",
					task.ModID, task.FileID, res.Attempts, res.Err)
			} else {
				opts.Sink.Printf("Downloaded %s", task.Key)
			}
			tracker.Report()
			return res
		})

	return results
}

// download runs the bounded retry loop for a single task.
func download(ctx context.Context, bucket *blob.Bucket, task Task, opts Options) Result {
	url := httpclient.EscapeSpaces(task.URL)

	var lastErr error
	for attempt := 1; attempt <= opts.Attempts; attempt++ {
		opts.Sink.Printf("Downloading Mod ID %d, File ID %d (Attempt %d/%d)...",
			task.ModID, task.FileID, attempt, opts.Attempts)

		err := transfer(ctx, bucket, task.Key, url, opts.HTTP)
		if err == nil {
			return Result{Task: task, Attempts: attempt}
		}
		lastErr = err

		if ctx.Err() != nil {
			return Result{Task: task, Attempts: attempt, Err: ctx.Err()}
		}
		if attempt < opts.Attempts {
			opts.Sink.Printf("Error downloading Mod ID %d, File ID %d, retrying in %s...",
				task.ModID, task.FileID, opts.Backoff)
			select {
			case <-ctx.Done():
				return Result{Task: task, Attempts: attempt, Err: ctx.Err()}
			case <-time.After(opts.Backoff):
			}
		}
	}

	return Result{Task: task, Attempts: opts.Attempts, Err: lastErr}
}

// transfer performs one attempt: stream the URL into the destination key.
// A failed attempt discards the partial object write.
func transfer(ctx context.Context, bucket *blob.Bucket, key, url string, client *httpclient.Client) error {
	body, err := client.Download(ctx, url)
	if err != nil {
		return err
	}
	defer body.Close()

	// Cancelling the writer's context on a failed copy aborts the write
	// instead of committing a truncated object.
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w, err := bucket.NewWriter(wctx, key, nil)
	if err != nil {
		return fmt.Errorf("open destination %s: %w", key, err)
	}

	if _, err := io.Copy(w, body); err != nil {
		cancel()
		w.Close()
		return fmt.Errorf("copy to %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize %s: %w", key, err)
	}
	return nil
}
