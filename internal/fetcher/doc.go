// Package fetcher performs the transfer stage: parallel, retrying downloads
// of resolved archive URLs into a storage bucket.
//
// Each transfer is attempted up to a fixed number of times with a fixed
// backoff between attempts; no attempt overlaps another attempt of the same
// task. A task that exhausts its retries is recorded as failed and counted
// toward progress, but never stops sibling workers.
//
// # Usage
//
//	results := fetcher.Fetch(ctx, bucket, tasks, fetcher.Options{
//	    Workers:  8,
//	    Attempts: 5,
//	    Backoff:  5 * time.Second,
//	    Sink:     sink,
//	})
package fetcher
