// Package progress provides serialized console output and completion
// tracking for concurrent pipeline workers.
//
// All worker output flows through a Sink: a channel consumed by a single
// writer goroutine, so lines from different workers never interleave
// mid-line and no caller ever touches a shared lock directly.
//
// # Usage
//
//	sink := progress.NewSink(progress.Options{})
//	defer sink.Close()
//
//	tracker := progress.NewTracker(total, sink)
//	// from any worker, once per finished task:
//	tracker.Report()
//
// # Output Format
//
//	[modular 1f3a9c2e] Starting download of 42 files using 8 concurrent workers...
//	[modular 1f3a9c2e] Progress: [1/42] files downloaded.
package progress
