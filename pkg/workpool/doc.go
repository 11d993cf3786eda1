// Package workpool provides a thread-safe work queue and a bounded worker
// pool for draining a finite batch of independent tasks in parallel.
//
// All tasks are loaded into a Queue before any worker starts. Each worker
// loops: pop a task, run the work function, record the result, then sleep a
// fixed pacing interval to bound the aggregate request rate against an
// upstream service. Process returns only after every worker has observed an
// empty queue and exited, so a call to Process is a stage barrier.
//
// # Usage
//
//	results := workpool.Process(ctx, modIDs, workpool.Options{
//	    Workers: 8,
//	    Pacing:  time.Second,
//	}, func(ctx context.Context, id int) fileList {
//	    return fetchFileList(ctx, id)
//	})
//
// No ordering is guaranteed across results; callers must treat the result
// slice as an unordered multiset keyed by whatever the work function put in
// each result value.
package workpool
