package progress

import "github.com/MasterGenotype/Modular/pkg/workpool"

// Tracker counts finished tasks and reports running totals through a sink.
// Every task that finishes, whether it succeeded or exhausted its retries,
// is counted exactly once.
type Tracker struct {
	total   int
	counter workpool.Counter
	sink    *Sink
}

// NewTracker creates a tracker for a known task total.
func NewTracker(total int, sink *Sink) *Tracker {
	return &Tracker{total: total, sink: sink}
}

// Completed records one finished task and returns the new total.
func (t *Tracker) Completed() int {
	return t.counter.Done()
}

// Count returns the number of tasks recorded so far.
func (t *Tracker) Count() int {
	return t.counter.Count()
}

// Report records one finished task and emits a progress line.
func (t *Tracker) Report() {
	done := t.Completed()
	t.sink.Printf("Progress: [%d/%d] files downloaded.", done, t.total)
}
