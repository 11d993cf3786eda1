package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Options configures a Sink.
type Options struct {
	// Output is where lines are written.
	// Default: os.Stderr
	Output io.Writer

	// RunID tags every line so output from overlapping runs can be told
	// apart in captured logs. Default: a fresh short identifier.
	RunID string

	// Buffer is the channel capacity between workers and the writer.
	// Default: 64
	Buffer int
}

// Sink serializes output from concurrent workers through a single writer
// goroutine. Each call to Printf emits exactly one line.
type Sink struct {
	out   io.Writer
	runID string
	lines chan string
	done  chan struct{}

	mu     sync.Mutex
	closed bool
}

// NewSink creates a sink and starts its writer goroutine.
func NewSink(opts Options) *Sink {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()[:8]
	}
	if opts.Buffer <= 0 {
		opts.Buffer = 64
	}

	s := &Sink{
		out:   opts.Output,
		runID: opts.RunID,
		lines: make(chan string, opts.Buffer),
		done:  make(chan struct{}),
	}

	go func() {
		defer close(s.done)
		for line := range s.lines {
			fmt.Fprintf(s.out, "[modular %s] %s\n", s.runID, line)
		}
	}()

	return s
}

// RunID returns the identifier tagged on every line.
func (s *Sink) RunID() string {
	return s.runID
}

// Printf queues one line of output. Trailing newlines are stripped; the
// writer adds its own. Safe for concurrent use; calls after Close are
// dropped.
func (s *Sink) Printf(format string, args ...any) {
	line := strings.TrimRight(fmt.Sprintf(format, args...), "\n")

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.lines <- line
}

// Close flushes pending lines and stops the writer. It is safe to call
// more than once.
func (s *Sink) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.lines)
	s.mu.Unlock()

	<-s.done
}
