// Package jobs holds the scheduled CRM scripts. Each job talks to the GraphQL
// endpoint, appends timestamped lines to its own log file and never lets a failure
// escape to the scheduler.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"
)

const (
	heartbeatLayout = "02/01/2006-15:04:05"
	reportLayout    = time.DateTime
)

type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Querier is the GraphQL transport used by the jobs.
type Querier interface {
	Do(ctx context.Context, query string, variables map[string]any, out any) error
}

// LineSink appends lines to a file, creating it on first use.
type LineSink struct {
	path string
	mu   sync.Mutex
}

func NewLineSink(path string) *LineSink {
	return &LineSink{path: path}
}

func (s *LineSink) WriteLine(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}

// RunSafely executes job under a timeout. Errors and panics are logged, never returned.
func RunSafely(log *slog.Logger, job Job, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			log.Error("job panicked", "job", job.Name(), "panic", r)
		}
	}()

	start := time.Now()
	if err := job.Run(ctx); err != nil {
		log.Error("job failed", "job", job.Name(), "err", err, "duration", time.Since(start))
		return
	}
	log.Info("job finished", "job", job.Name(), "duration", time.Since(start))
}

func writeLines(log *slog.Logger, sink *LineSink, lines ...string) {
	for _, line := range lines {
		if err := sink.WriteLine(line); err != nil {
			log.Error("job log sink write failed", "err", err)
			return
		}
	}
}
