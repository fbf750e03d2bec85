package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/albapepper/scoracle-sheets/internal/loader"
)

// Store keeps the latest report and rebuilds it once it is older than ttl.
// Only one rebuild runs at a time; callers arriving meanwhile get the
// previous report, or wait when there is none yet. A failed rebuild keeps
// serving the previous report.
type Store struct {
	src     loader.Source
	workers int
	ttl     time.Duration
	logger  *slog.Logger

	mu       sync.Mutex
	report   *Report
	building chan struct{} // closed when the running rebuild ends
	lastErr  error
	now      func() time.Time
}

func NewStore(src loader.Source, workers int, ttl time.Duration, logger *slog.Logger) *Store {
	return &Store{src: src, workers: workers, ttl: ttl, logger: logger, now: time.Now}
}

// Current returns a report no older than the store's ttl when one can be
// built.
func (s *Store) Current(ctx context.Context) (*Report, error) {
	s.mu.Lock()
	if s.report != nil && s.now().Sub(s.report.BuiltAt) < s.ttl {
		report := s.report
		s.mu.Unlock()
		return report, nil
	}
	if done := s.building; done != nil {
		prev := s.report
		s.mu.Unlock()
		if prev != nil {
			return prev, nil
		}
		select {
		case <-done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.report != nil {
			return s.report, nil
		}
		return nil, s.lastErr
	}
	done := make(chan struct{})
	s.building = done
	s.mu.Unlock()

	// the build is shared, so one caller going away must not cancel it
	report, err := Run(context.WithoutCancel(ctx), s.src, s.workers, s.logger)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.building = nil
	close(done)
	if err != nil {
		s.lastErr = err
		if s.report != nil {
			s.logger.Error("Report rebuild failed; serving previous report",
				"built_at", s.report.BuiltAt, "error", err)
			return s.report, nil
		}
		return nil, err
	}
	report.BuiltAt = s.now()
	s.report = report
	s.lastErr = nil
	return report, nil
}
