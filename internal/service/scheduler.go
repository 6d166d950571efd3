package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/lox/forecastview/internal/store"
)

// Scheduler keeps watched locations warm in the payload cache and prunes
// old payloads.
type Scheduler struct {
	forecaster      *Forecaster
	store           *store.Store
	watch           []Query
	refreshInterval time.Duration
	retention       time.Duration
}

func NewScheduler(f *Forecaster, st *store.Store, watch []Query, refreshInterval, retention time.Duration) *Scheduler {
	return &Scheduler{
		forecaster:      f,
		store:           st,
		watch:           watch,
		refreshInterval: refreshInterval,
		retention:       retention,
	}
}

// Run refreshes and cleans up once, then on their tickers until ctx is done.
// A non-positive refresh interval disables periodic refresh.
func (s *Scheduler) Run(ctx context.Context) {
	log.Printf("scheduler: starting (%d watched, refresh every %s)", len(s.watch), s.refreshInterval)

	s.RefreshOnce(ctx)
	s.Cleanup()

	var refresh <-chan time.Time
	if s.refreshInterval > 0 {
		refreshTicker := time.NewTicker(s.refreshInterval)
		defer refreshTicker.Stop()
		refresh = refreshTicker.C
	} else {
		log.Println("scheduler: periodic refresh disabled")
	}
	cleanupTicker := time.NewTicker(6 * time.Hour)
	defer cleanupTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("scheduler: stopping")
			return
		case <-refresh:
			s.RefreshOnce(ctx)
		case <-cleanupTicker.C:
			s.Cleanup()
		}
	}
}

// RefreshOnce fetches every watched location and returns the joined errors.
func (s *Scheduler) RefreshOnce(ctx context.Context) error {
	var errs []error
	for _, q := range s.watch {
		if _, err := s.forecaster.Refresh(ctx, q); err != nil {
			log.Printf("scheduler: refresh %s: %v", q.Key(), err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Scheduler) Cleanup() {
	deleted, err := s.store.CleanupOldPayloads(s.retention)
	if err != nil {
		log.Printf("scheduler: cleanup: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("scheduler: removed %d payloads older than %s", deleted, s.retention)
	}
}
