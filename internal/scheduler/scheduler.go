package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-update/internal/weather"
)

const (
	defaultInterval = 15 * time.Minute
	fetchTimeout    = 30 * time.Second
)

// Refresher is the part of weather.Service the scheduler drives.
type Refresher interface {
	FetchAndStore(ctx context.Context, coords weather.Coords) (*weather.WeatherSnapshot, error)
}

// Scheduler periodically refreshes snapshots for configured coordinates.
type Scheduler struct {
	scheduler *gocron.Scheduler
	refresher Refresher
	coords    []weather.Coords
	interval  time.Duration
	logger    *slog.Logger
}

// New creates a new Scheduler.
func New(coords []weather.Coords, interval time.Duration, refresher Refresher, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		refresher: refresher,
		coords:    coords,
		interval:  interval,
		logger:    logger.With("component", "scheduler"),
	}
}

// Start schedules the periodic job and starts the underlying scheduler. The
// first run happens immediately.
func (s *Scheduler) Start() error {
	if len(s.coords) == 0 {
		s.logger.Info("no locations configured; nothing to schedule")
		return nil
	}

	interval := s.interval
	if interval <= 0 {
		interval = defaultInterval
	}

	if _, err := s.scheduler.Every(interval).Do(s.RunOnce); err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce refreshes every configured location concurrently and waits for all
// of them to finish.
func (s *Scheduler) RunOnce() {
	s.logger.Info("running weather refresh job", "locations", len(s.coords))

	var wg sync.WaitGroup
	for _, c := range s.coords {
		wg.Add(1)
		go func(c weather.Coords) {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
			defer cancel()

			if _, err := s.refresher.FetchAndStore(ctx, c); err != nil {
				s.logger.Error("refresh failed", "coords", c.String(), "error", err)
			}
		}(c)
	}
	wg.Wait()

	s.logger.Info("completed weather refresh job")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
