package workers

import (
	"context"
	"time"

	"github.com/bit2424/LunchLog/pkg/logger"
	"github.com/bit2424/LunchLog/repository"
	"github.com/bit2424/LunchLog/services"
)

// Sweeper periodically enqueues one enrichment task per restaurant so the whole
// catalog gets refreshed. Pure fan-out: it never waits on the work it produces.
type Sweeper struct {
	Restaurants *repository.RestaurantRepository
	Tasks       services.Enqueuer
	Interval    time.Duration
	Log         *logger.Logger
}

func NewSweeper(restaurants *repository.RestaurantRepository, tasks services.Enqueuer, interval time.Duration, log *logger.Logger) *Sweeper {
	return &Sweeper{
		Restaurants: restaurants,
		Tasks:       tasks,
		Interval:    interval,
		Log:         log.With("component", "sweeper"),
	}
}

func (s *Sweeper) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				// Failures are logged and retried from scratch next tick.
				if err := s.RunOnce(); err != nil {
					s.Log.Error("sweep failed", "error", err)
				}
			}
		}
	}()
}

// RunOnce enumerates the catalog and enqueues enrichment for every restaurant.
// Restaurants with work already queued or running are skipped by the enqueue
// itself.
func (s *Sweeper) RunOnce() error {
	ids, err := s.Restaurants.ListIDs()
	if err != nil {
		return err
	}
	enqueued := 0
	for _, id := range ids {
		if _, err := s.Tasks.Enqueue(id); err != nil {
			s.Log.Warn("enqueue failed", "restaurant_id", id, "error", err)
			continue
		}
		enqueued++
	}
	s.Log.Info("sweep complete", "restaurants", len(ids), "enqueued", enqueued)
	return nil
}
