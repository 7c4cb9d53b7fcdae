// Package workers runs the asynchronous side of the system: the enrichment
// worker pool and the periodic catalog sweep. Workers coordinate only through
// the task table, so any worker may process any task.
package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/bit2424/LunchLog/entity"
	"github.com/bit2424/LunchLog/pkg/logger"
	"github.com/bit2424/LunchLog/repository"
	"github.com/bit2424/LunchLog/services"
)

type WorkerConfig struct {
	Count        int
	PollInterval time.Duration
	TaskTimeout  time.Duration
	MaxAttempts  int
	BackoffBase  time.Duration
}

type EnrichmentWorker struct {
	Tasks    *repository.TaskRepository
	Enricher *services.EnrichmentService
	Cfg      WorkerConfig
	Log      *logger.Logger
}

func NewEnrichmentWorker(tasks *repository.TaskRepository, enricher *services.EnrichmentService, cfg WorkerConfig, log *logger.Logger) *EnrichmentWorker {
	return &EnrichmentWorker{
		Tasks:    tasks,
		Enricher: enricher,
		Cfg:      cfg,
		Log:      log.With("component", "enrichment_worker"),
	}
}

// Start launches the pool. Workers poll for claimable tasks and exit when the
// context is cancelled.
func (w *EnrichmentWorker) Start(ctx context.Context) {
	for i := 0; i < w.Cfg.Count; i++ {
		go w.run(ctx, i)
	}
}

func (w *EnrichmentWorker) run(ctx context.Context, id int) {
	log := w.Log.With("worker", id)
	ticker := time.NewTicker(w.Cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			task, err := w.Tasks.ClaimNext()
			if err != nil {
				log.Warn("claim failed", "error", err)
				continue
			}
			if task == nil {
				continue
			}
			w.Process(ctx, task)
		}
	}
}

// Process runs one claimed task to a terminal or rescheduled state. A panicking
// enrichment marks the task failed without killing the worker.
func (w *EnrichmentWorker) Process(ctx context.Context, task *entity.EnrichmentTask) {
	defer func() {
		if r := recover(); r != nil {
			w.Log.Error("enrichment panicked", "task_id", task.ID, "panic", r)
			if err := w.Tasks.MarkFailed(task.ID, fmt.Sprintf("panic: %v", r)); err != nil {
				w.Log.Error("mark failed", "task_id", task.ID, "error", err)
			}
		}
	}()

	tctx, cancel := context.WithTimeout(ctx, w.Cfg.TaskTimeout)
	defer cancel()

	outcome := w.Enricher.Enrich(tctx, task.RestaurantID)
	w.settle(task, outcome)
}

func (w *EnrichmentWorker) settle(task *entity.EnrichmentTask, outcome services.Outcome) {
	var err error
	switch outcome.Status {
	case services.OutcomeSuccess:
		err = w.Tasks.MarkDone(task.ID)
	case services.OutcomeTransientError:
		if task.Attempts >= w.Cfg.MaxAttempts {
			w.Log.Warn("enrichment exhausted retries",
				"task_id", task.ID, "restaurant_id", task.RestaurantID,
				"attempts", task.Attempts, "error", outcome.Err)
			err = w.Tasks.MarkFailed(task.ID, errString(outcome))
		} else {
			delay := w.backoff(task.Attempts)
			w.Log.Info("rescheduling enrichment",
				"task_id", task.ID, "attempt", task.Attempts, "delay", delay)
			err = w.Tasks.Reschedule(task.ID, delay, errString(outcome))
		}
	case services.OutcomeNotFound:
		// Terminal for this invocation; the restaurant stays a stub and the next
		// sweep gets another chance.
		err = w.Tasks.MarkFailed(task.ID, "place not found")
	default: // permanent_error
		err = w.Tasks.MarkFailed(task.ID, errString(outcome))
	}
	if err != nil {
		w.Log.Error("settle task", "task_id", task.ID, "error", err)
	}
}

// backoff doubles the base delay per completed attempt: 1x, 2x, 4x, capped.
func (w *EnrichmentWorker) backoff(attempts int) time.Duration {
	shift := attempts - 1
	if shift < 0 {
		shift = 0
	}
	if shift > 4 {
		shift = 4
	}
	return w.Cfg.BackoffBase << shift
}

func errString(outcome services.Outcome) string {
	if outcome.Err == nil {
		return string(outcome.Status)
	}
	return outcome.Err.Error()
}
