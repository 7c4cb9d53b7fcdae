package repository

import (
	"errors"
	"time"

	"github.com/bit2424/LunchLog/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// staleRunningCutoff is how long a running task may sit without progress before
// it is treated as abandoned by a dead worker and becomes claimable again.
// Must stay well above the worker's per-task timeout.
const staleRunningCutoff = 10 * time.Minute

type TaskRepository struct {
	DB *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{DB: db}
}

// Enqueue inserts a queued enrichment task for the restaurant. A restaurant with
// a task already queued or running is skipped to save external quota; duplicate
// enqueues are harmless either way because every enrichment write is an upsert.
// A running task abandoned by a dead worker does not block the restaurant:
// ClaimNext reclaims it once it goes stale.
func (r *TaskRepository) Enqueue(restaurantID uint) (*entity.EnrichmentTask, error) {
	var existing entity.EnrichmentTask
	err := r.DB.
		Where("restaurant_id = ? AND status IN ?", restaurantID,
			[]string{entity.TaskStatusQueued, entity.TaskStatusRunning}).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	task := entity.EnrichmentTask{
		RestaurantID: restaurantID,
		Status:       entity.TaskStatusQueued,
		NotBefore:    time.Now(),
	}
	if err := r.DB.Create(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// ClaimNext atomically claims the oldest runnable task, marking it running and
// counting the attempt. Running tasks whose worker died before settling them
// (no update past the stale cutoff) are claimable again, so a crash mid-task
// cannot strand a restaurant. Postgres skips rows other workers hold locked;
// sqlite serializes writers so the plain transaction is already safe there.
func (r *TaskRepository) ClaimNext() (*entity.EnrichmentTask, error) {
	now := time.Now()
	var claimed *entity.EnrichmentTask
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		q := tx.
			Where("(status = ? AND not_before <= ?) OR (status = ? AND updated_at < ?)",
				entity.TaskStatusQueued, now,
				entity.TaskStatusRunning, now.Add(-staleRunningCutoff)).
			Order("created_at ASC")
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
		}

		var task entity.EnrichmentTask
		if err := q.First(&task).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		if err := tx.Model(&entity.EnrichmentTask{}).
			Where("id = ?", task.ID).
			Updates(map[string]interface{}{
				"status":     entity.TaskStatusRunning,
				"attempts":   gorm.Expr("attempts + 1"),
				"updated_at": now,
			}).Error; err != nil {
			return err
		}
		task.Status = entity.TaskStatusRunning
		task.Attempts++
		claimed = &task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

// Reschedule returns a task to the queue with a not-before delay, recording the
// error that caused the retry.
func (r *TaskRepository) Reschedule(id uint, delay time.Duration, lastError string) error {
	return r.DB.Model(&entity.EnrichmentTask{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     entity.TaskStatusQueued,
			"not_before": time.Now().Add(delay),
			"last_error": lastError,
		}).Error
}

func (r *TaskRepository) MarkDone(id uint) error {
	return r.DB.Model(&entity.EnrichmentTask{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     entity.TaskStatusDone,
			"last_error": "",
		}).Error
}

func (r *TaskRepository) MarkFailed(id uint, lastError string) error {
	return r.DB.Model(&entity.EnrichmentTask{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     entity.TaskStatusFailed,
			"last_error": lastError,
		}).Error
}

func (r *TaskRepository) FindByID(id uint) (*entity.EnrichmentTask, error) {
	var task entity.EnrichmentTask
	if err := r.DB.First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}
