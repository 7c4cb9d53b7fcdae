package entity

import (
	"time"

	"gorm.io/gorm"
)

const (
	TaskStatusQueued  = "queued"
	TaskStatusRunning = "running"
	TaskStatusDone    = "done"
	TaskStatusFailed  = "failed"
)

// EnrichmentTask is one durable unit of enrichment work. Retry state lives on the
// row itself (Attempts + NotBefore) so the backoff policy stays explicit instead
// of hiding inside a queue implementation.
type EnrichmentTask struct {
	gorm.Model
	RestaurantID uint `gorm:"index;not null" json:"restaurantId"`

	Status    string    `gorm:"index:idx_task_runnable,priority:1;not null;default:queued" json:"status"`
	Attempts  int       `gorm:"not null;default:0" json:"attempts"`
	NotBefore time.Time `gorm:"index:idx_task_runnable,priority:2;not null" json:"notBefore"`
	LastError string    `json:"lastError,omitempty"`

	Restaurant Restaurant `json:"-"`
}
