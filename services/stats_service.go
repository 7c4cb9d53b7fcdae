package services

import (
	"fmt"
	"time"

	"github.com/bit2424/LunchLog/pkg/logger"
	"github.com/bit2424/LunchLog/repository"
	"gorm.io/gorm"
)

// StatsService maintains the per-user visit and cuisine aggregates. It is a plain
// service invoked from the receipt-write transaction, not a save hook, so the
// receipt and its aggregate rows commit or roll back as one unit.
type StatsService struct {
	Repo *repository.StatsRepository
	Log  *logger.Logger
}

func NewStatsService(repo *repository.StatsRepository, log *logger.Logger) *StatsService {
	return &StatsService{Repo: repo, Log: log.With("service", "stats")}
}

// RecordReceipt applies one persisted receipt to the aggregates: +1 visit for the
// (user, restaurant) pair with last_visit kept at the max date seen, and +1 for
// every cuisine currently tagged on the restaurant. Must run inside the receipt's
// transaction; callers pass that tx.
func (s *StatsService) RecordReceipt(tx *gorm.DB, userID, restaurantID uint, cuisineIDs []uint, visitDate time.Time) error {
	if err := s.Repo.UpsertVisit(tx, userID, restaurantID, visitDate); err != nil {
		return fmt.Errorf("upsert visit: %w", err)
	}
	for _, cuisineID := range cuisineIDs {
		if err := s.Repo.UpsertCuisineStat(tx, userID, cuisineID); err != nil {
			return fmt.Errorf("upsert cuisine stat %d: %w", cuisineID, err)
		}
	}
	s.Log.Debug("recorded receipt",
		"user_id", userID, "restaurant_id", restaurantID, "cuisines", len(cuisineIDs))
	return nil
}
