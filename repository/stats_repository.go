package repository

import (
	"time"

	"github.com/bit2424/LunchLog/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StatsRepository struct {
	DB *gorm.DB
}

func NewStatsRepository(db *gorm.DB) *StatsRepository {
	return &StatsRepository{DB: db}
}

// maxFn is the two-argument maximum for the active dialect; sqlite spells
// GREATEST as scalar MAX.
func maxFn(tx *gorm.DB) string {
	if tx.Dialector.Name() == "postgres" {
		return "GREATEST"
	}
	return "MAX"
}

// UpsertVisit inserts the (user, restaurant) aggregate row or increments it.
// The increment and the last-visit maximum are computed in the database so
// concurrent receipts serialize on the row and an out-of-order past date can
// never move last_visit backwards.
func (r *StatsRepository) UpsertVisit(tx *gorm.DB, userID, restaurantID uint, visitDate time.Time) error {
	if tx == nil {
		tx = r.DB
	}
	visit := entity.UserRestaurantVisit{
		UserID:       userID,
		RestaurantID: restaurantID,
		VisitCount:   1,
		LastVisit:    visitDate,
	}
	return tx.
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "restaurant_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"visit_count": gorm.Expr("visit_count + 1"),
				"last_visit":  gorm.Expr(maxFn(tx) + "(last_visit, excluded.last_visit)"),
				"updated_at":  time.Now(),
			}),
		}).
		Create(&visit).Error
}

// UpsertCuisineStat inserts the (user, cuisine) aggregate row or increments it.
func (r *StatsRepository) UpsertCuisineStat(tx *gorm.DB, userID, cuisineID uint) error {
	if tx == nil {
		tx = r.DB
	}
	stat := entity.UserCuisineStat{
		UserID:     userID,
		CuisineID:  cuisineID,
		VisitCount: 1,
	}
	return tx.
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "cuisine_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"visit_count": gorm.Expr("visit_count + 1"),
				"updated_at":  time.Now(),
			}),
		}).
		Create(&stat).Error
}

// TopVisits returns the user's most visited restaurants, most visited first.
func (r *StatsRepository) TopVisits(userID uint, limit int) ([]entity.UserRestaurantVisit, error) {
	var visits []entity.UserRestaurantVisit
	q := r.DB.
		Preload("Restaurant").
		Preload("Restaurant.Cuisines").
		Where("user_id = ?", userID).
		Order("visit_count DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&visits).Error
	return visits, err
}

// TopCuisines returns the user's cuisine stats, most visited first.
func (r *StatsRepository) TopCuisines(userID uint, limit int) ([]entity.UserCuisineStat, error) {
	var stats []entity.UserCuisineStat
	q := r.DB.
		Preload("Cuisine").
		Where("user_id = ?", userID).
		Order("visit_count DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&stats).Error
	return stats, err
}
