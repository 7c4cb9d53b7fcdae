package entity

import (
	"time"

	"gorm.io/gorm"
)

// UserRestaurantVisit is an accumulative aggregate: one row per (user, restaurant),
// updated in place on every receipt instead of recomputed from history.
type UserRestaurantVisit struct {
	gorm.Model
	UserID       uint `gorm:"uniqueIndex:idx_user_restaurant,priority:1;not null" json:"userId"`
	RestaurantID uint `gorm:"uniqueIndex:idx_user_restaurant,priority:2;not null" json:"restaurantId"`

	VisitCount int       `gorm:"not null;default:0" json:"visitCount"`
	LastVisit  time.Time `gorm:"not null" json:"lastVisit"`

	User       User       `json:"-"`
	Restaurant Restaurant `json:"restaurant"`
}
