package entity

import (
	"time"

	"gorm.io/gorm"
)

// Receipt is one lunch purchase. Once aggregated it is immutable with respect to
// which (user, restaurant) pair it affects.
type Receipt struct {
	gorm.Model
	Date  time.Time `gorm:"index:idx_receipt_user_date,priority:2;not null" json:"date"`
	Price int64     `gorm:"not null" json:"price"` // cents

	UserID uint `gorm:"index:idx_receipt_user_date,priority:1;not null" json:"userId"`
	User   User `json:"-"`

	RestaurantID uint       `gorm:"not null" json:"restaurantId"`
	Restaurant   Restaurant `json:"restaurant"`

	// Free-text fields as read from the receipt; kept even after the restaurant
	// reference resolves. Image storage lives outside this service.
	RestaurantName string `json:"restaurantName"`
	Address        string `json:"address"`
	ImageURL       string `json:"imageUrl"`
}
