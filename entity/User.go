package entity

import (
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Email     string `gorm:"uniqueIndex;not null" json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`

	// Relations — preload only when needed
	Receipts     []Receipt             `json:"-"`
	Visits       []UserRestaurantVisit `json:"-"`
	CuisineStats []UserCuisineStat     `json:"-"`
}
