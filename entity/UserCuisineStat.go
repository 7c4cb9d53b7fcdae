package entity

import (
	"gorm.io/gorm"
)

type UserCuisineStat struct {
	gorm.Model
	UserID    uint `gorm:"uniqueIndex:idx_user_cuisine,priority:1;not null" json:"userId"`
	CuisineID uint `gorm:"uniqueIndex:idx_user_cuisine,priority:2;not null" json:"cuisineId"`

	VisitCount int `gorm:"not null;default:0" json:"visitCount"`

	User    User    `json:"-"`
	Cuisine Cuisine `json:"cuisine"`
}
