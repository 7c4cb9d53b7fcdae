package entity

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

type Cuisine struct {
	gorm.Model
	Name string `gorm:"size:100;uniqueIndex;not null" json:"name"`

	Restaurants []Restaurant `gorm:"many2many:restaurant_cuisines" json:"-"`
}

var cuisineTitle = cases.Title(language.English)

// CanonicalCuisineName normalizes externally sourced cuisine labels so varying
// casing maps onto one Cuisine row ("italian restaurant" -> "Italian Restaurant").
func CanonicalCuisineName(name string) string {
	return cuisineTitle.String(strings.ToLower(strings.TrimSpace(name)))
}
