package entity

import (
	"strings"

	"gorm.io/gorm"
)

// StubPlaceIDPrefix marks a locally generated placeholder place id. A restaurant
// created from free-text receipt data carries one until enrichment resolves the
// real external identity.
const StubPlaceIDPrefix = "stub_"

type Restaurant struct {
	gorm.Model
	PlaceID string `gorm:"uniqueIndex;not null" json:"placeId"`
	Name    string `gorm:"index;not null" json:"name"`
	Address string `json:"address"`

	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`

	// Enrichment-only fields, absent until the external source provides them.
	Rating           *float64 `json:"rating"`
	PriceLevel       *int     `json:"priceLevel"`
	UserRatingsTotal int      `json:"userRatingsTotal"`
	BusinessStatus   string   `json:"businessStatus"`

	Cuisines []Cuisine `gorm:"many2many:restaurant_cuisines" json:"cuisines"`

	Receipts []Receipt `json:"-"`
}

// IsStub reports whether the restaurant still lacks a confirmed external identity.
func (r *Restaurant) IsStub() bool {
	return r.PlaceID == "" || strings.HasPrefix(r.PlaceID, StubPlaceIDPrefix)
}

// HasLocation reports whether the restaurant can serve as a geographic anchor.
func (r *Restaurant) HasLocation() bool {
	return r.Latitude != nil && r.Longitude != nil
}
