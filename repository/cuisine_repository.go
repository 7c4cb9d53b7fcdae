package repository

import (
	"github.com/bit2424/LunchLog/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CuisineRepository struct {
	DB *gorm.DB
}

func NewCuisineRepository(db *gorm.DB) *CuisineRepository {
	return &CuisineRepository{DB: db}
}

// FindOrCreate resolves a raw cuisine label to its canonical row, creating it if
// new. The write is an upsert so concurrent enrichment runs cannot race into
// duplicate rows.
func (r *CuisineRepository) FindOrCreate(tx *gorm.DB, rawName string) (*entity.Cuisine, error) {
	if tx == nil {
		tx = r.DB
	}
	name := entity.CanonicalCuisineName(rawName)

	cuisine := entity.Cuisine{Name: name}
	if err := tx.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).
		Create(&cuisine).Error; err != nil {
		return nil, err
	}
	// DoNothing leaves the id zero when the row already existed.
	if cuisine.ID == 0 {
		if err := tx.Where("name = ?", name).First(&cuisine).Error; err != nil {
			return nil, err
		}
	}
	return &cuisine, nil
}

// Associate adds cuisines to a restaurant, preserving existing associations.
func (r *CuisineRepository) Associate(tx *gorm.DB, restaurant *entity.Restaurant, cuisines []entity.Cuisine) error {
	if tx == nil {
		tx = r.DB
	}
	if len(cuisines) == 0 {
		return nil
	}
	return tx.Model(restaurant).Association("Cuisines").Append(&cuisines)
}
