package repository

import (
	"github.com/bit2424/LunchLog/entity"
	"gorm.io/gorm"
)

type RestaurantRepository struct {
	DB *gorm.DB
}

func NewRestaurantRepository(db *gorm.DB) *RestaurantRepository {
	return &RestaurantRepository{DB: db}
}

func (r *RestaurantRepository) FindAll() ([]entity.Restaurant, error) {
	var rests []entity.Restaurant
	err := r.DB.
		Preload("Cuisines").
		Find(&rests).Error
	return rests, err
}

func (r *RestaurantRepository) FindByID(id uint) (*entity.Restaurant, error) {
	var rest entity.Restaurant
	err := r.DB.
		Preload("Cuisines").
		First(&rest, id).Error
	if err != nil {
		return nil, err
	}
	return &rest, nil
}

func (r *RestaurantRepository) FindByPlaceID(placeID string) (*entity.Restaurant, error) {
	var rest entity.Restaurant
	err := r.DB.
		Preload("Cuisines").
		Where("place_id = ?", placeID).
		First(&rest).Error
	if err != nil {
		return nil, err
	}
	return &rest, nil
}

func (r *RestaurantRepository) Create(tx *gorm.DB, rest *entity.Restaurant) error {
	if tx == nil {
		tx = r.DB
	}
	return tx.Create(rest).Error
}

// UpdateFields applies a partial column update inside the given transaction.
func (r *RestaurantRepository) UpdateFields(tx *gorm.DB, id uint, updates map[string]interface{}) error {
	if tx == nil {
		tx = r.DB
	}
	return tx.Model(&entity.Restaurant{}).Where("id = ?", id).Updates(updates).Error
}

// ListIDs returns every restaurant id, for the periodic enrichment sweep.
func (r *RestaurantRepository) ListIDs() ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&entity.Restaurant{}).Order("id").Pluck("id", &ids).Error
	return ids, err
}
