package repository

import (
	"github.com/bit2424/LunchLog/entity"
	"gorm.io/gorm"
)

type ReceiptRepository struct {
	DB *gorm.DB
}

func NewReceiptRepository(db *gorm.DB) *ReceiptRepository {
	return &ReceiptRepository{DB: db}
}

func (r *ReceiptRepository) Create(tx *gorm.DB, receipt *entity.Receipt) error {
	if tx == nil {
		tx = r.DB
	}
	return tx.Create(receipt).Error
}

func (r *ReceiptRepository) ListForUser(userID uint, limit int) ([]entity.Receipt, error) {
	var receipts []entity.Receipt
	q := r.DB.
		Preload("Restaurant").
		Preload("Restaurant.Cuisines").
		Where("user_id = ?", userID).
		Order("date DESC, created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&receipts).Error
	return receipts, err
}

func (r *ReceiptRepository) FindForUser(id, userID uint) (*entity.Receipt, error) {
	var receipt entity.Receipt
	err := r.DB.
		Preload("Restaurant").
		Preload("Restaurant.Cuisines").
		Where("id = ? AND user_id = ?", id, userID).
		First(&receipt).Error
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}
