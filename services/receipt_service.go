package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bit2424/LunchLog/entity"
	"github.com/bit2424/LunchLog/pkg/logger"
	"github.com/bit2424/LunchLog/repository"
)

var ErrReceiptNotFound = errors.New("receipt not found")

type CreateReceiptReq struct {
	Date           time.Time
	Price          int64
	ImageURL       string
	RestaurantID   uint   // existing restaurant, or
	RestaurantName string // free-text pair that creates a stub
	Address        string
}

// Enqueuer is the piece of the task queue the receipt path needs: fire-and-forget
// submission of enrichment work after the receipt commits.
type Enqueuer interface {
	Enqueue(restaurantID uint) (*entity.EnrichmentTask, error)
}

// ReceiptService owns the receipt-write transaction boundary: the receipt, the
// restaurant reference (possibly a fresh stub) and both aggregate updates commit
// as one unit, then enrichment is enqueued outside the transaction.
type ReceiptService struct {
	DB          *gorm.DB
	Receipts    *repository.ReceiptRepository
	Restaurants *repository.RestaurantRepository
	Stats       *StatsService
	Tasks       Enqueuer
	Log         *logger.Logger
}

func NewReceiptService(db *gorm.DB, receipts *repository.ReceiptRepository, restaurants *repository.RestaurantRepository, stats *StatsService, tasks Enqueuer, log *logger.Logger) *ReceiptService {
	return &ReceiptService{
		DB:          db,
		Receipts:    receipts,
		Restaurants: restaurants,
		Stats:       stats,
		Tasks:       tasks,
		Log:         log.With("service", "receipts"),
	}
}

func (s *ReceiptService) Create(userID uint, req CreateReceiptReq) (*entity.Receipt, error) {
	if req.Price <= 0 {
		return nil, errors.New("price must be positive")
	}
	if req.RestaurantID == 0 && req.RestaurantName == "" {
		return nil, errors.New("restaurant_id or restaurant_name is required")
	}

	var receipt entity.Receipt
	var restaurant *entity.Restaurant
	createdStub := false

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		restaurant, createdStub, err = s.resolveRestaurant(tx, req)
		if err != nil {
			return err
		}

		receipt = entity.Receipt{
			Date:           req.Date,
			Price:          req.Price,
			ImageURL:       req.ImageURL,
			UserID:         userID,
			RestaurantID:   restaurant.ID,
			RestaurantName: req.RestaurantName,
			Address:        req.Address,
		}
		if err := s.Receipts.Create(tx, &receipt); err != nil {
			return fmt.Errorf("create receipt: %w", err)
		}

		cuisineIDs := make([]uint, 0, len(restaurant.Cuisines))
		for _, c := range restaurant.Cuisines {
			cuisineIDs = append(cuisineIDs, c.ID)
		}
		// Aggregation failure rolls the receipt back too: the two are one unit.
		return s.Stats.RecordReceipt(tx, userID, restaurant.ID, cuisineIDs, req.Date)
	})
	if err != nil {
		return nil, err
	}

	if createdStub {
		if _, err := s.Tasks.Enqueue(restaurant.ID); err != nil {
			// Best-effort: the periodic sweep will pick the stub up later.
			s.Log.Warn("enqueue enrichment failed",
				"restaurant_id", restaurant.ID, "error", err)
		}
	}

	receipt.Restaurant = *restaurant
	return &receipt, nil
}

// resolveRestaurant finds the receipt's restaurant or creates a stub from the
// free-text name/address. Stubs get a locally generated placeholder place id
// until enrichment resolves the real one.
func (s *ReceiptService) resolveRestaurant(tx *gorm.DB, req CreateReceiptReq) (*entity.Restaurant, bool, error) {
	if req.RestaurantID != 0 {
		var rest entity.Restaurant
		if err := tx.Preload("Cuisines").First(&rest, req.RestaurantID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, false, errors.New("restaurant not found")
			}
			return nil, false, err
		}
		return &rest, false, nil
	}

	var rest entity.Restaurant
	err := tx.Preload("Cuisines").
		Where("name = ? AND address = ?", req.RestaurantName, req.Address).
		First(&rest).Error
	if err == nil {
		return &rest, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	stub := entity.Restaurant{
		PlaceID: entity.StubPlaceIDPrefix + uuid.NewString(),
		Name:    req.RestaurantName,
		Address: req.Address,
	}
	if err := s.Restaurants.Create(tx, &stub); err != nil {
		return nil, false, fmt.Errorf("create stub restaurant: %w", err)
	}
	s.Log.Info("created stub restaurant", "restaurant_id", stub.ID, "name", stub.Name)
	return &stub, true, nil
}

func (s *ReceiptService) ListForUser(userID uint, limit int) ([]entity.Receipt, error) {
	return s.Receipts.ListForUser(userID, limit)
}

func (s *ReceiptService) GetForUser(id, userID uint) (*entity.Receipt, error) {
	receipt, err := s.Receipts.FindForUser(id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReceiptNotFound
		}
		return nil, err
	}
	return receipt, nil
}
