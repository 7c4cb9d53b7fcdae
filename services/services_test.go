package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/bit2424/LunchLog/entity"
	"github.com/bit2424/LunchLog/repository"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&entity.User{},
		&entity.Cuisine{},
		&entity.Restaurant{},
		&entity.Receipt{},
		&entity.UserRestaurantVisit{},
		&entity.UserCuisineStat{},
		&entity.EnrichmentTask{},
	))
	return db
}

func createUser(t *testing.T, db *gorm.DB, email string) *entity.User {
	t.Helper()
	user := entity.User{Email: email}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func f64(v float64) *float64 { return &v }
func iptr(v int) *int        { return &v }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// fakeGateway stubs the external places API per call. Unset funcs answer empty.
type fakeGateway struct {
	findFn    func(ctx context.Context, name, address string) ([]PlaceCandidate, error)
	detailsFn func(ctx context.Context, placeID string) (*PlaceDetails, error)
	nearbyFn  func(ctx context.Context, lat, lng float64, radius, limit int) ([]PlaceDetails, error)
}

func (g *fakeGateway) FindByText(ctx context.Context, name, address string) ([]PlaceCandidate, error) {
	if g.findFn == nil {
		return nil, nil
	}
	return g.findFn(ctx, name, address)
}

func (g *fakeGateway) FetchDetails(ctx context.Context, placeID string) (*PlaceDetails, error) {
	if g.detailsFn == nil {
		return nil, ErrPlaceNotFound
	}
	return g.detailsFn(ctx, placeID)
}

func (g *fakeGateway) NearbySearch(ctx context.Context, lat, lng float64, radius, limit int) ([]PlaceDetails, error) {
	if g.nearbyFn == nil {
		return nil, nil
	}
	return g.nearbyFn(ctx, lat, lng, radius, limit)
}

// fakeEnqueuer records enrichment submissions.
type fakeEnqueuer struct {
	calls []uint
	err   error
}

func (f *fakeEnqueuer) Enqueue(restaurantID uint) (*entity.EnrichmentTask, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.calls = append(f.calls, restaurantID)
	return &entity.EnrichmentTask{RestaurantID: restaurantID, Status: entity.TaskStatusQueued}, nil
}

// seedVisit inserts an aggregate row directly, bypassing the receipt path.
func seedVisit(t *testing.T, db *gorm.DB, userID uint, rest *entity.Restaurant, visits int) {
	t.Helper()
	repo := repository.NewStatsRepository(db)
	for i := 0; i < visits; i++ {
		require.NoError(t, repo.UpsertVisit(nil, userID, rest.ID, day(2025, 1, i+1)))
	}
}

func seedCuisineStat(t *testing.T, db *gorm.DB, userID uint, name string, visits int) *entity.Cuisine {
	t.Helper()
	cuisines := repository.NewCuisineRepository(db)
	cuisine, err := cuisines.FindOrCreate(nil, name)
	require.NoError(t, err)
	stats := repository.NewStatsRepository(db)
	for i := 0; i < visits; i++ {
		require.NoError(t, stats.UpsertCuisineStat(nil, userID, cuisine.ID))
	}
	return cuisine
}
