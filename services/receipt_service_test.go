package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bit2424/LunchLog/entity"
	"github.com/bit2424/LunchLog/pkg/logger"
	"github.com/bit2424/LunchLog/repository"
)

func newReceiptService(db *gorm.DB, tasks Enqueuer) *ReceiptService {
	log := logger.Nop()
	return NewReceiptService(db,
		repository.NewReceiptRepository(db),
		repository.NewRestaurantRepository(db),
		NewStatsService(repository.NewStatsRepository(db), log),
		tasks, log)
}

func TestCreateReceiptFromFreeTextCreatesStubAndEnqueues(t *testing.T) {
	db := newTestDB(t)
	tasks := &fakeEnqueuer{}
	svc := newReceiptService(db, tasks)
	user := createUser(t, db, "a@example.com")

	receipt, err := svc.Create(user.ID, CreateReceiptReq{
		Date:           day(2025, 1, 10),
		Price:          1250,
		RestaurantName: "Mario's",
		Address:        "1 Main St",
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(receipt.Restaurant.PlaceID, entity.StubPlaceIDPrefix))
	assert.True(t, receipt.Restaurant.IsStub())
	assert.Equal(t, []uint{receipt.RestaurantID}, tasks.calls)

	var visit entity.UserRestaurantVisit
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&visit).Error)
	assert.Equal(t, 1, visit.VisitCount)
	assert.True(t, visit.LastVisit.Equal(day(2025, 1, 10)))
}

func TestCreateReceiptReusesRestaurantByNameAndAddress(t *testing.T) {
	db := newTestDB(t)
	tasks := &fakeEnqueuer{}
	svc := newReceiptService(db, tasks)
	user := createUser(t, db, "a@example.com")

	first, err := svc.Create(user.ID, CreateReceiptReq{
		Date: day(2025, 1, 10), Price: 1250,
		RestaurantName: "Mario's", Address: "1 Main St",
	})
	require.NoError(t, err)

	second, err := svc.Create(user.ID, CreateReceiptReq{
		Date: day(2025, 1, 12), Price: 900,
		RestaurantName: "Mario's", Address: "1 Main St",
	})
	require.NoError(t, err)

	assert.Equal(t, first.RestaurantID, second.RestaurantID)
	// Only the stub creation enqueues enrichment.
	assert.Len(t, tasks.calls, 1)

	var visit entity.UserRestaurantVisit
	require.NoError(t, db.Where("user_id = ? AND restaurant_id = ?", user.ID, first.RestaurantID).First(&visit).Error)
	assert.Equal(t, 2, visit.VisitCount)
	assert.True(t, visit.LastVisit.Equal(day(2025, 1, 12)))
}

func TestCreateReceiptByRestaurantIDBumpsCuisineStats(t *testing.T) {
	db := newTestDB(t)
	tasks := &fakeEnqueuer{}
	svc := newReceiptService(db, tasks)
	user := createUser(t, db, "a@example.com")

	cuisines := repository.NewCuisineRepository(db)
	italian, err := cuisines.FindOrCreate(nil, "Italian")
	require.NoError(t, err)
	pizza, err := cuisines.FindOrCreate(nil, "Pizza")
	require.NoError(t, err)

	rest := entity.Restaurant{PlaceID: "place_real", Name: "Mario's"}
	require.NoError(t, db.Create(&rest).Error)
	require.NoError(t, cuisines.Associate(nil, &rest, []entity.Cuisine{*italian, *pizza}))

	_, err = svc.Create(user.ID, CreateReceiptReq{
		Date: day(2025, 1, 10), Price: 1500, RestaurantID: rest.ID,
	})
	require.NoError(t, err)

	var stats []entity.UserCuisineStat
	require.NoError(t, db.Where("user_id = ?", user.ID).Find(&stats).Error)
	assert.Len(t, stats, 2)
	for _, s := range stats {
		assert.Equal(t, 1, s.VisitCount)
	}
	// Confirmed restaurants never re-enter the enrichment queue on receipt writes.
	assert.Empty(t, tasks.calls)
}

func TestCreateReceiptValidation(t *testing.T) {
	db := newTestDB(t)
	svc := newReceiptService(db, &fakeEnqueuer{})
	user := createUser(t, db, "a@example.com")

	_, err := svc.Create(user.ID, CreateReceiptReq{Date: day(2025, 1, 10), Price: 0, RestaurantName: "X"})
	assert.Error(t, err, "non-positive price")

	_, err = svc.Create(user.ID, CreateReceiptReq{Date: day(2025, 1, 10), Price: 100})
	assert.Error(t, err, "no restaurant reference")

	_, err = svc.Create(user.ID, CreateReceiptReq{Date: day(2025, 1, 10), Price: 100, RestaurantID: 999})
	assert.Error(t, err, "unknown restaurant id")

	// Failed creates leave no partial rows behind.
	var receipts int64
	require.NoError(t, db.Model(&entity.Receipt{}).Count(&receipts).Error)
	assert.Zero(t, receipts)
	var visits int64
	require.NoError(t, db.Model(&entity.UserRestaurantVisit{}).Count(&visits).Error)
	assert.Zero(t, visits)
}

func TestCreateReceiptSurvivesEnqueueFailure(t *testing.T) {
	db := newTestDB(t)
	tasks := &fakeEnqueuer{err: assert.AnError}
	svc := newReceiptService(db, tasks)
	user := createUser(t, db, "a@example.com")

	// Enqueue is best-effort: the receipt still commits.
	receipt, err := svc.Create(user.ID, CreateReceiptReq{
		Date: day(2025, 1, 10), Price: 1250,
		RestaurantName: "Mario's", Address: "1 Main St",
	})
	require.NoError(t, err)
	assert.NotZero(t, receipt.ID)
}

func TestGetForUserScopesByOwner(t *testing.T) {
	db := newTestDB(t)
	svc := newReceiptService(db, &fakeEnqueuer{})
	alice := createUser(t, db, "alice@example.com")
	bob := createUser(t, db, "bob@example.com")

	receipt, err := svc.Create(alice.ID, CreateReceiptReq{
		Date: day(2025, 1, 10), Price: 1250,
		RestaurantName: "Mario's", Address: "1 Main St",
	})
	require.NoError(t, err)

	got, err := svc.GetForUser(receipt.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, receipt.ID, got.ID)

	_, err = svc.GetForUser(receipt.ID, bob.ID)
	assert.ErrorIs(t, err, ErrReceiptNotFound)
}

func TestListForUserNewestFirst(t *testing.T) {
	db := newTestDB(t)
	svc := newReceiptService(db, &fakeEnqueuer{})
	user := createUser(t, db, "a@example.com")

	for _, d := range []int{10, 14, 12} {
		_, err := svc.Create(user.ID, CreateReceiptReq{
			Date: day(2025, 1, d), Price: 1000,
			RestaurantName: "Mario's", Address: "1 Main St",
		})
		require.NoError(t, err)
	}

	receipts, err := svc.ListForUser(user.ID, 0)
	require.NoError(t, err)
	require.Len(t, receipts, 3)
	assert.True(t, receipts[0].Date.Equal(day(2025, 1, 14)))
	assert.True(t, receipts[2].Date.Equal(day(2025, 1, 10)))
}
