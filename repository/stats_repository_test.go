package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bit2424/LunchLog/entity"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestUpsertVisitIncrementsAndKeepsMaxDate(t *testing.T) {
	db := newTestDB(t)
	repo := NewStatsRepository(db)
	user := createUser(t, db, "a@example.com")
	rest := createRestaurant(t, db, "place_1", "Mario's")

	// Receipts arrive out of order; last_visit must stay at the max date seen.
	require.NoError(t, repo.UpsertVisit(nil, user.ID, rest.ID, date(2025, 1, 1)))
	require.NoError(t, repo.UpsertVisit(nil, user.ID, rest.ID, date(2025, 1, 5)))
	require.NoError(t, repo.UpsertVisit(nil, user.ID, rest.ID, date(2025, 1, 3)))

	var visit entity.UserRestaurantVisit
	require.NoError(t, db.Where("user_id = ? AND restaurant_id = ?", user.ID, rest.ID).First(&visit).Error)
	assert.Equal(t, 3, visit.VisitCount)
	assert.True(t, visit.LastVisit.Equal(date(2025, 1, 5)), "last_visit = %v", visit.LastVisit)

	// One row per pair, not one per receipt.
	var count int64
	require.NoError(t, db.Model(&entity.UserRestaurantVisit{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUpsertVisitSeparatesUsersAndRestaurants(t *testing.T) {
	db := newTestDB(t)
	repo := NewStatsRepository(db)
	alice := createUser(t, db, "alice@example.com")
	bob := createUser(t, db, "bob@example.com")
	rest := createRestaurant(t, db, "place_1", "Mario's")
	other := createRestaurant(t, db, "place_2", "Sushi Go")

	require.NoError(t, repo.UpsertVisit(nil, alice.ID, rest.ID, date(2025, 2, 1)))
	require.NoError(t, repo.UpsertVisit(nil, alice.ID, rest.ID, date(2025, 2, 2)))
	require.NoError(t, repo.UpsertVisit(nil, alice.ID, other.ID, date(2025, 2, 3)))
	require.NoError(t, repo.UpsertVisit(nil, bob.ID, rest.ID, date(2025, 2, 4)))

	var aliceRest entity.UserRestaurantVisit
	require.NoError(t, db.Where("user_id = ? AND restaurant_id = ?", alice.ID, rest.ID).First(&aliceRest).Error)
	assert.Equal(t, 2, aliceRest.VisitCount)

	var bobRest entity.UserRestaurantVisit
	require.NoError(t, db.Where("user_id = ? AND restaurant_id = ?", bob.ID, rest.ID).First(&bobRest).Error)
	assert.Equal(t, 1, bobRest.VisitCount)
}

func TestUpsertCuisineStatIncrements(t *testing.T) {
	db := newTestDB(t)
	repo := NewStatsRepository(db)
	user := createUser(t, db, "a@example.com")

	italian := entity.Cuisine{Name: "Italian"}
	require.NoError(t, db.Create(&italian).Error)

	require.NoError(t, repo.UpsertCuisineStat(nil, user.ID, italian.ID))
	require.NoError(t, repo.UpsertCuisineStat(nil, user.ID, italian.ID))

	var stat entity.UserCuisineStat
	require.NoError(t, db.Where("user_id = ? AND cuisine_id = ?", user.ID, italian.ID).First(&stat).Error)
	assert.Equal(t, 2, stat.VisitCount)
}

func TestTopVisitsOrderAndLimit(t *testing.T) {
	db := newTestDB(t)
	repo := NewStatsRepository(db)
	user := createUser(t, db, "a@example.com")

	a := createRestaurant(t, db, "place_a", "A")
	b := createRestaurant(t, db, "place_b", "B")
	c := createRestaurant(t, db, "place_c", "C")

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.UpsertVisit(nil, user.ID, b.ID, date(2025, 3, i+1)))
	}
	require.NoError(t, repo.UpsertVisit(nil, user.ID, a.ID, date(2025, 3, 1)))
	for i := 0; i < 2; i++ {
		require.NoError(t, repo.UpsertVisit(nil, user.ID, c.ID, date(2025, 3, i+1)))
	}

	visits, err := repo.TopVisits(user.ID, 2)
	require.NoError(t, err)
	require.Len(t, visits, 2)
	assert.Equal(t, b.ID, visits[0].RestaurantID)
	assert.Equal(t, c.ID, visits[1].RestaurantID)
	assert.Equal(t, "B", visits[0].Restaurant.Name, "restaurant preloaded")

	all, err := repo.TopVisits(user.ID, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestTopCuisinesOrder(t *testing.T) {
	db := newTestDB(t)
	repo := NewStatsRepository(db)
	user := createUser(t, db, "a@example.com")

	italian := entity.Cuisine{Name: "Italian"}
	thai := entity.Cuisine{Name: "Thai"}
	require.NoError(t, db.Create(&italian).Error)
	require.NoError(t, db.Create(&thai).Error)

	require.NoError(t, repo.UpsertCuisineStat(nil, user.ID, thai.ID))
	require.NoError(t, repo.UpsertCuisineStat(nil, user.ID, thai.ID))
	require.NoError(t, repo.UpsertCuisineStat(nil, user.ID, italian.ID))

	stats, err := repo.TopCuisines(user.ID, 5)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, "Thai", stats[0].Cuisine.Name)
	assert.Equal(t, 2, stats[0].VisitCount)
	assert.Equal(t, "Italian", stats[1].Cuisine.Name)
}
