package repository

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/bit2424/LunchLog/entity"
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

func createRestaurant(t *testing.T, db *gorm.DB, placeID, name string) *entity.Restaurant {
	t.Helper()
	rest := entity.Restaurant{PlaceID: placeID, Name: name}
	require.NoError(t, db.Create(&rest).Error)
	return &rest
}
