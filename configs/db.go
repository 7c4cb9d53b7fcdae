package configs

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/bit2424/LunchLog/entity"
)

var db *gorm.DB

func DB() *gorm.DB {
	return db
}

func ConnectionDB(cfg *Config) error {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "postgres":
		dialector = postgres.Open(cfg.DBSource)
	case "sqlite":
		dialector = sqlite.Open(cfg.DBSource)
	default:
		return fmt.Errorf("unsupported db driver %q", cfg.DBDriver)
	}

	database, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	db = database
	return nil
}

func SetupDatabase() error {
	// Migrate the schema
	return db.AutoMigrate(
		&entity.User{},
		&entity.Cuisine{}, &entity.Restaurant{},
		&entity.Receipt{},
		&entity.UserRestaurantVisit{}, &entity.UserCuisineStat{},
		&entity.EnrichmentTask{},
	)
}
