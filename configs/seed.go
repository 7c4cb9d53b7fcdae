package configs

import (
	"log"

	"github.com/bit2424/LunchLog/entity"
)

// SeedDefaultUser creates the default user from env on first boot.
func SeedDefaultUser() error {
	db := DB()
	email := getEnv("DEFAULT_USER_EMAIL", "")
	if email == "" {
		log.Println("skip seeding default user: missing DEFAULT_USER_EMAIL")
		return nil
	}

	var count int64
	db.Model(&entity.User{}).Where("email = ?", email).Count(&count)
	if count > 0 {
		return nil
	}

	user := entity.User{
		Email:     email,
		FirstName: getEnv("DEFAULT_USER_FIRST_NAME", "Default"),
		LastName:  getEnv("DEFAULT_USER_LAST_NAME", "User"),
	}
	return db.Create(&user).Error
}
