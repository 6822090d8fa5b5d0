// database/seeder.go
package database

import (
	"errors"
	"log"

	"freight-app/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func RunSeeders(db *gorm.DB) {
	SeedUserMaster(db)
}

// SeedUserMaster creates the first admin account so a fresh install can log
// in. The password must be changed after the first login.
func SeedUserMaster(db *gorm.DB) {
	users := []models.User{
		{
			Username: "admin",
			Password: "admin123",
			Name:     "Administrator",
			Email:    "admin@example.com",
			Role:     models.RoleSuperAdmin,
			IsActive: true,
		},
	}

	for _, user := range users {
		var existing models.User
		err := db.Where("username = ?", user.Username).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			hashed, hashErr := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
			if hashErr != nil {
				log.Println("Failed to hash password for:", user.Username, hashErr)
				continue
			}
			user.Password = string(hashed)
			if err := db.Create(&user).Error; err != nil {
				log.Println("Failed to insert user:", user.Username, err)
			} else {
				log.Println("✅ User seeded:", user.Username)
			}
		} else if err != nil {
			log.Fatalf("Unexpected DB error: %v", err)
		}
	}
}
