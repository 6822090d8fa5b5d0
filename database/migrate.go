// database/migrate.go
package database

import (
	"freight-app/models"

	"gorm.io/gorm"
)

// Migrate covers the models package. The rate slice under freight/master
// migrates itself, main calls both.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.UserSession{},
		&models.LoginLog{},
		&models.Customer{},
		&models.CargoContainer{},
		&models.ContainerStatusLog{},
		&models.WarehouseItem{},
		&models.ImportTask{},
		&models.NotificationLog{},
	)
}
