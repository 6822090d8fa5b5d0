package rate

import (
	"freight-app/config"
	"freight-app/middleware"
	"freight-app/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRateRoutes(app *fiber.App, db *gorm.DB) {
	handler := NewRateHandler(db)
	api := app.Group(config.MAIN_ROUTES+"/rates", middleware.AuthMiddleware)

	api.Get("/", handler.GetAllRates)
	api.Post("/preview", handler.PreviewCharge)
	api.Get("/:id", handler.GetRateByID)

	// Price card changes are admin work
	api.Post("/", middleware.RequireRole(models.RoleSuperAdmin, models.RoleAdmin), handler.CreateRate)
	api.Put("/:id", middleware.RequireRole(models.RoleSuperAdmin, models.RoleAdmin), handler.UpdateRate)
	api.Delete("/:id", middleware.RequireRole(models.RoleSuperAdmin, models.RoleAdmin), handler.DeleteRate)
}
