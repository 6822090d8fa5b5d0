package routes

import (
	"freight-app/cache"
	"freight-app/config"
	"freight-app/controllers"
	"freight-app/middleware"
	"freight-app/repositories"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupDashboardRoutes(app *fiber.App, db *gorm.DB, repo *repositories.GoodsRepository, cacheClient cache.Client) {
	dashboardController := controllers.NewDashboardController(db, repo, cacheClient)

	api := app.Group(config.MAIN_ROUTES+"/dashboard", middleware.AuthMiddleware)
	api.Get("/", dashboardController.GetDashboard)
}
