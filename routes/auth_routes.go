package routes

import (
	"freight-app/cache"
	"freight-app/config"
	"freight-app/controllers"
	"freight-app/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupAuthRoutes(app *fiber.App, db *gorm.DB, cacheClient cache.Client) {
	authController := controllers.NewAuthController(db)
	userController := controllers.NewUserController(db)

	api := app.Group(config.MAIN_ROUTES + "/auth")
	api.Post("/login",
		middleware.LoginRateLimiter(cacheClient, config.LoginMaxTries, config.LoginWindow),
		controllers.Login)
	api.Post("/refresh", controllers.RefreshToken)

	authed := app.Group(config.MAIN_ROUTES+"/auth", middleware.AuthMiddleware)
	authed.Get("/logout", authController.Logout)
	authed.Get("/me", authController.Me)
	authed.Get("/isLoggedIn", authController.IsLoggedIn)
	authed.Post("/change-password", userController.ChangePassword)
}
