package routes

import (
	"freight-app/config"
	"freight-app/controllers"
	"freight-app/middleware"
	"freight-app/repositories"
	"freight-app/services"

	"github.com/gofiber/fiber/v2"
)

func SetupUnmatchedRoutes(app *fiber.App, repo *repositories.GoodsRepository, match *services.MatchService) {
	unmatchedController := controllers.NewUnmatchedController(repo, match)

	api := app.Group(config.MAIN_ROUTES+"/unmatched", middleware.AuthMiddleware)

	api.Get("/", unmatchedController.GetUnmatchedGroups)
	api.Get("/suggestions", unmatchedController.GetSuggestions)
	api.Post("/resolve", unmatchedController.Resolve)
}
