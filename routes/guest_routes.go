package routes

import (
	"freight-app/cache"
	"freight-app/config"
	"freight-app/controllers/guest"
	"freight-app/repositories"

	"github.com/gofiber/fiber/v2"
)

// SetupGuestRoutes registers the public endpoints. No auth middleware here:
// customers track parcels with nothing but a reference.
func SetupGuestRoutes(app *fiber.App, repo *repositories.GoodsRepository, cacheClient cache.Client) {
	trackingController := guest.NewTrackingController(repo, cacheClient)

	api := app.Group(config.GUEST_ROUTES)
	api.Get("/track/:ref", trackingController.Track)
}
