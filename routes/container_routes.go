package routes

import (
	"freight-app/config"
	"freight-app/controllers"
	"freight-app/middleware"
	"freight-app/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupContainerRoutes(app *fiber.App, db *gorm.DB, imp *services.ImportService, tasks *services.TaskService, notify *services.NotifyService) {
	containerController := controllers.NewContainerController(db, imp, tasks, notify)

	api := app.Group(config.MAIN_ROUTES+"/containers", middleware.AuthMiddleware)

	api.Get("/", containerController.GetAllContainers)
	api.Post("/", containerController.CreateContainer)
	api.Get("/manifest-template", containerController.DownloadManifestTemplate)
	api.Get("/:id", containerController.GetContainerByID)
	api.Put("/:id", containerController.UpdateContainer)
	api.Delete("/:id", containerController.DeleteContainer)
	api.Put("/:id/status", containerController.UpdateStatus)
	api.Get("/:id/items", containerController.GetContainerItems)
	api.Post("/:id/upload-excel", containerController.UploadManifest)
	api.Post("/:id/bulk-create", containerController.BulkCreateItems)
	api.Post("/:id/items/export", containerController.ExportManifest)
}
