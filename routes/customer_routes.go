package routes

import (
	"freight-app/config"
	"freight-app/controllers"
	"freight-app/middleware"
	"freight-app/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupCustomerRoutes(app *fiber.App, db *gorm.DB, imp *services.ImportService, tasks *services.TaskService) {
	customerController := controllers.NewCustomerController(db, imp, tasks)

	api := app.Group(config.MAIN_ROUTES+"/customers", middleware.AuthMiddleware)

	api.Get("/", customerController.GetAllCustomers)
	api.Post("/", customerController.CreateCustomer)
	api.Post("/upload-excel", customerController.UploadExcel)
	api.Post("/bulk-create", customerController.BulkCreate)
	api.Get("/import-template", customerController.DownloadTemplate)
	api.Post("/export", customerController.ExportExcel)
	api.Get("/:id", customerController.GetCustomerByID)
	api.Get("/:id/items", customerController.GetCustomerItems)
	api.Put("/:id", customerController.UpdateCustomer)
	api.Delete("/:id", customerController.DeleteCustomer)
}
