package routes

import (
	"freight-app/config"
	"freight-app/controllers"
	"freight-app/middleware"
	"freight-app/services"

	"github.com/gofiber/fiber/v2"
)

func SetupTaskRoutes(app *fiber.App, tasks *services.TaskService) {
	taskController := controllers.NewTaskController(tasks)

	api := app.Group(config.MAIN_ROUTES+"/tasks", middleware.AuthMiddleware)
	api.Get("/:id", taskController.GetTaskByID)
}
