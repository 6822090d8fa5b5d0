package routes

import (
	"freight-app/config"
	"freight-app/controllers"
	"freight-app/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupGoodsRoutes(app *fiber.App, db *gorm.DB) {
	goodsController := controllers.NewGoodsController(db)

	api := app.Group(config.MAIN_ROUTES+"/goods", middleware.AuthMiddleware)

	api.Get("/", goodsController.GetAllGoods)
	api.Post("/", goodsController.CreateGoods)
	api.Get("/:id", goodsController.GetGoodsByID)
	api.Put("/:id", goodsController.UpdateGoods)
	api.Put("/:id/status", goodsController.UpdateGoodsStatus)
	api.Delete("/:id", goodsController.DeleteGoods)
}
