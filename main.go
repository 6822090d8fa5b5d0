package main

import (
	"fmt"
	"log"

	"freight-app/cache"
	"freight-app/config"
	"freight-app/controllers/idgen"
	"freight-app/database"
	"freight-app/freight/master/rate"
	"freight-app/repositories"
	"freight-app/routes"
	"freight-app/services"

	"github.com/gofiber/fiber/v2"
)

func main() {

	config.LoadConfig()

	app := fiber.New()

	// Pastikan database ada
	database.EnsureDatabaseExists(config.DBName)

	db, err := database.GetDBConnection(config.DBName)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto migrate models
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to auto migrate: %v", err)
	}
	if err := rate.Migrate(db); err != nil {
		log.Fatalf("Failed to auto migrate rates: %v", err)
	}

	idgen.Init()
	database.RunSeeders(db)
	rate.SeedRates(db)

	var cacheClient cache.Client
	if config.RedisAddr == "" {
		cacheClient = cache.NewMemoryClient()
	} else {
		cacheClient = cache.NewRedisClient(config.RedisAddr)
	}

	// Shared services
	importService := services.NewImportService(db)
	notifyService := services.NewNotifyService(db, services.NewSMTPMailer())
	taskService := services.NewTaskService(db, importService, notifyService)
	matchService := services.NewMatchService(db)
	goodsRepository := repositories.NewGoodsRepository(db)

	// Setup CORS middleware
	config.SetupCORS(app)

	// Setup routes
	routes.SetupAuthRoutes(app, db, cacheClient)
	routes.SetupUserRoutes(app, db)
	routes.SetupCustomerRoutes(app, db, importService, taskService)
	routes.SetupContainerRoutes(app, db, importService, taskService, notifyService)
	routes.SetupGoodsRoutes(app, db)
	routes.SetupTaskRoutes(app, taskService)
	routes.SetupUnmatchedRoutes(app, goodsRepository, matchService)
	routes.SetupDashboardRoutes(app, db, goodsRepository, cacheClient)
	routes.SetupGuestRoutes(app, goodsRepository, cacheClient)
	rate.SetupRateRoutes(app, db)

	port := config.APP_PORT
	fmt.Println("🚀 Server berjalan di port " + port)

	if err := app.Listen(":" + port); err != nil {
		log.Fatal(err)
	}
}
