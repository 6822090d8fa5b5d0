package controllers

import (
	"encoding/json"
	"time"

	"freight-app/cache"
	"freight-app/config"
	"freight-app/models"
	"freight-app/repositories"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type DashboardController struct {
	DB    *gorm.DB
	Repo  *repositories.GoodsRepository
	Cache cache.Client
}

func NewDashboardController(DB *gorm.DB, repo *repositories.GoodsRepository, cacheClient cache.Client) *DashboardController {
	return &DashboardController{DB: DB, Repo: repo, Cache: cacheClient}
}

const dashboardCacheKey = "dashboard:summary"

type statusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type dashboardPayload struct {
	Summary           repositories.DashboardSummary `json:"summary"`
	ContainersByState []statusCount                 `json:"containers_by_status"`
	ItemsByLocation   []statusCount                 `json:"items_by_location"`
	ItemsByMatch      []statusCount                 `json:"items_by_match_status"`
	RecentTasks       []models.ImportTask           `json:"recent_tasks"`
	RecentContainers  []models.CargoContainer       `json:"recent_containers"`
	GeneratedAt       time.Time                     `json:"generated_at"`
}

// GetDashboard serves the operations home screen. The whole payload is
// cached for a short TTL since every signed-in browser tab polls it.
func (c *DashboardController) GetDashboard(ctx *fiber.Ctx) error {
	if cached, err := c.Cache.Get(ctx.Context(), dashboardCacheKey); err == nil {
		var payload dashboardPayload
		if json.Unmarshal([]byte(cached), &payload) == nil {
			return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
				"success": true,
				"message": "Dashboard retrieved successfully",
				"data":    payload,
				"cached":  true,
			})
		}
	}

	payload, err := c.buildDashboard()
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to build dashboard"})
	}

	if encoded, err := json.Marshal(payload); err == nil {
		c.Cache.Set(ctx.Context(), dashboardCacheKey,
			string(encoded), time.Duration(config.CacheTTLSecs)*time.Second)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Dashboard retrieved successfully",
		"data":    payload,
	})
}

func (c *DashboardController) buildDashboard() (*dashboardPayload, error) {
	summary, err := c.Repo.GetDashboardSummary()
	if err != nil {
		return nil, err
	}

	payload := &dashboardPayload{
		Summary:     summary,
		GeneratedAt: time.Now(),
	}

	sqlContainers := `select status, count(*) as count
	from cargo_containers
	where deleted_at is null
	group by status
	order by count(*) desc
	`
	if err := c.DB.Raw(sqlContainers).Scan(&payload.ContainersByState).Error; err != nil {
		return nil, err
	}

	sqlLocations := `select location as status, count(*) as count
	from warehouse_items
	where deleted_at is null
	group by location
	order by count(*) desc
	`
	if err := c.DB.Raw(sqlLocations).Scan(&payload.ItemsByLocation).Error; err != nil {
		return nil, err
	}

	sqlMatch := `select match_status as status, count(*) as count
	from warehouse_items
	where deleted_at is null
	group by match_status
	order by count(*) desc
	`
	if err := c.DB.Raw(sqlMatch).Scan(&payload.ItemsByMatch).Error; err != nil {
		return nil, err
	}

	if err := c.DB.Order("created_at desc").Limit(10).
		Find(&payload.RecentTasks).Error; err != nil {
		return nil, err
	}

	if err := c.DB.Order("created_at desc").Limit(5).
		Find(&payload.RecentContainers).Error; err != nil {
		return nil, err
	}

	return payload, nil
}
