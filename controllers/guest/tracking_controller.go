package guest

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"freight-app/cache"
	"freight-app/config"
	"freight-app/repositories"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type TrackingController struct {
	Repo  *repositories.GoodsRepository
	Cache cache.Client
}

func NewTrackingController(repo *repositories.GoodsRepository, cacheClient cache.Client) *TrackingController {
	return &TrackingController{Repo: repo, Cache: cacheClient}
}

// Track answers the public "where is my shipment" lookup. No login, no
// customer details in the response, and each reference is cached briefly
// because arriving containers get hammered by refreshes.
func (c *TrackingController) Track(ctx *fiber.Ctx) error {
	ref := strings.TrimSpace(ctx.Params("ref"))
	if ref == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Reference is required"})
	}

	cacheKey := "track:" + strings.ToUpper(ref)
	if cached, err := c.Cache.Get(ctx.Context(), cacheKey); err == nil {
		var info repositories.TrackingInfo
		if json.Unmarshal([]byte(cached), &info) == nil {
			return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
				"success": true,
				"message": "Tracking info retrieved successfully",
				"data":    info,
			})
		}
	}

	info, err := c.Repo.TrackByReference(ref)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Nothing found for this reference"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to look up reference"})
	}

	if encoded, err := json.Marshal(info); err == nil {
		c.Cache.Set(ctx.Context(), cacheKey,
			string(encoded), time.Duration(config.CacheTTLSecs)*time.Second)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Tracking info retrieved successfully",
		"data":    info,
	})
}
