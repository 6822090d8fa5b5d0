package controllers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"freight-app/controllers/idgen"
	"freight-app/models"
	"freight-app/utils"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type GoodsController struct {
	DB *gorm.DB
}

func NewGoodsController(DB *gorm.DB) *GoodsController {
	return &GoodsController{DB: DB}
}

type GoodsRequest struct {
	TrackingNo   string          `json:"tracking_no"`
	ShippingMark string          `json:"shipping_mark" validate:"required"`
	Description  string          `json:"description"`
	Quantity     int             `json:"quantity" validate:"omitempty,min=1"`
	Cbm          decimal.Decimal `json:"cbm"`
	WeightKg     decimal.Decimal `json:"weight_kg"`
	CargoType    string          `json:"cargo_type" validate:"omitempty,oneof=sea air"`
	Notes        string          `json:"notes"`
}

// CreateGoods books a single package straight over the counter at the China
// warehouse. Containerized goods arrive through the manifest import instead.
func (c *GoodsController) CreateGoods(ctx *fiber.Ctx) error {
	var req GoodsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if req.Cbm.IsNegative() || req.WeightKg.IsNegative() {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "cbm and weight_kg cannot be negative"})
	}

	trackingNo := strings.ToUpper(strings.TrimSpace(req.TrackingNo))
	if trackingNo == "" {
		trackingNo = idgen.TrackingNo()
	} else {
		var existing models.WarehouseItem
		if err := c.DB.Where("tracking_no = ?", trackingNo).First(&existing).Error; err == nil {
			return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Tracking number already exists"})
		}
	}

	userID := int(ctx.Locals("userID").(float64))
	now := time.Now()

	item := models.WarehouseItem{
		TrackingNo:   trackingNo,
		ShippingMark: req.ShippingMark,
		Description:  req.Description,
		Quantity:     req.Quantity,
		Cbm:          req.Cbm,
		WeightKg:     req.WeightKg,
		CargoType:    req.CargoType,
		Location:     models.LocationChina,
		Status:       models.ItemStatusInWarehouse,
		MatchStatus:  models.MatchStatusUnmatched,
		ReceivedDate: &now,
		Notes:        req.Notes,
		CreatedBy:    userID,
	}
	if item.Quantity == 0 {
		item.Quantity = 1
	}
	if item.CargoType == "" {
		item.CargoType = models.CargoTypeSea
	}

	var customer models.Customer
	if err := c.DB.Where("normalized_mark = ?", utils.NormalizeMark(req.ShippingMark)).
		First(&customer).Error; err == nil {
		item.CustomerID = &customer.ID
		item.MatchStatus = models.MatchStatusMatched
	}

	if err := c.DB.Create(&item).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create item"})
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Item created successfully",
		"data":    item,
	})
}

func (c *GoodsController) GetAllGoods(ctx *fiber.Ctx) error {
	query := c.DB.Model(&models.WarehouseItem{})

	if status := ctx.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if location := ctx.Query("location"); location != "" {
		query = query.Where("location = ?", location)
	}
	if cargoType := ctx.Query("cargo_type"); cargoType != "" {
		query = query.Where("cargo_type = ?", cargoType)
	}
	if matchStatus := ctx.Query("match_status"); matchStatus != "" {
		query = query.Where("match_status = ?", matchStatus)
	}
	if containerID := ctx.QueryInt("container_id", 0); containerID > 0 {
		query = query.Where("container_id = ?", containerID)
	}
	if search := strings.TrimSpace(ctx.Query("search")); search != "" {
		normalized := utils.NormalizeMark(search)
		query = query.Where("upper(tracking_no) LIKE ? OR normalized_mark LIKE ?",
			"%"+strings.ToUpper(search)+"%", "%"+normalized+"%")
	}

	var total int64
	query.Count(&total)

	page := ctx.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	pageSize := ctx.QueryInt("page_size", 50)
	if pageSize < 1 || pageSize > 500 {
		pageSize = 50
	}

	var items []models.WarehouseItem
	if err := query.Order("created_at desc").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&items).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve items"})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Items retrieved successfully",
		"data": fiber.Map{
			"items":     items,
			"total":     total,
			"page":      page,
			"page_size": pageSize,
		},
	})
}

func (c *GoodsController) GetGoodsByID(ctx *fiber.Ctx) error {
	id := ctx.Params("id")

	var item models.WarehouseItem
	if err := c.DB.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Item not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve item"})
	}

	data := fiber.Map{"item": item}
	if item.CustomerID != nil {
		var customer models.Customer
		if err := c.DB.First(&customer, *item.CustomerID).Error; err == nil {
			data["customer"] = customer
		}
	}
	if item.ContainerID != nil {
		var container models.CargoContainer
		if err := c.DB.First(&container, *item.ContainerID).Error; err == nil {
			data["container"] = container
		}
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Item retrieved successfully",
		"data":    data,
	})
}

func (c *GoodsController) UpdateGoods(ctx *fiber.Ctx) error {
	id := ctx.Params("id")

	var item models.WarehouseItem
	if err := c.DB.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Item not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve item"})
	}

	if item.Status == models.ItemStatusDelivered {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Delivered items can no longer be edited"})
	}

	var req GoodsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if req.Cbm.IsNegative() || req.WeightKg.IsNegative() {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "cbm and weight_kg cannot be negative"})
	}

	userID := int(ctx.Locals("userID").(float64))

	// A changed mark invalidates the old customer link, so matching runs
	// again from scratch.
	if utils.NormalizeMark(req.ShippingMark) != item.NormalizedMark {
		item.CustomerID = nil
		item.MatchStatus = models.MatchStatusUnmatched

		var customer models.Customer
		if err := c.DB.Where("normalized_mark = ?", utils.NormalizeMark(req.ShippingMark)).
			First(&customer).Error; err == nil {
			item.CustomerID = &customer.ID
			item.MatchStatus = models.MatchStatusMatched
		}
	}

	item.ShippingMark = req.ShippingMark
	item.Description = req.Description
	if req.Quantity > 0 {
		item.Quantity = req.Quantity
	}
	item.Cbm = req.Cbm
	item.WeightKg = req.WeightKg
	if req.CargoType != "" {
		item.CargoType = req.CargoType
	}
	item.Notes = req.Notes
	item.UpdatedBy = userID

	if err := c.DB.Save(&item).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update item"})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Item updated successfully",
		"data":    item,
	})
}

// UpdateGoodsStatus moves a single item. Delivery is the handover at the
// Ghana counter and only a matched item can be handed to its customer.
func (c *GoodsController) UpdateGoodsStatus(ctx *fiber.Ctx) error {
	id := ctx.Params("id")

	var req struct {
		Status string `json:"status" validate:"required"`
	}
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}
	if !models.IsValidItemStatus(req.Status) {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown item status"})
	}

	var item models.WarehouseItem
	if err := c.DB.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Item not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve item"})
	}

	if item.Status == models.ItemStatusDelivered {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Item is already delivered"})
	}

	userID := int(ctx.Locals("userID").(float64))
	item.Status = req.Status
	item.UpdatedBy = userID

	if req.Status == models.ItemStatusDelivered {
		if item.MatchStatus != models.MatchStatusMatched || item.CustomerID == nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Cannot deliver an item without a matched customer",
			})
		}
		now := time.Now()
		item.DeliveredDate = &now
		item.Location = models.LocationGhana
	}

	if err := c.DB.Save(&item).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update item"})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Item status updated successfully",
		"data":    item,
	})
}

func (c *GoodsController) DeleteGoods(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID"})
	}

	var item models.WarehouseItem
	if err := c.DB.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Item not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	userID := int(ctx.Locals("userID").(float64))
	item.DeletedBy = userID

	result := c.DB.Select("deleted_by").Where("id = ?", id).Updates(&item)
	if result.Error != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": result.Error.Error()})
	}

	if err := c.DB.Delete(&item).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("Item %s deleted successfully", item.TrackingNo),
	})
}
