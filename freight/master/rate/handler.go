package rate

import (
	"errors"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type RateHandler struct {
	DB *gorm.DB
}

func NewRateHandler(db *gorm.DB) *RateHandler {
	return &RateHandler{DB: db}
}

type RateRequest struct {
	CargoType   string          `json:"cargo_type" validate:"required,oneof=sea air"`
	Category    string          `json:"category" validate:"required,oneof=regular special"`
	Description string          `json:"description"`
	PricePerCbm decimal.Decimal `json:"price_per_cbm"`
	PricePerKg  decimal.Decimal `json:"price_per_kg"`
	Currency    string          `json:"currency"`
	IsActive    *bool           `json:"is_active"`
}

// checkPrice makes sure the rate carries the price its cargo type bills by.
// Sea cargo is billed per CBM, air cargo per kilogram.
func checkPrice(req *RateRequest) string {
	if req.CargoType == CargoSea && !req.PricePerCbm.IsPositive() {
		return "Sea rates require a positive price_per_cbm"
	}
	if req.CargoType == CargoAir && !req.PricePerKg.IsPositive() {
		return "Air rates require a positive price_per_kg"
	}
	return ""
}

func (h *RateHandler) GetAllRates(ctx *fiber.Ctx) error {
	var rates []Rate
	if err := h.DB.Order("cargo_type, category").Find(&rates).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve rates",
		})
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "Rates retrieved successfully",
		"data":    rates,
	})
}

func (h *RateHandler) GetRateByID(ctx *fiber.Ctx) error {
	id := ctx.Params("id")
	var item Rate
	if err := h.DB.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Rate not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve rate"})
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "Rate retrieved successfully",
		"data":    item,
	})
}

func (h *RateHandler) CreateRate(ctx *fiber.Ctx) error {
	var req RateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if msg := checkPrice(&req); msg != "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	var existing Rate
	if err := h.DB.Where("cargo_type = ? AND category = ?", req.CargoType, req.Category).First(&existing).Error; err == nil {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Rate for this cargo type and category already exists"})
	}

	userID := int(ctx.Locals("userID").(float64))
	item := Rate{
		CargoType:   req.CargoType,
		Category:    req.Category,
		Description: req.Description,
		PricePerCbm: req.PricePerCbm,
		PricePerKg:  req.PricePerKg,
		Currency:    req.Currency,
		IsActive:    true,
		CreatedBy:   userID,
	}
	if item.Currency == "" {
		item.Currency = "USD"
	}

	if err := h.DB.Create(&item).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create rate"})
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Rate created successfully",
		"data":    item,
	})
}

func (h *RateHandler) UpdateRate(ctx *fiber.Ctx) error {
	id := ctx.Params("id")
	var item Rate
	if err := h.DB.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Rate not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve rate"})
	}

	var req RateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if msg := checkPrice(&req); msg != "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	userID := int(ctx.Locals("userID").(float64))
	item.CargoType = req.CargoType
	item.Category = req.Category
	item.Description = req.Description
	item.PricePerCbm = req.PricePerCbm
	item.PricePerKg = req.PricePerKg
	if req.Currency != "" {
		item.Currency = req.Currency
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}
	item.UpdatedBy = userID

	if err := h.DB.Save(&item).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update rate"})
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "Rate updated successfully",
		"data":    item,
	})
}

func (h *RateHandler) DeleteRate(ctx *fiber.Ctx) error {
	id := ctx.Params("id")
	var item Rate
	if err := h.DB.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Rate not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve rate"})
	}

	userID := int(ctx.Locals("userID").(float64))
	h.DB.Model(&item).Update("deleted_by", userID)
	if err := h.DB.Delete(&item).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete rate"})
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "Rate deleted successfully",
	})
}

type ChargePreviewRequest struct {
	CargoType string          `json:"cargo_type" validate:"required,oneof=sea air"`
	Category  string          `json:"category" validate:"required,oneof=regular special"`
	Cbm       decimal.Decimal `json:"cbm"`
	WeightKg  decimal.Decimal `json:"weight_kg"`
}

// PreviewCharge prices a hypothetical shipment without touching any item.
// The front desk uses it to quote customers before goods are received.
func (h *RateHandler) PreviewCharge(ctx *fiber.Ctx) error {
	var req ChargePreviewRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var item Rate
	err := h.DB.Where("cargo_type = ? AND category = ? AND is_active = ?", req.CargoType, req.Category, true).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No active rate for this cargo type and category"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve rate"})
	}

	charge := item.ChargeFor(req.Cbm, req.WeightKg)

	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "Charge calculated successfully",
		"data": fiber.Map{
			"rate":     item,
			"cbm":      req.Cbm,
			"weight":   req.WeightKg,
			"charge":   charge,
			"currency": item.Currency,
		},
	})
}
