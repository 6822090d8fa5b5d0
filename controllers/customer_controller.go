package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"freight-app/config"
	"freight-app/models"
	"freight-app/services"
	"freight-app/utils"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type CustomerController struct {
	DB    *gorm.DB
	Imp   *services.ImportService
	Tasks *services.TaskService
}

func NewCustomerController(DB *gorm.DB, imp *services.ImportService, tasks *services.TaskService) *CustomerController {
	return &CustomerController{DB: DB, Imp: imp, Tasks: tasks}
}

type CustomerRequest struct {
	ShippingMark string `json:"shipping_mark" validate:"required"`
	Name         string `json:"name" validate:"required"`
	Phone        string `json:"phone" validate:"required"`
	AltPhone     string `json:"alt_phone"`
	Email        string `json:"email"`
	City         string `json:"city"`
	Country      string `json:"country"`
	Notes        string `json:"notes"`
}

//==============================================================================
// Begin of Customer CRUD
//==============================================================================

func (c *CustomerController) CreateCustomer(ctx *fiber.Ctx) error {
	var req CustomerRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if req.Email != "" && !utils.IsValidEmail(req.Email) {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid email format"})
	}

	norm := utils.NormalizeMark(req.ShippingMark)
	var existing models.Customer
	if err := c.DB.Where("normalized_mark = ?", norm).First(&existing).Error; err == nil {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Shipping mark already registered to " + existing.Name,
		})
	}

	userID := int(ctx.Locals("userID").(float64))
	customer := models.Customer{
		ShippingMark: req.ShippingMark,
		Name:         req.Name,
		Phone:        req.Phone,
		AltPhone:     req.AltPhone,
		Email:        req.Email,
		City:         req.City,
		Country:      req.Country,
		Notes:        req.Notes,
		IsActive:     true,
		CreatedBy:    userID,
	}

	if err := c.DB.Create(&customer).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create customer"})
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Customer created successfully",
		"data":    customer,
	})
}

func (c *CustomerController) GetAllCustomers(ctx *fiber.Ctx) error {
	query := c.DB.Model(&models.Customer{})

	// Search hits the mark (normalized), the name and both phone numbers
	if search := strings.TrimSpace(ctx.Query("search")); search != "" {
		normLike := "%" + utils.NormalizeMark(search) + "%"
		nameLike := "%" + strings.ToUpper(search) + "%"
		phoneLike := "%" + utils.NormalizePhone(search) + "%"
		query = query.Where(
			"normalized_mark LIKE ? OR upper(name) LIKE ? OR normalized_phone LIKE ? OR phone LIKE ?",
			normLike, nameLike, phoneLike, "%"+search+"%",
		)
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

	var customers []models.Customer
	if err := query.Order("shipping_mark asc").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&customers).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve customers"})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Customers retrieved successfully",
		"data": fiber.Map{
			"customers": customers,
			"total":     total,
			"page":      page,
			"page_size": pageSize,
		},
	})
}

func (c *CustomerController) GetCustomerByID(ctx *fiber.Ctx) error {
	id := ctx.Params("id")

	var customer models.Customer
	if err := c.DB.First(&customer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Customer not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve customer"})
	}

	var items []models.WarehouseItem
	if err := c.DB.Where("customer_id = ?", customer.ID).
		Order("created_at desc").Limit(100).
		Find(&items).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve customer goods"})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Customer retrieved successfully",
		"data": fiber.Map{
			"customer": customer,
			"items":    items,
		},
	})
}

// GetCustomerItems pages through everything the customer has ever shipped.
func (c *CustomerController) GetCustomerItems(ctx *fiber.Ctx) error {
	id := ctx.Params("id")

	var customer models.Customer
	if err := c.DB.First(&customer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Customer not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve customer"})
	}

	query := c.DB.Model(&models.WarehouseItem{}).Where("customer_id = ?", customer.ID)
	if status := ctx.Query("status"); status != "" {
		query = query.Where("status = ?", status)
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
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve customer goods"})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Customer items retrieved successfully",
		"data": fiber.Map{
			"customer":  customer,
			"items":     items,
			"total":     total,
			"page":      page,
			"page_size": pageSize,
		},
	})
}

func (c *CustomerController) UpdateCustomer(ctx *fiber.Ctx) error {
	id := ctx.Params("id")

	var customer models.Customer
	if err := c.DB.First(&customer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Customer not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve customer"})
	}

	var req CustomerRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if req.Email != "" && !utils.IsValidEmail(req.Email) {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid email format"})
	}

	// A changed mark must not collide with another customer. Items already
	// assigned stay assigned, matching is by id once resolved.
	norm := utils.NormalizeMark(req.ShippingMark)
	var existing models.Customer
	if err := c.DB.Where("normalized_mark = ? AND id <> ?", norm, customer.ID).
		First(&existing).Error; err == nil {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Shipping mark already registered to " + existing.Name,
		})
	}

	userID := int(ctx.Locals("userID").(float64))
	customer.ShippingMark = req.ShippingMark
	customer.Name = req.Name
	customer.Phone = req.Phone
	customer.AltPhone = req.AltPhone
	customer.Email = req.Email
	customer.City = req.City
	if req.Country != "" {
		customer.Country = req.Country
	}
	customer.Notes = req.Notes
	customer.UpdatedBy = userID

	if err := c.DB.Save(&customer).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update customer"})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Customer updated successfully",
		"data":    customer,
	})
}

func (c *CustomerController) DeleteCustomer(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID"})
	}

	var customer models.Customer
	if err := c.DB.First(&customer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Customer not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	var pending int64
	c.DB.Model(&models.WarehouseItem{}).
		Where("customer_id = ? AND status <> ?", customer.ID, models.ItemStatusDelivered).
		Count(&pending)
	if pending > 0 {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": fmt.Sprintf("Customer still has %d undelivered package(s)", pending),
		})
	}

	userID := int(ctx.Locals("userID").(float64))
	customer.DeletedBy = userID

	result := c.DB.Select("deleted_by").Where("id = ?", id).Updates(&customer)
	if result.Error != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": result.Error.Error()})
	}

	if err := c.DB.Delete(&customer).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Customer deleted successfully",
	})
}

//==============================================================================
// Begin of Customer Excel Import
//==============================================================================

// UploadExcel reads a customer file and classifies every row. Nothing is
// written, the client shows the result and calls BulkCreate with the rows the
// user has reviewed.
func (c *CustomerController) UploadExcel(ctx *fiber.Ctx) error {
	file, err := ctx.FormFile("file")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "File is required",
		})
	}

	if !strings.HasSuffix(strings.ToLower(file.Filename), ".xlsx") &&
		!strings.HasSuffix(strings.ToLower(file.Filename), ".xls") {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Only Excel files (.xlsx, .xls) are allowed",
		})
	}

	fileContent, err := file.Open()
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to open file",
		})
	}
	defer fileContent.Close()

	rows, err := c.Imp.ParseCustomerExcel(fileContent)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	result := c.Imp.ClassifyCustomerRows(rows)

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "File processed successfully",
		"data":    result,
	})
}

// BulkCreate persists reviewed rows. Small batches run inline, anything past
// the async threshold becomes a background task the client polls.
func (c *CustomerController) BulkCreate(ctx *fiber.Ctx) error {
	var req struct {
		Rows []services.CustomerRow `json:"rows"`
	}
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}
	if len(req.Rows) == 0 {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No rows to import"})
	}
	if len(req.Rows) > config.ImportMaxRows {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("Batch has %d rows, the limit is %d", len(req.Rows), config.ImportMaxRows),
		})
	}

	userID := int(ctx.Locals("userID").(float64))

	if len(req.Rows) <= config.ImportAsyncThreshold {
		outcome, err := c.Imp.CreateCustomers(req.Rows, userID, nil)
		if err != nil {
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"success": true,
			"message": "Customers imported successfully",
			"data":    outcome,
		})
	}

	task, err := c.Tasks.NewTask(models.TaskTypeCustomers, len(req.Rows), nil, userID)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create import task"})
	}
	c.Tasks.RunCustomerImport(task, req.Rows, userID)

	return ctx.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"success": true,
		"message": "Import started, poll the task for progress",
		"data": fiber.Map{
			"task_id": task.ID,
			"status":  task.Status,
		},
	})
}

// DownloadTemplate hands out the blank customer import sheet.
func (c *CustomerController) DownloadTemplate(ctx *fiber.Ctx) error {
	f := excelize.NewFile()
	sheet := "Sheet1"

	headers := []string{"SHIPPING_MARK", "NAME", "PHONE", "ALT_PHONE", "EMAIL", "CITY", "NOTES"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	// One example row so the office knows what goes where
	example := []interface{}{"KOFI 21", "Kofi Mensah", "0244123456", "", "kofi@example.com", "Accra", ""}
	for i, v := range example {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		f.SetCellValue(sheet, cell, v)
	}

	ctx.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set("Content-Disposition", `attachment; filename="customer_import_template.xlsx"`)

	if err := f.Write(ctx.Response().BodyWriter()); err != nil {
		return ctx.Status(http.StatusInternalServerError).SendString("Failed to generate Excel")
	}

	return nil
}

// ExportExcel dumps the customer register for the office.
func (c *CustomerController) ExportExcel(ctx *fiber.Ctx) error {
	var customers []models.Customer
	if err := c.DB.Order("shipping_mark asc").Find(&customers).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	f := excelize.NewFile()
	sheet := "Sheet1"

	f.SetCellValue(sheet, "A1", "Shipping Mark")
	f.SetCellValue(sheet, "B1", "Name")
	f.SetCellValue(sheet, "C1", "Phone")
	f.SetCellValue(sheet, "D1", "Alt Phone")
	f.SetCellValue(sheet, "E1", "Email")
	f.SetCellValue(sheet, "F1", "City")
	f.SetCellValue(sheet, "G1", "Country")
	f.SetCellValue(sheet, "H1", "Notes")

	for i, item := range customers {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", i+2), item.ShippingMark)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", i+2), item.Name)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", i+2), item.Phone)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", i+2), item.AltPhone)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", i+2), item.Email)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", i+2), item.City)
		f.SetCellValue(sheet, fmt.Sprintf("G%d", i+2), item.Country)
		f.SetCellValue(sheet, fmt.Sprintf("H%d", i+2), item.Notes)
	}

	ctx.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set("Content-Disposition", `attachment; filename="customers.xlsx"`)

	if err := f.Write(ctx.Response().BodyWriter()); err != nil {
		return ctx.Status(http.StatusInternalServerError).SendString("Failed to generate Excel")
	}

	return nil
}
