package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"freight-app/config"
	"freight-app/models"
	"freight-app/services"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type ContainerController struct {
	DB     *gorm.DB
	Imp    *services.ImportService
	Tasks  *services.TaskService
	Notify *services.NotifyService
}

func NewContainerController(DB *gorm.DB, imp *services.ImportService, tasks *services.TaskService, notify *services.NotifyService) *ContainerController {
	return &ContainerController{DB: DB, Imp: imp, Tasks: tasks, Notify: notify}
}

type ContainerRequest struct {
	ContainerNo     string     `json:"container_no" validate:"required"`
	CargoType       string     `json:"cargo_type" validate:"required,oneof=sea air"`
	OriginWarehouse string     `json:"origin_warehouse"`
	LoadedDate      *time.Time `json:"loaded_date"`
	Eta             *time.Time `json:"eta"`
	VesselName      string     `json:"vessel_name"`
	SealNo          string     `json:"seal_no"`
	FlightNo        string     `json:"flight_no"`
	Awb             string     `json:"awb"`
	Notes           string     `json:"notes"`
}

// checkCargoFields enforces the shape of a container per cargo type: sea
// cargo travels on a vessel, air cargo on a flight, and fields from the
// other mode are rejected instead of silently stored.
func checkCargoFields(req *ContainerRequest) string {
	switch req.CargoType {
	case models.CargoTypeSea:
		if strings.TrimSpace(req.VesselName) == "" {
			return "Sea containers require a vessel_name"
		}
		if req.FlightNo != "" || req.Awb != "" {
			return "Sea containers cannot carry flight_no or awb"
		}
	case models.CargoTypeAir:
		if strings.TrimSpace(req.FlightNo) == "" {
			return "Air containers require a flight_no"
		}
		if req.VesselName != "" || req.SealNo != "" {
			return "Air containers cannot carry vessel_name or seal_no"
		}
	}
	return ""
}

//==============================================================================
// Begin of Container CRUD
//==============================================================================

func (c *ContainerController) CreateContainer(ctx *fiber.Ctx) error {
	var req ContainerRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if msg := checkCargoFields(&req); msg != "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	containerNo := strings.ToUpper(strings.TrimSpace(req.ContainerNo))

	var existing models.CargoContainer
	if err := c.DB.Where("container_no = ?", containerNo).First(&existing).Error; err == nil {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Container number already exists"})
	}

	userID := int(ctx.Locals("userID").(float64))
	container := models.CargoContainer{
		ContainerNo:     containerNo,
		CargoType:       req.CargoType,
		Status:          models.ContainerStatusLoading,
		OriginWarehouse: req.OriginWarehouse,
		LoadedDate:      req.LoadedDate,
		Eta:             req.Eta,
		VesselName:      req.VesselName,
		SealNo:          req.SealNo,
		FlightNo:        req.FlightNo,
		Awb:             req.Awb,
		Notes:           req.Notes,
		CreatedBy:       userID,
	}
	if container.OriginWarehouse == "" {
		container.OriginWarehouse = models.LocationChina
	}

	if err := c.DB.Create(&container).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create container"})
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Container created successfully",
		"data":    container,
	})
}

func (c *ContainerController) GetAllContainers(ctx *fiber.Ctx) error {
	query := c.DB.Model(&models.CargoContainer{})

	if status := ctx.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if cargoType := ctx.Query("cargo_type"); cargoType != "" {
		query = query.Where("cargo_type = ?", cargoType)
	}
	if search := strings.TrimSpace(ctx.Query("search")); search != "" {
		query = query.Where("upper(container_no) LIKE ?", "%"+strings.ToUpper(search)+"%")
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

	var containers []models.CargoContainer
	if err := query.Order("created_at desc").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&containers).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve containers"})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Containers retrieved successfully",
		"data": fiber.Map{
			"containers": containers,
			"total":      total,
			"page":       page,
			"page_size":  pageSize,
		},
	})
}

func (c *ContainerController) GetContainerByID(ctx *fiber.Ctx) error {
	id := ctx.Params("id")

	var container models.CargoContainer
	if err := c.DB.First(&container, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Container not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve container"})
	}

	var totals struct {
		Items     int64           `json:"items"`
		Quantity  int64           `json:"quantity"`
		Cbm       decimal.Decimal `json:"cbm"`
		WeightKg  decimal.Decimal `json:"weight_kg"`
		Matched   int64           `json:"matched"`
		Unmatched int64           `json:"unmatched"`
		Skipped   int64           `json:"skipped"`
	}
	c.DB.Model(&models.WarehouseItem{}).
		Select(`count(*) as items, coalesce(sum(quantity), 0) as quantity,
			coalesce(sum(cbm), 0) as cbm, coalesce(sum(weight_kg), 0) as weight_kg`).
		Where("container_id = ?", container.ID).
		Scan(&totals)
	c.DB.Model(&models.WarehouseItem{}).
		Where("container_id = ? AND match_status = ?", container.ID, models.MatchStatusMatched).
		Count(&totals.Matched)
	c.DB.Model(&models.WarehouseItem{}).
		Where("container_id = ? AND match_status = ?", container.ID, models.MatchStatusUnmatched).
		Count(&totals.Unmatched)
	c.DB.Model(&models.WarehouseItem{}).
		Where("container_id = ? AND match_status = ?", container.ID, models.MatchStatusSkipped).
		Count(&totals.Skipped)

	var history []models.ContainerStatusLog
	c.DB.Where("container_id = ?", container.ID).Order("created_at asc").Find(&history)

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Container retrieved successfully",
		"data": fiber.Map{
			"container": container,
			"totals":    totals,
			"history":   history,
		},
	})
}

func (c *ContainerController) UpdateContainer(ctx *fiber.Ctx) error {
	id := ctx.Params("id")

	var container models.CargoContainer
	if err := c.DB.First(&container, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Container not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve container"})
	}

	var req ContainerRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if msg := checkCargoFields(&req); msg != "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	containerNo := strings.ToUpper(strings.TrimSpace(req.ContainerNo))
	var existing models.CargoContainer
	if err := c.DB.Where("container_no = ? AND id <> ?", containerNo, container.ID).
		First(&existing).Error; err == nil {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Container number already exists"})
	}

	userID := int(ctx.Locals("userID").(float64))
	container.ContainerNo = containerNo
	container.CargoType = req.CargoType
	if req.OriginWarehouse != "" {
		container.OriginWarehouse = req.OriginWarehouse
	}
	container.LoadedDate = req.LoadedDate
	container.Eta = req.Eta
	container.VesselName = req.VesselName
	container.SealNo = req.SealNo
	container.FlightNo = req.FlightNo
	container.Awb = req.Awb
	container.Notes = req.Notes
	container.UpdatedBy = userID

	if err := c.DB.Save(&container).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update container"})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Container updated successfully",
		"data":    container,
	})
}

func (c *ContainerController) DeleteContainer(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID"})
	}

	var container models.CargoContainer
	if err := c.DB.First(&container, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Container not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	var itemCount int64
	c.DB.Model(&models.WarehouseItem{}).Where("container_id = ?", container.ID).Count(&itemCount)
	if itemCount > 0 {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": fmt.Sprintf("Container still holds %d item(s)", itemCount),
		})
	}

	userID := int(ctx.Locals("userID").(float64))
	container.DeletedBy = userID

	result := c.DB.Select("deleted_by").Where("id = ?", id).Updates(&container)
	if result.Error != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": result.Error.Error()})
	}

	if err := c.DB.Delete(&container).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Container deleted successfully",
	})
}

//==============================================================================
// Begin of Container Lifecycle
//==============================================================================

// UpdateStatus moves the container one step along the lifecycle and cascades
// the change to every item inside. Arrival triggers the customer emails.
func (c *ContainerController) UpdateStatus(ctx *fiber.Ctx) error {
	id := ctx.Params("id")

	var req struct {
		Status string `json:"status" validate:"required"`
		Detail string `json:"detail"`
	}
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}
	if !models.IsValidContainerStatus(req.Status) {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown container status"})
	}

	var container models.CargoContainer
	if err := c.DB.First(&container, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Container not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve container"})
	}

	if !container.CanTransition(req.Status) {
		return ctx.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": fmt.Sprintf("Cannot move container from %s to %s", container.Status, req.Status),
		})
	}

	userID := int(ctx.Locals("userID").(float64))
	fromStatus := container.Status
	now := time.Now()

	tx := c.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	container.Status = req.Status
	container.UpdatedBy = userID
	switch req.Status {
	case models.ContainerStatusInTransit:
		if container.LoadedDate == nil {
			container.LoadedDate = &now
		}
	case models.ContainerStatusArrived:
		container.ArrivedDate = &now
	}

	if err := tx.Save(&container).Error; err != nil {
		tx.Rollback()
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update container"})
	}

	statusLog := models.ContainerStatusLog{
		ContainerID: container.ID,
		FromStatus:  fromStatus,
		ToStatus:    req.Status,
		Detail:      req.Detail,
		CreatedBy:   userID,
	}
	if err := tx.Create(&statusLog).Error; err != nil {
		tx.Rollback()
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to record status change"})
	}

	itemUpdates := map[string]interface{}{"updated_by": userID}
	if itemStatus, ok := models.ItemStatusForContainer(req.Status); ok {
		itemUpdates["status"] = itemStatus
	}
	if req.Status == models.ContainerStatusUnloaded {
		itemUpdates["location"] = models.LocationGhana
	}

	// Delivered items are done, the cascade leaves them alone
	if err := tx.Model(&models.WarehouseItem{}).
		Where("container_id = ? AND status <> ?", container.ID, models.ItemStatusDelivered).
		Updates(itemUpdates).Error; err != nil {
		tx.Rollback()
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update container items"})
	}

	if err := tx.Commit().Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update container"})
	}

	if req.Status == models.ContainerStatusArrived && c.Notify != nil {
		go c.Notify.NotifyContainerArrival(&container)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Container status updated successfully",
		"data":    container,
	})
}

//==============================================================================
// Begin of Container Manifest Import
//==============================================================================

// UploadManifest reads a manifest file against this container and classifies
// every row. Like the customer upload, nothing is written yet.
func (c *ContainerController) UploadManifest(ctx *fiber.Ctx) error {
	container, errResp := c.loadContainerForImport(ctx)
	if container == nil {
		return errResp
	}

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

	rows, err := c.Imp.ParseManifestExcel(fileContent)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	result := c.Imp.ClassifyManifestRows(rows)

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "File processed successfully",
		"data":    result,
	})
}

// BulkCreateItems persists reviewed manifest rows for this container, inline
// or as a background task depending on size.
func (c *ContainerController) BulkCreateItems(ctx *fiber.Ctx) error {
	container, errResp := c.loadContainerForImport(ctx)
	if container == nil {
		return errResp
	}

	var req struct {
		Rows []services.ManifestRow `json:"rows"`
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
		outcome, err := c.Imp.CreateItems(container, req.Rows, userID, nil)
		if err != nil {
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"success": true,
			"message": "Manifest imported successfully",
			"data":    outcome,
		})
	}

	containerID := container.ID
	task, err := c.Tasks.NewTask(models.TaskTypeContainerItems, len(req.Rows), &containerID, userID)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create import task"})
	}
	c.Tasks.RunManifestImport(task, container, req.Rows, userID)

	return ctx.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"success": true,
		"message": "Import started, poll the task for progress",
		"data": fiber.Map{
			"task_id": task.ID,
			"status":  task.Status,
		},
	})
}

// loadContainerForImport fetches the container and rejects manifest work on
// one that is already unloaded.
func (c *ContainerController) loadContainerForImport(ctx *fiber.Ctx) (*models.CargoContainer, error) {
	id := ctx.Params("id")

	var container models.CargoContainer
	if err := c.DB.First(&container, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Container not found"})
		}
		return nil, ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve container"})
	}

	if container.Status == models.ContainerStatusUnloaded {
		return nil, ctx.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": "Container is already unloaded, no more items can be added",
		})
	}

	return &container, nil
}

func (c *ContainerController) GetContainerItems(ctx *fiber.Ctx) error {
	id := ctx.Params("id")

	var container models.CargoContainer
	if err := c.DB.First(&container, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Container not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve container"})
	}

	query := c.DB.Where("container_id = ?", container.ID)
	if matchStatus := ctx.Query("match_status"); matchStatus != "" {
		query = query.Where("match_status = ?", matchStatus)
	}

	var items []models.WarehouseItem
	if err := query.Order("created_at asc").Find(&items).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve items"})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Items retrieved successfully",
		"data": fiber.Map{
			"container": container,
			"items":     items,
			"total":     len(items),
		},
	})
}

// DownloadManifestTemplate hands out the blank manifest sheet.
func (c *ContainerController) DownloadManifestTemplate(ctx *fiber.Ctx) error {
	f := excelize.NewFile()
	sheet := "Sheet1"

	headers := []string{"TRACKING_NO", "SHIPPING_MARK", "DESCRIPTION", "QUANTITY", "CBM", "WEIGHT_KG"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	example := []interface{}{"SF123456789", "KOFI 21", "Phone accessories", 3, 0.25, 42.5}
	for i, v := range example {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		f.SetCellValue(sheet, cell, v)
	}

	ctx.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set("Content-Disposition", `attachment; filename="manifest_import_template.xlsx"`)

	if err := f.Write(ctx.Response().BodyWriter()); err != nil {
		return ctx.Status(http.StatusInternalServerError).SendString("Failed to generate Excel")
	}

	return nil
}

// ExportManifest dumps the container's item list for the offloading crew.
func (c *ContainerController) ExportManifest(ctx *fiber.Ctx) error {
	id := ctx.Params("id")

	var container models.CargoContainer
	if err := c.DB.First(&container, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Container not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve container"})
	}

	type manifestLine struct {
		TrackingNo   string
		ShippingMark string
		Description  string
		Quantity     int
		Cbm          decimal.Decimal
		WeightKg     decimal.Decimal
		MatchStatus  string
		CustomerName string
	}

	var lines []manifestLine
	sqlLines := `select a.tracking_no, a.shipping_mark, a.description, a.quantity,
	a.cbm, a.weight_kg, a.match_status, coalesce(b.name, '') as customer_name
	from warehouse_items a
	left join customers b on a.customer_id = b.id and b.deleted_at is null
	where a.container_id = ? and a.deleted_at is null
	order by a.shipping_mark, a.tracking_no
	`
	if err := c.DB.Raw(sqlLines, container.ID).Scan(&lines).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	f := excelize.NewFile()
	sheet := "Sheet1"

	f.SetCellValue(sheet, "A1", "Tracking No")
	f.SetCellValue(sheet, "B1", "Shipping Mark")
	f.SetCellValue(sheet, "C1", "Description")
	f.SetCellValue(sheet, "D1", "Quantity")
	f.SetCellValue(sheet, "E1", "CBM")
	f.SetCellValue(sheet, "F1", "Weight (kg)")
	f.SetCellValue(sheet, "G1", "Match Status")
	f.SetCellValue(sheet, "H1", "Customer")

	for i, line := range lines {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", i+2), line.TrackingNo)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", i+2), line.ShippingMark)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", i+2), line.Description)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", i+2), line.Quantity)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", i+2), line.Cbm.InexactFloat64())
		f.SetCellValue(sheet, fmt.Sprintf("F%d", i+2), line.WeightKg.InexactFloat64())
		f.SetCellValue(sheet, fmt.Sprintf("G%d", i+2), line.MatchStatus)
		f.SetCellValue(sheet, fmt.Sprintf("H%d", i+2), line.CustomerName)
	}

	ctx.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="manifest_%s.xlsx"`, container.ContainerNo))

	if err := f.Write(ctx.Response().BodyWriter()); err != nil {
		return ctx.Status(http.StatusInternalServerError).SendString("Failed to generate Excel")
	}

	return nil
}
