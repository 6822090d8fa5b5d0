package services

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"freight-app/config"
	"freight-app/controllers/idgen"
	"freight-app/models"
	"freight-app/utils"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// Row classifications returned by the upload endpoints. The client shows
// them in the review table before anything is created.
const (
	RowValid           = "valid"
	RowInvalid         = "invalid"
	RowDuplicate       = "duplicate"
	RowDuplicateInFile = "duplicate_in_file"
)

type ImportService struct {
	DB *gorm.DB
}

func NewImportService(db *gorm.DB) *ImportService {
	return &ImportService{DB: db}
}

// ImportOutcome is what a bulk create reports, inline or from a task.
type ImportOutcome struct {
	Created   int               `json:"created"`
	Skipped   int               `json:"skipped"`
	Failed    int               `json:"failed"`
	Unmatched int               `json:"unmatched"`
	RowErrors []models.RowError `json:"row_errors,omitempty"`
}

// ============== Customer import ==============

type CustomerRow struct {
	RowNumber      int    `json:"row_number"`
	ShippingMark   string `json:"shipping_mark"`
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	AltPhone       string `json:"alt_phone"`
	Email          string `json:"email"`
	City           string `json:"city"`
	Notes          string `json:"notes"`
	Classification string `json:"classification,omitempty"`
	Reason         string `json:"reason,omitempty"`
}

type CustomerUploadResult struct {
	TotalRows            int           `json:"total_rows"`
	ValidCount           int           `json:"valid_count"`
	InvalidCount         int           `json:"invalid_count"`
	DuplicateCount       int           `json:"duplicate_count"`
	DuplicateInFileCount int           `json:"duplicate_in_file_count"`
	Rows                 []CustomerRow `json:"rows"`
}

// ParseCustomerExcel reads the customer template. Columns are positional:
// SHIPPING_MARK, NAME, PHONE, ALT_PHONE, EMAIL, CITY, NOTES. The header row
// is skipped, fully empty rows are ignored.
func (s *ImportService) ParseCustomerExcel(r io.Reader) ([]CustomerRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.New("failed to read Excel file")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("no sheets found in Excel file")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.New("failed to read rows")
	}

	if len(rows) < 2 {
		return nil, errors.New("Excel file must contain header and at least one data row")
	}
	if len(rows)-1 > config.ImportMaxRows {
		return nil, fmt.Errorf("file has %d rows, the limit is %d", len(rows)-1, config.ImportMaxRows)
	}

	out := make([]CustomerRow, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rowNum := i + 2 // Excel row number, header is row 1

		if isEmptyRow(row) {
			continue
		}

		cr := CustomerRow{
			RowNumber:    rowNum,
			ShippingMark: getCell(row, 0),
			Name:         getCell(row, 1),
			Phone:        getCell(row, 2),
			AltPhone:     getCell(row, 3),
			Email:        getCell(row, 4),
			City:         getCell(row, 5),
			Notes:        getCell(row, 6),
		}
		if ok, reason := validateCustomerRow(&cr); !ok {
			cr.Classification = RowInvalid
			cr.Reason = reason
		}
		out = append(out, cr)
	}

	if len(out) == 0 {
		return nil, errors.New("no data rows found in Excel file")
	}
	return out, nil
}

// ClassifyCustomerRows marks each row valid, invalid, duplicate (already in
// the database) or duplicate_in_file (an earlier row claimed the same mark).
// The first occurrence of a mark wins, later ones are the in-file duplicates.
func (s *ImportService) ClassifyCustomerRows(rows []CustomerRow) *CustomerUploadResult {
	result := &CustomerUploadResult{TotalRows: len(rows)}
	seen := map[string]int{}

	for i := range rows {
		row := &rows[i]

		if row.Classification == "" {
			if ok, reason := validateCustomerRow(row); !ok {
				row.Classification = RowInvalid
				row.Reason = reason
			}
		}
		if row.Classification == RowInvalid {
			result.InvalidCount++
			continue
		}

		norm := utils.NormalizeMark(row.ShippingMark)
		if first, dup := seen[norm]; dup {
			row.Classification = RowDuplicateInFile
			row.Reason = fmt.Sprintf("Same shipping mark as row %d", first)
			result.DuplicateInFileCount++
			continue
		}
		seen[norm] = row.RowNumber

		var existing models.Customer
		if err := s.DB.Where("normalized_mark = ?", norm).First(&existing).Error; err == nil {
			row.Classification = RowDuplicate
			row.Reason = "Shipping mark already registered to " + existing.Name
			result.DuplicateCount++
			continue
		}

		if phone := utils.NormalizePhone(row.Phone); phone != "" {
			if err := s.DB.Where("normalized_phone = ?", phone).First(&existing).Error; err == nil {
				row.Classification = RowDuplicate
				row.Reason = "Phone already registered to " + existing.Name
				result.DuplicateCount++
				continue
			}
		}

		row.Classification = RowValid
		result.ValidCount++
	}

	result.Rows = rows
	return result
}

// CreateCustomers persists the batch in one transaction. Duplicates are
// skipped, not errors: the review step already showed them and the client may
// resubmit the full row set. progress is called after every row when set.
func (s *ImportService) CreateCustomers(rows []CustomerRow, userID int, progress func(done int)) (ImportOutcome, error) {
	var out ImportOutcome

	tx := s.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	seen := map[string]bool{}
	for i := range rows {
		row := &rows[i]

		if ok, reason := validateCustomerRow(row); !ok {
			out.Failed++
			out.RowErrors = append(out.RowErrors, models.RowError{Row: row.RowNumber, Message: reason})
			reportProgress(progress, i+1)
			continue
		}

		norm := utils.NormalizeMark(row.ShippingMark)
		if seen[norm] {
			out.Skipped++
			reportProgress(progress, i+1)
			continue
		}
		seen[norm] = true

		var existing models.Customer
		if err := tx.Where("normalized_mark = ?", norm).First(&existing).Error; err == nil {
			out.Skipped++
			reportProgress(progress, i+1)
			continue
		}
		if phone := utils.NormalizePhone(row.Phone); phone != "" {
			if err := tx.Where("normalized_phone = ?", phone).First(&existing).Error; err == nil {
				out.Skipped++
				reportProgress(progress, i+1)
				continue
			}
		}

		customer := models.Customer{
			ShippingMark: row.ShippingMark,
			Name:         row.Name,
			Phone:        row.Phone,
			AltPhone:     row.AltPhone,
			Email:        row.Email,
			City:         row.City,
			Notes:        row.Notes,
			IsActive:     true,
			CreatedBy:    userID,
		}
		if err := tx.Create(&customer).Error; err != nil {
			out.Failed++
			out.RowErrors = append(out.RowErrors, models.RowError{Row: row.RowNumber, Message: "Failed to create: " + err.Error()})
			reportProgress(progress, i+1)
			continue
		}

		out.Created++
		reportProgress(progress, i+1)
	}

	if err := tx.Commit().Error; err != nil {
		return ImportOutcome{}, err
	}
	return out, nil
}

func validateCustomerRow(row *CustomerRow) (bool, string) {
	if row.ShippingMark == "" || row.Name == "" {
		return false, "SHIPPING_MARK and NAME are required"
	}
	if row.Phone == "" {
		return false, "PHONE is required"
	}
	if row.Email != "" && !utils.IsValidEmail(row.Email) {
		return false, fmt.Sprintf("Invalid email format '%s'", row.Email)
	}
	return true, ""
}

// ============== Container manifest import ==============

type ManifestRow struct {
	RowNumber      int             `json:"row_number"`
	TrackingNo     string          `json:"tracking_no"`
	ShippingMark   string          `json:"shipping_mark"`
	Description    string          `json:"description"`
	Quantity       int             `json:"quantity"`
	Cbm            decimal.Decimal `json:"cbm"`
	WeightKg       decimal.Decimal `json:"weight_kg"`
	Classification string          `json:"classification,omitempty"`
	Reason         string          `json:"reason,omitempty"`
	Matched        bool            `json:"matched"`
	CustomerID     *uint           `json:"customer_id,omitempty"`
	CustomerName   string          `json:"customer_name,omitempty"`
}

type ManifestUploadResult struct {
	TotalRows            int           `json:"total_rows"`
	ValidCount           int           `json:"valid_count"`
	InvalidCount         int           `json:"invalid_count"`
	DuplicateCount       int           `json:"duplicate_count"`
	DuplicateInFileCount int           `json:"duplicate_in_file_count"`
	MatchedCount         int           `json:"matched_count"`
	UnmatchedCount       int           `json:"unmatched_count"`
	Rows                 []ManifestRow `json:"rows"`
}

// ParseManifestExcel reads the container manifest template. Columns:
// TRACKING_NO, SHIPPING_MARK, DESCRIPTION, QUANTITY, CBM, WEIGHT_KG.
// Tracking numbers are optional, missing ones are generated on create.
func (s *ImportService) ParseManifestExcel(r io.Reader) ([]ManifestRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.New("failed to read Excel file")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("no sheets found in Excel file")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.New("failed to read rows")
	}

	if len(rows) < 2 {
		return nil, errors.New("Excel file must contain header and at least one data row")
	}
	if len(rows)-1 > config.ImportMaxRows {
		return nil, fmt.Errorf("file has %d rows, the limit is %d", len(rows)-1, config.ImportMaxRows)
	}

	out := make([]ManifestRow, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rowNum := i + 2

		if isEmptyRow(row) {
			continue
		}

		mr := ManifestRow{
			RowNumber:    rowNum,
			TrackingNo:   strings.ToUpper(getCell(row, 0)),
			ShippingMark: getCell(row, 1),
			Description:  getCell(row, 2),
			Quantity:     1,
		}

		var bad []string
		if qty := getCell(row, 3); qty != "" {
			n, err := strconv.Atoi(qty)
			if err != nil || n <= 0 {
				bad = append(bad, fmt.Sprintf("invalid quantity '%s'", qty))
			} else {
				mr.Quantity = n
			}
		}
		if raw := getCell(row, 4); raw != "" {
			d, err := decimal.NewFromString(raw)
			if err != nil || d.IsNegative() {
				bad = append(bad, fmt.Sprintf("invalid CBM '%s'", raw))
			} else {
				mr.Cbm = d
			}
		}
		if raw := getCell(row, 5); raw != "" {
			d, err := decimal.NewFromString(raw)
			if err != nil || d.IsNegative() {
				bad = append(bad, fmt.Sprintf("invalid weight '%s'", raw))
			} else {
				mr.WeightKg = d
			}
		}
		if mr.ShippingMark == "" {
			bad = append(bad, "SHIPPING_MARK is required")
		}

		if len(bad) > 0 {
			mr.Classification = RowInvalid
			mr.Reason = strings.Join(bad, "; ")
		}
		out = append(out, mr)
	}

	if len(out) == 0 {
		return nil, errors.New("no data rows found in Excel file")
	}
	return out, nil
}

// ClassifyManifestRows checks tracking number duplicates and resolves each
// shipping mark against the customer register. Unknown marks stay importable,
// the item just lands unmatched.
func (s *ImportService) ClassifyManifestRows(rows []ManifestRow) *ManifestUploadResult {
	result := &ManifestUploadResult{TotalRows: len(rows)}
	seen := map[string]int{}

	for i := range rows {
		row := &rows[i]

		if row.Classification == RowInvalid {
			result.InvalidCount++
			continue
		}

		if row.TrackingNo != "" {
			if first, dup := seen[row.TrackingNo]; dup {
				row.Classification = RowDuplicateInFile
				row.Reason = fmt.Sprintf("Same tracking number as row %d", first)
				result.DuplicateInFileCount++
				continue
			}
			seen[row.TrackingNo] = row.RowNumber

			var existing models.WarehouseItem
			if err := s.DB.Where("tracking_no = ?", row.TrackingNo).First(&existing).Error; err == nil {
				row.Classification = RowDuplicate
				row.Reason = "Tracking number already registered"
				result.DuplicateCount++
				continue
			}
		}

		row.Classification = RowValid
		result.ValidCount++

		norm := utils.NormalizeMark(row.ShippingMark)
		var customer models.Customer
		if err := s.DB.Where("normalized_mark = ?", norm).First(&customer).Error; err == nil {
			row.Matched = true
			row.CustomerID = &customer.ID
			row.CustomerName = customer.Name
			result.MatchedCount++
		} else {
			result.UnmatchedCount++
		}
	}

	result.Rows = rows
	return result
}

// CreateItems persists manifest rows for a container in one transaction.
// Items take their status from the container's position in the lifecycle, so
// a manifest uploaded after arrival lands as arrived stock.
func (s *ImportService) CreateItems(container *models.CargoContainer, rows []ManifestRow, userID int, progress func(done int)) (ImportOutcome, error) {
	var out ImportOutcome

	status, ok := models.ItemStatusForContainer(container.Status)
	if !ok {
		status = models.ItemStatusLoaded
	}
	location := models.LocationChina
	if container.Status == models.ContainerStatusUnloaded {
		location = models.LocationGhana
	}

	tx := s.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	seen := map[string]bool{}
	for i := range rows {
		row := &rows[i]

		if row.ShippingMark == "" {
			out.Failed++
			out.RowErrors = append(out.RowErrors, models.RowError{Row: row.RowNumber, Message: "SHIPPING_MARK is required"})
			reportProgress(progress, i+1)
			continue
		}
		if row.Classification == RowInvalid {
			out.Failed++
			out.RowErrors = append(out.RowErrors, models.RowError{Row: row.RowNumber, Message: row.Reason})
			reportProgress(progress, i+1)
			continue
		}
		if row.Quantity <= 0 {
			row.Quantity = 1
		}

		trackingNo := row.TrackingNo
		if trackingNo == "" {
			trackingNo = idgen.TrackingNo()
		} else {
			if seen[trackingNo] {
				out.Skipped++
				reportProgress(progress, i+1)
				continue
			}
			var existing models.WarehouseItem
			if err := tx.Where("tracking_no = ?", trackingNo).First(&existing).Error; err == nil {
				out.Skipped++
				reportProgress(progress, i+1)
				continue
			}
		}
		seen[trackingNo] = true

		containerID := container.ID
		item := models.WarehouseItem{
			TrackingNo:   trackingNo,
			ShippingMark: row.ShippingMark,
			Description:  row.Description,
			Quantity:     row.Quantity,
			Cbm:          row.Cbm,
			WeightKg:     row.WeightKg,
			CargoType:    container.CargoType,
			Location:     location,
			Status:       status,
			MatchStatus:  models.MatchStatusUnmatched,
			ContainerID:  &containerID,
			CreatedBy:    userID,
		}

		norm := utils.NormalizeMark(row.ShippingMark)
		var customer models.Customer
		if err := tx.Where("normalized_mark = ?", norm).First(&customer).Error; err == nil {
			customerID := customer.ID
			item.CustomerID = &customerID
			item.MatchStatus = models.MatchStatusMatched
		} else {
			out.Unmatched++
		}

		if err := tx.Create(&item).Error; err != nil {
			out.Failed++
			out.RowErrors = append(out.RowErrors, models.RowError{Row: row.RowNumber, Message: "Failed to create: " + err.Error()})
			if item.MatchStatus == models.MatchStatusUnmatched {
				out.Unmatched--
			}
			reportProgress(progress, i+1)
			continue
		}

		out.Created++
		reportProgress(progress, i+1)
	}

	if err := tx.Commit().Error; err != nil {
		return ImportOutcome{}, err
	}
	return out, nil
}

// ============== Shared helpers ==============

func getCell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func reportProgress(progress func(int), done int) {
	if progress != nil {
		progress(done)
	}
}
