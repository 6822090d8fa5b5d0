package controllers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"freight-app/cache"
	"freight-app/config"
	"freight-app/controllers/idgen"
	"freight-app/database"
	"freight-app/models"
	"freight-app/repositories"
	"freight-app/routes"
	"freight-app/services"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var testDB *gorm.DB

func TestMain(m *testing.M) {
	config.LoadConfig()
	config.DBDriver = "sqlite"
	config.DBName = "freight_controllers_test"
	config.JWTSecret = "unit-test-secret"
	config.JWTExpiration = 3600
	idgen.Init()

	db, err := database.GetDBConnection(config.DBName)
	if err != nil {
		log.Fatalf("Failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to reach sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.User{},
		&models.UserSession{},
		&models.LoginLog{},
		&models.Customer{},
		&models.CargoContainer{},
		&models.ContainerStatusLog{},
		&models.WarehouseItem{},
		&models.ImportTask{},
		&models.NotificationLog{},
	); err != nil {
		log.Fatalf("Failed to migrate test database: %v", err)
	}

	testDB = db
	os.Exit(m.Run())
}

// resetTables empties every table so each test starts on a clean slate while
// the shared in-memory database keeps its schema.
func resetTables(t *testing.T) {
	t.Helper()
	for _, table := range []string{
		"warehouse_items", "container_status_logs", "cargo_containers",
		"customers", "import_tasks", "notification_logs",
		"user_sessions", "login_logs", "users",
	} {
		require.NoError(t, testDB.Exec("DELETE FROM "+table).Error)
	}
}

type capturedMail struct {
	To      []string
	Subject string
}

type captureMailer struct {
	mu   sync.Mutex
	sent []capturedMail
}

func (m *captureMailer) Send(toEmails []string, subject string, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, capturedMail{To: toEmails, Subject: subject})
	return nil
}

func (m *captureMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

// newTestApp wires the full route surface against the shared test database,
// the way main does it, with the SMTP dialer swapped for a recorder.
func newTestApp() (*fiber.App, *captureMailer) {
	app := fiber.New()

	cacheClient := cache.NewMemoryClient()
	mailer := &captureMailer{}

	importService := services.NewImportService(testDB)
	notifyService := services.NewNotifyService(testDB, mailer)
	taskService := services.NewTaskService(testDB, importService, notifyService)
	matchService := services.NewMatchService(testDB)
	goodsRepository := repositories.NewGoodsRepository(testDB)

	routes.SetupAuthRoutes(app, testDB, cacheClient)
	routes.SetupUserRoutes(app, testDB)
	routes.SetupCustomerRoutes(app, testDB, importService, taskService)
	routes.SetupContainerRoutes(app, testDB, importService, taskService, notifyService)
	routes.SetupGoodsRoutes(app, testDB)
	routes.SetupTaskRoutes(app, taskService)
	routes.SetupUnmatchedRoutes(app, goodsRepository, matchService)
	routes.SetupDashboardRoutes(app, testDB, goodsRepository, cacheClient)

	return app, mailer
}

func seedUser(t *testing.T, username, password, role string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Username: username,
		Password: string(hash),
		Name:     username,
		Email:    username + "@example.com",
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, testDB.Create(user).Error)
	return user
}

// bearerFor opens a session for the user and signs a matching access token,
// exactly what a successful login hands out.
func bearerFor(t *testing.T, user *models.User) string {
	t.Helper()

	sessionID := uuid.NewString()
	now := time.Now()
	require.NoError(t, testDB.Create(&models.UserSession{
		UserID:         uint64(user.ID),
		SessionID:      sessionID,
		IsActive:       true,
		LastActivityAt: now,
		ExpiresAt:      now.Add(time.Hour),
	}).Error)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":    user.ID,
		"session_id": sessionID,
		"role":       user.Role,
		"name":       user.Name,
		"exp":        now.Add(time.Hour).Unix(),
		"jti":        uuid.NewString(),
	})
	signed, err := token.SignedString([]byte(config.JWTSecret))
	require.NoError(t, err)
	return signed
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	return body
}

func dataOf(t *testing.T, body map[string]interface{}) map[string]interface{} {
	t.Helper()

	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok, "response has no data object: %v", body)
	return data
}

// uploadExcel posts an in-memory workbook as a multipart file.
func uploadExcel(t *testing.T, app *fiber.App, path, token string, headers []string, rows [][]interface{}) *http.Response {
	t.Helper()

	f := excelize.NewFile()
	sheet := "Sheet1"
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, cell, h))
	}
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}
	content, err := f.WriteToBuffer()
	require.NoError(t, err)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "upload.xlsx")
	require.NoError(t, err)
	_, err = part.Write(content.Bytes())
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(fiber.MethodPost, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// readWorkbook reopens an xlsx response body and returns the first sheet.
func readWorkbook(t *testing.T, resp *http.Response) [][]string {
	t.Helper()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	require.NotEmpty(t, sheets)
	rows, err := f.GetRows(sheets[0])
	require.NoError(t, err)
	return rows
}
