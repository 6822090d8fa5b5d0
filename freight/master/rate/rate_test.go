package rate_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"freight-app/config"
	"freight-app/database"
	"freight-app/freight/master/rate"
	"freight-app/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var testDB *gorm.DB

func TestMain(m *testing.M) {
	config.LoadConfig()
	config.DBDriver = "sqlite"
	config.DBName = "freight_rate_test"
	config.JWTSecret = "unit-test-secret"

	db, err := database.GetDBConnection(config.DBName)
	if err != nil {
		log.Fatalf("Failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to reach sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.User{}, &models.UserSession{}); err != nil {
		log.Fatalf("Failed to migrate test database: %v", err)
	}
	if err := rate.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate rates: %v", err)
	}

	testDB = db
	os.Exit(m.Run())
}

func resetTables(t *testing.T) {
	t.Helper()
	for _, table := range []string{"rates", "user_sessions", "users"} {
		require.NoError(t, testDB.Exec("DELETE FROM "+table).Error)
	}
}

func newRateApp() *fiber.App {
	app := fiber.New()
	rate.SetupRateRoutes(app, testDB)
	return app
}

func tokenFor(t *testing.T, username, role string) string {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{
		Username: username, Password: string(hash), Name: username,
		Email: username + "@example.com", Role: role, IsActive: true,
	}
	require.NoError(t, testDB.Create(user).Error)

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

func TestChargeFor(t *testing.T) {
	sea := rate.Rate{CargoType: rate.CargoSea, PricePerCbm: decimal.NewFromInt(280)}
	air := rate.Rate{CargoType: rate.CargoAir, PricePerKg: decimal.NewFromFloat(11.5)}

	charge := sea.ChargeFor(decimal.NewFromFloat(0.25), decimal.NewFromFloat(999))
	assert.True(t, charge.Equal(decimal.NewFromInt(70)), "got %s", charge)

	charge = air.ChargeFor(decimal.NewFromFloat(999), decimal.NewFromFloat(4.44))
	assert.True(t, charge.Equal(decimal.RequireFromString("51.06")), "got %s", charge)

	// Charges round to whole cents.
	charge = air.ChargeFor(decimal.Zero, decimal.RequireFromString("4.444"))
	assert.True(t, charge.Equal(decimal.RequireFromString("51.11")), "got %s", charge)
}

func TestSeedRates(t *testing.T) {
	resetTables(t)

	rate.SeedRates(testDB)

	var count int64
	testDB.Model(&rate.Rate{}).Count(&count)
	require.EqualValues(t, 4, count)

	var seaRegular rate.Rate
	require.NoError(t, testDB.Where("cargo_type = ? AND category = ?", rate.CargoSea, rate.CategoryRegular).
		First(&seaRegular).Error)
	assert.True(t, seaRegular.IsActive)
	assert.True(t, seaRegular.PricePerCbm.Equal(decimal.NewFromInt(280)))

	// Reseeding never overwrites an edited price card.
	require.NoError(t, testDB.Model(&seaRegular).Update("price_per_cbm", decimal.NewFromInt(300)).Error)
	rate.SeedRates(testDB)

	testDB.Model(&rate.Rate{}).Count(&count)
	assert.EqualValues(t, 4, count)
	require.NoError(t, testDB.First(&seaRegular, seaRegular.ID).Error)
	assert.True(t, seaRegular.PricePerCbm.Equal(decimal.NewFromInt(300)))
}

func TestCreateRateValidation(t *testing.T) {
	resetTables(t)
	app := newRateApp()
	admin := tokenFor(t, "admin1", models.RoleAdmin)

	noCbm := doJSON(t, app, fiber.MethodPost, "/api/v1/rates/", admin, fiber.Map{
		"cargo_type": "sea", "category": "regular",
	})
	assert.Equal(t, fiber.StatusBadRequest, noCbm.StatusCode)
	assert.Equal(t, "Sea rates require a positive price_per_cbm", decodeBody(t, noCbm)["error"])

	noKg := doJSON(t, app, fiber.MethodPost, "/api/v1/rates/", admin, fiber.Map{
		"cargo_type": "air", "category": "regular", "price_per_cbm": "280",
	})
	assert.Equal(t, fiber.StatusBadRequest, noKg.StatusCode)
	assert.Equal(t, "Air rates require a positive price_per_kg", decodeBody(t, noKg)["error"])

	badCategory := doJSON(t, app, fiber.MethodPost, "/api/v1/rates/", admin, fiber.Map{
		"cargo_type": "sea", "category": "vip", "price_per_cbm": "280",
	})
	assert.Equal(t, fiber.StatusBadRequest, badCategory.StatusCode)
}

func TestRateCRUD(t *testing.T) {
	resetTables(t)
	app := newRateApp()
	admin := tokenFor(t, "admin1", models.RoleAdmin)
	staff := tokenFor(t, "staff1", models.RoleStaff)

	// Price card changes are closed to regular staff.
	forbidden := doJSON(t, app, fiber.MethodPost, "/api/v1/rates/", staff, fiber.Map{
		"cargo_type": "sea", "category": "regular", "price_per_cbm": "280",
	})
	assert.Equal(t, fiber.StatusForbidden, forbidden.StatusCode)

	created := doJSON(t, app, fiber.MethodPost, "/api/v1/rates/", admin, fiber.Map{
		"cargo_type": "sea", "category": "regular", "description": "Sea freight, regular goods", "price_per_cbm": "280",
	})
	require.Equal(t, fiber.StatusCreated, created.StatusCode)

	var seaRegular rate.Rate
	require.NoError(t, testDB.Where("cargo_type = ? AND category = ?", "sea", "regular").First(&seaRegular).Error)
	assert.True(t, seaRegular.IsActive)
	assert.Equal(t, "USD", seaRegular.Currency)

	dup := doJSON(t, app, fiber.MethodPost, "/api/v1/rates/", admin, fiber.Map{
		"cargo_type": "sea", "category": "regular", "price_per_cbm": "300",
	})
	assert.Equal(t, fiber.StatusConflict, dup.StatusCode)
	assert.Equal(t, "Rate for this cargo type and category already exists", decodeBody(t, dup)["error"])

	// Staff can read the price card.
	list := doJSON(t, app, fiber.MethodGet, "/api/v1/rates/", staff, nil)
	require.Equal(t, fiber.StatusOK, list.StatusCode)
	rates := decodeBody(t, list)["data"].([]interface{})
	assert.Len(t, rates, 1)

	path := fmt.Sprintf("/api/v1/rates/%d", seaRegular.ID)

	updated := doJSON(t, app, fiber.MethodPut, path, admin, fiber.Map{
		"cargo_type": "sea", "category": "regular", "price_per_cbm": "320", "currency": "GHS",
	})
	require.Equal(t, fiber.StatusOK, updated.StatusCode)
	require.NoError(t, testDB.First(&seaRegular, seaRegular.ID).Error)
	assert.True(t, seaRegular.PricePerCbm.Equal(decimal.NewFromInt(320)))
	assert.Equal(t, "GHS", seaRegular.Currency)
	assert.True(t, seaRegular.IsActive, "omitted is_active keeps the current value")

	off := false
	deactivated := doJSON(t, app, fiber.MethodPut, path, admin, fiber.Map{
		"cargo_type": "sea", "category": "regular", "price_per_cbm": "320", "is_active": off,
	})
	require.Equal(t, fiber.StatusOK, deactivated.StatusCode)
	require.NoError(t, testDB.First(&seaRegular, seaRegular.ID).Error)
	assert.False(t, seaRegular.IsActive)

	deleted := doJSON(t, app, fiber.MethodDelete, path, admin, nil)
	require.Equal(t, fiber.StatusOK, deleted.StatusCode)

	gone := doJSON(t, app, fiber.MethodGet, path, staff, nil)
	assert.Equal(t, fiber.StatusNotFound, gone.StatusCode)
}

func TestPreviewCharge(t *testing.T) {
	resetTables(t)
	app := newRateApp()
	staff := tokenFor(t, "staff1", models.RoleStaff)

	rate.SeedRates(testDB)

	sea := doJSON(t, app, fiber.MethodPost, "/api/v1/rates/preview", staff, fiber.Map{
		"cargo_type": "sea", "category": "regular", "cbm": "0.5",
	})
	require.Equal(t, fiber.StatusOK, sea.StatusCode)
	data := decodeBody(t, sea)["data"].(map[string]interface{})
	assert.Equal(t, "140", data["charge"])
	assert.Equal(t, "USD", data["currency"])

	air := doJSON(t, app, fiber.MethodPost, "/api/v1/rates/preview", staff, fiber.Map{
		"cargo_type": "air", "category": "regular", "weight_kg": "4",
	})
	require.Equal(t, fiber.StatusOK, air.StatusCode)
	data = decodeBody(t, air)["data"].(map[string]interface{})
	assert.Equal(t, "46", data["charge"])

	// Deactivated rates no longer quote.
	require.NoError(t, testDB.Model(&rate.Rate{}).
		Where("cargo_type = ? AND category = ?", "sea", "regular").
		Update("is_active", false).Error)
	inactive := doJSON(t, app, fiber.MethodPost, "/api/v1/rates/preview", staff, fiber.Map{
		"cargo_type": "sea", "category": "regular", "cbm": "0.5",
	})
	assert.Equal(t, fiber.StatusNotFound, inactive.StatusCode)
	assert.Equal(t, "No active rate for this cargo type and category", decodeBody(t, inactive)["error"])
}
