package controllers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"freight-app/config"
	"freight-app/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginValidation(t *testing.T) {
	resetTables(t)
	app, _ := newTestApp()

	resp := doJSON(t, app, fiber.MethodPost, "/api/v1/auth/login", "", fiber.Map{"username": "kwesi"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Missing required fields", body["message"])
}

func TestLoginUnknownUser(t *testing.T) {
	resetTables(t)
	app, _ := newTestApp()

	resp := doJSON(t, app, fiber.MethodPost, "/api/v1/auth/login", "",
		fiber.Map{"username": "nobody", "password": "whatever"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Invalid username or password", body["message"])

	var logged models.LoginLog
	require.NoError(t, testDB.Where("username = ?", "nobody").First(&logged).Error)
	assert.Equal(t, "FAILED", logged.LoginStatus)
	require.NotNil(t, logged.FailureReason)
	assert.Equal(t, "USER_NOT_FOUND", *logged.FailureReason)
}

func TestLoginWrongPassword(t *testing.T) {
	resetTables(t)
	app, _ := newTestApp()
	user := seedUser(t, "kwesi", "secret123", models.RoleAdmin)

	resp := doJSON(t, app, fiber.MethodPost, "/api/v1/auth/login", "",
		fiber.Map{"username": "kwesi", "password": "wrong"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	var logged models.LoginLog
	require.NoError(t, testDB.Where("username = ?", "kwesi").First(&logged).Error)
	assert.Equal(t, "FAILED", logged.LoginStatus)
	require.NotNil(t, logged.FailureReason)
	assert.Equal(t, "WRONG_PASSWORD", *logged.FailureReason)
	require.NotNil(t, logged.UserID)
	assert.EqualValues(t, user.ID, *logged.UserID)
}

func TestLoginDisabledAccount(t *testing.T) {
	resetTables(t)
	app, _ := newTestApp()
	user := seedUser(t, "kwesi", "secret123", models.RoleAdmin)
	require.NoError(t, testDB.Model(user).Update("is_active", false).Error)

	resp := doJSON(t, app, fiber.MethodPost, "/api/v1/auth/login", "",
		fiber.Map{"username": "kwesi", "password": "secret123"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Account is disabled", body["message"])
}

func TestLoginSuccess(t *testing.T) {
	resetTables(t)
	app, _ := newTestApp()
	user := seedUser(t, "kwesi", "secret123", models.RoleAdmin)

	resp := doJSON(t, app, fiber.MethodPost, "/api/v1/auth/login", "",
		fiber.Map{"username": "kwesi", "password": "secret123"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var refreshCookie string
	for _, c := range resp.Cookies() {
		if c.Name == "refresh_token" {
			refreshCookie = c.Value
		}
	}
	assert.NotEmpty(t, refreshCookie, "login sets the refresh cookie")

	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])
	token, _ := body["x_token"].(string)
	require.NotEmpty(t, token)
	userData, ok := body["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "kwesi", userData["username"])
	assert.Equal(t, models.RoleAdmin, userData["role"])

	var session models.UserSession
	require.NoError(t, testDB.Where("user_id = ? AND is_active = ?", user.ID, true).First(&session).Error)
	assert.True(t, session.ExpiresAt.After(time.Now()))

	// The token from the wire immediately works on an authed route.
	me := doJSON(t, app, fiber.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, fiber.StatusOK, me.StatusCode)
	meBody := decodeBody(t, me)
	meData := dataOf(t, meBody)
	assert.Equal(t, "kwesi", meData["username"])
	assert.Empty(t, meData["password"], "password never leaves the API")
}

func TestLoginByEmailClosesOldSession(t *testing.T) {
	resetTables(t)
	app, _ := newTestApp()
	user := seedUser(t, "kwesi", "secret123", models.RoleAdmin)

	first := doJSON(t, app, fiber.MethodPost, "/api/v1/auth/login", "",
		fiber.Map{"username": "kwesi", "password": "secret123"})
	require.Equal(t, fiber.StatusOK, first.StatusCode)
	first.Body.Close()

	// Second login uses the email address as the identifier.
	second := doJSON(t, app, fiber.MethodPost, "/api/v1/auth/login", "",
		fiber.Map{"username": "kwesi@example.com", "password": "secret123"})
	require.Equal(t, fiber.StatusOK, second.StatusCode)
	second.Body.Close()

	var active int64
	testDB.Model(&models.UserSession{}).
		Where("user_id = ? AND is_active = ?", user.ID, true).
		Count(&active)
	assert.EqualValues(t, 1, active, "a fresh login closes the previous session")
}

func TestAuthMiddlewareRejects(t *testing.T) {
	resetTables(t)
	app, _ := newTestApp()
	user := seedUser(t, "kwesi", "secret123", models.RoleAdmin)

	resp := doJSON(t, app, fiber.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Missing Authorization header", body["message"])

	req := httptest.NewRequest(fiber.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Token abc")
	badScheme, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, badScheme.StatusCode)

	garbage := doJSON(t, app, fiber.MethodGet, "/api/v1/auth/me", "not-a-jwt", nil)
	assert.Equal(t, fiber.StatusUnauthorized, garbage.StatusCode)

	// A signed token is still useless once its session has expired.
	token := bearerFor(t, user)
	require.NoError(t, testDB.Model(&models.UserSession{}).
		Where("user_id = ?", user.ID).
		Update("expires_at", time.Now().Add(-time.Minute)).Error)
	expired := doJSON(t, app, fiber.MethodGet, "/api/v1/auth/me", token, nil)
	assert.Equal(t, fiber.StatusUnauthorized, expired.StatusCode)
}

func TestLogout(t *testing.T) {
	resetTables(t)
	app, _ := newTestApp()
	user := seedUser(t, "kwesi", "secret123", models.RoleAdmin)
	token := bearerFor(t, user)

	resp := doJSON(t, app, fiber.MethodGet, "/api/v1/auth/logout", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var active int64
	testDB.Model(&models.UserSession{}).
		Where("user_id = ? AND is_active = ?", user.ID, true).
		Count(&active)
	assert.Zero(t, active)

	// The token dies with its session.
	again := doJSON(t, app, fiber.MethodGet, "/api/v1/auth/me", token, nil)
	assert.Equal(t, fiber.StatusUnauthorized, again.StatusCode)
}

func TestRefreshToken(t *testing.T) {
	resetTables(t)
	app, _ := newTestApp()
	seedUser(t, "kwesi", "secret123", models.RoleAdmin)

	login := doJSON(t, app, fiber.MethodPost, "/api/v1/auth/login", "",
		fiber.Map{"username": "kwesi", "password": "secret123"})
	require.Equal(t, fiber.StatusOK, login.StatusCode)

	var refresh *http.Cookie
	for _, c := range login.Cookies() {
		if c.Name == "refresh_token" {
			refresh = c
		}
	}
	require.NotNil(t, refresh)
	login.Body.Close()

	req := httptest.NewRequest(fiber.MethodPost, "/api/v1/auth/refresh", nil)
	req.AddCookie(refresh)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	newToken, _ := body["access_token"].(string)
	require.NotEmpty(t, newToken)

	me := doJSON(t, app, fiber.MethodGet, "/api/v1/auth/me", newToken, nil)
	assert.Equal(t, fiber.StatusOK, me.StatusCode)
}

func TestRefreshTokenWithoutCookie(t *testing.T) {
	resetTables(t)
	app, _ := newTestApp()

	resp := doJSON(t, app, fiber.MethodPost, "/api/v1/auth/refresh", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestLoginRateLimited(t *testing.T) {
	resetTables(t)

	saved := config.LoginMaxTries
	config.LoginMaxTries = 3
	defer func() { config.LoginMaxTries = saved }()

	app, _ := newTestApp()

	for i := 0; i < 3; i++ {
		resp := doJSON(t, app, fiber.MethodPost, "/api/v1/auth/login", "",
			fiber.Map{"username": "nobody", "password": "bad"})
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		resp.Body.Close()
	}

	resp := doJSON(t, app, fiber.MethodPost, "/api/v1/auth/login", "",
		fiber.Map{"username": "nobody", "password": "bad"})
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Too many login attempts, try again later", body["error"])
}

func TestChangePassword(t *testing.T) {
	resetTables(t)
	app, _ := newTestApp()
	user := seedUser(t, "kwesi", "secret123", models.RoleAdmin)
	token := bearerFor(t, user)

	wrong := doJSON(t, app, fiber.MethodPost, "/api/v1/auth/change-password", token,
		fiber.Map{"current_password": "nope", "new_password": "fresh-pass-1"})
	assert.Equal(t, fiber.StatusUnauthorized, wrong.StatusCode)

	short := doJSON(t, app, fiber.MethodPost, "/api/v1/auth/change-password", token,
		fiber.Map{"current_password": "secret123", "new_password": "tiny"})
	assert.Equal(t, fiber.StatusBadRequest, short.StatusCode)

	ok := doJSON(t, app, fiber.MethodPost, "/api/v1/auth/change-password", token,
		fiber.Map{"current_password": "secret123", "new_password": "fresh-pass-1"})
	require.Equal(t, fiber.StatusOK, ok.StatusCode)

	// Old password stops working, the new one logs in.
	old := doJSON(t, app, fiber.MethodPost, "/api/v1/auth/login", "",
		fiber.Map{"username": "kwesi", "password": "secret123"})
	assert.Equal(t, fiber.StatusUnauthorized, old.StatusCode)

	fresh := doJSON(t, app, fiber.MethodPost, "/api/v1/auth/login", "",
		fiber.Map{"username": "kwesi", "password": "fresh-pass-1"})
	assert.Equal(t, fiber.StatusOK, fresh.StatusCode)
	fresh.Body.Close()
}
