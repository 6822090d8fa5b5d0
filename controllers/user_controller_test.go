package controllers_test

import (
	"fmt"
	"testing"

	"freight-app/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRoutesRequireElevatedRole(t *testing.T) {
	resetTables(t)
	app, _ := newTestApp()

	staff := seedUser(t, "staff1", "secret123", models.RoleStaff)
	resp := doJSON(t, app, fiber.MethodGet, "/api/v1/users/", bearerFor(t, staff), nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	admin := seedUser(t, "admin1", "secret123", models.RoleAdmin)
	resp = doJSON(t, app, fiber.MethodGet, "/api/v1/users/", bearerFor(t, admin), nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	users, ok := body["data"].([]interface{})
	require.True(t, ok)
	require.Len(t, users, 2)
	for _, u := range users {
		entry := u.(map[string]interface{})
		assert.Empty(t, entry["password"], "password hashes never leave the API")
	}
}

func TestCreateUser(t *testing.T) {
	resetTables(t)
	app, _ := newTestApp()
	admin := seedUser(t, "admin1", "secret123", models.RoleSuperAdmin)
	token := bearerFor(t, admin)

	short := doJSON(t, app, fiber.MethodPost, "/api/v1/users/", token, fiber.Map{
		"username": "newbie", "name": "New Person", "email": "new@example.com", "password": "tiny",
	})
	assert.Equal(t, fiber.StatusBadRequest, short.StatusCode)

	created := doJSON(t, app, fiber.MethodPost, "/api/v1/users/", token, fiber.Map{
		"username": "newbie", "name": "New Person", "email": "new@example.com", "password": "secret123",
	})
	require.Equal(t, fiber.StatusCreated, created.StatusCode)

	var user models.User
	require.NoError(t, testDB.Where("username = ?", "newbie").First(&user).Error)
	assert.Equal(t, models.RoleStaff, user.Role, "role defaults to staff")
	assert.NotEqual(t, "secret123", user.Password, "password is stored hashed")
	assert.EqualValues(t, admin.ID, user.CreatedBy)

	dup := doJSON(t, app, fiber.MethodPost, "/api/v1/users/", token, fiber.Map{
		"username": "newbie", "name": "Other Person", "email": "other@example.com", "password": "secret123",
	})
	assert.Equal(t, fiber.StatusConflict, dup.StatusCode)

	// The fresh account can log in straight away.
	login := doJSON(t, app, fiber.MethodPost, "/api/v1/auth/login", "",
		fiber.Map{"username": "newbie", "password": "secret123"})
	assert.Equal(t, fiber.StatusOK, login.StatusCode)
	login.Body.Close()
}

func TestUpdateUserGuardsLastSuperAdmin(t *testing.T) {
	resetTables(t)
	app, _ := newTestApp()
	boss := seedUser(t, "boss", "secret123", models.RoleSuperAdmin)
	token := bearerFor(t, boss)

	demote := doJSON(t, app, fiber.MethodPut, fmt.Sprintf("/api/v1/users/%d", boss.ID), token, fiber.Map{
		"username": "boss", "name": "The Boss", "email": "boss@example.com", "role": models.RoleAdmin,
	})
	assert.Equal(t, fiber.StatusConflict, demote.StatusCode)
	body := decodeBody(t, demote)
	assert.Equal(t, "Cannot demote or deactivate the last super admin", body["error"])

	inactive := false
	deactivate := doJSON(t, app, fiber.MethodPut, fmt.Sprintf("/api/v1/users/%d", boss.ID), token, fiber.Map{
		"username": "boss", "name": "The Boss", "email": "boss@example.com", "is_active": inactive,
	})
	assert.Equal(t, fiber.StatusConflict, deactivate.StatusCode)

	// A second active super admin lifts the guard.
	seedUser(t, "boss2", "secret123", models.RoleSuperAdmin)
	demote = doJSON(t, app, fiber.MethodPut, fmt.Sprintf("/api/v1/users/%d", boss.ID), token, fiber.Map{
		"username": "boss", "name": "The Boss", "email": "boss@example.com", "role": models.RoleAdmin,
	})
	require.Equal(t, fiber.StatusOK, demote.StatusCode)

	var updated models.User
	require.NoError(t, testDB.First(&updated, boss.ID).Error)
	assert.Equal(t, models.RoleAdmin, updated.Role)
}

func TestDeleteUser(t *testing.T) {
	resetTables(t)
	app, _ := newTestApp()
	boss := seedUser(t, "boss", "secret123", models.RoleSuperAdmin)
	staff := seedUser(t, "staff1", "secret123", models.RoleStaff)
	token := bearerFor(t, boss)

	self := doJSON(t, app, fiber.MethodDelete, fmt.Sprintf("/api/v1/users/%d", boss.ID), token, nil)
	assert.Equal(t, fiber.StatusBadRequest, self.StatusCode)
	body := decodeBody(t, self)
	assert.Equal(t, "You cannot delete your own account", body["error"])

	ok := doJSON(t, app, fiber.MethodDelete, fmt.Sprintf("/api/v1/users/%d", staff.ID), token, nil)
	require.Equal(t, fiber.StatusOK, ok.StatusCode)

	missing := doJSON(t, app, fiber.MethodGet, fmt.Sprintf("/api/v1/users/%d", staff.ID), token, nil)
	assert.Equal(t, fiber.StatusNotFound, missing.StatusCode)

	// Soft delete: the row survives with the audit column filled in.
	var raw models.User
	require.NoError(t, testDB.Unscoped().First(&raw, staff.ID).Error)
	assert.True(t, raw.DeletedAt.Valid)
	assert.EqualValues(t, boss.ID, raw.DeletedBy)
}

func TestDeleteLastSuperAdmin(t *testing.T) {
	resetTables(t)
	app, _ := newTestApp()
	boss := seedUser(t, "boss", "secret123", models.RoleSuperAdmin)
	admin := seedUser(t, "admin1", "secret123", models.RoleAdmin)

	resp := doJSON(t, app, fiber.MethodDelete, fmt.Sprintf("/api/v1/users/%d", boss.ID), bearerFor(t, admin), nil)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Cannot delete the last super admin", body["error"])
}
