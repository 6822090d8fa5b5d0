package controllers_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"freight-app/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateGoods(t *testing.T) {
	resetTables(t)
	app, _ := newTestApp()
	user := seedUser(t, "staff1", "secret123", models.RoleStaff)
	token := bearerFor(t, user)

	noMark := doJSON(t, app, fiber.MethodPost, "/api/v1/goods/", token, fiber.Map{
		"description": "Shoes",
	})
	assert.Equal(t, fiber.StatusBadRequest, noMark.StatusCode)

	negative := doJSON(t, app, fiber.MethodPost, "/api/v1/goods/", token, fiber.Map{
		"shipping_mark": "AMA 7", "cbm": "-0.5",
	})
	assert.Equal(t, fiber.StatusBadRequest, negative.StatusCode)
	assert.Equal(t, "cbm and weight_kg cannot be negative", decodeBody(t, negative)["error"])

	created := doJSON(t, app, fiber.MethodPost, "/api/v1/goods/", token, fiber.Map{
		"tracking_no": " sf900 ", "shipping_mark": "AMA 7", "description": "Shoes",
	})
	require.Equal(t, fiber.StatusCreated, created.StatusCode)

	var item models.WarehouseItem
	require.NoError(t, testDB.Where("tracking_no = ?", "SF900").First(&item).Error)
	assert.Equal(t, 1, item.Quantity)
	assert.Equal(t, models.CargoTypeSea, item.CargoType)
	assert.Equal(t, models.LocationChina, item.Location)
	assert.Equal(t, models.ItemStatusInWarehouse, item.Status)
	assert.Equal(t, models.MatchStatusUnmatched, item.MatchStatus)
	assert.Equal(t, int(user.ID), item.CreatedBy)
	require.NotNil(t, item.ReceivedDate)

	dup := doJSON(t, app, fiber.MethodPost, "/api/v1/goods/", token, fiber.Map{
		"tracking_no": "sf900", "shipping_mark": "AMA 7",
	})
	assert.Equal(t, fiber.StatusConflict, dup.StatusCode)
	assert.Equal(t, "Tracking number already exists", decodeBody(t, dup)["error"])
}

func TestCreateGoodsMatchesRegisteredMark(t *testing.T) {
	resetTables(t)
	app, _ := newTestApp()
	token := bearerFor(t, seedUser(t, "staff1", "secret123", models.RoleStaff))

	kofi := &models.Customer{ShippingMark: "KOFI 21", Name: "Kofi Mensah", Phone: "0244112233", IsActive: true}
	require.NoError(t, testDB.Create(kofi).Error)

	created := doJSON(t, app, fiber.MethodPost, "/api/v1/goods/", token, fiber.Map{
		"shipping_mark": "kofi-21", "quantity": 2, "cbm": "0.25",
	})
	require.Equal(t, fiber.StatusCreated, created.StatusCode)

	var item models.WarehouseItem
	require.NoError(t, testDB.Where("normalized_mark = ?", "KOFI 21").First(&item).Error)
	assert.Equal(t, models.MatchStatusMatched, item.MatchStatus)
	require.NotNil(t, item.CustomerID)
	assert.Equal(t, kofi.ID, *item.CustomerID)

	// No tracking number in the booking, the warehouse hands one out.
	assert.True(t, strings.HasPrefix(item.TrackingNo, "GW"))
}

func TestGetAllGoodsFilters(t *testing.T) {
	resetTables(t)
	app, _ := newTestApp()
	token := bearerFor(t, seedUser(t, "staff1", "secret123", models.RoleStaff))

	container := seedContainer(t, "MSKU1234567", models.ContainerStatusInTransit)
	cid := container.ID

	require.NoError(t, testDB.Create(&models.WarehouseItem{
		TrackingNo: "SF100", ShippingMark: "KOFI 21", Quantity: 1,
		Status: models.ItemStatusInWarehouse, MatchStatus: models.MatchStatusUnmatched,
		Location: models.LocationChina, CargoType: models.CargoTypeSea,
	}).Error)
	require.NoError(t, testDB.Create(&models.WarehouseItem{
		TrackingNo: "SF101", ShippingMark: "AMA 7", Quantity: 1,
		Status: models.ItemStatusInTransit, MatchStatus: models.MatchStatusUnmatched,
		Location: models.LocationChina, CargoType: models.CargoTypeSea, ContainerID: &cid,
	}).Error)
	require.NoError(t, testDB.Create(&models.WarehouseItem{
		TrackingNo: "EK200", ShippingMark: "YAW 3", Quantity: 1,
		Status: models.ItemStatusArrived, MatchStatus: models.MatchStatusSkipped,
		Location: models.LocationGhana, CargoType: models.CargoTypeAir,
	}).Error)

	totalOf := func(path string) interface{} {
		resp := doJSON(t, app, fiber.MethodGet, path, token, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		return dataOf(t, decodeBody(t, resp))["total"]
	}

	assert.EqualValues(t, 3, totalOf("/api/v1/goods/"))
	assert.EqualValues(t, 1, totalOf("/api/v1/goods/?status=in_transit"))
	assert.EqualValues(t, 1, totalOf("/api/v1/goods/?location=ghana"))
	assert.EqualValues(t, 1, totalOf("/api/v1/goods/?cargo_type=air"))
	assert.EqualValues(t, 1, totalOf("/api/v1/goods/?match_status=skipped"))
	assert.EqualValues(t, 1, totalOf(fmt.Sprintf("/api/v1/goods/?container_id=%d", cid)))
	assert.EqualValues(t, 1, totalOf("/api/v1/goods/?search=sf101"))
	assert.EqualValues(t, 1, totalOf("/api/v1/goods/?search=kofi"))
}

func TestGetGoodsByID(t *testing.T) {
	resetTables(t)
	app, _ := newTestApp()
	token := bearerFor(t, seedUser(t, "staff1", "secret123", models.RoleStaff))

	kofi := &models.Customer{ShippingMark: "KOFI 21", Name: "Kofi Mensah", Phone: "0244112233", IsActive: true}
	require.NoError(t, testDB.Create(kofi).Error)
	container := seedContainer(t, "MSKU1234567", models.ContainerStatusInTransit)
	cid := container.ID

	item := &models.WarehouseItem{
		TrackingNo: "SF100", ShippingMark: "KOFI 21", Quantity: 1,
		Status: models.ItemStatusInTransit, MatchStatus: models.MatchStatusMatched,
		CustomerID: &kofi.ID, ContainerID: &cid,
	}
	require.NoError(t, testDB.Create(item).Error)

	resp := doJSON(t, app, fiber.MethodGet, fmt.Sprintf("/api/v1/goods/%d", item.ID), token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	data := dataOf(t, decodeBody(t, resp))

	got := data["item"].(map[string]interface{})
	assert.Equal(t, "SF100", got["tracking_no"])
	customer := data["customer"].(map[string]interface{})
	assert.Equal(t, "Kofi Mensah", customer["name"])
	embedded := data["container"].(map[string]interface{})
	assert.Equal(t, "MSKU1234567", embedded["container_no"])

	missing := doJSON(t, app, fiber.MethodGet, "/api/v1/goods/999999", token, nil)
	assert.Equal(t, fiber.StatusNotFound, missing.StatusCode)
	assert.Equal(t, "Item not found", decodeBody(t, missing)["error"])
}

func TestUpdateGoods(t *testing.T) {
	resetTables(t)
	app, _ := newTestApp()
	token := bearerFor(t, seedUser(t, "staff1", "secret123", models.RoleStaff))

	kofi := &models.Customer{ShippingMark: "KOFI 21", Name: "Kofi Mensah", Phone: "0244112233", IsActive: true}
	ama := &models.Customer{ShippingMark: "AMA 7", Name: "Ama Serwaa", Phone: "0200112233", IsActive: true}
	require.NoError(t, testDB.Create(kofi).Error)
	require.NoError(t, testDB.Create(ama).Error)

	item := &models.WarehouseItem{
		TrackingNo: "SF100", ShippingMark: "KOFI 21", Quantity: 2,
		Status: models.ItemStatusInWarehouse, MatchStatus: models.MatchStatusMatched,
		CustomerID: &kofi.ID,
	}
	require.NoError(t, testDB.Create(item).Error)
	path := fmt.Sprintf("/api/v1/goods/%d", item.ID)

	negative := doJSON(t, app, fiber.MethodPut, path, token, fiber.Map{
		"shipping_mark": "KOFI 21", "weight_kg": "-1",
	})
	assert.Equal(t, fiber.StatusBadRequest, negative.StatusCode)

	// Same mark in a different spelling keeps the customer link.
	sameMark := doJSON(t, app, fiber.MethodPut, path, token, fiber.Map{
		"shipping_mark": "kofi_21", "description": "Phone accessories", "cbm": "0.25",
	})
	require.Equal(t, fiber.StatusOK, sameMark.StatusCode)
	require.NoError(t, testDB.First(item, item.ID).Error)
	require.NotNil(t, item.CustomerID)
	assert.Equal(t, kofi.ID, *item.CustomerID)
	assert.Equal(t, "kofi_21", item.ShippingMark)
	assert.Equal(t, 2, item.Quantity)

	// A new mark re-runs matching against the register.
	reMark := doJSON(t, app, fiber.MethodPut, path, token, fiber.Map{
		"shipping_mark": "ama 7", "quantity": 3,
	})
	require.Equal(t, fiber.StatusOK, reMark.StatusCode)
	require.NoError(t, testDB.First(item, item.ID).Error)
	require.NotNil(t, item.CustomerID)
	assert.Equal(t, ama.ID, *item.CustomerID)
	assert.Equal(t, models.MatchStatusMatched, item.MatchStatus)
	assert.Equal(t, 3, item.Quantity)

	unknownMark := doJSON(t, app, fiber.MethodPut, path, token, fiber.Map{
		"shipping_mark": "NOBODY 99",
	})
	require.Equal(t, fiber.StatusOK, unknownMark.StatusCode)
	require.NoError(t, testDB.First(item, item.ID).Error)
	assert.Nil(t, item.CustomerID)
	assert.Equal(t, models.MatchStatusUnmatched, item.MatchStatus)
}

func TestUpdateGoodsDeliveredIsFrozen(t *testing.T) {
	resetTables(t)
	app, _ := newTestApp()
	token := bearerFor(t, seedUser(t, "staff1", "secret123", models.RoleStaff))

	now := time.Now()
	item := &models.WarehouseItem{
		TrackingNo: "SF100", ShippingMark: "KOFI 21", Quantity: 1,
		Status: models.ItemStatusDelivered, MatchStatus: models.MatchStatusMatched,
		Location: models.LocationGhana, DeliveredDate: &now,
	}
	require.NoError(t, testDB.Create(item).Error)

	resp := doJSON(t, app, fiber.MethodPut, fmt.Sprintf("/api/v1/goods/%d", item.ID), token, fiber.Map{
		"shipping_mark": "KOFI 21", "description": "Edited",
	})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "Delivered items can no longer be edited", decodeBody(t, resp)["error"])
}

func TestUpdateGoodsStatus(t *testing.T) {
	resetTables(t)
	app, _ := newTestApp()
	user := seedUser(t, "staff1", "secret123", models.RoleStaff)
	token := bearerFor(t, user)

	kofi := &models.Customer{ShippingMark: "KOFI 21", Name: "Kofi Mensah", Phone: "0244112233", IsActive: true}
	require.NoError(t, testDB.Create(kofi).Error)

	matched := &models.WarehouseItem{
		TrackingNo: "SF100", ShippingMark: "KOFI 21", Quantity: 1,
		Status: models.ItemStatusArrived, MatchStatus: models.MatchStatusMatched,
		Location: models.LocationGhana, CustomerID: &kofi.ID,
	}
	loose := &models.WarehouseItem{
		TrackingNo: "SF101", ShippingMark: "AMA 7", Quantity: 1,
		Status: models.ItemStatusArrived, MatchStatus: models.MatchStatusUnmatched,
		Location: models.LocationGhana,
	}
	require.NoError(t, testDB.Create(matched).Error)
	require.NoError(t, testDB.Create(loose).Error)

	bad := doJSON(t, app, fiber.MethodPut, fmt.Sprintf("/api/v1/goods/%d/status", matched.ID), token, fiber.Map{"status": "lost"})
	assert.Equal(t, fiber.StatusBadRequest, bad.StatusCode)
	assert.Equal(t, "Unknown item status", decodeBody(t, bad)["error"])

	noCustomer := doJSON(t, app, fiber.MethodPut, fmt.Sprintf("/api/v1/goods/%d/status", loose.ID), token, fiber.Map{"status": "delivered"})
	assert.Equal(t, fiber.StatusBadRequest, noCustomer.StatusCode)
	assert.Equal(t, "Cannot deliver an item without a matched customer", decodeBody(t, noCustomer)["error"])

	delivered := doJSON(t, app, fiber.MethodPut, fmt.Sprintf("/api/v1/goods/%d/status", matched.ID), token, fiber.Map{"status": "delivered"})
	require.Equal(t, fiber.StatusOK, delivered.StatusCode)

	require.NoError(t, testDB.First(matched, matched.ID).Error)
	assert.Equal(t, models.ItemStatusDelivered, matched.Status)
	assert.Equal(t, models.LocationGhana, matched.Location)
	assert.Equal(t, int(user.ID), matched.UpdatedBy)
	require.NotNil(t, matched.DeliveredDate)
	assert.WithinDuration(t, time.Now(), *matched.DeliveredDate, time.Minute)

	again := doJSON(t, app, fiber.MethodPut, fmt.Sprintf("/api/v1/goods/%d/status", matched.ID), token, fiber.Map{"status": "arrived"})
	assert.Equal(t, fiber.StatusConflict, again.StatusCode)
	assert.Equal(t, "Item is already delivered", decodeBody(t, again)["error"])

	missing := doJSON(t, app, fiber.MethodPut, "/api/v1/goods/999999/status", token, fiber.Map{"status": "arrived"})
	assert.Equal(t, fiber.StatusNotFound, missing.StatusCode)
}

func TestDeleteGoods(t *testing.T) {
	resetTables(t)
	app, _ := newTestApp()
	user := seedUser(t, "staff1", "secret123", models.RoleStaff)
	token := bearerFor(t, user)

	item := &models.WarehouseItem{
		TrackingNo: "GW500", ShippingMark: "AMA 7", Quantity: 1,
		Status: models.ItemStatusInWarehouse, MatchStatus: models.MatchStatusUnmatched,
	}
	require.NoError(t, testDB.Create(item).Error)

	badID := doJSON(t, app, fiber.MethodDelete, "/api/v1/goods/abc", token, nil)
	assert.Equal(t, fiber.StatusBadRequest, badID.StatusCode)

	resp := doJSON(t, app, fiber.MethodDelete, fmt.Sprintf("/api/v1/goods/%d", item.ID), token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Item GW500 deleted successfully", decodeBody(t, resp)["message"])

	gone := doJSON(t, app, fiber.MethodGet, fmt.Sprintf("/api/v1/goods/%d", item.ID), token, nil)
	assert.Equal(t, fiber.StatusNotFound, gone.StatusCode)

	var trashed models.WarehouseItem
	require.NoError(t, testDB.Unscoped().First(&trashed, item.ID).Error)
	assert.True(t, trashed.DeletedAt.Valid)
	assert.Equal(t, int(user.ID), trashed.DeletedBy)

	missing := doJSON(t, app, fiber.MethodDelete, "/api/v1/goods/999999", token, nil)
	assert.Equal(t, fiber.StatusNotFound, missing.StatusCode)
}
