package models

import (
	"time"

	"freight-app/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	LocationChina = "china"
	LocationGhana = "ghana"
)

const (
	ItemStatusInWarehouse = "in_warehouse"
	ItemStatusLoaded      = "loaded"
	ItemStatusInTransit   = "in_transit"
	ItemStatusArrived     = "arrived"
	ItemStatusDelivered   = "delivered"
)

const (
	MatchStatusMatched   = "matched"
	MatchStatusUnmatched = "unmatched"
	MatchStatusSkipped   = "skipped"
)

func IsValidItemStatus(status string) bool {
	switch status {
	case ItemStatusInWarehouse, ItemStatusLoaded, ItemStatusInTransit,
		ItemStatusArrived, ItemStatusDelivered:
		return true
	}
	return false
}

// WarehouseItem is a single received package. Items enter at the China
// warehouse, ride a container, and are handed over in Ghana. An item with no
// resolved customer stays unmatched until someone assigns the shipping mark.
type WarehouseItem struct {
	gorm.Model
	TrackingNo     string          `json:"tracking_no" gorm:"unique"`
	ShippingMark   string          `json:"shipping_mark"`
	NormalizedMark string          `json:"-" gorm:"index"`
	Description    string          `json:"description"`
	Quantity       int             `json:"quantity" gorm:"default:1"`
	Cbm            decimal.Decimal `json:"cbm" gorm:"type:decimal(10,3)"`
	WeightKg       decimal.Decimal `json:"weight_kg" gorm:"type:decimal(10,2)"`
	CargoType      string          `json:"cargo_type" gorm:"index;default:'sea'"`
	Location       string          `json:"location" gorm:"index;default:'china'"`
	Status         string          `json:"status" gorm:"index;default:'in_warehouse'"`
	MatchStatus    string          `json:"match_status" gorm:"index;default:'unmatched'"`
	ContainerID    *uint           `json:"container_id" gorm:"index"`
	CustomerID     *uint           `json:"customer_id" gorm:"index"`
	ReceivedDate   *time.Time      `json:"received_date"`
	DeliveredDate  *time.Time      `json:"delivered_date"`
	Notes          string          `json:"notes"`
	CreatedBy      int             `json:"created_by"`
	UpdatedBy      int             `json:"updated_by"`
	DeletedBy      int             `json:"deleted_by"`
}

func (w *WarehouseItem) BeforeSave(tx *gorm.DB) error {
	w.NormalizedMark = utils.NormalizeMark(w.ShippingMark)
	return nil
}

// ItemStatusForContainer maps a container lifecycle status to the item status
// items inside it should carry after the cascade.
func ItemStatusForContainer(containerStatus string) (string, bool) {
	switch containerStatus {
	case ContainerStatusLoading:
		return ItemStatusLoaded, true
	case ContainerStatusInTransit:
		return ItemStatusInTransit, true
	case ContainerStatusArrived:
		return ItemStatusArrived, true
	case ContainerStatusUnloaded:
		return ItemStatusArrived, true
	}
	return "", false
}
