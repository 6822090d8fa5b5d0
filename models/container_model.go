package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	CargoTypeSea = "sea"
	CargoTypeAir = "air"
)

// Container lifecycle. Transitions only move forward, one step at a time.
const (
	ContainerStatusLoading   = "loading"
	ContainerStatusInTransit = "in_transit"
	ContainerStatusArrived   = "arrived"
	ContainerStatusUnloaded  = "unloaded"
)

var containerStatusOrder = map[string]int{
	ContainerStatusLoading:   0,
	ContainerStatusInTransit: 1,
	ContainerStatusArrived:   2,
	ContainerStatusUnloaded:  3,
}

// CargoContainer groups warehouse items into a single sea container or air
// shipment. Vessel and seal fields apply to sea cargo, flight and AWB to air.
type CargoContainer struct {
	gorm.Model
	ContainerNo     string     `json:"container_no" gorm:"unique"`
	CargoType       string     `json:"cargo_type" gorm:"index;default:'sea'"`
	Status          string     `json:"status" gorm:"index;default:'loading'"`
	OriginWarehouse string     `json:"origin_warehouse" gorm:"default:'china'"`
	LoadedDate      *time.Time `json:"loaded_date"`
	Eta             *time.Time `json:"eta"`
	ArrivedDate     *time.Time `json:"arrived_date"`
	VesselName      string     `json:"vessel_name"`
	SealNo          string     `json:"seal_no"`
	FlightNo        string     `json:"flight_no"`
	Awb             string     `json:"awb"`
	Notes           string     `json:"notes"`
	CreatedBy       int        `json:"created_by"`
	UpdatedBy       int        `json:"updated_by"`
	DeletedBy       int        `json:"deleted_by"`
}

// IsValidContainerStatus reports whether s is one of the lifecycle statuses.
func IsValidContainerStatus(s string) bool {
	_, ok := containerStatusOrder[s]
	return ok
}

// CanTransition reports whether the container may move to next. Only the
// immediate next step in the lifecycle is allowed, never backwards or a skip.
func (c *CargoContainer) CanTransition(next string) bool {
	cur, ok := containerStatusOrder[c.Status]
	if !ok {
		return false
	}
	to, ok := containerStatusOrder[next]
	if !ok {
		return false
	}
	return to == cur+1
}

// ContainerStatusLog records every lifecycle change for the audit trail.
type ContainerStatusLog struct {
	gorm.Model
	ContainerID uint   `json:"container_id" gorm:"index"`
	FromStatus  string `json:"from_status"`
	ToStatus    string `json:"to_status"`
	Detail      string `json:"detail"`
	CreatedBy   int    `json:"created_by"`
}
