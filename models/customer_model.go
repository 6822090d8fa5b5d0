package models

import (
	"freight-app/utils"

	"gorm.io/gorm"
)

// Customer is the owner of goods moving through the warehouses. The shipping
// mark is the business key: every manifest row carries one, and matching
// compares the normalized forms, never the raw text.
type Customer struct {
	gorm.Model
	ShippingMark    string `json:"shipping_mark" gorm:"unique"`
	NormalizedMark  string `json:"-" gorm:"index"`
	Name            string `json:"name"`
	Phone           string `json:"phone"`
	NormalizedPhone string `json:"-" gorm:"index"`
	AltPhone        string `json:"alt_phone"`
	Email           string `json:"email"`
	City            string `json:"city"`
	Country         string `json:"country" gorm:"default:'Ghana'"`
	Notes           string `json:"notes"`
	IsActive        bool   `json:"is_active" gorm:"default:true"`
	CreatedBy       int    `json:"created_by"`
	UpdatedBy       int    `json:"updated_by"`
	DeletedBy       int    `json:"deleted_by"`
}

// BeforeSave keeps the normalized columns in step with the raw ones no matter
// which code path writes the customer.
func (c *Customer) BeforeSave(tx *gorm.DB) error {
	c.NormalizedMark = utils.NormalizeMark(c.ShippingMark)
	c.NormalizedPhone = utils.NormalizePhone(c.Phone)
	return nil
}
