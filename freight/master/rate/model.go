package rate

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	CargoSea = "sea"
	CargoAir = "air"

	CategoryRegular = "regular"
	CategorySpecial = "special"
)

// Rate is a price card entry. Sea cargo is billed by volume, air cargo by
// weight, so one of the two prices applies depending on the cargo type.
type Rate struct {
	gorm.Model
	CargoType   string          `json:"cargo_type" gorm:"uniqueIndex:idx_rates_type_category"`
	Category    string          `json:"category" gorm:"uniqueIndex:idx_rates_type_category"`
	Description string          `json:"description"`
	PricePerCbm decimal.Decimal `json:"price_per_cbm" gorm:"type:decimal(12,2)"`
	PricePerKg  decimal.Decimal `json:"price_per_kg" gorm:"type:decimal(12,2)"`
	Currency    string          `json:"currency" gorm:"default:'USD'"`
	IsActive    bool            `json:"is_active" gorm:"default:true"`
	CreatedBy   int
	UpdatedBy   int
	DeletedBy   int
}

// ChargeFor prices a shipment against this rate. Sea uses CBM, air uses
// weight in kilograms.
func (r *Rate) ChargeFor(cbm, weightKg decimal.Decimal) decimal.Decimal {
	if r.CargoType == CargoAir {
		return r.PricePerKg.Mul(weightKg).Round(2)
	}
	return r.PricePerCbm.Mul(cbm).Round(2)
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Rate{})
}
