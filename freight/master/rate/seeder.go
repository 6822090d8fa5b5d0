package rate

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SeedRates installs the default price card. Prices are starting values, the
// admin screens are the source of truth afterwards.
func SeedRates(db *gorm.DB) {
	rates := []Rate{
		{CargoType: "sea", Category: CategoryRegular, Description: "Sea freight, regular goods", PricePerCbm: decimal.NewFromInt(280), Currency: "USD"},
		{CargoType: "sea", Category: CategorySpecial, Description: "Sea freight, special goods", PricePerCbm: decimal.NewFromInt(350), Currency: "USD"},
		{CargoType: "air", Category: CategoryRegular, Description: "Air freight, regular goods", PricePerKg: decimal.NewFromFloat(11.5), Currency: "USD"},
		{CargoType: "air", Category: CategorySpecial, Description: "Air freight, special goods", PricePerKg: decimal.NewFromFloat(14.0), Currency: "USD"},
	}

	for _, r := range rates {
		var existing Rate
		if err := db.Where("cargo_type = ? AND category = ?", r.CargoType, r.Category).First(&existing).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				r.IsActive = true
				db.Create(&r)
			}
		}
	}
}
