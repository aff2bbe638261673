package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Accessory is a stocked trim item (buttons, linings, zippers) priced per unit.
// Same committed-vs-available shape as FabricItem.
type Accessory struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:(gen_random_uuid());primaryKey"`
	Name         string          `gorm:"column:name;not null"`
	PricePerUnit decimal.Decimal `gorm:"column:price_per_unit;type:numeric(12,2);not null"`
	CurrentStock decimal.Decimal `gorm:"column:current_stock;type:numeric(12,2);not null;default:0"`
	Reserved     decimal.Decimal `gorm:"column:reserved;type:numeric(12,2);not null;default:0"`
	MinimumUnits decimal.Decimal `gorm:"column:minimum_units;type:numeric(12,2);not null;default:0"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// Available returns the units free to commit to new orders.
func (a Accessory) Available() decimal.Decimal {
	return a.CurrentStock.Sub(a.Reserved)
}
