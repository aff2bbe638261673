package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FabricItem tracks a bolt of fabric. Reserved meters are committed to open
// orders but not yet cut; available = current_stock - reserved.
type FabricItem struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:(gen_random_uuid());primaryKey"`
	Name          string          `gorm:"column:name;not null"`
	Color         string          `gorm:"column:color;not null"`
	PricePerMeter decimal.Decimal `gorm:"column:price_per_meter;type:numeric(12,2);not null"`
	CurrentStock  decimal.Decimal `gorm:"column:current_stock;type:numeric(12,2);not null;default:0"`
	Reserved      decimal.Decimal `gorm:"column:reserved;type:numeric(12,2);not null;default:0"`
	MinimumMeters decimal.Decimal `gorm:"column:minimum_meters;type:numeric(12,2);not null;default:0"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// Available returns the meters free to commit to new orders.
func (f FabricItem) Available() decimal.Decimal {
	return f.CurrentStock.Sub(f.Reserved)
}
