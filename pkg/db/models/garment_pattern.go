package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rajivmenon/tailorbooks-backend/pkg/enums"
)

// GarmentPattern is immutable reference data: base fabric meters, per-body-type
// meter adjustments, per-tier stitching charges, and default accessories.
type GarmentPattern struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:(gen_random_uuid());primaryKey"`
	Name       string          `gorm:"column:name;not null"`
	BaseMeters decimal.Decimal `gorm:"column:base_meters;type:numeric(8,2);not null"`

	SlimAdjustment    decimal.Decimal `gorm:"column:slim_adjustment;type:numeric(8,2);not null;default:0"`
	RegularAdjustment decimal.Decimal `gorm:"column:regular_adjustment;type:numeric(8,2);not null;default:0"`
	LargeAdjustment   decimal.Decimal `gorm:"column:large_adjustment;type:numeric(8,2);not null;default:0"`
	XLAdjustment      decimal.Decimal `gorm:"column:xl_adjustment;type:numeric(8,2);not null;default:0"`

	BasicCharge   decimal.Decimal `gorm:"column:basic_charge;type:numeric(12,2);not null;default:0"`
	PremiumCharge decimal.Decimal `gorm:"column:premium_charge;type:numeric(12,2);not null;default:0"`
	LuxuryCharge  decimal.Decimal `gorm:"column:luxury_charge;type:numeric(12,2);not null;default:0"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`

	DefaultAccessories []GarmentPatternAccessory `gorm:"foreignKey:GarmentPatternID"`
}

// AdjustmentFor returns the extra meters needed for the given body type.
func (p GarmentPattern) AdjustmentFor(bodyType enums.BodyType) decimal.Decimal {
	switch bodyType {
	case enums.BodyTypeSlim:
		return p.SlimAdjustment
	case enums.BodyTypeLarge:
		return p.LargeAdjustment
	case enums.BodyTypeXL:
		return p.XLAdjustment
	default:
		return p.RegularAdjustment
	}
}

// StitchingChargeFor returns the labor charge for the given tier.
func (p GarmentPattern) StitchingChargeFor(tier enums.StitchingTier) decimal.Decimal {
	switch tier {
	case enums.StitchingTierPremium:
		return p.PremiumCharge
	case enums.StitchingTierLuxury:
		return p.LuxuryCharge
	default:
		return p.BasicCharge
	}
}

// GarmentPatternAccessory is a default accessory line on a pattern.
type GarmentPatternAccessory struct {
	ID               uuid.UUID `gorm:"column:id;type:uuid;default:(gen_random_uuid());primaryKey"`
	GarmentPatternID uuid.UUID `gorm:"column:garment_pattern_id;type:uuid;not null"`
	AccessoryID      uuid.UUID `gorm:"column:accessory_id;type:uuid;not null"`
	QtyPerGarment    int       `gorm:"column:qty_per_garment;not null;default:1"`
}
