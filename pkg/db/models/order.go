package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rajivmenon/tailorbooks-backend/pkg/enums"
)

// CostOverride lets the shop replace a calculated cost group with a manual
// amount. Reason is mandatory whenever the override is active.
type CostOverride struct {
	Overridden bool            `gorm:"column:overridden;not null;default:false"`
	Amount     decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null;default:0"`
	Reason     *string         `gorm:"column:reason"`
}

// Order is a customer's tailoring order. Pricing fields are a point-in-time
// snapshot taken at creation; catalog price changes never rewrite them.
type Order struct {
	ID         uuid.UUID         `gorm:"column:id;type:uuid;default:(gen_random_uuid());primaryKey"`
	CustomerID uuid.UUID         `gorm:"column:customer_id;type:uuid;not null"`
	Status     enums.OrderStatus `gorm:"column:status;type:order_status_enum;not null;default:'new'"`
	OrderDate  time.Time         `gorm:"column:order_date;not null"`

	StitchingTier        enums.StitchingTier `gorm:"column:stitching_tier;type:stitching_tier_enum;not null"`
	FabricWastagePercent decimal.Decimal     `gorm:"column:fabric_wastage_percent;type:numeric(5,2);not null;default:0"`
	HandStitched         bool                `gorm:"column:hand_stitched;not null;default:false"`
	FullCanvas           bool                `gorm:"column:full_canvas;not null;default:false"`
	RushOrder            bool                `gorm:"column:rush_order;not null;default:false"`
	ComplexDesign        bool                `gorm:"column:complex_design;not null;default:false"`
	AdditionalFittings   int                 `gorm:"column:additional_fittings;not null;default:0"`
	PremiumLining        bool                `gorm:"column:premium_lining;not null;default:false"`
	DesignerFee          decimal.Decimal     `gorm:"column:designer_fee;type:numeric(12,2);not null;default:0"`

	FabricOverride      CostOverride `gorm:"embedded;embeddedPrefix:fabric_override_"`
	StitchingOverride   CostOverride `gorm:"embedded;embeddedPrefix:stitching_override_"`
	AccessoriesOverride CostOverride `gorm:"embedded;embeddedPrefix:accessories_override_"`

	CalculatedFabricCost      decimal.Decimal `gorm:"column:calculated_fabric_cost;type:numeric(12,2);not null;default:0"`
	CalculatedAccessoriesCost decimal.Decimal `gorm:"column:calculated_accessories_cost;type:numeric(12,2);not null;default:0"`
	CalculatedStitchingCost   decimal.Decimal `gorm:"column:calculated_stitching_cost;type:numeric(12,2);not null;default:0"`
	FabricCost                decimal.Decimal `gorm:"column:fabric_cost;type:numeric(12,2);not null;default:0"`
	FabricWastageAmount       decimal.Decimal `gorm:"column:fabric_wastage_amount;type:numeric(12,2);not null;default:0"`
	AccessoriesCost           decimal.Decimal `gorm:"column:accessories_cost;type:numeric(12,2);not null;default:0"`
	StitchingCost             decimal.Decimal `gorm:"column:stitching_cost;type:numeric(12,2);not null;default:0"`
	WorkmanshipPremiums       decimal.Decimal `gorm:"column:workmanship_premiums;type:numeric(12,2);not null;default:0"`
	SubTotal                  decimal.Decimal `gorm:"column:sub_total;type:numeric(12,2);not null;default:0"`
	GSTRate                   decimal.Decimal `gorm:"column:gst_rate;type:numeric(5,2);not null;default:12"`
	CGST                      decimal.Decimal `gorm:"column:cgst;type:numeric(12,2);not null;default:0"`
	SGST                      decimal.Decimal `gorm:"column:sgst;type:numeric(12,2);not null;default:0"`
	GSTAmount                 decimal.Decimal `gorm:"column:gst_amount;type:numeric(12,2);not null;default:0"`
	TotalAmount               decimal.Decimal `gorm:"column:total_amount;type:numeric(12,2);not null;default:0"`
	AdvancePaid               decimal.Decimal `gorm:"column:advance_paid;type:numeric(12,2);not null;default:0"`
	BalanceAmount             decimal.Decimal `gorm:"column:balance_amount;type:numeric(12,2);not null;default:0"`

	DeliveredAt *time.Time `gorm:"column:delivered_at"`
	CancelledAt *time.Time `gorm:"column:cancelled_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`

	Customer *Customer   `gorm:"foreignKey:CustomerID"`
	Items    []OrderItem `gorm:"foreignKey:OrderID"`
}
