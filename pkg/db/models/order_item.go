package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rajivmenon/tailorbooks-backend/pkg/enums"
)

// OrderItem is a single garment on an order. Quantity is 1 in practice
// (duplication adds items) but the pricing math supports larger values.
// ActualMetersUsed stays nil until delivery.
type OrderItem struct {
	ID               uuid.UUID        `gorm:"column:id;type:uuid;default:(gen_random_uuid());primaryKey"`
	OrderID          uuid.UUID        `gorm:"column:order_id;type:uuid;not null"`
	GarmentPatternID uuid.UUID        `gorm:"column:garment_pattern_id;type:uuid;not null"`
	FabricItemID     uuid.UUID        `gorm:"column:fabric_item_id;type:uuid;not null"`
	BodyType         enums.BodyType   `gorm:"column:body_type;type:body_type_enum;not null"`
	Quantity         int              `gorm:"column:quantity;not null;default:1"`
	EstimatedMeters  decimal.Decimal  `gorm:"column:estimated_meters;type:numeric(8,2);not null;default:0"`
	ActualMetersUsed *decimal.Decimal `gorm:"column:actual_meters_used;type:numeric(8,2)"`
	PricePerUnit     decimal.Decimal  `gorm:"column:price_per_unit;type:numeric(12,2);not null;default:0"`
	TotalPrice       decimal.Decimal  `gorm:"column:total_price;type:numeric(12,2);not null;default:0"`
	CreatedAt        time.Time        `gorm:"column:created_at;autoCreateTime"`

	Pattern     *GarmentPattern      `gorm:"foreignKey:GarmentPatternID"`
	Fabric      *FabricItem          `gorm:"foreignKey:FabricItemID"`
	Accessories []OrderItemAccessory `gorm:"foreignKey:OrderItemID"`
}

// OrderItemAccessory is an accessory line attached to an order item.
type OrderItemAccessory struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:(gen_random_uuid());primaryKey"`
	OrderItemID uuid.UUID `gorm:"column:order_item_id;type:uuid;not null"`
	AccessoryID uuid.UUID `gorm:"column:accessory_id;type:uuid;not null"`
	Quantity    int       `gorm:"column:quantity;not null;default:1"`

	Accessory *Accessory `gorm:"foreignKey:AccessoryID"`
}
