package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rajivmenon/tailorbooks-backend/pkg/enums"
)

// StockMovement is the append-only audit trail for fabric/accessory stock.
// Every reserve/use/release/adjust writes one row with the signed delta and
// the balance it produced.
type StockMovement struct {
	ID               uuid.UUID               `gorm:"column:id;type:uuid;default:(gen_random_uuid());primaryKey"`
	ItemKind         enums.StockItemKind     `gorm:"column:item_kind;type:stock_item_kind_enum;not null"`
	ItemID           uuid.UUID               `gorm:"column:item_id;type:uuid;not null"`
	OrderID          *uuid.UUID              `gorm:"column:order_id;type:uuid"`
	Type             enums.StockMovementType `gorm:"column:type;type:stock_movement_type_enum;not null"`
	QuantityDelta    decimal.Decimal         `gorm:"column:quantity_delta;type:numeric(12,2);not null"`
	ResultingBalance decimal.Decimal         `gorm:"column:resulting_balance;type:numeric(12,2);not null"`
	Note             *string                 `gorm:"column:note"`
	CreatedAt        time.Time               `gorm:"column:created_at;autoCreateTime"`
}
