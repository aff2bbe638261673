package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemAccessoryInput is one accessory line on an order item.
type ItemAccessoryInput struct {
	AccessoryID uuid.UUID `json:"accessoryId" validate:"required"`
	Quantity    int       `json:"quantity" validate:"required,gt=0"`
}

// ItemInput is one garment selection on a create request.
type ItemInput struct {
	GarmentPatternID uuid.UUID            `json:"garmentPatternId" validate:"required"`
	FabricItemID     uuid.UUID            `json:"fabricItemId" validate:"required"`
	BodyType         string               `json:"bodyType" validate:"required"`
	Quantity         int                  `json:"quantity"`
	Accessories      []ItemAccessoryInput `json:"accessories" validate:"dive"`
}

// OverrideInput replaces a calculated cost group with a manual amount.
// Reason is mandatory whenever the override is active.
type OverrideInput struct {
	IsOverridden bool            `json:"isOverridden"`
	Amount       decimal.Decimal `json:"amount"`
	Reason       string          `json:"reason"`
}

// CreateOrderInput is the full create/estimate request.
type CreateOrderInput struct {
	CustomerID           uuid.UUID       `json:"customerId" validate:"required"`
	OrderDate            *time.Time      `json:"orderDate"`
	StitchingTier        string          `json:"stitchingTier" validate:"required"`
	FabricWastagePercent decimal.Decimal `json:"fabricWastagePercent"`
	HandStitched         bool            `json:"handStitched"`
	FullCanvas           bool            `json:"fullCanvas"`
	RushOrder            bool            `json:"rushOrder"`
	ComplexDesign        bool            `json:"complexDesign"`
	AdditionalFittings   int             `json:"additionalFittings"`
	PremiumLining        bool            `json:"premiumLining"`
	DesignerFee          decimal.Decimal `json:"designerFee"`

	FabricOverride      OverrideInput `json:"fabricOverride"`
	StitchingOverride   OverrideInput `json:"stitchingOverride"`
	AccessoriesOverride OverrideInput `json:"accessoriesOverride"`

	AdvancePaid decimal.Decimal `json:"advancePaid"`

	Items []ItemInput `json:"items" validate:"required,min=1,dive"`
}

// DeliveredItemInput reports the actual meters cut for one order item.
type DeliveredItemInput struct {
	OrderItemID      uuid.UUID       `json:"orderItemId" validate:"required"`
	ActualMetersUsed decimal.Decimal `json:"actualMetersUsed"`
}

// TransitionInput moves an order through its lifecycle. Items is required
// when transitioning to delivered.
type TransitionInput struct {
	Status string               `json:"status" validate:"required"`
	Items  []DeliveredItemInput `json:"items" validate:"dive"`
}

// AdvanceInput records an advance payment against an order.
type AdvanceInput struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
}
