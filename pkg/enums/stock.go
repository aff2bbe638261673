package enums

import "fmt"

// StockItemKind distinguishes the two stocked material types.
type StockItemKind string

const (
	StockItemKindFabric    StockItemKind = "fabric"
	StockItemKindAccessory StockItemKind = "accessory"
)

var validStockItemKinds = []StockItemKind{
	StockItemKindFabric,
	StockItemKindAccessory,
}

// String implements fmt.Stringer.
func (k StockItemKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known StockItemKind.
func (k StockItemKind) IsValid() bool {
	for _, candidate := range validStockItemKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseStockItemKind converts raw input into a StockItemKind.
func ParseStockItemKind(value string) (StockItemKind, error) {
	for _, candidate := range validStockItemKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock item kind %q", value)
}

// StockMovementType labels an entry in the append-only stock audit trail.
type StockMovementType string

const (
	StockMovementTypeReserve StockMovementType = "reserve"
	StockMovementTypeUse     StockMovementType = "use"
	StockMovementTypeRelease StockMovementType = "release"
	StockMovementTypeAdjust  StockMovementType = "adjust"
)

var validStockMovementTypes = []StockMovementType{
	StockMovementTypeReserve,
	StockMovementTypeUse,
	StockMovementTypeRelease,
	StockMovementTypeAdjust,
}

// String implements fmt.Stringer.
func (m StockMovementType) String() string {
	return string(m)
}

// IsValid reports whether the value is a known StockMovementType.
func (m StockMovementType) IsValid() bool {
	for _, candidate := range validStockMovementTypes {
		if candidate == m {
			return true
		}
	}
	return false
}

// StockHealth classifies how close an item's available quantity is to its minimum.
type StockHealth string

const (
	StockHealthOutOfStock StockHealth = "out_of_stock"
	StockHealthCritical   StockHealth = "critical"
	StockHealthLow        StockHealth = "low"
	StockHealthHealthy    StockHealth = "healthy"
)

var validStockHealths = []StockHealth{
	StockHealthOutOfStock,
	StockHealthCritical,
	StockHealthLow,
	StockHealthHealthy,
}

// String implements fmt.Stringer.
func (h StockHealth) String() string {
	return string(h)
}

// IsValid reports whether the value is a known StockHealth.
func (h StockHealth) IsValid() bool {
	for _, candidate := range validStockHealths {
		if candidate == h {
			return true
		}
	}
	return false
}
