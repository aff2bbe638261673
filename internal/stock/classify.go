// Package stock keeps the material accounting honest: reservation and
// consumption of fabric and accessories, the append-only movement trail, and
// the stock health classification used by dashboards and alerts.
package stock

import (
	"github.com/shopspring/decimal"

	"github.com/rajivmenon/tailorbooks-backend/pkg/enums"
)

var lowStockFactor = decimal.NewFromFloat(1.25)

// Classify grades an item's stock position. Available quantity is
// currentStock minus reserved; reserved-but-uncut material does not count as
// sellable. Thresholds are inclusive: exactly at minimum is critical, exactly
// at 1.25x minimum is low.
func Classify(currentStock, reserved, minimum decimal.Decimal) enums.StockHealth {
	available := currentStock.Sub(reserved)
	switch {
	case available.LessThanOrEqual(decimal.Zero):
		return enums.StockHealthOutOfStock
	case available.LessThanOrEqual(minimum):
		return enums.StockHealthCritical
	case available.LessThanOrEqual(minimum.Mul(lowStockFactor)):
		return enums.StockHealthLow
	default:
		return enums.StockHealthHealthy
	}
}
