// Package pricing turns a cart of garment selections into a tax-inclusive
// price breakdown. Estimation is pure: same inputs, same breakdown, no side
// effects. Monetary intermediates round to 2 decimals at every accumulation
// step so engine totals match invoice arithmetic line by line.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rajivmenon/tailorbooks-backend/pkg/db/models"
	"github.com/rajivmenon/tailorbooks-backend/pkg/enums"
	pkgerrors "github.com/rajivmenon/tailorbooks-backend/pkg/errors"
	"github.com/rajivmenon/tailorbooks-backend/pkg/money"
)

var (
	gstRatePercent = decimal.NewFromInt(12)

	handStitchedRate  = decimal.NewFromFloat(0.40)
	rushOrderRate     = decimal.NewFromFloat(0.50)
	complexDesignRate = decimal.NewFromFloat(0.30)

	fullCanvasCharge    = decimal.NewFromInt(5000)
	premiumLiningCharge = decimal.NewFromInt(5000)
	fittingCharge       = decimal.NewFromInt(1500)

	maxWastagePercent = decimal.NewFromInt(15)
)

// AccessorySelection is one accessory line on an item.
type AccessorySelection struct {
	Accessory *models.Accessory
	Quantity  int
}

// ItemInput is a garment selection with its catalog rows already resolved.
// A nil Pattern or Fabric marks the reference as unresolved; such items are
// skipped from calculation and reported via Breakdown.SkippedItems.
type ItemInput struct {
	Pattern     *models.GarmentPattern
	Fabric      *models.FabricItem
	BodyType    enums.BodyType
	Quantity    int
	Accessories []AccessorySelection
}

// Override replaces a calculated cost group with a manual amount.
type Override struct {
	Overridden bool
	Amount     decimal.Decimal
	Reason     string
}

// Config carries the per-order pricing knobs.
type Config struct {
	StitchingTier        enums.StitchingTier
	FabricWastagePercent decimal.Decimal
	HandStitched         bool
	FullCanvas           bool
	RushOrder            bool
	ComplexDesign        bool
	AdditionalFittings   int
	PremiumLining        bool
	DesignerFee          decimal.Decimal

	FabricOverride      Override
	StitchingOverride   Override
	AccessoriesOverride Override

	AdvancePaid decimal.Decimal
}

// ItemPrice is the per-item slice of the estimate, in input order.
type ItemPrice struct {
	Skipped         bool
	EstimatedMeters decimal.Decimal
	PricePerUnit    decimal.Decimal
	TotalPrice      decimal.Decimal
}

// Breakdown is the itemized, tax-inclusive result. Calculated* fields keep the
// raw catalog-derived costs even when an override replaced them, so absence of
// a calculation is distinguishable from a zero.
type Breakdown struct {
	CalculatedFabricCost      decimal.Decimal `json:"calculatedFabricCost"`
	CalculatedAccessoriesCost decimal.Decimal `json:"calculatedAccessoriesCost"`
	CalculatedStitchingCost   decimal.Decimal `json:"calculatedStitchingCost"`

	FabricCost          decimal.Decimal `json:"fabricCost"`
	FabricWastageAmount decimal.Decimal `json:"fabricWastageAmount"`
	AccessoriesCost     decimal.Decimal `json:"accessoriesCost"`
	StitchingCost       decimal.Decimal `json:"stitchingCost"`
	WorkmanshipPremiums decimal.Decimal `json:"workmanshipPremiums"`
	DesignerFee         decimal.Decimal `json:"designerFee"`
	SubTotal            decimal.Decimal `json:"subTotal"`
	GSTRate             decimal.Decimal `json:"gstRate"`
	CGST                decimal.Decimal `json:"cgst"`
	SGST                decimal.Decimal `json:"sgst"`
	GSTAmount           decimal.Decimal `json:"gstAmount"`
	Total               decimal.Decimal `json:"total"`
	BalanceAmount       decimal.Decimal `json:"balanceAmount"`

	SkippedItems int         `json:"skippedItems"`
	Items        []ItemPrice `json:"items"`
}

// Estimate prices the provided items under the given config.
//
// Items with an unresolved pattern or fabric are dropped from calculation (the
// caller decides whether that is fatal); an estimate with zero priceable items
// is a validation error. Overrides apply to the group totals, wastage applies
// to the final (possibly overridden) fabric cost, and premiums apply to the
// final stitching cost.
func Estimate(items []ItemInput, cfg Config) (*Breakdown, error) {
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	b := &Breakdown{
		GSTRate: gstRatePercent,
		Items:   make([]ItemPrice, len(items)),
	}

	priced := 0
	for i, item := range items {
		if item.Pattern == nil || item.Fabric == nil {
			b.Items[i] = ItemPrice{Skipped: true}
			b.SkippedItems++
			continue
		}

		qty := item.Quantity
		if qty < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d has non-positive quantity", i))
		}
		qtyDec := decimal.NewFromInt(int64(qty))

		meters := item.Pattern.BaseMeters.
			Add(item.Pattern.AdjustmentFor(item.BodyType)).
			Mul(qtyDec)
		lineFabric := money.Mul(meters, item.Fabric.PricePerMeter)
		b.CalculatedFabricCost = b.CalculatedFabricCost.Add(lineFabric)

		var lineAccessories decimal.Decimal
		for _, sel := range item.Accessories {
			if sel.Accessory == nil || sel.Quantity <= 0 {
				continue
			}
			lineAccessories = lineAccessories.Add(
				money.Mul(decimal.NewFromInt(int64(sel.Quantity)), sel.Accessory.PricePerUnit),
			)
		}
		b.CalculatedAccessoriesCost = b.CalculatedAccessoriesCost.Add(lineAccessories)

		lineStitching := item.Pattern.StitchingChargeFor(cfg.StitchingTier).Mul(qtyDec)
		b.CalculatedStitchingCost = b.CalculatedStitchingCost.Add(lineStitching)

		lineTotal := money.Round2(lineFabric.Add(lineAccessories).Add(lineStitching))
		b.Items[i] = ItemPrice{
			EstimatedMeters: meters,
			PricePerUnit:    money.Round2(lineTotal.Div(qtyDec)),
			TotalPrice:      lineTotal,
		}
		priced++
	}

	if priced == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order has no priceable items")
	}

	b.FabricCost = resolveFinal(b.CalculatedFabricCost, cfg.FabricOverride)
	b.AccessoriesCost = resolveFinal(b.CalculatedAccessoriesCost, cfg.AccessoriesOverride)
	b.StitchingCost = resolveFinal(b.CalculatedStitchingCost, cfg.StitchingOverride)

	// Wastage applies to the final fabric cost, not the raw calculated one.
	b.FabricWastageAmount = money.Percent(b.FabricCost, cfg.FabricWastagePercent)
	b.WorkmanshipPremiums = premiums(b.StitchingCost, cfg)
	b.DesignerFee = money.Round2(cfg.DesignerFee)

	b.SubTotal = money.Round2(
		b.FabricCost.
			Add(b.FabricWastageAmount).
			Add(b.AccessoriesCost).
			Add(b.StitchingCost).
			Add(b.WorkmanshipPremiums).
			Add(b.DesignerFee),
	)

	b.GSTAmount = money.Percent(b.SubTotal, gstRatePercent)
	b.CGST = money.Half(b.GSTAmount)
	b.SGST = b.CGST
	b.Total = money.Round2(b.SubTotal.Add(b.GSTAmount))

	// An advance above the total yields a negative balance (refund case).
	b.BalanceAmount = b.Total.Sub(money.Round2(cfg.AdvancePaid))

	return b, nil
}

func validateConfig(cfg Config) error {
	if !cfg.StitchingTier.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid stitching tier %q", cfg.StitchingTier))
	}
	if cfg.FabricWastagePercent.IsNegative() || cfg.FabricWastagePercent.GreaterThan(maxWastagePercent) {
		return pkgerrors.New(pkgerrors.CodeValidation, "fabric wastage percent must be between 0 and 15")
	}
	if cfg.AdditionalFittings < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "additional fittings cannot be negative")
	}
	if cfg.DesignerFee.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "designer consultation fee cannot be negative")
	}
	for _, group := range []struct {
		name     string
		override Override
	}{
		{"fabric", cfg.FabricOverride},
		{"stitching", cfg.StitchingOverride},
		{"accessories", cfg.AccessoriesOverride},
	} {
		if !group.override.Overridden {
			continue
		}
		if group.override.Reason == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s cost override requires a reason", group.name)).
				WithDetails(map[string]string{"group": group.name})
		}
		if group.override.Amount.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s cost override cannot be negative", group.name)).
				WithDetails(map[string]string{"group": group.name})
		}
	}
	return nil
}

func resolveFinal(calculated decimal.Decimal, override Override) decimal.Decimal {
	if override.Overridden {
		return money.Round2(override.Amount)
	}
	return calculated
}

// premiums sums the active workmanship premiums against the final stitching cost.
func premiums(finalStitching decimal.Decimal, cfg Config) decimal.Decimal {
	var total decimal.Decimal
	if cfg.HandStitched {
		total = total.Add(money.Mul(finalStitching, handStitchedRate))
	}
	if cfg.FullCanvas {
		total = total.Add(fullCanvasCharge)
	}
	if cfg.RushOrder {
		total = total.Add(money.Mul(finalStitching, rushOrderRate))
	}
	if cfg.ComplexDesign {
		total = total.Add(money.Mul(finalStitching, complexDesignRate))
	}
	if cfg.AdditionalFittings > 0 {
		total = total.Add(fittingCharge.Mul(decimal.NewFromInt(int64(cfg.AdditionalFittings))))
	}
	if cfg.PremiumLining {
		total = total.Add(premiumLiningCharge)
	}
	return total
}
