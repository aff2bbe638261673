package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajivmenon/tailorbooks-backend/pkg/db/models"
	"github.com/rajivmenon/tailorbooks-backend/pkg/enums"
	pkgerrors "github.com/rajivmenon/tailorbooks-backend/pkg/errors"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func suitPattern() *models.GarmentPattern {
	return &models.GarmentPattern{
		Name:              "Two Piece Suit",
		BaseMeters:        dec("2.00"),
		SlimAdjustment:    dec("-0.25"),
		RegularAdjustment: dec("0.25"),
		LargeAdjustment:   dec("0.50"),
		XLAdjustment:      dec("0.75"),
		BasicCharge:       dec("2000"),
		PremiumCharge:     dec("3500"),
		LuxuryCharge:      dec("6000"),
	}
}

func cottonFabric() *models.FabricItem {
	return &models.FabricItem{
		Name:          "Cotton Twill",
		Color:         "navy",
		PricePerMeter: dec("450"),
	}
}

func baseConfig() Config {
	return Config{StitchingTier: enums.StitchingTierBasic}
}

func singleItem() []ItemInput {
	return []ItemInput{{
		Pattern:  suitPattern(),
		Fabric:   cottonFabric(),
		BodyType: enums.BodyTypeRegular,
		Quantity: 1,
	}}
}

func assertDecEqual(t *testing.T, want string, got decimal.Decimal, msg string) {
	t.Helper()
	assert.True(t, got.Equal(dec(want)), "%s: want %s got %s", msg, want, got)
}

func TestEstimate_SingleGarment(t *testing.T) {
	b, err := Estimate(singleItem(), baseConfig())
	require.NoError(t, err)

	// 2.25m at 450/m plus 2000 basic stitching.
	assertDecEqual(t, "1012.50", b.FabricCost, "fabric cost")
	assertDecEqual(t, "2000", b.StitchingCost, "stitching cost")
	assertDecEqual(t, "3012.50", b.SubTotal, "sub total")
	assertDecEqual(t, "361.50", b.GSTAmount, "gst amount")
	assertDecEqual(t, "180.75", b.CGST, "cgst")
	assertDecEqual(t, "180.75", b.SGST, "sgst")
	assertDecEqual(t, "3374.00", b.Total, "total")
	assertDecEqual(t, "3374.00", b.BalanceAmount, "balance with no advance")

	require.Len(t, b.Items, 1)
	assert.False(t, b.Items[0].Skipped)
	assertDecEqual(t, "2.25", b.Items[0].EstimatedMeters, "estimated meters")
	assertDecEqual(t, "3012.50", b.Items[0].TotalPrice, "item total")
	assertDecEqual(t, "3012.50", b.Items[0].PricePerUnit, "price per unit")
}

func TestEstimate_Deterministic(t *testing.T) {
	first, err := Estimate(singleItem(), baseConfig())
	require.NoError(t, err)
	second, err := Estimate(singleItem(), baseConfig())
	require.NoError(t, err)

	assert.True(t, first.Total.Equal(second.Total))
	assert.True(t, first.SubTotal.Equal(second.SubTotal))
	assert.True(t, first.GSTAmount.Equal(second.GSTAmount))
}

func TestEstimate_BodyTypeAdjustsMeters(t *testing.T) {
	items := singleItem()
	items[0].BodyType = enums.BodyTypeXL

	b, err := Estimate(items, baseConfig())
	require.NoError(t, err)

	// 2.75m at 450/m.
	assertDecEqual(t, "2.75", b.Items[0].EstimatedMeters, "xl meters")
	assertDecEqual(t, "1237.50", b.FabricCost, "xl fabric cost")
}

func TestEstimate_AccessoriesAccumulatePerLine(t *testing.T) {
	buttons := &models.Accessory{Name: "Horn Buttons", PricePerUnit: dec("33.33")}
	lining := &models.Accessory{Name: "Viscose Lining", PricePerUnit: dec("210")}

	items := singleItem()
	items[0].Accessories = []AccessorySelection{
		{Accessory: buttons, Quantity: 6},
		{Accessory: lining, Quantity: 2},
	}

	b, err := Estimate(items, baseConfig())
	require.NoError(t, err)

	// 6x33.33 = 199.98, 2x210 = 420, each line rounded before summing.
	assertDecEqual(t, "619.98", b.AccessoriesCost, "accessories cost")
}

func TestEstimate_SkipsUnresolvedItems(t *testing.T) {
	items := append(singleItem(), ItemInput{
		Pattern:  nil,
		Fabric:   cottonFabric(),
		BodyType: enums.BodyTypeRegular,
		Quantity: 1,
	})

	b, err := Estimate(items, baseConfig())
	require.NoError(t, err)

	assert.Equal(t, 1, b.SkippedItems)
	require.Len(t, b.Items, 2)
	assert.True(t, b.Items[1].Skipped)
	assertDecEqual(t, "3012.50", b.SubTotal, "sub total ignores skipped item")
}

func TestEstimate_AllItemsUnresolved(t *testing.T) {
	_, err := Estimate([]ItemInput{{Fabric: cottonFabric()}}, baseConfig())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestEstimate_NoItems(t *testing.T) {
	_, err := Estimate(nil, baseConfig())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestEstimate_OverrideReplacesCalculatedCost(t *testing.T) {
	cfg := baseConfig()
	cfg.FabricOverride = Override{Overridden: true, Amount: dec("5000"), Reason: "customer supplied premium wool"}
	cfg.FabricWastagePercent = dec("10")

	b, err := Estimate(singleItem(), cfg)
	require.NoError(t, err)

	assertDecEqual(t, "1012.50", b.CalculatedFabricCost, "calculated fabric kept")
	assertDecEqual(t, "5000", b.FabricCost, "override wins")
	// Wastage runs on the overridden amount.
	assertDecEqual(t, "500.00", b.FabricWastageAmount, "wastage on override")
}

func TestEstimate_OverrideRequiresReason(t *testing.T) {
	cfg := baseConfig()
	cfg.StitchingOverride = Override{Overridden: true, Amount: dec("1800")}

	_, err := Estimate(singleItem(), cfg)
	require.Error(t, err)

	appErr := pkgerrors.As(err)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
	details, ok := appErr.Details().(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "stitching", details["group"])
}

func TestEstimate_OverrideRejectsNegativeAmount(t *testing.T) {
	cfg := baseConfig()
	cfg.AccessoriesOverride = Override{Overridden: true, Amount: dec("-1"), Reason: "discount"}

	_, err := Estimate(singleItem(), cfg)
	require.Error(t, err)
	details, ok := pkgerrors.As(err).Details().(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "accessories", details["group"])
}

func TestEstimate_InactiveOverrideIgnored(t *testing.T) {
	cfg := baseConfig()
	cfg.FabricOverride = Override{Overridden: false, Amount: dec("99999")}

	b, err := Estimate(singleItem(), cfg)
	require.NoError(t, err)
	assertDecEqual(t, "1012.50", b.FabricCost, "inactive override has no effect")
}

func TestEstimate_WastageRange(t *testing.T) {
	cfg := baseConfig()
	cfg.FabricWastagePercent = dec("15.01")
	_, err := Estimate(singleItem(), cfg)
	require.Error(t, err)

	cfg.FabricWastagePercent = dec("-0.5")
	_, err = Estimate(singleItem(), cfg)
	require.Error(t, err)

	cfg.FabricWastagePercent = dec("15")
	b, err := Estimate(singleItem(), cfg)
	require.NoError(t, err)
	assertDecEqual(t, "151.88", b.FabricWastageAmount, "15 percent of 1012.50 rounded")
}

func TestEstimate_PremiumsStackOnFinalStitching(t *testing.T) {
	cfg := baseConfig()
	cfg.StitchingOverride = Override{Overridden: true, Amount: dec("3000"), Reason: "negotiated rate"}
	cfg.HandStitched = true
	cfg.RushOrder = true
	cfg.ComplexDesign = true
	cfg.FullCanvas = true
	cfg.PremiumLining = true
	cfg.AdditionalFittings = 2

	b, err := Estimate(singleItem(), cfg)
	require.NoError(t, err)

	// Percent premiums on 3000: 1200 + 1500 + 900. Flat: 5000 + 5000 + 3000.
	assertDecEqual(t, "16600", b.WorkmanshipPremiums, "stacked premiums")
}

func TestEstimate_DesignerFeeInSubTotal(t *testing.T) {
	cfg := baseConfig()
	cfg.DesignerFee = dec("2500")

	b, err := Estimate(singleItem(), cfg)
	require.NoError(t, err)
	assertDecEqual(t, "5512.50", b.SubTotal, "sub total with designer fee")
}

func TestEstimate_AdvanceCanExceedTotal(t *testing.T) {
	cfg := baseConfig()
	cfg.AdvancePaid = dec("4000")

	b, err := Estimate(singleItem(), cfg)
	require.NoError(t, err)
	assertDecEqual(t, "-626.00", b.BalanceAmount, "negative balance preserved")
}

func TestEstimate_QuantityMultipliesLine(t *testing.T) {
	items := singleItem()
	items[0].Quantity = 2

	b, err := Estimate(items, baseConfig())
	require.NoError(t, err)

	assertDecEqual(t, "4.50", b.Items[0].EstimatedMeters, "meters for two garments")
	assertDecEqual(t, "6025.00", b.Items[0].TotalPrice, "line total")
	assertDecEqual(t, "3012.50", b.Items[0].PricePerUnit, "per unit")
}

func TestEstimate_InvalidTier(t *testing.T) {
	cfg := Config{StitchingTier: enums.StitchingTier("bespoke")}
	_, err := Estimate(singleItem(), cfg)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}
