// Package efficiency derives fabric usage variance from delivered order
// items. Reports are recomputed on demand from estimated vs. actual meters;
// no persisted variance field is ever trusted.
package efficiency

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rajivmenon/tailorbooks-backend/pkg/money"
)

var hundred = decimal.NewFromInt(100)

// ItemUsage is one delivered order item's fabric consumption.
type ItemUsage struct {
	OrderID       uuid.UUID
	PatternName   string
	FabricName    string
	FabricColor   string
	EstimatedMeters decimal.Decimal
	ActualMeters  decimal.Decimal
	PricePerMeter decimal.Decimal
	DeliveredAt   time.Time
}

// FabricVariance aggregates usage per fabric identity (name + color).
type FabricVariance struct {
	FabricName      string          `json:"fabricName"`
	FabricColor     string          `json:"fabricColor"`
	Items           int             `json:"items"`
	EstimatedMeters decimal.Decimal `json:"estimatedMeters"`
	ActualMeters    decimal.Decimal `json:"actualMeters"`
	WastageMeters   decimal.Decimal `json:"wastageMeters"`
	WastageCost     decimal.Decimal `json:"wastageCost"`
}

// ItemVariance is one item row for drill-down, most recent first.
type ItemVariance struct {
	OrderID         uuid.UUID       `json:"orderId"`
	PatternName     string          `json:"patternName"`
	FabricName      string          `json:"fabricName"`
	FabricColor     string          `json:"fabricColor"`
	EstimatedMeters decimal.Decimal `json:"estimatedMeters"`
	ActualMeters    decimal.Decimal `json:"actualMeters"`
	VarianceMeters  decimal.Decimal `json:"varianceMeters"`
	VarianceCost    decimal.Decimal `json:"varianceCost"`
	DeliveredAt     time.Time       `json:"deliveredAt"`
}

// Report is the aggregated efficiency view.
type Report struct {
	TotalEstimated       decimal.Decimal  `json:"totalEstimated"`
	TotalActualUsed      decimal.Decimal  `json:"totalActualUsed"`
	TotalWastage         decimal.Decimal  `json:"totalWastage"`
	TotalVarianceAmount  decimal.Decimal  `json:"totalVarianceAmount"`
	EfficiencyPercentage decimal.Decimal  `json:"efficiencyPercentage"`
	ByFabric             []FabricVariance `json:"byFabric"`
	RecentItems          []ItemVariance   `json:"recentItems"`
}

const recentItemLimit = 20

// Analyze computes the variance report over the given items. Internals keep
// full precision; rounding to 2 decimals happens once, at presentation.
func Analyze(items []ItemUsage) Report {
	var (
		totalEstimated decimal.Decimal
		totalActual    decimal.Decimal
		totalWastage   decimal.Decimal
		totalVariance  decimal.Decimal
	)
	byFabric := map[string]*FabricVariance{}
	itemRows := make([]ItemVariance, 0, len(items))

	for _, item := range items {
		variance := item.ActualMeters.Sub(item.EstimatedMeters)
		varianceCost := variance.Mul(item.PricePerMeter)

		totalEstimated = totalEstimated.Add(item.EstimatedMeters)
		totalActual = totalActual.Add(item.ActualMeters)
		totalWastage = totalWastage.Add(variance)
		totalVariance = totalVariance.Add(varianceCost)

		key := item.FabricName + "|" + item.FabricColor
		group, ok := byFabric[key]
		if !ok {
			group = &FabricVariance{FabricName: item.FabricName, FabricColor: item.FabricColor}
			byFabric[key] = group
		}
		group.Items++
		group.EstimatedMeters = group.EstimatedMeters.Add(item.EstimatedMeters)
		group.ActualMeters = group.ActualMeters.Add(item.ActualMeters)
		group.WastageMeters = group.WastageMeters.Add(variance)
		group.WastageCost = group.WastageCost.Add(varianceCost)

		itemRows = append(itemRows, ItemVariance{
			OrderID:         item.OrderID,
			PatternName:     item.PatternName,
			FabricName:      item.FabricName,
			FabricColor:     item.FabricColor,
			EstimatedMeters: item.EstimatedMeters,
			ActualMeters:    item.ActualMeters,
			VarianceMeters:  variance,
			VarianceCost:    varianceCost,
			DeliveredAt:     item.DeliveredAt,
		})
	}

	efficiency := decimal.Zero
	if totalEstimated.IsPositive() {
		efficiency = totalEstimated.Sub(totalWastage.Abs()).Div(totalEstimated).Mul(hundred)
	}

	groups := make([]FabricVariance, 0, len(byFabric))
	for _, group := range byFabric {
		groups = append(groups, *group)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		left, right := groups[i].WastageMeters.Abs(), groups[j].WastageMeters.Abs()
		if !left.Equal(right) {
			return left.GreaterThan(right)
		}
		return groups[i].FabricName < groups[j].FabricName
	})

	sort.SliceStable(itemRows, func(i, j int) bool {
		return itemRows[i].DeliveredAt.After(itemRows[j].DeliveredAt)
	})
	if len(itemRows) > recentItemLimit {
		itemRows = itemRows[:recentItemLimit]
	}

	return Report{
		TotalEstimated:       money.Round2(totalEstimated),
		TotalActualUsed:      money.Round2(totalActual),
		TotalWastage:         money.Round2(totalWastage),
		TotalVarianceAmount:  money.Round2(totalVariance),
		EfficiencyPercentage: money.Round2(efficiency),
		ByFabric:             roundGroups(groups),
		RecentItems:          roundItems(itemRows),
	}
}

func roundGroups(groups []FabricVariance) []FabricVariance {
	for i := range groups {
		groups[i].EstimatedMeters = money.Round2(groups[i].EstimatedMeters)
		groups[i].ActualMeters = money.Round2(groups[i].ActualMeters)
		groups[i].WastageMeters = money.Round2(groups[i].WastageMeters)
		groups[i].WastageCost = money.Round2(groups[i].WastageCost)
	}
	return groups
}

func roundItems(items []ItemVariance) []ItemVariance {
	for i := range items {
		items[i].EstimatedMeters = money.Round2(items[i].EstimatedMeters)
		items[i].ActualMeters = money.Round2(items[i].ActualMeters)
		items[i].VarianceMeters = money.Round2(items[i].VarianceMeters)
		items[i].VarianceCost = money.Round2(items[i].VarianceCost)
	}
	return items
}
