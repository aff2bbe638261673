// Package customers scores clients from their order history and separates
// returning customers from one-off walk-ins.
package customers

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rajivmenon/tailorbooks-backend/pkg/enums"
	"github.com/rajivmenon/tailorbooks-backend/pkg/money"
)

// Scoring weights are fixed business constants.
var (
	orderWeight = decimal.NewFromInt(500)
	monthWeight = decimal.NewFromInt(1000)
	itemWeight  = decimal.NewFromInt(100)
)

const returningMinGap = 14 * 24 * time.Hour

// OrderSummary is the slice of an order the classifier needs.
type OrderSummary struct {
	Status      enums.OrderStatus
	OrderDate   time.Time
	TotalAmount decimal.Decimal
	ItemCount   int
}

// CustomerHistory is one customer's full order history.
type CustomerHistory struct {
	CustomerID uuid.UUID
	Name       string
	Orders     []OrderSummary
}

// Ranking is one scored row, ordered by value score descending.
type Ranking struct {
	CustomerID    uuid.UUID       `json:"customerId"`
	Name          string          `json:"name"`
	TotalSpent    decimal.Decimal `json:"totalSpent"`
	TotalOrders   int             `json:"totalOrders"`
	PendingOrders int             `json:"pendingOrders"`
	TotalItems    int             `json:"totalItems"`
	MonthsActive  int             `json:"monthsActive"`
	ValueScore    decimal.Decimal `json:"valueScore"`
	IsReturning   bool            `json:"isReturning"`
}

// ScoreCustomers ranks every customer by value score. Spend counts delivered
// orders only; order, item, and month counts cover the whole history.
func ScoreCustomers(histories []CustomerHistory) []Ranking {
	rankings := make([]Ranking, 0, len(histories))
	for _, history := range histories {
		rankings = append(rankings, score(history))
	}
	sort.SliceStable(rankings, func(i, j int) bool {
		if !rankings[i].ValueScore.Equal(rankings[j].ValueScore) {
			return rankings[i].ValueScore.GreaterThan(rankings[j].ValueScore)
		}
		return rankings[i].Name < rankings[j].Name
	})
	return rankings
}

func score(history CustomerHistory) Ranking {
	var totalSpent decimal.Decimal
	months := map[[2]int]struct{}{}
	pending := 0
	items := 0

	for _, order := range history.Orders {
		if order.Status == enums.OrderStatusDelivered {
			totalSpent = totalSpent.Add(order.TotalAmount)
		}
		if !order.Status.IsTerminal() {
			pending++
		}
		items += order.ItemCount
		months[[2]int{order.OrderDate.Year(), int(order.OrderDate.Month())}] = struct{}{}
	}

	monthsActive := len(months)
	valueScore := totalSpent.
		Add(orderWeight.Mul(decimal.NewFromInt(int64(len(history.Orders))))).
		Add(monthWeight.Mul(decimal.NewFromInt(int64(monthsActive)))).
		Add(itemWeight.Mul(decimal.NewFromInt(int64(items))))

	return Ranking{
		CustomerID:    history.CustomerID,
		Name:          history.Name,
		TotalSpent:    money.Round2(totalSpent),
		TotalOrders:   len(history.Orders),
		PendingOrders: pending,
		TotalItems:    items,
		MonthsActive:  monthsActive,
		ValueScore:    money.Round2(valueScore),
		IsReturning:   IsReturning(history.Orders),
	}
}

// IsReturning applies the three-part conjunctive rule: at least 3 delivered
// orders, spanning at least 2 distinct calendar months, with at least one
// pair of orders 14 or more days apart. Three orders in the same week do not
// qualify.
func IsReturning(orders []OrderSummary) bool {
	var delivered []time.Time
	for _, order := range orders {
		if order.Status == enums.OrderStatusDelivered {
			delivered = append(delivered, order.OrderDate)
		}
	}
	if len(delivered) < 3 {
		return false
	}

	months := map[[2]int]struct{}{}
	for _, date := range delivered {
		months[[2]int{date.Year(), int(date.Month())}] = struct{}{}
	}
	if len(months) < 2 {
		return false
	}

	sort.Slice(delivered, func(i, j int) bool { return delivered[i].Before(delivered[j]) })
	return delivered[len(delivered)-1].Sub(delivered[0]) >= returningMinGap
}
