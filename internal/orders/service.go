// Package orders owns the order lifecycle: pricing at creation, stock
// reservation, status transitions, and the delivery settlement that converts
// reservations into consumption.
package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rajivmenon/tailorbooks-backend/internal/pricing"
	"github.com/rajivmenon/tailorbooks-backend/internal/stock"
	"github.com/rajivmenon/tailorbooks-backend/pkg/db/models"
	"github.com/rajivmenon/tailorbooks-backend/pkg/enums"
	pkgerrors "github.com/rajivmenon/tailorbooks-backend/pkg/errors"
	"github.com/rajivmenon/tailorbooks-backend/pkg/logger"
	"github.com/rajivmenon/tailorbooks-backend/pkg/metrics"
	"github.com/rajivmenon/tailorbooks-backend/pkg/outbox"
	"github.com/rajivmenon/tailorbooks-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type catalogReader interface {
	PatternsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.GarmentPattern, error)
	FabricsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.FabricItem, error)
	AccessoriesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Accessory, error)
}

type stockLedger interface {
	Reserve(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, lines []stock.Line) error
	Release(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, lines []stock.Line) error
	Consume(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, lines []stock.Line) error
}

// Service is the order workflow surface.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*models.Order, *pricing.Breakdown, error)
	Estimate(ctx context.Context, input CreateOrderInput) (*pricing.Breakdown, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, customerID *uuid.UUID, params pagination.Params) ([]models.Order, string, error)
	Transition(ctx context.Context, id uuid.UUID, input TransitionInput) (*models.Order, error)
	RecordAdvance(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*models.Order, error)
}

type service struct {
	repo    *Repository
	catalog catalogReader
	ledger  stockLedger
	tx      txRunner
	emitter outbox.Emitter
	metrics *metrics.EngineMetrics
	logg    *logger.Logger
	now     func() time.Time
}

// NewService wires the order workflow. The emitter and metrics may be nil in
// tests; repo, catalog, ledger, and tx are required.
func NewService(
	repo *Repository,
	catalog catalogReader,
	ledger stockLedger,
	tx txRunner,
	emitter outbox.Emitter,
	engineMetrics *metrics.EngineMetrics,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order repository is required")
	}
	if catalog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "catalog reader is required")
	}
	if ledger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "stock ledger is required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner is required")
	}
	return &service{
		repo:    repo,
		catalog: catalog,
		ledger:  ledger,
		tx:      tx,
		emitter: emitter,
		metrics: engineMetrics,
		logg:    logg,
		now:     time.Now,
	}, nil
}

// Estimate prices the request without persisting anything.
func (s *service) Estimate(ctx context.Context, input CreateOrderInput) (*pricing.Breakdown, error) {
	_, breakdown, err := s.price(ctx, input)
	return breakdown, err
}

// Create prices, persists, and reserves in one transaction. The pricing
// snapshot is frozen at creation; later catalog changes never rewrite it.
func (s *service) Create(ctx context.Context, input CreateOrderInput) (*models.Order, *pricing.Breakdown, error) {
	exists, err := s.repo.CustomerExists(ctx, input.CustomerID)
	if err != nil {
		return nil, nil, err
	}
	if !exists {
		return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}

	priced, breakdown, err := s.price(ctx, input)
	if err != nil {
		return nil, nil, err
	}

	order := s.buildOrder(input, priced, breakdown)

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, order); err != nil {
			return err
		}
		if err := s.ledger.Reserve(ctx, tx, order.ID, reservationLines(order.Items)); err != nil {
			return err
		}
		return s.emit(ctx, tx, enums.EventOrderCreated, order.ID, map[string]any{
			"orderId":     order.ID.String(),
			"customerId":  order.CustomerID.String(),
			"totalAmount": order.TotalAmount.String(),
			"status":      order.Status.String(),
		})
	})
	if err != nil {
		return nil, nil, err
	}

	s.metrics.IncOrderEvent("created")
	if s.logg != nil {
		s.logg.Info(s.logg.WithOrderID(ctx, order.ID.String()), "order created")
	}
	return order, breakdown, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.repo.Get(ctx, id)
}

func (s *service) List(ctx context.Context, customerID *uuid.UUID, params pagination.Params) ([]models.Order, string, error) {
	return s.repo.List(ctx, customerID, params)
}

// pricedItem pairs a validated input item with its resolved catalog rows.
type pricedItem struct {
	input     ItemInput
	pattern   models.GarmentPattern
	fabric    models.FabricItem
	bodyType  enums.BodyType
	selection []pricing.AccessorySelection
}

// price resolves catalog rows and runs the estimator. Items referencing
// unknown patterns or fabrics are dropped with a warning; zero priceable
// items fails validation.
func (s *service) price(ctx context.Context, input CreateOrderInput) ([]pricedItem, *pricing.Breakdown, error) {
	tier, err := enums.ParseStitchingTier(input.StitchingTier)
	if err != nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	var patternIDs, fabricIDs, accessoryIDs []uuid.UUID
	for _, item := range input.Items {
		patternIDs = append(patternIDs, item.GarmentPatternID)
		fabricIDs = append(fabricIDs, item.FabricItemID)
		for _, sel := range item.Accessories {
			accessoryIDs = append(accessoryIDs, sel.AccessoryID)
		}
	}

	patterns, err := s.catalog.PatternsByIDs(ctx, patternIDs)
	if err != nil {
		return nil, nil, err
	}
	fabrics, err := s.catalog.FabricsByIDs(ctx, fabricIDs)
	if err != nil {
		return nil, nil, err
	}
	accessories, err := s.catalog.AccessoriesByIDs(ctx, accessoryIDs)
	if err != nil {
		return nil, nil, err
	}

	priced := make([]pricedItem, 0, len(input.Items))
	pricingItems := make([]pricing.ItemInput, 0, len(input.Items))
	for i, item := range input.Items {
		bodyType, err := enums.ParseBodyType(item.BodyType)
		if err != nil {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: %s", i, err))
		}

		pattern, patternOK := patterns[item.GarmentPatternID]
		fabric, fabricOK := fabrics[item.FabricItemID]
		if !patternOK || !fabricOK {
			if s.logg != nil {
				s.logg.Warn(s.logg.WithField(ctx, "item_index", i), "dropping item with unknown pattern or fabric")
			}
			pricingItems = append(pricingItems, pricing.ItemInput{})
			continue
		}

		quantity := item.Quantity
		if quantity == 0 {
			quantity = 1
		}

		selection := make([]pricing.AccessorySelection, 0, len(item.Accessories))
		for _, sel := range item.Accessories {
			accessory, ok := accessories[sel.AccessoryID]
			if !ok {
				return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("item %d references unknown accessory", i))
			}
			selection = append(selection, pricing.AccessorySelection{
				Accessory: &accessory,
				Quantity:  sel.Quantity,
			})
		}

		patternCopy := pattern
		fabricCopy := fabric
		pricingItems = append(pricingItems, pricing.ItemInput{
			Pattern:     &patternCopy,
			Fabric:      &fabricCopy,
			BodyType:    bodyType,
			Quantity:    quantity,
			Accessories: selection,
		})
		priced = append(priced, pricedItem{
			input:     item,
			pattern:   pattern,
			fabric:    fabric,
			bodyType:  bodyType,
			selection: selection,
		})
	}

	cfg := pricing.Config{
		StitchingTier:        tier,
		FabricWastagePercent: input.FabricWastagePercent,
		HandStitched:         input.HandStitched,
		FullCanvas:           input.FullCanvas,
		RushOrder:            input.RushOrder,
		ComplexDesign:        input.ComplexDesign,
		AdditionalFittings:   input.AdditionalFittings,
		PremiumLining:        input.PremiumLining,
		DesignerFee:          input.DesignerFee,
		FabricOverride:       toOverride(input.FabricOverride),
		StitchingOverride:    toOverride(input.StitchingOverride),
		AccessoriesOverride:  toOverride(input.AccessoriesOverride),
		AdvancePaid:          input.AdvancePaid,
	}

	started := s.now()
	breakdown, err := pricing.Estimate(pricingItems, cfg)
	if err != nil {
		return nil, nil, err
	}
	s.metrics.ObserveEstimateDuration(s.now().Sub(started))

	return priced, breakdown, nil
}

func toOverride(input OverrideInput) pricing.Override {
	return pricing.Override{
		Overridden: input.IsOverridden,
		Amount:     input.Amount,
		Reason:     input.Reason,
	}
}

func (s *service) buildOrder(input CreateOrderInput, priced []pricedItem, breakdown *pricing.Breakdown) *models.Order {
	orderDate := s.now()
	if input.OrderDate != nil {
		orderDate = *input.OrderDate
	}

	order := &models.Order{
		ID:         uuid.New(),
		CustomerID: input.CustomerID,
		Status:     enums.OrderStatusNew,
		OrderDate:  orderDate,

		StitchingTier:        enums.StitchingTier(input.StitchingTier),
		FabricWastagePercent: input.FabricWastagePercent,
		HandStitched:         input.HandStitched,
		FullCanvas:           input.FullCanvas,
		RushOrder:            input.RushOrder,
		ComplexDesign:        input.ComplexDesign,
		AdditionalFittings:   input.AdditionalFittings,
		PremiumLining:        input.PremiumLining,
		DesignerFee:          breakdown.DesignerFee,

		FabricOverride:      toModelOverride(input.FabricOverride),
		StitchingOverride:   toModelOverride(input.StitchingOverride),
		AccessoriesOverride: toModelOverride(input.AccessoriesOverride),

		CalculatedFabricCost:      breakdown.CalculatedFabricCost,
		CalculatedAccessoriesCost: breakdown.CalculatedAccessoriesCost,
		CalculatedStitchingCost:   breakdown.CalculatedStitchingCost,
		FabricCost:                breakdown.FabricCost,
		FabricWastageAmount:       breakdown.FabricWastageAmount,
		AccessoriesCost:           breakdown.AccessoriesCost,
		StitchingCost:             breakdown.StitchingCost,
		WorkmanshipPremiums:       breakdown.WorkmanshipPremiums,
		SubTotal:                  breakdown.SubTotal,
		GSTRate:                   breakdown.GSTRate,
		CGST:                      breakdown.CGST,
		SGST:                      breakdown.SGST,
		GSTAmount:                 breakdown.GSTAmount,
		TotalAmount:               breakdown.Total,
		AdvancePaid:               breakdown.Total.Sub(breakdown.BalanceAmount),
		BalanceAmount:             breakdown.BalanceAmount,
	}

	// Skipped breakdown slots belong to dropped items; walk the priced list
	// against the non-skipped breakdown rows.
	itemPrices := make([]pricing.ItemPrice, 0, len(priced))
	for _, price := range breakdown.Items {
		if !price.Skipped {
			itemPrices = append(itemPrices, price)
		}
	}

	for i, item := range priced {
		row := models.OrderItem{
			ID:               uuid.New(),
			OrderID:          order.ID,
			GarmentPatternID: item.pattern.ID,
			FabricItemID:     item.fabric.ID,
			BodyType:         item.bodyType,
			Quantity:         maxInt(item.input.Quantity, 1),
			EstimatedMeters:  itemPrices[i].EstimatedMeters,
			PricePerUnit:     itemPrices[i].PricePerUnit,
			TotalPrice:       itemPrices[i].TotalPrice,
		}
		for _, sel := range item.selection {
			row.Accessories = append(row.Accessories, models.OrderItemAccessory{
				ID:          uuid.New(),
				OrderItemID: row.ID,
				AccessoryID: sel.Accessory.ID,
				Quantity:    sel.Quantity,
			})
		}
		order.Items = append(order.Items, row)
	}

	return order
}

func toModelOverride(input OverrideInput) models.CostOverride {
	override := models.CostOverride{
		Overridden: input.IsOverridden,
		Amount:     input.Amount,
	}
	if input.Reason != "" {
		reason := input.Reason
		override.Reason = &reason
	}
	return override
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// reservationLines maps order items to ledger lines: estimated meters per
// fabric, unit quantities per accessory.
func reservationLines(items []models.OrderItem) []stock.Line {
	var lines []stock.Line
	for _, item := range items {
		lines = append(lines, stock.Line{
			Kind:   enums.StockItemKindFabric,
			ItemID: item.FabricItemID,
			Qty:    item.EstimatedMeters,
		})
		for _, accessory := range item.Accessories {
			lines = append(lines, stock.Line{
				Kind:   enums.StockItemKindAccessory,
				ItemID: accessory.AccessoryID,
				Qty:    decimal.NewFromInt(int64(accessory.Quantity)),
			})
		}
	}
	return lines
}

var forwardRank = map[enums.OrderStatus]int{
	enums.OrderStatusNew:              0,
	enums.OrderStatusMaterialSelected: 1,
	enums.OrderStatusCutting:          2,
	enums.OrderStatusStitching:        3,
	enums.OrderStatusFinishing:        4,
	enums.OrderStatusReady:            5,
	enums.OrderStatusDelivered:        6,
}

// Transition enforces the production lifecycle: one step forward at a time,
// cancellation from any pre-delivered state, delivery only from ready with
// actual meters reported per item.
func (s *service) Transition(ctx context.Context, id uuid.UUID, input TransitionInput) (*models.Order, error) {
	next, err := enums.ParseOrderStatus(input.Status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	var updated *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}
		if order.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("order is %s and cannot change state", order.Status)).
				WithDetails(map[string]string{"status": order.Status.String()})
		}

		switch next {
		case enums.OrderStatusCancelled:
			err = s.cancel(ctx, tx, repo, order)
		case enums.OrderStatusDelivered:
			err = s.deliver(ctx, tx, repo, order, input.Items)
		default:
			err = s.advanceStatus(ctx, tx, repo, order, next)
		}
		if err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) cancel(ctx context.Context, tx *gorm.DB, repo *Repository, order *models.Order) error {
	if err := s.ledger.Release(ctx, tx, order.ID, reservationLines(order.Items)); err != nil {
		return err
	}
	now := s.now()
	order.Status = enums.OrderStatusCancelled
	order.CancelledAt = &now
	if err := repo.Save(ctx, order); err != nil {
		return err
	}
	s.metrics.IncOrderEvent("cancelled")
	return s.emit(ctx, tx, enums.EventOrderCancelled, order.ID, map[string]any{
		"orderId": order.ID.String(),
	})
}

func (s *service) deliver(ctx context.Context, tx *gorm.DB, repo *Repository, order *models.Order, delivered []DeliveredItemInput) error {
	if order.Status != enums.OrderStatusReady {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "only ready orders can be delivered").
			WithDetails(map[string]string{"status": order.Status.String()})
	}

	actualByItem := make(map[uuid.UUID]decimal.Decimal, len(delivered))
	for _, item := range delivered {
		if item.ActualMetersUsed.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "actual meters cannot be negative")
		}
		actualByItem[item.OrderItemID] = item.ActualMetersUsed
	}

	var lines []stock.Line
	for i := range order.Items {
		item := &order.Items[i]
		actual, ok := actualByItem[item.ID]
		if !ok {
			return pkgerrors.New(pkgerrors.CodeValidation,
				"actual meters required for every item on delivery").
				WithDetails(map[string]string{"orderItemId": item.ID.String()})
		}
		if err := repo.SetItemActualMeters(ctx, item.ID, actual); err != nil {
			return err
		}
		item.ActualMetersUsed = &actual
		lines = append(lines, stock.Line{
			Kind:      enums.StockItemKindFabric,
			ItemID:    item.FabricItemID,
			Qty:       item.EstimatedMeters,
			ActualQty: actual,
		})
		for _, accessory := range item.Accessories {
			qty := decimal.NewFromInt(int64(accessory.Quantity))
			lines = append(lines, stock.Line{
				Kind:      enums.StockItemKindAccessory,
				ItemID:    accessory.AccessoryID,
				Qty:       qty,
				ActualQty: qty,
			})
		}
	}

	if err := s.ledger.Consume(ctx, tx, order.ID, lines); err != nil {
		return err
	}

	now := s.now()
	order.Status = enums.OrderStatusDelivered
	order.DeliveredAt = &now
	if err := repo.Save(ctx, order); err != nil {
		return err
	}
	s.metrics.IncOrderEvent("delivered")
	return s.emit(ctx, tx, enums.EventOrderDelivered, order.ID, map[string]any{
		"orderId":     order.ID.String(),
		"customerId":  order.CustomerID.String(),
		"totalAmount": order.TotalAmount.String(),
	})
}

func (s *service) advanceStatus(ctx context.Context, tx *gorm.DB, repo *Repository, order *models.Order, next enums.OrderStatus) error {
	currentRank, ok := forwardRank[order.Status]
	nextRank, nextOK := forwardRank[next]
	if !ok || !nextOK || nextRank != currentRank+1 {
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move order from %s to %s", order.Status, next)).
			WithDetails(map[string]string{"from": order.Status.String(), "to": next.String()})
	}

	previous := order.Status
	order.Status = next
	if err := repo.Save(ctx, order); err != nil {
		return err
	}
	return s.emit(ctx, tx, enums.EventOrderStateChanged, order.ID, map[string]any{
		"orderId": order.ID.String(),
		"from":    previous.String(),
		"to":      next.String(),
	})
}

// RecordAdvance adds a payment against the balance. Overpayment is allowed
// and shows up as a negative balance (refund owed).
func (s *service) RecordAdvance(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*models.Order, error) {
	if !amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "advance amount must be positive")
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}
		if order.Status == enums.OrderStatusCancelled {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cannot record payment on a cancelled order")
		}
		order.AdvancePaid = order.AdvancePaid.Add(amount)
		order.BalanceAmount = order.TotalAmount.Sub(order.AdvancePaid)
		if err := repo.Save(ctx, order); err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) emit(ctx context.Context, tx *gorm.DB, eventType enums.OutboxEventType, orderID uuid.UUID, data map[string]any) error {
	if s.emitter == nil {
		return nil
	}
	return s.emitter.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateOrder,
		AggregateID:   orderID,
		Data:          data,
	})
}
