package stock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rajivmenon/tailorbooks-backend/pkg/db/models"
	"github.com/rajivmenon/tailorbooks-backend/pkg/enums"
	pkgerrors "github.com/rajivmenon/tailorbooks-backend/pkg/errors"
	"github.com/rajivmenon/tailorbooks-backend/pkg/logger"
	"github.com/rajivmenon/tailorbooks-backend/pkg/metrics"
	"github.com/rajivmenon/tailorbooks-backend/pkg/outbox"
)

// Line identifies one item mutation within a ledger operation. Qty is the
// estimated quantity; ActualQty is only read by Consume.
type Line struct {
	Kind      enums.StockItemKind
	ItemID    uuid.UUID
	Qty       decimal.Decimal
	ActualQty decimal.Decimal
}

// Ledger applies stock mutations inside a caller-owned transaction. Each
// mutation is a single atomic UPDATE so concurrent orders serialize on the
// row instead of losing increments.
type Ledger struct {
	logg    *logger.Logger
	metrics *metrics.EngineMetrics
	emitter outbox.Emitter
}

func NewLedger(logg *logger.Logger, engineMetrics *metrics.EngineMetrics, emitter outbox.Emitter) *Ledger {
	return &Ledger{logg: logg, metrics: engineMetrics, emitter: emitter}
}

// Reserve commits estimated quantities against open stock. Reservation does
// not reject on insufficient availability; the shop fulfills from incoming
// bolts and the classification surfaces the shortfall.
func (l *Ledger) Reserve(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, lines []Line) error {
	for _, line := range lines {
		if err := validateLine(line, false); err != nil {
			return err
		}
		if err := l.apply(ctx, tx, orderID, line.Kind, line.ItemID, mutation{
			movement:      enums.StockMovementTypeReserve,
			reservedDelta: line.Qty,
		}); err != nil {
			return err
		}
	}
	return nil
}

// Release returns previously reserved quantities, e.g. on cancellation.
func (l *Ledger) Release(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, lines []Line) error {
	for _, line := range lines {
		if err := validateLine(line, false); err != nil {
			return err
		}
		if err := l.apply(ctx, tx, orderID, line.Kind, line.ItemID, mutation{
			movement:      enums.StockMovementTypeRelease,
			reservedDelta: line.Qty.Neg(),
		}); err != nil {
			return err
		}
	}
	return nil
}

// Consume settles a delivery: the reservation held the estimated quantity, so
// reserved drops by the estimate while current stock drops by what was
// actually cut. The asymmetry is what makes wastage visible.
func (l *Ledger) Consume(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, lines []Line) error {
	for _, line := range lines {
		if err := validateLine(line, true); err != nil {
			return err
		}
		if err := l.apply(ctx, tx, orderID, line.Kind, line.ItemID, mutation{
			movement:      enums.StockMovementTypeUse,
			reservedDelta: line.Qty.Neg(),
			stockDelta:    line.ActualQty.Neg(),
		}); err != nil {
			return err
		}
	}
	return nil
}

func validateLine(line Line, consume bool) error {
	if !line.Kind.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid stock item kind %q", line.Kind))
	}
	if line.Qty.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock quantity cannot be negative")
	}
	if consume && line.ActualQty.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "actual quantity cannot be negative")
	}
	return nil
}

type mutation struct {
	movement      enums.StockMovementType
	reservedDelta decimal.Decimal
	stockDelta    decimal.Decimal
}

type itemState struct {
	Name         string
	CurrentStock decimal.Decimal
	Reserved     decimal.Decimal
	Minimum      decimal.Decimal
}

func tableFor(kind enums.StockItemKind) string {
	if kind == enums.StockItemKindAccessory {
		return "accessories"
	}
	return "fabric_items"
}

func minimumColumnFor(kind enums.StockItemKind) string {
	if kind == enums.StockItemKindAccessory {
		return "minimum_units"
	}
	return "minimum_meters"
}

func (l *Ledger) apply(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, kind enums.StockItemKind, itemID uuid.UUID, m mutation) error {
	table := tableFor(kind)

	// The increment UPDATE takes the row lock, serializing concurrent orders.
	res := tx.Exec(
		fmt.Sprintf("UPDATE %s SET reserved = reserved + ?, current_stock = current_stock + ?, updated_at = ? WHERE id = ?", table),
		m.reservedDelta, m.stockDelta, time.Now(), itemID,
	)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "updating stock")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("%s item not found", kind))
	}

	state, err := l.loadState(tx, kind, itemID)
	if err != nil {
		return err
	}

	beforeStock := state.CurrentStock.Sub(m.stockDelta)
	beforeReserved := state.Reserved.Sub(m.reservedDelta)

	if err := l.clampNegatives(ctx, tx, orderID, kind, itemID, state); err != nil {
		return err
	}

	if err := l.appendMovement(tx, kind, itemID, &orderID, m.movement, movementDelta(m), movementBalance(m, *state), nil); err != nil {
		return err
	}

	return l.alertOnTransition(ctx, tx, kind, itemID, state.Name,
		Classify(beforeStock, beforeReserved, state.Minimum),
		Classify(state.CurrentStock, state.Reserved, state.Minimum),
		state.CurrentStock.Sub(state.Reserved),
	)
}

func (l *Ledger) loadState(tx *gorm.DB, kind enums.StockItemKind, itemID uuid.UUID) (*itemState, error) {
	var state itemState
	err := tx.Raw(
		fmt.Sprintf("SELECT name, current_stock, reserved, %s AS minimum FROM %s WHERE id = ?", minimumColumnFor(kind), tableFor(kind)),
		itemID,
	).Scan(&state).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading stock state")
	}
	return &state, nil
}

// clampNegatives floors reserved and current_stock at zero. A negative value
// means a booking anomaly (double release, over-consumption); the clamp is
// recorded as an ADJUST movement so the trail explains the correction.
func (l *Ledger) clampNegatives(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, kind enums.StockItemKind, itemID uuid.UUID, state *itemState) error {
	if state.Reserved.IsNegative() {
		correction := state.Reserved.Neg()
		if err := tx.Exec(
			fmt.Sprintf("UPDATE %s SET reserved = 0 WHERE id = ?", tableFor(kind)), itemID,
		).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clamping reserved")
		}
		l.noteClamp(ctx, kind, itemID, "reserved", state.Reserved)
		note := "reserved clamped to zero after going negative"
		if err := l.appendMovement(tx, kind, itemID, &orderID, enums.StockMovementTypeAdjust, correction, decimal.Zero, &note); err != nil {
			return err
		}
		state.Reserved = decimal.Zero
	}
	if state.CurrentStock.IsNegative() {
		correction := state.CurrentStock.Neg()
		if err := tx.Exec(
			fmt.Sprintf("UPDATE %s SET current_stock = 0 WHERE id = ?", tableFor(kind)), itemID,
		).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clamping stock")
		}
		l.noteClamp(ctx, kind, itemID, "current_stock", state.CurrentStock)
		note := "stock clamped to zero after going negative"
		if err := l.appendMovement(tx, kind, itemID, &orderID, enums.StockMovementTypeAdjust, correction, decimal.Zero, &note); err != nil {
			return err
		}
		state.CurrentStock = decimal.Zero
	}
	return nil
}

func (l *Ledger) noteClamp(ctx context.Context, kind enums.StockItemKind, itemID uuid.UUID, column string, value decimal.Decimal) {
	l.metrics.IncStockClamp(kind.String())
	if l.logg == nil {
		return
	}
	logCtx := l.logg.WithFields(ctx, map[string]any{
		"item_kind": kind.String(),
		"item_id":   itemID.String(),
		"column":    column,
		"value":     value.String(),
	})
	l.logg.Warn(logCtx, "stock balance clamped to zero")
}

func (l *Ledger) appendMovement(tx *gorm.DB, kind enums.StockItemKind, itemID uuid.UUID, orderID *uuid.UUID, movement enums.StockMovementType, delta, balance decimal.Decimal, note *string) error {
	row := models.StockMovement{
		ID:               uuid.New(),
		ItemKind:         kind,
		ItemID:           itemID,
		OrderID:          orderID,
		Type:             movement,
		QuantityDelta:    delta,
		ResultingBalance: balance,
		Note:             note,
	}
	if err := tx.Create(&row).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "recording stock movement")
	}
	return nil
}

func (l *Ledger) alertOnTransition(ctx context.Context, tx *gorm.DB, kind enums.StockItemKind, itemID uuid.UUID, name string, before, after enums.StockHealth, available decimal.Decimal) error {
	if l.emitter == nil || !crossedIntoShortage(before, after) {
		return nil
	}
	aggregate := enums.AggregateFabric
	if kind == enums.StockItemKindAccessory {
		aggregate = enums.AggregateAccessory
	}
	return l.emitter.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventStockAlert,
		AggregateType: aggregate,
		AggregateID:   itemID,
		Data: map[string]any{
			"itemKind":  kind.String(),
			"itemId":    itemID.String(),
			"name":      name,
			"health":    after.String(),
			"available": available.String(),
		},
	})
}

func crossedIntoShortage(before, after enums.StockHealth) bool {
	wasShort := before == enums.StockHealthCritical || before == enums.StockHealthOutOfStock
	isShort := after == enums.StockHealthCritical || after == enums.StockHealthOutOfStock
	return isShort && !wasShort
}

func movementDelta(m mutation) decimal.Decimal {
	if m.movement == enums.StockMovementTypeUse {
		return m.stockDelta
	}
	return m.reservedDelta
}

func movementBalance(m mutation, state itemState) decimal.Decimal {
	if m.movement == enums.StockMovementTypeUse {
		return maxZero(state.CurrentStock)
	}
	return maxZero(state.Reserved)
}

func maxZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
