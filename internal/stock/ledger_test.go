package stock

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rajivmenon/tailorbooks-backend/pkg/db/models"
	"github.com/rajivmenon/tailorbooks-backend/pkg/enums"
	"github.com/rajivmenon/tailorbooks-backend/pkg/outbox"
)

type fakeEmitter struct {
	events []outbox.DomainEvent
}

func (f *fakeEmitter) Emit(_ context.Context, _ *gorm.DB, event outbox.DomainEvent) error {
	f.events = append(f.events, event)
	return nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:stock_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.FabricItem{},
		&models.Accessory{},
		&models.StockMovement{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedFabric(t *testing.T, db *gorm.DB, current, reserved, minimum string) uuid.UUID {
	t.Helper()
	row := models.FabricItem{
		ID:            uuid.New(),
		Name:          "Linen",
		Color:         "ecru",
		PricePerMeter: mustDec(t, "300"),
		CurrentStock:  mustDec(t, current),
		Reserved:      mustDec(t, reserved),
		MinimumMeters: mustDec(t, minimum),
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("seed fabric: %v", err)
	}
	return row.ID
}

func loadFabric(t *testing.T, db *gorm.DB, id uuid.UUID) models.FabricItem {
	t.Helper()
	var row models.FabricItem
	if err := db.First(&row, "id = ?", id).Error; err != nil {
		t.Fatalf("load fabric: %v", err)
	}
	return row
}

func TestLedger_ReserveThenConsumeAsymmetry(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ledger := NewLedger(nil, nil, nil)
	ctx := context.Background()
	orderID := uuid.New()
	fabricID := seedFabric(t, db, "50", "0", "5")

	err := db.Transaction(func(tx *gorm.DB) error {
		return ledger.Reserve(ctx, tx, orderID, []Line{
			{Kind: enums.StockItemKindFabric, ItemID: fabricID, Qty: mustDec(t, "2.25")},
		})
	})
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}

	after := loadFabric(t, db, fabricID)
	if !after.Reserved.Equal(mustDec(t, "2.25")) {
		t.Fatalf("expected reserved 2.25, got %s", after.Reserved)
	}
	if !after.CurrentStock.Equal(mustDec(t, "50")) {
		t.Fatalf("reserve must not touch current stock, got %s", after.CurrentStock)
	}

	// Delivery used more than estimated; reserved drops by the estimate,
	// stock drops by the actual.
	err = db.Transaction(func(tx *gorm.DB) error {
		return ledger.Consume(ctx, tx, orderID, []Line{
			{Kind: enums.StockItemKindFabric, ItemID: fabricID, Qty: mustDec(t, "2.25"), ActualQty: mustDec(t, "2.60")},
		})
	})
	if err != nil {
		t.Fatalf("consume: %v", err)
	}

	after = loadFabric(t, db, fabricID)
	if !after.Reserved.Equal(decimal.Zero) {
		t.Fatalf("expected reserved 0, got %s", after.Reserved)
	}
	if !after.CurrentStock.Equal(mustDec(t, "47.4")) {
		t.Fatalf("expected stock 47.4, got %s", after.CurrentStock)
	}
	if !after.Available().Equal(mustDec(t, "47.4")) {
		t.Fatalf("available must equal current minus reserved, got %s", after.Available())
	}

	var movements []models.StockMovement
	if err := db.Order("created_at ASC").Find(&movements).Error; err != nil {
		t.Fatalf("load movements: %v", err)
	}
	if len(movements) != 2 {
		t.Fatalf("expected 2 movements, got %d", len(movements))
	}
	if movements[0].Type != enums.StockMovementTypeReserve || movements[1].Type != enums.StockMovementTypeUse {
		t.Fatalf("unexpected movement types: %s, %s", movements[0].Type, movements[1].Type)
	}
	if !movements[1].QuantityDelta.Equal(mustDec(t, "-2.60")) {
		t.Fatalf("use movement must carry the actual delta, got %s", movements[1].QuantityDelta)
	}
}

func TestLedger_ReleaseRestoresReservation(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ledger := NewLedger(nil, nil, nil)
	ctx := context.Background()
	orderID := uuid.New()
	fabricID := seedFabric(t, db, "30", "4", "5")

	err := db.Transaction(func(tx *gorm.DB) error {
		return ledger.Release(ctx, tx, orderID, []Line{
			{Kind: enums.StockItemKindFabric, ItemID: fabricID, Qty: mustDec(t, "4")},
		})
	})
	if err != nil {
		t.Fatalf("release: %v", err)
	}

	after := loadFabric(t, db, fabricID)
	if !after.Reserved.Equal(decimal.Zero) {
		t.Fatalf("expected reserved 0, got %s", after.Reserved)
	}
	if !after.CurrentStock.Equal(mustDec(t, "30")) {
		t.Fatalf("release must not touch current stock, got %s", after.CurrentStock)
	}
}

func TestLedger_ClampsNegativeStock(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ledger := NewLedger(nil, nil, nil)
	ctx := context.Background()
	orderID := uuid.New()
	fabricID := seedFabric(t, db, "2", "3", "5")

	err := db.Transaction(func(tx *gorm.DB) error {
		return ledger.Consume(ctx, tx, orderID, []Line{
			{Kind: enums.StockItemKindFabric, ItemID: fabricID, Qty: mustDec(t, "3"), ActualQty: mustDec(t, "3.5")},
		})
	})
	if err != nil {
		t.Fatalf("consume: %v", err)
	}

	after := loadFabric(t, db, fabricID)
	if !after.CurrentStock.Equal(decimal.Zero) {
		t.Fatalf("expected stock clamped to 0, got %s", after.CurrentStock)
	}
	if !after.Reserved.Equal(decimal.Zero) {
		t.Fatalf("expected reserved 0, got %s", after.Reserved)
	}

	var adjustments []models.StockMovement
	if err := db.Where("type = ?", enums.StockMovementTypeAdjust).Find(&adjustments).Error; err != nil {
		t.Fatalf("load adjustments: %v", err)
	}
	if len(adjustments) != 1 {
		t.Fatalf("expected 1 adjust movement, got %d", len(adjustments))
	}
	if !adjustments[0].QuantityDelta.Equal(mustDec(t, "1.5")) {
		t.Fatalf("expected clamp correction 1.5, got %s", adjustments[0].QuantityDelta)
	}
}

func TestLedger_EmitsAlertOnShortageTransition(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	emitter := &fakeEmitter{}
	ledger := NewLedger(nil, nil, emitter)
	ctx := context.Background()
	orderID := uuid.New()

	// Available 12 against minimum 10 is low; reserving 3 drops it to 9,
	// which is critical.
	fabricID := seedFabric(t, db, "12", "0", "10")

	err := db.Transaction(func(tx *gorm.DB) error {
		return ledger.Reserve(ctx, tx, orderID, []Line{
			{Kind: enums.StockItemKindFabric, ItemID: fabricID, Qty: mustDec(t, "3")},
		})
	})
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}

	if len(emitter.events) != 1 {
		t.Fatalf("expected 1 alert event, got %d", len(emitter.events))
	}
	if emitter.events[0].EventType != enums.EventStockAlert {
		t.Fatalf("unexpected event type %s", emitter.events[0].EventType)
	}

	// A second reservation stays within shortage; no duplicate alert.
	err = db.Transaction(func(tx *gorm.DB) error {
		return ledger.Reserve(ctx, tx, orderID, []Line{
			{Kind: enums.StockItemKindFabric, ItemID: fabricID, Qty: mustDec(t, "1")},
		})
	})
	if err != nil {
		t.Fatalf("second reserve: %v", err)
	}
	if len(emitter.events) != 1 {
		t.Fatalf("expected no duplicate alert, got %d events", len(emitter.events))
	}
}

func TestLedger_UnknownItem(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ledger := NewLedger(nil, nil, nil)
	ctx := context.Background()

	err := db.Transaction(func(tx *gorm.DB) error {
		return ledger.Reserve(ctx, tx, uuid.New(), []Line{
			{Kind: enums.StockItemKindFabric, ItemID: uuid.New(), Qty: mustDec(t, "1")},
		})
	})
	if err == nil {
		t.Fatal("expected not found error")
	}
}
