package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rajivmenon/tailorbooks-backend/internal/catalog"
	"github.com/rajivmenon/tailorbooks-backend/internal/stock"
	"github.com/rajivmenon/tailorbooks-backend/pkg/db/models"
	"github.com/rajivmenon/tailorbooks-backend/pkg/enums"
	pkgerrors "github.com/rajivmenon/tailorbooks-backend/pkg/errors"
	"github.com/rajivmenon/tailorbooks-backend/pkg/outbox"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

type dbTxRunner struct {
	db *gorm.DB
}

func (r dbTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type fakeEmitter struct {
	events []outbox.DomainEvent
}

func (f *fakeEmitter) Emit(_ context.Context, _ *gorm.DB, event outbox.DomainEvent) error {
	f.events = append(f.events, event)
	return nil
}

func (f *fakeEmitter) typesSeen() []enums.OutboxEventType {
	out := make([]enums.OutboxEventType, 0, len(f.events))
	for _, event := range f.events {
		out = append(out, event.EventType)
	}
	return out
}

type fixture struct {
	db          *gorm.DB
	svc         Service
	emitter     *fakeEmitter
	customerID  uuid.UUID
	patternID   uuid.UUID
	fabricID    uuid.UUID
	accessoryID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := "file:orders_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Customer{},
		&models.GarmentPattern{},
		&models.GarmentPatternAccessory{},
		&models.FabricItem{},
		&models.Accessory{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderItemAccessory{},
		&models.StockMovement{},
	))

	customer := models.Customer{ID: uuid.New(), Name: "Asha Rao", Phone: "9876543210"}
	require.NoError(t, db.Create(&customer).Error)

	pattern := models.GarmentPattern{
		ID:                uuid.New(),
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
	require.NoError(t, db.Create(&pattern).Error)

	fabric := models.FabricItem{
		ID:            uuid.New(),
		Name:          "Cotton Twill",
		Color:         "navy",
		PricePerMeter: dec("450"),
		CurrentStock:  dec("50"),
		MinimumMeters: dec("5"),
	}
	require.NoError(t, db.Create(&fabric).Error)

	accessory := models.Accessory{
		ID:           uuid.New(),
		Name:         "Horn Buttons",
		PricePerUnit: dec("50"),
		CurrentStock: dec("200"),
		MinimumUnits: dec("20"),
	}
	require.NoError(t, db.Create(&accessory).Error)

	emitter := &fakeEmitter{}
	ledger := stock.NewLedger(nil, nil, nil)
	svc, err := NewService(
		NewRepository(db),
		catalog.NewRepository(db),
		ledger,
		dbTxRunner{db: db},
		emitter,
		nil,
		nil,
	)
	require.NoError(t, err)

	return &fixture{
		db:          db,
		svc:         svc,
		emitter:     emitter,
		customerID:  customer.ID,
		patternID:   pattern.ID,
		fabricID:    fabric.ID,
		accessoryID: accessory.ID,
	}
}

func (f *fixture) createInput() CreateOrderInput {
	return CreateOrderInput{
		CustomerID:    f.customerID,
		StitchingTier: "basic",
		Items: []ItemInput{{
			GarmentPatternID: f.patternID,
			FabricItemID:     f.fabricID,
			BodyType:         "regular",
			Quantity:         1,
		}},
	}
}

func (f *fixture) fabric(t *testing.T) models.FabricItem {
	t.Helper()
	var row models.FabricItem
	require.NoError(t, f.db.First(&row, "id = ?", f.fabricID).Error)
	return row
}

func (f *fixture) accessory(t *testing.T) models.Accessory {
	t.Helper()
	var row models.Accessory
	require.NoError(t, f.db.First(&row, "id = ?", f.accessoryID).Error)
	return row
}

func (f *fixture) moveToReady(t *testing.T, orderID uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	for _, status := range []string{"material_selected", "cutting", "stitching", "finishing", "ready"} {
		_, err := f.svc.Transition(ctx, orderID, TransitionInput{Status: status})
		require.NoError(t, err, "transition to %s", status)
	}
}

func TestService_CreatePricesAndReserves(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	input := f.createInput()
	input.Items[0].Accessories = []ItemAccessoryInput{{AccessoryID: f.accessoryID, Quantity: 6}}

	order, breakdown, err := f.svc.Create(ctx, input)
	require.NoError(t, err)

	// 1012.50 fabric + 300 accessories + 2000 stitching.
	assert.True(t, breakdown.SubTotal.Equal(dec("3312.50")), "sub total %s", breakdown.SubTotal)
	assert.True(t, order.TotalAmount.Equal(dec("3710.00")), "total %s", order.TotalAmount)
	assert.Equal(t, enums.OrderStatusNew, order.Status)
	require.Len(t, order.Items, 1)
	assert.True(t, order.Items[0].EstimatedMeters.Equal(dec("2.25")))

	fabric := f.fabric(t)
	assert.True(t, fabric.Reserved.Equal(dec("2.25")), "fabric reserved %s", fabric.Reserved)
	assert.True(t, fabric.CurrentStock.Equal(dec("50")), "reserve must not cut stock")

	accessory := f.accessory(t)
	assert.True(t, accessory.Reserved.Equal(dec("6")), "accessory reserved %s", accessory.Reserved)

	require.Len(t, f.emitter.events, 1)
	assert.Equal(t, enums.EventOrderCreated, f.emitter.events[0].EventType)

	stored, err := f.svc.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, stored.TotalAmount.Equal(order.TotalAmount))
	require.Len(t, stored.Items, 1)
	assert.Nil(t, stored.Items[0].ActualMetersUsed)
}

func TestService_CreateUnknownCustomer(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	input := f.createInput()
	input.CustomerID = uuid.New()

	_, _, err := f.svc.Create(context.Background(), input)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestService_CreateDropsUnknownFabricItems(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	input := f.createInput()
	input.Items = append(input.Items, ItemInput{
		GarmentPatternID: f.patternID,
		FabricItemID:     uuid.New(),
		BodyType:         "regular",
		Quantity:         1,
	})

	order, breakdown, err := f.svc.Create(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, 1, breakdown.SkippedItems)
	assert.Len(t, order.Items, 1, "dropped item must not be persisted")
}

func TestService_CreateAllItemsUnknown(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	input := f.createInput()
	input.Items[0].FabricItemID = uuid.New()

	_, _, err := f.svc.Create(context.Background(), input)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestService_EstimateDoesNotPersist(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	breakdown, err := f.svc.Estimate(ctx, f.createInput())
	require.NoError(t, err)
	assert.True(t, breakdown.Total.Equal(dec("3374.00")), "total %s", breakdown.Total)

	var count int64
	require.NoError(t, f.db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)

	fabric := f.fabric(t)
	assert.True(t, fabric.Reserved.IsZero(), "estimate must not reserve stock")
}

func TestService_TransitionForwardOnly(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	order, _, err := f.svc.Create(ctx, f.createInput())
	require.NoError(t, err)

	updated, err := f.svc.Transition(ctx, order.ID, TransitionInput{Status: "material_selected"})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusMaterialSelected, updated.Status)

	// Skipping a stage is rejected.
	_, err = f.svc.Transition(ctx, order.ID, TransitionInput{Status: "stitching"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())

	// Moving backward is rejected.
	_, err = f.svc.Transition(ctx, order.ID, TransitionInput{Status: "new"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestService_CancelReleasesReservations(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	input := f.createInput()
	input.Items[0].Accessories = []ItemAccessoryInput{{AccessoryID: f.accessoryID, Quantity: 4}}
	order, _, err := f.svc.Create(ctx, input)
	require.NoError(t, err)

	updated, err := f.svc.Transition(ctx, order.ID, TransitionInput{Status: "cancelled"})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCancelled, updated.Status)
	require.NotNil(t, updated.CancelledAt)

	fabric := f.fabric(t)
	assert.True(t, fabric.Reserved.IsZero(), "fabric reserved %s", fabric.Reserved)
	accessory := f.accessory(t)
	assert.True(t, accessory.Reserved.IsZero(), "accessory reserved %s", accessory.Reserved)

	assert.Contains(t, f.emitter.typesSeen(), enums.EventOrderCancelled)

	// Terminal orders refuse further moves.
	_, err = f.svc.Transition(ctx, order.ID, TransitionInput{Status: "material_selected"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestService_DeliverConsumesActualMeters(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	order, _, err := f.svc.Create(ctx, f.createInput())
	require.NoError(t, err)
	f.moveToReady(t, order.ID)

	// Estimated 2.25m, actually cut 2.60m.
	updated, err := f.svc.Transition(ctx, order.ID, TransitionInput{
		Status: "delivered",
		Items: []DeliveredItemInput{{
			OrderItemID:      order.Items[0].ID,
			ActualMetersUsed: dec("2.60"),
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusDelivered, updated.Status)
	require.NotNil(t, updated.DeliveredAt)

	fabric := f.fabric(t)
	assert.True(t, fabric.Reserved.IsZero(), "reserved %s", fabric.Reserved)
	assert.True(t, fabric.CurrentStock.Equal(dec("47.4")), "stock %s", fabric.CurrentStock)
	assert.True(t, fabric.Available().Equal(dec("47.4")), "available must stay current minus reserved")

	stored, err := f.svc.Get(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Items[0].ActualMetersUsed)
	assert.True(t, stored.Items[0].ActualMetersUsed.Equal(dec("2.60")))

	assert.Contains(t, f.emitter.typesSeen(), enums.EventOrderDelivered)
}

func TestService_DeliverRequiresReadyAndActuals(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	order, _, err := f.svc.Create(ctx, f.createInput())
	require.NoError(t, err)

	// Not ready yet.
	_, err = f.svc.Transition(ctx, order.ID, TransitionInput{
		Status: "delivered",
		Items: []DeliveredItemInput{{
			OrderItemID:      order.Items[0].ID,
			ActualMetersUsed: dec("2.25"),
		}},
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())

	f.moveToReady(t, order.ID)

	// Missing actual meters.
	_, err = f.svc.Transition(ctx, order.ID, TransitionInput{Status: "delivered"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestService_RecordAdvance(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	order, _, err := f.svc.Create(ctx, f.createInput())
	require.NoError(t, err)

	updated, err := f.svc.RecordAdvance(ctx, order.ID, dec("1000"))
	require.NoError(t, err)
	assert.True(t, updated.AdvancePaid.Equal(dec("1000")))
	assert.True(t, updated.BalanceAmount.Equal(dec("2374.00")), "balance %s", updated.BalanceAmount)

	// Overpayment flips the balance negative instead of failing.
	updated, err = f.svc.RecordAdvance(ctx, order.ID, dec("3000"))
	require.NoError(t, err)
	assert.True(t, updated.BalanceAmount.Equal(dec("-626.00")), "balance %s", updated.BalanceAmount)

	_, err = f.svc.RecordAdvance(ctx, order.ID, dec("0"))
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestService_PricingSnapshotFrozen(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	order, _, err := f.svc.Create(ctx, f.createInput())
	require.NoError(t, err)

	// Catalog price doubles after the order exists.
	require.NoError(t, f.db.Model(&models.FabricItem{}).
		Where("id = ?", f.fabricID).
		Update("price_per_meter", dec("900")).Error)

	stored, err := f.svc.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, stored.TotalAmount.Equal(dec("3374.00")), "snapshot must not follow catalog changes")
}
