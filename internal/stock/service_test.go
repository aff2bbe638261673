package stock

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/rajivmenon/tailorbooks-backend/pkg/db/models"
	"github.com/rajivmenon/tailorbooks-backend/pkg/enums"
	pkgerrors "github.com/rajivmenon/tailorbooks-backend/pkg/errors"
)

type fakeLister struct {
	fabrics     []models.FabricItem
	accessories []models.Accessory
}

func (f *fakeLister) ListFabrics(context.Context) ([]models.FabricItem, error) {
	return f.fabrics, nil
}

func (f *fakeLister) ListAccessories(context.Context) ([]models.Accessory, error) {
	return f.accessories, nil
}

func (f *fakeLister) GetFabric(_ context.Context, id uuid.UUID) (*models.FabricItem, error) {
	for _, fabric := range f.fabrics {
		if fabric.ID == id {
			return &fabric, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "fabric not found")
}

func TestService_InventoryHealth(t *testing.T) {
	t.Parallel()

	lister := &fakeLister{
		fabrics: []models.FabricItem{
			{
				ID:            uuid.New(),
				Name:          "Wool",
				CurrentStock:  mustDec(t, "100"),
				Reserved:      mustDec(t, "95"),
				MinimumMeters: mustDec(t, "10"),
			},
		},
		accessories: []models.Accessory{
			{
				ID:           uuid.New(),
				Name:         "Buttons",
				CurrentStock: mustDec(t, "500"),
				Reserved:     mustDec(t, "20"),
				MinimumUnits: mustDec(t, "50"),
			},
		},
	}
	svc, err := NewService(lister)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	rows, err := svc.InventoryHealth(context.Background())
	if err != nil {
		t.Fatalf("inventory health: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Health != enums.StockHealthCritical {
		t.Fatalf("expected wool critical, got %s", rows[0].Health)
	}
	if !rows[0].Available.Equal(mustDec(t, "5")) {
		t.Fatalf("expected available 5, got %s", rows[0].Available)
	}
	if rows[1].Health != enums.StockHealthHealthy {
		t.Fatalf("expected buttons healthy, got %s", rows[1].Health)
	}
}

func TestService_FabricClassification(t *testing.T) {
	t.Parallel()

	fabricID := uuid.New()
	lister := &fakeLister{
		fabrics: []models.FabricItem{
			{
				ID:            fabricID,
				Name:          "Silk",
				CurrentStock:  mustDec(t, "12"),
				Reserved:      mustDec(t, "0"),
				MinimumMeters: mustDec(t, "10"),
			},
		},
	}
	svc, err := NewService(lister)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	health, err := svc.FabricClassification(context.Background(), fabricID)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if health.Health != enums.StockHealthLow {
		t.Fatalf("expected low, got %s", health.Health)
	}

	_, err = svc.FabricClassification(context.Background(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestNewServiceRequiresLister(t *testing.T) {
	t.Parallel()

	if _, err := NewService(nil); err == nil {
		t.Fatal("expected error for nil lister")
	}
}
