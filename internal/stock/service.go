package stock

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rajivmenon/tailorbooks-backend/pkg/db/models"
	"github.com/rajivmenon/tailorbooks-backend/pkg/enums"
	pkgerrors "github.com/rajivmenon/tailorbooks-backend/pkg/errors"
)

type inventoryLister interface {
	ListFabrics(ctx context.Context) ([]models.FabricItem, error)
	ListAccessories(ctx context.Context) ([]models.Accessory, error)
	GetFabric(ctx context.Context, id uuid.UUID) (*models.FabricItem, error)
}

// ItemHealth is one row of the inventory health report.
type ItemHealth struct {
	Kind         enums.StockItemKind `json:"kind"`
	ItemID       uuid.UUID           `json:"itemId"`
	Name         string              `json:"name"`
	CurrentStock decimal.Decimal     `json:"currentStock"`
	Reserved     decimal.Decimal     `json:"reserved"`
	Available    decimal.Decimal     `json:"available"`
	Minimum      decimal.Decimal     `json:"minimum"`
	Health       enums.StockHealth   `json:"health"`
}

// Service exposes stock read surfaces over the catalog rows.
type Service interface {
	InventoryHealth(ctx context.Context) ([]ItemHealth, error)
	FabricClassification(ctx context.Context, fabricID uuid.UUID) (*ItemHealth, error)
}

type service struct {
	lister inventoryLister
}

func NewService(lister inventoryLister) (Service, error) {
	if lister == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "inventory lister is required")
	}
	return &service{lister: lister}, nil
}

// InventoryHealth classifies every fabric and accessory row.
func (s *service) InventoryHealth(ctx context.Context) ([]ItemHealth, error) {
	fabrics, err := s.lister.ListFabrics(ctx)
	if err != nil {
		return nil, err
	}
	accessories, err := s.lister.ListAccessories(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]ItemHealth, 0, len(fabrics)+len(accessories))
	for _, f := range fabrics {
		out = append(out, fabricHealth(f))
	}
	for _, a := range accessories {
		out = append(out, ItemHealth{
			Kind:         enums.StockItemKindAccessory,
			ItemID:       a.ID,
			Name:         a.Name,
			CurrentStock: a.CurrentStock,
			Reserved:     a.Reserved,
			Available:    a.Available(),
			Minimum:      a.MinimumUnits,
			Health:       Classify(a.CurrentStock, a.Reserved, a.MinimumUnits),
		})
	}
	return out, nil
}

// FabricClassification classifies a single fabric row.
func (s *service) FabricClassification(ctx context.Context, fabricID uuid.UUID) (*ItemHealth, error) {
	fabric, err := s.lister.GetFabric(ctx, fabricID)
	if err != nil {
		return nil, err
	}
	health := fabricHealth(*fabric)
	return &health, nil
}

func fabricHealth(f models.FabricItem) ItemHealth {
	return ItemHealth{
		Kind:         enums.StockItemKindFabric,
		ItemID:       f.ID,
		Name:         f.Name,
		CurrentStock: f.CurrentStock,
		Reserved:     f.Reserved,
		Available:    f.Available(),
		Minimum:      f.MinimumMeters,
		Health:       Classify(f.CurrentStock, f.Reserved, f.MinimumMeters),
	}
}
