// Package catalog exposes read access to the tailoring reference data:
// garment patterns, fabric bolts, and accessories.
package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rajivmenon/tailorbooks-backend/pkg/db/models"
	pkgerrors "github.com/rajivmenon/tailorbooks-backend/pkg/errors"
)

// Repository wires together catalog persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) ListPatterns(ctx context.Context) ([]models.GarmentPattern, error) {
	var rows []models.GarmentPattern
	err := r.db.WithContext(ctx).
		Preload("DefaultAccessories").
		Order("name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing garment patterns")
	}
	return rows, nil
}

func (r *Repository) GetPattern(ctx context.Context, id uuid.UUID) (*models.GarmentPattern, error) {
	var row models.GarmentPattern
	err := r.db.WithContext(ctx).
		Preload("DefaultAccessories").
		First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "garment pattern not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading garment pattern")
	}
	return &row, nil
}

// PatternsByIDs loads the requested patterns keyed by id. Missing ids are
// simply absent from the map; callers decide whether that is fatal.
func (r *Repository) PatternsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.GarmentPattern, error) {
	out := make(map[uuid.UUID]models.GarmentPattern, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.GarmentPattern
	err := r.db.WithContext(ctx).
		Preload("DefaultAccessories").
		Where("id IN ?", ids).
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading garment patterns")
	}
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

func (r *Repository) ListFabrics(ctx context.Context) ([]models.FabricItem, error) {
	var rows []models.FabricItem
	err := r.db.WithContext(ctx).Order("name ASC, color ASC").Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing fabrics")
	}
	return rows, nil
}

func (r *Repository) GetFabric(ctx context.Context, id uuid.UUID) (*models.FabricItem, error) {
	var row models.FabricItem
	err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "fabric not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading fabric")
	}
	return &row, nil
}

func (r *Repository) FabricsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.FabricItem, error) {
	out := make(map[uuid.UUID]models.FabricItem, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.FabricItem
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading fabrics")
	}
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

func (r *Repository) ListAccessories(ctx context.Context) ([]models.Accessory, error) {
	var rows []models.Accessory
	err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing accessories")
	}
	return rows, nil
}

func (r *Repository) GetAccessory(ctx context.Context, id uuid.UUID) (*models.Accessory, error) {
	var row models.Accessory
	err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "accessory not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading accessory")
	}
	return &row, nil
}

func (r *Repository) AccessoriesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Accessory, error) {
	out := make(map[uuid.UUID]models.Accessory, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Accessory
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading accessories")
	}
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}
