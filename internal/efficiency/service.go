package efficiency

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/rajivmenon/tailorbooks-backend/pkg/enums"
	pkgerrors "github.com/rajivmenon/tailorbooks-backend/pkg/errors"
)

// Window selects the reporting period.
type Window string

const (
	WindowMonth Window = "month"
	WindowAll   Window = "all"
)

// ParseWindow validates the query parameter, defaulting empty to month.
func ParseWindow(value string) (Window, error) {
	switch value {
	case "", string(WindowMonth):
		return WindowMonth, nil
	case string(WindowAll):
		return WindowAll, nil
	default:
		return "", pkgerrors.New(pkgerrors.CodeValidation, "window must be month or all")
	}
}

// Service builds efficiency reports from delivered order items.
type Service interface {
	Report(ctx context.Context, window Window) (*Report, error)
}

type usageLoader interface {
	DeliveredUsage(ctx context.Context, since *time.Time) ([]ItemUsage, error)
}

type service struct {
	loader usageLoader
	now    func() time.Time
}

func NewService(loader usageLoader) (Service, error) {
	if loader == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "usage loader is required")
	}
	return &service{loader: loader, now: time.Now}, nil
}

func (s *service) Report(ctx context.Context, window Window) (*Report, error) {
	var since *time.Time
	if window == WindowMonth {
		now := s.now()
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		since = &start
	}
	items, err := s.loader.DeliveredUsage(ctx, since)
	if err != nil {
		return nil, err
	}
	report := Analyze(items)
	return &report, nil
}

// Repository loads delivered usage rows with their fabric and pattern data.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

const deliveredUsageQuery = `
SELECT oi.order_id,
       gp.name AS pattern_name,
       fi.name AS fabric_name,
       fi.color AS fabric_color,
       oi.estimated_meters,
       oi.actual_meters_used AS actual_meters,
       fi.price_per_meter,
       o.delivered_at
FROM order_items oi
JOIN orders o ON o.id = oi.order_id
JOIN fabric_items fi ON fi.id = oi.fabric_item_id
JOIN garment_patterns gp ON gp.id = oi.garment_pattern_id
WHERE o.status = ?
  AND o.delivered_at IS NOT NULL
  AND oi.actual_meters_used IS NOT NULL
`

func (r *Repository) DeliveredUsage(ctx context.Context, since *time.Time) ([]ItemUsage, error) {
	query := deliveredUsageQuery
	args := []any{enums.OrderStatusDelivered}
	if since != nil {
		query += " AND o.delivered_at >= ?"
		args = append(args, *since)
	}
	query += " ORDER BY o.delivered_at DESC"

	var rows []ItemUsage
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading delivered usage")
	}
	return rows, nil
}
