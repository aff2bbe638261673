package customers

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rajivmenon/tailorbooks-backend/pkg/enums"
	pkgerrors "github.com/rajivmenon/tailorbooks-backend/pkg/errors"
	"github.com/rajivmenon/tailorbooks-backend/pkg/logger"
	"github.com/rajivmenon/tailorbooks-backend/pkg/redis"
)

// View selects the ranking depth: the analytics dashboard shows 20 rows, the
// sales follow-up list 10.
type View string

const (
	ViewAnalytics View = "analytics"
	ViewSales     View = "sales"
)

// ParseView validates the query parameter, defaulting empty to analytics.
func ParseView(value string) (View, error) {
	switch value {
	case "", string(ViewAnalytics):
		return ViewAnalytics, nil
	case string(ViewSales):
		return ViewSales, nil
	default:
		return "", pkgerrors.New(pkgerrors.CodeValidation, "view must be analytics or sales")
	}
}

// Limit returns how many ranked rows the view exposes.
func (v View) Limit() int {
	if v == ViewSales {
		return 10
	}
	return 20
}

type historyLoader interface {
	Histories(ctx context.Context) ([]CustomerHistory, error)
}

// Service computes customer rankings, with a short-lived cache in front since
// the scoring walks every order.
type Service interface {
	Rankings(ctx context.Context, view View) ([]Ranking, error)
}

type service struct {
	loader historyLoader
	cache  redis.Cache
	ttl    time.Duration
	logg   *logger.Logger
}

// NewService builds the ranking service. The cache is optional; a nil cache
// recomputes on every call.
func NewService(loader historyLoader, cache redis.Cache, ttl time.Duration, logg *logger.Logger) (Service, error) {
	if loader == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "history loader is required")
	}
	return &service{loader: loader, cache: cache, ttl: ttl, logg: logg}, nil
}

func (s *service) Rankings(ctx context.Context, view View) ([]Ranking, error) {
	cacheKey := redis.ReportKey("customers", string(view))

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey)
		if err == nil {
			var rankings []Ranking
			if jsonErr := json.Unmarshal([]byte(cached), &rankings); jsonErr == nil {
				return rankings, nil
			}
		} else if !errors.Is(err, redis.ErrCacheMiss) && s.logg != nil {
			s.logg.Warn(ctx, "customer ranking cache read failed")
		}
	}

	histories, err := s.loader.Histories(ctx)
	if err != nil {
		return nil, err
	}
	rankings := ScoreCustomers(histories)
	if limit := view.Limit(); len(rankings) > limit {
		rankings = rankings[:limit]
	}

	if s.cache != nil {
		if payload, jsonErr := json.Marshal(rankings); jsonErr == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.ttl); err != nil && s.logg != nil {
				s.logg.Warn(ctx, "customer ranking cache write failed")
			}
		}
	}

	return rankings, nil
}

// Repository loads customer order histories for scoring.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Histories(ctx context.Context) ([]CustomerHistory, error) {
	var customers []struct {
		ID   uuid.UUID
		Name string
	}
	if err := r.db.WithContext(ctx).
		Table("customers").
		Select("id, name").
		Scan(&customers).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading customers")
	}

	var orders []struct {
		CustomerID  uuid.UUID
		Status      string
		OrderDate   time.Time
		TotalAmount decimal.Decimal
		ItemCount   int
	}
	if err := r.db.WithContext(ctx).
		Raw(`
SELECT o.customer_id,
       o.status,
       o.order_date,
       o.total_amount,
       COUNT(oi.id) AS item_count
FROM orders o
LEFT JOIN order_items oi ON oi.order_id = o.id
GROUP BY o.id, o.customer_id, o.status, o.order_date, o.total_amount
`).Scan(&orders).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading order history")
	}

	byCustomer := make(map[uuid.UUID][]OrderSummary, len(customers))
	for _, order := range orders {
		summary, err := toSummary(order.Status, order.OrderDate, order.TotalAmount, order.ItemCount)
		if err != nil {
			return nil, err
		}
		byCustomer[order.CustomerID] = append(byCustomer[order.CustomerID], summary)
	}

	histories := make([]CustomerHistory, 0, len(customers))
	for _, customer := range customers {
		histories = append(histories, CustomerHistory{
			CustomerID: customer.ID,
			Name:       customer.Name,
			Orders:     byCustomer[customer.ID],
		})
	}
	return histories, nil
}

func toSummary(status string, orderDate time.Time, totalAmount decimal.Decimal, itemCount int) (OrderSummary, error) {
	parsedStatus, err := enums.ParseOrderStatus(status)
	if err != nil {
		return OrderSummary{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "parsing order status")
	}
	return OrderSummary{
		Status:      parsedStatus,
		OrderDate:   orderDate,
		TotalAmount: totalAmount,
		ItemCount:   itemCount,
	}, nil
}
