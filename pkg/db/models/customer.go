package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Customer is a tailoring client. Order history hangs off this row and feeds
// the value scoring used on dashboards.
type Customer struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;default:(gen_random_uuid());primaryKey"`
	Name      string         `gorm:"column:name;not null"`
	Phone     string         `gorm:"column:phone;not null"`
	Email     *string        `gorm:"column:email"`
	StyleTags pq.StringArray `gorm:"column:style_tags;type:text[]"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`

	Orders []Order `gorm:"foreignKey:CustomerID"`
}
