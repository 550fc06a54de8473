package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// Product mirrors one upstream catalog product. The primary key is the
// external product id owned by the upstream feed (or assigned manually in the
// create form), so GORM's auto-increment and auto-timestamp tracking are
// disabled: created_at/updated_at come from the feed and may be null.
type Product struct {
	ProductID   int64          `gorm:"column:product_id;primaryKey;autoIncrement:false" json:"product_id"`
	Title       string         `gorm:"type:text;not null" json:"title"`
	Vendor      *string        `gorm:"type:text" json:"vendor,omitempty"`
	ProductType *string        `gorm:"type:text" json:"product_type,omitempty"`
	Tags        pq.StringArray `gorm:"type:text[]" json:"tags,omitempty"`
	OptionsJSON datatypes.JSON `gorm:"column:options_json;type:jsonb" json:"options_json,omitempty"`
	CreatedAt   *time.Time     `gorm:"column:created_at;autoCreateTime:false" json:"created_at,omitempty"`
	UpdatedAt   *time.Time     `gorm:"column:updated_at;autoUpdateTime:false" json:"updated_at,omitempty"`
}

func (Product) TableName() string {
	return "products"
}
