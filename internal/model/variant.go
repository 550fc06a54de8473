package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Variant belongs to a Product via the external product id. There is no
// database foreign key between the tables: the sync cycle enforces the
// pairing itself (variants are always swept before their products).
type Variant struct {
	VariantID    int64            `gorm:"column:variant_id;primaryKey;autoIncrement:false" json:"variant_id"`
	ProductID    int64            `gorm:"column:product_id;index" json:"product_id"`
	SKU          *string          `gorm:"column:sku;type:text" json:"sku,omitempty"`
	ImageURL     *string          `gorm:"column:image_url;type:text" json:"image_url,omitempty"`
	Price        *decimal.Decimal `gorm:"type:numeric" json:"price,omitempty"`
	ComparePrice *decimal.Decimal `gorm:"column:compare_price;type:numeric" json:"compare_price,omitempty"`
	Available    *bool            `json:"available,omitempty"`
	Position     *int             `json:"position,omitempty"`
	Option1      *string          `gorm:"type:text" json:"option1,omitempty"`
	Option2      *string          `gorm:"type:text" json:"option2,omitempty"`
	Option3      *string          `gorm:"type:text" json:"option3,omitempty"`
	CreatedAt    *time.Time       `gorm:"column:created_at;autoCreateTime:false" json:"created_at,omitempty"`
	UpdatedAt    *time.Time       `gorm:"column:updated_at;autoUpdateTime:false" json:"updated_at,omitempty"`
}

func (Variant) TableName() string {
	return "variants"
}
