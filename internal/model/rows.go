package model

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// ProductListRow is the read-side projection for the paged catalog listing
// and the CSV export: one product annotated with its cheapest variant price
// and a representative variant image.
type ProductListRow struct {
	ProductID   int64            `json:"product_id"`
	Title       string           `json:"title"`
	Vendor      *string          `json:"vendor,omitempty"`
	ProductType *string          `json:"product_type,omitempty"`
	Tags        pq.StringArray   `gorm:"type:text[]" json:"tags,omitempty"`
	MinPrice    *decimal.Decimal `json:"min_price,omitempty"`
	ImageURL    *string          `json:"image_url,omitempty"`
	UpdatedAt   *time.Time       `json:"updated_at,omitempty"`
}

// VariantRow is the per-product variant listing projection. Available is
// nullable on purpose: null and false render identically downstream.
type VariantRow struct {
	VariantID    int64            `json:"variant_id"`
	SKU          *string          `json:"sku,omitempty"`
	Option1      *string          `json:"option1,omitempty"`
	Option2      *string          `json:"option2,omitempty"`
	Option3      *string          `json:"option3,omitempty"`
	Price        *decimal.Decimal `json:"price,omitempty"`
	ComparePrice *decimal.Decimal `json:"compare_price,omitempty"`
	Available    *bool            `json:"available,omitempty"`
	ImageURL     *string          `json:"image_url,omitempty"`
}
