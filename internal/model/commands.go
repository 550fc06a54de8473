package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// ProductUpsertCmd carries one incoming product write. Nil pointer fields
// mean "absent" and never clear a stored value, except for the authoritative
// fields (title, updated_at) that are written verbatim.
type ProductUpsertCmd struct {
	ProductID   int64
	Title       string
	Vendor      *string
	ProductType *string
	Tags        []string
	OptionsJSON json.RawMessage
	CreatedAt   *time.Time
	UpdatedAt   *time.Time
}

// VariantUpsertCmd carries one incoming variant write. ProductID is the
// variant's own declared parent and is trusted over any nesting context.
type VariantUpsertCmd struct {
	VariantID    int64
	ProductID    int64
	SKU          *string
	ImageURL     *string
	Price        *decimal.Decimal
	ComparePrice *decimal.Decimal
	Available    *bool
	Position     *int
	Option1      *string
	Option2      *string
	Option3      *string
	CreatedAt    *time.Time
	UpdatedAt    *time.Time
}
