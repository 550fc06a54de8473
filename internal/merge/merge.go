// Package merge holds the pure field-level merge rules applied when an
// incoming product or variant write lands on an existing row.
//
// Three kinds of fields exist:
//   - authoritative: the incoming value wins verbatim, nil included
//     (product title/updated_at; variant product_id, price, compare_price,
//     available, position, option1..3, updated_at)
//   - coalescing: an incoming nil never clears a stored value
//     (product vendor, product_type, tags, options_json; variant sku,
//     image_url)
//   - sticky: set once, never overwritten (created_at on both)
//
// A write is skipped entirely unless updated_at differs, or title (products)
// / price (variants) differs. That can miss an update whose updated_at is
// unchanged while some other field moved; the churn-avoidance wins here.
package merge

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"go-catalog-mirror/internal/model"
)

// Product merges cmd into existing. The second result is false when the
// skip guard decides the row does not need writing.
func Product(existing model.Product, cmd model.ProductUpsertCmd) (model.Product, bool) {
	if timesEqual(existing.UpdatedAt, cmd.UpdatedAt) && existing.Title == cmd.Title {
		return existing, false
	}

	out := existing
	out.Title = cmd.Title
	out.UpdatedAt = cmd.UpdatedAt
	if cmd.Vendor != nil {
		out.Vendor = cmd.Vendor
	}
	if cmd.ProductType != nil {
		out.ProductType = cmd.ProductType
	}
	if cmd.Tags != nil {
		out.Tags = cmd.Tags
	}
	if cmd.OptionsJSON != nil {
		out.OptionsJSON = datatypes.JSON(cmd.OptionsJSON)
	}
	if out.CreatedAt == nil {
		out.CreatedAt = cmd.CreatedAt
	}
	return out, true
}

// Variant merges cmd into existing under the same rules.
func Variant(existing model.Variant, cmd model.VariantUpsertCmd) (model.Variant, bool) {
	if timesEqual(existing.UpdatedAt, cmd.UpdatedAt) && decimalsEqual(existing.Price, cmd.Price) {
		return existing, false
	}

	out := existing
	out.ProductID = cmd.ProductID
	out.Price = cmd.Price
	out.ComparePrice = cmd.ComparePrice
	out.Available = cmd.Available
	out.Position = cmd.Position
	out.Option1 = cmd.Option1
	out.Option2 = cmd.Option2
	out.Option3 = cmd.Option3
	out.UpdatedAt = cmd.UpdatedAt
	if cmd.SKU != nil {
		out.SKU = cmd.SKU
	}
	if cmd.ImageURL != nil {
		out.ImageURL = cmd.ImageURL
	}
	if out.CreatedAt == nil {
		out.CreatedAt = cmd.CreatedAt
	}
	return out, true
}

// NewProduct builds the row inserted when no stored product exists.
func NewProduct(cmd model.ProductUpsertCmd) model.Product {
	return model.Product{
		ProductID:   cmd.ProductID,
		Title:       cmd.Title,
		Vendor:      cmd.Vendor,
		ProductType: cmd.ProductType,
		Tags:        cmd.Tags,
		OptionsJSON: datatypes.JSON(cmd.OptionsJSON),
		CreatedAt:   cmd.CreatedAt,
		UpdatedAt:   cmd.UpdatedAt,
	}
}

// NewVariant builds the row inserted when no stored variant exists.
func NewVariant(cmd model.VariantUpsertCmd) model.Variant {
	return model.Variant{
		VariantID:    cmd.VariantID,
		ProductID:    cmd.ProductID,
		SKU:          cmd.SKU,
		ImageURL:     cmd.ImageURL,
		Price:        cmd.Price,
		ComparePrice: cmd.ComparePrice,
		Available:    cmd.Available,
		Position:     cmd.Position,
		Option1:      cmd.Option1,
		Option2:      cmd.Option2,
		Option3:      cmd.Option3,
		CreatedAt:    cmd.CreatedAt,
		UpdatedAt:    cmd.UpdatedAt,
	}
}

func timesEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func decimalsEqual(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
