package repository

import (
	"errors"

	"go-catalog-mirror/internal/merge"
	"go-catalog-mirror/internal/model"

	"gorm.io/gorm"
)

const listByProductSQL = `
SELECT variant_id, sku, option1, option2, option3,
       price, compare_price, available, image_url
FROM variants
WHERE product_id = ?
ORDER BY available DESC NULLS LAST, position NULLS LAST, variant_id
`

type VariantRepository interface {
	Upsert(tx *gorm.DB, cmd model.VariantUpsertCmd) (int64, error)
	DeleteNotInProducts(tx *gorm.DB, keepProductIDs []int64, minGuard int) (int64, error)
	DeleteByProductID(tx *gorm.DB, productID int64) error
	ListByProductID(productID int64) ([]model.VariantRow, error)
}

type variantRepo struct {
	db *gorm.DB
}

func NewVariantRepo(db *gorm.DB) VariantRepository {
	return &variantRepo{db}
}

// Upsert inserts the variant or merges it onto the stored row. The write is
// skipped (returns 0) unless updated_at or price differs from what is
// stored.
func (r *variantRepo) Upsert(tx *gorm.DB, cmd model.VariantUpsertCmd) (int64, error) {
	var existing model.Variant
	err := tx.First(&existing, "variant_id = ?", cmd.VariantID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		row := merge.NewVariant(cmd)
		if err := tx.Create(&row).Error; err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}

	merged, changed := merge.Variant(existing, cmd)
	if !changed {
		return 0, nil
	}
	res := tx.Model(&model.Variant{}).
		Where("variant_id = ?", cmd.VariantID).
		Select("product_id", "sku", "image_url", "price", "compare_price",
			"available", "position", "option1", "option2", "option3",
			"created_at", "updated_at").
		Updates(&merged)
	return res.RowsAffected, res.Error
}

// DeleteNotInProducts removes every variant whose parent product id is
// absent from keepProductIDs, guarded exactly like ProductRepository's
// DeleteNotIn. The sync cycle calls this before the product sweep so no
// variant is ever left pointing at a removed product.
func (r *variantRepo) DeleteNotInProducts(tx *gorm.DB, keepProductIDs []int64, minGuard int) (int64, error) {
	if len(keepProductIDs) == 0 || len(keepProductIDs) < minGuard {
		return 0, nil
	}
	res := tx.Where("product_id NOT IN ?", keepProductIDs).Delete(&model.Variant{})
	return res.RowsAffected, res.Error
}

func (r *variantRepo) DeleteByProductID(tx *gorm.DB, productID int64) error {
	return tx.Where("product_id = ?", productID).Delete(&model.Variant{}).Error
}

func (r *variantRepo) ListByProductID(productID int64) ([]model.VariantRow, error) {
	var rows []model.VariantRow
	err := r.db.Raw(listByProductSQL, productID).Scan(&rows).Error
	return rows, err
}
