package repository

import (
	"encoding/json"
	"errors"
	"strings"

	"go-catalog-mirror/internal/merge"
	"go-catalog-mirror/internal/model"
	"go-catalog-mirror/internal/options"

	"gorm.io/gorm"
)

// DefaultMinGuard suppresses bulk snapshot-driven deletion when the keep set
// is suspiciously small, so a truncated upstream response cannot wipe the
// local catalog. Single-key operator deletes bypass it.
const DefaultMinGuard = 10

const listForViewSQL = `
SELECT p.product_id, p.title, p.vendor, p.product_type, p.tags,
       mp.min_price, img.image_url, p.updated_at
FROM products p
LEFT JOIN (
  SELECT product_id, MIN(price) AS min_price
  FROM variants
  GROUP BY product_id
) mp ON mp.product_id = p.product_id
LEFT JOIN LATERAL (
  SELECT v.image_url
  FROM variants v
  WHERE v.product_id = p.product_id AND v.image_url IS NOT NULL
  ORDER BY v.available DESC NULLS LAST, v.position NULLS LAST, v.variant_id
  LIMIT 1
) img ON TRUE
WHERE (? = '' OR p.title ILIKE ?)
ORDER BY COALESCE(p.updated_at, p.created_at) DESC NULLS LAST, p.product_id
LIMIT ? OFFSET ?
`

const countForViewSQL = `
SELECT COUNT(*) FROM products p
WHERE (? = '' OR p.title ILIKE ?)
`

type ProductRepository interface {
	Upsert(tx *gorm.DB, cmd model.ProductUpsertCmd) (int64, error)
	DeleteNotIn(tx *gorm.DB, keepIDs []int64, minGuard int) (int64, error)
	DeleteByProductID(tx *gorm.DB, productID int64) error
	FindByID(productID int64) (*model.Product, error)
	ExistsByProductID(productID int64) (bool, error)
	ListForViewPaged(limit, offset int, search string) ([]model.ProductListRow, error)
	CountForView(search string) (int64, error)
	LoadOptionNames(productID int64) ([]string, error)
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

// Upsert inserts the product or merges it onto the stored row. The write is
// skipped (returns 0) unless updated_at or title differs from what is
// stored; the merge rules live in the merge package.
func (r *productRepo) Upsert(tx *gorm.DB, cmd model.ProductUpsertCmd) (int64, error) {
	var existing model.Product
	err := tx.First(&existing, "product_id = ?", cmd.ProductID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		row := merge.NewProduct(cmd)
		if err := tx.Create(&row).Error; err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}

	merged, changed := merge.Product(existing, cmd)
	if !changed {
		return 0, nil
	}
	res := tx.Model(&model.Product{}).
		Where("product_id = ?", cmd.ProductID).
		Select("title", "vendor", "product_type", "tags", "options_json", "created_at", "updated_at").
		Updates(&merged)
	return res.RowsAffected, res.Error
}

// DeleteNotIn removes every product whose id is absent from keepIDs. The
// call is a no-op when keepIDs is empty or smaller than minGuard.
func (r *productRepo) DeleteNotIn(tx *gorm.DB, keepIDs []int64, minGuard int) (int64, error) {
	if len(keepIDs) == 0 || len(keepIDs) < minGuard {
		return 0, nil
	}
	res := tx.Where("product_id NOT IN ?", keepIDs).Delete(&model.Product{})
	return res.RowsAffected, res.Error
}

func (r *productRepo) DeleteByProductID(tx *gorm.DB, productID int64) error {
	return tx.Where("product_id = ?", productID).Delete(&model.Product{}).Error
}

func (r *productRepo) FindByID(productID int64) (*model.Product, error) {
	var product model.Product
	err := r.db.First(&product, "product_id = ?", productID).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) ExistsByProductID(productID int64) (bool, error) {
	var count int64
	err := r.db.Model(&model.Product{}).Where("product_id = ?", productID).Count(&count).Error
	return count > 0, err
}

func (r *productRepo) ListForViewPaged(limit, offset int, search string) ([]model.ProductListRow, error) {
	pattern := searchPattern(search)
	var rows []model.ProductListRow
	err := r.db.Raw(listForViewSQL, pattern, pattern, limit, offset).Scan(&rows).Error
	return rows, err
}

func (r *productRepo) CountForView(search string) (int64, error) {
	pattern := searchPattern(search)
	var count int64
	err := r.db.Raw(countForViewSQL, pattern, pattern).Scan(&count).Error
	return count, err
}

// LoadOptionNames projects the stored options_json to its option names,
// sorted by position, capped at three.
func (r *productRepo) LoadOptionNames(productID int64) ([]string, error) {
	var product model.Product
	err := r.db.Select("options_json").First(&product, "product_id = ?", productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return options.Names(json.RawMessage(product.OptionsJSON)), nil
}

func searchPattern(search string) string {
	s := strings.TrimSpace(search)
	if s == "" {
		return ""
	}
	return "%" + s + "%"
}
