package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go-catalog-mirror/internal/model"
	"go-catalog-mirror/internal/options"
	"go-catalog-mirror/internal/repository"
	"go-catalog-mirror/internal/ws"
	"go-catalog-mirror/pkg/validator"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrProductExists = errors.New("product id already exists")

// VariantForm is one variant line of the create/update product form.
type VariantForm struct {
	VariantID    int64            `json:"variant_id" form:"variant_id" validate:"required"`
	SKU          *string          `json:"sku" form:"sku"`
	ImageURL     *string          `json:"image_url" form:"image_url"`
	Price        *decimal.Decimal `json:"price" form:"price" validate:"required,decimal_gt0"`
	ComparePrice *decimal.Decimal `json:"compare_price" form:"compare_price" validate:"omitempty,decimal_gt0"`
	Available    *bool            `json:"available" form:"available"`
	Option1      *string          `json:"option1" form:"option1"`
	Option2      *string          `json:"option2" form:"option2"`
	Option3      *string          `json:"option3" form:"option3"`
}

// ProductForm is the validated create/update payload. Option names must be
// distinct once trimmed; blanks are allowed and dropped.
type ProductForm struct {
	ProductID   int64         `json:"product_id" form:"product_id" validate:"required"`
	Title       string        `json:"title" form:"title" validate:"required"`
	Vendor      *string       `json:"vendor" form:"vendor"`
	ProductType *string       `json:"product_type" form:"product_type"`
	TagsText    *string       `json:"tags_text" form:"tags_text"`
	OptionNames []string      `json:"option_names" form:"option_names"`
	Variants    []VariantForm `json:"variants" form:"variants" validate:"required,min=1,dive"`
}

// ProductPage is one page of the catalog listing.
type ProductPage struct {
	Items      []model.ProductListRow `json:"items"`
	Page       int                    `json:"page"`
	Size       int                    `json:"size"`
	Total      int64                  `json:"total"`
	TotalPages int                    `json:"total_pages"`
}

// ProductDetail is the single-product read: the stored row, its variants in
// display order, and the option names derived from the stored schema.
type ProductDetail struct {
	Product     *model.Product     `json:"product"`
	Variants    []model.VariantRow `json:"variants"`
	OptionNames []string           `json:"option_names"`
}

type ProductService interface {
	CreateProduct(form *ProductForm) error
	UpdateProduct(form *ProductForm) error
	DeleteProduct(productID int64) error
	ExistsByProductID(productID int64) (bool, error)
	ListPage(page, size int, search string) (*ProductPage, error)
	GetProduct(productID int64) (*ProductDetail, error)
	ListVariants(productID int64) ([]model.VariantRow, []string, error)
}

type productService struct {
	productRepo repository.ProductRepository
	variantRepo repository.VariantRepository
	db          *gorm.DB
	hub         *ws.Hub
}

func NewProductService(pRepo repository.ProductRepository, vRepo repository.VariantRepository, db *gorm.DB, hub *ws.Hub) ProductService {
	return &productService{
		productRepo: pRepo,
		variantRepo: vRepo,
		db:          db,
		hub:         hub,
	}
}

// CreateProduct validates the form and writes the product plus its variants
// in one transaction. Both timestamps are set to now; the variant position
// is its 1-based index in the form.
func (s *productService) CreateProduct(form *ProductForm) error {
	if err := validateForm(form); err != nil {
		return err
	}

	exists, err := s.productRepo.ExistsByProductID(form.ProductID)
	if err != nil {
		return err
	}
	if exists {
		return ErrProductExists
	}

	now := time.Now()
	if err := s.upsertFromForm(form, &now, now); err != nil {
		return err
	}

	s.broadcast("product_created", form.ProductID, form.Title)
	return nil
}

// UpdateProduct re-upserts the product with created_at absent so the stored
// value stays sticky; updated_at moves to now.
func (s *productService) UpdateProduct(form *ProductForm) error {
	if err := validateForm(form); err != nil {
		return err
	}

	if err := s.upsertFromForm(form, nil, time.Now()); err != nil {
		return err
	}

	s.broadcast("product_updated", form.ProductID, form.Title)
	return nil
}

func (s *productService) upsertFromForm(form *ProductForm, createdAt *time.Time, updatedAt time.Time) error {
	tuples := make([]options.ValueTuple, len(form.Variants))
	for i, v := range form.Variants {
		tuples[i] = options.ValueTuple{v.Option1, v.Option2, v.Option3}
	}
	optionsJSON, err := options.BuildJSON(form.OptionNames, tuples)
	if err != nil {
		return fmt.Errorf("build options schema: %w", err)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		_, err := s.productRepo.Upsert(tx, model.ProductUpsertCmd{
			ProductID:   form.ProductID,
			Title:       form.Title,
			Vendor:      form.Vendor,
			ProductType: form.ProductType,
			Tags:        ParseTags(form.TagsText),
			OptionsJSON: optionsJSON,
			CreatedAt:   createdAt,
			UpdatedAt:   &updatedAt,
		})
		if err != nil {
			return err
		}

		for i, v := range form.Variants {
			position := i + 1
			_, err := s.variantRepo.Upsert(tx, model.VariantUpsertCmd{
				VariantID:    v.VariantID,
				ProductID:    form.ProductID,
				SKU:          v.SKU,
				ImageURL:     v.ImageURL,
				Price:        v.Price,
				ComparePrice: v.ComparePrice,
				Available:    v.Available,
				Position:     &position,
				Option1:      v.Option1,
				Option2:      v.Option2,
				Option3:      v.Option3,
				CreatedAt:    createdAt,
				UpdatedAt:    &updatedAt,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteProduct removes the product and its variants, variants first, in
// one transaction. This is an operator action and bypasses the sweep guard.
func (s *productService) DeleteProduct(productID int64) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.variantRepo.DeleteByProductID(tx, productID); err != nil {
			return err
		}
		return s.productRepo.DeleteByProductID(tx, productID)
	})
	if err != nil {
		return err
	}

	s.broadcast("product_deleted", productID, "")
	return nil
}

func (s *productService) ExistsByProductID(productID int64) (bool, error) {
	return s.productRepo.ExistsByProductID(productID)
}

func (s *productService) ListPage(page, size int, search string) (*ProductPage, error) {
	if size <= 0 {
		size = 10
	}
	total, err := s.productRepo.CountForView(search)
	if err != nil {
		return nil, err
	}

	totalPages := 1
	if total > 0 {
		totalPages = int((total + int64(size) - 1) / int64(size))
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	items, err := s.productRepo.ListForViewPaged(size, (page-1)*size, search)
	if err != nil {
		return nil, err
	}
	return &ProductPage{
		Items:      items,
		Page:       page,
		Size:       size,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

func (s *productService) GetProduct(productID int64) (*ProductDetail, error) {
	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		return nil, err
	}
	variants, names, err := s.ListVariants(productID)
	if err != nil {
		return nil, err
	}
	return &ProductDetail{Product: product, Variants: variants, OptionNames: names}, nil
}

func (s *productService) ListVariants(productID int64) ([]model.VariantRow, []string, error) {
	variants, err := s.variantRepo.ListByProductID(productID)
	if err != nil {
		return nil, nil, err
	}
	names, err := s.productRepo.LoadOptionNames(productID)
	if err != nil {
		return nil, nil, err
	}
	return variants, names, nil
}

func (s *productService) broadcast(event string, productID int64, title string) {
	if s.hub == nil {
		return
	}
	payload := map[string]interface{}{"product_id": productID}
	if title != "" {
		payload["title"] = title
	}
	go s.hub.BroadcastEvent(event, payload)
}

func validateForm(form *ProductForm) error {
	if errs := validator.ValidateStruct(form); len(errs) > 0 {
		first := errs[0]
		return fmt.Errorf("validation failed: field '%s' failed on tag '%s'", first.FailedField, first.Tag)
	}
	if !distinctOptionNames(form.OptionNames) {
		return errors.New("option names must be distinct")
	}
	return nil
}

// distinctOptionNames ignores blanks; two equal non-blank names collide.
func distinctOptionNames(names []string) bool {
	seen := map[string]bool{}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if seen[n] {
			return false
		}
		seen[n] = true
	}
	return true
}

// ParseTags splits the free-text tags field on commas (ASCII and fullwidth)
// and semicolons, trims, drops empties and duplicates. Nil when nothing
// survives, so stored tags are never clobbered by a blank field.
func ParseTags(tagsText *string) []string {
	if tagsText == nil {
		return nil
	}
	fields := strings.FieldsFunc(*tagsText, func(r rune) bool {
		return r == ',' || r == '，' || r == ';'
	})

	tags := []string{}
	seen := map[string]bool{}
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		tags = append(tags, f)
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}
