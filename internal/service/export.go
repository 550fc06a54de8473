package service

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"go-catalog-mirror/internal/model"
	"go-catalog-mirror/internal/repository"

	"github.com/shopspring/decimal"
)

const exportPageSize = 1000

var exportHeader = []string{"Product ID", "Title", "Vendor", "Product Type", "Tags", "Min Price", "Updated"}

// ExportService streams the catalog listing as CSV, one line per product,
// iterating matching rows in fixed-size pages.
type ExportService interface {
	ExportCSV(w io.Writer, search string) error
}

type exportService struct {
	productRepo repository.ProductRepository
}

func NewExportService(pRepo repository.ProductRepository) ExportService {
	return &exportService{productRepo: pRepo}
}

func (s *exportService) ExportCSV(w io.Writer, search string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}

	offset := 0
	for {
		items, err := s.productRepo.ListForViewPaged(exportPageSize, offset, search)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			break
		}
		for _, item := range items {
			if err := cw.Write(exportRecord(item)); err != nil {
				return err
			}
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			return err
		}
		if len(items) < exportPageSize {
			break
		}
		offset += len(items)
	}

	cw.Flush()
	return cw.Error()
}

// exportRecord is the fixed projection from a view row to CSV cells. Kept
// explicit on purpose: column order is part of the export contract.
func exportRecord(row model.ProductListRow) []string {
	cells := make([]string, 0, len(exportHeader))
	cells = append(cells, formatInt(row.ProductID))
	cells = append(cells, row.Title)
	cells = append(cells, derefOrEmpty(row.Vendor))
	cells = append(cells, derefOrEmpty(row.ProductType))
	cells = append(cells, strings.Join(row.Tags, ";"))
	cells = append(cells, formatPrice(row.MinPrice))
	if row.UpdatedAt != nil {
		cells = append(cells, row.UpdatedAt.UTC().Format(time.RFC3339))
	} else {
		cells = append(cells, "")
	}
	return cells
}

// formatPrice renders the plain decimal with trailing zeros stripped, so a
// stored 19.9900 exports as 19.99 and 10.00 as 10.
func formatPrice(p *decimal.Decimal) string {
	if p == nil {
		return ""
	}
	s := p.String()
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	return s
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}
