package service

import (
	"bytes"
	"encoding/csv"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"go-catalog-mirror/internal/model"
)

func strPtr(s string) *string { return &s }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestExportCSVProjection(t *testing.T) {
	updated := time.Date(2025, 9, 20, 10, 30, 0, 0, time.UTC)
	repo := &fakeProductRepo{pages: [][]model.ProductListRow{{
		{
			ProductID:   101,
			Title:       `Wool "Deluxe" Sweater`,
			Vendor:      strPtr("Acme"),
			ProductType: strPtr("Knitwear"),
			Tags:        []string{"wool", "winter"},
			MinPrice:    decPtr("49.9000"),
			UpdatedAt:   &updated,
		},
		{ProductID: 102, Title: "Bare"},
	}}}

	var buf bytes.Buffer
	if err := NewExportService(repo).ExportCSV(&buf, ""); err != nil {
		t.Fatal(err)
	}

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("export must be valid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("header + 2 rows expected, got %d", len(records))
	}

	wantHeader := []string{"Product ID", "Title", "Vendor", "Product Type", "Tags", "Min Price", "Updated"}
	if !reflect.DeepEqual(records[0], wantHeader) {
		t.Fatalf("header: %v", records[0])
	}

	want := []string{"101", `Wool "Deluxe" Sweater`, "Acme", "Knitwear", "wool;winter", "49.9", "2025-09-20T10:30:00Z"}
	if !reflect.DeepEqual(records[1], want) {
		t.Fatalf("row: %v, want %v", records[1], want)
	}

	wantBare := []string{"102", "Bare", "", "", "", "", ""}
	if !reflect.DeepEqual(records[2], wantBare) {
		t.Fatalf("bare row: %v", records[2])
	}
}

func TestExportCSVPagesThroughAllRows(t *testing.T) {
	// Two full pages then a short one: the loop must keep fetching until a
	// short page shows up.
	full := make([]model.ProductListRow, exportPageSize)
	for i := range full {
		full[i] = model.ProductListRow{ProductID: int64(i), Title: "x"}
	}
	repo := &fakeProductRepo{pages: [][]model.ProductListRow{
		full,
		full,
		{{ProductID: 9999, Title: "last"}},
	}}

	var buf bytes.Buffer
	if err := NewExportService(repo).ExportCSV(&buf, ""); err != nil {
		t.Fatal(err)
	}
	if repo.pageCalls != 3 {
		t.Fatalf("got %d page fetches", repo.pageCalls)
	}
	lines := strings.Count(buf.String(), "\n")
	if lines != 1+2*exportPageSize+1 {
		t.Fatalf("got %d lines", lines)
	}
}

func TestFormatPriceStripsTrailingZeros(t *testing.T) {
	cases := map[string]string{
		"49.9000": "49.9",
		"10.00":   "10",
		"19.99":   "19.99",
		"0.5":     "0.5",
		"100":     "100",
	}
	for in, want := range cases {
		if got := formatPrice(decPtr(in)); got != want {
			t.Fatalf("formatPrice(%s) = %q, want %q", in, got, want)
		}
	}
	if got := formatPrice(nil); got != "" {
		t.Fatalf("nil price must be empty, got %q", got)
	}
}
