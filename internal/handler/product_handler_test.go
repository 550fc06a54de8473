package handler

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

type stubExport struct {
	search string
	rows   []string
}

func (s *stubExport) ExportCSV(w io.Writer, search string) error {
	s.search = search
	for _, row := range s.rows {
		if _, err := io.WriteString(w, row+"\n"); err != nil {
			return err
		}
	}
	return nil
}

func TestExportProductsStreamsCSVWithHeaders(t *testing.T) {
	export := &stubExport{rows: []string{
		"Product ID,Title,Vendor,Product Type,Tags,Min Price,Updated",
		"1,Shirt,Acme,Knitwear,wool;winter,19.99,2025-09-20T10:00:00Z",
	}}
	h := NewProductHandler(nil, export)

	app := fiber.New()
	app.Get("/api/v1/products/export", h.ExportProducts)

	req := httptest.NewRequest("GET", "/api/v1/products/export?search=shirt", nil)
	res, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()

	if res.StatusCode != 200 {
		t.Fatalf("got status %d", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("got content type %q", ct)
	}
	if cd := res.Header.Get("Content-Disposition"); !strings.HasPrefix(cd, `attachment; filename="products-`) {
		t.Fatalf("got content disposition %q", cd)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatal(err)
	}
	want := strings.Join(export.rows, "\n") + "\n"
	if string(body) != want {
		t.Fatalf("got body %q, want %q", body, want)
	}
	if export.search != "shirt" {
		t.Fatalf("search filter must reach the export, got %q", export.search)
	}
}
