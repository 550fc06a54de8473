package remote

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

const sampleProduct = `{
	"id": 101,
	"title": "Wool Sweater",
	"vendor": "Acme",
	"product_type": "Knitwear",
	"tags": ["wool", "winter"],
	"handle": "wool-sweater",
	"published_scope": "global",
	"options": [{"name": "Size", "position": 1, "values": ["S", "M"]}],
	"variants": [{
		"id": 1001,
		"product_id": 101,
		"title": "S",
		"sku": "WS-S",
		"price": "49.90",
		"compare_at_price": "59.90",
		"available": true,
		"position": 1,
		"option1": "S",
		"grams": 400,
		"featured_image": {"id": 9, "src": "https://cdn/img.jpg", "position": 1},
		"created_at": "2025-09-01T10:00:00Z",
		"updated_at": "2025-09-20T10:00:00Z"
	}],
	"created_at": "2025-09-01T10:00:00Z",
	"updated_at": "2025-09-20T10:00:00Z"
}`

func newTestClient(t *testing.T, status int, body string) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second)
}

func TestFetchSnapshotEnvelopeAndBareArrayAgree(t *testing.T) {
	envClient := newTestClient(t, 200, `{"products":[`+sampleProduct+`]}`)
	bareClient := newTestClient(t, 200, `[`+sampleProduct+`]`)

	fromEnv, err := envClient.FetchSnapshot(context.Background())
	if err != nil {
		t.Fatalf("envelope: %v", err)
	}
	fromBare, err := bareClient.FetchSnapshot(context.Background())
	if err != nil {
		t.Fatalf("bare array: %v", err)
	}

	if !reflect.DeepEqual(fromEnv, fromBare) {
		t.Fatal("envelope and bare array decodes must be identical")
	}
	if len(fromEnv) != 1 {
		t.Fatalf("got %d products", len(fromEnv))
	}

	p := fromEnv[0]
	if p.ID != 101 || p.Title != "Wool Sweater" {
		t.Fatalf("got %+v", p)
	}
	if p.Vendor == nil || *p.Vendor != "Acme" {
		t.Fatalf("vendor: %v", p.Vendor)
	}
	v := p.Variants[0]
	if v.Price == nil || !v.Price.Equal(decimal.RequireFromString("49.90")) {
		t.Fatalf("price decodes from the quoted string, got %v", v.Price)
	}
	if v.FeaturedImage == nil || v.FeaturedImage.Src == nil || *v.FeaturedImage.Src != "https://cdn/img.jpg" {
		t.Fatalf("featured image: %+v", v.FeaturedImage)
	}
	if v.UpdatedAt == nil || !v.UpdatedAt.Equal(time.Date(2025, 9, 20, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("updated_at: %v", v.UpdatedAt)
	}
}

func TestFetchSnapshotMissingOptionalsStayAbsent(t *testing.T) {
	c := newTestClient(t, 200, `{"products":[{"id": 5, "title": "Bare"}]}`)
	products, err := c.FetchSnapshot(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	p := products[0]
	if p.Vendor != nil || p.ProductType != nil || p.CreatedAt != nil || p.UpdatedAt != nil {
		t.Fatalf("missing optionals must stay nil: %+v", p)
	}
	if len(p.Variants) != 0 || len(p.Options) != 0 {
		t.Fatalf("missing lists must stay empty: %+v", p)
	}
}

func TestFetchSnapshotNon200IsStatusError(t *testing.T) {
	c := newTestClient(t, 503, "upstream down")
	_, err := c.FetchSnapshot(context.Background())

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("want StatusError, got %v", err)
	}
	if statusErr.StatusCode != 503 {
		t.Fatalf("got %d", statusErr.StatusCode)
	}
}

func TestFetchSnapshotGarbageIsDecodeError(t *testing.T) {
	c := newTestClient(t, 200, "<html>not json</html>")
	_, err := c.FetchSnapshot(context.Background())
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("want ErrDecode, got %v", err)
	}
}

func TestFetchSnapshotNetworkErrorIsNotStatusOrDecode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on
	c := NewClient(srv.URL, time.Second)

	_, err := c.FetchSnapshot(context.Background())
	if err == nil {
		t.Fatal("want an error")
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) || errors.Is(err, ErrDecode) {
		t.Fatalf("network failure must stay a plain transport error, got %v", err)
	}
}

func TestDecodeSnapshotObjectWithoutProductsField(t *testing.T) {
	products, err := decodeSnapshot([]byte(`{"items": []}`))
	if err != nil {
		t.Fatal(err)
	}
	if len(products) != 0 {
		t.Fatalf("got %d products", len(products))
	}
}
