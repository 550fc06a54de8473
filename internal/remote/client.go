// Package remote fetches the upstream product catalog snapshot.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

const DefaultTimeout = 20 * time.Second

// ErrDecode is wrapped when the response body matches neither of the two
// accepted shapes ({"products": [...]} envelope or a bare product array).
var ErrDecode = errors.New("catalog feed body matches no known shape")

// StatusError reports a non-200 response from the feed.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("catalog feed returned HTTP %d", e.StatusCode)
}

// Product is the upstream representation. Field names follow the feed
// contract; unknown fields are ignored, missing optionals stay nil.
type Product struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Vendor      *string    `json:"vendor"`
	ProductType *string    `json:"product_type"`
	Tags        []string   `json:"tags"`
	Options     []Option   `json:"options"`
	Variants    []Variant  `json:"variants"`
	CreatedAt   *time.Time `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

type Variant struct {
	ID             int64            `json:"id"`
	ProductID      int64            `json:"product_id"`
	Title          *string          `json:"title"`
	SKU            *string          `json:"sku"`
	Price          *decimal.Decimal `json:"price"`
	CompareAtPrice *decimal.Decimal `json:"compare_at_price"`
	Available      *bool            `json:"available"`
	Position       *int             `json:"position"`
	Option1        *string          `json:"option1"`
	Option2        *string          `json:"option2"`
	Option3        *string          `json:"option3"`
	FeaturedImage  *Image           `json:"featured_image"`
	CreatedAt      *time.Time       `json:"created_at"`
	UpdatedAt      *time.Time       `json:"updated_at"`
}

type Option struct {
	Name     *string  `json:"name"`
	Position *int     `json:"position"`
	Values   []string `json:"values"`
}

type Image struct {
	ID       *int64  `json:"id"`
	Src      *string `json:"src"`
	Position *int    `json:"position"`
}

type envelope struct {
	Products []Product `json:"products"`
}

// SnapshotFetcher is what the reconciliation engine depends on.
type SnapshotFetcher interface {
	FetchSnapshot(ctx context.Context) ([]Product, error)
}

type Client struct {
	http *http.Client
	url  string
}

func NewClient(feedURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		http: &http.Client{Timeout: timeout},
		url:  feedURL,
	}
}

// FetchSnapshot issues one GET to the feed and decodes the body tolerantly.
// Non-200 is a hard failure; no retry happens here.
func (c *Client) FetchSnapshot(ctx context.Context) ([]Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog feed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request catalog feed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: res.StatusCode}
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read catalog feed body: %w", err)
	}
	return decodeSnapshot(body)
}

// decodeSnapshot tries the {"products": [...]} envelope first, then a bare
// array of products.
func decodeSnapshot(body []byte) ([]Product, error) {
	var env envelope
	envErr := json.Unmarshal(body, &env)
	if envErr == nil && env.Products != nil {
		return env.Products, nil
	}

	var bare []Product
	if bareErr := json.Unmarshal(body, &bare); bareErr == nil {
		return bare, nil
	}

	if envErr == nil {
		// Valid JSON object without a products field counts as an empty
		// envelope rather than a decode failure.
		return env.Products, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrDecode, envErr)
}
