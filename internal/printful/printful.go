package printful

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/yourusername/vornify-cli/internal/client"
	"github.com/yourusername/vornify-cli/internal/models"
)

const DefaultBaseURL = "https://api.printful.com"

// Product is a store product as listed by /store/products
type Product struct {
	ID           int64  `json:"id"`
	ExternalID   string `json:"external_id"`
	Name         string `json:"name"`
	Variants     int    `json:"variants"`
	Synced       int    `json:"synced"`
	ThumbnailURL string `json:"thumbnail_url"`
	IsIgnored    bool   `json:"is_ignored"`
}

// SyncVariant is one variant of a product
type SyncVariant struct {
	ID          int64  `json:"id"`
	ExternalID  string `json:"external_id"`
	Name        string `json:"name"`
	Synced      bool   `json:"synced"`
	VariantID   int64  `json:"variant_id"`
	RetailPrice string `json:"retail_price"`
	Currency    string `json:"currency"`
	SKU         string `json:"sku"`
}

// ProductDetail is the result of /store/products/{id}
type ProductDetail struct {
	SyncProduct  Product       `json:"sync_product"`
	SyncVariants []SyncVariant `json:"sync_variants"`
}

// apiResponse is the wrapper every endpoint returns
type apiResponse[T any] struct {
	Code   int    `json:"code"`
	Result T      `json:"result"`
	Error  *struct {
		Reason  string `json:"reason"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Client reads the store catalog
type Client struct {
	api *client.Client
}

// NewClient builds a catalog client authenticated with a bearer token
func NewClient(baseURL, token string, timeout time.Duration, log zerolog.Logger) (*Client, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("printful token is required")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	api, err := client.NewClient(baseURL,
		client.WithBearerToken(token),
		client.WithTimeout(timeout),
		client.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}
	return &Client{api: api}, nil
}

// ListProducts returns every product in the store
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var resp apiResponse[[]Product]
	if err := get(ctx, c.api, "/store/products", &resp); err != nil {
		return nil, err
	}
	return resp.Result, nil
}

// GetProduct returns one product with its variants
func (c *Client) GetProduct(ctx context.Context, id int64) (*ProductDetail, error) {
	path := fmt.Sprintf("/store/products/%d", id)
	var resp apiResponse[ProductDetail]
	if err := get(ctx, c.api, path, &resp); err != nil {
		return nil, err
	}
	return &resp.Result, nil
}

func get[T any](ctx context.Context, api *client.Client, path string, resp *apiResponse[T]) error {
	if err := api.GetJSON(ctx, path, resp); err != nil {
		return err
	}
	// code mirrors the HTTP status and can disagree with it behind proxies
	if resp.Code != 0 && resp.Code != http.StatusOK {
		body := ""
		if resp.Error != nil {
			body = resp.Error.Message
		}
		return models.NewHTTPError("GET "+path, resp.Code, body)
	}
	return nil
}
