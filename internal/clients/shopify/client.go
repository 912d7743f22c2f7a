package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Kirkidoo/Qualipieces/internal/clients"
	"github.com/Kirkidoo/Qualipieces/internal/models"
)

const (
	apiVersion = "2024-01"

	productVendor      = "Qualipièces"
	defaultProductType = "General"
	defaultBodyHTML    = "No description provided."
	variantWeightUnit  = "kg"
)

// Client talks to the Shopify Admin API of the configured store.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
	rateLimiter *rate.Limiter
	logger      *zap.Logger
}

// NewClient creates a new Shopify Admin API client. storeURL is the store
// host (scheme optional, https assumed).
func NewClient(storeURL, accessToken string, timeout time.Duration, rps int, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if rps <= 0 {
		rps = 2
	}
	baseURL := strings.TrimRight(storeURL, "/")
	if !strings.Contains(baseURL, "://") {
		baseURL = "https://" + baseURL
	}
	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     baseURL,
		accessToken: accessToken,
		rateLimiter: rate.NewLimiter(rate.Limit(rps), 1),
		logger:      logger,
	}
}

// ProductPayload is the product-creation request body.
type ProductPayload struct {
	Product Product `json:"product"`
}

// Product is the draft product submitted to Shopify.
type Product struct {
	Title       string    `json:"title"`
	BodyHTML    string    `json:"body_html"`
	Vendor      string    `json:"vendor"`
	ProductType string    `json:"product_type"`
	Status      string    `json:"status"`
	Variants    []Variant `json:"variants"`
	Images      []Image   `json:"images"`
}

// Variant is the single variant derived from a catalog item.
type Variant struct {
	SKU                 string  `json:"sku"`
	Price               string  `json:"price"`
	InventoryManagement string  `json:"inventory_management"`
	InventoryQuantity   int     `json:"inventory_quantity"`
	Weight              float64 `json:"weight"`
	WeightUnit          string  `json:"weight_unit"`
}

// Image is a product image reference.
type Image struct {
	Src string `json:"src"`
}

// CreatedProduct is the identity of a product created by Shopify.
type CreatedProduct struct {
	ID     string
	Title  string
	Status string
}

// BuildProductPayload derives the product-creation payload deterministically
// from one catalog item. The product is always created as a draft; the price
// is the retail amount formatted with exactly two decimal places.
func BuildProductPayload(item models.CatalogItem) ProductPayload {
	title := firstNonEmpty(item.DescriptionEN, item.Description)
	if title == "" {
		title = fmt.Sprintf("Product %s", item.ItemNumber)
	}

	bodyHTML := firstNonEmpty(item.Description2EN, item.Description2)
	if bodyHTML == "" {
		bodyHTML = defaultBodyHTML
	}

	productType := firstNonEmpty(item.ItemType, item.Category)
	if productType == "" {
		productType = defaultProductType
	}

	images := []Image{}
	if item.Photo != "" {
		images = append(images, Image{Src: item.Photo})
	}

	return ProductPayload{
		Product: Product{
			Title:       title,
			BodyHTML:    bodyHTML,
			Vendor:      productVendor,
			ProductType: productType,
			Status:      "draft",
			Variants: []Variant{
				{
					SKU:                 item.ItemNumber,
					Price:               decimal.NewFromFloat(item.Retail).StringFixed(2),
					InventoryManagement: "shopify",
					InventoryQuantity:   item.Stock,
					Weight:              item.Weight,
					WeightUnit:          variantWeightUnit,
				},
			},
			Images: images,
		},
	}
}

// CreateProduct submits one catalog item as a draft product. A single attempt
// per call; a non-success response carries the remote error payload verbatim
// in a CommerceAPIError.
func (c *Client) CreateProduct(ctx context.Context, item models.CatalogItem) (*CreatedProduct, error) {
	return c.createProduct(ctx, BuildProductPayload(item))
}

// CreateProductWithBody is CreateProduct with the body_html replaced, used
// when an enriched description is available.
func (c *Client) CreateProductWithBody(ctx context.Context, item models.CatalogItem, bodyHTML string) (*CreatedProduct, error) {
	payload := BuildProductPayload(item)
	if bodyHTML != "" {
		payload.Product.BodyHTML = bodyHTML
	}
	return c.createProduct(ctx, payload)
}

func (c *Client) createProduct(ctx context.Context, payload ProductPayload) (*CreatedProduct, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	fullURL := fmt.Sprintf("%s/admin/api/%s/products.json", c.baseURL, apiVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("product creation request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &clients.CommerceAPIError{
			StatusCode: resp.StatusCode,
			Payload:    errorPayload(respBody),
		}
	}

	var response struct {
		Product struct {
			ID     int64  `json:"id"`
			Title  string `json:"title"`
			Status string `json:"status"`
		} `json:"product"`
	}
	if err := json.Unmarshal(respBody, &response); err != nil {
		return nil, fmt.Errorf("failed to parse product response: %w", err)
	}

	created := &CreatedProduct{
		ID:     strconv.FormatInt(response.Product.ID, 10),
		Title:  response.Product.Title,
		Status: response.Product.Status,
	}
	c.logger.Info("created draft product",
		zap.String("productId", created.ID),
		zap.String("sku", payload.Product.Variants[0].SKU))
	return created, nil
}

// errorPayload extracts the structured "errors" field when present, falling
// back to the whole response body.
func errorPayload(respBody []byte) string {
	var errResp struct {
		Errors json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(respBody, &errResp); err == nil && len(errResp.Errors) > 0 {
		return string(errResp.Errors)
	}
	return string(respBody)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
