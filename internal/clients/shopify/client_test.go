package shopify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Kirkidoo/Qualipieces/internal/clients"
	"github.com/Kirkidoo/Qualipieces/internal/models"
)

func testItem() models.CatalogItem {
	return models.CatalogItem{
		ID:             42,
		ItemNumber:     "QP-042",
		ItemType:       "Brake Pad",
		Description:    "Plaquette de frein",
		DescriptionEN:  "Brake pad",
		Description2:   "Pour camions",
		Description2EN: "For trucks",
		Category:       "Brakes",
		Stock:          12,
		Retail:         49.5,
		Weight:         1.25,
		Photo:          "https://cdn.example.com/qp-042.jpg",
	}
}

func TestBuildProductPayloadTitleSelection(t *testing.T) {
	item := testItem()

	payload := BuildProductPayload(item)
	assert.Equal(t, "Brake pad", payload.Product.Title)

	item.DescriptionEN = ""
	payload = BuildProductPayload(item)
	assert.Equal(t, "Plaquette de frein", payload.Product.Title)

	item.Description = ""
	payload = BuildProductPayload(item)
	assert.Equal(t, "Product QP-042", payload.Product.Title)
}

func TestBuildProductPayloadDefaults(t *testing.T) {
	payload := BuildProductPayload(models.CatalogItem{ItemNumber: "QP-001", Retail: 7})
	product := payload.Product

	assert.Equal(t, "No description provided.", product.BodyHTML)
	assert.Equal(t, "Qualipièces", product.Vendor)
	assert.Equal(t, "General", product.ProductType)
	assert.Equal(t, "draft", product.Status)
	assert.Empty(t, product.Images)

	require.Len(t, product.Variants, 1)
	variant := product.Variants[0]
	assert.Equal(t, "QP-001", variant.SKU)
	assert.Equal(t, "7.00", variant.Price)
	assert.Equal(t, "shopify", variant.InventoryManagement)
	assert.Equal(t, "kg", variant.WeightUnit)
}

func TestBuildProductPayloadPriceHasTwoDecimals(t *testing.T) {
	for retail, want := range map[float64]string{
		49.5:   "49.50",
		7:      "7.00",
		19.999: "20.00",
		0:      "0.00",
	} {
		payload := BuildProductPayload(models.CatalogItem{ItemNumber: "QP", Retail: retail})
		assert.Equal(t, want, payload.Product.Variants[0].Price)
	}
}

func TestBuildProductPayloadIsDeterministic(t *testing.T) {
	item := testItem()

	first, err := json.Marshal(BuildProductPayload(item))
	require.NoError(t, err)
	second, err := json.Marshal(BuildProductPayload(item))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestBuildProductPayloadUsesPhoto(t *testing.T) {
	payload := BuildProductPayload(testItem())
	require.Len(t, payload.Product.Images, 1)
	assert.Equal(t, "https://cdn.example.com/qp-042.jpg", payload.Product.Images[0].Src)
}

func TestCreateProductSuccess(t *testing.T) {
	var gotPath, gotToken string
	var gotPayload ProductPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.Header.Get("X-Shopify-Access-Token")
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &gotPayload))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"product":{"id":9988,"title":"Brake pad","status":"draft"}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "shpat-test", 0, 0, zap.NewNop())
	created, err := client.CreateProduct(context.Background(), testItem())
	require.NoError(t, err)

	assert.Equal(t, "9988", created.ID)
	assert.Equal(t, "draft", created.Status)
	assert.Equal(t, "/admin/api/2024-01/products.json", gotPath)
	assert.Equal(t, "shpat-test", gotToken)
	assert.Equal(t, "Brake pad", gotPayload.Product.Title)
}

func TestCreateProductErrorEmbedsRemotePayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"errors":{"title":["can't be blank"]}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "shpat-test", 0, 0, zap.NewNop())
	_, err := client.CreateProduct(context.Background(), testItem())

	var apiErr *clients.CommerceAPIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.JSONEq(t, `{"title":["can't be blank"]}`, apiErr.Payload)
	assert.Contains(t, err.Error(), "blank")
}

func TestCreateProductWithBodyOverridesDescription(t *testing.T) {
	var gotPayload ProductPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &gotPayload))
		w.Write([]byte(`{"product":{"id":1}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "shpat-test", 0, 0, zap.NewNop())
	_, err := client.CreateProductWithBody(context.Background(), testItem(), "<p>Enriched</p>")
	require.NoError(t, err)
	assert.Equal(t, "<p>Enriched</p>", gotPayload.Product.BodyHTML)
}
