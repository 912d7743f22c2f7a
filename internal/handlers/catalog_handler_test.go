package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Kirkidoo/Qualipieces/internal/clients"
	"github.com/Kirkidoo/Qualipieces/internal/clients/orchestra"
	"github.com/Kirkidoo/Qualipieces/internal/models"
	"github.com/Kirkidoo/Qualipieces/internal/services"
)

type failingFetcher struct {
	err error
}

func (f *failingFetcher) FetchItems(ctx context.Context, query orchestra.ItemQuery) ([]models.CatalogItem, error) {
	return nil, f.err
}

func (f *failingFetcher) Fetcher(ctx context.Context) (services.ItemFetcher, error) { return f, nil }
func (f *failingFetcher) Creator(ctx context.Context) (services.ProductCreator, error) {
	return nil, f.err
}

func newCatalogRouter(provider services.ClientProvider) *gin.Engine {
	gin.SetMode(gin.TestMode)
	catalogService := services.NewCatalogService(provider, 50, zap.NewNop())
	handler := NewCatalogHandler(catalogService)

	router := gin.New()
	router.GET("/catalog/items", handler.ListItems)
	return router
}

func TestListItemsReturnsCatalog(t *testing.T) {
	router := newCatalogRouter(&fakeBridge{items: []models.CatalogItem{
		{ID: 1, ItemNumber: "QP-001", DescriptionEN: "Brake pad"},
	}})

	req := httptest.NewRequest(http.MethodGet, "/catalog/items?search=brake", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Items []models.CatalogItem `json:"items"`
		Count int                  `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "QP-001", resp.Items[0].ItemNumber)
}

func TestListItemsAuthFailureReadsAsBadGateway(t *testing.T) {
	router := newCatalogRouter(&failingFetcher{
		err: &clients.AuthenticationError{StatusCode: http.StatusForbidden, Status: "403 Forbidden"},
	})

	req := httptest.NewRequest(http.MethodGet, "/catalog/items", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "authentication failed")
}

func TestListItemsFetchFailureReadsAsBadGateway(t *testing.T) {
	router := newCatalogRouter(&failingFetcher{
		err: &clients.FetchError{StatusCode: http.StatusInternalServerError, Status: "500 Internal Server Error"},
	})

	req := httptest.NewRequest(http.MethodGet, "/catalog/items", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}
