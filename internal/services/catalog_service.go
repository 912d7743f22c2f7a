package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Kirkidoo/Qualipieces/internal/clients/orchestra"
	"github.com/Kirkidoo/Qualipieces/internal/models"
)

// ItemFetcher retrieves catalog items from the source system.
type ItemFetcher interface {
	FetchItems(ctx context.Context, query orchestra.ItemQuery) ([]models.CatalogItem, error)
}

// CatalogService exposes the ERP catalog to the operator: listing, search and
// pagination. Authentication and fetch failures surface directly; there are
// no partial results.
type CatalogService struct {
	provider ClientProvider
	pageSize int
	logger   *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(provider ClientProvider, pageSize int, logger *zap.Logger) *CatalogService {
	if pageSize <= 0 {
		pageSize = 50
	}
	return &CatalogService{
		provider: provider,
		pageSize: pageSize,
		logger:   logger,
	}
}

// ListItems retrieves one page of catalog items. A non-empty search term is
// translated to the ERP's description filter syntax; a raw filter takes
// precedence when both are given.
func (s *CatalogService) ListItems(ctx context.Context, search, filter string, pageNumber, pageSize int) ([]models.CatalogItem, error) {
	fetcher, err := s.provider.Fetcher(ctx)
	if err != nil {
		return nil, err
	}

	if filter == "" && search != "" {
		filter = fmt.Sprintf("description=*%s", search)
	}
	if pageSize <= 0 {
		pageSize = s.pageSize
	}

	query := orchestra.ItemQuery{
		Filter:     filter,
		PageNumber: pageNumber,
		PageSize:   pageSize,
	}

	items, err := fetcher.FetchItems(ctx, query)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("fetched catalog items",
		zap.Int("count", len(items)),
		zap.String("filter", filter))
	return items, nil
}
