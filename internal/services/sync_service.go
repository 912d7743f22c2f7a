package services

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Kirkidoo/Qualipieces/internal/clients/orchestra"
	"github.com/Kirkidoo/Qualipieces/internal/clients/shopify"
	"github.com/Kirkidoo/Qualipieces/internal/models"
)

// ErrSyncInProgress is returned when a batch is started while another one is
// still running.
var ErrSyncInProgress = errors.New("a sync run is already in progress")

// ProductCreator pushes one catalog item to the target system.
type ProductCreator interface {
	CreateProduct(ctx context.Context, item models.CatalogItem) (*shopify.CreatedProduct, error)
	CreateProductWithBody(ctx context.Context, item models.CatalogItem, bodyHTML string) (*shopify.CreatedProduct, error)
}

// RecordStore persists sync records for audit. Persistence is best-effort
// and never affects the run.
type RecordStore interface {
	CreateRecord(ctx context.Context, record *models.SyncRecord) error
	ResolveRecord(ctx context.Context, id uuid.UUID, status models.SyncStatus, message, shopifyProductID string) error
}

// DescriptionEnricher optionally rewrites an item's description before the
// product is created. Failures fall back to the raw catalog data.
type DescriptionEnricher interface {
	OptimizeDescription(ctx context.Context, item models.CatalogItem) (string, error)
}

// RunSummary reports the outcome of one sync run.
type RunSummary struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

// SyncService is the sequential sync orchestrator. Each selected item moves
// through Pending into Success or Error independently; one item's failure
// never aborts the batch. A run-level busy flag guards batch re-entrancy;
// items are processed strictly one at a time, in listing order.
type SyncService struct {
	provider ClientProvider
	store    RecordStore
	enricher DescriptionEnricher
	logger   *zap.Logger

	mu      sync.Mutex
	busy    bool
	records []*models.SyncRecord // newest first
}

// NewSyncService creates a new sync service. store and enricher may be nil.
func NewSyncService(provider ClientProvider, store RecordStore, enricher DescriptionEnricher, logger *zap.Logger) *SyncService {
	return &SyncService{
		provider: provider,
		store:    store,
		enricher: enricher,
		logger:   logger,
	}
}

// Busy reports whether a run is in flight.
func (s *SyncService) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Records returns a newest-first snapshot of the in-memory sync log.
func (s *SyncService) Records() []models.SyncRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.SyncRecord, len(s.records))
	for i, r := range s.records {
		out[i] = *r
	}
	return out
}

// SyncSelection resolves the selected item ids against the current listing
// and runs the batch. Ids missing from the listing are counted as skipped.
func (s *SyncService) SyncSelection(ctx context.Context, itemIDs []int64, query orchestra.ItemQuery) (*RunSummary, error) {
	fetcher, err := s.provider.Fetcher(ctx)
	if err != nil {
		return nil, err
	}
	listing, err := fetcher.FetchItems(ctx, query)
	if err != nil {
		return nil, err
	}

	selected := make(map[int64]bool, len(itemIDs))
	for _, id := range itemIDs {
		selected[id] = true
	}

	// Listing order, not selection order, drives processing.
	items := make([]models.CatalogItem, 0, len(itemIDs))
	for _, item := range listing {
		if selected[item.ID] {
			items = append(items, item)
			delete(selected, item.ID)
		}
	}
	skipped := len(selected)
	for id := range selected {
		s.logger.Warn("selected item not found in current listing", zap.Int64("itemId", id))
	}

	summary, err := s.Run(ctx, items)
	if err != nil {
		return nil, err
	}
	summary.Skipped = skipped
	return summary, nil
}

// Run processes the item snapshot sequentially. The snapshot is taken once;
// later catalog changes do not affect a run in flight.
func (s *SyncService) Run(ctx context.Context, items []models.CatalogItem) (*RunSummary, error) {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return nil, ErrSyncInProgress
	}
	s.busy = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	}()

	creator, err := s.provider.Creator(ctx)
	if err != nil {
		return nil, err
	}

	summary := &RunSummary{Total: len(items)}
	for _, item := range items {
		if s.syncOne(ctx, creator, item) {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
	}

	s.logger.Info("sync run completed",
		zap.Int("total", summary.Total),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed))
	return summary, nil
}

// syncOne pushes a single item and resolves its record. It reports success;
// the error text itself lands on the record, not on the caller.
func (s *SyncService) syncOne(ctx context.Context, creator ProductCreator, item models.CatalogItem) bool {
	record := s.openRecord(ctx, item)

	bodyHTML := ""
	if s.enricher != nil {
		html, err := s.enricher.OptimizeDescription(ctx, item)
		if err != nil {
			s.logger.Warn("description enrichment failed, using raw data",
				zap.String("itemNumber", item.ItemNumber),
				zap.Error(err))
		} else {
			bodyHTML = html
		}
	}

	var (
		created *shopify.CreatedProduct
		err     error
	)
	if bodyHTML != "" {
		created, err = creator.CreateProductWithBody(ctx, item, bodyHTML)
	} else {
		created, err = creator.CreateProduct(ctx, item)
	}

	if err != nil {
		s.resolveRecord(ctx, record.ID, models.SyncStatusError, err.Error(), "")
		s.logger.Warn("item sync failed",
			zap.String("itemNumber", item.ItemNumber),
			zap.Error(err))
		return false
	}

	s.resolveRecord(ctx, record.ID, models.SyncStatusSuccess, "", created.ID)
	return true
}

// openRecord prepends a pending record to the log and persists it.
func (s *SyncService) openRecord(ctx context.Context, item models.CatalogItem) *models.SyncRecord {
	record := &models.SyncRecord{
		ID:         uuid.New(),
		ItemID:     item.ID,
		ItemNumber: item.ItemNumber,
		Status:     models.SyncStatusPending,
	}

	s.mu.Lock()
	s.records = append([]*models.SyncRecord{record}, s.records...)
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.CreateRecord(ctx, record); err != nil {
			s.logger.Warn("failed to persist sync record", zap.Error(err))
		}
	}
	return record
}

// resolveRecord transitions a pending record to its terminal status. The
// transition is one-way: a resolved record never changes again.
func (s *SyncService) resolveRecord(ctx context.Context, id uuid.UUID, status models.SyncStatus, message, shopifyProductID string) {
	s.mu.Lock()
	for _, r := range s.records {
		if r.ID == id {
			if !r.Resolved() {
				r.Status = status
				r.Message = message
				r.ShopifyProductID = shopifyProductID
			}
			break
		}
	}
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.ResolveRecord(ctx, id, status, message, shopifyProductID); err != nil {
			s.logger.Warn("failed to update sync record", zap.Error(err))
		}
	}
}
