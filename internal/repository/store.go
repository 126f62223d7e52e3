package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"production-tracking-service/internal/models"
)

var ErrNotFound = errors.New("not found")

// UpsertOptions configures a bulk insert against a natural-key constraint
type UpsertOptions struct {
	ConflictColumns  []string
	IgnoreDuplicates bool
}

// Store is the persistence contract used by the importers
type Store interface {
	// FetchPurchaseOrders loads the POs whose key is in poKeys, lines and samples preloaded
	FetchPurchaseOrders(ctx context.Context, poKeys []string) ([]models.PurchaseOrder, error)
	CreatePurchaseOrder(ctx context.Context, po *models.PurchaseOrder) error
	UpdatePurchaseOrder(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	DeletePurchaseOrder(ctx context.Context, poKey string) error

	CreateLineItem(ctx context.Context, line *models.LineItem) error
	UpdateLineItem(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error

	CreateSample(ctx context.Context, sample *models.Sample) error
	UpdateSample(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error

	FetchCatalogEntries(ctx context.Context, categories []string) ([]models.CatalogEntry, error)
	UpsertCatalogEntries(ctx context.Context, entries []models.CatalogEntry, opts UpsertOptions) (int64, error)

	SaveImportRun(ctx context.Context, run *models.ImportRun) error
	GetImportRun(ctx context.Context, id uuid.UUID) (*models.ImportRun, error)

	Ping(ctx context.Context) error
}

// CatalogConflict is the natural-key conflict target of catalog rows
var CatalogConflict = UpsertOptions{ConflictColumns: []string{"category", "name_key"}, IgnoreDuplicates: true}
