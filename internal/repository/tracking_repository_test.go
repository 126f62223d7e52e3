//go:build integration

package repository

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"production-tracking-service/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		dsn = "host=localhost user=postgres password=postgres dbname=production_tracking_test port=5432 sslmode=disable"
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Skipf("database unavailable: %v", err)
	}
	require.NoError(t, Migrate(db))
	t.Cleanup(func() {
		db.Exec("TRUNCATE po_samples, po_line_items, purchase_orders, catalog_entries, import_runs CASCADE")
	})
	return db
}

func TestTrackingRepository_PurchaseOrderLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewTrackingRepository(openTestDB(t))

	po := &models.PurchaseOrder{
		PO:    "PO-IT-1",
		POKey: "PO-IT-1",
		Lines: []models.LineItem{{
			LineKey: "R1||RED", Reference: "R1", Color: "Red", Qty: 5,
			Samples: []models.Sample{{TipoMuestra: models.SampleTypeCFM, EstadoMuestra: models.SampleStatusNotStarted}},
		}},
	}
	require.NoError(t, repo.CreatePurchaseOrder(ctx, po))

	got, err := repo.FetchPurchaseOrders(ctx, []string{"PO-IT-1"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Len(t, got[0].Lines, 1)
	assert.Len(t, got[0].Lines[0].Samples, 1)

	require.NoError(t, repo.UpdateLineItem(ctx, got[0].Lines[0].ID, map[string]interface{}{"qty": 8}))
	require.NoError(t, repo.DeletePurchaseOrder(ctx, "PO-IT-1"))
	assert.ErrorIs(t, repo.DeletePurchaseOrder(ctx, "PO-IT-1"), ErrNotFound)
}

func TestTrackingRepository_CatalogDoNothing(t *testing.T) {
	ctx := context.Background()
	repo := NewTrackingRepository(openTestDB(t))

	entries := []models.CatalogEntry{{Category: "material", Name: "Suede", NameKey: "suede", Code: "SUEDE"}}
	n, err := repo.UpsertCatalogEntries(ctx, entries, CatalogConflict)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	again := []models.CatalogEntry{{Category: "material", Name: "SUEDE", NameKey: "suede", Code: "SUEDE"}}
	n, err = repo.UpsertCatalogEntries(ctx, again, CatalogConflict)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}
