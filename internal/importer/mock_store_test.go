package importer

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"production-tracking-service/internal/models"
	"production-tracking-service/internal/repository"
)

// MockStore is a testify mock of repository.Store
type MockStore struct {
	mock.Mock
}

var _ repository.Store = (*MockStore)(nil)

func (m *MockStore) FetchPurchaseOrders(ctx context.Context, poKeys []string) ([]models.PurchaseOrder, error) {
	args := m.Called(ctx, poKeys)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PurchaseOrder), args.Error(1)
}

func (m *MockStore) CreatePurchaseOrder(ctx context.Context, po *models.PurchaseOrder) error {
	return m.Called(ctx, po).Error(0)
}

func (m *MockStore) UpdatePurchaseOrder(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	return m.Called(ctx, id, updates).Error(0)
}

func (m *MockStore) DeletePurchaseOrder(ctx context.Context, poKey string) error {
	return m.Called(ctx, poKey).Error(0)
}

func (m *MockStore) CreateLineItem(ctx context.Context, line *models.LineItem) error {
	return m.Called(ctx, line).Error(0)
}

func (m *MockStore) UpdateLineItem(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	return m.Called(ctx, id, updates).Error(0)
}

func (m *MockStore) CreateSample(ctx context.Context, sample *models.Sample) error {
	return m.Called(ctx, sample).Error(0)
}

func (m *MockStore) UpdateSample(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	return m.Called(ctx, id, updates).Error(0)
}

func (m *MockStore) FetchCatalogEntries(ctx context.Context, categories []string) ([]models.CatalogEntry, error) {
	args := m.Called(ctx, categories)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CatalogEntry), args.Error(1)
}

func (m *MockStore) UpsertCatalogEntries(ctx context.Context, entries []models.CatalogEntry, opts repository.UpsertOptions) (int64, error) {
	args := m.Called(ctx, entries, opts)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) SaveImportRun(ctx context.Context, run *models.ImportRun) error {
	return m.Called(ctx, run).Error(0)
}

func (m *MockStore) GetImportRun(ctx context.Context, id uuid.UUID) (*models.ImportRun, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ImportRun), args.Error(1)
}

func (m *MockStore) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
