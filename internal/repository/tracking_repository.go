package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"production-tracking-service/internal/models"
)

// keys per IN (...) query
const fetchChunkSize = 1000

// TrackingRepository is the Postgres-backed Store
type TrackingRepository struct {
	db *gorm.DB
}

func NewTrackingRepository(db *gorm.DB) *TrackingRepository {
	return &TrackingRepository{db: db}
}

// Migrate creates or updates the tracking tables
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.PurchaseOrder{},
		&models.LineItem{},
		&models.Sample{},
		&models.CatalogEntry{},
		&models.ImportRun{},
	)
}

// ========== Purchase Orders ==========

// FetchPurchaseOrders batch-loads POs by natural key with their lines and samples
func (r *TrackingRepository) FetchPurchaseOrders(ctx context.Context, poKeys []string) ([]models.PurchaseOrder, error) {
	orders := make([]models.PurchaseOrder, 0, len(poKeys))
	for start := 0; start < len(poKeys); start += fetchChunkSize {
		end := start + fetchChunkSize
		if end > len(poKeys) {
			end = len(poKeys)
		}
		var chunk []models.PurchaseOrder
		err := r.db.WithContext(ctx).
			Preload("Lines.Samples").
			Where("po_key IN ?", poKeys[start:end]).
			Find(&chunk).Error
		if err != nil {
			return nil, err
		}
		orders = append(orders, chunk...)
	}
	return orders, nil
}

// CreatePurchaseOrder inserts a PO together with its lines and samples
func (r *TrackingRepository) CreatePurchaseOrder(ctx context.Context, po *models.PurchaseOrder) error {
	now := time.Now()
	po.CreatedAt = now
	po.UpdatedAt = now
	for i := range po.Lines {
		po.Lines[i].CreatedAt = now
		po.Lines[i].UpdatedAt = now
		for j := range po.Lines[i].Samples {
			po.Lines[i].Samples[j].CreatedAt = now
			po.Lines[i].Samples[j].UpdatedAt = now
		}
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(po).Error
	})
}

// UpdatePurchaseOrder applies a column map to one PO
func (r *TrackingRepository) UpdatePurchaseOrder(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	return r.updateByID(ctx, &models.PurchaseOrder{}, id, updates)
}

// DeletePurchaseOrder removes a PO and, scoped by parent id, its lines and samples
func (r *TrackingRepository) DeletePurchaseOrder(ctx context.Context, poKey string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var po models.PurchaseOrder
		if err := tx.Where("po_key = ?", poKey).First(&po).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		lineIDs := tx.Model(&models.LineItem{}).Select("id").Where("purchase_order_id = ?", po.ID)
		if err := tx.Where("line_item_id IN (?)", lineIDs).Delete(&models.Sample{}).Error; err != nil {
			return fmt.Errorf("delete samples: %w", err)
		}
		if err := tx.Where("purchase_order_id = ?", po.ID).Delete(&models.LineItem{}).Error; err != nil {
			return fmt.Errorf("delete lines: %w", err)
		}
		return tx.Delete(&po).Error
	})
}

// ========== Lines & Samples ==========

func (r *TrackingRepository) CreateLineItem(ctx context.Context, line *models.LineItem) error {
	now := time.Now()
	line.CreatedAt = now
	line.UpdatedAt = now
	for i := range line.Samples {
		line.Samples[i].CreatedAt = now
		line.Samples[i].UpdatedAt = now
	}
	return r.db.WithContext(ctx).Create(line).Error
}

func (r *TrackingRepository) UpdateLineItem(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	return r.updateByID(ctx, &models.LineItem{}, id, updates)
}

func (r *TrackingRepository) CreateSample(ctx context.Context, sample *models.Sample) error {
	now := time.Now()
	sample.CreatedAt = now
	sample.UpdatedAt = now
	return r.db.WithContext(ctx).Create(sample).Error
}

func (r *TrackingRepository) UpdateSample(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	return r.updateByID(ctx, &models.Sample{}, id, updates)
}

func (r *TrackingRepository) updateByID(ctx context.Context, model interface{}, id uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	res := r.db.WithContext(ctx).Model(model).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ========== Catalog ==========

// FetchCatalogEntries returns the stored entries of the given categories
func (r *TrackingRepository) FetchCatalogEntries(ctx context.Context, categories []string) ([]models.CatalogEntry, error) {
	var entries []models.CatalogEntry
	if len(categories) == 0 {
		return entries, nil
	}
	err := r.db.WithContext(ctx).
		Where("category IN ?", categories).
		Find(&entries).Error
	return entries, err
}

// UpsertCatalogEntries bulk-inserts entries against the conflict target.
// With IgnoreDuplicates existing rows are left untouched.
func (r *TrackingRepository) UpsertCatalogEntries(ctx context.Context, entries []models.CatalogEntry, opts UpsertOptions) (int64, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	columns := make([]clause.Column, len(opts.ConflictColumns))
	for i, c := range opts.ConflictColumns {
		columns[i] = clause.Column{Name: c}
	}
	onConflict := clause.OnConflict{Columns: columns, DoNothing: true}
	if !opts.IgnoreDuplicates {
		onConflict = clause.OnConflict{Columns: columns, DoUpdates: clause.AssignmentColumns([]string{"code", "name"})}
	}

	now := time.Now()
	for i := range entries {
		entries[i].CreatedAt = now
	}

	res := r.db.WithContext(ctx).Clauses(onConflict).Create(&entries)
	return res.RowsAffected, res.Error
}

// ========== Import Runs ==========

func (r *TrackingRepository) SaveImportRun(ctx context.Context, run *models.ImportRun) error {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Save(run).Error
}

func (r *TrackingRepository) GetImportRun(ctx context.Context, id uuid.UUID) (*models.ImportRun, error) {
	var run models.ImportRun
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &run, nil
}

// Ping checks the database connection
func (r *TrackingRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
