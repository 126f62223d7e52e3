package importer

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"production-tracking-service/internal/ingest"
	"production-tracking-service/internal/models"
	"production-tracking-service/internal/repository"
)

const DefaultCatalogChunkSize = 500

// CatalogOptions tunes catalog synchronization
type CatalogOptions struct {
	ChunkSize    int
	ValidateOnly bool
}

// CatalogOutcome is the result of a catalog import
type CatalogOutcome struct {
	ImportedUnique int
	New            int
	Inserted       int64
	Existing       int

	Cambios []string
	Avisos  []string
	Errores []string
}

// SyncCatalog inserts the catalog entries not yet stored. Existing rows are
// never modified; inserts run in chunks with ignore-on-conflict so a failed
// chunk does not stop the others.
func (e *Executor) SyncCatalog(ctx context.Context, batch *ingest.CatalogBatch, opts CatalogOptions) (*CatalogOutcome, error) {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultCatalogChunkSize
	}
	out := &CatalogOutcome{
		ImportedUnique: len(batch.Entries),
		Cambios:        make([]string, 0),
		Avisos:         make([]string, 0),
		Errores:        make([]string, 0),
	}
	if batch.Duplicates > 0 {
		out.Avisos = append(out.Avisos, fmt.Sprintf("%d duplicate values ignored", batch.Duplicates))
	}

	stored, err := e.store.FetchCatalogEntries(ctx, batch.Categories())
	if err != nil {
		return nil, fmt.Errorf("fetch catalog entries: %w", err)
	}
	known := make(map[string]bool, len(stored))
	for _, s := range stored {
		known[ingest.CatalogKey(s.Category, s.Name)] = true
	}

	fresh := make([]models.CatalogEntry, 0, len(batch.Entries))
	for _, entry := range batch.Entries {
		if known[ingest.CatalogKey(entry.Category, entry.Name)] {
			out.Existing++
			continue
		}
		fresh = append(fresh, entry)
	}
	out.New = len(fresh)

	if opts.ValidateOnly {
		for _, entry := range fresh {
			out.Cambios = append(out.Cambios, fmt.Sprintf("+ %s: %s", entry.Category, entry.Name))
		}
		return out, nil
	}

	for start := 0; start < len(fresh); start += opts.ChunkSize {
		end := start + opts.ChunkSize
		if end > len(fresh) {
			end = len(fresh)
		}
		chunk := fresh[start:end]
		n, err := e.store.UpsertCatalogEntries(ctx, chunk, repository.CatalogConflict)
		if err != nil {
			e.logger.WithError(err).WithFields(logrus.Fields{"from": start + 1, "to": end}).Warn("catalog chunk insert failed")
			out.Errores = append(out.Errores, fmt.Sprintf("catalog entries %d-%d: insert failed: %v", start+1, end, err))
			continue
		}
		out.Inserted += n
		if int(n) < len(chunk) {
			out.Avisos = append(out.Avisos, fmt.Sprintf("catalog entries %d-%d: %d already present", start+1, end, len(chunk)-int(n)))
		}
		for _, entry := range chunk {
			out.Cambios = append(out.Cambios, fmt.Sprintf("+ %s: %s", entry.Category, entry.Name))
		}
	}

	e.logger.WithFields(logrus.Fields{
		"unique":   out.ImportedUnique,
		"inserted": out.Inserted,
		"existing": out.Existing,
	}).Info("catalog synchronized")
	return out, nil
}
