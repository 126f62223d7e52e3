package ingest

import (
	"production-tracking-service/internal/models"
	"production-tracking-service/internal/spreadsheet"
)

// CatalogBatch is the deduplicated content of a catalog sheet
type CatalogBatch struct {
	Entries    []models.CatalogEntry
	Candidates int
	Duplicates int
}

// MapCatalog turns every non-empty data cell into a (category, name)
// candidate, where the category is the slug of the column label.
// Candidates are deduplicated on CatalogKey in first-seen order.
func MapCatalog(g *spreadsheet.Grid, h *spreadsheet.Header, maxRows int) *CatalogBatch {
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}
	categories := make([]string, len(h.Columns))
	for i, col := range h.Columns {
		categories[i] = Slugify(col.Label)
	}

	batch := &CatalogBatch{}
	seen := make(map[string]bool)
	end := h.DataStart + maxRows
	if end > g.RowCount() {
		end = g.RowCount()
	}
	for r := h.DataStart; r < end; r++ {
		for i, col := range h.Columns {
			category := categories[i]
			name := CollapseSpace(g.Cell(r, col.Index).String())
			if category == "" || name == "" {
				continue
			}
			batch.Candidates++
			key := CatalogKey(category, name)
			if seen[key] {
				batch.Duplicates++
				continue
			}
			seen[key] = true
			batch.Entries = append(batch.Entries, models.CatalogEntry{
				Category: category,
				Code:     CodeFor(name),
				Name:     name,
				NameKey:  NameKey(name),
			})
		}
	}
	return batch
}

// Categories lists the distinct categories of the batch in first-seen order
func (b *CatalogBatch) Categories() []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, e := range b.Entries {
		if !seen[e.Category] {
			seen[e.Category] = true
			out = append(out, e.Category)
		}
	}
	return out
}
