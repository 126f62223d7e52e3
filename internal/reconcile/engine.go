package reconcile

import (
	"strings"

	"production-tracking-service/internal/ingest"
	"production-tracking-service/internal/models"
)

// Status classifies a reconciled purchase order
type Status string

const (
	StatusNew       Status = "new"
	StatusModified  Status = "modified"
	StatusUnchanged Status = "unchanged"
)

// FieldChange is one differing field
type FieldChange struct {
	Field ingest.Field
	Old   string
	New   string
}

// SampleDiff compares one incoming sample with the stored one
type SampleDiff struct {
	Incoming ingest.SampleRecord
	Existing *models.Sample
	Changes  []FieldChange
}

// Missing reports whether the sample type does not exist yet for the line
func (d SampleDiff) Missing() bool {
	return d.Existing == nil
}

// LineDiff compares one incoming line with the stored one
type LineDiff struct {
	Incoming *ingest.LineRecord
	Existing *models.LineItem
	Changes  []FieldChange
	Samples  []SampleDiff
}

// New reports whether the line does not exist yet
func (d LineDiff) New() bool {
	return d.Existing == nil
}

// HasChanges reports whether the line or any of its samples differ
func (d LineDiff) HasChanges() bool {
	if d.New() || len(d.Changes) > 0 {
		return true
	}
	for _, s := range d.Samples {
		if s.Missing() || len(s.Changes) > 0 {
			return true
		}
	}
	return false
}

// PODiff is the reconciliation of one PO group
type PODiff struct {
	Key      string
	PO       string
	Status   Status
	Incoming *ingest.POGroup
	Existing *models.PurchaseOrder
	Changes  []FieldChange
	Lines    []LineDiff
}

// Result holds the diffs of every incoming group in input order
type Result struct {
	POs []PODiff
}

// Index builds the lookup of a snapshot by PO natural key
func Index(snapshot []models.PurchaseOrder) map[string]*models.PurchaseOrder {
	idx := make(map[string]*models.PurchaseOrder, len(snapshot))
	for i := range snapshot {
		idx[ingest.POKey(snapshot[i].PO)] = &snapshot[i]
	}
	return idx
}

// Reconcile compares every group with the batch-fetched snapshot
func Reconcile(groups []*ingest.POGroup, snapshot []models.PurchaseOrder, fs FieldSet) *Result {
	idx := Index(snapshot)
	res := &Result{POs: make([]PODiff, 0, len(groups))}
	for _, g := range groups {
		res.POs = append(res.POs, ComparePO(g, idx[g.Key], fs))
	}
	return res
}

// ComparePO diffs one incoming group against its stored PO, nil when absent.
// Blank incoming cells are not asserted and never produce a change.
func ComparePO(g *ingest.POGroup, existing *models.PurchaseOrder, fs FieldSet) PODiff {
	d := PODiff{Key: g.Key, PO: g.PO, Incoming: g, Existing: existing}

	if existing == nil {
		d.Status = StatusNew
		for _, l := range g.Lines {
			ld := LineDiff{Incoming: l}
			for _, s := range l.Samples {
				if fs.allowsSample(s.Type) {
					ld.Samples = append(ld.Samples, SampleDiff{Incoming: s})
				}
			}
			d.Lines = append(d.Lines, ld)
		}
		return d
	}

	d.Changes = diffFields(fs.PurchaseOrder, g.Header, PurchaseOrderValues(existing))

	lines := make(map[string]*models.LineItem, len(existing.Lines))
	for i := range existing.Lines {
		l := &existing.Lines[i]
		lines[ingest.LineKey(l.Reference, l.Style, l.Color)] = l
	}

	changed := len(d.Changes) > 0
	for _, l := range g.Lines {
		ld := compareLine(l, lines[l.Key], fs)
		if ld.HasChanges() {
			changed = true
		}
		d.Lines = append(d.Lines, ld)
	}

	d.Status = StatusUnchanged
	if changed {
		d.Status = StatusModified
	}
	return d
}

func compareLine(l *ingest.LineRecord, existing *models.LineItem, fs FieldSet) LineDiff {
	ld := LineDiff{Incoming: l, Existing: existing}
	if existing != nil {
		ld.Changes = diffFields(fs.Line, l.Values, LineValues(existing))
	}

	stored := make(map[string]*models.Sample)
	if existing != nil {
		for i := range existing.Samples {
			stored[ingest.SampleKey(existing.Samples[i].TipoMuestra)] = &existing.Samples[i]
		}
	}

	for _, s := range l.Samples {
		if !fs.allowsSample(s.Type) {
			continue
		}
		sd := SampleDiff{Incoming: s, Existing: stored[ingest.SampleKey(s.Type)]}
		if sd.Existing != nil {
			sd.Changes = diffFields(fs.Sample, s.Values(), SampleValues(sd.Existing))
		}
		ld.Samples = append(ld.Samples, sd)
	}
	return ld
}

func diffFields(fields []ingest.Field, incoming, existing map[ingest.Field]string) []FieldChange {
	var changes []FieldChange
	for _, f := range fields {
		newV, asserted := incoming[f]
		if !asserted {
			continue
		}
		newV = strings.TrimSpace(newV)
		oldV := strings.TrimSpace(existing[f])
		if newV != oldV {
			changes = append(changes, FieldChange{Field: f, Old: oldV, New: newV})
		}
	}
	return changes
}
