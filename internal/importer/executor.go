package importer

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"production-tracking-service/internal/ingest"
	"production-tracking-service/internal/models"
	"production-tracking-service/internal/reconcile"
	"production-tracking-service/internal/repository"
)

// Outcome is the result of applying an import under a policy
type Outcome struct {
	Result *reconcile.Result

	POsTouched     int
	POsCreated     int
	POsUpdated     int
	LinesCreated   int
	LinesUpdated   int
	SamplesCreated int
	SamplesUpdated int

	// Every mutation attempt lands in exactly one of these
	Updated  int
	Warnings int
	Errors   int

	Cambios []string
	Avisos  []string
	Errores []string
}

func newOutcome() *Outcome {
	return &Outcome{
		Result:  &reconcile.Result{},
		Cambios: make([]string, 0),
		Avisos:  make([]string, 0),
		Errores: make([]string, 0),
	}
}

func (o *Outcome) ok(format string, args ...interface{}) {
	o.Updated++
	o.Cambios = append(o.Cambios, fmt.Sprintf(format, args...))
}

func (o *Outcome) warn(format string, args ...interface{}) {
	o.Warnings++
	o.Avisos = append(o.Avisos, fmt.Sprintf(format, args...))
}

func (o *Outcome) fail(format string, args ...interface{}) {
	o.Errors++
	o.Errores = append(o.Errores, fmt.Sprintf(format, args...))
}

// Executor applies reconciled imports to the store
type Executor struct {
	store  repository.Store
	logger *logrus.Entry
}

func NewExecutor(store repository.Store, logger *logrus.Logger) *Executor {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Executor{store: store, logger: logger.WithField("component", "importer")}
}

// Preview reconciles groups against a batch snapshot without writing
func (e *Executor) Preview(ctx context.Context, groups []*ingest.POGroup, policy Policy) (*reconcile.Result, error) {
	snapshot, err := e.store.FetchPurchaseOrders(ctx, groupKeys(groups))
	if err != nil {
		return nil, fmt.Errorf("fetch purchase orders: %w", err)
	}
	return reconcile.Reconcile(groups, snapshot, policy.Fields), nil
}

// Apply reconciles and writes every group. Per-entity failures are
// recorded in the outcome and processing continues with the next entity;
// only a failed batch lookup aborts the import.
func (e *Executor) Apply(ctx context.Context, groups []*ingest.POGroup, policy Policy) (*Outcome, error) {
	out := newOutcome()

	var snapshot map[string]*models.PurchaseOrder
	if policy.Lookup == LookupBatch {
		pos, err := e.store.FetchPurchaseOrders(ctx, groupKeys(groups))
		if err != nil {
			return nil, fmt.Errorf("fetch purchase orders: %w", err)
		}
		snapshot = reconcile.Index(pos)
	}

	for _, g := range groups {
		existing := snapshot[g.Key]
		if policy.Lookup == LookupPerGroup {
			found, err := e.store.FetchPurchaseOrders(ctx, []string{g.Key})
			if err != nil {
				e.logger.WithError(err).WithField("po", g.PO).Warn("purchase order lookup failed")
				out.fail("row %d PO %s: lookup failed: %v", g.Row, g.PO, err)
				continue
			}
			if len(found) > 0 {
				existing = &found[0]
			}
		}

		d := reconcile.ComparePO(g, existing, policy.Fields)
		out.Result.POs = append(out.Result.POs, d)
		e.applyPO(ctx, d, policy, out)
	}

	e.logger.WithFields(logrus.Fields{
		"policy":   policy.Name,
		"groups":   len(groups),
		"updated":  out.Updated,
		"warnings": out.Warnings,
		"errors":   out.Errors,
	}).Info("import applied")
	return out, nil
}

func groupKeys(groups []*ingest.POGroup) []string {
	keys := make([]string, 0, len(groups))
	for _, g := range groups {
		keys = append(keys, g.Key)
	}
	return keys
}

func (e *Executor) applyPO(ctx context.Context, d reconcile.PODiff, policy Policy, out *Outcome) {
	g := d.Incoming
	if d.Existing == nil {
		switch policy.OnMissingPO {
		case OnMissingCreate:
			e.createPO(ctx, d, out)
		case OnMissingWarn:
			out.warn("row %d PO %s: not found, skipped", g.Row, g.PO)
		default:
			out.fail("row %d PO %s: not found", g.Row, g.PO)
		}
		return
	}

	out.POsTouched++
	if len(d.Changes) > 0 {
		if err := e.store.UpdatePurchaseOrder(ctx, d.Existing.ID, updatesFor(d.Changes)); err != nil {
			e.logger.WithError(err).WithField("po", g.PO).Warn("purchase order update failed")
			out.fail("row %d PO %s: update failed: %v", g.Row, g.PO, err)
		} else {
			out.POsUpdated++
			out.ok("PO %s: %s", g.PO, describe(d.Changes))
		}
	}

	for _, ld := range d.Lines {
		e.applyLine(ctx, d, ld, policy, out)
	}
}

func (e *Executor) createPO(ctx context.Context, d reconcile.PODiff, out *Outcome) {
	po := buildPurchaseOrder(d)
	if err := e.store.CreatePurchaseOrder(ctx, po); err != nil {
		e.logger.WithError(err).WithField("po", po.PO).Warn("purchase order create failed")
		out.fail("row %d PO %s: create failed: %v", d.Incoming.Row, po.PO, err)
		return
	}
	samples := 0
	for _, l := range po.Lines {
		samples += len(l.Samples)
	}
	out.POsTouched++
	out.POsCreated++
	out.LinesCreated += len(po.Lines)
	out.SamplesCreated += samples
	out.ok("PO %s: created with %d lines and %d samples", po.PO, len(po.Lines), samples)
}

func (e *Executor) applyLine(ctx context.Context, d reconcile.PODiff, ld reconcile.LineDiff, policy Policy, out *Outcome) {
	l := ld.Incoming
	where := fmt.Sprintf("row %d PO %s %s", l.Row, d.PO, l.Label())

	if ld.New() {
		switch policy.OnMissingLine {
		case OnMissingCreate:
			line := buildLine(d.Existing.ID, ld)
			if err := e.store.CreateLineItem(ctx, line); err != nil {
				out.fail("%s: line create failed: %v", where, err)
				return
			}
			out.LinesCreated++
			out.SamplesCreated += len(line.Samples)
			out.ok("PO %s %s: line created", d.PO, l.Label())
		case OnMissingWarn:
			out.warn("%s: line not found, skipped", where)
		default:
			out.fail("%s: line not found", where)
		}
		return
	}

	if len(ld.Changes) > 0 {
		if err := e.store.UpdateLineItem(ctx, ld.Existing.ID, updatesFor(ld.Changes)); err != nil {
			out.fail("%s: line update failed: %v", where, err)
		} else {
			out.LinesUpdated++
			out.ok("PO %s %s: %s", d.PO, l.Label(), describe(ld.Changes))
		}
	}

	for _, sd := range ld.Samples {
		s := sd.Incoming
		if sd.Missing() {
			switch policy.OnMissingSample {
			case OnMissingCreate:
				sample := buildSample(ld.Existing.ID, s)
				if err := e.store.CreateSample(ctx, sample); err != nil {
					out.fail("%s %s: sample create failed: %v", where, s.Type, err)
					continue
				}
				out.SamplesCreated++
				out.ok("PO %s %s %s: sample created (%s)", d.PO, l.Label(), s.Type, s.Status)
			case OnMissingWarn:
				out.warn("%s: sample %s does not exist, not created", where, s.Type)
			default:
				out.fail("%s: sample %s not found", where, s.Type)
			}
			continue
		}
		if len(sd.Changes) == 0 {
			continue
		}
		updates := updatesFor(sd.Changes)
		if s.Note != "" {
			updates["notas"] = s.Note
		}
		if err := e.store.UpdateSample(ctx, sd.Existing.ID, updates); err != nil {
			out.fail("%s %s: sample update failed: %v", where, s.Type, err)
			continue
		}
		out.SamplesUpdated++
		out.ok("PO %s %s %s: %s", d.PO, l.Label(), s.Type, describe(sd.Changes))
	}
}

func describe(changes []reconcile.FieldChange) string {
	parts := make([]string, len(changes))
	for i, c := range changes {
		parts[i] = fmt.Sprintf("%s %s -> %s", c.Field, reconcile.Display(c.Old), reconcile.Display(c.New))
	}
	return strings.Join(parts, ", ")
}
