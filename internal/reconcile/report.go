package reconcile

import (
	"fmt"
	"strings"

	"production-tracking-service/internal/ingest"
)

// Change is the display form of one difference
type Change struct {
	Campo string `json:"campo"`
	Old   string `json:"old"`
	New   string `json:"new"`
}

// Entry is the per-PO section of the report
type Entry struct {
	PO      string   `json:"po"`
	Status  Status   `json:"status"`
	Cambios []Change `json:"cambios"`
}

// Report is the summary of a reconciliation
type Report struct {
	Nuevos      int              `json:"nuevos"`
	Modificados int              `json:"modificados"`
	SinCambios  int              `json:"sinCambios"`
	Detalles    map[string]Entry `json:"detalles"`
}

// Report summarizes the result keyed by PO natural key
func (r *Result) Report() Report {
	rep := Report{Detalles: make(map[string]Entry, len(r.POs))}
	for _, d := range r.POs {
		switch d.Status {
		case StatusNew:
			rep.Nuevos++
		case StatusModified:
			rep.Modificados++
		default:
			rep.SinCambios++
		}
		rep.Detalles[d.Key] = Entry{PO: d.PO, Status: d.Status, Cambios: d.Cambios()}
	}
	return rep
}

// Cambios flattens the PO, line and sample changes into display rows.
// Empty values render as "-".
func (d PODiff) Cambios() []Change {
	out := make([]Change, 0)
	if d.Status == StatusNew {
		for _, f := range ingest.POFields {
			if v, ok := d.Incoming.Header[f]; ok && v != "" {
				out = append(out, Change{Campo: string(f), Old: "-", New: v})
			}
		}
		for _, l := range d.Lines {
			out = append(out, Change{Campo: l.Incoming.Label(), Old: "-", New: "new line"})
		}
		return out
	}

	for _, c := range d.Changes {
		out = append(out, Change{Campo: string(c.Field), Old: Display(c.Old), New: Display(c.New)})
	}
	for _, l := range d.Lines {
		label := l.Incoming.Label()
		if l.New() {
			out = append(out, Change{Campo: label, Old: "-", New: "new line"})
			continue
		}
		for _, c := range l.Changes {
			out = append(out, Change{Campo: label + " " + string(c.Field), Old: Display(c.Old), New: Display(c.New)})
		}
		for _, s := range l.Samples {
			prefix := fmt.Sprintf("%s %s", label, s.Incoming.Type)
			if s.Missing() {
				out = append(out, Change{Campo: prefix, Old: "-", New: "new sample"})
				continue
			}
			for _, c := range s.Changes {
				out = append(out, Change{Campo: prefix + " " + string(c.Field), Old: Display(c.Old), New: Display(c.New)})
			}
		}
	}
	return out
}

// Display renders an empty value as "-"
func Display(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}
