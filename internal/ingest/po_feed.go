package ingest

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"production-tracking-service/internal/models"
	"production-tracking-service/internal/spreadsheet"
)

// DefaultMaxRows caps the data rows read from one sheet
const DefaultMaxRows = 5000

var (
	ErrMissingPO       = errors.New("first data row has no PO number")
	ErrMissingPOColumn = errors.New("header has no PO column")
)

// LineRecord is one incoming line item with its samples
type LineRecord struct {
	Row       int
	Key       string
	Reference string
	Style     string
	Color     string
	// Values holds the asserted line fields; blank cells are absent
	Values  map[Field]string
	Samples []SampleRecord
}

// Label renders the line identity for messages: "R1/StyleA/Red"
func (l *LineRecord) Label() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{l.Reference, l.Style, l.Color} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "/")
}

// Sample returns the incoming sample of type t, or nil
func (l *LineRecord) Sample(t models.SampleType) *SampleRecord {
	for i := range l.Samples {
		if l.Samples[i].Type == t {
			return &l.Samples[i]
		}
	}
	return nil
}

// merge folds a later duplicate row into l; later non-empty values win
func (l *LineRecord) merge(other *LineRecord) {
	for f, v := range other.Values {
		l.Values[f] = v
	}
	for _, s := range other.Samples {
		if existing := l.Sample(s.Type); existing != nil {
			*existing = s
			continue
		}
		l.Samples = append(l.Samples, s)
	}
}

// POGroup is every row of the sheet that belongs to one PO
type POGroup struct {
	Key string
	PO  string
	Row int
	// Header holds the PO fields asserted by the row that opened the group
	Header map[Field]string
	Lines  []*LineRecord

	lineIndex map[string]int
}

// Line returns the incoming line with key, or nil
func (g *POGroup) Line(key string) *LineRecord {
	if i, ok := g.lineIndex[key]; ok {
		return g.Lines[i]
	}
	return nil
}

// Feed is the mapped content of a purchase order sheet
type Feed struct {
	Groups    []*POGroup
	Warnings  []string
	RowsRead  int
	Truncated bool
}

// LineCount returns the number of distinct incoming lines
func (f *Feed) LineCount() int {
	n := 0
	for _, g := range f.Groups {
		n += len(g.Lines)
	}
	return n
}

type columnPlan struct {
	poCol   int
	fields  map[Field]int
	samples map[models.SampleType]map[SamplePart]int
}

func planColumns(h *spreadsheet.Header) (*columnPlan, error) {
	p := &columnPlan{
		poCol:   -1,
		fields:  make(map[Field]int),
		samples: make(map[models.SampleType]map[SamplePart]int),
	}
	for _, col := range h.Columns {
		target, ok := ResolveColumn(col.Label)
		if !ok {
			continue
		}
		if target.IsSample() {
			parts, ok := p.samples[target.SampleType]
			if !ok {
				parts = make(map[SamplePart]int)
				p.samples[target.SampleType] = parts
			}
			if _, dup := parts[target.Part]; !dup {
				parts[target.Part] = col.Index
			}
			continue
		}
		if _, dup := p.fields[target.Field]; !dup {
			p.fields[target.Field] = col.Index
		}
	}
	col, ok := p.fields[FieldPO]
	if !ok {
		return nil, ErrMissingPOColumn
	}
	p.poCol = col
	return p, nil
}

func (p *columnPlan) cell(g *spreadsheet.Grid, row int, f Field) (spreadsheet.Cell, bool) {
	col, ok := p.fields[f]
	if !ok {
		return spreadsheet.Empty(), false
	}
	c := g.Cell(row, col)
	return c, !c.IsEmpty()
}

func (p *columnPlan) text(g *spreadsheet.Grid, row int, f Field) string {
	c, ok := p.cell(g, row, f)
	if !ok {
		return ""
	}
	return CollapseSpace(c.String())
}

func (p *columnPlan) headerValues(g *spreadsheet.Grid, row int) map[Field]string {
	values := make(map[Field]string)
	for _, f := range POFields {
		c, ok := p.cell(g, row, f)
		if !ok {
			continue
		}
		if IsDateField(f) {
			if d, ok := spreadsheet.CellDate(c); ok {
				values[f] = d
			}
			continue
		}
		values[f] = CollapseSpace(c.String())
	}
	return values
}

func (p *columnPlan) lineRecord(g *spreadsheet.Grid, row int) (*LineRecord, bool) {
	line := &LineRecord{
		Row:       row + 1,
		Reference: p.text(g, row, FieldReference),
		Style:     p.text(g, row, FieldStyle),
		Color:     p.text(g, row, FieldColor),
		Values:    make(map[Field]string),
	}

	for _, f := range []Field{FieldSizeRun, FieldCategory, FieldChannel} {
		if v := p.text(g, row, f); v != "" {
			line.Values[f] = v
		}
	}

	qtyCell, hasQty := p.cell(g, row, FieldQty)
	priceCell, hasPrice := p.cell(g, row, FieldPrice)
	qty := spreadsheet.CellQuantity(qtyCell)
	price := spreadsheet.CellMoney(priceCell).Round(2)
	if hasQty {
		line.Values[FieldQty] = strconv.Itoa(qty)
	}
	if hasPrice {
		line.Values[FieldPrice] = price.StringFixed(2)
	}
	// a zero amount is treated as absent and recomputed
	if amountCell, ok := p.cell(g, row, FieldAmount); ok {
		if amount := spreadsheet.CellMoney(amountCell).Round(2); !amount.IsZero() {
			line.Values[FieldAmount] = amount.StringFixed(2)
		}
	}
	if _, ok := line.Values[FieldAmount]; !ok && hasQty && hasPrice {
		line.Values[FieldAmount] = decimal.NewFromInt(int64(qty)).Mul(price).Round(2).StringFixed(2)
	}

	for _, t := range models.SampleTypes {
		parts, ok := p.samples[t]
		if !ok {
			continue
		}
		var cells SampleCells
		for part, col := range parts {
			cells.set(part, g.Cell(row, col))
		}
		rec := ResolveSample(t, cells)
		if rec == nil {
			continue
		}
		line.Samples = append(line.Samples, *rec)
		if f, ok := milestoneFields[t]; ok && rec.Date != "" {
			line.Values[f] = rec.Date
		}
	}

	if line.Reference == "" && line.Style == "" && line.Color == "" {
		return nil, len(line.Values) > 0 || len(line.Samples) > 0
	}
	line.Key = LineKey(line.Reference, line.Style, line.Color)
	return line, false
}

// MapPOFeed groups the data rows below h into PO groups. A blank PO cell
// continues the previous group; the first data row must carry a PO.
func MapPOFeed(g *spreadsheet.Grid, h *spreadsheet.Header, maxRows int) (*Feed, error) {
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}
	plan, err := planColumns(h)
	if err != nil {
		return nil, err
	}

	feed := &Feed{}
	byKey := make(map[string]*POGroup)
	var current *POGroup

	end := h.DataStart + maxRows
	if end > g.RowCount() {
		end = g.RowCount()
	} else if end < g.RowCount() {
		for r := end; r < g.RowCount(); r++ {
			if !g.RowEmpty(r) {
				feed.Truncated = true
				feed.Warnings = append(feed.Warnings, fmt.Sprintf("only the first %d data rows were read", maxRows))
				break
			}
		}
	}

	for r := h.DataStart; r < end; r++ {
		if g.RowEmpty(r) {
			continue
		}
		feed.RowsRead++

		poText := CollapseSpace(g.Cell(r, plan.poCol).String())
		group := current
		if poText != "" {
			key := POKey(poText)
			group = byKey[key]
			if group == nil {
				group = NewPOGroup(poText)
				group.Row = r + 1
				// only the opening row of a group carries header fields
				for f, v := range plan.headerValues(g, r) {
					group.Header[f] = v
				}
				byKey[key] = group
				feed.Groups = append(feed.Groups, group)
			}
		}
		if group == nil {
			return nil, fmt.Errorf("%w (row %d)", ErrMissingPO, r+1)
		}
		current = group

		line, orphan := plan.lineRecord(g, r)
		if line == nil {
			if orphan {
				feed.Warnings = append(feed.Warnings, fmt.Sprintf("row %d: PO %s has line data without reference, style or color; skipped", r+1, group.PO))
			}
			continue
		}
		if first := group.Line(line.Key); first != nil {
			feed.Warnings = append(feed.Warnings, fmt.Sprintf("row %d: duplicate line %s in PO %s merged into row %d", r+1, line.Label(), group.PO, first.Row))
		}
		group.AddLine(line)
	}

	return feed, nil
}

// NewPOGroup builds an empty group for po
func NewPOGroup(po string) *POGroup {
	return &POGroup{Key: POKey(po), PO: CollapseSpace(po), Header: make(map[Field]string), lineIndex: make(map[string]int)}
}

// AddLine appends a line to the group, merging duplicates by key
func (g *POGroup) AddLine(line *LineRecord) {
	if line.Key == "" {
		line.Key = LineKey(line.Reference, line.Style, line.Color)
	}
	if line.Values == nil {
		line.Values = make(map[Field]string)
	}
	if i, dup := g.lineIndex[line.Key]; dup {
		g.Lines[i].merge(line)
		return
	}
	g.lineIndex[line.Key] = len(g.Lines)
	g.Lines = append(g.Lines, line)
}
