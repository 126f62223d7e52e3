package spreadsheet

import (
	"errors"
	"strings"
)

const (
	DefaultScanRows   = 40
	DefaultMinMatches = 3
)

var (
	ErrHeaderNotFound = errors.New("header row not detected")
	ErrNoColumns      = errors.New("no usable columns detected")
)

// Layout describes the header vocabulary of one kind of workbook
type Layout struct {
	Name string
	// Vocabulary holds the labels counted when scoring a candidate header row
	Vocabulary []string
	// SubVocabulary holds the labels that may appear in a second header row
	SubVocabulary []string
	// TwoRow enables detection of a sub-header row below the header
	TwoRow bool
}

// DetectOptions tunes the header scan
type DetectOptions struct {
	ScanRows   int
	MinMatches int
}

// Column is one usable header column
type Column struct {
	Index int
	Top   string
	Sub   string
	// Label is the combined "TOP SUB" label, or Top alone
	Label string
}

// Header is the detected header position and column set
type Header struct {
	Row       int
	SubRow    int
	DataStart int
	Columns   []Column
}

// RowNumber returns the 1-based spreadsheet row of the header
func (h *Header) RowNumber() int {
	return h.Row + 1
}

// NormalizeLabel upper-cases a header label and collapses inner whitespace
func NormalizeLabel(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}

// DetectHeader scans the first rows of the grid and selects the first row
// reaching MinMatches vocabulary labels. The row below is folded in as a
// sub-header when it labels the header's merged spans, or when all its
// non-empty cells belong to the layout's sub-vocabulary.
func DetectHeader(g *Grid, layout Layout, opts DetectOptions) (*Header, error) {
	if opts.ScanRows <= 0 {
		opts.ScanRows = DefaultScanRows
	}
	if opts.MinMatches <= 0 {
		opts.MinMatches = DefaultMinMatches
	}

	vocab := labelSet(layout.Vocabulary)
	best := -1
	limit := opts.ScanRows
	if limit > g.RowCount() {
		limit = g.RowCount()
	}
	for r := 0; r < limit; r++ {
		score := 0
		seen := make(map[string]bool)
		for _, c := range g.Rows[r] {
			label := NormalizeLabel(c.String())
			if label == "" || seen[label] {
				continue
			}
			seen[label] = true
			if vocab[label] {
				score++
			}
		}
		if score >= opts.MinMatches {
			best = r
			break
		}
	}
	if best < 0 {
		return nil, ErrHeaderNotFound
	}

	h := &Header{Row: best, SubRow: -1, DataStart: best + 1}
	if layout.TwoRow && isSubHeader(g, best, layout) {
		h.SubRow = best + 1
		h.DataStart = best + 2
	}

	width := len(g.Rows[best])
	if h.SubRow >= 0 && h.SubRow < g.RowCount() && len(g.Rows[h.SubRow]) > width {
		width = len(g.Rows[h.SubRow])
	}
	for i := 0; i < width; i++ {
		top := strings.TrimSpace(g.Cell(best, i).String())
		sub := ""
		if h.SubRow >= 0 {
			sub = strings.TrimSpace(g.Cell(h.SubRow, i).String())
		}
		label := top
		if sub != "" && NormalizeLabel(sub) != NormalizeLabel(top) {
			if top == "" {
				label = sub
			} else {
				label = top + " " + sub
			}
		}
		if label == "" {
			continue
		}
		h.Columns = append(h.Columns, Column{Index: i, Top: top, Sub: sub, Label: label})
	}
	if len(h.Columns) == 0 {
		return nil, ErrNoColumns
	}
	return h, nil
}

func isSubHeader(g *Grid, row int, layout Layout) bool {
	next := row + 1
	if next >= g.RowCount() || g.RowEmpty(next) {
		return false
	}
	if g.HasHorizontalMerge(row) && labelsMergedSpans(g, row) {
		return true
	}
	if len(layout.SubVocabulary) == 0 {
		return false
	}
	sub := labelSet(layout.SubVocabulary)
	for _, c := range g.Rows[next] {
		label := NormalizeLabel(c.String())
		if label != "" && !sub[label] {
			return false
		}
	}
	return true
}

// labelsMergedSpans reports whether the row below a merged header holds text
// labels under the merged spans and only blanks or repeated header labels
// elsewhere. A data row fails because its key columns differ from the header.
func labelsMergedSpans(g *Grid, row int) bool {
	next := row + 1
	spanned := make(map[int]bool)
	for _, m := range g.Merges {
		if m.StartRow != row || !m.Horizontal() {
			continue
		}
		for c := m.StartCol; c <= m.EndCol; c++ {
			spanned[c] = true
		}
	}

	labels := 0
	for i, c := range g.Rows[next] {
		if c.IsEmpty() {
			continue
		}
		if spanned[i] {
			if c.Kind != KindText && c.Kind != KindRichText {
				return false
			}
			labels++
			continue
		}
		if NormalizeLabel(c.String()) != NormalizeLabel(g.Cell(row, i).String()) {
			return false
		}
	}
	return labels > 0
}

func labelSet(labels []string) map[string]bool {
	set := make(map[string]bool, len(labels))
	for _, l := range labels {
		set[NormalizeLabel(l)] = true
	}
	return set
}
