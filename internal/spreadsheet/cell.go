package spreadsheet

import (
	"fmt"
	"strconv"
	"strings"
)

// CellKind tags the shape of a raw spreadsheet value
type CellKind int

const (
	KindEmpty CellKind = iota
	KindText
	KindNumber
	KindBool
	KindRichText
	KindFormula
)

// Cell is a tagged union over the shapes a worksheet cell can hold.
// Only the fields matching Kind are meaningful.
type Cell struct {
	Kind    CellKind
	Text    string
	Num     float64
	Bool    bool
	Runs    []string
	Formula string
	Result  string
}

func Empty() Cell { return Cell{Kind: KindEmpty} }

func Text(s string) Cell { return Cell{Kind: KindText, Text: s} }

func Number(n float64) Cell { return Cell{Kind: KindNumber, Num: n} }

func Bool(b bool) Cell { return Cell{Kind: KindBool, Bool: b} }

func RichText(runs ...string) Cell { return Cell{Kind: KindRichText, Runs: runs} }

// Formula builds a formula cell carrying the cached result of its last evaluation
func Formula(expr, result string) Cell {
	return Cell{Kind: KindFormula, Formula: expr, Result: result}
}

// String returns the trimmed display text of the cell. It never fails:
// unknown shapes degrade to a best-effort coercion.
func (c Cell) String() string {
	switch c.Kind {
	case KindEmpty:
		return ""
	case KindText:
		return strings.TrimSpace(c.Text)
	case KindNumber:
		return strings.TrimSpace(strconv.FormatFloat(c.Num, 'f', -1, 64))
	case KindBool:
		if c.Bool {
			return "TRUE"
		}
		return "FALSE"
	case KindRichText:
		return strings.TrimSpace(strings.Join(c.Runs, ""))
	case KindFormula:
		return strings.TrimSpace(c.Result)
	}
	return strings.TrimSpace(fmt.Sprint(c.Text))
}

// IsEmpty reports whether the cell normalizes to an empty string
func (c Cell) IsEmpty() bool {
	return c.String() == ""
}

// Number returns the numeric content of number cells and of formulas whose
// cached result is numeric.
func (c Cell) Number() (float64, bool) {
	switch c.Kind {
	case KindNumber:
		return c.Num, true
	case KindFormula:
		n, err := strconv.ParseFloat(strings.TrimSpace(c.Result), 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}
