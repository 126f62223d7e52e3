package spreadsheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	ErrInvalidWorkbook   = errors.New("file is not a readable workbook")
	ErrSheetNotFound     = errors.New("worksheet not found")
	ErrEmptyWorkbook     = errors.New("workbook has no worksheets")
	ErrUnsupportedFormat = errors.New("unsupported file format, use .xlsx or .csv")
)

// MergeRange is an inclusive, zero-based rectangle of merged cells
type MergeRange struct {
	StartRow, StartCol int
	EndRow, EndCol     int
}

// Horizontal reports whether the range spans more than one column
func (m MergeRange) Horizontal() bool {
	return m.EndCol > m.StartCol
}

// Grid is an in-memory, zero-indexed copy of one worksheet
type Grid struct {
	Sheet  string
	Rows   [][]Cell
	Merges []MergeRange
}

// NewGrid builds a grid from already typed cells, used for CSV input and tests
func NewGrid(sheet string, rows [][]Cell) *Grid {
	return &Grid{Sheet: sheet, Rows: rows}
}

// Cell returns the cell at row, col or an empty cell when out of bounds
func (g *Grid) Cell(row, col int) Cell {
	if row < 0 || row >= len(g.Rows) || col < 0 || col >= len(g.Rows[row]) {
		return Empty()
	}
	return g.Rows[row][col]
}

// RowCount returns the number of materialized rows
func (g *Grid) RowCount() int {
	return len(g.Rows)
}

// RowEmpty reports whether every cell in the row is blank
func (g *Grid) RowEmpty(row int) bool {
	if row < 0 || row >= len(g.Rows) {
		return true
	}
	for _, c := range g.Rows[row] {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}

// HasHorizontalMerge reports whether a merge spanning several columns starts on row
func (g *Grid) HasHorizontalMerge(row int) bool {
	for _, m := range g.Merges {
		if m.StartRow == row && m.Horizontal() {
			return true
		}
	}
	return false
}

// expandMerges copies the top-left value of every merged range into each
// covered position so the header detector sees the label on both rows.
func (g *Grid) expandMerges() {
	for _, m := range g.Merges {
		src := g.Cell(m.StartRow, m.StartCol)
		for r := m.StartRow; r <= m.EndRow; r++ {
			for c := m.StartCol; c <= m.EndCol; c++ {
				if r == m.StartRow && c == m.StartCol {
					continue
				}
				g.set(r, c, src)
			}
		}
	}
}

func (g *Grid) set(row, col int, c Cell) {
	for len(g.Rows) <= row {
		g.Rows = append(g.Rows, nil)
	}
	for len(g.Rows[row]) <= col {
		g.Rows[row] = append(g.Rows[row], Empty())
	}
	g.Rows[row][col] = c
}

// Workbook wraps an opened xlsx file
type Workbook struct {
	file *excelize.File
}

// OpenWorkbook reads an xlsx document from r
func OpenWorkbook(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
	}
	return &Workbook{file: f}, nil
}

func (w *Workbook) Close() error {
	return w.file.Close()
}

// SheetNames lists the worksheets in workbook order
func (w *Workbook) SheetNames() []string {
	return w.file.GetSheetList()
}

// ResolveSheet chooses the worksheet for hint: an exact name match first,
// then a case-insensitive match, then the first sheet whose name contains
// the hint. An empty hint selects the first sheet.
func (w *Workbook) ResolveSheet(hint string) (string, error) {
	return resolveSheet(w.SheetNames(), hint)
}

func resolveSheet(sheets []string, hint string) (string, error) {
	if len(sheets) == 0 {
		return "", ErrEmptyWorkbook
	}
	hint = strings.TrimSpace(hint)
	if hint == "" {
		return sheets[0], nil
	}
	for _, s := range sheets {
		if s == hint {
			return s, nil
		}
	}
	for _, s := range sheets {
		if strings.EqualFold(strings.TrimSpace(s), hint) {
			return s, nil
		}
	}
	lower := strings.ToLower(hint)
	for _, s := range sheets {
		if strings.Contains(strings.ToLower(s), lower) {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q (available: %s)", ErrSheetNotFound, hint, strings.Join(sheets, ", "))
}

// ReadGrid materializes up to maxRows rows of sheet, keeping raw cell
// shapes and expanding merged ranges. maxRows <= 0 reads every row.
func (w *Workbook) ReadGrid(sheet string, maxRows int) (*Grid, error) {
	rows, err := w.file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if maxRows > 0 && len(rows) > maxRows {
		rows = rows[:maxRows]
	}

	grid := &Grid{Sheet: sheet, Rows: make([][]Cell, len(rows))}
	for r, row := range rows {
		cells := make([]Cell, len(row))
		for c, raw := range row {
			axis, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				cells[c] = Text(raw)
				continue
			}
			cells[c] = w.cellAt(sheet, axis, raw)
		}
		grid.Rows[r] = cells
	}

	merges, err := w.file.GetMergeCells(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read merged cells of %q: %w", sheet, err)
	}
	for _, mc := range merges {
		sc, sr, err := excelize.CellNameToCoordinates(mc.GetStartAxis())
		if err != nil {
			continue
		}
		ec, er, err := excelize.CellNameToCoordinates(mc.GetEndAxis())
		if err != nil {
			continue
		}
		if maxRows > 0 && sr > maxRows {
			continue
		}
		if maxRows > 0 && er > maxRows {
			er = maxRows
		}
		grid.Merges = append(grid.Merges, MergeRange{StartRow: sr - 1, StartCol: sc - 1, EndRow: er - 1, EndCol: ec - 1})
	}
	grid.expandMerges()

	return grid, nil
}

func (w *Workbook) cellAt(sheet, axis, raw string) Cell {
	if formula, err := w.file.GetCellFormula(sheet, axis); err == nil && formula != "" {
		return Formula(formula, raw)
	}
	if raw == "" {
		return Empty()
	}

	typ, err := w.file.GetCellType(sheet, axis)
	if err != nil {
		return Text(raw)
	}
	switch typ {
	case excelize.CellTypeBool:
		return Bool(raw == "1" || strings.EqualFold(raw, "true"))
	case excelize.CellTypeNumber, excelize.CellTypeDate, excelize.CellTypeUnset:
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return Number(n)
		}
		return Text(raw)
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString:
		if runs, err := w.file.GetCellRichText(sheet, axis); err == nil && len(runs) > 0 {
			texts := make([]string, len(runs))
			for i, run := range runs {
				texts[i] = run.Text
			}
			return RichText(texts...)
		}
		return Text(raw)
	}
	return Text(raw)
}

// ReadCSV loads a comma separated upload as a single text-only grid
func ReadCSV(r io.Reader, maxRows int) (*Grid, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	grid := &Grid{Sheet: "csv"}
	for {
		if maxRows > 0 && len(grid.Rows) >= maxRows {
			break
		}
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
		}
		cells := make([]Cell, len(record))
		for i, v := range record {
			if strings.TrimSpace(v) == "" {
				cells[i] = Empty()
			} else {
				cells[i] = Text(v)
			}
		}
		grid.Rows = append(grid.Rows, cells)
	}
	return grid, nil
}

// SheetSelector names the worksheet to read. When Fallback is set and the
// name is not found, a workbook with a single sheet uses that sheet.
type SheetSelector struct {
	Name     string
	Fallback bool
}

// LoadGrid opens an upload by file extension and returns the grid of the
// selected sheet. CSV uploads have a single implicit sheet.
func LoadGrid(filename string, r io.Reader, sel SheetSelector, maxRows int) (*Grid, error) {
	name := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(name, ".csv"):
		return ReadCSV(r, maxRows)
	case strings.HasSuffix(name, ".xlsx"), strings.HasSuffix(name, ".xlsm"):
		wb, err := OpenWorkbook(r)
		if err != nil {
			return nil, err
		}
		defer wb.Close()
		sheet, err := wb.ResolveSheet(sel.Name)
		if errors.Is(err, ErrSheetNotFound) && sel.Fallback && len(wb.SheetNames()) == 1 {
			sheet, err = wb.SheetNames()[0], nil
		}
		if err != nil {
			return nil, err
		}
		return wb.ReadGrid(sheet, maxRows)
	}
	return nil, ErrUnsupportedFormat
}
