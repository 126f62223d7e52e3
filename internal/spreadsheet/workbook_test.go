package spreadsheet

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", "Feeder 2024"))
	_, err := f.NewSheet("China")
	require.NoError(t, err)

	sheet := "Feeder 2024"
	require.NoError(t, f.SetCellValue(sheet, "A1", "PO"))
	require.NoError(t, f.SetCellValue(sheet, "B1", "CFMs"))
	require.NoError(t, f.MergeCell(sheet, "B1", "D1"))
	require.NoError(t, f.SetCellValue(sheet, "A2", "PO-100"))
	require.NoError(t, f.SetCellValue(sheet, "B2", 12.5))
	require.NoError(t, f.SetCellValue(sheet, "C2", true))
	require.NoError(t, f.SetCellRichText(sheet, "D2", []excelize.RichTextRun{
		{Text: "Trial "},
		{Text: "Upper", Font: &excelize.Font{Bold: true}},
	}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestReadGrid_CellShapesAndMerges(t *testing.T) {
	wb, err := OpenWorkbook(buildWorkbook(t))
	require.NoError(t, err)
	defer wb.Close()

	grid, err := wb.ReadGrid("Feeder 2024", 0)
	require.NoError(t, err)

	assert.Equal(t, "PO", grid.Cell(0, 0).String())
	// merged header copied into every covered column
	assert.Equal(t, "CFMs", grid.Cell(0, 1).String())
	assert.Equal(t, "CFMs", grid.Cell(0, 2).String())
	assert.Equal(t, "CFMs", grid.Cell(0, 3).String())
	assert.True(t, grid.HasHorizontalMerge(0))

	assert.Equal(t, KindNumber, grid.Cell(1, 1).Kind)
	assert.Equal(t, 12.5, grid.Cell(1, 1).Num)
	assert.Equal(t, KindBool, grid.Cell(1, 2).Kind)
	assert.True(t, grid.Cell(1, 2).Bool)
	assert.Equal(t, KindRichText, grid.Cell(1, 3).Kind)
	assert.Equal(t, "Trial Upper", grid.Cell(1, 3).String())

	assert.Equal(t, Empty(), grid.Cell(50, 50))
}

func TestReadGrid_MergeClampedToMaxRows(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "PO"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "PO-100"))
	require.NoError(t, f.MergeCell("Sheet1", "A2", "B6"))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	wb, err := OpenWorkbook(buf)
	require.NoError(t, err)
	defer wb.Close()

	grid, err := wb.ReadGrid("Sheet1", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, grid.RowCount())
	assert.Equal(t, "PO-100", grid.Cell(2, 1).String())
	require.Len(t, grid.Merges, 1)
	assert.Equal(t, 2, grid.Merges[0].EndRow)
}

func TestReadGrid_MaxRows(t *testing.T) {
	wb, err := OpenWorkbook(buildWorkbook(t))
	require.NoError(t, err)
	defer wb.Close()

	grid, err := wb.ReadGrid("Feeder 2024", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, grid.RowCount())
}

func TestOpenWorkbook_Invalid(t *testing.T) {
	_, err := OpenWorkbook(strings.NewReader("not a zip"))
	assert.ErrorIs(t, err, ErrInvalidWorkbook)
}

func TestResolveSheet(t *testing.T) {
	sheets := []string{"Summary", "China PO", "china", "Inspection Report"}

	tests := []struct {
		name    string
		hint    string
		want    string
		wantErr error
	}{
		{"empty hint picks first", "", "Summary", nil},
		{"exact match wins over substring", "china", "china", nil},
		{"case-insensitive match", "SUMMARY", "Summary", nil},
		{"substring match", "inspection", "Inspection Report", nil},
		{"not found", "Vietnam", "", ErrSheetNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := resolveSheet(sheets, tc.hint)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := resolveSheet(nil, "")
	assert.ErrorIs(t, err, ErrEmptyWorkbook)
}

func TestLoadGrid(t *testing.T) {
	grid, err := LoadGrid("feed.xlsx", buildWorkbook(t), SheetSelector{Name: "feeder"}, 0)
	require.NoError(t, err)
	assert.Equal(t, "Feeder 2024", grid.Sheet)

	_, err = LoadGrid("feed.xlsx", buildWorkbook(t), SheetSelector{Name: "Vietnam", Fallback: true}, 0)
	assert.ErrorIs(t, err, ErrSheetNotFound, "fallback only applies to single-sheet workbooks")

	grid, err = LoadGrid("orders.csv", strings.NewReader("PO,REFERENCE,QTY\nPO-1,R1,\"2.000\"\n"), SheetSelector{}, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, grid.RowCount())
	assert.Equal(t, "2.000", grid.Cell(1, 2).String())
	assert.True(t, grid.Cell(0, 9).IsEmpty())

	_, err = LoadGrid("orders.pdf", strings.NewReader(""), SheetSelector{}, 0)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
