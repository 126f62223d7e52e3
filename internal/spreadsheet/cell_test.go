package spreadsheet

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCellString(t *testing.T) {
	tests := []struct {
		name string
		cell Cell
		want string
	}{
		{"empty", Empty(), ""},
		{"text is trimmed", Text("  Red  "), "Red"},
		{"integer number", Number(2000), "2000"},
		{"fractional number", Number(18.45), "18.45"},
		{"bool true", Bool(true), "TRUE"},
		{"bool false", Bool(false), "FALSE"},
		{"rich text runs concatenated", RichText("Trial ", "Upper "), "Trial Upper"},
		{"formula uses cached result", Formula("B2*C2", " 369 "), "369"},
		{"formula without result", Formula("B2*C2", ""), ""},
		{"nan never panics", Number(math.NaN()), "NaN"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.cell.String())
		})
	}
}

func TestCellNumber(t *testing.T) {
	n, ok := Number(12.5).Number()
	assert.True(t, ok)
	assert.Equal(t, 12.5, n)

	n, ok = Formula("A1*2", "25").Number()
	assert.True(t, ok)
	assert.Equal(t, 25.0, n)

	_, ok = Formula("A1&B1", "abc").Number()
	assert.False(t, ok)

	_, ok = Text("12.5").Number()
	assert.False(t, ok, "text goes through the locale parser, not here")
}

func TestCellIsEmpty(t *testing.T) {
	assert.True(t, Empty().IsEmpty())
	assert.True(t, Text("   ").IsEmpty())
	assert.True(t, RichText().IsEmpty())
	assert.False(t, Number(0).IsEmpty())
}
