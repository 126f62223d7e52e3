package spreadsheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{"iso", "2024-03-01", "2024-03-01", true},
		{"iso with time", "2024-03-01T10:30:00Z", "2024-03-01", true},
		{"iso with space time", "2024-03-01 00:00:00", "2024-03-01", true},
		{"day first slash", "05/03/2024", "2024-03-05", true},
		{"day first dash short year", "5-3-24", "2024-03-05", true},
		{"day first dots", "05.03.2024", "2024-03-05", true},
		{"short year last century", "01/01/95", "1995-01-01", true},
		{"serial", "45352", "2024-03-01", true},
		{"empty", "", "", false},
		{"blank", "   ", "", false},
		{"text", "pending", "", false},
		{"overflowing day", "31/02/2024", "", false},
		{"month out of range", "01/13/2024", "", false},
		{"invalid iso", "2024-13-01", "", false},
		{"zero serial", "0", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseDate(tc.input)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseQuantity(t *testing.T) {
	assert.Equal(t, 2000, ParseQuantity("2.000"))
	assert.Equal(t, 1200, ParseQuantity("1,200 prs"))
	assert.Equal(t, 0, ParseQuantity(""))
	assert.Equal(t, 0, ParseQuantity("n/a"))
	assert.Equal(t, 0, ParseQuantity("99999999999999999999999"))
}

func TestParseMoney(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"$36.900,00", "36900.00"},
		{"$18,45", "18.45"},
		{"1.234.567,89 EUR", "1234567.89"},
		{"20", "20.00"},
		{"", "0.00"},
		{"-", "0.00"},
		{"abc", "0.00"},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseMoney(tc.input).StringFixed(2))
		})
	}
}

func TestCellDate(t *testing.T) {
	got, ok := CellDate(Number(45352))
	assert.True(t, ok)
	assert.Equal(t, "2024-03-01", got)

	got, ok = CellDate(Text("05/03/2024"))
	assert.True(t, ok)
	assert.Equal(t, "2024-03-05", got)

	_, ok = CellDate(Empty())
	assert.False(t, ok)
}

func TestCellMoneyAndQuantity(t *testing.T) {
	// numeric cells are not subject to the thousands separator rule
	assert.Equal(t, "10.50", CellMoney(Number(10.5)).StringFixed(2))
	assert.Equal(t, "18.45", CellMoney(Text("$18,45")).StringFixed(2))

	assert.Equal(t, 2000, CellQuantity(Number(2000)))
	assert.Equal(t, 2000, CellQuantity(Text("2.000")))
	assert.Equal(t, 0, CellQuantity(Number(-5)))
}
