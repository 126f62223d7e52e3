package spreadsheet

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Largest serial the 1900 date system can represent (9999-12-31)
const maxDateSerial = 2958465

var (
	isoDatePattern    = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	dmyDatePattern    = regexp.MustCompile(`^(\d{1,2})[/.\-](\d{1,2})[/.\-](\d{4}|\d{2})$`)
	serialDatePattern = regexp.MustCompile(`^\d+(\.\d+)?$`)
)

// ParseDate converts a locale-formatted date into ISO "YYYY-MM-DD".
// Accepted inputs: ISO dates (optionally followed by a time part), D/M/Y,
// D-M-Y and D.M.Y with 2- or 4-digit years, and spreadsheet date serials.
func ParseDate(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}

	if len(s) > 10 && (s[10] == 'T' || s[10] == ' ') {
		if isoDatePattern.MatchString(s[:10]) {
			s = s[:10]
		}
	}
	if m := isoDatePattern.FindStringSubmatch(s); m != nil {
		y, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		d, _ := strconv.Atoi(m[3])
		return buildDate(y, mo, d)
	}

	if m := dmyDatePattern.FindStringSubmatch(s); m != nil {
		d, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		y, _ := strconv.Atoi(m[3])
		if len(m[3]) == 2 {
			if y >= 70 {
				y += 1900
			} else {
				y += 2000
			}
		}
		return buildDate(y, mo, d)
	}

	if serialDatePattern.MatchString(s) {
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return "", false
		}
		return SerialToDate(n)
	}

	return "", false
}

// SerialToDate converts a spreadsheet date serial (1900 date system) to ISO form
func SerialToDate(serial float64) (string, bool) {
	if math.IsNaN(serial) || serial < 1 || serial > maxDateSerial {
		return "", false
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return "", false
	}
	return t.Format("2006-01-02"), true
}

func buildDate(y, m, d int) (string, bool) {
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return "", false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	// reject overflowing dates such as 31/02
	if t.Day() != d || int(t.Month()) != m {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", y, m, d), true
}

// ParseQuantity keeps only the digits of raw; "2.000" is 2000 pairs.
func ParseQuantity(raw string) int {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0
	}
	n, err := strconv.Atoi(b.String())
	if err != nil {
		return 0
	}
	return n
}

// ParseMoney parses European formatted amounts: dot groups thousands and
// comma separates decimals ("$36.900,00" is 36900.00).
func ParseMoney(raw string) decimal.Decimal {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == ',' || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	s := strings.ReplaceAll(b.String(), ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// CellDate reads a date from a cell, converting numeric serials directly
func CellDate(c Cell) (string, bool) {
	if n, ok := c.Number(); ok {
		return SerialToDate(n)
	}
	return ParseDate(c.String())
}

// CellQuantity reads a non-negative integer quantity from a cell
func CellQuantity(c Cell) int {
	if n, ok := c.Number(); ok {
		if n <= 0 || math.IsNaN(n) || n > math.MaxInt32 {
			return 0
		}
		return int(math.Round(n))
	}
	return ParseQuantity(c.String())
}

// CellMoney reads a monetary amount from a cell. Numeric cells are taken as
// is; text goes through ParseMoney.
func CellMoney(c Cell) decimal.Decimal {
	if n, ok := c.Number(); ok {
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return decimal.Zero
		}
		return decimal.NewFromFloat(n)
	}
	return ParseMoney(c.String())
}
