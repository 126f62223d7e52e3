package ingest

import (
	"strconv"
	"strings"

	"production-tracking-service/internal/models"
	"production-tracking-service/internal/spreadsheet"
)

// SampleRecord is the incoming state of one sample type for a line
type SampleRecord struct {
	Type   models.SampleType
	Round  *int
	Date   string
	Status models.SampleStatus
	Note   string
}

// Values returns the asserted sample fields. A No Need sample asserts an
// empty date and round so that stale values are cleared.
func (s SampleRecord) Values() map[Field]string {
	v := map[Field]string{FieldEstadoMuestra: string(s.Status)}
	if s.Status == models.SampleStatusNoNeed {
		v[FieldFechaMuestra] = ""
		v[FieldRound] = ""
		return v
	}
	if s.Date != "" {
		v[FieldFechaMuestra] = s.Date
	}
	if s.Round != nil {
		v[FieldRound] = strconv.Itoa(*s.Round)
	}
	return v
}

// SampleCells are the raw cells of one sample column group
type SampleCells struct {
	Round    spreadsheet.Cell
	Date     spreadsheet.Cell
	Approval spreadsheet.Cell
	Status   spreadsheet.Cell
}

func (c *SampleCells) set(part SamplePart, cell spreadsheet.Cell) {
	switch part {
	case PartRound:
		c.Round = cell
	case PartDate:
		c.Date = cell
	case PartApproval:
		c.Approval = cell
	case PartStatus:
		c.Status = cell
	}
}

// ResolveSample applies the sample state machine:
//
//	N/N in round or status  -> No Need, no date, no round
//	parseable approval date -> Confirmed on that date
//	parseable sample date   -> In Progress, not confirmed
//	otherwise               -> no record
func ResolveSample(t models.SampleType, cells SampleCells) *SampleRecord {
	if isNoNeed(cells.Round.String()) || isNoNeed(cells.Status.String()) || isNoNeed(cells.Date.String()) {
		return &SampleRecord{Type: t, Status: models.SampleStatusNoNeed, Note: "N/N: sample not needed"}
	}

	round := parseRound(cells.Round)
	if d, ok := spreadsheet.CellDate(cells.Approval); ok {
		return &SampleRecord{Type: t, Round: round, Date: d, Status: models.SampleStatusConfirmed, Note: "Confirmed " + d}
	}
	if d, ok := spreadsheet.CellDate(cells.Date); ok {
		if isConfirmed(cells.Status.String()) {
			return &SampleRecord{Type: t, Round: round, Date: d, Status: models.SampleStatusConfirmed, Note: "Confirmed " + d}
		}
		return &SampleRecord{Type: t, Round: round, Date: d, Status: models.SampleStatusInProgress, Note: "Sent " + d + ", not confirmed"}
	}
	return nil
}

func isNoNeed(s string) bool {
	switch spreadsheet.NormalizeLabel(s) {
	case "N/N", "NO NEED", "NOT NEEDED":
		return true
	}
	return false
}

func isConfirmed(s string) bool {
	switch spreadsheet.NormalizeLabel(s) {
	case "CONFIRMED", "APPROVED", "OK":
		return true
	}
	return false
}

// parseRound reads "2", 2 or "Round 2" as 2. Zero or missing is nil.
func parseRound(c spreadsheet.Cell) *int {
	if n, ok := c.Number(); ok {
		if n < 1 || n > 1000 {
			return nil
		}
		r := int(n)
		return &r
	}
	s := c.String()
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if b.Len() > 0 {
			break
		}
	}
	if b.Len() == 0 {
		return nil
	}
	r, err := strconv.Atoi(b.String())
	if err != nil || r < 1 {
		return nil
	}
	return &r
}
