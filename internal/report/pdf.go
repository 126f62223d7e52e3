package report

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"production-tracking-service/internal/models"
)

// characters per full-width line at size 8
const charsPerLine = 110

// AuditPDF renders the audit report of a run as a PDF
func AuditPDF(run *models.ImportRun) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber().
		WithLeftMargin(10).
		WithTopMargin(15).
		WithRightMargin(10).
		Build()

	m := maroto.New(cfg)

	addPDFHeader(m, run)
	addPDFSummary(m, run)
	for _, s := range Sections(run) {
		addPDFSection(m, s)
	}

	pdfDoc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return pdfDoc.GetBytes(), nil
}

func addPDFHeader(m core.Maroto, run *models.ImportRun) {
	m.AddRow(12,
		col.New(8).Add(
			text.New("Import audit report", props.Text{
				Size:  16,
				Style: fontstyle.Bold,
				Align: align.Left,
			}),
		),
		col.New(4).Add(
			text.New(string(run.Status), props.Text{
				Size:  12,
				Style: fontstyle.Bold,
				Align: align.Right,
			}),
		),
	)

	for _, l := range headerLines(run) {
		m.AddRow(5, text.NewCol(12, l, props.Text{Size: 9, Align: align.Left}))
	}
	m.AddRow(5, line.NewCol(12))
}

func addPDFSummary(m core.Maroto, run *models.ImportRun) {
	for _, l := range Summary(run) {
		m.AddRow(6, text.NewCol(12, l, props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Left}))
	}
}

func addPDFSection(m core.Maroto, s Section) {
	m.AddRow(4)
	m.AddRow(8, text.NewCol(12, fmt.Sprintf("%s (%d)", s.Title, len(s.Lines)), props.Text{
		Size:  12,
		Style: fontstyle.Bold,
		Align: align.Left,
	}))
	m.AddRow(2, line.NewCol(12))

	if len(s.Lines) == 0 {
		m.AddRow(5, text.NewCol(12, "(none)", props.Text{Size: 8, Style: fontstyle.Italic}))
		return
	}
	for _, l := range s.Lines {
		m.AddRow(rowHeight(l), text.NewCol(12, "- "+l, props.Text{Size: 8, Align: align.Left}))
	}
}

func rowHeight(s string) float64 {
	n := len(s)/charsPerLine + 1
	return float64(4 * n)
}
