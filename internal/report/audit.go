package report

import (
	"fmt"
	"strings"
	"time"

	"production-tracking-service/internal/models"
)

const (
	FormatText = "txt"
	FormatPDF  = "pdf"
)

// Section is one labelled list of the audit report
type Section struct {
	Title string
	Lines []string
}

// Sections returns CAMBIOS, AVISOS and ERRORES in display order
func Sections(run *models.ImportRun) []Section {
	return []Section{
		{Title: "CAMBIOS", Lines: run.Cambios},
		{Title: "AVISOS", Lines: run.Avisos},
		{Title: "ERRORES", Lines: run.Errores},
	}
}

// Summary lists the counters relevant to the run kind
func Summary(run *models.ImportRun) []string {
	if run.Kind == models.ImportKindCatalog {
		return []string{fmt.Sprintf("Imported unique: %d", run.ImportedUnique)}
	}

	lines := []string{
		fmt.Sprintf("POs encontrados: %d", run.POsEncontrados),
		fmt.Sprintf("Lineas actualizadas: %d", run.LineasActualizadas),
		fmt.Sprintf("Muestras actualizadas: %d", run.MuestrasActualizadas),
	}
	if run.Kind == models.ImportKindPurchaseOrders {
		lines = append(lines, fmt.Sprintf("Nuevos: %d  Modificados: %d  Sin cambios: %d", run.Nuevos, run.Modificados, run.SinCambios))
	}
	return lines
}

func headerLines(run *models.ImportRun) []string {
	return []string{
		fmt.Sprintf("Report: %s", run.ID),
		fmt.Sprintf("Kind: %s", run.Kind),
		fmt.Sprintf("File: %s", run.Filename),
		fmt.Sprintf("Sheet: %s (header row %d)", run.Sheet, run.HeaderRow),
		fmt.Sprintf("Status: %s", run.Status),
		fmt.Sprintf("Date: %s", run.CreatedAt.UTC().Format(time.RFC3339)),
	}
}

// AuditText renders the plain-text audit report of a run
func AuditText(run *models.ImportRun) []byte {
	var b strings.Builder

	b.WriteString("IMPORT AUDIT REPORT\n")
	for _, l := range headerLines(run) {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	for _, l := range Summary(run) {
		b.WriteString(l)
		b.WriteByte('\n')
	}

	for _, s := range Sections(run) {
		fmt.Fprintf(&b, "\n=== %s (%d) ===\n", s.Title, len(s.Lines))
		if len(s.Lines) == 0 {
			b.WriteString("(none)\n")
			continue
		}
		for _, l := range s.Lines {
			b.WriteString("- ")
			b.WriteString(l)
			b.WriteByte('\n')
		}
	}
	return []byte(b.String())
}

// ContentType returns the MIME type and file extension of a format
func ContentType(format string) (string, bool) {
	switch format {
	case FormatText:
		return "text/plain; charset=utf-8", true
	case FormatPDF:
		return "application/pdf", true
	default:
		return "", false
	}
}

// Render dispatches on format
func Render(run *models.ImportRun, format string) ([]byte, error) {
	switch format {
	case FormatText:
		return AuditText(run), nil
	case FormatPDF:
		return AuditPDF(run)
	default:
		return nil, fmt.Errorf("unsupported report format %q", format)
	}
}
