package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"production-tracking-service/internal/models"
)

func feedRun() *models.ImportRun {
	return &models.ImportRun{
		ID:                   uuid.MustParse("5b0c3e52-2b8e-4d7a-9a53-0f3c9e9e1a10"),
		Kind:                 models.ImportKindProductionFeed,
		Status:               models.ImportStatusPartial,
		Filename:             "feed.xlsx",
		Sheet:                "China",
		HeaderRow:            3,
		POsEncontrados:       2,
		LineasActualizadas:   1,
		MuestrasActualizadas: 3,
		Cambios:              []string{"PO-1 R1/StyleA/Red CFM: fecha_muestra - -> 2025-01-15"},
		Errores:              []string{"row 9 PO PO-7: not found"},
		CreatedAt:            time.Date(2025, 1, 20, 9, 30, 0, 0, time.UTC),
	}
}

func TestAuditText_Sections(t *testing.T) {
	out := string(AuditText(feedRun()))

	assert.Contains(t, out, "Sheet: China (header row 3)")
	assert.Contains(t, out, "POs encontrados: 2")
	assert.Contains(t, out, "Muestras actualizadas: 3")
	assert.Contains(t, out, "=== CAMBIOS (1) ===\n- PO-1 R1/StyleA/Red CFM: fecha_muestra - -> 2025-01-15\n")
	assert.Contains(t, out, "=== AVISOS (0) ===\n(none)\n")
	assert.Contains(t, out, "=== ERRORES (1) ===\n- row 9 PO PO-7: not found\n")

	cambios := strings.Index(out, "CAMBIOS")
	avisos := strings.Index(out, "AVISOS")
	errores := strings.Index(out, "ERRORES")
	assert.True(t, cambios < avisos && avisos < errores)
}

func TestSummary_ByKind(t *testing.T) {
	catalog := &models.ImportRun{Kind: models.ImportKindCatalog, ImportedUnique: 4}
	assert.Equal(t, []string{"Imported unique: 4"}, Summary(catalog))

	pos := &models.ImportRun{Kind: models.ImportKindPurchaseOrders, Nuevos: 1, Modificados: 2, SinCambios: 3}
	summary := Summary(pos)
	require.Len(t, summary, 4)
	assert.Equal(t, "Nuevos: 1  Modificados: 2  Sin cambios: 3", summary[3])
}

func TestAuditPDF_Generates(t *testing.T) {
	data, err := AuditPDF(feedRun())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestRender(t *testing.T) {
	run := feedRun()

	txt, err := Render(run, FormatText)
	require.NoError(t, err)
	assert.Equal(t, AuditText(run), txt)

	_, err = Render(run, "docx")
	assert.Error(t, err)
}

func TestContentType(t *testing.T) {
	ct, ok := ContentType(FormatPDF)
	assert.True(t, ok)
	assert.Equal(t, "application/pdf", ct)

	_, ok = ContentType("html")
	assert.False(t, ok)
}

func TestRowHeight(t *testing.T) {
	assert.Equal(t, 4.0, rowHeight("short"))
	assert.Equal(t, 8.0, rowHeight(strings.Repeat("x", charsPerLine+1)))
}
