package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNaturalKey(t *testing.T) {
	assert.Equal(t, "PO-100", POKey("  po-100 "))
	assert.Equal(t, "PO 100", POKey("po   100"))
	assert.Equal(t, "R1|STYLE A|RED", LineKey(" r1", "Style  A", "red "))
	assert.Equal(t, "R1||RED", LineKey("R1", "", "Red"))
	assert.Equal(t, "material::nappa leather", CatalogKey("material", "  Nappa   LEATHER "))
	assert.Equal(t, "CFM", SampleKey("cfm"))
	assert.Equal(t, "", NaturalKey(KindCatalog, "material"))
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"Material", "material"},
		{"  MATERIAL ", "material"},
		{"Last No.", "last_no"},
		{"Tacón / Heel", "tacon_heel"},
		{"Suela / Sole Nº", "suela_sole_n"},
		{"***", ""},
	}

	for _, tc := range tests {
		t.Run(tc.label, func(t *testing.T) {
			assert.Equal(t, tc.want, Slugify(tc.label))
		})
	}
}

func TestCodeFor(t *testing.T) {
	assert.Equal(t, "NAPPA-LEATHER", CodeFor("Nappa  Leather"))
	assert.Equal(t, "PIEL-ANTE", CodeFor("Piel ante"))
}
