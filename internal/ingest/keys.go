package ingest

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"production-tracking-service/internal/models"
)

// EntityKind selects the normalization applied by NaturalKey
type EntityKind string

const (
	KindPurchaseOrder EntityKind = "purchase_order"
	KindLine          EntityKind = "line"
	KindSample        EntityKind = "sample"
	KindCatalog       EntityKind = "catalog"
)

// NaturalKey builds the lookup key of an entity. Parse-time deduplication
// and store reconciliation both go through this function so the two can
// never disagree.
func NaturalKey(kind EntityKind, parts ...string) string {
	switch kind {
	case KindPurchaseOrder:
		if len(parts) == 0 {
			return ""
		}
		return strings.ToUpper(CollapseSpace(parts[0]))
	case KindLine:
		keys := make([]string, len(parts))
		for i, p := range parts {
			keys[i] = strings.ToUpper(CollapseSpace(p))
		}
		return strings.Join(keys, "|")
	case KindSample:
		if len(parts) == 0 {
			return ""
		}
		return strings.ToUpper(CollapseSpace(parts[0]))
	case KindCatalog:
		if len(parts) < 2 {
			return ""
		}
		return parts[0] + "::" + NameKey(parts[1])
	}
	return strings.Join(parts, "|")
}

// POKey normalizes a PO number
func POKey(po string) string {
	return NaturalKey(KindPurchaseOrder, po)
}

// LineKey normalizes the reference/style/color identity of a line
func LineKey(reference, style, color string) string {
	return NaturalKey(KindLine, reference, style, color)
}

// SampleKey normalizes a sample type for lookups
func SampleKey(t models.SampleType) string {
	return NaturalKey(KindSample, string(t))
}

// CatalogKey builds the (category, name) identity of a catalog row
func CatalogKey(category, name string) string {
	return NaturalKey(KindCatalog, category, name)
}

// NameKey is the case-insensitive form of a catalog name
func NameKey(name string) string {
	return strings.ToLower(CollapseSpace(name))
}

// CollapseSpace trims s and collapses inner whitespace runs to one space
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Slugify turns a header label into a category token:
// "Suela / Sole Nº" becomes "suela_sole_n".
func Slugify(label string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, label)
	if err != nil {
		folded = label
	}

	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}

// CodeFor derives the catalog code of a name: "Nappa Leather" is NAPPA-LEATHER
func CodeFor(name string) string {
	return strings.ToUpper(strings.ReplaceAll(Slugify(name), "_", "-"))
}
