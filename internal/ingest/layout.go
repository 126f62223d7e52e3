package ingest

import (
	"sort"
	"strings"

	"production-tracking-service/internal/models"
	"production-tracking-service/internal/spreadsheet"
)

// Field names an entity attribute. Values double as column names in the store.
type Field string

// Purchase order fields
const (
	FieldPO               Field = "po"
	FieldSupplier         Field = "supplier"
	FieldFactory          Field = "factory"
	FieldCustomer         Field = "customer"
	FieldSeason           Field = "season"
	FieldCategory         Field = "category"
	FieldChannel          Field = "channel"
	FieldCurrency         Field = "currency"
	FieldPODate           Field = "po_date"
	FieldETD              Field = "etd"
	FieldBooking          Field = "booking"
	FieldClosing          Field = "closing"
	FieldShippingDate     Field = "shipping_date"
	FieldInspectionStatus Field = "inspection_status"
)

// Line item fields
const (
	FieldReference    Field = "reference"
	FieldStyle        Field = "style"
	FieldColor        Field = "color"
	FieldSizeRun      Field = "size_run"
	FieldQty          Field = "qty"
	FieldPrice        Field = "price"
	FieldAmount       Field = "amount"
	FieldTrialUpper   Field = "trial_upper"
	FieldTrialLasting Field = "trial_lasting"
	FieldLasting      Field = "lasting"
	FieldFinishDate   Field = "finish_date"
)

// Sample fields
const (
	FieldRound         Field = "round"
	FieldFechaMuestra  Field = "fecha_muestra"
	FieldEstadoMuestra Field = "estado_muestra"
)

var (
	POFields = []Field{
		FieldSupplier, FieldFactory, FieldCustomer, FieldSeason, FieldCategory, FieldChannel,
		FieldCurrency, FieldPODate, FieldETD, FieldBooking, FieldClosing, FieldShippingDate,
		FieldInspectionStatus,
	}
	LineFields = []Field{
		FieldSizeRun, FieldQty, FieldPrice, FieldAmount, FieldCategory, FieldChannel,
		FieldTrialUpper, FieldTrialLasting, FieldLasting, FieldFinishDate,
	}
	SampleFields = []Field{FieldRound, FieldFechaMuestra, FieldEstadoMuestra}
)

// IsDateField reports whether values of f are ISO dates
func IsDateField(f Field) bool {
	switch f {
	case FieldPODate, FieldETD, FieldBooking, FieldClosing, FieldShippingDate,
		FieldTrialUpper, FieldTrialLasting, FieldLasting, FieldFinishDate, FieldFechaMuestra:
		return true
	}
	return false
}

// SamplePart is the role of a column inside a sample column group
type SamplePart string

const (
	PartDate     SamplePart = "date"
	PartRound    SamplePart = "round"
	PartApproval SamplePart = "approval"
	PartStatus   SamplePart = "status"
)

var fieldAliases = map[string]Field{
	"PO":                FieldPO,
	"PO #":              FieldPO,
	"PO#":               FieldPO,
	"PO NO":             FieldPO,
	"PO NO.":            FieldPO,
	"PO NUMBER":         FieldPO,
	"ORDER":             FieldPO,
	"SUPPLIER":          FieldSupplier,
	"VENDOR":            FieldSupplier,
	"FACTORY":           FieldFactory,
	"CUSTOMER":          FieldCustomer,
	"CLIENT":            FieldCustomer,
	"SEASON":            FieldSeason,
	"CATEGORY":          FieldCategory,
	"CHANNEL":           FieldChannel,
	"CURRENCY":          FieldCurrency,
	"PO DATE":           FieldPODate,
	"ORDER DATE":        FieldPODate,
	"ETD":               FieldETD,
	"BOOKING":           FieldBooking,
	"BOOKING DATE":      FieldBooking,
	"CLOSING":           FieldClosing,
	"CLOSING DATE":      FieldClosing,
	"SHIPPING DATE":     FieldShippingDate,
	"SHIP DATE":         FieldShippingDate,
	"INSPECTION STATUS": FieldInspectionStatus,
	"INSPECTION RESULT": FieldInspectionStatus,
	"REFERENCE":         FieldReference,
	"REF":               FieldReference,
	"REF.":              FieldReference,
	"STYLE":             FieldStyle,
	"STYLE NAME":        FieldStyle,
	"COLOR":             FieldColor,
	"COLOUR":            FieldColor,
	"SIZE RUN":          FieldSizeRun,
	"SIZES":             FieldSizeRun,
	"QTY":               FieldQty,
	"QUANTITY":          FieldQty,
	"PAIRS":             FieldQty,
	"PRICE":             FieldPrice,
	"UNIT PRICE":        FieldPrice,
	"FOB":               FieldPrice,
	"AMOUNT":            FieldAmount,
	"TOTAL":             FieldAmount,
	"TOTAL AMOUNT":      FieldAmount,
}

type sampleAlias struct {
	alias string
	typ   models.SampleType
}

// sorted longest first so "TRIAL LASTING" wins over "LASTING"
var sampleAliases = sortAliases([]sampleAlias{
	{"CFM", models.SampleTypeCFM},
	{"CFMS", models.SampleTypeCFM},
	{"CFM'S", models.SampleTypeCFM},
	{"COUNTER SAMPLE", models.SampleTypeCounterSample},
	{"COUNTER SAMPLES", models.SampleTypeCounterSample},
	{"FITTING", models.SampleTypeFitting},
	{"FITTING SAMPLE", models.SampleTypeFitting},
	{"PPS", models.SampleTypePPS},
	{"PP SAMPLE", models.SampleTypePPS},
	{"TESTING SAMPLE", models.SampleTypeTestingSamples},
	{"TESTING SAMPLES", models.SampleTypeTestingSamples},
	{"SHIPPING SAMPLE", models.SampleTypeShippingSamples},
	{"SHIPPING SAMPLES", models.SampleTypeShippingSamples},
	{"INSPECTION", models.SampleTypeInspection},
	{"TRIAL UPPER", models.SampleTypeTrialUpper},
	{"TRIAL LASTING", models.SampleTypeTrialLasting},
	{"LASTING", models.SampleTypeLasting},
	{"FINISH DATE", models.SampleTypeFinishDate},
	{"FINISH", models.SampleTypeFinishDate},
})

var samplePartSuffixes = map[string]SamplePart{
	"DATE":          PartDate,
	"FECHA":         PartDate,
	"ROUND":         PartRound,
	"RONDA":         PartRound,
	"APPROVAL":      PartApproval,
	"APPROVAL DATE": PartApproval,
	"APPROVED":      PartApproval,
	"APPROVED ON":   PartApproval,
	"CONFIRMED":     PartApproval,
	"CONFIRMATION":  PartApproval,
	"STATUS":        PartStatus,
	"ESTADO":        PartStatus,
}

// milestoneFields mirrors process-milestone samples onto their line date
var milestoneFields = map[models.SampleType]Field{
	models.SampleTypeTrialUpper:   FieldTrialUpper,
	models.SampleTypeTrialLasting: FieldTrialLasting,
	models.SampleTypeLasting:      FieldLasting,
	models.SampleTypeFinishDate:   FieldFinishDate,
}

func sortAliases(aliases []sampleAlias) []sampleAlias {
	sort.SliceStable(aliases, func(i, j int) bool {
		return len(aliases[i].alias) > len(aliases[j].alias)
	})
	return aliases
}

// ColumnTarget is what a PO feed column resolves to
type ColumnTarget struct {
	Field      Field
	SampleType models.SampleType
	Part       SamplePart
}

// IsSample reports whether the column belongs to a sample group
func (t ColumnTarget) IsSample() bool {
	return t.SampleType != ""
}

// ResolveColumn maps a header label to a field or a sample group column.
// Plain field aliases win over sample groups.
func ResolveColumn(label string) (ColumnTarget, bool) {
	l := spreadsheet.NormalizeLabel(label)
	if l == "" {
		return ColumnTarget{}, false
	}
	if f, ok := fieldAliases[l]; ok {
		return ColumnTarget{Field: f}, true
	}
	for _, a := range sampleAliases {
		if l == a.alias {
			return ColumnTarget{SampleType: a.typ, Part: PartDate}, true
		}
		if strings.HasPrefix(l, a.alias+" ") {
			if part, ok := samplePartSuffixes[strings.TrimPrefix(l, a.alias+" ")]; ok {
				return ColumnTarget{SampleType: a.typ, Part: part}, true
			}
		}
	}
	return ColumnTarget{}, false
}

// POFeedLayout is the header vocabulary of purchase order workbooks
func POFeedLayout() spreadsheet.Layout {
	vocab := make([]string, 0, len(fieldAliases)+len(sampleAliases))
	for alias := range fieldAliases {
		vocab = append(vocab, alias)
	}
	for _, a := range sampleAliases {
		vocab = append(vocab, a.alias)
	}
	sort.Strings(vocab)

	sub := make([]string, 0, len(samplePartSuffixes))
	for suffix := range samplePartSuffixes {
		sub = append(sub, suffix)
	}
	sort.Strings(sub)

	return spreadsheet.Layout{Name: "purchase_orders", Vocabulary: vocab, SubVocabulary: sub, TwoRow: true}
}

// CatalogLayout is the header vocabulary of the catalog feeder workbook
func CatalogLayout() spreadsheet.Layout {
	return spreadsheet.Layout{
		Name: "catalog",
		Vocabulary: []string{
			"MATERIAL", "MATERIALS", "UPPER", "LINING", "INSOLE", "OUTSOLE", "SOLE", "SOLES",
			"SOLE NO.", "LAST", "LASTS", "LAST NO.", "HEEL", "HEELS", "HEEL NO.", "TOE",
			"TOE CAP", "COUNTER", "SOCK", "CONSTRUCTION", "COLOR", "COLOUR", "COLORS",
			"PACKAGING", "BOX", "LABEL", "LABELS", "SIZE RUN", "CATEGORY", "CATEGORIES",
			"CHANNEL", "CHANNELS", "SUPPLIER", "SUPPLIERS", "FACTORY", "FACTORIES",
			"SEASON", "SEASONS", "CUSTOMER", "CUSTOMERS", "CURRENCY", "TYPE",
		},
		TwoRow: true,
	}
}
