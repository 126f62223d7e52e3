package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DateLayout is the canonical ISO form used for every milestone date.
const DateLayout = "2006-01-02"

// SampleType is the fixed enumeration of tracked sample milestones
type SampleType string

const (
	SampleTypeCFM             SampleType = "CFM"
	SampleTypeCounterSample   SampleType = "Counter Sample"
	SampleTypeFitting         SampleType = "Fitting"
	SampleTypePPS             SampleType = "PPS"
	SampleTypeTestingSamples  SampleType = "Testing Samples"
	SampleTypeShippingSamples SampleType = "Shipping Samples"
	SampleTypeInspection      SampleType = "Inspection"
	SampleTypeTrialUpper      SampleType = "Trial Upper"
	SampleTypeTrialLasting    SampleType = "Trial Lasting"
	SampleTypeLasting         SampleType = "Lasting"
	SampleTypeFinishDate      SampleType = "Finish Date"
)

// SampleTypes lists the enumeration in display order
var SampleTypes = []SampleType{
	SampleTypeCFM,
	SampleTypeCounterSample,
	SampleTypeFitting,
	SampleTypePPS,
	SampleTypeTestingSamples,
	SampleTypeShippingSamples,
	SampleTypeInspection,
	SampleTypeTrialUpper,
	SampleTypeTrialLasting,
	SampleTypeLasting,
	SampleTypeFinishDate,
}

// SampleStatus represents the approval state of a sample
type SampleStatus string

const (
	SampleStatusNotStarted SampleStatus = "Not Started"
	SampleStatusInProgress SampleStatus = "In Progress"
	SampleStatusConfirmed  SampleStatus = "Confirmed"
	SampleStatusNoNeed     SampleStatus = "No Need"
)

// PurchaseOrder is the top-level production order.
// PO keeps the original casing; POKey is the normalized natural key.
type PurchaseOrder struct {
	ID    uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	PO    string    `json:"po" gorm:"column:po;type:varchar(100);not null"`
	POKey string    `json:"poKey" gorm:"column:po_key;type:varchar(100);not null;uniqueIndex"`

	// Commercial details
	Supplier string `json:"supplier" gorm:"type:varchar(255)"`
	Factory  string `json:"factory" gorm:"type:varchar(255)"`
	Customer string `json:"customer" gorm:"type:varchar(255)"`
	Season   string `json:"season" gorm:"type:varchar(50)"`
	Category string `json:"category" gorm:"type:varchar(100)"`
	Channel  string `json:"channel" gorm:"type:varchar(100)"`
	Currency string `json:"currency" gorm:"type:varchar(10)"`

	// Milestones
	PODate       *time.Time `json:"poDate,omitempty" gorm:"column:po_date;type:date"`
	ETD          *time.Time `json:"etd,omitempty" gorm:"column:etd;type:date"`
	Booking      *time.Time `json:"booking,omitempty" gorm:"type:date"`
	Closing      *time.Time `json:"closing,omitempty" gorm:"type:date"`
	ShippingDate *time.Time `json:"shippingDate,omitempty" gorm:"type:date"`

	InspectionStatus string `json:"inspectionStatus" gorm:"type:varchar(50)"`

	// Audit fields
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Relations
	Lines []LineItem `json:"lines,omitempty" gorm:"foreignKey:PurchaseOrderID;constraint:OnDelete:CASCADE"`
}

// LineItem is one reference/style/color combination within a PO
type LineItem struct {
	ID              uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	PurchaseOrderID uuid.UUID `json:"purchaseOrderId" gorm:"type:uuid;not null;uniqueIndex:idx_po_line_key"`
	LineKey         string    `json:"lineKey" gorm:"type:varchar(400);not null;uniqueIndex:idx_po_line_key"`

	Reference string `json:"reference" gorm:"type:varchar(100)"`
	Style     string `json:"style" gorm:"type:varchar(150)"`
	Color     string `json:"color" gorm:"type:varchar(150)"`
	SizeRun   string `json:"sizeRun" gorm:"type:varchar(100)"`

	Qty    int             `json:"qty" gorm:"not null;default:0"`
	Price  decimal.Decimal `json:"price" gorm:"type:numeric(14,2);not null;default:0"`
	Amount decimal.Decimal `json:"amount" gorm:"type:numeric(14,2);not null;default:0"`

	Category string `json:"category" gorm:"type:varchar(100)"`
	Channel  string `json:"channel" gorm:"type:varchar(100)"`

	// Process milestones
	TrialUpper   *time.Time `json:"trialUpper,omitempty" gorm:"type:date"`
	TrialLasting *time.Time `json:"trialLasting,omitempty" gorm:"type:date"`
	Lasting      *time.Time `json:"lasting,omitempty" gorm:"type:date"`
	FinishDate   *time.Time `json:"finishDate,omitempty" gorm:"type:date"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Samples []Sample `json:"samples,omitempty" gorm:"foreignKey:LineItemID;constraint:OnDelete:CASCADE"`
}

// Sample is a milestone/approval artifact of a line item
type Sample struct {
	ID            uuid.UUID    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	LineItemID    uuid.UUID    `json:"lineItemId" gorm:"type:uuid;not null;uniqueIndex:idx_line_sample_type"`
	TipoMuestra   SampleType   `json:"tipoMuestra" gorm:"column:tipo_muestra;type:varchar(50);not null;uniqueIndex:idx_line_sample_type"`
	Round         *int         `json:"round,omitempty" gorm:"column:round"`
	FechaMuestra  *time.Time   `json:"fechaMuestra,omitempty" gorm:"column:fecha_muestra;type:date"`
	EstadoMuestra SampleStatus `json:"estadoMuestra" gorm:"column:estado_muestra;type:varchar(20);not null;default:'Not Started'"`
	Notas         string       `json:"notas" gorm:"column:notas;type:text"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName implementations
func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

func (LineItem) TableName() string {
	return "po_line_items"
}

func (Sample) TableName() string {
	return "po_samples"
}

// SampleByType returns the sample of the given type, or nil
func (l *LineItem) SampleByType(t SampleType) *Sample {
	for i := range l.Samples {
		if l.Samples[i].TipoMuestra == t {
			return &l.Samples[i]
		}
	}
	return nil
}

// FormatDate renders a nullable date in ISO form, "" for nil
func FormatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// ParseISODate converts an ISO date string to a nullable time
func ParseISODate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}
