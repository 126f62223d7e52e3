package reconcile

import (
	"strconv"

	"production-tracking-service/internal/ingest"
	"production-tracking-service/internal/models"
)

// FieldSet is the subset of fields compared for each entity kind
type FieldSet struct {
	PurchaseOrder []ingest.Field
	Line          []ingest.Field
	Sample        []ingest.Field
	// SampleTypes limits which sample types are reconciled; nil means all
	SampleTypes []models.SampleType
}

// AllFields compares every mapped field
func AllFields() FieldSet {
	return FieldSet{
		PurchaseOrder: ingest.POFields,
		Line:          ingest.LineFields,
		Sample:        ingest.SampleFields,
	}
}

func (fs FieldSet) allowsSample(t models.SampleType) bool {
	if fs.SampleTypes == nil {
		return true
	}
	for _, allowed := range fs.SampleTypes {
		if allowed == t {
			return true
		}
	}
	return false
}

// PurchaseOrderValues renders the stored PO in the comparable string form
func PurchaseOrderValues(po *models.PurchaseOrder) map[ingest.Field]string {
	return map[ingest.Field]string{
		ingest.FieldSupplier:         po.Supplier,
		ingest.FieldFactory:          po.Factory,
		ingest.FieldCustomer:         po.Customer,
		ingest.FieldSeason:           po.Season,
		ingest.FieldCategory:         po.Category,
		ingest.FieldChannel:          po.Channel,
		ingest.FieldCurrency:         po.Currency,
		ingest.FieldPODate:           models.FormatDate(po.PODate),
		ingest.FieldETD:              models.FormatDate(po.ETD),
		ingest.FieldBooking:          models.FormatDate(po.Booking),
		ingest.FieldClosing:          models.FormatDate(po.Closing),
		ingest.FieldShippingDate:     models.FormatDate(po.ShippingDate),
		ingest.FieldInspectionStatus: po.InspectionStatus,
	}
}

// LineValues renders the stored line in the comparable string form
func LineValues(l *models.LineItem) map[ingest.Field]string {
	return map[ingest.Field]string{
		ingest.FieldSizeRun:      l.SizeRun,
		ingest.FieldQty:          strconv.Itoa(l.Qty),
		ingest.FieldPrice:        l.Price.StringFixed(2),
		ingest.FieldAmount:       l.Amount.StringFixed(2),
		ingest.FieldCategory:     l.Category,
		ingest.FieldChannel:      l.Channel,
		ingest.FieldTrialUpper:   models.FormatDate(l.TrialUpper),
		ingest.FieldTrialLasting: models.FormatDate(l.TrialLasting),
		ingest.FieldLasting:      models.FormatDate(l.Lasting),
		ingest.FieldFinishDate:   models.FormatDate(l.FinishDate),
	}
}

// SampleValues renders the stored sample in the comparable string form
func SampleValues(s *models.Sample) map[ingest.Field]string {
	round := ""
	if s.Round != nil {
		round = strconv.Itoa(*s.Round)
	}
	return map[ingest.Field]string{
		ingest.FieldRound:         round,
		ingest.FieldFechaMuestra:  models.FormatDate(s.FechaMuestra),
		ingest.FieldEstadoMuestra: string(s.EstadoMuestra),
	}
}
