package importer

import (
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"production-tracking-service/internal/ingest"
	"production-tracking-service/internal/models"
	"production-tracking-service/internal/reconcile"
)

// columnValue converts a comparable string back to the typed column value
func columnValue(f ingest.Field, v string) interface{} {
	if ingest.IsDateField(f) {
		return models.ParseISODate(v)
	}
	switch f {
	case ingest.FieldQty:
		n, _ := strconv.Atoi(v)
		return n
	case ingest.FieldPrice, ingest.FieldAmount:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero
		}
		return d
	case ingest.FieldRound:
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return (*int)(nil)
		}
		return &n
	}
	return v
}

func updatesFor(changes []reconcile.FieldChange) map[string]interface{} {
	updates := make(map[string]interface{}, len(changes)+1)
	for _, c := range changes {
		updates[string(c.Field)] = columnValue(c.Field, c.New)
	}
	return updates
}

func buildPurchaseOrder(d reconcile.PODiff) *models.PurchaseOrder {
	g := d.Incoming
	po := &models.PurchaseOrder{ID: uuid.New(), PO: g.PO, POKey: g.Key}
	for f, v := range g.Header {
		setPurchaseOrderField(po, f, v)
	}
	for _, ld := range d.Lines {
		po.Lines = append(po.Lines, *buildLine(po.ID, ld))
	}
	return po
}

func buildLine(poID uuid.UUID, ld reconcile.LineDiff) *models.LineItem {
	l := ld.Incoming
	line := &models.LineItem{
		ID:              uuid.New(),
		PurchaseOrderID: poID,
		LineKey:         l.Key,
		Reference:       l.Reference,
		Style:           l.Style,
		Color:           l.Color,
	}
	for f, v := range l.Values {
		setLineField(line, f, v)
	}
	for _, sd := range ld.Samples {
		line.Samples = append(line.Samples, *buildSample(line.ID, sd.Incoming))
	}
	return line
}

func buildSample(lineID uuid.UUID, s ingest.SampleRecord) *models.Sample {
	sample := &models.Sample{
		ID:            uuid.New(),
		LineItemID:    lineID,
		TipoMuestra:   s.Type,
		FechaMuestra:  models.ParseISODate(s.Date),
		EstadoMuestra: s.Status,
		Notas:         s.Note,
	}
	if s.Round != nil {
		r := *s.Round
		sample.Round = &r
	}
	if sample.EstadoMuestra == "" {
		sample.EstadoMuestra = models.SampleStatusNotStarted
	}
	return sample
}

func setPurchaseOrderField(po *models.PurchaseOrder, f ingest.Field, v string) {
	switch f {
	case ingest.FieldSupplier:
		po.Supplier = v
	case ingest.FieldFactory:
		po.Factory = v
	case ingest.FieldCustomer:
		po.Customer = v
	case ingest.FieldSeason:
		po.Season = v
	case ingest.FieldCategory:
		po.Category = v
	case ingest.FieldChannel:
		po.Channel = v
	case ingest.FieldCurrency:
		po.Currency = v
	case ingest.FieldInspectionStatus:
		po.InspectionStatus = v
	case ingest.FieldPODate:
		po.PODate = models.ParseISODate(v)
	case ingest.FieldETD:
		po.ETD = models.ParseISODate(v)
	case ingest.FieldBooking:
		po.Booking = models.ParseISODate(v)
	case ingest.FieldClosing:
		po.Closing = models.ParseISODate(v)
	case ingest.FieldShippingDate:
		po.ShippingDate = models.ParseISODate(v)
	}
}

func setLineField(l *models.LineItem, f ingest.Field, v string) {
	switch f {
	case ingest.FieldSizeRun:
		l.SizeRun = v
	case ingest.FieldCategory:
		l.Category = v
	case ingest.FieldChannel:
		l.Channel = v
	case ingest.FieldQty:
		l.Qty = columnValue(f, v).(int)
	case ingest.FieldPrice:
		l.Price = columnValue(f, v).(decimal.Decimal)
	case ingest.FieldAmount:
		l.Amount = columnValue(f, v).(decimal.Decimal)
	case ingest.FieldTrialUpper:
		l.TrialUpper = models.ParseISODate(v)
	case ingest.FieldTrialLasting:
		l.TrialLasting = models.ParseISODate(v)
	case ingest.FieldLasting:
		l.Lasting = models.ParseISODate(v)
	case ingest.FieldFinishDate:
		l.FinishDate = models.ParseISODate(v)
	}
}
