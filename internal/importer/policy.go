package importer

import (
	"production-tracking-service/internal/ingest"
	"production-tracking-service/internal/models"
	"production-tracking-service/internal/reconcile"
)

// OnMissing is what happens when an incoming entity has no stored match
type OnMissing string

const (
	OnMissingCreate OnMissing = "create"
	OnMissingWarn   OnMissing = "warn"
	OnMissingError  OnMissing = "error"
)

// Lookup selects how stored state is fetched
type Lookup int

const (
	// LookupBatch fetches every PO of the sheet in one query
	LookupBatch Lookup = iota
	// LookupPerGroup fetches each PO separately so one failure stays isolated
	LookupPerGroup
)

// Policy is the mutation strategy of an import workflow
type Policy struct {
	Name            string
	OnMissingPO     OnMissing
	OnMissingLine   OnMissing
	OnMissingSample OnMissing
	Fields          reconcile.FieldSet
	Lookup          Lookup
}

// FullSyncPolicy creates whatever is missing and compares every field
func FullSyncPolicy() Policy {
	return Policy{
		Name:            "full-sync",
		OnMissingPO:     OnMissingCreate,
		OnMissingLine:   OnMissingCreate,
		OnMissingSample: OnMissingCreate,
		Fields:          reconcile.AllFields(),
		Lookup:          LookupBatch,
	}
}

// FieldPatchPolicy only updates milestone fields of existing entities
func FieldPatchPolicy() Policy {
	return Policy{
		Name:            "field-patch",
		OnMissingPO:     OnMissingError,
		OnMissingLine:   OnMissingError,
		OnMissingSample: OnMissingWarn,
		Fields: reconcile.FieldSet{
			PurchaseOrder: []ingest.Field{
				ingest.FieldETD, ingest.FieldBooking, ingest.FieldClosing,
				ingest.FieldShippingDate, ingest.FieldInspectionStatus,
			},
			Line: []ingest.Field{
				ingest.FieldTrialUpper, ingest.FieldTrialLasting, ingest.FieldLasting, ingest.FieldFinishDate,
			},
			Sample: ingest.SampleFields,
		},
		Lookup: LookupPerGroup,
	}
}

// InspectionPatchPolicy updates inspection results and the Inspection sample
func InspectionPatchPolicy() Policy {
	return Policy{
		Name:            "inspection-patch",
		OnMissingPO:     OnMissingError,
		OnMissingLine:   OnMissingError,
		OnMissingSample: OnMissingWarn,
		Fields: reconcile.FieldSet{
			PurchaseOrder: []ingest.Field{ingest.FieldInspectionStatus, ingest.FieldShippingDate},
			Sample:        ingest.SampleFields,
			SampleTypes:   []models.SampleType{models.SampleTypeInspection},
		},
		Lookup: LookupPerGroup,
	}
}
