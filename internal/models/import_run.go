package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// ImportKind identifies which workflow produced an import run
type ImportKind string

const (
	ImportKindCatalog        ImportKind = "catalog"
	ImportKindPurchaseOrders ImportKind = "purchase_orders"
	ImportKindProductionFeed ImportKind = "production_feed"
	ImportKindInspection     ImportKind = "inspection"
)

// ImportStatus is the machine-readable outcome of an import run
type ImportStatus string

const (
	ImportStatusOK      ImportStatus = "ok"
	ImportStatusPartial ImportStatus = "partial"
	ImportStatusPreview ImportStatus = "preview"
)

// ImportRun is the audit record of one uploaded workbook
type ImportRun struct {
	ID        uuid.UUID    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Kind      ImportKind   `json:"kind" gorm:"type:varchar(30);not null;index"`
	Status    ImportStatus `json:"status" gorm:"type:varchar(20);not null"`
	Filename  string       `json:"filename" gorm:"type:varchar(255)"`
	Sheet     string       `json:"sheet" gorm:"type:varchar(255)"`
	HeaderRow int          `json:"headerRow"`
	SourceURL string       `json:"sourceUrl,omitempty" gorm:"type:text"`

	// Counters
	ImportedUnique       int `json:"importedUnique"`
	POsEncontrados       int `json:"posEncontrados"`
	LineasActualizadas   int `json:"lineasActualizadas"`
	MuestrasActualizadas int `json:"muestrasActualizadas"`
	Nuevos               int `json:"nuevos"`
	Modificados          int `json:"modificados"`
	SinCambios           int `json:"sinCambios"`

	Cambios  pq.StringArray `json:"cambios" gorm:"type:text[]"`
	Avisos   pq.StringArray `json:"avisos" gorm:"type:text[]"`
	Errores  pq.StringArray `json:"errores" gorm:"type:text[]"`
	Detalles datatypes.JSON `json:"detalles,omitempty" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"createdAt"`
}

func (ImportRun) TableName() string {
	return "import_runs"
}
