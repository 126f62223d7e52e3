package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"production-tracking-service/internal/config"
	"production-tracking-service/internal/events"
	"production-tracking-service/internal/importer"
	"production-tracking-service/internal/ingest"
	"production-tracking-service/internal/metrics"
	"production-tracking-service/internal/models"
	"production-tracking-service/internal/reconcile"
	"production-tracking-service/internal/repository"
	"production-tracking-service/internal/spreadsheet"
	"production-tracking-service/internal/storage"
)

const (
	ProductionFeedSheet = "China"
	InspectionSheet     = "Inspection Report"
)

var errFileRequired = errors.New("file is required: upload an .xlsx workbook in the 'file' field")

// ImportResponse is the body returned by every upload endpoint
type ImportResponse struct {
	Status               models.ImportStatus `json:"status"`
	Sheet                string              `json:"sheet"`
	HeaderRow            int                 `json:"header_row"`
	ImportedUnique       *int                `json:"imported_unique,omitempty"`
	POsEncontrados       *int                `json:"pos_encontrados,omitempty"`
	LineasActualizadas   *int                `json:"lineas_actualizadas,omitempty"`
	MuestrasActualizadas *int                `json:"muestras_actualizadas,omitempty"`
	Nuevos               *int                `json:"nuevos,omitempty"`
	Modificados          *int                `json:"modificados,omitempty"`
	SinCambios           *int                `json:"sinCambios,omitempty"`
	Cambios              []string            `json:"cambios"`
	Avisos               []string            `json:"avisos"`
	Errores              []string            `json:"errores"`
	Detalles             interface{}         `json:"detalles"`
	ReportID             string              `json:"report_id,omitempty"`
}

// CatalogDetalles is the detail block of a catalog import
type CatalogDetalles struct {
	Cambios []string `json:"cambios"`
}

type ImportHandler struct {
	store     repository.Store
	executor  *importer.Executor
	archiver  storage.Archiver
	publisher events.Publisher
	metrics   *metrics.ImportMetrics
	cfg       config.ImportConfig
	logger    *logrus.Entry
}

func NewImportHandler(store repository.Store, archiver storage.Archiver, publisher events.Publisher, m *metrics.ImportMetrics, cfg config.ImportConfig, logger *logrus.Logger) *ImportHandler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if archiver == nil {
		archiver = storage.NoopArchiver{}
	}
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &ImportHandler{
		store:     store,
		executor:  importer.NewExecutor(store, logger),
		archiver:  archiver,
		publisher: publisher,
		metrics:   m,
		cfg:       cfg,
		logger:    logger.WithField("component", "import-handler"),
	}
}

// upload is one received workbook
type upload struct {
	filename string
	data     []byte
}

func (h *ImportHandler) readUpload(c *gin.Context) (*upload, error) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		return nil, errFileRequired
	}
	defer file.Close()

	limit := int64(h.cfg.MaxUploadMB) << 20
	if limit > 0 && header.Size > limit {
		return nil, fmt.Errorf("%w: file exceeds %d MB", spreadsheet.ErrInvalidWorkbook, h.cfg.MaxUploadMB)
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", spreadsheet.ErrInvalidWorkbook, err)
	}
	return &upload{filename: header.Filename, data: data}, nil
}

// parse loads the selected sheet and locates its header
func (h *ImportHandler) parse(u *upload, sel spreadsheet.SheetSelector, layout spreadsheet.Layout) (*spreadsheet.Grid, *spreadsheet.Header, error) {
	scan := h.cfg.HeaderScanRows
	if scan <= 0 {
		scan = spreadsheet.DefaultScanRows
	}
	maxRows := h.maxRows()

	// header rows plus one extra data row so truncation is detectable
	grid, err := spreadsheet.LoadGrid(u.filename, bytes.NewReader(u.data), sel, scan+maxRows+3)
	if err != nil {
		return nil, nil, err
	}
	header, err := spreadsheet.DetectHeader(grid, layout, spreadsheet.DetectOptions{
		ScanRows:   scan,
		MinMatches: h.cfg.HeaderMinMatches,
	})
	if err != nil {
		return nil, nil, err
	}
	return grid, header, nil
}

func (h *ImportHandler) maxRows() int {
	if h.cfg.MaxRows > 0 {
		return h.cfg.MaxRows
	}
	return ingest.DefaultMaxRows
}

func sheetSelector(c *gin.Context, defaultHint string) spreadsheet.SheetSelector {
	if hint := c.PostForm("sheet"); hint != "" {
		return spreadsheet.SheetSelector{Name: hint}
	}
	if hint := c.Query("sheet"); hint != "" {
		return spreadsheet.SheetSelector{Name: hint}
	}
	return spreadsheet.SheetSelector{Name: defaultHint, Fallback: true}
}

func validateOnly(c *gin.Context) bool {
	return c.DefaultPostForm("validateOnly", c.DefaultQuery("validateOnly", "false")) == "true"
}

// ImportCatalog inserts the distinct values of a feeder workbook
// POST /api/v1/catalog/import
func (h *ImportHandler) ImportCatalog(c *gin.Context) {
	start := time.Now()
	kind := models.ImportKindCatalog

	u, err := h.readUpload(c)
	if err != nil {
		h.reject(c, kind, err)
		return
	}
	grid, header, err := h.parse(u, sheetSelector(c, ""), ingest.CatalogLayout())
	if err != nil {
		h.reject(c, kind, err)
		return
	}

	batch := ingest.MapCatalog(grid, header, h.maxRows())
	preview := validateOnly(c)
	out, err := h.executor.SyncCatalog(c.Request.Context(), batch, importer.CatalogOptions{
		ChunkSize:    h.cfg.CatalogChunkSize,
		ValidateOnly: preview,
	})
	if err != nil {
		h.fail(c, kind, err)
		return
	}

	run := newRun(kind, u, grid, header)
	run.ImportedUnique = out.ImportedUnique
	run.Nuevos = out.New
	run.SinCambios = out.Existing
	run.Cambios, run.Avisos, run.Errores = out.Cambios, out.Avisos, out.Errores
	run.Status = runStatus(preview, out.Errores)
	detalles := CatalogDetalles{Cambios: out.Cambios}

	reportID := h.finish(c.Request.Context(), run, u, detalles, time.Since(start), len(out.Cambios), len(out.Avisos), len(out.Errores))

	imported := out.ImportedUnique
	nuevos := out.New
	c.JSON(http.StatusOK, ImportResponse{
		Status:         run.Status,
		Sheet:          run.Sheet,
		HeaderRow:      run.HeaderRow,
		ImportedUnique: &imported,
		Nuevos:         &nuevos,
		Cambios:        out.Cambios,
		Avisos:         out.Avisos,
		Errores:        out.Errores,
		Detalles:       detalles,
		ReportID:       reportID,
	})
}

// ImportPurchaseOrders synchronizes a full PO workbook
// POST /api/v1/purchase-orders/import
func (h *ImportHandler) ImportPurchaseOrders(c *gin.Context) {
	h.importFeed(c, models.ImportKindPurchaseOrders, importer.FullSyncPolicy(), "", validateOnly(c))
}

// ImportProductionFeed patches milestone dates and samples from the factory feed
// POST /api/v1/purchase-orders/production-feed
func (h *ImportHandler) ImportProductionFeed(c *gin.Context) {
	h.importFeed(c, models.ImportKindProductionFeed, importer.FieldPatchPolicy(), ProductionFeedSheet, validateOnly(c))
}

// ImportInspections patches inspection results
// POST /api/v1/inspections/import
func (h *ImportHandler) ImportInspections(c *gin.Context) {
	h.importFeed(c, models.ImportKindInspection, importer.InspectionPatchPolicy(), InspectionSheet, validateOnly(c))
}

func (h *ImportHandler) importFeed(c *gin.Context, kind models.ImportKind, policy importer.Policy, defaultSheet string, preview bool) {
	start := time.Now()
	ctx := c.Request.Context()

	u, err := h.readUpload(c)
	if err != nil {
		h.reject(c, kind, err)
		return
	}
	grid, header, err := h.parse(u, sheetSelector(c, defaultSheet), ingest.POFeedLayout())
	if err != nil {
		h.reject(c, kind, err)
		return
	}
	feed, err := ingest.MapPOFeed(grid, header, h.maxRows())
	if err != nil {
		h.reject(c, kind, err)
		return
	}

	run := newRun(kind, u, grid, header)
	avisos := append(make([]string, 0, len(feed.Warnings)), feed.Warnings...)
	cambios := make([]string, 0)
	errores := make([]string, 0)

	var result *reconcile.Result
	if preview {
		result, err = h.executor.Preview(ctx, feed.Groups, policy)
		if err != nil {
			h.fail(c, kind, err)
			return
		}
	} else {
		out, err := h.executor.Apply(ctx, feed.Groups, policy)
		if err != nil {
			h.fail(c, kind, err)
			return
		}
		result = out.Result
		run.POsEncontrados = out.POsTouched
		run.LineasActualizadas = out.LinesCreated + out.LinesUpdated
		run.MuestrasActualizadas = out.SamplesCreated + out.SamplesUpdated
		cambios = append(cambios, out.Cambios...)
		avisos = append(avisos, out.Avisos...)
		errores = append(errores, out.Errores...)
	}

	rep := result.Report()
	run.Nuevos, run.Modificados, run.SinCambios = rep.Nuevos, rep.Modificados, rep.SinCambios
	run.Cambios, run.Avisos, run.Errores = cambios, avisos, errores
	run.Status = runStatus(preview, errores)

	h.logger.WithFields(logrus.Fields{
		"import_kind": kind,
		"sheet":       run.Sheet,
		"header_row":  run.HeaderRow,
		"groups":      len(feed.Groups),
		"lines":       feed.LineCount(),
		"truncated":   feed.Truncated,
	}).Info("Purchase order sheet mapped")

	reportID := h.finish(ctx, run, u, rep.Detalles, time.Since(start), len(cambios), len(avisos), len(errores))

	c.JSON(http.StatusOK, ImportResponse{
		Status:               run.Status,
		Sheet:                run.Sheet,
		HeaderRow:            run.HeaderRow,
		POsEncontrados:       &run.POsEncontrados,
		LineasActualizadas:   &run.LineasActualizadas,
		MuestrasActualizadas: &run.MuestrasActualizadas,
		Nuevos:               &run.Nuevos,
		Modificados:          &run.Modificados,
		SinCambios:           &run.SinCambios,
		Cambios:              cambios,
		Avisos:               avisos,
		Errores:              errores,
		Detalles:             rep.Detalles,
		ReportID:             reportID,
	})
}

func newRun(kind models.ImportKind, u *upload, grid *spreadsheet.Grid, header *spreadsheet.Header) *models.ImportRun {
	return &models.ImportRun{
		ID:        uuid.New(),
		Kind:      kind,
		Filename:  u.filename,
		Sheet:     grid.Sheet,
		HeaderRow: header.RowNumber(),
		CreatedAt: time.Now().UTC(),
	}
}

func runStatus(preview bool, errores []string) models.ImportStatus {
	switch {
	case preview:
		return models.ImportStatusPreview
	case len(errores) > 0:
		return models.ImportStatusPartial
	default:
		return models.ImportStatusOK
	}
}

// finish archives the source, stores the audit row, publishes the event and
// records metrics. It returns the report id, or "" when the run was not saved.
func (h *ImportHandler) finish(ctx context.Context, run *models.ImportRun, u *upload, detalles interface{}, elapsed time.Duration, updated, warnings, errs int) string {
	log := h.logger.WithFields(logrus.Fields{
		"import_kind": run.Kind,
		"sheet":       run.Sheet,
		"report_id":   run.ID,
	})

	if url, err := h.archiver.Archive(ctx, string(run.Kind), run.ID, u.filename, u.data); err != nil {
		log.WithError(err).Warn("Failed to archive source workbook")
	} else {
		run.SourceURL = url
	}

	if raw, err := json.Marshal(detalles); err == nil {
		run.Detalles = datatypes.JSON(raw)
	}

	reportID := run.ID.String()
	if err := h.store.SaveImportRun(ctx, run); err != nil {
		log.WithError(err).Error("Failed to save import run")
		reportID = ""
	} else if err := h.publisher.PublishImportCompleted(ctx, run); err != nil {
		log.WithError(err).Warn("Failed to publish import event")
	}

	h.metrics.ObserveImport(string(run.Kind), string(run.Status), elapsed, updated, warnings, errs)

	log.WithFields(logrus.Fields{
		"status":  run.Status,
		"cambios": updated,
		"avisos":  warnings,
		"errores": errs,
	}).Info("Import finished")
	return reportID
}

// IsInputError reports whether err rejects the upload itself
func IsInputError(err error) bool {
	for _, target := range []error{
		errFileRequired,
		spreadsheet.ErrInvalidWorkbook,
		spreadsheet.ErrEmptyWorkbook,
		spreadsheet.ErrSheetNotFound,
		spreadsheet.ErrUnsupportedFormat,
		spreadsheet.ErrHeaderNotFound,
		spreadsheet.ErrNoColumns,
		ingest.ErrMissingPO,
		ingest.ErrMissingPOColumn,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (h *ImportHandler) reject(c *gin.Context, kind models.ImportKind, err error) {
	if !IsInputError(err) {
		h.fail(c, kind, err)
		return
	}
	h.metrics.ObserveRejected(string(kind))
	h.logger.WithFields(logrus.Fields{"import_kind": kind}).WithError(err).Warn("Import rejected")
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func (h *ImportHandler) fail(c *gin.Context, kind models.ImportKind, err error) {
	h.metrics.ObserveImport(string(kind), "failed", 0, 0, 0, 0)
	h.logger.WithFields(logrus.Fields{"import_kind": kind}).WithError(err).Error("Import failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
