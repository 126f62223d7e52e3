package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"production-tracking-service/internal/cache"
	"production-tracking-service/internal/models"
	"production-tracking-service/internal/report"
	"production-tracking-service/internal/repository"
)

type reportQuery struct {
	Format string `form:"format" binding:"omitempty,oneof=txt pdf"`
}

type ReportHandler struct {
	store  repository.Store
	cache  *cache.ReportCache
	logger *logrus.Entry
}

func NewReportHandler(store repository.Store, reportCache *cache.ReportCache, logger *logrus.Logger) *ReportHandler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ReportHandler{store: store, cache: reportCache, logger: logger.WithField("component", "report-handler")}
}

func (h *ReportHandler) loadRun(c *gin.Context) (*models.ImportRun, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INVALID_ID", Message: "Invalid import id"},
		})
		return nil, false
	}

	run, err := h.store.GetImportRun(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "NOT_FOUND", Message: "Import run not found"},
		})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "FETCH_FAILED", Message: err.Error()},
		})
		return nil, false
	}
	return run, true
}

// GetImportRun returns a stored import run
// GET /api/v1/imports/:id
func (h *ReportHandler) GetImportRun(c *gin.Context) {
	run, ok := h.loadRun(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: run})
}

// DownloadReport renders the audit report of a run
// GET /api/v1/imports/:id/report?format=txt|pdf
func (h *ReportHandler) DownloadReport(c *gin.Context) {
	var q reportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INVALID_FORMAT", Message: "format must be txt or pdf"},
		})
		return
	}
	format := q.Format
	if format == "" {
		format = report.FormatText
	}
	contentType, _ := report.ContentType(format)

	run, ok := h.loadRun(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	data, err := h.cache.Get(ctx, run.ID, format)
	if err != nil {
		h.logger.WithError(err).Warn("Report cache read failed")
	}
	if data == nil {
		data, err = report.Render(run, format)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Success: false,
				Error:   models.Error{Code: "RENDER_FAILED", Message: err.Error()},
			})
			return
		}
		if err := h.cache.Set(ctx, run.ID, format, data); err != nil {
			h.logger.WithError(err).Warn("Report cache write failed")
		}
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=import_%s.%s", run.ID, format))
	c.Data(http.StatusOK, contentType, data)
}
