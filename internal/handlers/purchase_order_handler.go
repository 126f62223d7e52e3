package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"production-tracking-service/internal/ingest"
	"production-tracking-service/internal/models"
	"production-tracking-service/internal/repository"
)

type PurchaseOrderHandler struct {
	store repository.Store
}

func NewPurchaseOrderHandler(store repository.Store) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{store: store}
}

// DeletePurchaseOrder removes a PO together with its lines and samples
// DELETE /api/v1/purchase-orders/:po
func (h *PurchaseOrderHandler) DeletePurchaseOrder(c *gin.Context) {
	key := ingest.POKey(c.Param("po"))
	if key == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INVALID_PO", Message: "PO number is required"},
		})
		return
	}

	err := h.store.DeletePurchaseOrder(c.Request.Context(), key)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "NOT_FOUND", Message: "Purchase order not found"},
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "DELETE_FAILED", Message: err.Error()},
		})
		return
	}

	msg := "Purchase order deleted"
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: &msg})
}
