package handlers

import (
	"github.com/gin-gonic/gin"
)

// Handlers groups the HTTP handlers mounted under /api/v1
type Handlers struct {
	Import        *ImportHandler
	Report        *ReportHandler
	PurchaseOrder *PurchaseOrderHandler
	Health        *HealthHandler
}

// RegisterRoutes mounts health checks and the API routes on router
func RegisterRoutes(router *gin.Engine, h Handlers) {
	router.GET("/health", HealthCheck)
	router.GET("/ready", h.Health.Ready)

	api := router.Group("/api/v1")

	catalog := api.Group("/catalog")
	{
		catalog.POST("/import", h.Import.ImportCatalog)
	}

	purchaseOrders := api.Group("/purchase-orders")
	{
		purchaseOrders.GET("/import/template", h.Import.GetPurchaseOrderImportTemplate)
		purchaseOrders.POST("/import", h.Import.ImportPurchaseOrders)
		purchaseOrders.POST("/production-feed", h.Import.ImportProductionFeed)
		purchaseOrders.DELETE("/:po", h.PurchaseOrder.DeletePurchaseOrder)
	}

	inspections := api.Group("/inspections")
	{
		inspections.POST("/import", h.Import.ImportInspections)
	}

	imports := api.Group("/imports")
	{
		imports.GET("/:id", h.Report.GetImportRun)
		imports.GET("/:id/report", h.Report.DownloadReport)
	}
}
