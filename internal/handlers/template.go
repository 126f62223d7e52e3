package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"production-tracking-service/internal/spreadsheet"
)

// ImportTemplateColumn defines a column in the import template
type ImportTemplateColumn struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Type        string `json:"type"`
	Example     string `json:"example"`
}

// ImportTemplate defines the structure of an import template
type ImportTemplate struct {
	Entity     string                 `json:"entity"`
	Version    string                 `json:"version"`
	Columns    []ImportTemplateColumn `json:"columns"`
	SampleData []map[string]string    `json:"sampleData,omitempty"`
}

// PurchaseOrderImportTemplate returns the template for PO workbooks.
// Money and quantities use the factory locale ("1.500", "10,50").
func PurchaseOrderImportTemplate() ImportTemplate {
	return ImportTemplate{
		Entity:  "purchase_orders",
		Version: "1.0",
		Columns: []ImportTemplateColumn{
			{Name: "PO", Description: "Purchase order number; blank continues the PO above", Required: true, Type: "string", Example: "PO-2025-001"},
			{Name: "SUPPLIER", Description: "Supplier name", Required: false, Type: "string", Example: "Calzados Elche"},
			{Name: "FACTORY", Description: "Producing factory", Required: false, Type: "string", Example: "Dongguan F3"},
			{Name: "CUSTOMER", Description: "Customer or brand", Required: false, Type: "string", Example: "Northwind"},
			{Name: "SEASON", Description: "Season code", Required: false, Type: "string", Example: "SS25"},
			{Name: "CURRENCY", Description: "Currency code", Required: false, Type: "string", Example: "USD"},
			{Name: "PO DATE", Description: "Order date (YYYY-MM-DD or DD/MM/YYYY)", Required: false, Type: "date", Example: "2025-01-10"},
			{Name: "ETD", Description: "Estimated departure", Required: false, Type: "date", Example: "2025-04-30"},
			{Name: "REFERENCE", Description: "Article reference", Required: true, Type: "string", Example: "R1"},
			{Name: "STYLE", Description: "Style name", Required: true, Type: "string", Example: "StyleA"},
			{Name: "COLOR", Description: "Color", Required: true, Type: "string", Example: "Red"},
			{Name: "SIZE RUN", Description: "Size run", Required: false, Type: "string", Example: "36-41"},
			{Name: "QTY", Description: "Pairs ordered", Required: false, Type: "number", Example: "2.000"},
			{Name: "PRICE", Description: "Unit price", Required: false, Type: "number", Example: "10,50"},
			{Name: "AMOUNT", Description: "Line amount; computed from QTY x PRICE when blank", Required: false, Type: "number", Example: ""},
			{Name: "CFM DATE", Description: "CFM sent date", Required: false, Type: "date", Example: "2025-01-15"},
			{Name: "CFM ROUND", Description: "CFM round (\"Round 1\" or 1)", Required: false, Type: "string", Example: "Round 1"},
			{Name: "CFM APPROVAL", Description: "CFM approval date", Required: false, Type: "date", Example: ""},
			{Name: "PPS DATE", Description: "Pre-production sample date, or N/N", Required: false, Type: "date", Example: "N/N"},
			{Name: "INSPECTION STATUS", Description: "Final inspection result", Required: false, Type: "string", Example: "Pending"},
		},
		SampleData: []map[string]string{
			{
				"PO":                "PO-2025-001",
				"SUPPLIER":          "Calzados Elche",
				"FACTORY":           "Dongguan F3",
				"CUSTOMER":          "Northwind",
				"SEASON":            "SS25",
				"CURRENCY":          "USD",
				"PO DATE":           "2025-01-10",
				"ETD":               "2025-04-30",
				"REFERENCE":         "R1",
				"STYLE":             "StyleA",
				"COLOR":             "Red",
				"SIZE RUN":          "36-41",
				"QTY":               "2.000",
				"PRICE":             "10,50",
				"CFM DATE":          "2025-01-15",
				"CFM ROUND":         "Round 1",
				"PPS DATE":          "N/N",
				"INSPECTION STATUS": "Pending",
			},
			{
				"REFERENCE":    "R1",
				"STYLE":        "StyleA",
				"COLOR":        "Black",
				"SIZE RUN":     "36-41",
				"QTY":          "1.200",
				"PRICE":        "10,50",
				"CFM DATE":     "2025-01-15",
				"CFM APPROVAL": "2025-01-22",
			},
		},
	}
}

// GetPurchaseOrderImportTemplate returns the PO import template
// GET /api/v1/purchase-orders/import/template
func (h *ImportHandler) GetPurchaseOrderImportTemplate(c *gin.Context) {
	format := c.DefaultQuery("format", "json")
	template := PurchaseOrderImportTemplate()

	switch format {
	case "csv":
		h.generateCSVTemplate(c, template, "purchase_orders")
	case "xlsx":
		h.generateXLSXTemplate(c, template, "Purchase Orders")
	default:
		c.JSON(http.StatusOK, gin.H{"success": true, "template": template})
	}
}

func (h *ImportHandler) generateCSVTemplate(c *gin.Context, template ImportTemplate, entity string) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s_import_template.csv", entity))

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	headers := make([]string, len(template.Columns))
	for i, col := range template.Columns {
		headers[i] = col.Name
	}
	writer.Write(headers)

	for _, sample := range template.SampleData {
		row := make([]string, len(template.Columns))
		for i, col := range template.Columns {
			row[i] = sample[col.Name]
		}
		writer.Write(row)
	}
}

func (h *ImportHandler) generateXLSXTemplate(c *gin.Context, template ImportTemplate, sheetName string) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheetName)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})

	// required columns are highlighted; labels stay plain so the template imports as is
	requiredStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"C65911"}, Pattern: 1},
	})

	for i, col := range template.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, col.Name)

		if col.Required {
			f.SetCellStyle(sheetName, cell, cell, requiredStyle)
		} else {
			f.SetCellStyle(sheetName, cell, cell, headerStyle)
		}

		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 18)
	}

	for rowIdx, sample := range template.SampleData {
		for colIdx, col := range template.Columns {
			value := sample[col.Name]
			if value == "" {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if col.Type == "number" {
				f.SetCellValue(sheetName, cell, spreadsheet.ParseMoney(value).InexactFloat64())
			} else {
				f.SetCellValue(sheetName, cell, value)
			}
		}
	}

	sheetIdx, _ := f.GetSheetIndex(sheetName)
	f.SetActiveSheet(sheetIdx)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s_import_template.xlsx", strings.ReplaceAll(strings.ToLower(sheetName), " ", "_")))

	f.Write(c.Writer)
}
