package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"production-tracking-service/internal/cache"
	"production-tracking-service/internal/config"
	"production-tracking-service/internal/metrics"
	"production-tracking-service/internal/models"
	"production-tracking-service/internal/repository"
)

type testServer struct {
	router *gin.Engine
	store  *repository.MemoryStore
}

func newTestServer(t *testing.T, store repository.Store) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := config.ImportConfig{MaxRows: 5000, CatalogChunkSize: 500, MaxUploadMB: 5}
	reportCache := cache.NewReportCacheWithClient(nil, 0)

	router := gin.New()
	RegisterRoutes(router, Handlers{
		Import:        NewImportHandler(store, nil, nil, metrics.NewImportMetrics(), cfg, logger),
		Report:        NewReportHandler(store, reportCache, logger),
		PurchaseOrder: NewPurchaseOrderHandler(store),
		Health:        NewHealthHandler(store, reportCache),
	})
	return router
}

func setup(t *testing.T) *testServer {
	store := repository.NewMemoryStore()
	return &testServer{router: newTestServer(t, store), store: store}
}

func workbook(t *testing.T, sheet string, rows ...[]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", sheet))
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		values := r
		require.NoError(t, f.SetSheetRow(sheet, cell, &values))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func uploadRequest(t *testing.T, path, filename string, data []byte, fields map[string]string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if data != nil {
		part, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

// orderWorkbook has a title, a blank row and the header on spreadsheet row 3
func orderWorkbook(t *testing.T) []byte {
	return workbook(t, "Orders",
		[]interface{}{"PRODUCTION TRACKING SS25"},
		[]interface{}{},
		[]interface{}{"PO", "SUPPLIER", "REFERENCE", "STYLE", "COLOR", "QTY", "PRICE", "CFM", "CFM ROUND"},
		[]interface{}{"PO-100", "ACME", "R1", "StyleA", "Red", 2000, 10.5, "2024-03-01", "Round 1"},
	)
}

func TestImportPurchaseOrders_HeaderOnThirdRow(t *testing.T) {
	s := setup(t)

	w := s.do(uploadRequest(t, "/api/v1/purchase-orders/import", "orders.xlsx", orderWorkbook(t), nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "Orders", body["sheet"])
	assert.Equal(t, float64(3), body["header_row"])
	assert.Equal(t, float64(1), body["pos_encontrados"])
	assert.Equal(t, float64(1), body["lineas_actualizadas"])
	assert.Equal(t, float64(1), body["muestras_actualizadas"])
	assert.Equal(t, float64(1), body["nuevos"])
	assert.Empty(t, body["errores"])
	assert.NotEmpty(t, body["report_id"])

	pos, err := s.store.FetchPurchaseOrders(context.Background(), []string{"PO-100"})
	require.NoError(t, err)
	require.Len(t, pos, 1)
	assert.Equal(t, "ACME", pos[0].Supplier)

	require.Len(t, pos[0].Lines, 1)
	line := pos[0].Lines[0]
	assert.Equal(t, 2000, line.Qty)
	assert.Equal(t, "10.50", line.Price.StringFixed(2))
	assert.Equal(t, "21000.00", line.Amount.StringFixed(2))

	require.Len(t, line.Samples, 1)
	sample := line.Samples[0]
	assert.Equal(t, models.SampleTypeCFM, sample.TipoMuestra)
	require.NotNil(t, sample.Round)
	assert.Equal(t, 1, *sample.Round)
	assert.Equal(t, models.SampleStatusInProgress, sample.EstadoMuestra)
}

func TestImportPurchaseOrders_SecondImportIsUnchanged(t *testing.T) {
	s := setup(t)
	data := orderWorkbook(t)

	require.Equal(t, http.StatusOK, s.do(uploadRequest(t, "/api/v1/purchase-orders/import", "orders.xlsx", data, nil)).Code)
	w := s.do(uploadRequest(t, "/api/v1/purchase-orders/import", "orders.xlsx", data, nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, float64(0), body["nuevos"])
	assert.Equal(t, float64(0), body["modificados"])
	assert.Equal(t, float64(1), body["sinCambios"])

	orders, lines, samples, _ := s.store.Counts()
	assert.Equal(t, 1, orders)
	assert.Equal(t, 1, lines)
	assert.Equal(t, 1, samples)
}

func TestImportPurchaseOrders_ValidateOnly(t *testing.T) {
	s := setup(t)

	w := s.do(uploadRequest(t, "/api/v1/purchase-orders/import", "orders.xlsx", orderWorkbook(t), map[string]string{"validateOnly": "true"}))
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, "preview", body["status"])
	assert.Equal(t, float64(1), body["nuevos"])

	detalles, ok := body["detalles"].(map[string]interface{})
	require.True(t, ok)
	entry, ok := detalles["PO-100"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "new", entry["status"])

	orders, _, _, _ := s.store.Counts()
	assert.Equal(t, 0, orders)
}

func TestImportPurchaseOrders_HeaderNotDetected(t *testing.T) {
	s := setup(t)
	data := workbook(t, "Orders",
		[]interface{}{"Weekly notes"},
		[]interface{}{"call factory", "check leather"},
	)

	w := s.do(uploadRequest(t, "/api/v1/purchase-orders/import", "orders.xlsx", data, nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["error"], "header row not detected")

	orders, lines, samples, catalog := s.store.Counts()
	assert.Zero(t, orders+lines+samples+catalog)
}

func TestImportPurchaseOrders_InputRejections(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     func(t *testing.T) []byte
		contains string
	}{
		{"missing file", "", func(t *testing.T) []byte { return nil }, "file is required"},
		{"unsupported format", "orders.pdf", func(t *testing.T) []byte { return []byte("%PDF-1.4") }, "unsupported"},
		{"corrupt workbook", "orders.xlsx", func(t *testing.T) []byte { return []byte("not a zip") }, "not a readable workbook"},
		{"first row without PO", "orders.xlsx", func(t *testing.T) []byte {
			return workbook(t, "Orders",
				[]interface{}{"PO", "REFERENCE", "STYLE", "COLOR"},
				[]interface{}{"", "R1", "StyleA", "Red"},
			)
		}, "PO"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := setup(t)
			w := s.do(uploadRequest(t, "/api/v1/purchase-orders/import", tc.filename, tc.data(t), nil))
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, decode(t, w)["error"], tc.contains)
		})
	}
}

type failingStore struct {
	*repository.MemoryStore
}

func (f failingStore) FetchPurchaseOrders(ctx context.Context, poKeys []string) ([]models.PurchaseOrder, error) {
	return nil, errors.New("connection refused")
}

func TestImportPurchaseOrders_StoreFailure(t *testing.T) {
	router := newTestServer(t, failingStore{repository.NewMemoryStore()})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "/api/v1/purchase-orders/import", "orders.xlsx", orderWorkbook(t), nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}

func TestImportProductionFeed_PatchesAndReportsMissing(t *testing.T) {
	s := setup(t)
	require.Equal(t, http.StatusOK, s.do(uploadRequest(t, "/api/v1/purchase-orders/import", "orders.xlsx", orderWorkbook(t), nil)).Code)

	feed := workbook(t, "China",
		[]interface{}{"PO", "REFERENCE", "STYLE", "COLOR", "ETD", "CFM", "CFM APPROVAL"},
		[]interface{}{"PO-100", "R1", "StyleA", "Red", "2024-04-30", "2024-03-01", "2024-03-05"},
		[]interface{}{"PO-999", "R1", "StyleA", "Red", "2024-05-01", "", ""},
	)

	w := s.do(uploadRequest(t, "/api/v1/purchase-orders/production-feed", "feed.xlsx", feed, nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, "partial", body["status"])
	assert.Equal(t, "China", body["sheet"])
	assert.Equal(t, float64(1), body["pos_encontrados"])
	assert.Equal(t, float64(1), body["muestras_actualizadas"])

	errores, ok := body["errores"].([]interface{})
	require.True(t, ok)
	require.Len(t, errores, 1)
	assert.Contains(t, errores[0], "PO-999")

	pos, err := s.store.FetchPurchaseOrders(context.Background(), []string{"PO-100"})
	require.NoError(t, err)
	require.Len(t, pos, 1)
	require.NotNil(t, pos[0].ETD)
	assert.Equal(t, "2024-04-30", models.FormatDate(pos[0].ETD))
	assert.Equal(t, models.SampleStatusConfirmed, pos[0].Lines[0].Samples[0].EstadoMuestra)
	// field-patch never touches line quantities
	assert.Equal(t, 2000, pos[0].Lines[0].Qty)
}

func TestImportProductionFeed_SheetNotFound(t *testing.T) {
	s := setup(t)

	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", "Summary"))
	_, err := f.NewSheet("Europe")
	require.NoError(t, err)
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	w := s.do(uploadRequest(t, "/api/v1/purchase-orders/production-feed", "feed.xlsx", buf.Bytes(), nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["error"], "China")
}

func TestImportProductionFeed_ExplicitHintDoesNotFallBack(t *testing.T) {
	s := setup(t)
	data := workbook(t, "Data",
		[]interface{}{"PO", "REFERENCE", "STYLE", "COLOR", "ETD"},
		[]interface{}{"PO-100", "R1", "StyleA", "Red", "2024-04-30"},
	)

	w := s.do(uploadRequest(t, "/api/v1/purchase-orders/production-feed", "feed.xlsx", data, map[string]string{"sheet": "feeder"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImportInspections_DefaultSheet(t *testing.T) {
	s := setup(t)
	require.Equal(t, http.StatusOK, s.do(uploadRequest(t, "/api/v1/purchase-orders/import", "orders.xlsx", orderWorkbook(t), nil)).Code)

	data := workbook(t, "Inspection Report",
		[]interface{}{"PO", "REFERENCE", "STYLE", "COLOR", "INSPECTION STATUS", "SHIPPING DATE"},
		[]interface{}{"PO-100", "R1", "StyleA", "Red", "Passed", "2024-05-10"},
	)

	w := s.do(uploadRequest(t, "/api/v1/inspections/import", "inspection.xlsx", data, nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Inspection Report", decode(t, w)["sheet"])

	pos, err := s.store.FetchPurchaseOrders(context.Background(), []string{"PO-100"})
	require.NoError(t, err)
	assert.Equal(t, "Passed", pos[0].InspectionStatus)
	assert.Equal(t, "2024-05-10", models.FormatDate(pos[0].ShippingDate))
}

func TestImportCatalog_DeduplicatesAndInserts(t *testing.T) {
	s := setup(t)
	data := workbook(t, "Feeder",
		[]interface{}{"MATERIAL", "COLOR", "SOLE"},
		[]interface{}{"Suede", "Red", "Rubber"},
		[]interface{}{"SUEDE", "Blue", ""},
		[]interface{}{"", "Red", "rubber"},
	)

	w := s.do(uploadRequest(t, "/api/v1/catalog/import", "feeder.xlsx", data, nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(4), body["imported_unique"])
	assert.Equal(t, []interface{}{"3 duplicate values ignored"}, body["avisos"])

	detalles, ok := body["detalles"].(map[string]interface{})
	require.True(t, ok)
	assert.Len(t, detalles["cambios"], 4)

	_, _, _, catalog := s.store.Counts()
	assert.Equal(t, 4, catalog)

	// a second upload inserts nothing new
	w = s.do(uploadRequest(t, "/api/v1/catalog/import", "feeder.xlsx", data, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), decode(t, w)["nuevos"])
	_, _, _, catalog = s.store.Counts()
	assert.Equal(t, 4, catalog)
}

func TestImportCatalog_CSV(t *testing.T) {
	s := setup(t)
	data := []byte("MATERIAL,COLOR,SOLE\nSuede,Red,Rubber\n")

	w := s.do(uploadRequest(t, "/api/v1/catalog/import", "feeder.csv", data, nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, float64(3), decode(t, w)["imported_unique"])
}

func TestIsInputError(t *testing.T) {
	assert.True(t, IsInputError(errFileRequired))
	assert.False(t, IsInputError(errors.New("connection refused")))
}
