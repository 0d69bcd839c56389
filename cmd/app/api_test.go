package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/stretchr/testify/require"

	"github.com/YoshikiFujii/FLcasher/internal/broadcast"
	"github.com/YoshikiFujii/FLcasher/internal/db"
	"github.com/YoshikiFujii/FLcasher/internal/metrics"
	"github.com/YoshikiFujii/FLcasher/internal/repository"
	"github.com/YoshikiFujii/FLcasher/internal/services"
)

func newTestServer(t *testing.T) (*echo.Echo, string) {
	t.Helper()
	conn, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	imageDir := t.TempDir()
	reg := metrics.NewRegistry()
	hub := broadcast.NewHub()
	hub.OnDrop = reg.BroadcastDropped.Inc

	productSvc := services.NewProductService(repository.NewProductRepository(conn))
	orderSvc := services.NewOrderService(repository.NewOrderRepository(conn), hub, reg)

	e := echo.New()
	e.Use(echomw.Recover())
	api := e.Group("")
	registerProductRoutes(api, productSvc, imageDir)
	registerOrderRoutes(api, orderSvc)
	registerKitchenRoutes(api, orderSvc, hub)
	registerSalesRoutes(api, orderSvc)
	e.GET("/metrics", echo.WrapHandler(reg.Handler()))
	return e, imageDir
}

func doJSON(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestProductLifecycle(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doJSON(t, e, http.MethodGet, "/products", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, "[]", rec.Body.String())

	rec = doJSON(t, e, http.MethodPost, "/products", `{"name":"Coffee","price":350,"isAvailable":true}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created map[string]int64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, int64(1), created["id"])

	rec = doJSON(t, e, http.MethodPut, "/products/1", `{"name":"Coffee","price":400,"isAvailable":true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, e, http.MethodGet, "/products", "")
	require.Contains(t, rec.Body.String(), `"price":400`)

	rec = doJSON(t, e, http.MethodDelete, "/products/1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, e, http.MethodDelete, "/products/1", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitOrderReturnsIDs(t *testing.T) {
	e, _ := newTestServer(t)

	body := `{"timestamp":1000,"totalAmount":700,"status":"PENDING","items":[{"productId":1,"productName":"Coffee","quantity":2,"priceAtSale":350}]}`
	rec := doJSON(t, e, http.MethodPost, "/order", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		ID        int64 `json:"id"`
		DisplayID int   `json:"displayId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, int64(1), resp.ID)
	require.Equal(t, 1, resp.DisplayID)

	// second order gets the next display id
	rec = doJSON(t, e, http.MethodPost, "/order", body)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.DisplayID)

	// reset, then the sequence starts over
	rec = doJSON(t, e, http.MethodPost, "/reset-order-number", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, e, http.MethodPost, "/order", body)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.DisplayID)
}

func TestSubmitMalformedOrderIsBadRequest(t *testing.T) {
	e, _ := newTestServer(t)
	rec := doJSON(t, e, http.MethodPost, "/order", `{"timestamp": "not a number"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrderStatusEndpoints(t *testing.T) {
	e, _ := newTestServer(t)

	doJSON(t, e, http.MethodPost, "/order", `{"timestamp":1000,"totalAmount":100,"status":"PENDING","items":[]}`)

	rec := doJSON(t, e, http.MethodPost, "/order/1/complete", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, e, http.MethodPost, "/order/1/complete", "")
	require.Equal(t, http.StatusOK, rec.Code, "complete is idempotent")

	rec = doJSON(t, e, http.MethodGet, "/kitchen/orders", "")
	require.JSONEq(t, "[]", rec.Body.String())

	rec = doJSON(t, e, http.MethodPost, "/order/1/revert", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, e, http.MethodGet, "/kitchen/orders", "")
	require.Contains(t, rec.Body.String(), `"status":"PENDING"`)

	rec = doJSON(t, e, http.MethodPost, "/order/404/complete", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	rec = doJSON(t, e, http.MethodPost, "/order/bad/complete", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSalesTotalIsPlainText(t *testing.T) {
	e, _ := newTestServer(t)

	doJSON(t, e, http.MethodPost, "/order", `{"timestamp":1000,"totalAmount":100,"status":"PENDING","items":[]}`)
	doJSON(t, e, http.MethodPost, "/order", `{"timestamp":1000,"totalAmount":200,"status":"COMPLETED","items":[]}`)
	doJSON(t, e, http.MethodPost, "/order", `{"timestamp":1000,"totalAmount":50,"status":"CANCELLED","items":[]}`)

	rec := doJSON(t, e, http.MethodGet, "/sales/total?since=999", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "300", rec.Body.String())
}

func TestImageEndpoint(t *testing.T) {
	e, imageDir := newTestServer(t)

	require.NoError(t, os.WriteFile(filepath.Join(imageDir, "coffee.png"), []byte("png-bytes"), 0o644))

	rec := doJSON(t, e, http.MethodGet, "/images/coffee.png", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "png-bytes", rec.Body.String())

	rec = doJSON(t, e, http.MethodGet, "/images/missing.png", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestKitchenWebSocketReceivesNewOrder(t *testing.T) {
	e, _ := newTestServer(t)
	srv := httptest.NewServer(e)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/kitchen"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	resp, err := http.Post(srv.URL+"/order", echo.MIMEApplicationJSON,
		strings.NewReader(`{"timestamp":1000,"totalAmount":700,"status":"PENDING","items":[]}`))
	require.NoError(t, err)
	resp.Body.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev broadcast.Event
	require.NoError(t, conn.ReadJSON(&ev))
	require.Equal(t, broadcast.EventNewOrder, ev.Type)
	require.Equal(t, int64(1), ev.OrderID)
}

func TestMetricsEndpoint(t *testing.T) {
	e, _ := newTestServer(t)
	doJSON(t, e, http.MethodPost, "/order", `{"timestamp":1,"totalAmount":1,"status":"PENDING","items":[]}`)

	rec := doJSON(t, e, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "pos_orders_submitted_total 1")
}
