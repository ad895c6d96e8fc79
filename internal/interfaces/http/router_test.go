package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/farmanaccio-api/internal/application/auth"
	"github.com/jhoicas/farmanaccio-api/internal/application/billing"
	"github.com/jhoicas/farmanaccio-api/internal/application/inventory"
	"github.com/jhoicas/farmanaccio-api/internal/infrastructure/memory"
	"github.com/jhoicas/farmanaccio-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/farmanaccio-api/internal/interfaces/http"
	"github.com/jhoicas/farmanaccio-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Servidor de prueba sobre el almacenamiento en memoria
// ──────────────────────────────────────────────────────────────────────────────

type testServer struct {
	app   *fiber.App
	admin string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := logger.Nop()
	st := memory.NewStore()
	tx := memory.NewTxRunner(st)
	settings := inventory.NewSettings(false)

	authUC := auth.NewAuthUseCase(st.Users(), auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer}, log).
		WithBcryptCost(bcrypt.MinCost)
	created, err := authUC.EnsureAdmin(context.Background(), "admin", "secreto1")
	require.NoError(t, err)
	require.True(t, created)

	docs := pdf.NewMarotoDocumentGenerator(pdf.NewDirectoryLocator(t.TempDir()), "Farmacia de Prueba")
	saleUC := billing.NewSaleUseCase(tx, st.Customers(), st.Invoices(), docs, settings, log)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:      authUC,
		ProductUC:   inventory.NewProductUseCase(tx, st.Products(), st.Lots(), st.Movements(), st.Vademecum(), log),
		RestockUC:   inventory.NewRestockUseCase(tx, log),
		LotUC:       inventory.NewLotUseCase(tx, log),
		OverviewUC:  inventory.NewOverviewUseCase(st.Products(), st.Lots()),
		VademecumUC: inventory.NewVademecumUseCase(st.Vademecum(), log),
		Settings:    settings,
		CustomerUC:  billing.NewCustomerUseCase(st.Customers()),
		SaleUC:      saleUC,
		PDFUC:       billing.NewPDFUseCase(st.Invoices(), st.DeliveryNotes(), st.Customers(), st.Products(), docs),
		Carts:       billing.NewCartRegistry(st.Products()),
		JWTSecret:   testJWTSecret,
	})

	srv := &testServer{app: app}
	srv.admin = srv.login(t, "admin", "secreto1")
	return srv
}

func (s *testServer) login(t *testing.T, username, password string) string {
	t.Helper()
	resp := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": username, "password": password})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	return "Bearer " + body["token"].(string)
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// restockAmoxicilina ingresa 10 unidades y devuelve el ID del producto.
func (s *testServer) restockAmoxicilina(t *testing.T) string {
	t.Helper()
	resp := s.do(t, http.MethodPost, "/api/inventory/restock", s.admin, map[string]any{
		"name":        "Amoxicilina 500",
		"price":       "1250.50",
		"quantity":    10,
		"lot_label":   "L-001",
		"expiry_date": "2030-01-31",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decode(t, resp)
	return body["product"].(map[string]any)["id"].(string)
}

// ──────────────────────────────────────────────────────────────────────────────
// Auth y roles
// ──────────────────────────────────────────────────────────────────────────────

func TestLogin_PasswordIncorrecta_Retorna401(t *testing.T) {
	srv := newTestServer(t)
	resp := srv.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "admin", "password": "otra"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", decode(t, resp)["code"])
}

func TestEmpleado_NoPuedeCambiarPoliticaDeLotes(t *testing.T) {
	srv := newTestServer(t)
	resp := srv.do(t, http.MethodPost, "/api/users", srv.admin, map[string]string{"username": "caja1", "password": "secreto2"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	empleado := srv.login(t, "caja1", "secreto2")

	resp = srv.do(t, http.MethodPut, "/api/settings/lot-selection", empleado, map[string]bool{"manual_lot_selection": true})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = srv.do(t, http.MethodGet, "/api/settings/lot-selection", empleado, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, decode(t, resp)["manual_lot_selection"])

	resp = srv.do(t, http.MethodGet, "/api/users", empleado, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Reabastecimiento con decisión pendiente
// ──────────────────────────────────────────────────────────────────────────────

func TestRestock_ConflictoDePrecio_PideDecisionYReintenta(t *testing.T) {
	srv := newTestServer(t)
	srv.restockAmoxicilina(t)

	req := map[string]any{
		"name":        "amoxicilina 500",
		"price":       "1300",
		"quantity":    5,
		"lot_label":   "L-001",
		"expiry_date": "2030-01-31",
	}
	resp := srv.do(t, http.MethodPost, "/api/inventory/restock", srv.admin, req)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, "DECISION_REQUIRED", body["code"])
	assert.Equal(t, "price", body["kind"])
	conflict := body["conflict"].(map[string]any)
	assert.Equal(t, "1250.5", conflict["stored_price"])

	req["on_price_conflict"] = "adopt"
	resp = srv.do(t, http.MethodPost, "/api/inventory/restock", srv.admin, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decode(t, resp)
	assert.Equal(t, true, body["price_updated"])
	product := body["product"].(map[string]any)
	assert.Equal(t, "1300", product["price"])
	assert.EqualValues(t, 15, product["stock"])
}

func TestRestock_FechaInvalida_Retorna400(t *testing.T) {
	srv := newTestServer(t)
	resp := srv.do(t, http.MethodPost, "/api/inventory/restock", srv.admin, map[string]any{
		"name": "Ibuprofeno", "price": "100", "quantity": 1, "lot_label": "X", "expiry_date": "31/01/2030",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decode(t, resp)["code"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Ventas
// ──────────────────────────────────────────────────────────────────────────────

func TestSale_ConfirmaYDescargaPDF(t *testing.T) {
	srv := newTestServer(t)
	productID := srv.restockAmoxicilina(t)

	resp := srv.do(t, http.MethodPost, "/api/sales", srv.admin, map[string]any{
		"items": []map[string]any{{"product_id": productID, "quantity": 3}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decode(t, resp)
	invoice := body["invoice"].(map[string]any)
	assert.EqualValues(t, 1, invoice["number"])
	assert.Equal(t, "3751.5", invoice["net_total"])
	deductions := body["deductions"].([]any)
	require.Len(t, deductions, 1)
	assert.EqualValues(t, 7, deductions[0].(map[string]any)["remaining"])

	resp = srv.do(t, http.MethodGet, "/api/invoices/"+invoice["id"].(string)+"/pdf", srv.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "factura_000001.pdf")
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))
}

func TestSale_StockInsuficiente_InformaEtapaYFaltante(t *testing.T) {
	srv := newTestServer(t)
	productID := srv.restockAmoxicilina(t)

	resp := srv.do(t, http.MethodPost, "/api/sales", srv.admin, map[string]any{
		"items": []map[string]any{{"product_id": productID, "quantity": 11}},
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, "INSUFFICIENT_STOCK", body["code"])
	assert.Equal(t, "STOCK_CHECK", body["stage"])
	shortfall := body["shortfall"].(map[string]any)
	assert.EqualValues(t, 11, shortfall["requested"])
	assert.EqualValues(t, 10, shortfall["available"])

	resp = srv.do(t, http.MethodGet, "/api/invoices", srv.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()
	var list []any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	assert.Empty(t, list)
}

func TestSale_ManualSinSeleccion_SeCancela(t *testing.T) {
	srv := newTestServer(t)
	productID := srv.restockAmoxicilina(t)

	resp := srv.do(t, http.MethodPost, "/api/sales", srv.admin, map[string]any{
		"items":      []map[string]any{{"product_id": productID, "quantity": 1}},
		"lot_policy": "manual",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "CANCELLED", decode(t, resp)["code"])
}

func TestSale_DescuentoNumericoOTexto(t *testing.T) {
	tests := []struct {
		name     string
		discount any
		wantNet  string
	}{
		{"número", 10, "3376.35"},
		{"número negativo", -10, "3751.5"},
		{"número mayor a 100", 150, "0"},
		{"texto con porcentaje", "10%", "3376.35"},
		{"texto no numérico", "abc", "3751.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t)
			productID := srv.restockAmoxicilina(t)
			resp := srv.do(t, http.MethodPost, "/api/sales", srv.admin, map[string]any{
				"items":    []map[string]any{{"product_id": productID, "quantity": 3}},
				"discount": tt.discount,
			})
			require.Equal(t, http.StatusCreated, resp.StatusCode)
			invoice := decode(t, resp)["invoice"].(map[string]any)
			assert.Equal(t, "3751.5", invoice["gross_total"])
			assert.Equal(t, tt.wantNet, invoice["net_total"])
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Edición de productos
// ──────────────────────────────────────────────────────────────────────────────

func TestProductUpdate_EditaNombreYPrecio(t *testing.T) {
	srv := newTestServer(t)
	productID := srv.restockAmoxicilina(t)

	resp := srv.do(t, http.MethodPut, "/api/products/"+productID, srv.admin, map[string]any{
		"name": "Amoxicilina 500 mg", "price": "1300.25", "stock": 99,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, "Amoxicilina 500 mg", body["name"])
	assert.Equal(t, "1300.25", body["price"])
	assert.EqualValues(t, 10, body["stock"], "el stock sale de los lotes")
}

func TestProductUpdate_Errores(t *testing.T) {
	srv := newTestServer(t)
	productID := srv.restockAmoxicilina(t)
	resp := srv.do(t, http.MethodPost, "/api/inventory/restock", srv.admin, map[string]any{
		"name": "Ibuprofeno 400", "price": "850", "quantity": 2, "lot_label": "I-1", "expiry_date": "2030-01-31",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = srv.do(t, http.MethodPut, "/api/products/"+productID, srv.admin, map[string]any{"name": "IBUPROFENO 400", "price": "1250.50"})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "DUPLICATE", decode(t, resp)["code"])

	resp = srv.do(t, http.MethodPut, "/api/products/"+productID, srv.admin, map[string]any{"name": "Amoxicilina 500", "price": "10.005"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decode(t, resp)["code"])

	resp = srv.do(t, http.MethodPut, "/api/products/nope", srv.admin, map[string]any{"name": "Amoxicilina 500", "price": "1"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

// ──────────────────────────────────────────────────────────────────────────────
// Carrito
// ──────────────────────────────────────────────────────────────────────────────

func TestCart_DescuentoYCheckout(t *testing.T) {
	srv := newTestServer(t)
	productID := srv.restockAmoxicilina(t)

	resp := srv.do(t, http.MethodPost, "/api/cart/items", srv.admin, map[string]any{"product_id": productID, "quantity": 3})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = srv.do(t, http.MethodPut, "/api/cart/discount", srv.admin, map[string]string{"discount": "10%"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "3376.35", decode(t, resp)["total"])

	resp = srv.do(t, http.MethodPost, "/api/cart/checkout", srv.admin, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	invoice := decode(t, resp)["invoice"].(map[string]any)
	assert.Equal(t, "3376.35", invoice["net_total"])

	resp = srv.do(t, http.MethodGet, "/api/cart", srv.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode(t, resp)["lines"])
}

func TestCart_DescuentoNumerico(t *testing.T) {
	srv := newTestServer(t)
	productID := srv.restockAmoxicilina(t)
	resp := srv.do(t, http.MethodPost, "/api/cart/items", srv.admin, map[string]any{"product_id": productID, "quantity": 3})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = srv.do(t, http.MethodPut, "/api/cart/discount", srv.admin, map[string]any{"discount": 10})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "3376.35", decode(t, resp)["total"])

	resp = srv.do(t, http.MethodPut, "/api/cart/discount", srv.admin, map[string]any{"discount": 150})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "0", decode(t, resp)["total"])
}

func TestCart_CheckoutVacio_Retorna400(t *testing.T) {
	srv := newTestServer(t)
	resp := srv.do(t, http.MethodPost, "/api/cart/checkout", srv.admin, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "EMPTY_CART", decode(t, resp)["code"])
}
