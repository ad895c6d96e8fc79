package http_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/farmanaccio-api/internal/domain/entity"
	pkgjwt "github.com/jhoicas/farmanaccio-api/pkg/jwt"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testUsername  = "mostrador"
	testIssuer    = "farmanaccio-test"
	testExpMin    = 60
)

// bearer firma un token con el secreto del servidor de prueba.
func bearer(t *testing.T, username, role string, expMinutes int) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, username, role, testIssuer, expMinutes)
	require.NoError(t, err)
	return "Bearer " + tok
}

// ──────────────────────────────────────────────────────────────────────────────
// Token
// ──────────────────────────────────────────────────────────────────────────────

func TestAuth_TokenAusenteOInvalido_Retorna401(t *testing.T) {
	srv := newTestServer(t)
	ajeno, err := pkgjwt.Generate("otro-secreto", testUserID, testUsername, entity.RoleAdmin, testIssuer, testExpMin)
	require.NoError(t, err)

	tests := []struct {
		name     string
		header   string
		wantCode string
	}{
		{"sin header", "", "MISSING_TOKEN"},
		{"esquema distinto de Bearer", "Basic YWRtaW46c2VjcmV0bw==", "INVALID_TOKEN"},
		{"token malformado", "Bearer no.es.jwt", "INVALID_TOKEN"},
		{"token vencido", bearer(t, testUsername, entity.RoleAdmin, -1), "INVALID_TOKEN"},
		{"firmado con otro secreto", "Bearer " + ajeno, "INVALID_TOKEN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := srv.do(t, http.MethodGet, "/api/products", tt.header, nil)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, tt.wantCode, decode(t, resp)["code"])
		})
	}
}

func TestAuth_SesionDevuelveLosClaimsDelToken(t *testing.T) {
	srv := newTestServer(t)

	resp := srv.do(t, http.MethodGet, "/api/auth/session", bearer(t, testUsername, entity.RoleEmpleado, testExpMin), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, testUsername, body["username"])
	assert.Equal(t, entity.RoleEmpleado, body["role"])

	// El token emitido por el login lleva el usuario real.
	resp = srv.do(t, http.MethodGet, "/api/auth/session", srv.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decode(t, resp)
	assert.Equal(t, "admin", body["username"])
	assert.Equal(t, entity.RoleAdmin, body["role"])
	assert.NotEmpty(t, body["user_id"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Rutas solo para admin
// ──────────────────────────────────────────────────────────────────────────────

func TestAuth_RutasDeAdminSegunRol(t *testing.T) {
	srv := newTestServer(t)
	routes := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodGet, "/api/users", nil},
		{http.MethodPut, "/api/settings/lot-selection", map[string]bool{"manual_lot_selection": true}},
	}
	roles := []struct {
		role       string
		wantStatus int
		wantCode   string
	}{
		{entity.RoleAdmin, http.StatusOK, ""},
		{entity.RoleEmpleado, http.StatusForbidden, "FORBIDDEN"},
		{"cajero", http.StatusForbidden, "FORBIDDEN"},
		{"", http.StatusUnauthorized, "MISSING_ROLE"},
	}
	for _, r := range routes {
		for _, tt := range roles {
			t.Run(r.method+" "+r.path+" rol="+tt.role, func(t *testing.T) {
				resp := srv.do(t, r.method, r.path, bearer(t, testUsername, tt.role, testExpMin), r.body)
				assert.Equal(t, tt.wantStatus, resp.StatusCode)
				if tt.wantCode != "" {
					assert.Equal(t, tt.wantCode, decode(t, resp)["code"])
				} else {
					resp.Body.Close()
				}
			})
		}
	}
}

func TestAuth_EmpleadoOperaFueraDeLasRutasDeAdmin(t *testing.T) {
	srv := newTestServer(t)
	productID := srv.restockAmoxicilina(t)
	empleado := bearer(t, testUsername, entity.RoleEmpleado, testExpMin)

	resp := srv.do(t, http.MethodGet, "/api/settings/lot-selection", empleado, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = srv.do(t, http.MethodPost, "/api/sales", empleado, map[string]any{
		"items": []map[string]any{{"product_id": productID, "quantity": 1}},
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
}
