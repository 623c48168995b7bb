//go:build integration

package e2e

// e2e_test.go
// End-to-end integration tests using real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./tests/e2e/... -v
//
// These tests:
//   T-E2E-1: Full billing cycle (login → producto → emitir → anular → stock restored)
//   T-E2E-2: Atomicity — a failing second line rolls back stock AND the document number
//   T-E2E-3: Concurrent emissions get distinct consecutive numbers, no gaps
//   T-E2E-4: Price change writes an audit entry; masivo writes one per product

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"invenfact/internal/config"
	"invenfact/internal/infra"
	"invenfact/internal/router"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"golang.org/x/crypto/bcrypt"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// ── Test Suite Setup ─────────────────────────────────────────────────────────

type testEnv struct {
	server *httptest.Server
	token  string // admin JWT
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	// Start Postgres container
	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("invenfact_test"),
		tcPostgres.WithUsername("invenfact"),
		tcPostgres.WithPassword("invenfact"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// Start Redis container
	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:               8000,
		Env:                "test",
		JWTSecret:          "test-secret-key",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
		FacturaPrefijo:     "FAC",
		FacturaConAnio:     true,
		FacturaRelleno:     6,
	}

	// Connect: runs AutoMigrate and seeds the FACTURA sequence
	db, err := infra.NewDatabase(cfg)
	require.NoError(t, err)

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	// Seed admin user
	hash, err := bcrypt.GenerateFromPassword([]byte("invenfact2026"), 12)
	require.NoError(t, err)
	require.NoError(t, db.Exec(`
		INSERT INTO usuarios (username, nombre, password_hash, rol, activo, created_at, updated_at)
		VALUES ('admin@e2e.test', 'Admin E2E', ?, 'administrador', true, NOW(), NOW())
		ON CONFLICT DO NOTHING`, string(hash)).Error)

	r := router.New(cfg, db, rdb)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	loginResp := do(t, srv, "POST", "/v1/auth/login",
		jsonBody(t, map[string]string{"username": "admin@e2e.test", "password": "invenfact2026"}),
		"",
	)
	require.Equal(t, http.StatusOK, loginResp.StatusCode)
	var loginBody struct {
		AccessToken string `json:"access_token"`
	}
	decodeJSON(t, loginResp, &loginBody)
	require.NotEmpty(t, loginBody.AccessToken)

	return &testEnv{server: srv, token: loginBody.AccessToken}
}

func (env *testEnv) crearProducto(t *testing.T, codigo, nombre string, precioVenta int64, stock int) uint {
	t.Helper()
	resp := do(t, env.server, "POST", "/v1/productos",
		jsonBody(t, map[string]any{
			"codigo":        codigo,
			"nombre":        nombre,
			"precio_compra": precioVenta / 2,
			"precio_venta":  precioVenta,
			"stock_inicial": stock,
			"stock_minimo":  1,
		}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var prod struct {
		ID uint `json:"id"`
	}
	decodeJSON(t, resp, &prod)
	return prod.ID
}

func (env *testEnv) stockActual(t *testing.T, id uint) int {
	t.Helper()
	resp := do(t, env.server, "GET", fmt.Sprintf("/v1/productos/%d", id), nil, env.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var prod struct {
		StockActual int `json:"stock_actual"`
	}
	decodeJSON(t, resp, &prod)
	return prod.StockActual
}

// ── Tests ────────────────────────────────────────────────────────────────────

// T-E2E-1: Full billing cycle
func TestE2E_FullBillingCycle(t *testing.T) {
	env := setupTestEnv(t)
	year := time.Now().Year()

	prodID := env.crearProducto(t, "7890001000001", "Gaseosa 500ml", 2500, 20)

	// Emitir
	emitResp := do(t, env.server, "POST", "/v1/facturas",
		jsonBody(t, map[string]any{
			"items":    []map[string]any{{"producto_id": prodID, "cantidad": 3}},
			"tasa_iva": "19",
		}), env.token)
	require.Equal(t, http.StatusCreated, emitResp.StatusCode)
	var factura struct {
		ID       uint   `json:"id"`
		Numero   string `json:"numero"`
		Subtotal int64  `json:"subtotal"`
		MontoIVA int64  `json:"monto_iva"`
		Total    int64  `json:"total"`
		Estado   string `json:"estado"`
	}
	decodeJSON(t, emitResp, &factura)
	assert.Equal(t, fmt.Sprintf("FAC-%d-000001", year), factura.Numero)
	assert.Equal(t, int64(7500), factura.Subtotal)
	assert.Equal(t, int64(1425), factura.MontoIVA)
	assert.Equal(t, int64(8925), factura.Total)
	assert.Equal(t, "emitida", factura.Estado)
	assert.Equal(t, 17, env.stockActual(t, prodID))

	// Anular
	anularResp := do(t, env.server, "POST", fmt.Sprintf("/v1/facturas/%d/anular", factura.ID),
		jsonBody(t, map[string]any{"motivo": "Error de carga en test"}), env.token)
	require.Equal(t, http.StatusOK, anularResp.StatusCode)
	var anulada struct {
		Estado string `json:"estado"`
	}
	decodeJSON(t, anularResp, &anulada)
	assert.Equal(t, "anulada", anulada.Estado)
	assert.Equal(t, 20, env.stockActual(t, prodID))

	// Doble anulación → 409
	dobleResp := do(t, env.server, "POST", fmt.Sprintf("/v1/facturas/%d/anular", factura.ID),
		jsonBody(t, map[string]any{"motivo": "Segundo intento"}), env.token)
	defer dobleResp.Body.Close()
	assert.Equal(t, http.StatusConflict, dobleResp.StatusCode)
	assert.Equal(t, 20, env.stockActual(t, prodID))
}

// T-E2E-2: a failing line rolls back everything, including the number
func TestE2E_EmisionAtomica(t *testing.T) {
	env := setupTestEnv(t)
	year := time.Now().Year()

	okID := env.crearProducto(t, "7890001000002", "Agua Mineral", 1000, 50)
	pocoID := env.crearProducto(t, "7890001000003", "Jugo 1L", 1500, 2)

	// Segunda línea pide más stock del disponible → 409, nada persiste
	emitResp := do(t, env.server, "POST", "/v1/facturas",
		jsonBody(t, map[string]any{
			"items": []map[string]any{
				{"producto_id": okID, "cantidad": 5},
				{"producto_id": pocoID, "cantidad": 10},
			},
		}), env.token)
	defer emitResp.Body.Close()
	require.Equal(t, http.StatusConflict, emitResp.StatusCode)

	// El stock de la primera línea también volvió atrás
	assert.Equal(t, 50, env.stockActual(t, okID))
	assert.Equal(t, 2, env.stockActual(t, pocoID))

	// El número no se consumió: la próxima emisión sigue siendo 000001
	okResp := do(t, env.server, "POST", "/v1/facturas",
		jsonBody(t, map[string]any{
			"items": []map[string]any{{"producto_id": okID, "cantidad": 1}},
		}), env.token)
	require.Equal(t, http.StatusCreated, okResp.StatusCode)
	var factura struct {
		Numero string `json:"numero"`
	}
	decodeJSON(t, okResp, &factura)
	assert.Equal(t, fmt.Sprintf("FAC-%d-000001", year), factura.Numero)
}

// T-E2E-3: concurrent emissions serialize on the sequence row
func TestE2E_NumeracionConcurrente(t *testing.T) {
	env := setupTestEnv(t)

	const n = 8
	prodID := env.crearProducto(t, "7890001000004", "Leche 1L", 2000, 100)

	var wg sync.WaitGroup
	numeros := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp := do(t, env.server, "POST", "/v1/facturas",
				jsonBody(t, map[string]any{
					"items": []map[string]any{{"producto_id": prodID, "cantidad": 1}},
				}), env.token)
			if resp.StatusCode != http.StatusCreated {
				resp.Body.Close()
				return
			}
			var factura struct {
				Numero string `json:"numero"`
			}
			decodeJSON(t, resp, &factura)
			numeros <- factura.Numero
		}()
	}
	wg.Wait()
	close(numeros)

	vistos := make(map[string]bool)
	for num := range numeros {
		assert.False(t, vistos[num], "número duplicado: %s", num)
		vistos[num] = true
	}
	assert.Len(t, vistos, n)
	assert.Equal(t, 100-n, env.stockActual(t, prodID))
}

// T-E2E-4: price audit trail
func TestE2E_HistorialPrecios(t *testing.T) {
	env := setupTestEnv(t)

	prodID := env.crearProducto(t, "7890001000005", "Yerba 1kg", 2300, 10)

	// Cambio de precio manual
	updResp := do(t, env.server, "PUT", fmt.Sprintf("/v1/productos/%d", prodID),
		jsonBody(t, map[string]any{"precio_venta": 2600, "motivo": "ajuste por inflación"}), env.token)
	require.Equal(t, http.StatusOK, updResp.StatusCode)
	updResp.Body.Close()

	// Update sin cambio de precio: no debe agregar entrada
	nopResp := do(t, env.server, "PUT", fmt.Sprintf("/v1/productos/%d", prodID),
		jsonBody(t, map[string]any{"nombre": "Yerba premium 1kg"}), env.token)
	require.Equal(t, http.StatusOK, nopResp.StatusCode)
	nopResp.Body.Close()

	histResp := do(t, env.server, "GET", fmt.Sprintf("/v1/productos/%d/historial-precios", prodID), nil, env.token)
	require.Equal(t, http.StatusOK, histResp.StatusCode)
	var hist struct {
		Data []struct {
			VentaAntes   int64  `json:"venta_antes"`
			VentaDespues int64  `json:"venta_despues"`
			Motivo       string `json:"motivo"`
		} `json:"data"`
		Total int64 `json:"total"`
	}
	decodeJSON(t, histResp, &hist)
	require.Equal(t, int64(1), hist.Total)
	assert.Equal(t, int64(2300), hist.Data[0].VentaAntes)
	assert.Equal(t, int64(2600), hist.Data[0].VentaDespues)
	assert.Equal(t, "ajuste por inflación", hist.Data[0].Motivo)
}
