package controller_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/warung-digital/internal/adapter/api/controller"
	"github.com/hugohenrick/warung-digital/internal/adapter/api/dto"
	"github.com/hugohenrick/warung-digital/internal/adapter/api/route"
	"github.com/hugohenrick/warung-digital/internal/adapter/repository"
	domainsettings "github.com/hugohenrick/warung-digital/internal/domain/settings"
	"github.com/hugohenrick/warung-digital/internal/domain/storage"
	cartsvc "github.com/hugohenrick/warung-digital/internal/service/cart"
	"github.com/hugohenrick/warung-digital/internal/service/catalog"
	"github.com/hugohenrick/warung-digital/internal/service/checkout"
	"github.com/hugohenrick/warung-digital/internal/service/report"
	"github.com/hugohenrick/warung-digital/internal/service/sales"
	"github.com/hugohenrick/warung-digital/internal/service/settings"
	"github.com/hugohenrick/warung-digital/pkg/auth"
	"github.com/hugohenrick/warung-digital/pkg/events"
	"github.com/hugohenrick/warung-digital/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testAPI struct {
	t      *testing.T
	router *gin.Engine
	store  storage.Store
	bus    *events.Bus
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	ctx := context.Background()
	log := logger.Nop()
	store := repository.NewMemoryStore()
	bus := events.NewBus("test", log)

	jwtService, err := auth.NewJWTService("segredo-de-teste", time.Hour)
	require.NoError(t, err)

	catalogManager, err := catalog.NewManager(ctx, store, bus, log)
	require.NoError(t, err)
	t.Cleanup(catalogManager.Close)

	settingsManager, err := settings.NewManager(ctx, store, bus, log)
	require.NoError(t, err)
	t.Cleanup(settingsManager.Close)

	checkoutService, err := checkout.NewService(store, settingsManager, bus, log)
	require.NoError(t, err)

	salesService := sales.NewService(store, bus, log)
	reportService := report.NewService(salesService, catalogManager, settingsManager, time.UTC)
	userRepo := repository.NewUserRepository(store)

	router := gin.New()
	api := router.Group("/api/v1")
	route.SetupAuthRoutes(api, controller.NewAuthController(userRepo, jwtService, bus, log), jwtService)
	route.SetupUserRoutes(api, controller.NewUserController(userRepo, bus, log), jwtService)
	route.SetupProductRoutes(api, controller.NewProductController(catalogManager, settingsManager, log), jwtService)
	route.SetupCartRoutes(api,
		controller.NewCartController(cartsvc.NewService(store, bus, log), catalogManager, log),
		controller.NewCheckoutController(checkoutService, log),
		jwtService)
	route.SetupSalesRoutes(api,
		controller.NewSalesController(salesService, time.UTC, log),
		controller.NewReportController(reportService, time.UTC, log),
		jwtService)
	route.SetupSettingsRoutes(api, controller.NewSettingsController(settingsManager, log), jwtService)

	return &testAPI{t: t, router: router, store: store, bus: bus}
}

func (a *testAPI) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, "/api/v1"+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// registerOwner cadastra o dono e devolve o token de acesso
func (a *testAPI) registerOwner() string {
	a.t.Helper()
	w := a.do(http.MethodPost, "/auth/register", "", gin.H{
		"name": "Bu Sari", "email": "sari@warung.test", "password": "rahasia123",
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[dto.LoginResponse](a.t, w).AccessToken
}

func (a *testAPI) createCashier(ownerToken, email string) string {
	a.t.Helper()
	w := a.do(http.MethodPost, "/users", ownerToken, gin.H{
		"name": "Kasir", "email": email, "password": "kasir123",
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())

	w = a.do(http.MethodPost, "/auth/login", "", gin.H{"email": email, "password": "kasir123"})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	return decode[dto.LoginResponse](a.t, w).AccessToken
}

func (a *testAPI) createProduct(token, code, name string, price, stock interface{}) {
	a.t.Helper()
	w := a.do(http.MethodPost, "/products", token, gin.H{
		"code": code, "name": name, "price": price, "stock": stock,
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
}

func TestAuthFlow(t *testing.T) {
	api := newTestAPI(t)
	owner := api.registerOwner()

	// Cadastro aberto só na primeira vez
	w := api.do(http.MethodPost, "/auth/register", "", gin.H{
		"name": "Outro", "email": "outro@warung.test", "password": "rahasia123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = api.do(http.MethodPost, "/auth/login", "", gin.H{"email": "sari@warung.test", "password": "errada"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(http.MethodGet, "/auth/me", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "owner", decode[dto.UserResponse](t, w).Role)

	w = api.do(http.MethodPost, "/auth/logout", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodGet, "/auth/me", owner, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUsersAreOwnerOnly(t *testing.T) {
	api := newTestAPI(t)
	owner := api.registerOwner()
	cashier := api.createCashier(owner, "kasir@warung.test")

	w := api.do(http.MethodGet, "/users", cashier, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodGet, "/users", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]dto.UserResponse](t, w), 2)
}

func TestProductEndpoints(t *testing.T) {
	api := newTestAPI(t)
	owner := api.registerOwner()

	// Texto numérico é aceito e convertido
	api.createProduct(owner, "A1", "Kopi", "3500", "12")

	w := api.do(http.MethodPost, "/products", owner, gin.H{"code": "A1", "name": "Teh", "price": 1, "stock": 1})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = api.do(http.MethodPost, "/products", owner, gin.H{"name": "Teh", "price": "abc", "stock": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPost, "/products", owner, gin.H{"name": "Gula", "price": 15000, "stock": 2})
	require.Equal(t, http.StatusCreated, w.Code)
	gula := decode[dto.ProductResponse](t, w)
	assert.Regexp(t, `^PRD-[0-9A-Z]{8}$`, gula.Code)
	assert.True(t, gula.LowStock)

	w = api.do(http.MethodGet, "/products/low-stock", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	low := decode[dto.ProductListResponse](t, w)
	require.Len(t, low.Data, 1)
	assert.Equal(t, gula.Code, low.Data[0].Code)

	w = api.do(http.MethodPut, "/products/A1", owner, gin.H{"name": "Kopi Susu", "price": 4000, "stock": 10})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Kopi Susu", decode[dto.ProductResponse](t, w).Name)

	w = api.do(http.MethodGet, "/products/ZZZ", owner, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Sem confirmação nada muda
	w = api.do(http.MethodDelete, "/products/A1", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[dto.ConfirmationResponse](t, w).Proceeded)

	w = api.do(http.MethodPost, "/products/bulk-delete?confirm=true", owner, gin.H{"codes": []string{"A1", gula.Code}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[dto.ConfirmationResponse](t, w).Proceeded)

	w = api.do(http.MethodGet, "/products", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, decode[dto.ProductListResponse](t, w).TotalCount)
}

func TestCartAndCheckout(t *testing.T) {
	api := newTestAPI(t)
	owner := api.registerOwner()
	cashier := api.createCashier(owner, "kasir@warung.test")
	api.createProduct(owner, "A", "Air", 1000, 5)

	// Carrinho vazio: nada a fechar
	w := api.do(http.MethodPost, "/checkout", cashier, gin.H{"method": "cash", "tendered": 1000})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = api.do(http.MethodPost, "/cart/items", cashier, gin.H{"code": "A", "qty": 6})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = api.do(http.MethodPost, "/cart/items", cashier, gin.H{"code": "NOPE"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(http.MethodPost, "/cart/items", cashier, gin.H{"code": "A", "qty": 2})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2000.0, decode[dto.CartResponse](t, w).TotalPrice)

	// O carrinho é por sessão
	w = api.do(http.MethodGet, "/cart", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, decode[dto.CartResponse](t, w).TotalQty)

	w = api.do(http.MethodPost, "/checkout", cashier, gin.H{"method": "bitcoin"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPost, "/checkout", cashier, gin.H{"method": "card"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "cartão desabilitado por padrão")

	w = api.do(http.MethodPost, "/checkout", cashier, gin.H{"method": "cash", "tendered": 1500})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = api.do(http.MethodPost, "/checkout", cashier, gin.H{"method": "cash", "tendered": 5000})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	receipt := decode[checkout.Receipt](t, w)
	assert.Equal(t, 2000.0, receipt.Total)
	assert.Equal(t, 3000.0, receipt.Change)
	assert.Equal(t, "Kasir", receipt.Cashier)

	w = api.do(http.MethodGet, "/products/A", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, decode[dto.ProductResponse](t, w).Stock)

	w = api.do(http.MethodGet, "/cart", cashier, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, decode[dto.CartResponse](t, w).TotalQty)

	// Venda aparece no histórico do operador e do dono
	w = api.do(http.MethodGet, "/sales", cashier, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[dto.SaleListResponse](t, w)
	require.Equal(t, 1, list.TotalCount)
	assert.Equal(t, receipt.SaleID, list.Data[0].ID)

	w = api.do(http.MethodGet, "/sales/"+receipt.SaleID, owner, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodGet, "/sales/TRX-0-XXXX", owner, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCartItemUpdatesAndClear(t *testing.T) {
	api := newTestAPI(t)
	owner := api.registerOwner()
	api.createProduct(owner, "A", "Air", 1000, 10)
	api.createProduct(owner, "B", "Biskuit", 5000, 10)

	require.Equal(t, http.StatusOK, api.do(http.MethodPost, "/cart/items", owner, gin.H{"code": "A"}).Code)
	require.Equal(t, http.StatusOK, api.do(http.MethodPost, "/cart/items", owner, gin.H{"code": "B"}).Code)

	w := api.do(http.MethodPatch, "/cart/items/A", owner, gin.H{"delta": 3})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, decode[dto.CartResponse](t, w).TotalQty)

	w = api.do(http.MethodDelete, "/cart/items/B", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 4, decode[dto.CartResponse](t, w).TotalQty)

	w = api.do(http.MethodDelete, "/cart", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	declined := decode[dto.ConfirmationResponse](t, w)
	assert.False(t, declined.Proceeded)
	assert.NotEmpty(t, declined.Message)

	w = api.do(http.MethodDelete, "/cart?confirm=true", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[dto.ConfirmationResponse](t, w).Proceeded)

	w = api.do(http.MethodGet, "/cart", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[dto.CartResponse](t, w).Items)
}

func TestSettingsEndpoints(t *testing.T) {
	api := newTestAPI(t)
	owner := api.registerOwner()
	cashier := api.createCashier(owner, "kasir@warung.test")

	w := api.do(http.MethodPatch, "/settings/payment/card", cashier, gin.H{"value": true})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodPatch, "/settings/payment/card", owner, gin.H{"value": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, decode[domainsettings.Settings](t, w).Payment.Card)

	w = api.do(http.MethodPatch, "/settings/payment/bogus", owner, gin.H{"value": true})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(http.MethodPatch, "/settings/stock/lowStockThreshold", owner, gin.H{"value": "muitos"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPost, "/settings/reset?confirm=true", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[dto.ConfirmationResponse](t, w).Proceeded)

	w = api.do(http.MethodGet, "/settings", cashier, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[domainsettings.Settings](t, w).Payment.Card)
}

func TestSalesClearAndReports(t *testing.T) {
	api := newTestAPI(t)
	owner := api.registerOwner()
	cashier := api.createCashier(owner, "kasir@warung.test")
	api.createProduct(owner, "A", "Air", 1000, 10)

	require.Equal(t, http.StatusOK, api.do(http.MethodPost, "/cart/items", cashier, gin.H{"code": "A", "qty": 3}).Code)
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/checkout", cashier, gin.H{"method": "qris"}).Code)

	w := api.do(http.MethodGet, "/reports/dashboard", cashier, nil)
	require.Equal(t, http.StatusOK, w.Code)
	dash := decode[report.Dashboard](t, w)
	assert.Equal(t, 3000.0, dash.TodayRevenue)
	assert.Equal(t, 1, dash.TodayTransactions)

	w = api.do(http.MethodGet, "/reports/summary", cashier, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodGet, "/reports/summary?from=2000-01-01", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	sum := decode[report.Summary](t, w)
	assert.Equal(t, 3, sum.ItemsSold)

	w = api.do(http.MethodGet, "/reports/summary?from=ontem", owner, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodDelete, "/sales?confirm=true", cashier, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodDelete, "/sales?confirm=true", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[dto.ConfirmationResponse](t, w).Proceeded)

	w = api.do(http.MethodGet, "/sales", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, decode[dto.SaleListResponse](t, w).TotalCount)
}
