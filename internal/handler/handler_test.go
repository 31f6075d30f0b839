package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"protonshop/internal/logger"
	"protonshop/internal/model"
	"protonshop/internal/repository/memory"
	"protonshop/internal/service"
	"protonshop/internal/storage"
	"protonshop/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopPublisher struct{}

func (nopPublisher) Publish(string, any)               {}
func (nopPublisher) PublishToUser(string, string, any) {}

type fixture struct {
	app        *fiber.App
	store      *memory.Store
	adminToken string
	auth       service.AuthService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	jwt.SetSecret("handler-test-secret")
	t.Cleanup(func() { jwt.SetSecret("") })

	ctx := context.Background()
	log := logger.Discard()
	pub := nopPublisher{}
	store := memory.New()

	bucket, err := storage.Open(ctx, "mem://", "/media")
	require.NoError(t, err)
	t.Cleanup(func() { bucket.Close() })

	auth := service.NewAuthService(store.Users(), pub, log)
	inventory := service.NewInventoryService(store.Products(), store.Categories(), bucket, pub, log)
	carts := service.NewCartService(newCartStore(), store.Products())
	dashboard := service.NewDashboardService(store.Orders(), store.Products(), store.Visits(), log)

	app := fiber.New()
	RegisterRoutes(app, Handlers{
		Auth:      NewAuthHandler(auth),
		Store:     NewStoreHandler(service.NewCatalogService(store.Products(), store.Categories(), store.Visits(), log)),
		Cart:      NewCartHandler(carts),
		Orders:    NewOrderHandler(service.NewOrderService(store.Orders(), pub, log), carts),
		Profiles:  NewProfileHandler(service.NewProfileService(store.Profiles())),
		Inventory: NewInventoryHandler(inventory, service.NewImportService(inventory, pub, log)),
		Dashboard: NewDashboardHandler(dashboard, service.NewDashboardPoller(dashboard, pub, time.Minute, log)),
	}, auth)
	app.Get("/media/*", MediaHandler(bucket))

	require.NoError(t, auth.EnsureAdmin(ctx, "admin@protonshop.co", "admin-secret"))
	session, err := auth.SignIn(ctx, service.SignInRequest{Email: "admin@protonshop.co", Password: "admin-secret"})
	require.NoError(t, err)

	return &fixture{app: app, store: store, adminToken: session.Token, auth: auth}
}

type cartStore struct {
	data map[string][]byte
}

func newCartStore() *cartStore { return &cartStore{data: make(map[string][]byte)} }

func (s *cartStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *cartStore) Set(_ context.Context, key string, value []byte) error {
	s.data[key] = value
	return nil
}

func (s *cartStore) Delete(_ context.Context, key string) error {
	delete(s.data, key)
	return nil
}

func (f *fixture) do(t *testing.T, method, path string, body any, headers map[string]string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func (f *fixture) admin() map[string]string {
	return map[string]string{"Authorization": "Bearer " + f.adminToken}
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

func TestStorefrontCheckoutAndShipping(t *testing.T) {
	f := newFixture(t)

	code, body := f.do(t, http.MethodPost, "/api/v1/admin/products", map[string]any{
		"name": "Teclado", "price": 1000, "cost_price": 400, "category": "Periféricos",
		"image": "https://cdn.example.com/teclado.jpg", "gallery": []string{"https://cdn.example.com/teclado.mp4"},
	}, f.admin())
	require.Equal(t, http.StatusCreated, code, string(body))
	created := decode[struct {
		Data model.Product `json:"data"`
	}](t, body)

	code, body = f.do(t, http.MethodGet, "/api/v1/store?category=Perif%C3%A9ricos", nil, nil)
	require.Equal(t, http.StatusOK, code)
	store := decode[service.StoreData](t, body)
	require.Len(t, store.Products, 1)
	assert.Zero(t, store.Products[0].CostPrice)
	assert.NotContains(t, string(body), "cost_price")
	assert.Equal(t, []model.MediaItem{
		{URL: "https://cdn.example.com/teclado.jpg", Kind: model.MediaImage},
		{URL: "https://cdn.example.com/teclado.mp4", Kind: model.MediaVideo},
	}, store.Products[0].Media)

	code, body = f.do(t, http.MethodGet, "/api/v1/products/"+created.Data.ID.String(), nil, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), `"kind":"video"`)

	cart := map[string]string{CartHeader: "cart-1"}
	code, body = f.do(t, http.MethodPost, "/api/v1/cart/items", map[string]any{"product_id": created.Data.ID, "quantity": 2}, cart)
	require.Equal(t, http.StatusOK, code, string(body))
	view := decode[service.CartView](t, body)
	assert.Equal(t, 2000.0, view.Total)

	code, body = f.do(t, http.MethodPost, "/api/v1/orders", map[string]any{
		"customer_name": "Ana", "customer_phone": "300", "customer_address": "Calle 1",
		"customer_municipio": "Bello", "customer_departamento": "Antioquia",
	}, cart)
	require.Equal(t, http.StatusCreated, code, string(body))
	order := decode[model.Order](t, body)
	assert.Equal(t, model.StatusPending, order.Status)
	assert.Equal(t, 2000.0, order.Total)

	code, body = f.do(t, http.MethodGet, "/api/v1/cart", nil, cart)
	require.Equal(t, http.StatusOK, code)
	assert.Zero(t, decode[service.CartView](t, body).Count)

	path := "/api/v1/admin/orders/" + order.ID.String() + "/shipping"
	code, body = f.do(t, http.MethodPut, path, map[string]any{"shipping_cost": "abc"}, f.admin())
	assert.Equal(t, http.StatusBadRequest, code, string(body))

	code, body = f.do(t, http.MethodPut, path, map[string]any{"shipping_cost": 500}, f.admin())
	require.Equal(t, http.StatusOK, code, string(body))
	updated := decode[struct {
		Data model.Order `json:"data"`
	}](t, body)
	assert.Equal(t, 2500.0, updated.Data.Total)

	code, body = f.do(t, http.MethodPost, "/api/v1/admin/orders/status", map[string]any{
		"ids": []string{order.ID.String(), "6f1c2a1e-0000-4000-8000-000000000000"}, "status": "Confirmado",
	}, f.admin())
	require.Equal(t, http.StatusOK, code, string(body))
	batch := decode[service.BatchResult](t, body)
	assert.Equal(t, 1, batch.Succeeded)
	assert.Len(t, batch.Failed, 1)

	code, body = f.do(t, http.MethodGet, "/api/v1/admin/dashboard", nil, f.admin())
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), `"total_orders":1`)
}

func TestCheckoutFailures(t *testing.T) {
	f := newFixture(t)

	code, _ := f.do(t, http.MethodPost, "/api/v1/orders", map[string]any{"customer_name": "Ana"}, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, body := f.do(t, http.MethodPost, "/api/v1/orders", map[string]any{
		"customer_name": "Ana", "customer_phone": "300", "customer_address": "Calle 1",
		"customer_municipio": "Bello", "customer_departamento": "Antioquia",
	}, map[string]string{CartHeader: "empty"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, string(body), service.ErrEmptyCart.Error())
}

func TestAuthFlowAndRoles(t *testing.T) {
	f := newFixture(t)

	code, body := f.do(t, http.MethodPost, "/api/v1/auth/signup", map[string]any{"email": "ana@mail.co", "password": "secreto"}, nil)
	require.Equal(t, http.StatusCreated, code, string(body))
	session := decode[service.Session](t, body)
	customer := map[string]string{"Authorization": "Bearer " + session.Token}

	code, _ = f.do(t, http.MethodPost, "/api/v1/auth/signup", map[string]any{"email": "ana@mail.co", "password": "secreto"}, nil)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = f.do(t, http.MethodPost, "/api/v1/auth/signin", map[string]any{"email": "ana@mail.co", "password": "nope"}, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = f.do(t, http.MethodGet, "/api/v1/auth/session", nil, customer)
	assert.Equal(t, http.StatusOK, code)

	code, _ = f.do(t, http.MethodGet, "/api/v1/admin/orders", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	code, _ = f.do(t, http.MethodGet, "/api/v1/admin/orders", nil, customer)
	assert.Equal(t, http.StatusForbidden, code)

	code, body = f.do(t, http.MethodPut, "/api/v1/me/profile", map[string]any{"full_name": "Ana", "municipio": "Bello"}, customer)
	require.Equal(t, http.StatusOK, code, string(body))
	code, body = f.do(t, http.MethodGet, "/api/v1/me/checkout-prefill", nil, customer)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Bello", decode[service.CheckoutRequest](t, body).CustomerMunicipio)

	code, _ = f.do(t, http.MethodPost, "/api/v1/auth/signout", nil, customer)
	require.Equal(t, http.StatusOK, code)
	code, _ = f.do(t, http.MethodGet, "/api/v1/me/orders", nil, customer)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestImportEndpoints(t *testing.T) {
	f := newFixture(t)

	code, body := f.do(t, http.MethodPost, "/api/v1/admin/products/import/preview",
		`[{"nombre":"Licuadora","precio":"$550.000"},{"title":"Mouse","price":20}]`, f.admin())
	require.Equal(t, http.StatusOK, code, string(body))
	preview := decode[struct {
		Mode    string          `json:"mode"`
		Records []model.Product `json:"records"`
	}](t, body)
	assert.Equal(t, "batch", preview.Mode)
	require.Len(t, preview.Records, 2)
	assert.Equal(t, 550000.0, preview.Records[0].Price)

	code, _ = f.do(t, http.MethodPost, "/api/v1/admin/products/import/preview", `{not json`, f.admin())
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = f.do(t, http.MethodPost, "/api/v1/admin/products/import", map[string]any{"records": preview.Records}, f.admin())
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = f.do(t, http.MethodPost, "/api/v1/admin/products/import", map[string]any{"records": preview.Records, "confirmed": true}, f.admin())
	require.Equal(t, http.StatusOK, code, string(body))
	assert.Equal(t, 2, decode[service.ImportSummary](t, body).Created)
}

func TestMediaHandler(t *testing.T) {
	ctx := context.Background()
	bucket, err := storage.Open(ctx, "mem://", "/media")
	require.NoError(t, err)
	defer bucket.Close()

	u, err := bucket.Upload(ctx, "foto.png", "image/png", strings.NewReader("png-bytes"))
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/media/*", MediaHandler(bucket))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, u, nil), -1)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "png-bytes", string(data))
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/media/missing.png", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor(errors.Wrap(service.ErrOrderNotFound, "x")))
	assert.Equal(t, http.StatusConflict, statusFor(service.ErrDuplicateProduct))
	assert.Equal(t, http.StatusUnauthorized, statusFor(jwt.ErrInvalidToken))
	assert.Equal(t, http.StatusBadRequest, statusFor(service.ErrInvalidShippingCost))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("db down")))
}
