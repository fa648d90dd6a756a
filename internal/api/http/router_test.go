package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/storefront-api/internal/api/dto"
	httptransport "github.com/spec-kit/storefront-api/internal/api/http"
	"github.com/spec-kit/storefront-api/internal/api/http/handlers"
	"github.com/spec-kit/storefront-api/internal/auth"
	"github.com/spec-kit/storefront-api/internal/domain"
	"github.com/spec-kit/storefront-api/internal/observability"
	"github.com/spec-kit/storefront-api/internal/service"
	"github.com/spec-kit/storefront-api/internal/testutil"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Meta    json.RawMessage `json:"meta"`
	Errors  []dto.ErrorItem `json:"errors"`
}

type harness struct {
	t      *testing.T
	app    *fiber.App
	users  *testutil.UserStore
	tokens *auth.TokenManager
	alice  domain.User
}

type harnessOptions struct {
	loginPerMinute int
	readiness      error
	cacheErr       error
}

func newHarness(t *testing.T, opts harnessOptions) *harness {
	t.Helper()
	users := testutil.NewUserStore()
	alice := users.Add(t, "alice", "correct")
	tokens := testutil.TokenManager(users)

	kitchen := domain.Category{ID: 1, Name: "Kitchen", Slug: "kitchen", Count: 2}
	products := testutil.NewProductStore(
		testutil.Product(1, "Blue Mug", 12, kitchen),
		testutil.Product(2, "Red Kettle", 35, kitchen),
		testutil.Product(3, "Garden Hose", 20),
	)
	products.SetCategories(kitchen)

	authService := service.NewAuthService(service.AuthDependencies{UserRepo: users, Tokens: tokens})
	productService := service.NewProductService(products, nil)
	wishlistService := service.NewWishlistService(service.WishlistDependencies{
		WishlistRepo: testutil.NewWishlistStore(),
		ProductRepo:  products,
	})

	metrics := observability.NewMetrics()
	app := fiber.New()
	httptransport.RegisterMiddlewares(app, zap.NewNop(), metrics, 5*time.Second, []string{"https://shop.test"})
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler("storefront", "test",
			map[string]handlers.Pinger{"postgres": pinger{err: opts.readiness}},
			map[string]handlers.Pinger{"redis": pinger{err: opts.cacheErr}},
			metrics),
		Auth:          handlers.NewAuthHandler(authService),
		Products:      handlers.NewProductsHandler(productService, wishlistService, 10, 100),
		Wishlist:      handlers.NewWishlistHandler(wishlistService, 10, 100),
		Authenticator: auth.NewAuthenticator(tokens),
		LoginLimiter:  httptransport.NewLoginLimiter(opts.loginPerMinute),
	})

	return &harness{t: t, app: app, users: users, tokens: tokens, alice: alice}
}

func (h *harness) accessToken() string {
	h.t.Helper()
	token, _, err := h.tokens.Issue(h.alice.ID, domain.TokenTypeAccess)
	require.NoError(h.t, err)
	return token
}

func (h *harness) do(method, path string, body interface{}, headers map[string]string) (int, envelope) {
	h.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(h.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := h.app.Test(req, -1)
	require.NoError(h.t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(h.t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func decode(t *testing.T, raw json.RawMessage, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, out))
}

func TestLoginAndRefresh(t *testing.T) {
	h := newHarness(t, harnessOptions{})

	status, env := h.do(http.MethodPost, "/api/v1/auth/login", map[string]string{"username": "alice", "password": "correct"}, nil)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
	assert.Empty(t, env.Errors)

	var login dto.TokenResponse
	decode(t, env.Data, &login)
	assert.Equal(t, int64(3600), login.ExpiresIn)
	assert.Equal(t, "Bearer", login.TokenType)
	assert.Equal(t, "alice", login.User.Username)

	status, env = h.do(http.MethodPost, "/api/v1/auth/refresh", map[string]string{"refresh_token": login.RefreshToken}, nil)
	require.Equal(t, http.StatusOK, status)
	var refreshed dto.TokenResponse
	decode(t, env.Data, &refreshed)
	assert.NotEqual(t, login.AccessToken, refreshed.AccessToken)

	status, env = h.do(http.MethodPost, "/api/v1/auth/refresh", map[string]string{"refresh_token": login.AccessToken}, nil)
	assert.Equal(t, http.StatusForbidden, status)
	require.Len(t, env.Errors, 1)
	assert.Equal(t, auth.CodeTokenInvalid, env.Errors[0].Code)

	status, env = h.do(http.MethodPost, "/api/v1/auth/refresh", map[string]string{}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, service.CodeMissingRefreshToken, env.Errors[0].Code)
}

func TestLoginFailures(t *testing.T) {
	h := newHarness(t, harnessOptions{})

	status, env := h.do(http.MethodPost, "/api/v1/auth/login", map[string]string{"username": "alice", "password": "nope"}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, env.Success)
	assert.Equal(t, service.CodeInvalidCredentials, env.Errors[0].Code)

	status, _ = h.do(http.MethodPost, "/api/v1/auth/login", map[string]string{"username": "bob", "password": "correct"}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, env = h.do(http.MethodPost, "/api/v1/auth/login", map[string]string{}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	require.Len(t, env.Errors, 2)
	assert.Equal(t, "username", env.Errors[0].Field)
	assert.Equal(t, "password", env.Errors[1].Field)
}

func TestLoginRateLimited(t *testing.T) {
	h := newHarness(t, harnessOptions{loginPerMinute: 2})
	creds := map[string]string{"username": "alice", "password": "nope"}

	for i := 0; i < 2; i++ {
		status, _ := h.do(http.MethodPost, "/api/v1/auth/login", creds, nil)
		assert.Equal(t, http.StatusUnauthorized, status)
	}
	status, env := h.do(http.MethodPost, "/api/v1/auth/login", creds, nil)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, "RATE_LIMITED", env.Errors[0].Code)
}

func TestMe(t *testing.T) {
	h := newHarness(t, harnessOptions{})

	status, env := h.do(http.MethodGet, "/api/v1/auth/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "missing authorization", env.Errors[0].Message)

	expired, _, err := h.tokens.WithClock(func() time.Time {
		return time.Now().Add(-2 * time.Hour)
	}).Issue(h.alice.ID, domain.TokenTypeAccess)
	require.NoError(t, err)
	status, env = h.do(http.MethodGet, "/api/v1/auth/me", nil, bearer(expired))
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, auth.CodeTokenExpired, env.Errors[0].Code)

	status, env = h.do(http.MethodGet, "/api/v1/auth/me", nil, bearer("garbage"))
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, auth.CodeTokenInvalid, env.Errors[0].Code)

	status, env = h.do(http.MethodGet, "/api/v1/auth/me", nil, map[string]string{"X-Authorization": "bearer " + h.accessToken()})
	require.Equal(t, http.StatusOK, status)
	var user dto.UserResponse
	decode(t, env.Data, &user)
	assert.Equal(t, h.alice.ID, user.ID)
	assert.Equal(t, "alice@example.com", user.Email)
}

func TestLogoutAlwaysSucceeds(t *testing.T) {
	h := newHarness(t, harnessOptions{})

	status, env := h.do(http.MethodPost, "/api/v1/auth/logout", nil, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)

	status, _ = h.do(http.MethodPost, "/api/v1/auth/logout", nil, bearer("garbage"))
	assert.Equal(t, http.StatusOK, status)
}

func TestProducts(t *testing.T) {
	h := newHarness(t, harnessOptions{})

	status, env := h.do(http.MethodGet, "/api/v1/products?category=kitchen&per_page=1", nil, nil)
	require.Equal(t, http.StatusOK, status)
	var meta dto.PageMeta
	decode(t, env.Meta, &meta)
	assert.Equal(t, dto.PageMeta{Total: 2, Page: 1, PerPage: 1, TotalPages: 2, HasMore: true}, meta)
	var items []dto.ProductSummary
	decode(t, env.Data, &items)
	require.Len(t, items, 1)
	assert.Nil(t, items[0].InWishlist)

	status, env = h.do(http.MethodGet, "/api/v1/products?per_page=101&orderby=random", nil, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	require.Len(t, env.Errors, 2)
	assert.Equal(t, "per_page", env.Errors[0].Field)
	assert.Equal(t, "orderby", env.Errors[1].Field)

	status, env = h.do(http.MethodGet, "/api/v1/products/2", nil, nil)
	require.Equal(t, http.StatusOK, status)
	var product dto.ProductResponse
	decode(t, env.Data, &product)
	assert.Equal(t, "Red Kettle", product.Name)
	assert.True(t, product.InStock)

	status, _ = h.do(http.MethodGet, "/api/v1/products/999", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, env = h.do(http.MethodGet, "/api/v1/products/slug/blue-mug", nil, nil)
	require.Equal(t, http.StatusOK, status)
	decode(t, env.Data, &product)
	assert.Equal(t, int64(1), product.ID)

	status, env = h.do(http.MethodGet, "/api/v1/products/1/related", nil, nil)
	require.Equal(t, http.StatusOK, status)
	decode(t, env.Data, &items)
	require.Len(t, items, 1)
	assert.Equal(t, int64(2), items[0].ID)

	status, env = h.do(http.MethodGet, "/api/v1/categories", nil, nil)
	require.Equal(t, http.StatusOK, status)
	var categories []dto.CategoryResponse
	decode(t, env.Data, &categories)
	require.Len(t, categories, 1)
	assert.Equal(t, "kitchen", categories[0].Slug)
}

func TestSearch(t *testing.T) {
	h := newHarness(t, harnessOptions{})

	status, env := h.do(http.MethodGet, "/api/v1/search", nil, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "q", env.Errors[0].Field)

	status, _ = h.do(http.MethodGet, "/api/v1/search?q=m", nil, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, env = h.do(http.MethodGet, "/api/v1/search?q=kettle", nil, nil)
	require.Equal(t, http.StatusOK, status)
	var meta dto.PageMeta
	decode(t, env.Meta, &meta)
	assert.Equal(t, 1, meta.Total)
	assert.False(t, meta.HasMore)
}

func TestWishlistFlow(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	headers := bearer(h.accessToken())

	status, _ := h.do(http.MethodGet, "/api/v1/wishlist", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, env := h.do(http.MethodPost, "/api/v1/wishlist", map[string]int64{"product_id": 1}, headers)
	require.Equal(t, http.StatusCreated, status)
	var change dto.WishlistChangeResponse
	decode(t, env.Data, &change)
	assert.Equal(t, 1, change.Count)

	status, env = h.do(http.MethodPost, "/api/v1/wishlist", map[string]int64{"product_id": 1}, headers)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, service.CodeAlreadyInWishlist, env.Errors[0].Code)

	status, _ = h.do(http.MethodPost, "/api/v1/wishlist", map[string]int64{"product_id": 99}, headers)
	assert.Equal(t, http.StatusNotFound, status)

	status, env = h.do(http.MethodPost, "/api/v1/wishlist", map[string]int64{}, headers)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "product_id", env.Errors[0].Field)

	status, env = h.do(http.MethodGet, "/api/v1/wishlist", nil, headers)
	require.Equal(t, http.StatusOK, status)
	var items []dto.WishlistItemResponse
	decode(t, env.Data, &items)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].Product)
	assert.Equal(t, "Blue Mug", items[0].Product.Name)

	status, env = h.do(http.MethodGet, "/api/v1/wishlist/check/1", nil, headers)
	require.Equal(t, http.StatusOK, status)
	var check dto.WishlistCheckResponse
	decode(t, env.Data, &check)
	assert.True(t, check.InWishlist)

	status, env = h.do(http.MethodGet, "/api/v1/products/1", nil, headers)
	require.Equal(t, http.StatusOK, status)
	var product dto.ProductResponse
	decode(t, env.Data, &product)
	require.NotNil(t, product.InWishlist)
	assert.True(t, *product.InWishlist)

	status, _ = h.do(http.MethodDelete, "/api/v1/wishlist/1", nil, headers)
	assert.Equal(t, http.StatusOK, status)
	status, env = h.do(http.MethodDelete, "/api/v1/wishlist/1", nil, headers)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, service.CodeNotInWishlist, env.Errors[0].Code)

	status, _ = h.do(http.MethodPost, "/api/v1/wishlist", map[string]int64{"product_id": 2}, headers)
	require.Equal(t, http.StatusCreated, status)
	status, env = h.do(http.MethodDelete, "/api/v1/wishlist", nil, headers)
	require.Equal(t, http.StatusOK, status)
	decode(t, env.Data, &change)
	assert.Equal(t, 0, change.Count)
}

func TestHugePageReturnsEmptyPage(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	headers := bearer(h.accessToken())

	status, _ := h.do(http.MethodPost, "/api/v1/wishlist", map[string]int64{"product_id": 1}, headers)
	require.Equal(t, http.StatusCreated, status)

	for _, path := range []string{
		"/api/v1/wishlist?page=4611686018427387904&per_page=100",
		"/api/v1/products?page=4611686018427387904&per_page=100",
	} {
		status, env := h.do(http.MethodGet, path, nil, headers)
		require.Equal(t, http.StatusOK, status, path)
		assert.JSONEq(t, "[]", string(env.Data), path)
		var meta dto.PageMeta
		decode(t, env.Meta, &meta)
		assert.False(t, meta.HasMore, path)
	}
}

func TestDeletedUserTokenIsForbidden(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	token := h.accessToken()
	h.users.Delete(h.alice.ID)

	status, env := h.do(http.MethodGet, "/api/v1/wishlist", nil, bearer(token))
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, auth.ReasonUserNotFound, env.Errors[0].Message)
}

func TestHealthAndUnknownRoute(t *testing.T) {
	h := newHarness(t, harnessOptions{})

	status, env := h.do(http.MethodGet, "/health/live", nil, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)

	status, _ = h.do(http.MethodGet, "/health/ready", nil, nil)
	assert.Equal(t, http.StatusOK, status)

	status, env = h.do(http.MethodGet, "/api/v1/nowhere", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.False(t, env.Success)
	assert.Equal(t, "NOT_FOUND", env.Errors[0].Code)

	status, env = h.do(http.MethodGet, "/health/metrics", nil, nil)
	require.Equal(t, http.StatusOK, status)
	var snap observability.MetricsSnapshot
	decode(t, env.Data, &snap)
	assert.Positive(t, snap.TotalRequests)
}

func TestReadinessFailure(t *testing.T) {
	h := newHarness(t, harnessOptions{readiness: errors.New("connection refused")})

	status, env := h.do(http.MethodGet, "/health/ready", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "DEPENDENCY_UNAVAILABLE", env.Errors[0].Code)
}

func TestReadinessToleratesCacheOutage(t *testing.T) {
	h := newHarness(t, harnessOptions{cacheErr: errors.New("connection refused")})

	status, env := h.do(http.MethodGet, "/health/ready", nil, nil)
	require.Equal(t, http.StatusOK, status)
	var body struct {
		Status       string            `json:"status"`
		Dependencies map[string]string `json:"dependencies"`
	}
	decode(t, env.Data, &body)
	assert.Equal(t, "ready", body.Status)
	assert.Equal(t, "ok", body.Dependencies["postgres"])
	assert.Equal(t, "degraded: connection refused", body.Dependencies["redis"])
}
