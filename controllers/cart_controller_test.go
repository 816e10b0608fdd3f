package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/umesh2702/OUTLAW/controllers"
	middlewares "github.com/umesh2702/OUTLAW/middleware"
	"github.com/umesh2702/OUTLAW/models"
	"github.com/umesh2702/OUTLAW/storage"
)

const testJWTSecret = "test-secret"

// ---- mocks ----

type stubProducts struct {
	byID map[string]models.Product
}

func (s *stubProducts) List(ctx context.Context, category, order string) ([]models.Product, error) {
	var out []models.Product
	for _, p := range s.byID {
		out = append(out, p)
	}
	return out, nil
}

func (s *stubProducts) FindByID(ctx context.Context, id string) (*models.Product, error) {
	p, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

type stubCheckout struct {
	events []models.CheckoutEvent
	err    error
}

func (s *stubCheckout) SendCheckoutEvent(ctx context.Context, event models.CheckoutEvent) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

// ---- helpers ----

func setupCartRouter(kv storage.KV, products controllers.ProductSource, checkout controllers.CheckoutPublisher) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	cc := controllers.NewCartController(kv, products, checkout, zap.NewNop())

	g := r.Group("/cart")
	g.Use(middlewares.EnsureSession())
	{
		g.GET("/", cc.GetCart)
		g.POST("/add", cc.AddItem)
		g.PATCH("/items/:product_id", cc.UpdateQuantity)
		g.DELETE("/remove/:product_id", cc.RemoveItem)
		g.DELETE("/clear", cc.ClearCart)
		g.POST("/checkout", middlewares.RequireAuth(testJWTSecret), cc.CheckoutRequest)
	}
	return r
}

func doCart(t *testing.T, r *gin.Engine, method, path string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: middlewares.SessionCookie, Value: "test-session"})
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type cartPayload struct {
	Items []models.CartItem `json:"items"`
	Count int               `json:"count"`
	Total float64           `json:"total"`
}

func decodeCart(t *testing.T, w *httptest.ResponseRecorder) cartPayload {
	t.Helper()
	var payload cartPayload
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	return payload
}

func catalog() *stubProducts {
	desc := "faded black tee"
	return &stubProducts{byID: map[string]models.Product{
		"p1": {ID: "p1", Name: "Desperado Tee", Description: &desc, Price: 55, Category: "tees", StockQuantity: 10},
		"p2": {ID: "p2", Name: "Rustler Tee", Price: 45, Category: "tees", StockQuantity: 5},
	}}
}

func signedToken(t *testing.T, sub string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return signed
}

// ---- tests ----

func TestAddItem_MergesAndDerives(t *testing.T) {
	r := setupCartRouter(storage.NewMemory(), catalog(), &stubCheckout{})

	w := doCart(t, r, http.MethodPost, "/cart/add", gin.H{"product_id": "p1", "quantity": 2})
	require.Equal(t, http.StatusOK, w.Code)

	w = doCart(t, r, http.MethodPost, "/cart/add", gin.H{"product_id": "p1", "quantity": 3})
	require.Equal(t, http.StatusOK, w.Code)

	payload := decodeCart(t, w)
	require.Len(t, payload.Items, 1)
	assert.Equal(t, 5, payload.Items[0].Quantity)
	assert.Equal(t, 5, payload.Count)
	assert.InDelta(t, 275.0, payload.Total, 0.0001)
	assert.Equal(t, "Desperado Tee", payload.Items[0].Product.Name)
}

func TestAddItem_UnknownProduct(t *testing.T) {
	r := setupCartRouter(storage.NewMemory(), catalog(), &stubCheckout{})

	w := doCart(t, r, http.MethodPost, "/cart/add", gin.H{"product_id": "ghost", "quantity": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateQuantity_ZeroRemoves(t *testing.T) {
	r := setupCartRouter(storage.NewMemory(), catalog(), &stubCheckout{})

	doCart(t, r, http.MethodPost, "/cart/add", gin.H{"product_id": "p1", "quantity": 2})
	w := doCart(t, r, http.MethodPatch, "/cart/items/p1", gin.H{"quantity": 0})
	require.Equal(t, http.StatusOK, w.Code)

	payload := decodeCart(t, w)
	assert.Empty(t, payload.Items)
	assert.Equal(t, 0, payload.Count)
}

func TestCartPersistsAcrossRequests(t *testing.T) {
	kv := storage.NewMemory()
	r := setupCartRouter(kv, catalog(), &stubCheckout{})

	doCart(t, r, http.MethodPost, "/cart/add", gin.H{"product_id": "p1", "quantity": 2})
	doCart(t, r, http.MethodPost, "/cart/add", gin.H{"product_id": "p2", "quantity": 1})

	w := doCart(t, r, http.MethodGet, "/cart/", nil)
	require.Equal(t, http.StatusOK, w.Code)

	payload := decodeCart(t, w)
	require.Len(t, payload.Items, 2)
	assert.Equal(t, "p1", payload.Items[0].ProductID)
	assert.Equal(t, "p2", payload.Items[1].ProductID)
	assert.Equal(t, 3, payload.Count)
	assert.InDelta(t, 155.0, payload.Total, 0.0001)
}

func TestRemoveAndClear(t *testing.T) {
	r := setupCartRouter(storage.NewMemory(), catalog(), &stubCheckout{})

	doCart(t, r, http.MethodPost, "/cart/add", gin.H{"product_id": "p1", "quantity": 1})
	doCart(t, r, http.MethodPost, "/cart/add", gin.H{"product_id": "p2", "quantity": 1})

	w := doCart(t, r, http.MethodDelete, "/cart/remove/p1", nil)
	payload := decodeCart(t, w)
	require.Len(t, payload.Items, 1)
	assert.Equal(t, "p2", payload.Items[0].ProductID)

	w = doCart(t, r, http.MethodDelete, "/cart/clear", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doCart(t, r, http.MethodGet, "/cart/", nil)
	payload = decodeCart(t, w)
	assert.Empty(t, payload.Items)
}

func TestCheckout_RequiresAuth(t *testing.T) {
	r := setupCartRouter(storage.NewMemory(), catalog(), &stubCheckout{})

	doCart(t, r, http.MethodPost, "/cart/add", gin.H{"product_id": "p1", "quantity": 1})
	w := doCart(t, r, http.MethodPost, "/cart/checkout", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCheckout_PublishesAndClears(t *testing.T) {
	checkout := &stubCheckout{}
	r := setupCartRouter(storage.NewMemory(), catalog(), checkout)

	authCookie := &http.Cookie{Name: middlewares.TokenCookie, Value: signedToken(t, "u1")}

	doCart(t, r, http.MethodPost, "/cart/add", gin.H{"product_id": "p1", "quantity": 2})
	w := doCart(t, r, http.MethodPost, "/cart/checkout", nil, authCookie)
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, checkout.events, 1)
	ev := checkout.events[0]
	assert.Equal(t, "checkout.requested", ev.Event)
	assert.Equal(t, "u1", ev.UserID)
	assert.Equal(t, "test-session", ev.SessionID)
	require.Len(t, ev.Items, 1)
	assert.Equal(t, 2, ev.Items[0].Quantity)

	w = doCart(t, r, http.MethodGet, "/cart/", nil)
	assert.Empty(t, decodeCart(t, w).Items)
}

func TestCheckout_EmptyCart(t *testing.T) {
	r := setupCartRouter(storage.NewMemory(), catalog(), &stubCheckout{})

	authCookie := &http.Cookie{Name: middlewares.TokenCookie, Value: signedToken(t, "u1")}
	w := doCart(t, r, http.MethodPost, "/cart/checkout", nil, authCookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
