package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mercado-ia/storefront/internal/config"
	"github.com/mercado-ia/storefront/internal/domain/agent"
	"github.com/mercado-ia/storefront/internal/domain/cart"
	"github.com/mercado-ia/storefront/internal/domain/payment"
	"github.com/mercado-ia/storefront/internal/domain/session"
	"github.com/mercado-ia/storefront/internal/interfaces/http/middleware"
	"github.com/mercado-ia/storefront/internal/pkg/apperrors"
	"github.com/mercado-ia/storefront/internal/pkg/auth"
	"github.com/mercado-ia/storefront/internal/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	emailBotID = "6f1c2b7e-3d4a-4c5b-8e9f-0a1b2c3d4e5f"
	crmSyncID  = "7a2d3c8f-4e5b-4d6c-9f0a-1b2c3d4e5f60"
	digestID   = "8b3e4d9a-5f6c-4e7d-8a1b-2c3d4e5f6071"
)

var catalog = map[string]*agent.Agent{
	emailBotID: {ID: emailBotID, Name: "Email Bot", Price: decimal.RequireFromString("150.00")},
	crmSyncID:  {ID: crmSyncID, Name: "CRM Sync", Price: decimal.RequireFromString("89.90")},
	digestID:   {ID: digestID, Name: "Daily Digest", IsFree: true},
}

type catalogStore struct {
	mu   sync.Mutex
	rows map[string][]cart.CartItem
}

func (s *catalogStore) ListByUser(_ context.Context, userID string) ([]cart.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]cart.CartItem(nil), s.rows[userID]...), nil
}

func (s *catalogStore) Insert(_ context.Context, userID, agentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := catalog[agentID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if a.IsFree {
		return cart.ErrFreeAgent
	}
	for _, row := range s.rows[userID] {
		if row.AgentID == agentID {
			return apperrors.ErrDuplicateItem
		}
	}
	s.rows[userID] = append(s.rows[userID], cart.CartItem{ID: "item-" + agentID, UserID: userID, AgentID: agentID, Agent: a})
	return nil
}

func (s *catalogStore) Delete(_ context.Context, userID, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.rows[userID]
	for i, row := range rows {
		if row.ID == itemID {
			s.rows[userID] = append(rows[:i:i], rows[i+1:]...)
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (s *catalogStore) DeleteByUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, userID)
	return nil
}

type stubGateway struct {
	mu       sync.Mutex
	err      error
	requests []payment.PixRequest
}

func (g *stubGateway) CreatePixCharge(_ context.Context, req payment.PixRequest) (*payment.PixCharge, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	if g.err != nil {
		return nil, g.err
	}
	return &payment.PixCharge{
		ID:           "pix_char_1",
		Amount:       req.Amount,
		Status:       "PENDING",
		BRCode:       "000201010212",
		BRCodeBase64: "data:image/png;base64,iVBORw0KGgo=",
		ExpiresAt:    time.Now().Add(time.Hour),
	}, nil
}

type storefront struct {
	router   *gin.Engine
	registry *session.Registry
	gateway  *stubGateway
	tokens   *auth.JWTManager
	config   *config.Config
}

func newStorefront(t *testing.T) *storefront {
	t.Helper()

	cfg := &config.Config{JWT: config.JWTConfig{
		Secret:   "handlers-test-secret-at-least-32-chars",
		Audience: "authenticated",
	}}
	log := logger.Discard()
	gateway := &stubGateway{}
	registry := session.NewRegistry(&catalogStore{rows: map[string][]cart.CartItem{}}, gateway, nil, 0, log)

	cartHandler := NewCartHandler(registry, log)
	checkoutHandler := NewCheckoutHandler(registry, log)
	sessionHandler := NewSessionHandler(registry, log)

	r := gin.New()
	api := r.Group("/api/v1", middleware.AuthMiddleware(cfg))
	api.GET("/cart", cartHandler.GetCart)
	api.GET("/cart/count", cartHandler.GetCartCount)
	api.POST("/cart/items", cartHandler.AddToCart)
	api.DELETE("/cart/items/:id", cartHandler.RemoveFromCart)
	api.DELETE("/cart", cartHandler.ClearCart)
	api.GET("/checkout", checkoutHandler.GetCheckout)
	api.POST("/checkout/pix", checkoutHandler.CreatePixPayment)
	api.POST("/session/logout", sessionHandler.Logout)

	return &storefront{router: r, registry: registry, gateway: gateway, tokens: auth.NewJWTManager(cfg), config: cfg}
}

func (s *storefront) do(t *testing.T, userID, method, path, body string) (int, map[string]interface{}) {
	t.Helper()

	token, err := s.tokens.GenerateAccessToken(userID, userID+"@x.com", time.Hour)
	require.NoError(t, err)

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func data(resp map[string]interface{}) map[string]interface{} {
	d, _ := resp["data"].(map[string]interface{})
	return d
}

const anaDetails = `{"name":"Ana","phone":"11999999999","email":"a@x.com","cpf":"12345678900"}`

func TestCart_AddListRemove(t *testing.T) {
	s := newStorefront(t)

	status, resp := s.do(t, "user-1", http.MethodPost, "/api/v1/cart/items", `{"agent_id":"`+emailBotID+`"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), data(resp)["item_count"])

	status, resp = s.do(t, "user-1", http.MethodPost, "/api/v1/cart/items", `{"agent_id":"`+emailBotID+`"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), data(resp)["item_count"])

	_, resp = s.do(t, "user-1", http.MethodPost, "/api/v1/cart/items", `{"agent_id":"`+crmSyncID+`"}`)
	assert.Equal(t, "R$ 239.90", data(resp)["total_display"])

	_, resp = s.do(t, "user-1", http.MethodGet, "/api/v1/cart/count", "")
	assert.Equal(t, float64(2), data(resp)["count"])

	status, resp = s.do(t, "user-1", http.MethodDelete, "/api/v1/cart/items/item-"+emailBotID, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "R$ 89.90", data(resp)["total_display"])

	status, _ = s.do(t, "user-1", http.MethodDelete, "/api/v1/cart/items/item-"+emailBotID, "")
	assert.Equal(t, http.StatusNotFound, status)

	_, resp = s.do(t, "user-2", http.MethodGet, "/api/v1/cart", "")
	assert.Equal(t, float64(0), data(resp)["item_count"])
}

func TestCart_AddRejectsInvalidAgentID(t *testing.T) {
	s := newStorefront(t)

	status, resp := s.do(t, "user-1", http.MethodPost, "/api/v1/cart/items", `{"agent_id":"not-a-uuid"}`)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid request data", resp["error"])
}

func TestCart_AddRejectsFreeAgent(t *testing.T) {
	s := newStorefront(t)

	status, resp := s.do(t, "user-1", http.MethodPost, "/api/v1/cart/items", `{"agent_id":"`+digestID+`"}`)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, []interface{}{"agent_id"}, resp["fields"])
}

func TestCart_RequiresToken(t *testing.T) {
	s := newStorefront(t)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 0, s.registry.Len())
}

func TestCheckout_GeneratesQRCode(t *testing.T) {
	s := newStorefront(t)
	s.do(t, "user-1", http.MethodPost, "/api/v1/cart/items", `{"agent_id":"`+emailBotID+`"}`)

	status, resp := s.do(t, "user-1", http.MethodGet, "/api/v1/checkout", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "collecting_details", data(resp)["state"])
	assert.Equal(t, "R$ 150.00", data(resp)["total_display"])

	status, resp = s.do(t, "user-1", http.MethodPost, "/api/v1/checkout/pix", anaDetails)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "QR code generated successfully", resp["message"])

	summary := data(resp)
	assert.Equal(t, "payment_ready", summary["state"])
	charge, ok := summary["charge"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "000201010212", charge["brCode"])
	assert.NotEmpty(t, charge["brCodeBase64"])

	require.Len(t, s.gateway.requests, 1)
	assert.Equal(t, "Email Bot", s.gateway.requests[0].Description)
	assert.True(t, s.gateway.requests[0].Amount.Equal(decimal.NewFromInt(150)))
}

func TestCheckout_MissingFields(t *testing.T) {
	s := newStorefront(t)
	s.do(t, "user-1", http.MethodPost, "/api/v1/cart/items", `{"agent_id":"`+emailBotID+`"}`)

	status, resp := s.do(t, "user-1", http.MethodPost, "/api/v1/checkout/pix", `{"name":"Ana","phone":"11999999999","email":"a@x.com"}`)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, []interface{}{"cpf"}, resp["fields"])
	assert.Empty(t, s.gateway.requests)
}

func TestCheckout_UpstreamFailure(t *testing.T) {
	s := newStorefront(t)
	s.gateway.err = &apperrors.UpstreamPaymentError{StatusCode: http.StatusInternalServerError}
	s.do(t, "user-1", http.MethodPost, "/api/v1/cart/items", `{"agent_id":"`+emailBotID+`"}`)

	status, resp := s.do(t, "user-1", http.MethodPost, "/api/v1/checkout/pix", anaDetails)
	assert.Equal(t, http.StatusBadGateway, status)
	assert.NotEmpty(t, resp["error"])

	_, resp = s.do(t, "user-1", http.MethodGet, "/api/v1/checkout", "")
	assert.Equal(t, "collecting_details", data(resp)["state"])
	assert.Equal(t, float64(1), data(resp)["item_count"])
}

func TestLogout_TearsDownSession(t *testing.T) {
	s := newStorefront(t)
	s.do(t, "user-1", http.MethodPost, "/api/v1/cart/items", `{"agent_id":"`+emailBotID+`"}`)
	require.Equal(t, 1, s.registry.Len())

	status, _ := s.do(t, "user-1", http.MethodPost, "/api/v1/session/logout", "")
	assert.Equal(t, http.StatusOK, status)

	_, ok := s.registry.Get("user-1")
	assert.False(t, ok)
}
