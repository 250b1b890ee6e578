// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mercado-ia/storefront/internal/domain/cart"
	"github.com/mercado-ia/storefront/internal/domain/checkout"
	"github.com/mercado-ia/storefront/internal/domain/session"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	sessions *session.Registry
	logger   *logrus.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(sessions *session.Registry, logger *logrus.Logger) *CartHandler {
	return &CartHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// AddToCartRequest is the body of POST /cart/items
type AddToCartRequest struct {
	AgentID string `json:"agent_id" binding:"required,uuid"`
}

// CartResponse is the cart as shown to the buyer
type CartResponse struct {
	Items        []cart.CartItem `json:"items"`
	ItemCount    int             `json:"item_count"`
	Total        decimal.Decimal `json:"total"`
	TotalDisplay string          `json:"total_display"`
}

func newCartResponse(manager *cart.Manager) CartResponse {
	items := manager.Items()
	total := cart.Sum(items)
	return CartResponse{
		Items:        items,
		ItemCount:    len(items),
		Total:        total,
		TotalDisplay: checkout.FormatBRL(total),
	}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	sess, err := resolveSession(c, h.sessions)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart retrieved successfully",
		"data":    newCartResponse(sess.Cart),
	})
}

// GetCartCount handles GET /cart/count
func (h *CartHandler) GetCartCount(c *gin.Context) {
	sess, err := resolveSession(c, h.sessions)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{"count": sess.Cart.ItemCount()},
	})
}

// AddToCart handles POST /cart/items
func (h *CartHandler) AddToCart(c *gin.Context) {
	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	sess, err := resolveSession(c, h.sessions)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if err := sess.Cart.Add(c.Request.Context(), req.AgentID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart successfully",
		"data":    newCartResponse(sess.Cart),
	})
}

// RemoveFromCart handles DELETE /cart/items/:id
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	sess, err := resolveSession(c, h.sessions)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if err := sess.Cart.Remove(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart successfully",
		"data":    newCartResponse(sess.Cart),
	})
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	sess, err := resolveSession(c, h.sessions)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if err := sess.Cart.Clear(c.Request.Context()); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared successfully",
		"data":    newCartResponse(sess.Cart),
	})
}
