// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mercado-ia/storefront/internal/domain/checkout"
	"github.com/mercado-ia/storefront/internal/domain/session"
	"github.com/sirupsen/logrus"
)

// CheckoutHandler handles the PIX checkout flow
type CheckoutHandler struct {
	sessions *session.Registry
	logger   *logrus.Logger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(sessions *session.Registry, logger *logrus.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// GetCheckout handles GET /checkout. It opens the details form unless a
// payment request is in flight.
func (h *CheckoutHandler) GetCheckout(c *gin.Context) {
	sess, err := resolveSession(c, h.sessions)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if state := sess.Checkout.State(); state == checkout.StateIdle || state == checkout.StateFailed {
		sess.Checkout.Begin()
	}

	c.JSON(http.StatusOK, gin.H{
		"data": sess.Checkout.Summary(),
	})
}

// CreatePixPayment handles POST /checkout/pix
func (h *CheckoutHandler) CreatePixPayment(c *gin.Context) {
	var details checkout.BuyerDetails
	if err := c.ShouldBindJSON(&details); err != nil {
		bindError(c, err)
		return
	}

	sess, err := resolveSession(c, h.sessions)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if _, err := sess.Checkout.Submit(c.Request.Context(), details); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "QR code generated successfully",
		"data":    sess.Checkout.Summary(),
	})
}
