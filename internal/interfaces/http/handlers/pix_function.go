// internal/interfaces/http/handlers/pix_function.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mercado-ia/storefront/internal/domain/payment"
	"github.com/mercado-ia/storefront/internal/pkg/apperrors"
	"github.com/sirupsen/logrus"
)

// PaymentCreator forwards one PIX charge to the provider
type PaymentCreator interface {
	CreatePayment(ctx context.Context, req payment.PixRequest) (json.RawMessage, error)
}

// PixFunctionHandler is the payment function: a stateless proxy in front of
// the PIX provider that always answers with a FunctionResponse envelope.
type PixFunctionHandler struct {
	creator PaymentCreator
	logger  *logrus.Logger
}

// NewPixFunctionHandler creates a new payment function handler
func NewPixFunctionHandler(creator PaymentCreator, logger *logrus.Logger) *PixFunctionHandler {
	return &PixFunctionHandler{
		creator: creator,
		logger:  logger,
	}
}

// CreatePixPayment handles POST /create-pix-payment
func (h *PixFunctionHandler) CreatePixPayment(c *gin.Context) {
	var req payment.PixRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Warn("Invalid payment request body")
		c.JSON(http.StatusInternalServerError, payment.FunctionResponse{
			Success: false,
			Error:   "invalid request body",
		})
		return
	}

	raw, err := h.creator.CreatePayment(c.Request.Context(), req)
	if err != nil {
		h.logger.WithError(err).Error("Failed to create PIX payment")
		c.JSON(http.StatusInternalServerError, payment.FunctionResponse{
			Success: false,
			Error:   apperrors.UserMessage(err),
		})
		return
	}

	c.JSON(http.StatusOK, payment.FunctionResponse{
		Success: true,
		Payment: raw,
	})
}

// Health handles GET /health
func (h *PixFunctionHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
