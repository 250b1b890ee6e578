// internal/interfaces/http/handlers/seller.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mercado-ia/storefront/internal/domain/agent"
	"github.com/mercado-ia/storefront/internal/domain/seller"
	"github.com/mercado-ia/storefront/internal/interfaces/http/middleware"
	"github.com/mercado-ia/storefront/internal/pkg/apperrors"
	"github.com/sirupsen/logrus"
)

// SellerHandler handles seller onboarding and the seller dashboard
type SellerHandler struct {
	sellers *seller.Service
	agents  *agent.Service
	logger  *logrus.Logger
}

// NewSellerHandler creates a new seller handler
func NewSellerHandler(sellers *seller.Service, agents *agent.Service, logger *logrus.Logger) *SellerHandler {
	return &SellerHandler{
		sellers: sellers,
		agents:  agents,
		logger:  logger,
	}
}

// Register handles POST /sellers/register
func (h *SellerHandler) Register(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, h.logger, apperrors.ErrAuthRequired)
		return
	}
	email, _ := middleware.GetUserEmailFromContext(c)

	var req seller.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	profile, err := h.sellers.RegisterSeller(c.Request.Context(), userID, email, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Seller account created successfully",
		"data":    profile,
	})
}

// Dashboard handles GET /sellers/me/dashboard
func (h *SellerHandler) Dashboard(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, h.logger, apperrors.ErrAuthRequired)
		return
	}

	dashboard, err := h.sellers.GetDashboard(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dashboard})
}

// ListAgents handles GET /sellers/me/agents
func (h *SellerHandler) ListAgents(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, h.logger, apperrors.ErrAuthRequired)
		return
	}

	if _, err := h.sellers.RequireSeller(c.Request.Context(), userID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	agents, err := h.agents.ListBySeller(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": agents})
}

// CreateAgent handles POST /sellers/me/agents
func (h *SellerHandler) CreateAgent(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, h.logger, apperrors.ErrAuthRequired)
		return
	}

	var req agent.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	created, err := h.sellers.PublishAgent(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"seller_id": userID,
		"agent_id":  created.ID,
	}).Info("Agent published")

	c.JSON(http.StatusCreated, gin.H{
		"message": "Agent published successfully",
		"data":    created,
	})
}
