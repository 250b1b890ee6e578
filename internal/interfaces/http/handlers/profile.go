// internal/interfaces/http/handlers/profile.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mercado-ia/storefront/internal/domain/seller"
	"github.com/mercado-ia/storefront/internal/interfaces/http/middleware"
	"github.com/mercado-ia/storefront/internal/pkg/apperrors"
	"github.com/sirupsen/logrus"
)

// ProfileHandler handles the caller's profile and purchase history
type ProfileHandler struct {
	profiles *seller.Service
	logger   *logrus.Logger
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profiles *seller.Service, logger *logrus.Logger) *ProfileHandler {
	return &ProfileHandler{
		profiles: profiles,
		logger:   logger,
	}
}

// GetProfile handles GET /profile
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, h.logger, apperrors.ErrAuthRequired)
		return
	}
	email, _ := middleware.GetUserEmailFromContext(c)

	profile, err := h.profiles.GetOrDefaultProfile(c.Request.Context(), userID, email)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile retrieved successfully",
		"data":    profile,
	})
}

// UpdateProfile handles PUT /profile
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, h.logger, apperrors.ErrAuthRequired)
		return
	}
	email, _ := middleware.GetUserEmailFromContext(c)

	var req seller.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	profile, err := h.profiles.UpdateProfile(c.Request.Context(), userID, email, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"data":    profile,
	})
}

// ListPurchases handles GET /profile/purchases
func (h *ProfileHandler) ListPurchases(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, h.logger, apperrors.ErrAuthRequired)
		return
	}

	purchases, err := h.profiles.ListPurchases(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  purchases,
		"count": len(purchases),
	})
}
