// internal/interfaces/http/handlers/favorite.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mercado-ia/storefront/internal/domain/favorite"
	"github.com/mercado-ia/storefront/internal/domain/session"
	"github.com/mercado-ia/storefront/internal/interfaces/http/middleware"
	"github.com/mercado-ia/storefront/internal/pkg/apperrors"
	"github.com/sirupsen/logrus"
)

// FavoriteHandler handles favorite agents
type FavoriteHandler struct {
	favorites *favorite.Service
	sessions  *session.Registry
	logger    *logrus.Logger
}

// NewFavoriteHandler creates a new favorite handler
func NewFavoriteHandler(favorites *favorite.Service, sessions *session.Registry, logger *logrus.Logger) *FavoriteHandler {
	return &FavoriteHandler{
		favorites: favorites,
		sessions:  sessions,
		logger:    logger,
	}
}

// ListFavorites handles GET /favorites
func (h *FavoriteHandler) ListFavorites(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, h.logger, apperrors.ErrAuthRequired)
		return
	}

	favorites, err := h.favorites.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  favorites,
		"count": len(favorites),
	})
}

// AddFavorite handles POST /favorites
func (h *FavoriteHandler) AddFavorite(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, h.logger, apperrors.ErrAuthRequired)
		return
	}

	var req favorite.AddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.favorites.Add(c.Request.Context(), userID, req.AgentID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Agent added to favorites",
	})
}

// RemoveFavorite handles DELETE /favorites/:agent_id
func (h *FavoriteHandler) RemoveFavorite(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, h.logger, apperrors.ErrAuthRequired)
		return
	}

	if err := h.favorites.Remove(c.Request.Context(), userID, c.Param("agent_id")); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Agent removed from favorites",
	})
}

// MoveToCart handles POST /favorites/:agent_id/move-to-cart
func (h *FavoriteHandler) MoveToCart(c *gin.Context) {
	sess, err := resolveSession(c, h.sessions)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	err = h.favorites.MoveToCart(c.Request.Context(), sess.Cart.Identity(), c.Param("agent_id"), sess.Cart)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Agent moved to cart",
		"data":    newCartResponse(sess.Cart),
	})
}
