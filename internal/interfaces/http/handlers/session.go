// internal/interfaces/http/handlers/session.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mercado-ia/storefront/internal/domain/session"
	"github.com/mercado-ia/storefront/internal/interfaces/http/middleware"
	"github.com/mercado-ia/storefront/internal/pkg/apperrors"
	"github.com/sirupsen/logrus"
)

// SessionHandler manages the lifecycle of the caller's session context
type SessionHandler struct {
	sessions *session.Registry
	logger   *logrus.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions *session.Registry, logger *logrus.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// Logout handles POST /session/logout
func (h *SessionHandler) Logout(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, h.logger, apperrors.ErrAuthRequired)
		return
	}

	h.sessions.Teardown(userID)

	c.JSON(http.StatusOK, gin.H{
		"message": "Signed out successfully",
	})
}

// resolveSession binds the request identity to its session, loading the cart
func resolveSession(c *gin.Context, sessions *session.Registry) (*session.Session, error) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return nil, apperrors.ErrAuthRequired
	}
	email, _ := middleware.GetUserEmailFromContext(c)

	return sessions.Init(c.Request.Context(), session.Identity{UserID: userID, Email: email})
}
