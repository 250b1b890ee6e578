// internal/interfaces/http/handlers/agent.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mercado-ia/storefront/internal/domain/agent"
	"github.com/sirupsen/logrus"
)

// AgentHandler serves the public catalog
type AgentHandler struct {
	agents *agent.Service
	logger *logrus.Logger
}

// NewAgentHandler creates a new agent handler
func NewAgentHandler(agents *agent.Service, logger *logrus.Logger) *AgentHandler {
	return &AgentHandler{
		agents: agents,
		logger: logger,
	}
}

// ListAgents handles GET /agents
func (h *AgentHandler) ListAgents(c *gin.Context) {
	var req agent.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.agents.ListAgents(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Agents retrieved successfully",
		"data":    result,
	})
}

// ListFeatured handles GET /agents/featured
func (h *AgentHandler) ListFeatured(c *gin.Context) {
	agents, err := h.agents.ListFeatured(c.Request.Context(), queryLimit(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": agents})
}

// ListFree handles GET /agents/free
func (h *AgentHandler) ListFree(c *gin.Context) {
	agents, err := h.agents.ListFree(c.Request.Context(), queryLimit(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": agents})
}

// GetAgent handles GET /agents/:id
func (h *AgentHandler) GetAgent(c *gin.Context) {
	a, err := h.agents.GetAgent(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": a})
}

// Download handles GET /agents/:id/download for free agents
func (h *AgentHandler) Download(c *gin.Context) {
	url, err := h.agents.DownloadURL(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"workflow_url": url}})
}

// ListCategories handles GET /categories
func (h *AgentHandler) ListCategories(c *gin.Context) {
	categories, err := h.agents.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": categories})
}

const maxListLimit = 50

// queryLimit reads ?limit, leaving defaults to the service
func queryLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 0 {
		return 0
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
