// internal/domain/agent/service.go
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/mercado-ia/storefront/internal/pkg/apperrors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	defaultFeaturedLimit = 4
	defaultFreeLimit     = 6
	maxPageSize          = 100
)

// Service handles catalog business logic
type Service struct {
	db *gorm.DB
}

// NewService creates a new catalog service
func NewService(db *gorm.DB) *Service {
	return &Service{
		db: db,
	}
}

// ListRequest represents catalog list query parameters
type ListRequest struct {
	Page       int    `form:"page,default=1"`
	Limit      int    `form:"limit,default=20"`
	CategoryID string `form:"category_id"`
	Search     string `form:"search"`
}

// ListResponse represents a page of agents
type ListResponse struct {
	Agents     []Agent    `json:"agents"`
	Pagination Pagination `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// CreateRequest represents agent creation data submitted by a seller
type CreateRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description" binding:"required"`
	CategoryID  *string         `json:"category_id"`
	Price       decimal.Decimal `json:"price"`
	IsFree      bool            `json:"is_free"`
	WorkflowURL *string         `json:"workflow_url"`
	Images      []string        `json:"images"`
	VideoURL    string          `json:"video_url"`
}

// ListAgents retrieves paid agents with filtering and pagination, newest first
func (s *Service) ListAgents(ctx context.Context, req *ListRequest) (*ListResponse, error) {
	normalizePage(req)

	var agents []Agent
	var total int64

	query := s.db.WithContext(ctx).Model(&Agent{}).Where("is_free = ?", false)

	if req.CategoryID != "" {
		query = query.Where("category_id = ?", req.CategoryID)
	}

	if req.Search != "" {
		search := "%" + strings.ToLower(req.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", search, search)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count agents: %w", err)
	}

	offset := (req.Page - 1) * req.Limit
	if err := query.Preload("Category").Order("created_at DESC").Offset(offset).Limit(req.Limit).Find(&agents).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve agents: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))

	return &ListResponse{
		Agents: agents,
		Pagination: Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    req.Page < totalPages,
			HasPrev:    req.Page > 1,
		},
	}, nil
}

// ListFeatured retrieves featured paid agents
func (s *Service) ListFeatured(ctx context.Context, limit int) ([]Agent, error) {
	if limit <= 0 {
		limit = defaultFeaturedLimit
	}

	var agents []Agent
	err := s.db.WithContext(ctx).
		Where("is_featured = ? AND is_free = ?", true, false).
		Order("created_at DESC").
		Limit(limit).
		Find(&agents).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve featured agents: %w", err)
	}

	return agents, nil
}

// ListFree retrieves agents distributed by direct download
func (s *Service) ListFree(ctx context.Context, limit int) ([]Agent, error) {
	if limit <= 0 {
		limit = defaultFreeLimit
	}

	var agents []Agent
	err := s.db.WithContext(ctx).
		Where("is_free = ?", true).
		Order("created_at DESC").
		Limit(limit).
		Find(&agents).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve free agents: %w", err)
	}

	return agents, nil
}

// GetAgent retrieves a single agent by ID
func (s *Service) GetAgent(ctx context.Context, id string) (*Agent, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.ErrNotFound
	}

	var agent Agent
	err := s.db.WithContext(ctx).Preload("Category").Where("id = ?", id).First(&agent).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve agent: %w", err)
	}

	return &agent, nil
}

// DownloadURL returns the workflow file reference of a free agent. Paid agents
// are only delivered after checkout.
func (s *Service) DownloadURL(ctx context.Context, id string) (string, error) {
	agent, err := s.GetAgent(ctx, id)
	if err != nil {
		return "", err
	}

	if !agent.IsFree {
		return "", apperrors.NewValidationError("agent is not free; add it to the cart instead", "agent_id")
	}
	if agent.WorkflowURL == nil || *agent.WorkflowURL == "" {
		return "", apperrors.ErrNotFound
	}

	return *agent.WorkflowURL, nil
}

// ListCategories retrieves all categories ordered by name
func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve categories: %w", err)
	}
	return categories, nil
}

// ListBySeller retrieves a seller's agents, newest first
func (s *Service) ListBySeller(ctx context.Context, sellerID string) ([]Agent, error) {
	var agents []Agent
	err := s.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Find(&agents).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve seller agents: %w", err)
	}
	return agents, nil
}

// CreateAgent publishes a new agent for sellerID
func (s *Service) CreateAgent(ctx context.Context, sellerID string, req *CreateRequest) (*Agent, error) {
	agent, err := buildAgent(sellerID, req)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(agent).Error; err != nil {
		return nil, fmt.Errorf("failed to create agent: %w", err)
	}

	return agent, nil
}

// buildAgent validates req and applies the listing rules: free agents are
// priced at zero and new agents are never featured.
func buildAgent(sellerID string, req *CreateRequest) (*Agent, error) {
	name := strings.TrimSpace(req.Name)
	description := strings.TrimSpace(req.Description)

	var missing []string
	if name == "" {
		missing = append(missing, "name")
	}
	if description == "" {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		return nil, &apperrors.ValidationError{Fields: missing}
	}

	price := req.Price
	if req.IsFree {
		price = decimal.Zero
	} else if price.IsNegative() {
		return nil, apperrors.NewValidationError("price must not be negative", "price")
	}

	videos := pq.StringArray{}
	if req.VideoURL != "" {
		videos = append(videos, req.VideoURL)
	}
	images := pq.StringArray{}
	if req.Images != nil {
		images = pq.StringArray(req.Images)
	}

	categoryID := req.CategoryID
	if categoryID != nil && *categoryID == "" {
		categoryID = nil
	}

	return &Agent{
		ID:          uuid.NewString(),
		SellerID:    sellerID,
		CategoryID:  categoryID,
		Name:        name,
		Description: description,
		Price:       price.Round(2),
		IsFeatured:  false,
		IsFree:      req.IsFree,
		WorkflowURL: req.WorkflowURL,
		Images:      images,
		Videos:      videos,
	}, nil
}

func normalizePage(req *ListRequest) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 {
		req.Limit = 20
	}
	if req.Limit > maxPageSize {
		req.Limit = maxPageSize
	}
}
