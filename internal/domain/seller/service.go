// internal/domain/seller/service.go
package seller

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mercado-ia/storefront/internal/domain/agent"
	"github.com/mercado-ia/storefront/internal/pkg/apperrors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service handles profiles, seller onboarding and the seller dashboard
type Service struct {
	db     *gorm.DB
	agents *agent.Service
}

// NewService creates a new seller service
func NewService(db *gorm.DB, agents *agent.Service) *Service {
	return &Service{
		db:     db,
		agents: agents,
	}
}

// RegisterRequest represents seller onboarding data
type RegisterRequest struct {
	FullName string `json:"full_name" binding:"required"`
}

// Dashboard summarises a seller's catalog and sales
type Dashboard struct {
	Profile    *Profile        `json:"profile"`
	Agents     []agent.Agent   `json:"agents"`
	AgentCount int             `json:"agent_count"`
	SalesCount int64           `json:"sales_count"`
	Revenue    decimal.Decimal `json:"revenue"`
}

type salesStats struct {
	Sales   int64
	Revenue decimal.Decimal
}

// RegisterSeller upserts the caller's profile as a seller
func (s *Service) RegisterSeller(ctx context.Context, userID, email string, req *RegisterRequest) (*Profile, error) {
	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		return nil, &apperrors.ValidationError{Fields: []string{"full_name"}}
	}

	profile := Profile{
		ID:        userID,
		Email:     email,
		FullName:  &fullName,
		UserType:  UserTypeSeller,
		UserLevel: "bronze",
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"full_name", "user_type", "updated_at"}),
	}).Create(&profile).Error
	if err != nil {
		return nil, fmt.Errorf("failed to register seller: %w", err)
	}

	return s.GetProfile(ctx, userID)
}

// GetProfile retrieves a profile by user ID
func (s *Service) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	var profile Profile
	err := s.db.WithContext(ctx).Where("id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve profile: %w", err)
	}
	return &profile, nil
}

// RequireSeller returns the profile when userID completed seller onboarding
func (s *Service) RequireSeller(ctx context.Context, userID string) (*Profile, error) {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrForbidden
		}
		return nil, err
	}
	if !profile.IsSeller() {
		return nil, apperrors.ErrForbidden
	}
	return profile, nil
}

// PublishAgent creates an agent on behalf of a registered seller
func (s *Service) PublishAgent(ctx context.Context, userID string, req *agent.CreateRequest) (*agent.Agent, error) {
	if _, err := s.RequireSeller(ctx, userID); err != nil {
		return nil, err
	}
	return s.agents.CreateAgent(ctx, userID, req)
}

// GetDashboard builds the seller dashboard
func (s *Service) GetDashboard(ctx context.Context, userID string) (*Dashboard, error) {
	profile, err := s.RequireSeller(ctx, userID)
	if err != nil {
		return nil, err
	}

	agents, err := s.agents.ListBySeller(ctx, userID)
	if err != nil {
		return nil, err
	}

	var stats salesStats
	err = s.db.WithContext(ctx).
		Model(&Purchase{}).
		Select("COUNT(*) AS sales, COALESCE(SUM(purchases.price_paid), 0) AS revenue").
		Joins("JOIN agents ON agents.id = purchases.agent_id").
		Where("agents.seller_id = ?", userID).
		Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute sales: %w", err)
	}

	return &Dashboard{
		Profile:    profile,
		Agents:     agents,
		AgentCount: len(agents),
		SalesCount: stats.Sales,
		Revenue:    stats.Revenue,
	}, nil
}
