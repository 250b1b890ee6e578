// internal/domain/favorite/service.go
package favorite

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mercado-ia/storefront/internal/domain/agent"
	"github.com/mercado-ia/storefront/internal/pkg/apperrors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartAdder puts an agent in the caller's cart
type CartAdder interface {
	Add(ctx context.Context, agentID string) error
}

// Service handles the user's favorite agents
type Service struct {
	db *gorm.DB
}

// NewService creates a new favorite service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// AddRequest is the body of POST /favorites
type AddRequest struct {
	AgentID string `json:"agent_id" binding:"required,uuid"`
}

// List returns the user's favorites with their agents, newest first
func (s *Service) List(ctx context.Context, userID string) ([]Favorite, error) {
	var favorites []Favorite
	err := s.db.WithContext(ctx).
		Preload("Agent").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&favorites).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve favorites: %w", err)
	}
	return favorites, nil
}

// Add bookmarks agentID. Adding an agent that is already a favorite is a no-op.
func (s *Service) Add(ctx context.Context, userID, agentID string) error {
	var target agent.Agent
	err := s.db.WithContext(ctx).Select("id").Where("id = ?", agentID).First(&target).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("agent %s: %w", agentID, apperrors.ErrNotFound)
		}
		return fmt.Errorf("failed to look up agent: %w", err)
	}

	favorite := Favorite{
		ID:      uuid.NewString(),
		UserID:  userID,
		AgentID: agentID,
	}

	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "agent_id"}},
		DoNothing: true,
	}).Create(&favorite).Error
	if err != nil {
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	return nil
}

// Remove deletes the favorite. A missing row is reported as apperrors.ErrNotFound.
func (s *Service) Remove(ctx context.Context, userID, agentID string) error {
	if _, err := uuid.Parse(agentID); err != nil {
		return fmt.Errorf("favorite %s: %w", agentID, apperrors.ErrNotFound)
	}

	result := s.db.WithContext(ctx).
		Where("user_id = ? AND agent_id = ?", userID, agentID).
		Delete(&Favorite{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove favorite: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("favorite %s: %w", agentID, apperrors.ErrNotFound)
	}
	return nil
}

// MoveToCart adds a favorite agent to the cart and drops the favorite. The
// favorite is kept when the cart rejects the agent.
func (s *Service) MoveToCart(ctx context.Context, userID, agentID string, cart CartAdder) error {
	if _, err := uuid.Parse(agentID); err != nil {
		return fmt.Errorf("favorite %s: %w", agentID, apperrors.ErrNotFound)
	}

	var count int64
	err := s.db.WithContext(ctx).
		Model(&Favorite{}).
		Where("user_id = ? AND agent_id = ?", userID, agentID).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to look up favorite: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("favorite %s: %w", agentID, apperrors.ErrNotFound)
	}

	if err := cart.Add(ctx, agentID); err != nil {
		return err
	}

	return s.Remove(ctx, userID, agentID)
}
