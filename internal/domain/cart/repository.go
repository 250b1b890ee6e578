// internal/domain/cart/repository.go
package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mercado-ia/storefront/internal/domain/agent"
	"github.com/mercado-ia/storefront/internal/pkg/apperrors"
	"gorm.io/gorm"
)

// uniqueViolation is the Postgres SQLSTATE for unique constraint violations
const uniqueViolation = "23505"

// ErrFreeAgent is returned when a free agent is put in the cart
var ErrFreeAgent = apperrors.NewValidationError("free agents are downloaded, not purchased", "agent_id")

// Store is the remote cart data access client
type Store interface {
	ListByUser(ctx context.Context, userID string) ([]CartItem, error)
	Insert(ctx context.Context, userID, agentID string) error
	Delete(ctx context.Context, userID, itemID string) error
	DeleteByUser(ctx context.Context, userID string) error
}

// GormStore implements Store on top of the cart_items table
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new gorm-backed cart store
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// ListByUser returns the user's cart rows joined with their agents
func (s *GormStore) ListByUser(ctx context.Context, userID string) ([]CartItem, error) {
	var items []CartItem
	err := s.db.WithContext(ctx).
		Preload("Agent").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}
	return items, nil
}

// Insert adds an agent to the user's cart. A duplicate pair yields
// apperrors.ErrDuplicateItem; a free agent yields ErrFreeAgent.
func (s *GormStore) Insert(ctx context.Context, userID, agentID string) error {
	var target agent.Agent
	err := s.db.WithContext(ctx).Select("id", "is_free").Where("id = ?", agentID).First(&target).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("agent %s: %w", agentID, apperrors.ErrNotFound)
		}
		return fmt.Errorf("failed to look up agent: %w", err)
	}
	if target.IsFree {
		return ErrFreeAgent
	}

	item := CartItem{
		ID:      uuid.NewString(),
		UserID:  userID,
		AgentID: agentID,
	}

	if err = s.db.WithContext(ctx).Create(&item).Error; err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicateItem
		}
		return fmt.Errorf("failed to add cart item: %w", err)
	}
	return nil
}

// Delete removes a single cart row owned by userID
func (s *GormStore) Delete(ctx context.Context, userID, itemID string) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", itemID, userID).
		Delete(&CartItem{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove cart item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("cart item %s: %w", itemID, apperrors.ErrNotFound)
	}
	return nil
}

// DeleteByUser removes every cart row owned by userID
func (s *GormStore) DeleteByUser(ctx context.Context, userID string) error {
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&CartItem{}).Error
	if err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
