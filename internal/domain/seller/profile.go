// internal/domain/seller/profile.go
package seller

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/mercado-ia/storefront/internal/pkg/apperrors"
	"gorm.io/gorm/clause"
)

// UpdateProfileRequest carries the editable profile fields. Nil fields are left unchanged.
type UpdateProfileRequest struct {
	FullName  *string `json:"full_name,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// GetOrDefaultProfile returns the stored profile, or an unsaved buyer profile
// for users who never edited theirs.
func (s *Service) GetOrDefaultProfile(ctx context.Context, userID, email string) (*Profile, error) {
	profile, err := s.GetProfile(ctx, userID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return &Profile{
			ID:        userID,
			Email:     email,
			UserType:  UserTypeBuyer,
			UserLevel: "bronze",
		}, nil
	}
	return profile, err
}

// UpdateProfile upserts the caller's display name and avatar
func (s *Service) UpdateProfile(ctx context.Context, userID, email string, req *UpdateProfileRequest) (*Profile, error) {
	profile := Profile{
		ID:        userID,
		Email:     email,
		UserType:  UserTypeBuyer,
		UserLevel: "bronze",
	}
	columns := []string{"updated_at"}

	if req.FullName != nil {
		fullName := strings.TrimSpace(*req.FullName)
		if fullName == "" {
			return nil, apperrors.NewValidationError("full name cannot be blank", "full_name")
		}
		profile.FullName = &fullName
		columns = append(columns, "full_name")
	}
	if req.AvatarURL != nil {
		avatar := strings.TrimSpace(*req.AvatarURL)
		if avatar != "" && !isWebURL(avatar) {
			return nil, apperrors.NewValidationError("avatar must be an http(s) URL", "avatar_url")
		}
		if avatar != "" {
			profile.AvatarURL = &avatar
		}
		columns = append(columns, "avatar_url")
	}
	if len(columns) == 1 {
		return nil, apperrors.NewValidationError("nothing to update", "full_name", "avatar_url")
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(&profile).Error
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return s.GetProfile(ctx, userID)
}

// ListPurchases returns the buyer's purchases with their agents, newest first
func (s *Service) ListPurchases(ctx context.Context, buyerID string) ([]Purchase, error) {
	var purchases []Purchase
	err := s.db.WithContext(ctx).
		Preload("Agent").
		Where("buyer_id = ?", buyerID).
		Order("purchased_at DESC").
		Find(&purchases).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve purchases: %w", err)
	}
	return purchases, nil
}

func isWebURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}
