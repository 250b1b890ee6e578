// internal/domain/seller/entity.go
package seller

import (
	"time"

	"github.com/mercado-ia/storefront/internal/domain/agent"
	"github.com/shopspring/decimal"
)

// UserType distinguishes buyers from sellers
type UserType string

const (
	UserTypeBuyer  UserType = "buyer"
	UserTypeSeller UserType = "seller"
)

// Profile mirrors the auth platform user with storefront attributes
type Profile struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string    `gorm:"not null;size:255" json:"email"`
	FullName  *string   `gorm:"size:255" json:"full_name"`
	AvatarURL *string   `gorm:"size:1000" json:"avatar_url"`
	UserType  UserType  `gorm:"not null;size:20;default:buyer" json:"user_type"`
	UserLevel string    `gorm:"not null;size:50;default:bronze" json:"user_level"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (Profile) TableName() string {
	return "profiles"
}

// IsSeller reports whether the profile completed seller onboarding
func (p *Profile) IsSeller() bool {
	return p.UserType == UserTypeSeller
}

// Purchase records a completed sale. Rows are written by the payment
// confirmation flow outside this service; the storefront only reads them.
type Purchase struct {
	ID               string          `gorm:"type:uuid;primaryKey" json:"id"`
	BuyerID          string          `gorm:"type:uuid;not null;index" json:"buyer_id"`
	AgentID          string          `gorm:"type:uuid;not null;index" json:"agent_id"`
	PricePaid        decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price_paid"`
	PurchasedAt      time.Time       `gorm:"not null" json:"purchased_at"`
	LicenseType      string          `gorm:"not null;size:20;default:lifetime" json:"license_type"`
	LicenseExpiresAt *time.Time      `json:"license_expires_at"`

	Agent *agent.Agent `gorm:"foreignKey:AgentID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"agent,omitempty"`
}

// TableName overrides the table name
func (Purchase) TableName() string {
	return "purchases"
}
