// internal/domain/cart/entity.go
package cart

import (
	"time"

	"github.com/mercado-ia/storefront/internal/domain/agent"
)

// CartItem pairs a user with an agent awaiting purchase. At most one row
// exists per (user_id, agent_id).
type CartItem struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_user_agent" json:"user_id"`
	AgentID   string    `gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_user_agent" json:"agent_id"`
	CreatedAt time.Time `json:"created_at"`

	Agent *agent.Agent `gorm:"foreignKey:AgentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"agent,omitempty"`
}

// TableName overrides the table name
func (CartItem) TableName() string {
	return "cart_items"
}
