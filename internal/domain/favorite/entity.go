// internal/domain/favorite/entity.go
package favorite

import (
	"time"

	"github.com/mercado-ia/storefront/internal/domain/agent"
)

// Favorite bookmarks an agent for a user. At most one row exists per
// (user_id, agent_id).
type Favorite struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_favorites_user_agent" json:"user_id"`
	AgentID   string    `gorm:"type:uuid;not null;uniqueIndex:idx_favorites_user_agent" json:"agent_id"`
	CreatedAt time.Time `json:"created_at"`

	Agent *agent.Agent `gorm:"foreignKey:AgentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"agent,omitempty"`
}

// TableName overrides the table name
func (Favorite) TableName() string {
	return "favorites"
}
