// internal/domain/agent/entity.go
package agent

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Agent is a sellable automation workflow package
type Agent struct {
	ID          string          `gorm:"type:uuid;primaryKey" json:"id"`
	SellerID    string          `gorm:"type:uuid;not null;index" json:"seller_id"`
	CategoryID  *string         `gorm:"type:uuid;index" json:"category_id"`
	Name        string          `gorm:"not null;size:255" json:"name"`
	Description string          `gorm:"type:text;not null" json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"price"`
	IsFeatured  bool            `gorm:"not null;default:false" json:"is_featured"`
	IsFree      bool            `gorm:"not null;default:false" json:"is_free"`
	WorkflowURL *string         `gorm:"column:workflow_url;size:1000" json:"workflow_url,omitempty"`
	Images      pq.StringArray  `gorm:"type:text[]" json:"images"`
	Videos      pq.StringArray  `gorm:"type:text[]" json:"videos"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"category,omitempty"`
}

// TableName overrides the table name
func (Agent) TableName() string {
	return "agents"
}

// Category groups agents in the catalog
type Category struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"not null;size:255" json:"name"`
	Slug        string    `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description *string   `gorm:"size:500" json:"description"`
	Icon        *string   `gorm:"size:100" json:"icon"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName overrides the table name
func (Category) TableName() string {
	return "categories"
}
