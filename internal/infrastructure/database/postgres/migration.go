// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/mercado-ia/storefront/internal/domain/agent"
	"github.com/mercado-ia/storefront/internal/domain/cart"
	"github.com/mercado-ia/storefront/internal/domain/favorite"
	"github.com/mercado-ia/storefront/internal/domain/seller"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// demoSellerID owns the seeded catalog in development
const demoSellerID = "00000000-0000-4000-8000-000000000001"

// Migration handles database migrations
type Migration struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, logger *logrus.Logger) *Migration {
	return &Migration{
		db:     db,
		logger: logger,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	m.logger.Info("Running database auto-migrations")

	// dependency order
	models := []interface{}{
		&seller.Profile{},
		&agent.Category{},
		&agent.Agent{},
		&cart.CartItem{},
		&seller.Purchase{},
		&favorite.Favorite{},
	}

	for _, model := range models {
		m.logger.Debugf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	m.logger.Info("Database auto-migrations completed")
	return nil
}

// CreateIndexes creates the indexes the catalog and dashboard queries rely on
func (m *Migration) CreateIndexes() error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_agents_free_created ON agents(is_free, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_agents_featured ON agents(is_featured, is_free, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_agents_seller_created ON agents(seller_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_cart_items_user_created ON cart_items(user_id, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_purchases_agent_purchased ON purchases(agent_id, purchased_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_purchases_buyer_purchased ON purchases(buyer_id, purchased_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_favorites_user_created ON favorites(user_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_profiles_user_type ON profiles(user_type)",
	}

	failed := 0
	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			m.logger.WithError(err).Warn("Failed to create index")
			failed++
		}
	}

	m.logger.WithFields(logrus.Fields{
		"created": len(indexes) - failed,
		"failed":  failed,
	}).Info("Indexes created")
	return nil
}

// SeedInitialData inserts categories and a demo catalog for development
func (m *Migration) SeedInitialData() error {
	m.logger.Info("Seeding initial data")

	categories, err := m.seedCategories()
	if err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}

	if err := m.seedDemoCatalog(categories); err != nil {
		return fmt.Errorf("failed to seed demo catalog: %w", err)
	}

	m.logger.Info("Initial data seeded")
	return nil
}

// seedCategories creates the default categories and returns their ids by slug
func (m *Migration) seedCategories() (map[string]string, error) {
	defaults := []agent.Category{
		{Name: "Marketing", Slug: "marketing", Description: strPtr("Email, social media and campaign automations"), Icon: strPtr("megaphone")},
		{Name: "Vendas", Slug: "vendas", Description: strPtr("CRM, lead capture and pipeline automations"), Icon: strPtr("trending-up")},
		{Name: "Atendimento", Slug: "atendimento", Description: strPtr("Support bots and ticket routing"), Icon: strPtr("message-circle")},
		{Name: "Produtividade", Slug: "produtividade", Description: strPtr("Scheduling, documents and internal tooling"), Icon: strPtr("zap")},
	}

	ids := make(map[string]string, len(defaults))
	for _, category := range defaults {
		var existing agent.Category
		err := m.db.Where("slug = ?", category.Slug).First(&existing).Error
		switch {
		case err == nil:
			ids[category.Slug] = existing.ID
			m.logger.Debugf("Category already exists: %s", category.Name)
		case errors.Is(err, gorm.ErrRecordNotFound):
			category.ID = uuid.NewString()
			if err := m.db.Create(&category).Error; err != nil {
				return nil, err
			}
			ids[category.Slug] = category.ID
			m.logger.Debugf("Created category: %s", category.Name)
		default:
			return nil, err
		}
	}

	return ids, nil
}

// seedDemoCatalog creates a demo seller with a few paid and free agents
func (m *Migration) seedDemoCatalog(categories map[string]string) error {
	var count int64
	if err := m.db.Model(&agent.Agent{}).Where("seller_id = ?", demoSellerID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		m.logger.Debug("Demo catalog already seeded")
		return nil
	}

	profile := seller.Profile{
		ID:       demoSellerID,
		Email:    "demo-seller@mercado-ia.local",
		FullName: strPtr("Demo Seller"),
		UserType: seller.UserTypeSeller,
	}
	if err := m.db.Where("id = ?", demoSellerID).FirstOrCreate(&profile).Error; err != nil {
		return err
	}

	agents := []agent.Agent{
		{Name: "Email Bot", Description: "Answers and triages incoming email with AI", Price: decimal.RequireFromString("150.00"), IsFeatured: true, CategoryID: strPtr(categories["marketing"])},
		{Name: "CRM Sync", Description: "Keeps leads in sync between forms and your CRM", Price: decimal.RequireFromString("89.90"), IsFeatured: true, CategoryID: strPtr(categories["vendas"])},
		{Name: "Support Triage", Description: "Routes support tickets by urgency and topic", Price: decimal.RequireFromString("120.00"), CategoryID: strPtr(categories["atendimento"])},
		{Name: "Daily Digest", Description: "Sends a daily summary of your calendar and tasks", IsFree: true, WorkflowURL: strPtr("https://example.com/workflows/daily-digest.json"), CategoryID: strPtr(categories["produtividade"])},
	}

	for i := range agents {
		agents[i].ID = uuid.NewString()
		agents[i].SellerID = demoSellerID
		agents[i].Images = pq.StringArray{}
		agents[i].Videos = pq.StringArray{}
	}

	if err := m.db.Create(&agents).Error; err != nil {
		return err
	}

	m.logger.WithField("agents", len(agents)).Info("Seeded demo catalog")
	return nil
}

func strPtr(s string) *string {
	return &s
}
