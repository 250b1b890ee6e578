// internal/domain/cart/manager.go
package cart

import (
	"context"
	"errors"
	"sync"

	"github.com/mercado-ia/storefront/internal/pkg/apperrors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Manager owns the in-memory cart of a single identity. Every successful
// mutation is followed by a full reload from the store, so the loaded items
// never diverge from the remote rows for longer than one round trip.
type Manager struct {
	store  Store
	logger *logrus.Logger

	mu     sync.RWMutex
	userID string
	items  []CartItem
}

// NewManager creates a cart manager with no identity bound
func NewManager(store Store, logger *logrus.Logger) *Manager {
	return &Manager{
		store:  store,
		logger: logger,
	}
}

// Init binds the manager to userID and loads its cart
func (m *Manager) Init(ctx context.Context, userID string) ([]CartItem, error) {
	m.mu.Lock()
	if m.userID != userID {
		m.items = nil
	}
	m.userID = userID
	m.mu.Unlock()

	return m.Load(ctx)
}

// Teardown drops the identity and the loaded items
func (m *Manager) Teardown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.userID = ""
	m.items = nil
}

// Identity returns the bound user ID, empty when signed out
func (m *Manager) Identity() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.userID
}

// Load replaces the in-memory cart with the store's rows. Without an
// identity the cart is empty.
func (m *Manager) Load(ctx context.Context) ([]CartItem, error) {
	userID := m.Identity()
	if userID == "" {
		m.replace("", nil)
		return []CartItem{}, nil
	}

	items, err := m.store.ListByUser(ctx, userID)
	if err != nil {
		m.logger.WithError(err).WithField("user_id", userID).Error("Failed to load cart")
		return nil, err
	}
	if items == nil {
		items = []CartItem{}
	}

	m.replace(userID, items)
	return m.Items(), nil
}

// Add puts agentID in the cart. Adding an agent that is already there is a no-op.
func (m *Manager) Add(ctx context.Context, agentID string) error {
	userID := m.Identity()
	if userID == "" {
		return apperrors.ErrAuthRequired
	}

	if err := m.store.Insert(ctx, userID, agentID); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicateItem) {
			return err
		}
		m.logger.WithFields(logrus.Fields{
			"user_id":  userID,
			"agent_id": agentID,
		}).Debug("Agent already in cart")
	}

	_, err := m.Load(ctx)
	return err
}

// Remove deletes a single cart row. A missing row is reported as apperrors.ErrNotFound.
func (m *Manager) Remove(ctx context.Context, cartItemID string) error {
	userID := m.Identity()
	if userID == "" {
		return apperrors.ErrAuthRequired
	}

	if err := m.store.Delete(ctx, userID, cartItemID); err != nil {
		return err
	}

	_, err := m.Load(ctx)
	return err
}

// Clear empties the cart. Without an identity it does nothing.
func (m *Manager) Clear(ctx context.Context) error {
	userID := m.Identity()
	if userID == "" {
		return nil
	}

	if err := m.store.DeleteByUser(ctx, userID); err != nil {
		return err
	}

	_, err := m.Load(ctx)
	return err
}

// Items returns a copy of the loaded cart
func (m *Manager) Items() []CartItem {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]CartItem, len(m.items))
	copy(items, m.items)
	return items
}

// ItemCount is the number of loaded items, used for the cart badge
func (m *Manager) ItemCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Total sums the agent prices of the loaded items
func (m *Manager) Total() decimal.Decimal {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Sum(m.items)
}

// Sum adds up the agent prices of items
func Sum(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		if item.Agent != nil {
			total = total.Add(item.Agent.Price)
		}
	}
	return total
}

// replace swaps the loaded items unless the identity changed while the
// store call was in flight.
func (m *Manager) replace(userID string, items []CartItem) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.userID != userID {
		return
	}
	m.items = items
}
