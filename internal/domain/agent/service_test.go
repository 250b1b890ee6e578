package agent

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/mercado-ia/storefront/internal/pkg/apperrors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return db, mock
}

func TestBuildAgent_FreeAgentIsPricedAtZero(t *testing.T) {
	agent, err := buildAgent("seller-1", &CreateRequest{
		Name:        "  Lead Scraper ",
		Description: " Scrapes leads ",
		Price:       decimal.NewFromInt(99),
		IsFree:      true,
	})
	require.NoError(t, err)

	assert.True(t, agent.Price.IsZero())
	assert.Equal(t, "Lead Scraper", agent.Name)
	assert.Equal(t, "Scrapes leads", agent.Description)
	assert.False(t, agent.IsFeatured)
	assert.NotEmpty(t, agent.ID)
}

func TestBuildAgent_RejectsNegativePrice(t *testing.T) {
	_, err := buildAgent("seller-1", &CreateRequest{
		Name:        "Email Bot",
		Description: "Sends email",
		Price:       decimal.NewFromInt(-1),
	})

	var validationErr *apperrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, []string{"price"}, validationErr.Fields)
}

func TestBuildAgent_MissingFields(t *testing.T) {
	_, err := buildAgent("seller-1", &CreateRequest{Name: " "})

	var validationErr *apperrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, []string{"name", "description"}, validationErr.Fields)
}

func TestBuildAgent_VideoAndEmptyCategory(t *testing.T) {
	empty := ""
	agent, err := buildAgent("seller-1", &CreateRequest{
		Name:        "Email Bot",
		Description: "Sends email",
		Price:       decimal.RequireFromString("150.004"),
		CategoryID:  &empty,
		VideoURL:    "https://videos.example/demo",
	})
	require.NoError(t, err)

	assert.Nil(t, agent.CategoryID)
	assert.Equal(t, []string{"https://videos.example/demo"}, []string(agent.Videos))
	assert.Equal(t, "150", agent.Price.String())
}

func TestGetAgent_InvalidIDIsNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewService(db)

	_, err := svc.GetAgent(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListFeatured(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewService(db)

	rows := sqlmock.NewRows([]string{"id", "seller_id", "name", "description", "price", "is_featured", "is_free", "created_at", "updated_at"}).
		AddRow("a1", "s1", "Email Bot", "Sends email", "150.00", true, false, time.Now(), time.Now())

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "agents" WHERE is_featured = $1 AND is_free = $2 ORDER BY created_at DESC LIMIT $3`)).
		WithArgs(true, false, defaultFeaturedLimit).
		WillReturnRows(rows)

	agents, err := svc.ListFeatured(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, agents, 1)
	assert.Equal(t, "Email Bot", agents[0].Name)
	assert.True(t, agents[0].Price.Equal(decimal.NewFromInt(150)))
	assert.NoError(t, mock.ExpectationsWereMet())
}
