package postgres

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/mercado-ia/storefront/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockMigration(t *testing.T) (*Migration, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return NewMigration(db, logger.Discard()), mock
}

func TestCreateIndexes_ToleratesFailures(t *testing.T) {
	m, mock := newMockMigration(t)

	mock.ExpectExec(`CREATE INDEX IF NOT EXISTS idx_agents_free_created`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE INDEX IF NOT EXISTS idx_agents_featured`).WillReturnError(errors.New("relation does not exist"))
	for i := 0; i < 6; i++ {
		mock.ExpectExec(`CREATE INDEX IF NOT EXISTS`).WillReturnResult(sqlmock.NewResult(0, 0))
	}

	assert.NoError(t, m.CreateIndexes())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedDemoCatalog_SkipsWhenSeeded(t *testing.T) {
	m, mock := newMockMigration(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "agents" WHERE seller_id = \$1`).
		WithArgs(demoSellerID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	require.NoError(t, m.seedDemoCatalog(map[string]string{}))
	assert.NoError(t, mock.ExpectationsWereMet())
}
