package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/shopline/backend/internal/domain/catalog"
	"github.com/shopline/backend/internal/domain/shared"
)

// newMockLedgerRepository creates a GormVariantLedgerRepository with a mocked SQL connection
func newMockLedgerRepository(t *testing.T) (*GormVariantLedgerRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormVariantLedgerRepository(gormDB), mock, mockDB
}

func TestGormVariantLedgerRepository_Create(t *testing.T) {
	t.Run("appends a ledger entry", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerRepository(t)
		defer mockDB.Close()

		product, err := catalog.NewProduct("TEE-001", "Basic Tee", decimal.NewFromInt(20))
		require.NoError(t, err)
		variant, err := product.AddVariant(uuid.New(), uuid.New(), "M", "Black", 5)
		require.NoError(t, err)

		entry, err := catalog.NewVariantLedgerEntry(product.ID, variant, catalog.LedgerEventCreateVariant, 0, 5, product.Price)
		require.NoError(t, err)

		mock.ExpectExec(`INSERT INTO "variant_ledger_entries"`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repo.Create(context.Background(), entry)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormVariantLedgerRepository_FindByProduct(t *testing.T) {
	t.Run("lists entries for a product newest first by default", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerRepository(t)
		defer mockDB.Close()

		productID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "product_id", "event_type", "prev_stock", "new_stock"}).
			AddRow(uuid.New(), productID, "ADD_STOCK", 5, 12).
			AddRow(uuid.New(), productID, "CREATE_VARIANT", 0, 5)

		mock.ExpectQuery(`SELECT \* FROM "variant_ledger_entries" WHERE product_id = \$1 .*ORDER BY created_at DESC`).
			WithArgs(productID, 20).
			WillReturnRows(rows)

		entries, err := repo.FindByProduct(context.Background(), productID, shared.DefaultFilter())

		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, catalog.LedgerEventAddStock, entries[0].EventType)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormVariantLedgerRepository_Count(t *testing.T) {
	t.Run("counts entries with product filter", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerRepository(t)
		defer mockDB.Close()

		productID := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "variant_ledger_entries" WHERE product_id = \$1`).
			WithArgs(productID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

		filter := shared.DefaultFilter()
		filter.Filters["product_id"] = productID

		count, err := repo.Count(context.Background(), filter)

		require.NoError(t, err)
		assert.Equal(t, int64(7), count)
	})
}

func TestGormVariantLedgerRepository_FindByID(t *testing.T) {
	t.Run("returns ErrNotFound for missing entry", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "variant_ledger_entries"`).
			WillReturnError(gorm.ErrRecordNotFound)

		_, err := repo.FindByID(context.Background(), uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}