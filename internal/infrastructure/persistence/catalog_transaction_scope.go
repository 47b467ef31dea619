package persistence

import (
	"context"

	"gorm.io/gorm"

	appcatalog "github.com/shopline/backend/internal/application/catalog"
	"github.com/shopline/backend/internal/domain/catalog"
)

// GormCatalogTransactionScope implements the catalog TransactionScope using
// GORM transactions. Variant lifecycle writes and their ledger entries commit
// or roll back together.
type GormCatalogTransactionScope struct {
	db *gorm.DB
}

// NewGormCatalogTransactionScope creates a new GormCatalogTransactionScope.
func NewGormCatalogTransactionScope(db *gorm.DB) *GormCatalogTransactionScope {
	return &GormCatalogTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormCatalogTransactionScope) Execute(ctx context.Context, fn func(repos appcatalog.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormCatalogRepositories{tx: tx}
		return fn(repos)
	})
}

// gormCatalogRepositories provides access to catalog repositories within a transaction.
type gormCatalogRepositories struct {
	tx *gorm.DB
}

// ProductRepo returns the product repository scoped to the current transaction.
func (r *gormCatalogRepositories) ProductRepo() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

// LedgerRepo returns the variant ledger repository scoped to the current transaction.
func (r *gormCatalogRepositories) LedgerRepo() catalog.VariantLedgerRepository {
	return NewGormVariantLedgerRepository(r.tx)
}

// Ensure GormCatalogTransactionScope implements TransactionScope
var _ appcatalog.TransactionScope = (*GormCatalogTransactionScope)(nil)

// Ensure gormCatalogRepositories implements TransactionalRepositories
var _ appcatalog.TransactionalRepositories = (*gormCatalogRepositories)(nil)