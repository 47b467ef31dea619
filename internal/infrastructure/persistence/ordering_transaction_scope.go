package persistence

import (
	"context"

	"gorm.io/gorm"

	appordering "github.com/shopline/backend/internal/application/ordering"
	"github.com/shopline/backend/internal/domain/catalog"
	"github.com/shopline/backend/internal/domain/ordering"
)

// GormOrderingTransactionScope implements the ordering TransactionScope using
// GORM transactions. It provides atomic execution of order and stock writes.
type GormOrderingTransactionScope struct {
	db *gorm.DB
}

// NewGormOrderingTransactionScope creates a new GormOrderingTransactionScope.
func NewGormOrderingTransactionScope(db *gorm.DB) *GormOrderingTransactionScope {
	return &GormOrderingTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormOrderingTransactionScope) Execute(ctx context.Context, fn func(repos appordering.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormOrderingRepositories{tx: tx}
		return fn(repos)
	})
}

// gormOrderingRepositories provides access to order-flow repositories within a transaction.
type gormOrderingRepositories struct {
	tx *gorm.DB
}

// OrderRepo returns the order repository scoped to the current transaction.
func (r *gormOrderingRepositories) OrderRepo() ordering.OrderRepository {
	return NewGormOrderRepository(r.tx)
}

// ProductRepo returns the product repository scoped to the current transaction.
func (r *gormOrderingRepositories) ProductRepo() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

// Ensure GormOrderingTransactionScope implements TransactionScope
var _ appordering.TransactionScope = (*GormOrderingTransactionScope)(nil)

// Ensure gormOrderingRepositories implements TransactionalRepositories
var _ appordering.TransactionalRepositories = (*gormOrderingRepositories)(nil)