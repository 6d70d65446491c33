package persistence

import (
	"context"

	catalogapp "github.com/pos/backend/internal/application/catalog"
	financeapp "github.com/pos/backend/internal/application/finance"
	salesapp "github.com/pos/backend/internal/application/sales"
	"github.com/pos/backend/internal/domain/catalog"
	"github.com/pos/backend/internal/domain/finance"
	"github.com/pos/backend/internal/domain/sales"
	"gorm.io/gorm"
)

// GormTransactionScope implements the application TransactionScope
// interfaces using GORM transactions. One value serves the sales, finance
// and catalog use cases; each sees only the repositories it declares.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// run executes fn within a database transaction. If fn returns an error the
// transaction is rolled back, otherwise it is committed.
func (s *GormTransactionScope) run(ctx context.Context, fn func(repos *gormTransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// SalesScope adapts the scope to the sales use cases
func (s *GormTransactionScope) SalesScope() salesapp.TransactionScope {
	return salesScope{s}
}

// FinanceScope adapts the scope to the debit use cases
func (s *GormTransactionScope) FinanceScope() financeapp.TransactionScope {
	return financeScope{s}
}

// CatalogScope adapts the scope to the catalog use cases
func (s *GormTransactionScope) CatalogScope() catalogapp.TransactionScope {
	return catalogScope{s}
}

type salesScope struct{ *GormTransactionScope }

func (s salesScope) Execute(ctx context.Context, fn func(repos salesapp.TransactionalRepositories) error) error {
	return s.run(ctx, func(repos *gormTransactionalRepositories) error { return fn(repos) })
}

type financeScope struct{ *GormTransactionScope }

func (s financeScope) Execute(ctx context.Context, fn func(repos financeapp.TransactionalRepositories) error) error {
	return s.run(ctx, func(repos *gormTransactionalRepositories) error { return fn(repos) })
}

type catalogScope struct{ *GormTransactionScope }

func (s catalogScope) Execute(ctx context.Context, fn func(repos catalogapp.TransactionalRepositories) error) error {
	return s.run(ctx, func(repos *gormTransactionalRepositories) error { return fn(repos) })
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// CategoryRepo returns the category repository scoped to the current transaction.
func (r *gormTransactionalRepositories) CategoryRepo() catalog.CategoryRepository {
	return NewGormCategoryRepository(r.tx)
}

// ProductRepo returns the product repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ProductRepo() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

// ServiceRepo returns the service repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ServiceRepo() catalog.ServiceRepository {
	return NewGormServiceRepository(r.tx)
}

// SellHistoryRepo returns the sell history repository scoped to the current transaction.
func (r *gormTransactionalRepositories) SellHistoryRepo() sales.SellHistoryRepository {
	return NewGormSellHistoryRepository(r.tx)
}

// TransactionRepo returns the bulk transaction repository scoped to the current transaction.
func (r *gormTransactionalRepositories) TransactionRepo() sales.TransactionRepository {
	return NewGormTransactionRepository(r.tx)
}

// DebitRepo returns the debit repository scoped to the current transaction.
func (r *gormTransactionalRepositories) DebitRepo() finance.DebitRepository {
	return NewGormDebitRepository(r.tx)
}

// DebitItemRepo returns the debit item repository scoped to the current transaction.
func (r *gormTransactionalRepositories) DebitItemRepo() finance.DebitItemRepository {
	return NewGormDebitItemRepository(r.tx)
}

var (
	_ salesapp.TransactionScope            = salesScope{}
	_ financeapp.TransactionScope          = financeScope{}
	_ catalogapp.TransactionScope          = catalogScope{}
	_ salesapp.TransactionalRepositories   = (*gormTransactionalRepositories)(nil)
	_ financeapp.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
	_ catalogapp.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
