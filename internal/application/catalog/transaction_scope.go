package catalog

import (
	"context"

	"github.com/pos/backend/internal/domain/catalog"
)

// TransactionScope runs a catalog use case as one unit of work
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides the catalog repositories bound to one
// database transaction. Used by restock and by CSV import, which writes all
// valid rows or none.
type TransactionalRepositories interface {
	CategoryRepo() catalog.CategoryRepository
	ProductRepo() catalog.ProductRepository
}

// NoOpTransactionScope runs fn against plain repositories. Used by tests.
type NoOpTransactionScope struct {
	categoryRepo catalog.CategoryRepository
	productRepo  catalog.ProductRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(categoryRepo catalog.CategoryRepository, productRepo catalog.ProductRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{categoryRepo: categoryRepo, productRepo: productRepo}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// CategoryRepo returns the category repository.
func (s *NoOpTransactionScope) CategoryRepo() catalog.CategoryRepository {
	return s.categoryRepo
}

// ProductRepo returns the product repository.
func (s *NoOpTransactionScope) ProductRepo() catalog.ProductRepository {
	return s.productRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
