package sales

import (
	"context"

	"github.com/pos/backend/internal/domain/catalog"
	"github.com/pos/backend/internal/domain/finance"
	"github.com/pos/backend/internal/domain/sales"
)

// TransactionScope runs a sale use case as one unit of work.
// If fn returns an error every write made through repos is rolled back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides the repositories a sale mutation touches.
// All of them share the same underlying database transaction.
//
// Product, service and transaction rows are loaded with FindByIDForUpdate so
// two concurrent sales of the same product serialize on the product row.
type TransactionalRepositories interface {
	ProductRepo() catalog.ProductRepository
	ServiceRepo() catalog.ServiceRepository
	SellHistoryRepo() sales.SellHistoryRepository
	TransactionRepo() sales.TransactionRepository
	// DebitItemRepo is read-only here: sales on a debit cannot be deleted
	// and cannot be amended below their credited amount
	DebitItemRepo() finance.DebitItemRepository
}

// NoOpTransactionScope runs fn against plain repositories without a
// database transaction. Used by tests.
type NoOpTransactionScope struct {
	productRepo     catalog.ProductRepository
	serviceRepo     catalog.ServiceRepository
	sellHistoryRepo sales.SellHistoryRepository
	transactionRepo sales.TransactionRepository
	debitItemRepo   finance.DebitItemRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	productRepo catalog.ProductRepository,
	serviceRepo catalog.ServiceRepository,
	sellHistoryRepo sales.SellHistoryRepository,
	transactionRepo sales.TransactionRepository,
	debitItemRepo finance.DebitItemRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		productRepo:     productRepo,
		serviceRepo:     serviceRepo,
		sellHistoryRepo: sellHistoryRepo,
		transactionRepo: transactionRepo,
		debitItemRepo:   debitItemRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) ProductRepo() catalog.ProductRepository { return s.productRepo }
func (s *NoOpTransactionScope) ServiceRepo() catalog.ServiceRepository { return s.serviceRepo }
func (s *NoOpTransactionScope) SellHistoryRepo() sales.SellHistoryRepository { return s.sellHistoryRepo }
func (s *NoOpTransactionScope) TransactionRepo() sales.TransactionRepository { return s.transactionRepo }
func (s *NoOpTransactionScope) DebitItemRepo() finance.DebitItemRepository { return s.debitItemRepo }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
