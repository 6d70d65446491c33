package finance

import (
	"context"

	"github.com/pos/backend/internal/domain/finance"
	"github.com/pos/backend/internal/domain/sales"
)

// TransactionScope runs a debit use case as one unit of work
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides the repositories a debit mutation
// touches, all bound to the same database transaction. Sales are only read
// (and locked) to validate credited amounts.
type TransactionalRepositories interface {
	DebitRepo() finance.DebitRepository
	DebitItemRepo() finance.DebitItemRepository
	SellHistoryRepo() sales.SellHistoryRepository
}

// NoOpTransactionScope runs fn against plain repositories. Used by tests.
type NoOpTransactionScope struct {
	debitRepo       finance.DebitRepository
	debitItemRepo   finance.DebitItemRepository
	sellHistoryRepo sales.SellHistoryRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	debitRepo finance.DebitRepository,
	debitItemRepo finance.DebitItemRepository,
	sellHistoryRepo sales.SellHistoryRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		debitRepo:       debitRepo,
		debitItemRepo:   debitItemRepo,
		sellHistoryRepo: sellHistoryRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// DebitRepo returns the debit repository.
func (s *NoOpTransactionScope) DebitRepo() finance.DebitRepository {
	return s.debitRepo
}

// DebitItemRepo returns the debit item repository.
func (s *NoOpTransactionScope) DebitItemRepo() finance.DebitItemRepository {
	return s.debitItemRepo
}

// SellHistoryRepo returns the sell history repository.
func (s *NoOpTransactionScope) SellHistoryRepo() sales.SellHistoryRepository {
	return s.sellHistoryRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
