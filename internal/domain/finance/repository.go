package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DebitFilter narrows debit listings
type DebitFilter struct {
	shared.Filter
	Status DebitStatus
}

// DebitRepository defines the interface for debit persistence.
// Loaded debits always carry their items.
type DebitRepository interface {
	// FindByID finds a debit with its items
	FindByID(ctx context.Context, id uuid.UUID) (*Debit, error)

	// FindByIDForUpdate finds a debit with its items and locks the debit row
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Debit, error)

	// FindAll finds debits matching the filter
	FindAll(ctx context.Context, filter DebitFilter) ([]Debit, error)

	// Count counts debits matching the filter
	Count(ctx context.Context, filter DebitFilter) (int64, error)

	// Save creates or updates the debit row and inserts items it does not
	// have yet. Removed items are deleted through DebitItemRepository.
	Save(ctx context.Context, debit *Debit) error

	// Delete deletes a debit and its items
	Delete(ctx context.Context, id uuid.UUID) error

	// OutstandingTotal returns Σ(total - paid) over debits that are not paid
	OutstandingTotal(ctx context.Context) (decimal.Decimal, error)
}

// DebitItemRepository defines the interface for debit item persistence
type DebitItemRepository interface {
	// FindBySellHistoryID finds the item that puts a sale on credit
	FindBySellHistoryID(ctx context.Context, sellHistoryID uuid.UUID) (*DebitItem, error)

	// FindBySellHistoryIDs returns the items of any of the given sales
	FindBySellHistoryIDs(ctx context.Context, sellHistoryIDs []uuid.UUID) ([]DebitItem, error)

	// ExistsBySellHistoryID reports whether the sale is on a debit
	ExistsBySellHistoryID(ctx context.Context, sellHistoryID uuid.UUID) (bool, error)

	// Delete deletes a debit item
	Delete(ctx context.Context, id uuid.UUID) error
}

// ExpenseFilter narrows expense listings
type ExpenseFilter struct {
	shared.Filter
	Category string
	From     *time.Time
	To       *time.Time
}

// ExpenseRepository defines the interface for expense persistence
type ExpenseRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Expense, error)
	FindAll(ctx context.Context, filter ExpenseFilter) ([]Expense, error)
	Count(ctx context.Context, filter ExpenseFilter) (int64, error)
	Save(ctx context.Context, expense *Expense) error
	Delete(ctx context.Context, id uuid.UUID) error

	// SumBetween totals expenses spent in [from, to)
	SumBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
}
