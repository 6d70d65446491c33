package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/shared"
)

// SellHistoryFilter narrows sale listings
type SellHistoryFilter struct {
	shared.Filter
	Kind          SaleKind
	ProductID     *uuid.UUID
	ServiceID     *uuid.UUID
	TransactionID *uuid.UUID
	From          *time.Time
	To            *time.Time
}

// SellHistoryRepository defines the interface for sale row persistence
type SellHistoryRepository interface {
	// FindByID finds a sale row by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*SellHistory, error)

	// FindByIDForUpdate finds a sale row and locks it
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*SellHistory, error)

	// FindByIDs finds multiple sale rows by their IDs
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]SellHistory, error)

	// FindByTransactionID returns every row of a bulk transaction
	FindByTransactionID(ctx context.Context, transactionID uuid.UUID) ([]SellHistory, error)

	// FindAll finds sale rows matching the filter
	FindAll(ctx context.Context, filter SellHistoryFilter) ([]SellHistory, error)

	// Count counts sale rows matching the filter
	Count(ctx context.Context, filter SellHistoryFilter) (int64, error)

	// Save creates or updates a sale row
	Save(ctx context.Context, sale *SellHistory) error

	// SaveBatch creates multiple sale rows
	SaveBatch(ctx context.Context, sales []*SellHistory) error

	// Delete deletes a sale row
	Delete(ctx context.Context, id uuid.UUID) error

	// ExistsForItem reports whether any sale references the item
	ExistsForItem(ctx context.Context, item ItemRef) (bool, error)
}

// TransactionRepository defines the interface for bulk transaction persistence
type TransactionRepository interface {
	// FindByID finds a transaction by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error)

	// FindByIDForUpdate finds a transaction and locks it
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Transaction, error)

	// FindAll finds transactions matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Transaction, error)

	// Count counts transactions matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Save creates or updates a transaction
	Save(ctx context.Context, tx *Transaction) error

	// Delete deletes a transaction
	Delete(ctx context.Context, id uuid.UUID) error
}
