package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/finance"
	"github.com/shopspring/decimal"
)

// DebitItemRequest credits (part of) one sale
type DebitItemRequest struct {
	SellHistoryID uuid.UUID       `json:"sell_history_id" binding:"required"`
	Amount        decimal.Decimal `json:"amount"`
}

// CreateDebitRequest represents a request to open a debit over some sales
type CreateDebitRequest struct {
	CustomerName *string            `json:"customer_name" binding:"omitempty,max=200"`
	Notes        *string            `json:"notes" binding:"omitempty,max=2000"`
	Items        []DebitItemRequest `json:"items" binding:"required,min=1,dive"`
}

// UpdateDebitRequest updates a debit's details or records a payment.
// PaidAmount is the cumulative amount paid, not an increment.
type UpdateDebitRequest struct {
	CustomerName *string          `json:"customer_name" binding:"omitempty,max=200"`
	Notes        *string          `json:"notes" binding:"omitempty,max=2000"`
	PaidAmount   *decimal.Decimal `json:"paid_amount"`
}

// DebitListFilter represents filter options for listing debits
type DebitListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=PENDING PARTIAL PAID"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// DebitItemResponse represents a debit item in API responses
type DebitItemResponse struct {
	ID            uuid.UUID       `json:"id"`
	SellHistoryID uuid.UUID       `json:"sell_history_id"`
	Amount        decimal.Decimal `json:"amount"`
	CreatedAt     time.Time       `json:"created_at"`
}

// DebitResponse represents a debit in API responses
type DebitResponse struct {
	ID              uuid.UUID           `json:"id"`
	CustomerName    *string             `json:"customer_name"`
	Notes           *string             `json:"notes"`
	TotalAmount     decimal.Decimal     `json:"total_amount"`
	PaidAmount      decimal.Decimal     `json:"paid_amount"`
	RemainingAmount decimal.Decimal     `json:"remaining_amount"`
	Status          string              `json:"status"`
	PaidAt          *time.Time          `json:"paid_at"`
	Items           []DebitItemResponse `json:"items"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// RemoveDebitItemResponse reports the debit left after removing an item.
// Debit is nil when the removed item was the last one.
type RemoveDebitItemResponse struct {
	DebitID      uuid.UUID      `json:"debit_id"`
	DebitDeleted bool           `json:"debit_deleted"`
	Debit        *DebitResponse `json:"debit,omitempty"`
}

// ToDebitResponse converts a domain Debit to DebitResponse
func ToDebitResponse(d *finance.Debit) DebitResponse {
	items := make([]DebitItemResponse, len(d.Items))
	for i, item := range d.Items {
		items[i] = DebitItemResponse{
			ID:            item.ID,
			SellHistoryID: item.SellHistoryID,
			Amount:        item.Amount,
			CreatedAt:     item.CreatedAt,
		}
	}
	return DebitResponse{
		ID:              d.ID,
		CustomerName:    d.CustomerName,
		Notes:           d.Notes,
		TotalAmount:     d.TotalAmount,
		PaidAmount:      d.PaidAmount,
		RemainingAmount: d.RemainingAmount(),
		Status:          d.Status.String(),
		PaidAt:          d.PaidAt,
		Items:           items,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}
