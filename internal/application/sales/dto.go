package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/sales"
	"github.com/shopspring/decimal"
)

// SellRequest is one sale line. Exactly one of ProductID and ServiceID is set.
type SellRequest struct {
	ProductID *uuid.UUID      `json:"product_id"`
	ServiceID *uuid.UUID      `json:"service_id"`
	Amount    int64           `json:"amount" binding:"required,gt=0"`
	SoldPrice decimal.Decimal `json:"sold_price"`
}

// BulkSellRequest sells several lines as one transaction
type BulkSellRequest struct {
	Items []SellRequest `json:"items" binding:"required,min=1,dive"`
}

// AmendSaleRequest carries the fields of a sale edit; nil fields are kept
type AmendSaleRequest struct {
	Amount    *int64           `json:"amount" binding:"omitempty,gt=0"`
	SoldPrice *decimal.Decimal `json:"sold_price"`
	CreatedAt *time.Time       `json:"created_at"`
}

// SaleListFilter represents filter options for listing sales
type SaleListFilter struct {
	Kind          string     `form:"kind" binding:"omitempty,oneof=PRODUCT SERVICE"`
	ProductID     *uuid.UUID `form:"product_id"`
	ServiceID     *uuid.UUID `form:"service_id"`
	TransactionID *uuid.UUID `form:"transaction_id"`
	From          *time.Time `form:"from" time_format:"2006-01-02"`
	To            *time.Time `form:"to" time_format:"2006-01-02"`
	Page          int        `form:"page" binding:"omitempty,min=1"`
	PageSize      int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy       string     `form:"order_by" binding:"omitempty,oneof=created_at total_price amount"`
	OrderDir      string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// TransactionListFilter represents filter options for listing transactions
type TransactionListFilter struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// SaleResponse represents a sale row in API responses
type SaleResponse struct {
	ID            uuid.UUID        `json:"id"`
	Kind          string           `json:"kind"`
	ProductID     *uuid.UUID       `json:"product_id,omitempty"`
	ServiceID     *uuid.UUID       `json:"service_id,omitempty"`
	Amount        int64            `json:"amount"`
	SoldPrice     decimal.Decimal  `json:"sold_price"`
	TotalPrice    decimal.Decimal  `json:"total_price"`
	InitialPrice  *decimal.Decimal `json:"initial_price,omitempty"`
	TransactionID *uuid.UUID       `json:"transaction_id,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// TransactionResponse represents a bulk transaction with its sale rows
type TransactionResponse struct {
	ID           uuid.UUID       `json:"id"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalProfit  decimal.Decimal `json:"total_profit"`
	Sales        []SaleResponse  `json:"sales,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ToSaleResponse converts a domain SellHistory to SaleResponse
func ToSaleResponse(s *sales.SellHistory) SaleResponse {
	resp := SaleResponse{
		ID:            s.ID,
		Kind:          string(s.Item.Kind),
		Amount:        s.Amount,
		SoldPrice:     s.SoldPrice,
		TotalPrice:    s.TotalPrice,
		InitialPrice:  s.InitialPrice,
		TransactionID: s.TransactionID,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
	id := s.Item.ID
	if s.Item.IsProduct() {
		resp.ProductID = &id
	} else {
		resp.ServiceID = &id
	}
	return resp
}

// ToSaleResponses converts a slice of sale rows
func ToSaleResponses(rows []sales.SellHistory) []SaleResponse {
	responses := make([]SaleResponse, len(rows))
	for i := range rows {
		responses[i] = ToSaleResponse(&rows[i])
	}
	return responses
}

// ToTransactionResponse converts a domain Transaction and its rows
func ToTransactionResponse(t *sales.Transaction, rows []sales.SellHistory) TransactionResponse {
	return TransactionResponse{
		ID:           t.ID,
		TotalRevenue: t.TotalRevenue,
		TotalProfit:  t.TotalProfit,
		Sales:        ToSaleResponses(rows),
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}
