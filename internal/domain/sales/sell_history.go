package sales

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// SaleKind discriminates what a sale row refers to
type SaleKind string

const (
	SaleKindProduct SaleKind = "PRODUCT"
	SaleKindService SaleKind = "SERVICE"
)

// IsValid checks if the kind is known
func (k SaleKind) IsValid() bool {
	switch k {
	case SaleKindProduct, SaleKindService:
		return true
	}
	return false
}

// ItemRef points at the product or the service a sale row sold.
// Exactly one of the two is referenced, selected by Kind.
type ItemRef struct {
	Kind SaleKind
	ID   uuid.UUID
}

// ProductRef references a product
func ProductRef(id uuid.UUID) ItemRef {
	return ItemRef{Kind: SaleKindProduct, ID: id}
}

// ServiceRef references a service
func ServiceRef(id uuid.UUID) ItemRef {
	return ItemRef{Kind: SaleKindService, ID: id}
}

// IsProduct reports whether the ref is a product
func (r ItemRef) IsProduct() bool {
	return r.Kind == SaleKindProduct
}

// String implements fmt.Stringer
func (r ItemRef) String() string {
	return fmt.Sprintf("%s %s", r.Kind, r.ID)
}

// SellHistory is one recorded sale. TotalPrice is stored, not derived on
// read. InitialPrice is the product's unit cost at sale time, nil for
// service sales and for legacy rows recorded before snapshots existed.
type SellHistory struct {
	shared.BaseEntity
	Item          ItemRef
	Amount        int64
	SoldPrice     decimal.Decimal
	TotalPrice    decimal.Decimal
	InitialPrice  *decimal.Decimal
	TransactionID *uuid.UUID
}

// NewProductSale records a product sale with the product's current cost
func NewProductSale(productID uuid.UUID, amount int64, soldPrice, unitCost decimal.Decimal) (*SellHistory, error) {
	if err := validateLine(amount, soldPrice); err != nil {
		return nil, err
	}
	cost := unitCost
	return &SellHistory{
		BaseEntity:   shared.NewBaseEntity(),
		Item:         ProductRef(productID),
		Amount:       amount,
		SoldPrice:    soldPrice,
		TotalPrice:   LineTotal(amount, soldPrice),
		InitialPrice: &cost,
	}, nil
}

// NewServiceSale records a service sale
func NewServiceSale(serviceID uuid.UUID, amount int64, soldPrice decimal.Decimal) (*SellHistory, error) {
	if err := validateLine(amount, soldPrice); err != nil {
		return nil, err
	}
	return &SellHistory{
		BaseEntity: shared.NewBaseEntity(),
		Item:       ServiceRef(serviceID),
		Amount:     amount,
		SoldPrice:  soldPrice,
		TotalPrice: LineTotal(amount, soldPrice),
	}, nil
}

// LineTotal returns amount × unit price
func LineTotal(amount int64, soldPrice decimal.Decimal) decimal.Decimal {
	return soldPrice.Mul(decimal.NewFromInt(amount))
}

// CostBasis returns the unit cost used for profit: the stored snapshot, or
// fallback when the row has none.
func (s *SellHistory) CostBasis(fallback decimal.Decimal) decimal.Decimal {
	if s.InitialPrice != nil {
		return *s.InitialPrice
	}
	return fallback
}

// Contribution returns what this row adds to its item's aggregates
func (s *SellHistory) Contribution(fallbackCost decimal.Decimal) Contribution {
	if !s.Item.IsProduct() {
		return Contribution{Amount: s.Amount, Revenue: s.TotalPrice, Profit: s.TotalPrice}
	}
	cost := s.CostBasis(fallbackCost).Mul(decimal.NewFromInt(s.Amount))
	return Contribution{
		Amount:  s.Amount,
		Revenue: s.TotalPrice,
		Profit:  s.TotalPrice.Sub(cost),
	}
}

// Amendment carries the optional new values of a sale edit
type Amendment struct {
	Amount    *int64
	SoldPrice *decimal.Decimal
	CreatedAt *time.Time
}

// Amend applies the edit and recomputes TotalPrice. A product row without a
// cost snapshot is pinned to fallbackCost so later recomputations agree.
func (s *SellHistory) Amend(a Amendment, fallbackCost decimal.Decimal) error {
	amount := s.Amount
	if a.Amount != nil {
		amount = *a.Amount
	}
	soldPrice := s.SoldPrice
	if a.SoldPrice != nil {
		soldPrice = *a.SoldPrice
	}
	if err := validateLine(amount, soldPrice); err != nil {
		return err
	}
	if a.CreatedAt != nil {
		if a.CreatedAt.IsZero() {
			return shared.NewValidationError("Sale date cannot be empty")
		}
		s.CreatedAt = *a.CreatedAt
	}
	if s.Item.IsProduct() && s.InitialPrice == nil {
		cost := fallbackCost
		s.InitialPrice = &cost
	}

	s.Amount = amount
	s.SoldPrice = soldPrice
	s.TotalPrice = LineTotal(amount, soldPrice)
	s.Touch()
	return nil
}

// AttachTo links the row to a bulk transaction
func (s *SellHistory) AttachTo(transactionID uuid.UUID) {
	id := transactionID
	s.TransactionID = &id
}

func validateLine(amount int64, soldPrice decimal.Decimal) error {
	if amount <= 0 {
		return shared.NewValidationError("Amount must be a positive integer")
	}
	if !soldPrice.IsPositive() {
		return shared.NewValidationError("Sold price must be greater than zero")
	}
	return nil
}
