package catalog

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Product is a stocked item. Quantity is live stock; TotalSold, Revenue and
// Profit are running sums over the product's sell history.
type Product struct {
	shared.BaseEntity
	Name         string
	InitialPrice decimal.Decimal // unit cost
	SellingPrice decimal.Decimal // default unit price
	Quantity     int64
	TotalSold    int64
	Revenue      decimal.Decimal
	Profit       decimal.Decimal
	CategoryID   *uuid.UUID
}

// NewProduct creates a new product with opening stock
func NewProduct(name string, initialPrice, sellingPrice decimal.Decimal, quantity int64) (*Product, error) {
	name = strings.TrimSpace(name)
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if err := validatePrices(initialPrice, sellingPrice); err != nil {
		return nil, err
	}
	if quantity < 0 {
		return nil, shared.NewValidationError("Quantity cannot be negative")
	}

	return &Product{
		BaseEntity:   shared.NewBaseEntity(),
		Name:         name,
		InitialPrice: initialPrice,
		SellingPrice: sellingPrice,
		Quantity:     quantity,
		Revenue:      decimal.Zero,
		Profit:       decimal.Zero,
	}, nil
}

// Update changes the descriptive fields and prices. Changing InitialPrice
// does not touch recorded profit: past sales keep their cost snapshot.
func (p *Product) Update(name string, initialPrice, sellingPrice decimal.Decimal) error {
	name = strings.TrimSpace(name)
	if err := validateProductName(name); err != nil {
		return err
	}
	if err := validatePrices(initialPrice, sellingPrice); err != nil {
		return err
	}
	p.Name = name
	p.InitialPrice = initialPrice
	p.SellingPrice = sellingPrice
	p.Touch()
	return nil
}

// SetCategory sets or clears the product category
func (p *Product) SetCategory(categoryID *uuid.UUID) {
	p.CategoryID = categoryID
	p.Touch()
}

// Restock adds received units to stock
func (p *Product) Restock(quantity int64) error {
	if quantity <= 0 {
		return shared.NewValidationError("Restock quantity must be positive")
	}
	p.Quantity += quantity
	p.Touch()
	return nil
}

// HasStock reports whether amount units can be sold right now
func (p *Product) HasStock(amount int64) bool {
	return amount <= p.Quantity
}

// ApplySale moves the aggregates by one sale delta. A positive amount sells
// units, a negative one returns them. Stock never goes below zero.
func (p *Product) ApplySale(amount int64, revenue, profit decimal.Decimal) error {
	if p.Quantity-amount < 0 {
		return shared.NewInsufficientStockError(fmt.Sprintf(
			"Insufficient stock for product %q: available %d, requested %d", p.Name, p.Quantity, amount))
	}
	p.Quantity -= amount
	p.TotalSold += amount
	p.Revenue = p.Revenue.Add(revenue)
	p.Profit = p.Profit.Add(profit)
	p.Touch()
	return nil
}

// IsLowStock reports whether stock is at or below threshold
func (p *Product) IsLowStock(threshold int64) bool {
	return p.Quantity <= threshold
}

func validateProductName(name string) error {
	if name == "" {
		return shared.NewValidationError("Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewValidationError("Product name cannot exceed 200 characters")
	}
	return nil
}

func validatePrices(initialPrice, sellingPrice decimal.Decimal) error {
	if initialPrice.IsNegative() {
		return shared.NewValidationError("Initial price cannot be negative")
	}
	if sellingPrice.IsNegative() {
		return shared.NewValidationError("Selling price cannot be negative")
	}
	return nil
}
