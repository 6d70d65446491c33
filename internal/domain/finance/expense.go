package finance

import (
	"strings"
	"time"

	"github.com/pos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Expense is money spent running the business (rent, supplies, wages)
type Expense struct {
	shared.BaseEntity
	Title    string
	Amount   decimal.Decimal
	Category string
	Notes    string
	SpentAt  time.Time
}

// NewExpense creates a new expense
func NewExpense(title string, amount decimal.Decimal, category, notes string, spentAt time.Time) (*Expense, error) {
	e := &Expense{BaseEntity: shared.NewBaseEntity()}
	if err := e.Update(title, amount, category, notes, spentAt); err != nil {
		return nil, err
	}
	return e, nil
}

// Update replaces the expense's fields
func (e *Expense) Update(title string, amount decimal.Decimal, category, notes string, spentAt time.Time) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return shared.NewValidationError("Expense title cannot be empty")
	}
	if len(title) > 200 {
		return shared.NewValidationError("Expense title cannot exceed 200 characters")
	}
	if !amount.IsPositive() {
		return shared.NewValidationError("Expense amount must be greater than zero")
	}
	if spentAt.IsZero() {
		spentAt = time.Now()
	}

	e.Title = title
	e.Amount = amount
	e.Category = strings.TrimSpace(category)
	e.Notes = notes
	e.SpentAt = spentAt
	e.Touch()
	return nil
}
