package sales

import (
	"github.com/pos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Transaction groups the sale rows created by one bulk sell
type Transaction struct {
	shared.BaseEntity
	TotalRevenue decimal.Decimal
	TotalProfit  decimal.Decimal
}

// NewTransaction creates an empty transaction
func NewTransaction() *Transaction {
	return &Transaction{
		BaseEntity:   shared.NewBaseEntity(),
		TotalRevenue: decimal.Zero,
		TotalProfit:  decimal.Zero,
	}
}

// Recalculate replaces the totals with the sum over every constituent row's
// contribution. Totals are always resummed, never patched by deltas.
func (t *Transaction) Recalculate(contributions []Contribution) {
	var sum Contribution
	for _, c := range contributions {
		sum = sum.Add(c)
	}
	t.TotalRevenue = sum.Revenue
	t.TotalProfit = sum.Profit
	t.Touch()
}
