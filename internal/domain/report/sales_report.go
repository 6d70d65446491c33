package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Period is a half-open time range [From, To)
type Period struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the period
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.From) && t.Before(p.To)
}

// SalesSummary aggregates the sale rows recorded in a period.
// Profit uses each row's cost snapshot.
type SalesSummary struct {
	SaleCount int64
	ItemsSold int64
	Revenue   decimal.Decimal
	Profit    decimal.Decimal
}

// Dashboard is the read model behind the dashboard endpoint
type Dashboard struct {
	Period            Period
	Sales             SalesSummary
	Expenses          decimal.Decimal
	NetProfit         decimal.Decimal
	OutstandingDebit  decimal.Decimal
	LowStockProducts  int64
	LowStockThreshold int64
}

// NewDashboard derives NetProfit from the sales profit and the expenses
func NewDashboard(period Period, sales SalesSummary, expenses, outstanding decimal.Decimal, lowStock, threshold int64) *Dashboard {
	return &Dashboard{
		Period:            period,
		Sales:             sales,
		Expenses:          expenses,
		NetProfit:         sales.Profit.Sub(expenses),
		OutstandingDebit:  outstanding,
		LowStockProducts:  lowStock,
		LowStockThreshold: threshold,
	}
}

// ProductRanking is one line of the top products report.
// Totals come from the product's running aggregates.
type ProductRanking struct {
	Rank      int
	ProductID uuid.UUID
	Name      string
	TotalSold int64
	Revenue   decimal.Decimal
	Profit    decimal.Decimal
	Quantity  int64
}

// DailySales is the sales of one calendar day
type DailySales struct {
	Date      time.Time
	SaleCount int64
	ItemsSold int64
	Revenue   decimal.Decimal
	Profit    decimal.Decimal
}

// SalesReportLine is one sale row flattened for export
type SalesReportLine struct {
	SaleID        uuid.UUID
	SoldAt        time.Time
	Kind          string
	ItemName      string
	Amount        int64
	SoldPrice     decimal.Decimal
	TotalPrice    decimal.Decimal
	Profit        decimal.Decimal
	TransactionID *uuid.UUID
}

// SalesReportRepository defines the read queries behind reports
type SalesReportRepository interface {
	// Summary aggregates the sale rows created inside the period
	Summary(ctx context.Context, period Period) (*SalesSummary, error)

	// DailySales groups the period's sale rows by calendar day, oldest first
	DailySales(ctx context.Context, period Period) ([]DailySales, error)

	// TopProducts ranks products by revenue
	TopProducts(ctx context.Context, limit int) ([]ProductRanking, error)

	// SalesLines returns the period's sale rows with item names, oldest first
	SalesLines(ctx context.Context, period Period) ([]SalesReportLine, error)

	// LowStockCount counts products with quantity at or below threshold
	LowStockCount(ctx context.Context, threshold int64) (int64, error)
}
