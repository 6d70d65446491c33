package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	financeapp "github.com/pos/backend/internal/application/finance"
	salesapp "github.com/pos/backend/internal/application/sales"
	"github.com/pos/backend/internal/domain/catalog"
	"github.com/pos/backend/internal/domain/finance"
	"github.com/pos/backend/internal/domain/report"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ledgerFixture wires the sale and debit services to a sqlite database
// through the real GORM unit of work.
type ledgerFixture struct {
	db       *Database
	products *GormProductRepository
	services *GormServiceRepository
	sales    *salesapp.SaleService
	debits   *financeapp.DebitService
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	return newLedgerFixtureOn(newSQLiteDatabase(t))
}

func newLedgerFixtureOn(db *Database) *ledgerFixture {
	scope := NewGormTransactionScope(db.DB)
	return &ledgerFixture{
		db:       db,
		products: NewGormProductRepository(db.DB),
		services: NewGormServiceRepository(db.DB),
		sales:    salesapp.NewSaleService(NewGormSellHistoryRepository(db.DB), NewGormTransactionRepository(db.DB), scope.SalesScope()),
		debits:   financeapp.NewDebitService(NewGormDebitRepository(db.DB), scope.FinanceScope()),
	}
}

func (f *ledgerFixture) product(t *testing.T, name string, cost, price, qty int64) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(name, decimal.NewFromInt(cost), decimal.NewFromInt(price), qty)
	require.NoError(t, err)
	require.NoError(t, f.products.Save(context.Background(), p))
	return p
}

func (f *ledgerFixture) service(t *testing.T, name string, price int64) *catalog.Service {
	t.Helper()
	s, err := catalog.NewService(name, "", decimal.NewFromInt(price))
	require.NoError(t, err)
	require.NoError(t, f.services.Save(context.Background(), s))
	return s
}

func (f *ledgerFixture) reload(t *testing.T, id uuid.UUID) *catalog.Product {
	t.Helper()
	p, err := f.products.FindByID(context.Background(), id)
	require.NoError(t, err)
	return p
}

func assertProductTotals(t *testing.T, p *catalog.Product, quantity, totalSold, revenue, profit int64) {
	t.Helper()
	assert.Equal(t, quantity, p.Quantity, "quantity")
	assert.Equal(t, totalSold, p.TotalSold, "total sold")
	assert.True(t, p.Revenue.Equal(decimal.NewFromInt(revenue)), "revenue: got %s want %d", p.Revenue, revenue)
	assert.True(t, p.Profit.Equal(decimal.NewFromInt(profit)), "profit: got %s want %d", p.Profit, profit)
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestLedger_SellAmendDelete(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	sugar := f.product(t, "Sugar", 10, 15, 100)

	sale, err := f.sales.Sell(ctx, salesapp.SellRequest{ProductID: &sugar.ID, Amount: 5, SoldPrice: dec(15)})
	require.NoError(t, err)
	assertProductTotals(t, f.reload(t, sugar.ID), 95, 5, 75, 25)

	three := int64(3)
	_, err = f.sales.Amend(ctx, sale.ID, salesapp.AmendSaleRequest{Amount: &three})
	require.NoError(t, err)
	assertProductTotals(t, f.reload(t, sugar.ID), 97, 3, 45, 15)

	// amending to the same values changes nothing
	_, err = f.sales.Amend(ctx, sale.ID, salesapp.AmendSaleRequest{Amount: &three})
	require.NoError(t, err)
	assertProductTotals(t, f.reload(t, sugar.ID), 97, 3, 45, 15)

	require.NoError(t, f.sales.Delete(ctx, sale.ID))
	assertProductTotals(t, f.reload(t, sugar.ID), 100, 0, 0, 0)
}

func TestLedger_CostSnapshotSurvivesPriceChange(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	sugar := f.product(t, "Sugar", 10, 15, 100)

	sale, err := f.sales.Sell(ctx, salesapp.SellRequest{ProductID: &sugar.ID, Amount: 4, SoldPrice: dec(15)})
	require.NoError(t, err)

	current := f.reload(t, sugar.ID)
	require.NoError(t, current.Update("Sugar", dec(12), dec(18)))
	require.NoError(t, f.products.Save(ctx, current))

	two := int64(2)
	_, err = f.sales.Amend(ctx, sale.ID, salesapp.AmendSaleRequest{Amount: &two})
	require.NoError(t, err)
	// profit keeps the cost of 10 recorded at sale time: 2*15 - 2*10
	assertProductTotals(t, f.reload(t, sugar.ID), 98, 2, 30, 10)
}

func TestLedger_DeleteRequiresDebitRemoval(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	sugar := f.product(t, "Sugar", 10, 15, 100)

	sale, err := f.sales.Sell(ctx, salesapp.SellRequest{ProductID: &sugar.ID, Amount: 5, SoldPrice: dec(15)})
	require.NoError(t, err)

	_, err = f.debits.Create(ctx, financeapp.CreateDebitRequest{
		Items: []financeapp.DebitItemRequest{{SellHistoryID: sale.ID, Amount: dec(75)}},
	})
	require.NoError(t, err)

	err = f.sales.Delete(ctx, sale.ID)
	assert.ErrorIs(t, err, shared.ErrConflict)
	assertProductTotals(t, f.reload(t, sugar.ID), 95, 5, 75, 25)

	removed, err := f.debits.RemoveItem(ctx, sale.ID)
	require.NoError(t, err)
	assert.True(t, removed.DebitDeleted)

	require.NoError(t, f.sales.Delete(ctx, sale.ID))
	assertProductTotals(t, f.reload(t, sugar.ID), 100, 0, 0, 0)
}

func TestLedger_DebitPaymentAndItemRemoval(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	sugar := f.product(t, "Sugar", 10, 15, 100)
	repair := f.service(t, "Repair", 20)

	first, err := f.sales.Sell(ctx, salesapp.SellRequest{ProductID: &sugar.ID, Amount: 4, SoldPrice: dec(15)})
	require.NoError(t, err)
	second, err := f.sales.Sell(ctx, salesapp.SellRequest{ServiceID: &repair.ID, Amount: 2, SoldPrice: dec(20)})
	require.NoError(t, err)

	debit, err := f.debits.Create(ctx, financeapp.CreateDebitRequest{
		Items: []financeapp.DebitItemRequest{
			{SellHistoryID: first.ID, Amount: dec(60)},
			{SellHistoryID: second.ID, Amount: dec(40)},
		},
	})
	require.NoError(t, err)
	assert.True(t, debit.TotalAmount.Equal(dec(100)))
	assert.Equal(t, string(finance.DebitStatusPending), debit.Status)

	paid := dec(40)
	debit, err = f.debits.Update(ctx, debit.ID, financeapp.UpdateDebitRequest{PaidAmount: &paid})
	require.NoError(t, err)
	assert.Equal(t, string(finance.DebitStatusPartial), debit.Status)

	paid = dec(100)
	debit, err = f.debits.Update(ctx, debit.ID, financeapp.UpdateDebitRequest{PaidAmount: &paid})
	require.NoError(t, err)
	assert.Equal(t, string(finance.DebitStatusPaid), debit.Status)
	require.NotNil(t, debit.PaidAt)

	over := dec(101)
	_, err = f.debits.Update(ctx, debit.ID, financeapp.UpdateDebitRequest{PaidAmount: &over})
	assert.ErrorIs(t, err, shared.ErrValidation)

	removed, err := f.debits.RemoveItem(ctx, first.ID)
	require.NoError(t, err)
	require.False(t, removed.DebitDeleted)
	assert.True(t, removed.Debit.TotalAmount.Equal(dec(40)))
	assert.True(t, removed.Debit.PaidAmount.Equal(dec(40)))
	assert.Equal(t, string(finance.DebitStatusPaid), removed.Debit.Status)
	assert.NotNil(t, removed.Debit.PaidAt)

	stored, err := f.debits.GetByID(ctx, debit.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, second.ID, stored.Items[0].SellHistoryID)
}

func TestLedger_DebitRejectsSaleAlreadyOnDebit(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	sugar := f.product(t, "Sugar", 10, 15, 100)

	sale, err := f.sales.Sell(ctx, salesapp.SellRequest{ProductID: &sugar.ID, Amount: 1, SoldPrice: dec(15)})
	require.NoError(t, err)

	req := financeapp.CreateDebitRequest{Items: []financeapp.DebitItemRequest{{SellHistoryID: sale.ID, Amount: dec(15)}}}
	_, err = f.debits.Create(ctx, req)
	require.NoError(t, err)

	_, err = f.debits.Create(ctx, req)
	assert.ErrorIs(t, err, shared.ErrConflict)
}

func TestLedger_BulkSellRejectsWholeBatch(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	sugar := f.product(t, "Sugar", 10, 15, 100)
	salt := f.product(t, "Salt", 2, 3, 1)

	_, err := f.sales.BulkSell(ctx, salesapp.BulkSellRequest{Items: []salesapp.SellRequest{
		{ProductID: &sugar.ID, Amount: 2, SoldPrice: dec(15)},
		{ProductID: &salt.ID, Amount: 5, SoldPrice: dec(3)},
	}})
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)

	assertProductTotals(t, f.reload(t, sugar.ID), 100, 0, 0, 0)
	assertProductTotals(t, f.reload(t, salt.ID), 1, 0, 0, 0)

	_, total, err := f.sales.List(ctx, salesapp.SaleListFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestLedger_BulkTransactionResum(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	sugar := f.product(t, "Sugar", 10, 15, 100)
	repair := f.service(t, "Repair", 20)

	tx, err := f.sales.BulkSell(ctx, salesapp.BulkSellRequest{Items: []salesapp.SellRequest{
		{ProductID: &sugar.ID, Amount: 2, SoldPrice: dec(15)},
		{ServiceID: &repair.ID, Amount: 1, SoldPrice: dec(20)},
	}})
	require.NoError(t, err)
	assert.True(t, tx.TotalRevenue.Equal(dec(50)))
	assert.True(t, tx.TotalProfit.Equal(dec(30)))
	require.Len(t, tx.Sales, 2)

	var serviceSale uuid.UUID
	for _, s := range tx.Sales {
		if s.ServiceID != nil {
			serviceSale = s.ID
		}
	}
	require.NoError(t, f.sales.Delete(ctx, serviceSale))

	got, err := f.sales.GetTransaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.True(t, got.TotalRevenue.Equal(dec(30)))
	assert.True(t, got.TotalProfit.Equal(dec(10)))

	for _, s := range got.Sales {
		require.NoError(t, f.sales.Delete(ctx, s.ID))
	}
	_, err = f.sales.GetTransaction(ctx, tx.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestSalesReportRepository_OnSQLite(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	sugar := f.product(t, "Sugar", 10, 15, 100)
	salt := f.product(t, "Salt", 2, 3, 4)
	repair := f.service(t, "Repair", 20)

	_, err := f.sales.Sell(ctx, salesapp.SellRequest{ProductID: &sugar.ID, Amount: 5, SoldPrice: dec(15)})
	require.NoError(t, err)
	_, err = f.sales.Sell(ctx, salesapp.SellRequest{ProductID: &salt.ID, Amount: 1, SoldPrice: dec(3)})
	require.NoError(t, err)
	_, err = f.sales.Sell(ctx, salesapp.SellRequest{ServiceID: &repair.ID, Amount: 1, SoldPrice: dec(20)})
	require.NoError(t, err)

	repo := NewGormSalesReportRepository(f.db.DB)
	now := time.Now()
	period := report.Period{From: now.Add(-time.Hour), To: now.Add(time.Hour)}

	summary, err := repo.Summary(ctx, period)
	require.NoError(t, err)
	assert.Equal(t, int64(3), summary.SaleCount)
	assert.Equal(t, int64(7), summary.ItemsSold)
	assert.True(t, summary.Revenue.Equal(dec(98)), summary.Revenue.String())
	assert.True(t, summary.Profit.Equal(dec(46)), summary.Profit.String())

	empty, err := repo.Summary(ctx, report.Period{From: now.Add(time.Hour), To: now.Add(2 * time.Hour)})
	require.NoError(t, err)
	assert.Zero(t, empty.SaleCount)
	assert.True(t, empty.Revenue.IsZero())

	days, err := repo.DailySales(ctx, period)
	require.NoError(t, err)
	require.NotEmpty(t, days)
	var daily int64
	for _, d := range days {
		daily += d.SaleCount
	}
	assert.Equal(t, int64(3), daily)

	top, err := repo.TopProducts(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "Sugar", top[0].Name)
	assert.Equal(t, 1, top[0].Rank)
	assert.Equal(t, 2, top[1].Rank)

	lines, err := repo.SalesLines(ctx, period)
	require.NoError(t, err)
	require.Len(t, lines, 3)
	names := map[string]string{}
	for _, l := range lines {
		names[l.ItemName] = l.Profit.String()
	}
	assert.Equal(t, "25", names["Sugar"])
	assert.Equal(t, "20", names["Repair"])

	low, err := repo.LowStockCount(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(1), low)
}
