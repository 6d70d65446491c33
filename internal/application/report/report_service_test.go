package report

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/catalog"
	"github.com/pos/backend/internal/domain/finance"
	"github.com/pos/backend/internal/domain/report"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSalesReportRepository struct {
	mock.Mock
}

func (m *MockSalesReportRepository) Summary(ctx context.Context, period report.Period) (*report.SalesSummary, error) {
	args := m.Called(ctx, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.SalesSummary), args.Error(1)
}

func (m *MockSalesReportRepository) DailySales(ctx context.Context, period report.Period) ([]report.DailySales, error) {
	args := m.Called(ctx, period)
	return args.Get(0).([]report.DailySales), args.Error(1)
}

func (m *MockSalesReportRepository) TopProducts(ctx context.Context, limit int) ([]report.ProductRanking, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]report.ProductRanking), args.Error(1)
}

func (m *MockSalesReportRepository) SalesLines(ctx context.Context, period report.Period) ([]report.SalesReportLine, error) {
	args := m.Called(ctx, period)
	return args.Get(0).([]report.SalesReportLine), args.Error(1)
}

func (m *MockSalesReportRepository) LowStockCount(ctx context.Context, threshold int64) (int64, error) {
	args := m.Called(ctx, threshold)
	return args.Get(0).(int64), args.Error(1)
}

// The repositories below embed their interface and implement only what reports read

type MockExpenseRepository struct {
	finance.ExpenseRepository
	mock.Mock
}

func (m *MockExpenseRepository) SumBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type MockDebitRepository struct {
	finance.DebitRepository
	mock.Mock
}

func (m *MockDebitRepository) OutstandingTotal(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type MockProductRepository struct {
	catalog.ProductRepository
	mock.Mock
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

type MockCategoryRepository struct {
	catalog.CategoryRepository
	mock.Mock
}

func (m *MockCategoryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Category, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Category), args.Error(1)
}

type MockExportStorage struct {
	mock.Mock
}

func (m *MockExportStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	args := m.Called(ctx, key, data, contentType)
	return args.Error(0)
}

func (m *MockExportStorage) GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, key, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

type reportMocks struct {
	sales      *MockSalesReportRepository
	expenses   *MockExpenseRepository
	debits     *MockDebitRepository
	products   *MockProductRepository
	categories *MockCategoryRepository
}

var fixedNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func newTestReportService(storage ExportStorage) (*ReportService, *reportMocks) {
	m := &reportMocks{
		sales:      new(MockSalesReportRepository),
		expenses:   new(MockExpenseRepository),
		debits:     new(MockDebitRepository),
		products:   new(MockProductRepository),
		categories: new(MockCategoryRepository),
	}
	svc := NewReportService(m.sales, m.expenses, m.debits, m.products, m.categories, storage,
		Options{LowStockThreshold: 5, Locale: "en", Currency: "ksh"}, nil)
	svc.now = func() time.Time { return fixedNow }
	return svc, m
}

func march() report.Period {
	return report.Period{
		From: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestReportService_Dashboard(t *testing.T) {
	ctx := context.Background()
	svc, m := newTestReportService(nil)
	period := march()

	m.sales.On("Summary", ctx, period).Return(&report.SalesSummary{
		SaleCount: 3, ItemsSold: 9, Revenue: decimal.NewFromInt(135), Profit: decimal.NewFromInt(45),
	}, nil)
	m.expenses.On("SumBetween", ctx, period.From, period.To).Return(decimal.NewFromInt(20), nil)
	m.debits.On("OutstandingTotal", ctx).Return(decimal.NewFromInt(60), nil)
	m.sales.On("LowStockCount", ctx, int64(5)).Return(int64(2), nil)

	resp, err := svc.Dashboard(ctx, DateRangeFilter{})

	require.NoError(t, err)
	assert.Equal(t, period.From, resp.From)
	assert.Equal(t, int64(3), resp.SaleCount)
	assert.True(t, resp.NetProfit.Equal(decimal.NewFromInt(25)))
	assert.True(t, resp.OutstandingDebit.Equal(decimal.NewFromInt(60)))
	assert.Equal(t, int64(2), resp.LowStockProducts)
	assert.Equal(t, int64(5), resp.LowStockThreshold)
}

func TestReportService_resolvePeriod(t *testing.T) {
	svc, _ := newTestReportService(nil)

	t.Run("inclusive to", func(t *testing.T) {
		from := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
		to := time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC)
		p, err := svc.resolvePeriod(&from, &to)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), p.From)
		assert.Equal(t, time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC), p.To)
	})

	t.Run("single day", func(t *testing.T) {
		day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
		p, err := svc.resolvePeriod(&day, &day)
		require.NoError(t, err)
		assert.Equal(t, 24*time.Hour, p.To.Sub(p.From))
	})

	t.Run("reversed range", func(t *testing.T) {
		from := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
		to := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
		_, err := svc.resolvePeriod(&from, &to)
		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}

func TestReportService_TopProducts(t *testing.T) {
	ctx := context.Background()
	svc, m := newTestReportService(nil)
	id := uuid.New()
	m.sales.On("TopProducts", ctx, 100).Return([]report.ProductRanking{
		{ProductID: id, Name: "Widget", TotalSold: 5, Revenue: decimal.NewFromInt(75)},
	}, nil)

	resp, err := svc.TopProducts(ctx, 500)

	require.NoError(t, err)
	require.Len(t, resp, 1)
	assert.Equal(t, 1, resp[0].Rank)
	assert.Equal(t, id, resp[0].ProductID)
}

func TestReportService_DailySales(t *testing.T) {
	ctx := context.Background()

	t.Run("formats dates", func(t *testing.T) {
		svc, m := newTestReportService(nil)
		m.sales.On("DailySales", ctx, march()).Return([]report.DailySales{
			{Date: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), SaleCount: 1, Revenue: decimal.NewFromInt(10)},
		}, nil)

		resp, err := svc.DailySales(ctx, DateRangeFilter{})

		require.NoError(t, err)
		require.Len(t, resp, 1)
		assert.Equal(t, "2024-03-02", resp[0].Date)
	})

	t.Run("range over a year", func(t *testing.T) {
		svc, _ := newTestReportService(nil)
		from := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		_, err := svc.DailySales(ctx, DateRangeFilter{From: &from, To: &to})
		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}

func TestReportService_Export(t *testing.T) {
	ctx := context.Background()
	lines := []report.SalesReportLine{{
		SaleID: uuid.New(), SoldAt: fixedNow, Kind: "PRODUCT", ItemName: "Widget",
		Amount: 5, SoldPrice: decimal.NewFromInt(15), TotalPrice: decimal.NewFromInt(75), Profit: decimal.NewFromInt(25),
	}}

	t.Run("sales csv inline without storage", func(t *testing.T) {
		svc, m := newTestReportService(nil)
		m.sales.On("SalesLines", ctx, march()).Return(lines, nil)

		result, err := svc.Export(ctx, ExportRequest{Type: ExportSalesCSV})

		require.NoError(t, err)
		assert.Equal(t, "sales_20240301_20240331.csv", result.FileName)
		assert.Equal(t, "text/csv", result.ContentType)
		assert.Contains(t, string(result.Data), "Widget")
		assert.Empty(t, result.DownloadURL)
	})

	t.Run("sales pdf uploaded and presigned", func(t *testing.T) {
		storage := new(MockExportStorage)
		svc, m := newTestReportService(storage)
		m.sales.On("Summary", ctx, march()).Return(&report.SalesSummary{SaleCount: 1, ItemsSold: 5, Revenue: decimal.NewFromInt(75), Profit: decimal.NewFromInt(25)}, nil)
		m.sales.On("SalesLines", ctx, march()).Return(lines, nil)
		expires := fixedNow.Add(15 * time.Minute)
		storage.On("Upload", ctx, mock.MatchedBy(func(key string) bool {
			return bytes.HasPrefix([]byte(key), []byte("exports/2024/03/15/"))
		}), mock.Anything, "application/pdf").Return(nil)
		storage.On("GenerateDownloadURL", ctx, mock.Anything, 15*time.Minute).Return("https://s3.local/x.pdf", expires, nil)

		result, err := svc.Export(ctx, ExportRequest{Type: ExportSalesPDF})

		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(result.Data, []byte("%PDF-")))
		assert.Equal(t, "https://s3.local/x.pdf", result.DownloadURL)
		require.NotNil(t, result.ExpiresAt)
		assert.Equal(t, expires, *result.ExpiresAt)
		storage.AssertExpectations(t)
	})

	t.Run("failed upload still returns the file", func(t *testing.T) {
		storage := new(MockExportStorage)
		svc, m := newTestReportService(storage)
		product, _ := catalog.NewProduct("Widget", decimal.NewFromInt(10), decimal.NewFromInt(15), 3)
		m.products.On("FindAll", ctx, mock.Anything).Return([]catalog.Product{*product}, nil)
		m.categories.On("FindAll", ctx, mock.Anything).Return([]catalog.Category{}, nil)
		storage.On("Upload", ctx, mock.Anything, mock.Anything, "text/csv").Return(errors.New("bucket unavailable"))

		result, err := svc.Export(ctx, ExportRequest{Type: ExportProductsCSV})

		require.NoError(t, err)
		assert.Equal(t, "products_20240315.csv", result.FileName)
		assert.Empty(t, result.DownloadURL)
		storage.AssertNotCalled(t, "GenerateDownloadURL", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown type", func(t *testing.T) {
		svc, _ := newTestReportService(nil)
		_, err := svc.Export(ctx, ExportRequest{Type: "xlsx"})
		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}
