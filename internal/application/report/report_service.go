package report

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/catalog"
	"github.com/pos/backend/internal/domain/finance"
	"github.com/pos/backend/internal/domain/report"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/pos/backend/internal/infrastructure/export"
	"github.com/pos/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Export types
const (
	ExportSalesCSV    = "sales_csv"
	ExportProductsCSV = "products_csv"
	ExportSalesPDF    = "sales_pdf"
)

const (
	maxTopProducts = 100
	maxDailyRange  = 366 * 24 * time.Hour
)

// ExportStorage keeps rendered exports and hands out download links
type ExportStorage interface {
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
}

// Options configures report rendering
type Options struct {
	LowStockThreshold int64
	Locale            string
	Currency          string
	ExportPrefix      string
	DownloadURLExpiry time.Duration
}

// ReportService provides dashboards, rankings and exports
type ReportService struct {
	salesRepo       report.SalesReportRepository
	expenseRepo     finance.ExpenseRepository
	debitRepo       finance.DebitRepository
	productRepo     catalog.ProductRepository
	categoryRepo    catalog.CategoryRepository
	storage         ExportStorage
	formatter       *export.Formatter
	opts            Options
	logger          *zap.Logger
	businessMetrics *telemetry.BusinessMetrics
	now             func() time.Time
}

// NewReportService creates a new ReportService. storage may be nil, in
// which case exports are only returned inline.
func NewReportService(
	salesRepo report.SalesReportRepository,
	expenseRepo finance.ExpenseRepository,
	debitRepo finance.DebitRepository,
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	storage ExportStorage,
	opts Options,
	logger *zap.Logger,
) *ReportService {
	if opts.LowStockThreshold < 0 {
		opts.LowStockThreshold = 0
	}
	if opts.ExportPrefix == "" {
		opts.ExportPrefix = "exports"
	}
	if opts.DownloadURLExpiry <= 0 {
		opts.DownloadURLExpiry = 15 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		salesRepo:    salesRepo,
		expenseRepo:  expenseRepo,
		debitRepo:    debitRepo,
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		storage:      storage,
		formatter:    export.NewFormatter(opts.Locale, opts.Currency),
		opts:         opts,
		logger:       logger,
		now:          time.Now,
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *ReportService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// ===================== Request / Response types =====================

// DateRangeFilter selects whole days; To is inclusive. Missing bounds
// default to the current month.
type DateRangeFilter struct {
	From *time.Time `form:"from" time_format:"2006-01-02"`
	To   *time.Time `form:"to" time_format:"2006-01-02"`
}

// ExportRequest asks for a rendered report
type ExportRequest struct {
	Type string     `json:"type" binding:"required,oneof=sales_csv products_csv sales_pdf"`
	From *time.Time `json:"from"`
	To   *time.Time `json:"to"`
}

// DashboardResponse represents the dashboard figures
type DashboardResponse struct {
	From              time.Time       `json:"from"`
	To                time.Time       `json:"to"`
	SaleCount         int64           `json:"sale_count"`
	ItemsSold         int64           `json:"items_sold"`
	Revenue           decimal.Decimal `json:"revenue"`
	Profit            decimal.Decimal `json:"profit"`
	Expenses          decimal.Decimal `json:"expenses"`
	NetProfit         decimal.Decimal `json:"net_profit"`
	OutstandingDebit  decimal.Decimal `json:"outstanding_debit"`
	LowStockProducts  int64           `json:"low_stock_products"`
	LowStockThreshold int64           `json:"low_stock_threshold"`
}

// ProductRankingResponse represents one line of the top products report
type ProductRankingResponse struct {
	Rank      int             `json:"rank"`
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	TotalSold int64           `json:"total_sold"`
	Revenue   decimal.Decimal `json:"revenue"`
	Profit    decimal.Decimal `json:"profit"`
	Quantity  int64           `json:"quantity"`
}

// DailySalesResponse represents the sales of one day
type DailySalesResponse struct {
	Date      string          `json:"date"`
	SaleCount int64           `json:"sale_count"`
	ItemsSold int64           `json:"items_sold"`
	Revenue   decimal.Decimal `json:"revenue"`
	Profit    decimal.Decimal `json:"profit"`
}

// ExportResult is a rendered export. DownloadURL is set when the file was
// also stored.
type ExportResult struct {
	FileName    string     `json:"file_name"`
	ContentType string     `json:"content_type"`
	Data        []byte     `json:"-"`
	StorageKey  string     `json:"storage_key,omitempty"`
	DownloadURL string     `json:"download_url,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// ===================== Operations =====================

// Dashboard returns revenue, profit, expenses and stock figures for a period
func (s *ReportService) Dashboard(ctx context.Context, filter DateRangeFilter) (*DashboardResponse, error) {
	period, err := s.resolvePeriod(filter.From, filter.To)
	if err != nil {
		return nil, err
	}

	summary, err := s.salesRepo.Summary(ctx, period)
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenseRepo.SumBetween(ctx, period.From, period.To)
	if err != nil {
		return nil, err
	}
	outstanding, err := s.debitRepo.OutstandingTotal(ctx)
	if err != nil {
		return nil, err
	}
	lowStock, err := s.salesRepo.LowStockCount(ctx, s.opts.LowStockThreshold)
	if err != nil {
		return nil, err
	}

	if s.businessMetrics != nil {
		s.businessMetrics.RecordLowStockCount(ctx, lowStock)
	}

	d := report.NewDashboard(period, *summary, expenses, outstanding, lowStock, s.opts.LowStockThreshold)
	return &DashboardResponse{
		From:              d.Period.From,
		To:                d.Period.To,
		SaleCount:         d.Sales.SaleCount,
		ItemsSold:         d.Sales.ItemsSold,
		Revenue:           d.Sales.Revenue,
		Profit:            d.Sales.Profit,
		Expenses:          d.Expenses,
		NetProfit:         d.NetProfit,
		OutstandingDebit:  d.OutstandingDebit,
		LowStockProducts:  d.LowStockProducts,
		LowStockThreshold: d.LowStockThreshold,
	}, nil
}

// TopProducts ranks products by revenue
func (s *ReportService) TopProducts(ctx context.Context, limit int) ([]ProductRankingResponse, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > maxTopProducts {
		limit = maxTopProducts
	}

	rankings, err := s.salesRepo.TopProducts(ctx, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]ProductRankingResponse, len(rankings))
	for i, r := range rankings {
		responses[i] = ProductRankingResponse{
			Rank:      i + 1,
			ProductID: r.ProductID,
			Name:      r.Name,
			TotalSold: r.TotalSold,
			Revenue:   r.Revenue,
			Profit:    r.Profit,
			Quantity:  r.Quantity,
		}
	}
	return responses, nil
}

// DailySales returns per-day sales for a period of at most a year
func (s *ReportService) DailySales(ctx context.Context, filter DateRangeFilter) ([]DailySalesResponse, error) {
	period, err := s.resolvePeriod(filter.From, filter.To)
	if err != nil {
		return nil, err
	}
	if period.To.Sub(period.From) > maxDailyRange {
		return nil, shared.NewValidationError("Date range cannot exceed one year")
	}

	days, err := s.salesRepo.DailySales(ctx, period)
	if err != nil {
		return nil, err
	}

	responses := make([]DailySalesResponse, len(days))
	for i, d := range days {
		responses[i] = DailySalesResponse{
			Date:      d.Date.Format("2006-01-02"),
			SaleCount: d.SaleCount,
			ItemsSold: d.ItemsSold,
			Revenue:   d.Revenue,
			Profit:    d.Profit,
		}
	}
	return responses, nil
}

// Export renders a report. When storage is configured the file is uploaded
// and a presigned download URL is attached; a failed upload still returns
// the rendered file.
func (s *ReportService) Export(ctx context.Context, req ExportRequest) (*ExportResult, error) {
	var (
		result *ExportResult
		err    error
	)
	switch req.Type {
	case ExportSalesCSV:
		result, err = s.exportSalesCSV(ctx, req)
	case ExportProductsCSV:
		result, err = s.exportProductsCSV(ctx)
	case ExportSalesPDF:
		result, err = s.exportSalesPDF(ctx, req)
	default:
		return nil, shared.NewValidationError(fmt.Sprintf("Unknown export type %q", req.Type))
	}
	if err != nil {
		return nil, err
	}

	if s.storage == nil {
		return result, nil
	}

	key := fmt.Sprintf("%s/%s/%s-%s", s.opts.ExportPrefix, s.now().UTC().Format("2006/01/02"), uuid.NewString(), result.FileName)
	if err := s.storage.Upload(ctx, key, result.Data, result.ContentType); err != nil {
		s.logger.Warn("Failed to upload export", zap.String("key", key), zap.Error(err))
		return result, nil
	}
	url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, key, s.opts.DownloadURLExpiry)
	if err != nil {
		s.logger.Warn("Failed to presign export download", zap.String("key", key), zap.Error(err))
		return result, nil
	}

	result.StorageKey = key
	result.DownloadURL = url
	result.ExpiresAt = &expiresAt
	s.logger.Info("Export stored", zap.String("type", req.Type), zap.String("key", key), zap.Int("bytes", len(result.Data)))
	return result, nil
}

func (s *ReportService) exportSalesCSV(ctx context.Context, req ExportRequest) (*ExportResult, error) {
	period, err := s.resolvePeriod(req.From, req.To)
	if err != nil {
		return nil, err
	}
	lines, err := s.salesRepo.SalesLines(ctx, period)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := export.WriteSalesCSV(&buf, lines); err != nil {
		return nil, err
	}
	return &ExportResult{
		FileName:    fmt.Sprintf("sales_%s_%s.csv", period.From.Format("20060102"), lastDay(period).Format("20060102")),
		ContentType: "text/csv",
		Data:        buf.Bytes(),
	}, nil
}

func (s *ReportService) exportProductsCSV(ctx context.Context) (*ExportResult, error) {
	filter := shared.Filter{Page: 1, PageSize: 10000, OrderBy: "name", OrderDir: "asc"}
	products, err := s.productRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	categories, err := s.categoryRepo.FindAll(ctx, shared.Filter{Page: 1, PageSize: 10000, OrderBy: "name", OrderDir: "asc"})
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID.String()] = c.Name
	}

	var buf bytes.Buffer
	if err := export.WriteProductsCSV(&buf, products, names); err != nil {
		return nil, err
	}
	return &ExportResult{
		FileName:    fmt.Sprintf("products_%s.csv", s.now().Format("20060102")),
		ContentType: "text/csv",
		Data:        buf.Bytes(),
	}, nil
}

func (s *ReportService) exportSalesPDF(ctx context.Context, req ExportRequest) (*ExportResult, error) {
	period, err := s.resolvePeriod(req.From, req.To)
	if err != nil {
		return nil, err
	}
	summary, err := s.salesRepo.Summary(ctx, period)
	if err != nil {
		return nil, err
	}
	lines, err := s.salesRepo.SalesLines(ctx, period)
	if err != nil {
		return nil, err
	}

	data, err := export.RenderSalesPDF(export.SalesReport{
		Title:       "Sales Report",
		Period:      period,
		Summary:     *summary,
		Lines:       lines,
		GeneratedAt: s.now(),
	}, s.formatter)
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		FileName:    fmt.Sprintf("sales_report_%s_%s.pdf", period.From.Format("20060102"), lastDay(period).Format("20060102")),
		ContentType: "application/pdf",
		Data:        data,
	}, nil
}

// resolvePeriod turns inclusive calendar days into a half-open period
func (s *ReportService) resolvePeriod(from, to *time.Time) (report.Period, error) {
	now := s.now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	if from != nil {
		start = truncateDay(*from)
	}
	end := start.AddDate(0, 1, 0)
	if to != nil {
		end = truncateDay(*to).AddDate(0, 0, 1)
	}
	if !start.Before(end) {
		return report.Period{}, shared.NewValidationError("'from' must not be after 'to'")
	}
	return report.Period{From: start, To: end}, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func lastDay(p report.Period) time.Time {
	return p.To.AddDate(0, 0, -1)
}
