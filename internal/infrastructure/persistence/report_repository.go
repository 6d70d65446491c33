package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/report"
	"github.com/pos/backend/internal/domain/sales"
	"github.com/pos/backend/internal/infrastructure/persistence/models"
	"github.com/pos/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// saleProfitExpr is the profit of one sell_histories row: the cost snapshot
// when present, the product's current cost otherwise. Services carry no cost.
var saleProfitExpr = fmt.Sprintf(
	"CASE WHEN sh.kind = '%s' THEN sh.total_price - sh.amount * COALESCE(sh.initial_price, p.initial_price, 0) ELSE sh.total_price END",
	sales.SaleKindProduct,
)

// GormSalesReportRepository implements report.SalesReportRepository with
// aggregate queries over sell_histories and products.
type GormSalesReportRepository struct {
	db *gorm.DB
}

// NewGormSalesReportRepository creates a new GormSalesReportRepository
func NewGormSalesReportRepository(db *gorm.DB) *GormSalesReportRepository {
	return &GormSalesReportRepository{db: db}
}

func (r *GormSalesReportRepository) salesIn(ctx context.Context, period report.Period) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("sell_histories sh").
		Joins("LEFT JOIN products p ON p.id = sh.product_id").
		Where("sh.created_at >= ? AND sh.created_at < ?", period.From, period.To)
}

// Summary returns sale count, items sold, revenue and profit for the period
func (r *GormSalesReportRepository) Summary(ctx context.Context, period report.Period) (*report.SalesSummary, error) {
	var result struct {
		SaleCount int64
		ItemsSold int64
		Revenue   decimal.Decimal
		Profit    decimal.Decimal
	}
	err := r.salesIn(ctx, period).
		Select(`
			COUNT(sh.id) AS sale_count,
			COALESCE(SUM(sh.amount), 0) AS items_sold,
			COALESCE(SUM(sh.total_price), 0) AS revenue,
			COALESCE(SUM(` + saleProfitExpr + `), 0) AS profit
		`).
		Scan(&result).Error
	if err != nil {
		return nil, err
	}
	return &report.SalesSummary{
		SaleCount: result.SaleCount,
		ItemsSold: result.ItemsSold,
		Revenue:   result.Revenue,
		Profit:    result.Profit,
	}, nil
}

// DailySales groups the period's sales by calendar day (database time zone)
func (r *GormSalesReportRepository) DailySales(ctx context.Context, period report.Period) ([]report.DailySales, error) {
	day := r.dayExpr("sh.created_at")
	var rows []struct {
		Day       string
		SaleCount int64
		ItemsSold int64
		Revenue   decimal.Decimal
		Profit    decimal.Decimal
	}
	err := r.salesIn(ctx, period).
		Select(day + ` AS day,
			COUNT(sh.id) AS sale_count,
			COALESCE(SUM(sh.amount), 0) AS items_sold,
			COALESCE(SUM(sh.total_price), 0) AS revenue,
			COALESCE(SUM(` + saleProfitExpr + `), 0) AS profit`).
		Group(day).
		Order(day + " ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]report.DailySales, 0, len(rows))
	for _, row := range rows {
		date, err := time.Parse(time.DateOnly, row.Day)
		if err != nil {
			return nil, fmt.Errorf("unexpected day value %q: %w", row.Day, err)
		}
		out = append(out, report.DailySales{
			Date:      date,
			SaleCount: row.SaleCount,
			ItemsSold: row.ItemsSold,
			Revenue:   row.Revenue,
			Profit:    row.Profit,
		})
	}
	return out, nil
}

// TopProducts ranks products by lifetime revenue
func (r *GormSalesReportRepository) TopProducts(ctx context.Context, limit int) ([]report.ProductRanking, error) {
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("total_sold > 0").
		Order("revenue DESC, total_sold DESC, name ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	rankings := make([]report.ProductRanking, len(rows))
	for i, p := range rows {
		rankings[i] = report.ProductRanking{
			Rank:      i + 1,
			ProductID: p.ID,
			Name:      p.Name,
			TotalSold: p.TotalSold,
			Revenue:   p.Revenue,
			Profit:    p.Profit,
			Quantity:  p.Quantity,
		}
	}
	return rankings, nil
}

// SalesLines lists every sale in the period with its item name and profit
func (r *GormSalesReportRepository) SalesLines(ctx context.Context, period report.Period) ([]report.SalesReportLine, error) {
	var rows []struct {
		ID            uuid.UUID
		CreatedAt     time.Time
		Kind          string
		ItemName      string
		Amount        int64
		SoldPrice     decimal.Decimal
		TotalPrice    decimal.Decimal
		Profit        decimal.Decimal
		TransactionID *uuid.UUID
	}
	err := r.salesIn(ctx, period).
		Joins("LEFT JOIN services s ON s.id = sh.service_id").
		Select(`sh.id, sh.created_at, sh.kind,
			COALESCE(p.name, s.name, '') AS item_name,
			sh.amount, sh.sold_price, sh.total_price,
			` + saleProfitExpr + ` AS profit,
			sh.transaction_id`).
		Order("sh.created_at ASC, sh.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	lines := make([]report.SalesReportLine, len(rows))
	for i, row := range rows {
		lines[i] = report.SalesReportLine{
			SaleID:        row.ID,
			SoldAt:        row.CreatedAt,
			Kind:          row.Kind,
			ItemName:      row.ItemName,
			Amount:        row.Amount,
			SoldPrice:     row.SoldPrice,
			TotalPrice:    row.TotalPrice,
			Profit:        row.Profit,
			TransactionID: row.TransactionID,
		}
	}
	return lines, nil
}

// LowStockCount counts products whose quantity is at or below threshold.
// It also feeds the stock gauge of the business metrics.
func (r *GormSalesReportRepository) LowStockCount(ctx context.Context, threshold int64) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("quantity <= ?", threshold).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormSalesReportRepository) dayExpr(column string) string {
	if r.db.Dialector.Name() == "sqlite" {
		return "strftime('%Y-%m-%d', " + column + ")"
	}
	return "TO_CHAR(" + column + ", 'YYYY-MM-DD')"
}

var (
	_ report.SalesReportRepository   = (*GormSalesReportRepository)(nil)
	_ telemetry.StockMetricsProvider = (*GormSalesReportRepository)(nil)
)
