package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// SaleOperation labels a change to an already recorded sale
type SaleOperation string

const (
	SaleOperationAmend  SaleOperation = "amend"
	SaleOperationDelete SaleOperation = "delete"
)

// StockMetricsProvider reads stock figures for periodic collection
type StockMetricsProvider interface {
	LowStockCount(ctx context.Context, threshold int64) (int64, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter             metric.Meter
	Logger            *zap.Logger
	StockProvider     StockMetricsProvider
	LowStockThreshold int64
}

// BusinessMetrics records sales activity, debit payments and stock health
type BusinessMetrics struct {
	logger *zap.Logger

	salesTotal       *Counter
	unitsSoldTotal   *Counter
	revenueTotal     *FloatCounter
	saleChangesTotal *Counter
	stockRejections  *Counter
	debitPayments    *Counter
	lowStockProducts *Gauge

	stockProvider     StockMetricsProvider
	lowStockThreshold int64

	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once
}

// NewBusinessMetrics creates the business instruments on the given meter
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		logger:            logger,
		stockProvider:     cfg.StockProvider,
		lowStockThreshold: cfg.LowStockThreshold,
		stopChan:          make(chan struct{}),
	}

	var err error
	if bm.salesTotal, err = NewCounter(cfg.Meter, "pos_sales_total", "Sale rows recorded", "{sales}"); err != nil {
		return nil, err
	}
	if bm.unitsSoldTotal, err = NewCounter(cfg.Meter, "pos_units_sold_total", "Units sold", "{units}"); err != nil {
		return nil, err
	}
	if bm.revenueTotal, err = NewFloatCounter(cfg.Meter, "pos_revenue_total", "Revenue of recorded sales", "{currency}"); err != nil {
		return nil, err
	}
	if bm.saleChangesTotal, err = NewCounter(cfg.Meter, "pos_sale_changes_total", "Sales amended or deleted", "{sales}"); err != nil {
		return nil, err
	}
	if bm.stockRejections, err = NewCounter(cfg.Meter, "pos_stock_rejections_total", "Sales rejected for insufficient stock", "{requests}"); err != nil {
		return nil, err
	}
	if bm.debitPayments, err = NewCounter(cfg.Meter, "pos_debit_payments_total", "Debit payments recorded", "{payments}"); err != nil {
		return nil, err
	}
	if bm.lowStockProducts, err = NewGauge(cfg.Meter, "pos_low_stock_products", "Products at or below the low stock threshold", "{products}"); err != nil {
		return nil, err
	}
	return bm, nil
}

// RecordSale records one new sale row
func (bm *BusinessMetrics) RecordSale(ctx context.Context, kind string, units int64, revenue decimal.Decimal) {
	attrs := AttrSaleKind.String(kind)
	bm.salesTotal.Inc(ctx, attrs)
	bm.unitsSoldTotal.Add(ctx, units, attrs)
	bm.revenueTotal.Add(ctx, revenue.InexactFloat64(), attrs)
}

// RecordSaleChange records an amendment or deletion of a sale
func (bm *BusinessMetrics) RecordSaleChange(ctx context.Context, op SaleOperation, kind string) {
	bm.saleChangesTotal.Inc(ctx, AttrSaleOperation.String(string(op)), AttrSaleKind.String(kind))
}

// RecordStockRejection records a sale refused for lack of stock
func (bm *BusinessMetrics) RecordStockRejection(ctx context.Context) {
	bm.stockRejections.Inc(ctx)
}

// RecordDebitPayment records a payment and the status it left the debit in
func (bm *BusinessMetrics) RecordDebitPayment(ctx context.Context, status string) {
	bm.debitPayments.Inc(ctx, AttrDebitStatus.String(status))
}

// RecordLowStockCount sets the low stock gauge
func (bm *BusinessMetrics) RecordLowStockCount(ctx context.Context, count int64) {
	bm.lowStockProducts.Record(ctx, count)
}

// StartPeriodicCollection refreshes the stock gauge every interval until
// Stop is called or ctx ends. It returns immediately.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		go bm.runPeriodicCollection(ctx, interval)
	})
}

func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	bm.collectStockMetrics(ctx)
	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping business metrics collection")
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			bm.collectStockMetrics(ctx)
		}
	}
}

func (bm *BusinessMetrics) collectStockMetrics(ctx context.Context) {
	if bm.stockProvider == nil {
		return
	}
	count, err := bm.stockProvider.LowStockCount(ctx, bm.lowStockThreshold)
	if err != nil {
		bm.logger.Warn("Failed to collect low stock count", zap.Error(err))
		return
	}
	bm.RecordLowStockCount(ctx, count)
}

// Stop stops periodic collection
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// ErrMeterNil is returned when no meter is given.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics setup error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
