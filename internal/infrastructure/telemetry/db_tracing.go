package telemetry

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBInstrumentationConfig controls query tracing and metrics.
type DBInstrumentationConfig struct {
	Tracing bool
	// LogFullSQL keeps bind variables in span statements. Development only.
	LogFullSQL         bool
	SlowQueryThreshold time.Duration
	PoolStatsInterval  time.Duration
}

// DBInstrumentation registers otelgorm spans plus query duration and pool
// metrics on a gorm DB.
type DBInstrumentation struct {
	cfg    DBInstrumentationConfig
	logger *zap.Logger

	queryDuration *Histogram
	queryErrors   *Counter
	poolConns     *Gauge

	sqlDB    *sql.DB
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

type dbStartKey struct{}

// NewDBInstrumentation creates the instruments on meter
func NewDBInstrumentation(meter metric.Meter, cfg DBInstrumentationConfig, logger *zap.Logger) (*DBInstrumentation, error) {
	if meter == nil {
		return nil, &MetricsError{Op: "NewDBInstrumentation", Err: "meter cannot be nil"}
	}
	if cfg.SlowQueryThreshold <= 0 {
		cfg.SlowQueryThreshold = 200 * time.Millisecond
	}
	if cfg.PoolStatsInterval <= 0 {
		cfg.PoolStatsInterval = 15 * time.Second
	}
	d := &DBInstrumentation{cfg: cfg, logger: logger, stopCh: make(chan struct{})}

	var err error
	if d.queryDuration, err = NewHistogram(meter, "db_query_duration_seconds", "Database query duration", "s", DBDurationBuckets...); err != nil {
		return nil, err
	}
	if d.queryErrors, err = NewCounter(meter, "db_query_errors_total", "Failed database queries", "{queries}"); err != nil {
		return nil, err
	}
	if d.poolConns, err = NewGauge(meter, "db_pool_connections", "Database pool connections by state", "{connections}"); err != nil {
		return nil, err
	}
	return d, nil
}

// Register installs the callbacks on db and starts pool stats collection
func (d *DBInstrumentation) Register(ctx context.Context, db *gorm.DB) error {
	if d.cfg.Tracing {
		var opts []otelgorm.Option
		if !d.cfg.LogFullSQL {
			opts = append(opts, otelgorm.WithoutQueryVariables())
		}
		if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
			return err
		}
	}

	cb := db.Callback()
	type pair struct {
		before func(name string, fn func(*gorm.DB)) error
		after  func(name string, fn func(*gorm.DB)) error
		op     string
	}
	pairs := []pair{
		{cb.Create().Before("gorm:create").Register, cb.Create().After("gorm:create").Register, "INSERT"},
		{cb.Query().Before("gorm:query").Register, cb.Query().After("gorm:query").Register, "SELECT"},
		{cb.Update().Before("gorm:update").Register, cb.Update().After("gorm:update").Register, "UPDATE"},
		{cb.Delete().Before("gorm:delete").Register, cb.Delete().After("gorm:delete").Register, "DELETE"},
		{cb.Raw().Before("gorm:raw").Register, cb.Raw().After("gorm:raw").Register, ""},
		{cb.Row().Before("gorm:row").Register, cb.Row().After("gorm:row").Register, ""},
	}
	for _, p := range pairs {
		op := p.op
		name := strings.ToLower(op)
		if name == "" {
			name = "raw"
		}
		if err := p.before("pos_db:before_"+name, d.before); err != nil {
			return err
		}
		if err := p.after("pos_db:after_"+name, func(tx *gorm.DB) { d.after(tx, op) }); err != nil {
			return err
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	d.sqlDB = sqlDB
	d.recordPoolStats(ctx)
	d.wg.Add(1)
	go d.collectPoolStats(ctx)
	return nil
}

func (d *DBInstrumentation) before(tx *gorm.DB) {
	ctx := tx.Statement.Context
	if ctx == nil {
		ctx = context.Background()
	}
	tx.Statement.Context = context.WithValue(ctx, dbStartKey{}, time.Now())
}

func (d *DBInstrumentation) after(tx *gorm.DB, op string) {
	ctx := tx.Statement.Context
	if ctx == nil {
		return
	}
	start, ok := ctx.Value(dbStartKey{}).(time.Time)
	if !ok {
		return
	}
	elapsed := time.Since(start)
	if op == "" {
		op = operationOf(tx.Statement.SQL.String())
	}
	attrs := []attribute.KeyValue{AttrDBOperation.String(op), AttrDBTable.String(tx.Statement.Table)}
	d.queryDuration.RecordDuration(ctx, elapsed, attrs...)

	if tx.Error != nil && tx.Error != gorm.ErrRecordNotFound {
		d.queryErrors.Inc(ctx, attrs...)
	}
	if elapsed >= d.cfg.SlowQueryThreshold {
		span := trace.SpanFromContext(ctx)
		span.SetAttributes(attribute.Bool("db.slow_query", true))
		d.logger.Warn("Slow query",
			zap.String("operation", op),
			zap.String("table", tx.Statement.Table),
			zap.Duration("duration", elapsed),
			zap.String("trace_id", TraceID(ctx)),
		)
	}
}

func operationOf(sql string) string {
	sql = strings.ToUpper(strings.TrimSpace(sql))
	for _, op := range []string{"SELECT", "INSERT", "UPDATE", "DELETE"} {
		if strings.HasPrefix(sql, op) {
			return op
		}
	}
	return "OTHER"
}

func (d *DBInstrumentation) collectPoolStats(ctx context.Context) {
	defer d.wg.Done()
	ticker := time.NewTicker(d.cfg.PoolStatsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-d.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.recordPoolStats(ctx)
		}
	}
}

func (d *DBInstrumentation) recordPoolStats(ctx context.Context) {
	stats := d.sqlDB.Stats()
	d.poolConns.Record(ctx, int64(stats.Idle), AttrDBPoolState.String("idle"))
	d.poolConns.Record(ctx, int64(stats.InUse), AttrDBPoolState.String("in_use"))
	d.poolConns.Record(ctx, int64(stats.MaxOpenConnections), AttrDBPoolState.String("max"))
}

// Stop ends pool stats collection. Safe to call more than once.
func (d *DBInstrumentation) Stop() {
	d.stopOnce.Do(func() {
		close(d.stopCh)
		d.wg.Wait()
	})
}
