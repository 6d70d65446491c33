package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/grafana/pyroscope-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestProviders_DisabledAreNoOps(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	tp, err := NewTracerProvider(ctx, Config{}, logger)
	require.NoError(t, err)
	assert.False(t, tp.IsEnabled())
	tp.EnableSpanProfiles()
	assert.False(t, tp.SpanProfilesEnabled())
	assert.NotNil(t, tp.Tracer("x"))
	assert.NoError(t, tp.Shutdown(ctx))

	mp, err := NewMeterProvider(ctx, MetricsConfig{}, logger)
	require.NoError(t, err)
	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("x"))
	assert.NoError(t, mp.Shutdown(ctx))

	lp, err := NewLoggerProvider(ctx, LogsConfig{}, logger)
	require.NoError(t, err)
	assert.False(t, lp.IsEnabled())
	assert.NoError(t, lp.Shutdown(ctx))

	p, err := NewProfiler(ProfilerConfig{}, logger)
	require.NoError(t, err)
	assert.False(t, p.IsEnabled())
	assert.NoError(t, p.Stop())
}

func TestSamplerFor(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), samplerFor(1).Description())
	assert.Equal(t, sdktrace.NeverSample().Description(), samplerFor(0).Description())
	assert.Equal(t, sdktrace.TraceIDRatioBased(0.25).Description(), samplerFor(0.25).Description())
}

func TestParseProfileTypes(t *testing.T) {
	types, err := parseProfileTypes(nil)
	require.NoError(t, err)
	assert.Contains(t, types, pyroscope.ProfileCPU)

	types, err = parseProfileTypes([]string{"CPU", " mutex "})
	require.NoError(t, err)
	assert.Equal(t, []pyroscope.ProfileType{
		pyroscope.ProfileCPU,
		pyroscope.ProfileMutexCount,
		pyroscope.ProfileMutexDuration,
	}, types)

	_, err = parseProfileTypes([]string{"heap"})
	assert.Error(t, err)
}

func TestLevelFilterCore(t *testing.T) {
	inner, logs := observer.New(zapcore.DebugLevel)
	core := &levelFilterCore{Core: inner, minLevel: zapcore.WarnLevel}

	logger := NewBridgedLogger(zapcore.NewNopCore(), core).With(zap.String("k", "v"))
	logger.Info("dropped")
	logger.Warn("kept")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "kept", entry.Message)
	assert.Equal(t, "v", entry.ContextMap()["k"])
}

func TestNewZapOTELCore_DisabledIsNop(t *testing.T) {
	core := NewZapOTELCore("pos", nil, zapcore.InfoLevel)
	assert.False(t, core.Enabled(zapcore.ErrorLevel))
}

func TestStartServiceSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	ctx, span := StartServiceSpan(context.Background(), "sale", "create", AttrSaleKind.String("PRODUCT"))
	assert.NotEmpty(t, TraceID(ctx))
	EndSpan(span, errors.New("boom"))

	_, listSpan := StartServiceSpan(context.Background(), "sale", "list")
	EndSpan(listSpan, nil)

	ended := recorder.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, "sale.create", ended[0].Name())
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "sale.list", ended[1].Name())
	assert.Equal(t, codes.Unset, ended[1].Status().Code)
	assert.Empty(t, TraceID(context.Background()))
}

func TestOperationOf(t *testing.T) {
	assert.Equal(t, "SELECT", operationOf("  select 1"))
	assert.Equal(t, "UPDATE", operationOf("UPDATE products SET quantity = 1"))
	assert.Equal(t, "OTHER", operationOf("VACUUM"))
}

func TestDBInstrumentation_RecordsQueries(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	core, logs := observer.New(zapcore.WarnLevel)
	inst, err := NewDBInstrumentation(mp.Meter("test"), DBInstrumentationConfig{
		SlowQueryThreshold: time.Nanosecond,
		PoolStatsInterval:  time.Hour,
	}, zap.New(core))
	require.NoError(t, err)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, inst.Register(context.Background(), db))
	t.Cleanup(inst.Stop)

	type item struct {
		ID   uint
		Name string
	}
	require.NoError(t, db.AutoMigrate(&item{}))
	require.NoError(t, db.Create(&item{Name: "soda"}).Error)
	var got []item
	require.NoError(t, db.Find(&got).Error)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	names := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			names[m.Name] = true
		}
	}
	assert.True(t, names["db_query_duration_seconds"])
	assert.True(t, names["db_pool_connections"])
	assert.Positive(t, logs.FilterMessage("Slow query").Len())
}

func TestNewDBInstrumentation_NilMeter(t *testing.T) {
	_, err := NewDBInstrumentation(nil, DBInstrumentationConfig{}, zap.NewNop())
	assert.Error(t, err)
}
