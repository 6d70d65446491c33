package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/catalog"
	"github.com/pos/backend/internal/domain/report"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatter(t *testing.T) {
	t.Run("english grouping", func(t *testing.T) {
		f := NewFormatter("en", "ksh")
		assert.Equal(t, "ksh 1,234.50", f.Money(decimal.RequireFromString("1234.5")))
		assert.Equal(t, "12,000", f.Integer(12000))
	})

	t.Run("german separators", func(t *testing.T) {
		f := NewFormatter("de", "EUR")
		assert.Equal(t, "EUR 1.234,50", f.Money(decimal.RequireFromString("1234.5")))
	})

	t.Run("invalid locale falls back to english", func(t *testing.T) {
		f := NewFormatter("not a locale!", "")
		assert.Equal(t, "0.10", f.Money(decimal.RequireFromString("0.1")))
	})

	t.Run("labels", func(t *testing.T) {
		f := NewFormatter("en", "")
		assert.Equal(t, "Product", f.Label("PRODUCT"))
		assert.Equal(t, "Partial", f.Label("PARTIAL"))
	})
}

func TestWriteSalesCSV(t *testing.T) {
	txID := uuid.New()
	lines := []report.SalesReportLine{
		{
			SaleID:        uuid.New(),
			SoldAt:        time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC),
			Kind:          "PRODUCT",
			ItemName:      "Tea, green",
			Amount:        5,
			SoldPrice:     decimal.NewFromInt(15),
			TotalPrice:    decimal.NewFromInt(75),
			Profit:        decimal.NewFromInt(25),
			TransactionID: &txID,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSalesCSV(&buf, lines))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, SalesCSVHeader, records[0])
	assert.Equal(t, "2024-03-01T10:30:00Z", records[1][1])
	assert.Equal(t, "Tea, green", records[1][3])
	assert.Equal(t, "75.00", records[1][6])
	assert.Equal(t, txID.String(), records[1][8])
}

func TestWriteProductsCSV(t *testing.T) {
	product, err := catalog.NewProduct("Widget", decimal.NewFromInt(10), decimal.NewFromInt(15), 100)
	require.NoError(t, err)
	categoryID := uuid.New()
	product.SetCategory(&categoryID)

	var buf bytes.Buffer
	require.NoError(t, WriteProductsCSV(&buf, []catalog.Product{*product}, map[string]string{categoryID.String(): "Tools"}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"Widget", "10.00", "15.00", "100", "Tools", "0", "0.00", "0.00"}, records[1])
}

func TestRenderSalesPDF(t *testing.T) {
	period := report.Period{
		From: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
	}
	lines := make([]report.SalesReportLine, 80)
	for i := range lines {
		lines[i] = report.SalesReportLine{
			SaleID:     uuid.New(),
			SoldAt:     period.From.Add(time.Duration(i) * time.Hour),
			Kind:       "SERVICE",
			ItemName:   "Café repair with a rather long descriptive name",
			Amount:     1,
			SoldPrice:  decimal.NewFromInt(20),
			TotalPrice: decimal.NewFromInt(20),
			Profit:     decimal.NewFromInt(20),
		}
	}

	data, err := RenderSalesPDF(SalesReport{
		Title:   "Sales Report",
		Period:  period,
		Summary: report.SalesSummary{SaleCount: 80, ItemsSold: 80, Revenue: decimal.NewFromInt(1600), Profit: decimal.NewFromInt(1600)},
		Lines:   lines,
	}, NewFormatter("en", "ksh"))

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}
