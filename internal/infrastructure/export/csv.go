package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/pos/backend/internal/domain/catalog"
	"github.com/pos/backend/internal/domain/report"
	"github.com/shopspring/decimal"
)

// SalesCSVHeader is the column order of the sales export
var SalesCSVHeader = []string{
	"sale_id", "sold_at", "kind", "item", "amount", "sold_price", "total_price", "profit", "transaction_id",
}

// ProductsCSVHeader is the column order of the products export. Its first
// columns match the product import format so an export can be re-imported.
var ProductsCSVHeader = []string{
	"name", "initial_price", "selling_price", "quantity", "category", "total_sold", "revenue", "profit",
}

// WriteSalesCSV writes one line per sale row
func WriteSalesCSV(w io.Writer, lines []report.SalesReportLine) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(SalesCSVHeader); err != nil {
		return err
	}
	for _, l := range lines {
		transactionID := ""
		if l.TransactionID != nil {
			transactionID = l.TransactionID.String()
		}
		record := []string{
			l.SaleID.String(),
			l.SoldAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
			l.Kind,
			l.ItemName,
			strconv.FormatInt(l.Amount, 10),
			money(l.SoldPrice),
			money(l.TotalPrice),
			money(l.Profit),
			transactionID,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteProductsCSV writes the product catalogue with its stock and sales
// aggregates. categoryNames maps category ids to names.
func WriteProductsCSV(w io.Writer, products []catalog.Product, categoryNames map[string]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ProductsCSVHeader); err != nil {
		return err
	}
	for _, p := range products {
		category := ""
		if p.CategoryID != nil {
			category = categoryNames[p.CategoryID.String()]
		}
		record := []string{
			p.Name,
			money(p.InitialPrice),
			money(p.SellingPrice),
			strconv.FormatInt(p.Quantity, 10),
			category,
			strconv.FormatInt(p.TotalSold, 10),
			money(p.Revenue),
			money(p.Profit),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
