package catalog

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/catalog"
	"github.com/pos/backend/internal/domain/shared"
	csvimport "github.com/pos/backend/internal/infrastructure/import"
	"github.com/shopspring/decimal"
)

// Import limits
const (
	MaxImportRows   = 5000
	MaxImportErrors = 100
)

var productImportHeaders = []string{"name", "initial_price", "selling_price"}

// ProductImportResult represents the result of a product import
type ProductImportResult struct {
	TotalRows         int                  `json:"total_rows"`
	ImportedRows      int                  `json:"imported_rows"`
	ErrorRows         int                  `json:"error_rows"`
	CreatedCategories []string             `json:"created_categories,omitempty"`
	Errors            []csvimport.RowError `json:"errors,omitempty"`
	IsTruncated       bool                 `json:"is_truncated,omitempty"`
	TotalErrors       int                  `json:"total_errors,omitempty"`
}

// ProductImportService imports products from a CSV file with the columns
// name, initial_price, selling_price, quantity and category
type ProductImportService struct {
	txScope TransactionScope
}

// NewProductImportService creates a new ProductImportService
func NewProductImportService(txScope TransactionScope) *ProductImportService {
	return &ProductImportService{txScope: txScope}
}

type productImportRow struct {
	line         int
	name         string
	initialPrice decimal.Decimal
	sellingPrice decimal.Decimal
	quantity     int64
	category     string
}

// Import validates every row and inserts the valid ones in one transaction.
// Unknown categories are created on demand. Invalid rows are reported and skipped.
func (s *ProductImportService) Import(ctx context.Context, r io.Reader) (*ProductImportResult, error) {
	parser, err := csvimport.NewCSVParser(r)
	if err != nil {
		return nil, importFileError(err)
	}
	if err := parser.ParseHeader(); err != nil {
		return nil, importFileError(err)
	}
	if missing := parser.MissingHeaders(productImportHeaders); len(missing) > 0 {
		return nil, shared.NewValidationError("CSV file is missing required columns: " + strings.Join(missing, ", "))
	}

	rows, err := parser.ReadAllRows(MaxImportRows)
	if err != nil {
		return nil, importFileError(err)
	}

	errs := csvimport.NewErrorCollection(MaxImportErrors)
	valid := make([]productImportRow, 0, len(rows))
	seen := make(map[string]int, len(rows))
	for _, row := range rows {
		parsed, ok := parseProductRow(row, errs)
		if !ok {
			continue
		}
		key := strings.ToLower(parsed.name)
		if first, dup := seen[key]; dup {
			errs.Add(csvimport.RowError{
				Row:     row.Line,
				Column:  "name",
				Code:    csvimport.ErrCodeDuplicate,
				Message: "duplicate of row " + strconv.Itoa(first),
				Value:   parsed.name,
			})
			continue
		}
		seen[key] = row.Line
		valid = append(valid, parsed)
	}

	result := &ProductImportResult{TotalRows: len(rows)}
	if len(valid) > 0 {
		created, err := s.insert(ctx, valid)
		if err != nil {
			return nil, err
		}
		result.ImportedRows = len(valid)
		result.CreatedCategories = created
	}

	result.ErrorRows = len(rows) - len(valid)
	result.Errors = errs.Errors()
	result.IsTruncated = errs.IsTruncated()
	result.TotalErrors = errs.TotalCount()
	return result, nil
}

func (s *ProductImportService) insert(ctx context.Context, rows []productImportRow) ([]string, error) {
	var created []string
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		created = nil
		categories := make(map[string]uuid.UUID)
		products := make([]*catalog.Product, 0, len(rows))

		for _, row := range rows {
			product, err := catalog.NewProduct(row.name, row.initialPrice, row.sellingPrice, row.quantity)
			if err != nil {
				return err
			}
			if row.category != "" {
				id, isNew, err := resolveCategory(ctx, repos.CategoryRepo(), categories, row.category)
				if err != nil {
					return err
				}
				if isNew {
					created = append(created, row.category)
				}
				product.SetCategory(&id)
			}
			products = append(products, product)
		}

		return repos.ProductRepo().SaveBatch(ctx, products)
	})
	return created, err
}

// resolveCategory finds a category by name, creating it when absent
func resolveCategory(ctx context.Context, repo catalog.CategoryRepository, cache map[string]uuid.UUID, name string) (uuid.UUID, bool, error) {
	key := strings.ToLower(name)
	if id, ok := cache[key]; ok {
		return id, false, nil
	}

	existing, err := repo.FindByName(ctx, name)
	if err == nil {
		cache[key] = existing.ID
		return existing.ID, false, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return uuid.Nil, false, err
	}

	category, err := catalog.NewCategory(name, "")
	if err != nil {
		return uuid.Nil, false, err
	}
	if err := repo.Save(ctx, category); err != nil {
		return uuid.Nil, false, err
	}
	cache[key] = category.ID
	return category.ID, true, nil
}

func parseProductRow(row *csvimport.Row, errs *csvimport.ErrorCollection) (productImportRow, bool) {
	parsed := productImportRow{line: row.Line, category: row.Get("category")}
	ok := true

	parsed.name = row.Get("name")
	switch {
	case parsed.name == "":
		errs.AddRequired(row.Line, "name")
		ok = false
	case len(parsed.name) > 200:
		errs.AddRange(row.Line, "name", "must be at most 200 characters", parsed.name)
		ok = false
	}

	var priceOK bool
	parsed.initialPrice, priceOK = parsePrice(row, "initial_price", errs)
	ok = ok && priceOK
	parsed.sellingPrice, priceOK = parsePrice(row, "selling_price", errs)
	ok = ok && priceOK

	if raw := row.Get("quantity"); raw != "" {
		quantity, err := strconv.ParseInt(raw, 10, 64)
		switch {
		case err != nil:
			errs.AddType(row.Line, "quantity", "integer", raw)
			ok = false
		case quantity < 0:
			errs.AddRange(row.Line, "quantity", "must not be negative", raw)
			ok = false
		default:
			parsed.quantity = quantity
		}
	}

	if len(parsed.category) > 100 {
		errs.AddRange(row.Line, "category", "must be at most 100 characters", parsed.category)
		ok = false
	}
	return parsed, ok
}

func parsePrice(row *csvimport.Row, column string, errs *csvimport.ErrorCollection) (decimal.Decimal, bool) {
	raw := row.Get(column)
	if raw == "" {
		errs.AddRequired(row.Line, column)
		return decimal.Zero, false
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		errs.AddType(row.Line, column, "decimal", raw)
		return decimal.Zero, false
	}
	if value.IsNegative() {
		errs.AddRange(row.Line, column, "must not be negative", raw)
		return decimal.Zero, false
	}
	return value.Round(2), true
}

func importFileError(err error) error {
	switch {
	case errors.Is(err, csvimport.ErrEmptyFile),
		errors.Is(err, csvimport.ErrInvalidEncoding),
		errors.Is(err, csvimport.ErrMissingHeader),
		errors.Is(err, csvimport.ErrNoDataRows),
		errors.Is(err, csvimport.ErrTooManyRows):
		return shared.NewValidationError(err.Error())
	default:
		return shared.NewValidationError("Could not read CSV file: " + err.Error())
	}
}
