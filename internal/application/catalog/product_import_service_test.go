package catalog

import (
	"context"
	"strings"
	"testing"

	"github.com/pos/backend/internal/domain/catalog"
	"github.com/pos/backend/internal/domain/shared"
	csvimport "github.com/pos/backend/internal/infrastructure/import"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newImportService() (*ProductImportService, *MockProductRepository, *MockCategoryRepository) {
	productRepo := new(MockProductRepository)
	categoryRepo := new(MockCategoryRepository)
	return NewProductImportService(NewNoOpTransactionScope(categoryRepo, productRepo)), productRepo, categoryRepo
}

func TestProductImportService_Import(t *testing.T) {
	ctx := context.Background()

	t.Run("imports valid rows and reports the rest", func(t *testing.T) {
		svc, productRepo, categoryRepo := newImportService()
		drinks, _ := catalog.NewCategory("Drinks", "")
		categoryRepo.On("FindByName", ctx, "Drinks").Return(drinks, nil)
		categoryRepo.On("FindByName", ctx, "Snacks").Return(nil, shared.ErrNotFound)
		categoryRepo.On("Save", ctx, mock.AnythingOfType("*catalog.Category")).Return(nil).Once()

		var saved []*catalog.Product
		productRepo.On("SaveBatch", ctx, mock.Anything).Run(func(args mock.Arguments) {
			saved = args.Get(1).([]*catalog.Product)
		}).Return(nil)

		file := strings.Join([]string{
			"name,initial_price,selling_price,quantity,category",
			"Tea,1.50,2.50,10,Drinks",
			"Chips,0.80,1.20,,Snacks",
			",1,2,3,",
			"Cola,abc,2,1,Drinks",
			"Nuts,1,2,-4,Snacks",
			"tea,1,2,1,Drinks",
			"Crackers,0.5,1,5,snacks",
		}, "\n")

		result, err := svc.Import(ctx, strings.NewReader(file))

		require.NoError(t, err)
		assert.Equal(t, 7, result.TotalRows)
		assert.Equal(t, 3, result.ImportedRows)
		assert.Equal(t, 4, result.ErrorRows)
		assert.Equal(t, []string{"Snacks"}, result.CreatedCategories)
		require.Len(t, result.Errors, 4)
		assert.Equal(t, csvimport.ErrCodeRequiredField, result.Errors[0].Code)
		assert.Equal(t, 4, result.Errors[0].Row)
		assert.Equal(t, csvimport.ErrCodeInvalidType, result.Errors[1].Code)
		assert.Equal(t, csvimport.ErrCodeInvalidRange, result.Errors[2].Code)
		assert.Equal(t, csvimport.ErrCodeDuplicate, result.Errors[3].Code)

		require.Len(t, saved, 3)
		assert.Equal(t, "Tea", saved[0].Name)
		assert.Equal(t, int64(10), saved[0].Quantity)
		assert.True(t, saved[0].SellingPrice.Equal(decimal.RequireFromString("2.50")))
		assert.Equal(t, drinks.ID, *saved[0].CategoryID)
		assert.Equal(t, int64(0), saved[1].Quantity)
		assert.Equal(t, *saved[1].CategoryID, *saved[2].CategoryID)
		categoryRepo.AssertExpectations(t)
	})

	t.Run("missing required columns", func(t *testing.T) {
		svc, productRepo, _ := newImportService()

		_, err := svc.Import(ctx, strings.NewReader("name,quantity\nTea,3"))

		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrValidation)
		assert.Contains(t, err.Error(), "initial_price, selling_price")
		productRepo.AssertNotCalled(t, "SaveBatch", mock.Anything, mock.Anything)
	})

	t.Run("no valid rows writes nothing", func(t *testing.T) {
		svc, productRepo, _ := newImportService()

		result, err := svc.Import(ctx, strings.NewReader("name,initial_price,selling_price\n,1,2"))

		require.NoError(t, err)
		assert.Equal(t, 0, result.ImportedRows)
		assert.Equal(t, 1, result.ErrorRows)
		productRepo.AssertNotCalled(t, "SaveBatch", mock.Anything, mock.Anything)
	})

	t.Run("empty file", func(t *testing.T) {
		svc, _, _ := newImportService()
		_, err := svc.Import(ctx, strings.NewReader(""))
		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}
