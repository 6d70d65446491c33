package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/catalog"
	"github.com/pos/backend/internal/domain/sales"
	"github.com/pos/backend/internal/domain/shared"
)

// DefaultLowStockThreshold is used when no threshold is configured
const DefaultLowStockThreshold int64 = 5

// ProductService handles product-related business operations
type ProductService struct {
	productRepo       catalog.ProductRepository
	categoryRepo      catalog.CategoryRepository
	sellHistoryRepo   sales.SellHistoryRepository
	txScope           TransactionScope
	lowStockThreshold int64
}

// NewProductService creates a new ProductService
func NewProductService(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	sellHistoryRepo sales.SellHistoryRepository,
	txScope TransactionScope,
) *ProductService {
	return &ProductService{
		productRepo:       productRepo,
		categoryRepo:      categoryRepo,
		sellHistoryRepo:   sellHistoryRepo,
		txScope:           txScope,
		lowStockThreshold: DefaultLowStockThreshold,
	}
}

// SetLowStockThreshold sets the quantity at or below which a product counts as low on stock
func (s *ProductService) SetLowStockThreshold(threshold int64) {
	if threshold >= 0 {
		s.lowStockThreshold = threshold
	}
}

// Create creates a new product with its opening stock
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	product, err := catalog.NewProduct(req.Name, req.InitialPrice, req.SellingPrice, req.Quantity)
	if err != nil {
		return nil, err
	}

	if req.CategoryID != nil {
		if err := s.ensureCategory(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
		product.SetCategory(req.CategoryID)
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product, s.lowStockThreshold)
	return &response, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product, s.lowStockThreshold)
	return &response, nil
}

// List retrieves a paginated list of products
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) ([]ProductResponse, int64, error) {
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
	if domainFilter.Page < 1 {
		domainFilter.Page = 1
	}
	if domainFilter.PageSize < 1 {
		domainFilter.PageSize = 20
	}
	if domainFilter.OrderBy == "" {
		domainFilter.OrderBy = "name"
	}
	if domainFilter.OrderDir == "" {
		domainFilter.OrderDir = "asc"
	}
	if filter.CategoryID != nil {
		domainFilter.Filters["category_id"] = *filter.CategoryID
	}
	if filter.LowStock {
		domainFilter.Filters["low_stock"] = s.lowStockThreshold
	}

	products, err := s.productRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.productRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToProductResponses(products, s.lowStockThreshold), total, nil
}

// Update updates a product's name, prices and category. Stock and the
// sales aggregates only move through sales and restocks.
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name := product.Name
	if req.Name != nil {
		name = *req.Name
	}
	initialPrice := product.InitialPrice
	if req.InitialPrice != nil {
		initialPrice = *req.InitialPrice
	}
	sellingPrice := product.SellingPrice
	if req.SellingPrice != nil {
		sellingPrice = *req.SellingPrice
	}
	if err := product.Update(name, initialPrice, sellingPrice); err != nil {
		return nil, err
	}

	switch {
	case req.ClearCategory:
		product.SetCategory(nil)
	case req.CategoryID != nil:
		if err := s.ensureCategory(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
		product.SetCategory(req.CategoryID)
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product, s.lowStockThreshold)
	return &response, nil
}

// Restock adds units to stock under a row lock so concurrent sales see the new quantity
func (s *ProductService) Restock(ctx context.Context, id uuid.UUID, req RestockRequest) (*ProductResponse, error) {
	var product *catalog.Product
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		product, err = repos.ProductRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := product.Restock(req.Quantity); err != nil {
			return err
		}
		return repos.ProductRepo().Save(ctx, product)
	})
	if err != nil {
		return nil, err
	}

	response := ToProductResponse(product, s.lowStockThreshold)
	return &response, nil
}

// Delete deletes a product. Products with recorded sales cannot be deleted.
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	used, err := s.sellHistoryRepo.ExistsForItem(ctx, sales.ProductRef(product.ID))
	if err != nil {
		return err
	}
	if used {
		return shared.NewConflictError("Product has recorded sales; delete its sales first")
	}

	return s.productRepo.Delete(ctx, id)
}

func (s *ProductService) ensureCategory(ctx context.Context, categoryID uuid.UUID) error {
	if _, err := s.categoryRepo.FindByID(ctx, categoryID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewValidationError("Category not found")
		}
		return err
	}
	return nil
}
