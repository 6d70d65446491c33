package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ===================== Category DTOs =====================

// CreateCategoryRequest represents a request to create a category
type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=1000"`
}

// UpdateCategoryRequest represents a request to update a category
type UpdateCategoryRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToCategoryResponse converts a domain Category to CategoryResponse
func ToCategoryResponse(c *catalog.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// ===================== Product DTOs =====================

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	Name         string          `json:"name" binding:"required,min=1,max=200"`
	InitialPrice decimal.Decimal `json:"initial_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	Quantity     int64           `json:"quantity" binding:"min=0"`
	CategoryID   *uuid.UUID      `json:"category_id"`
}

// UpdateProductRequest represents a request to update a product.
// Stock and sales aggregates are not editable here.
type UpdateProductRequest struct {
	Name          *string          `json:"name" binding:"omitempty,min=1,max=200"`
	InitialPrice  *decimal.Decimal `json:"initial_price"`
	SellingPrice  *decimal.Decimal `json:"selling_price"`
	CategoryID    *uuid.UUID       `json:"category_id"`
	ClearCategory bool             `json:"clear_category"`
}

// RestockRequest adds received units to a product
type RestockRequest struct {
	Quantity int64 `json:"quantity" binding:"required,gt=0"`
}

// ProductListFilter represents filter options for product list
type ProductListFilter struct {
	Search     string     `form:"search"`
	CategoryID *uuid.UUID `form:"category_id"`
	LowStock   bool       `form:"low_stock"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string     `form:"order_by" binding:"omitempty,oneof=name created_at quantity total_sold revenue profit"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	InitialPrice decimal.Decimal `json:"initial_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	Quantity     int64           `json:"quantity"`
	TotalSold    int64           `json:"total_sold"`
	Revenue      decimal.Decimal `json:"revenue"`
	Profit       decimal.Decimal `json:"profit"`
	LowStock     bool            `json:"low_stock"`
	CategoryID   *uuid.UUID      `json:"category_id"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ToProductResponse converts a domain Product to ProductResponse, flagging
// it when stock is at or below lowStockThreshold
func ToProductResponse(p *catalog.Product, lowStockThreshold int64) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		Name:         p.Name,
		InitialPrice: p.InitialPrice,
		SellingPrice: p.SellingPrice,
		Quantity:     p.Quantity,
		TotalSold:    p.TotalSold,
		Revenue:      p.Revenue,
		Profit:       p.Profit,
		LowStock:     p.IsLowStock(lowStockThreshold),
		CategoryID:   p.CategoryID,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// ToProductResponses converts a slice of domain Products
func ToProductResponses(products []catalog.Product, lowStockThreshold int64) []ProductResponse {
	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i], lowStockThreshold)
	}
	return responses
}

// ===================== Service DTOs =====================

// CreateServiceRequest represents a request to create a sellable service
type CreateServiceRequest struct {
	Name         string          `json:"name" binding:"required,min=1,max=200"`
	Description  string          `json:"description" binding:"max=2000"`
	DefaultPrice decimal.Decimal `json:"default_price"`
}

// UpdateServiceRequest represents a request to update a service
type UpdateServiceRequest struct {
	Name         *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Description  *string          `json:"description" binding:"omitempty,max=2000"`
	DefaultPrice *decimal.Decimal `json:"default_price"`
}

// ServiceListFilter represents filter options for service list
type ServiceListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ServiceResponse represents a service in API responses
type ServiceResponse struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	DefaultPrice decimal.Decimal `json:"default_price"`
	TotalSold    int64           `json:"total_sold"`
	Revenue      decimal.Decimal `json:"revenue"`
	Profit       decimal.Decimal `json:"profit"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ToServiceResponse converts a domain Service to ServiceResponse
func ToServiceResponse(s *catalog.Service) ServiceResponse {
	return ServiceResponse{
		ID:           s.ID,
		Name:         s.Name,
		Description:  s.Description,
		DefaultPrice: s.DefaultPrice,
		TotalSold:    s.TotalSold,
		Revenue:      s.Revenue,
		Profit:       s.Profit(),
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}
