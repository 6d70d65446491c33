package models

import (
	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// CategoryModel is the persistence model for the Category domain entity.
type CategoryModel struct {
	BaseModel
	Name        string `gorm:"type:varchar(100);not null;uniqueIndex:idx_categories_name"`
	Description string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// ToDomain converts the persistence model to a domain Category entity.
func (m *CategoryModel) ToDomain() *catalog.Category {
	return &catalog.Category{
		BaseEntity:  m.BaseModel.ToDomain(),
		Name:        m.Name,
		Description: m.Description,
	}
}

// FromDomain populates the persistence model from a domain Category entity.
func (m *CategoryModel) FromDomain(c *catalog.Category) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.Name = c.Name
	m.Description = c.Description
}

// CategoryModelFromDomain creates a new persistence model from a domain Category entity.
func CategoryModelFromDomain(c *catalog.Category) *CategoryModel {
	m := &CategoryModel{}
	m.FromDomain(c)
	return m
}

// ProductModel is the persistence model for the Product domain entity.
type ProductModel struct {
	BaseModel
	Name         string          `gorm:"type:varchar(200);not null;index"`
	InitialPrice decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	SellingPrice decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Quantity     int64           `gorm:"not null;default:0"`
	TotalSold    int64           `gorm:"not null;default:0"`
	Revenue      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Profit       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	CategoryID   *uuid.UUID      `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseEntity:   m.BaseModel.ToDomain(),
		Name:         m.Name,
		InitialPrice: m.InitialPrice,
		SellingPrice: m.SellingPrice,
		Quantity:     m.Quantity,
		TotalSold:    m.TotalSold,
		Revenue:      m.Revenue,
		Profit:       m.Profit,
		CategoryID:   m.CategoryID,
	}
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.Name = p.Name
	m.InitialPrice = p.InitialPrice
	m.SellingPrice = p.SellingPrice
	m.Quantity = p.Quantity
	m.TotalSold = p.TotalSold
	m.Revenue = p.Revenue
	m.Profit = p.Profit
	m.CategoryID = p.CategoryID
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

// ServiceModel is the persistence model for the Service domain entity.
type ServiceModel struct {
	BaseModel
	Name         string          `gorm:"type:varchar(200);not null;index"`
	Description  string          `gorm:"type:text"`
	DefaultPrice decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TotalSold    int64           `gorm:"not null;default:0"`
	Revenue      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (ServiceModel) TableName() string {
	return "services"
}

// ToDomain converts the persistence model to a domain Service entity.
func (m *ServiceModel) ToDomain() *catalog.Service {
	return &catalog.Service{
		BaseEntity:   m.BaseModel.ToDomain(),
		Name:         m.Name,
		Description:  m.Description,
		DefaultPrice: m.DefaultPrice,
		TotalSold:    m.TotalSold,
		Revenue:      m.Revenue,
	}
}

// FromDomain populates the persistence model from a domain Service entity.
func (m *ServiceModel) FromDomain(s *catalog.Service) {
	m.FromDomainBaseEntity(s.BaseEntity)
	m.Name = s.Name
	m.Description = s.Description
	m.DefaultPrice = s.DefaultPrice
	m.TotalSold = s.TotalSold
	m.Revenue = s.Revenue
}

// ServiceModelFromDomain creates a new persistence model from a domain Service entity.
func ServiceModelFromDomain(s *catalog.Service) *ServiceModel {
	m := &ServiceModel{}
	m.FromDomain(s)
	return m
}
