package models

import (
	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/sales"
	"github.com/shopspring/decimal"
)

// SellHistoryModel is the persistence model for a recorded sale. Exactly one
// of ProductID and ServiceID is set, matching Kind.
type SellHistoryModel struct {
	BaseModel
	Kind          string           `gorm:"type:varchar(10);not null;index"`
	ProductID     *uuid.UUID       `gorm:"type:uuid;index"`
	ServiceID     *uuid.UUID       `gorm:"type:uuid;index"`
	Amount        int64            `gorm:"not null"`
	SoldPrice     decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	TotalPrice    decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	InitialPrice  *decimal.Decimal `gorm:"type:decimal(18,2)"`
	TransactionID *uuid.UUID       `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (SellHistoryModel) TableName() string {
	return "sell_histories"
}

// ToDomain converts the persistence model to a domain SellHistory entity.
func (m *SellHistoryModel) ToDomain() *sales.SellHistory {
	sale := &sales.SellHistory{
		BaseEntity:    m.BaseModel.ToDomain(),
		Amount:        m.Amount,
		SoldPrice:     m.SoldPrice,
		TotalPrice:    m.TotalPrice,
		InitialPrice:  m.InitialPrice,
		TransactionID: m.TransactionID,
	}
	switch {
	case m.ProductID != nil:
		sale.Item = sales.ProductRef(*m.ProductID)
	case m.ServiceID != nil:
		sale.Item = sales.ServiceRef(*m.ServiceID)
	default:
		sale.Item = sales.ItemRef{Kind: sales.SaleKind(m.Kind)}
	}
	return sale
}

// FromDomain populates the persistence model from a domain SellHistory entity.
func (m *SellHistoryModel) FromDomain(s *sales.SellHistory) {
	m.FromDomainBaseEntity(s.BaseEntity)
	m.Kind = string(s.Item.Kind)
	m.ProductID = nil
	m.ServiceID = nil
	id := s.Item.ID
	if s.Item.IsProduct() {
		m.ProductID = &id
	} else {
		m.ServiceID = &id
	}
	m.Amount = s.Amount
	m.SoldPrice = s.SoldPrice
	m.TotalPrice = s.TotalPrice
	m.InitialPrice = s.InitialPrice
	m.TransactionID = s.TransactionID
}

// SellHistoryModelFromDomain creates a new persistence model from a domain SellHistory entity.
func SellHistoryModelFromDomain(s *sales.SellHistory) *SellHistoryModel {
	m := &SellHistoryModel{}
	m.FromDomain(s)
	return m
}

// TransactionModel is the persistence model for a bulk-sale Transaction.
type TransactionModel struct {
	BaseModel
	TotalRevenue decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TotalProfit  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (TransactionModel) TableName() string {
	return "transactions"
}

// ToDomain converts the persistence model to a domain Transaction entity.
func (m *TransactionModel) ToDomain() *sales.Transaction {
	return &sales.Transaction{
		BaseEntity:   m.BaseModel.ToDomain(),
		TotalRevenue: m.TotalRevenue,
		TotalProfit:  m.TotalProfit,
	}
}

// FromDomain populates the persistence model from a domain Transaction entity.
func (m *TransactionModel) FromDomain(t *sales.Transaction) {
	m.FromDomainBaseEntity(t.BaseEntity)
	m.TotalRevenue = t.TotalRevenue
	m.TotalProfit = t.TotalProfit
}

// TransactionModelFromDomain creates a new persistence model from a domain Transaction entity.
func TransactionModelFromDomain(t *sales.Transaction) *TransactionModel {
	m := &TransactionModel{}
	m.FromDomain(t)
	return m
}
