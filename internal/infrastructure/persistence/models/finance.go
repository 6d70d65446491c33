package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/finance"
	"github.com/shopspring/decimal"
)

// DebitModel is the persistence model for the Debit domain entity.
type DebitModel struct {
	BaseModel
	CustomerName *string         `gorm:"type:varchar(200)"`
	Notes        *string         `gorm:"type:text"`
	TotalAmount  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	PaidAmount   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Status       string          `gorm:"type:varchar(10);not null;default:'PENDING';index"`
	PaidAt       *time.Time
}

// TableName returns the table name for GORM
func (DebitModel) TableName() string {
	return "debits"
}

// ToDomain converts the persistence model to a domain Debit. Items are
// attached by the repository.
func (m *DebitModel) ToDomain(items []DebitItemModel) *finance.Debit {
	debit := &finance.Debit{
		BaseEntity:   m.BaseModel.ToDomain(),
		CustomerName: m.CustomerName,
		Notes:        m.Notes,
		TotalAmount:  m.TotalAmount,
		PaidAmount:   m.PaidAmount,
		Status:       finance.DebitStatus(m.Status),
		PaidAt:       m.PaidAt,
		Items:        make([]finance.DebitItem, 0, len(items)),
	}
	for i := range items {
		debit.Items = append(debit.Items, *items[i].ToDomain())
	}
	return debit
}

// FromDomain populates the persistence model from a domain Debit entity.
func (m *DebitModel) FromDomain(d *finance.Debit) {
	m.FromDomainBaseEntity(d.BaseEntity)
	m.CustomerName = d.CustomerName
	m.Notes = d.Notes
	m.TotalAmount = d.TotalAmount
	m.PaidAmount = d.PaidAmount
	m.Status = string(d.Status)
	m.PaidAt = d.PaidAt
}

// DebitModelFromDomain creates a new persistence model from a domain Debit entity.
func DebitModelFromDomain(d *finance.Debit) *DebitModel {
	m := &DebitModel{}
	m.FromDomain(d)
	return m
}

// DebitItemModel links one sale to one debit.
type DebitItemModel struct {
	BaseModel
	DebitID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	SellHistoryID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_debit_items_sell_history"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (DebitItemModel) TableName() string {
	return "debit_items"
}

// ToDomain converts the persistence model to a domain DebitItem.
func (m *DebitItemModel) ToDomain() *finance.DebitItem {
	return &finance.DebitItem{
		BaseEntity:    m.BaseModel.ToDomain(),
		DebitID:       m.DebitID,
		SellHistoryID: m.SellHistoryID,
		Amount:        m.Amount,
	}
}

// FromDomain populates the persistence model from a domain DebitItem.
func (m *DebitItemModel) FromDomain(i *finance.DebitItem) {
	m.FromDomainBaseEntity(i.BaseEntity)
	m.DebitID = i.DebitID
	m.SellHistoryID = i.SellHistoryID
	m.Amount = i.Amount
}

// ExpenseModel is the persistence model for the Expense domain entity.
type ExpenseModel struct {
	BaseModel
	Title    string          `gorm:"type:varchar(200);not null"`
	Amount   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Category string          `gorm:"type:varchar(100);index"`
	Notes    string          `gorm:"type:text"`
	SpentAt  time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (ExpenseModel) TableName() string {
	return "expenses"
}

// ToDomain converts the persistence model to a domain Expense entity.
func (m *ExpenseModel) ToDomain() *finance.Expense {
	return &finance.Expense{
		BaseEntity: m.BaseModel.ToDomain(),
		Title:      m.Title,
		Amount:     m.Amount,
		Category:   m.Category,
		Notes:      m.Notes,
		SpentAt:    m.SpentAt,
	}
}

// FromDomain populates the persistence model from a domain Expense entity.
func (m *ExpenseModel) FromDomain(e *finance.Expense) {
	m.FromDomainBaseEntity(e.BaseEntity)
	m.Title = e.Title
	m.Amount = e.Amount
	m.Category = e.Category
	m.Notes = e.Notes
	m.SpentAt = e.SpentAt
}

// ExpenseModelFromDomain creates a new persistence model from a domain Expense entity.
func ExpenseModelFromDomain(e *finance.Expense) *ExpenseModel {
	m := &ExpenseModel{}
	m.FromDomain(e)
	return m
}
