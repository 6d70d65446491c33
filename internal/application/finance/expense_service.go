package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/finance"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ExpenseService provides application-level expense operations
type ExpenseService struct {
	expenseRepo finance.ExpenseRepository
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(expenseRepo finance.ExpenseRepository) *ExpenseService {
	return &ExpenseService{expenseRepo: expenseRepo}
}

// ===================== Expense DTOs =====================

// CreateExpenseRequest represents a request to record an expense
type CreateExpenseRequest struct {
	Title    string          `json:"title" binding:"required,min=1,max=200"`
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category" binding:"max=100"`
	Notes    string          `json:"notes" binding:"max=2000"`
	SpentAt  *time.Time      `json:"spent_at"`
}

// UpdateExpenseRequest represents a request to update an expense
type UpdateExpenseRequest struct {
	Title    *string          `json:"title" binding:"omitempty,min=1,max=200"`
	Amount   *decimal.Decimal `json:"amount"`
	Category *string          `json:"category" binding:"omitempty,max=100"`
	Notes    *string          `json:"notes" binding:"omitempty,max=2000"`
	SpentAt  *time.Time       `json:"spent_at"`
}

// ExpenseListFilter represents filter options for listing expenses
type ExpenseListFilter struct {
	Search   string     `form:"search"`
	Category string     `form:"category"`
	From     *time.Time `form:"from" time_format:"2006-01-02"`
	To       *time.Time `form:"to" time_format:"2006-01-02"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ExpenseResponse represents an expense in API responses
type ExpenseResponse struct {
	ID        uuid.UUID       `json:"id"`
	Title     string          `json:"title"`
	Amount    decimal.Decimal `json:"amount"`
	Category  string          `json:"category"`
	Notes     string          `json:"notes"`
	SpentAt   time.Time       `json:"spent_at"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ToExpenseResponse converts a domain Expense to ExpenseResponse
func ToExpenseResponse(e *finance.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:        e.ID,
		Title:     e.Title,
		Amount:    e.Amount,
		Category:  e.Category,
		Notes:     e.Notes,
		SpentAt:   e.SpentAt,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

// ===================== Expense Operations =====================

// Create records a new expense
func (s *ExpenseService) Create(ctx context.Context, req CreateExpenseRequest) (*ExpenseResponse, error) {
	var spentAt time.Time
	if req.SpentAt != nil {
		spentAt = *req.SpentAt
	}
	expense, err := finance.NewExpense(req.Title, req.Amount, req.Category, req.Notes, spentAt)
	if err != nil {
		return nil, err
	}
	if err := s.expenseRepo.Save(ctx, expense); err != nil {
		return nil, err
	}
	response := ToExpenseResponse(expense)
	return &response, nil
}

// GetByID retrieves an expense by ID
func (s *ExpenseService) GetByID(ctx context.Context, id uuid.UUID) (*ExpenseResponse, error) {
	expense, err := s.expenseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToExpenseResponse(expense)
	return &response, nil
}

// List retrieves expenses matching the filter, newest first
func (s *ExpenseService) List(ctx context.Context, filter ExpenseListFilter) ([]ExpenseResponse, int64, error) {
	domainFilter := finance.ExpenseFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  "spent_at",
			OrderDir: "desc",
			Search:   filter.Search,
		},
		Category: filter.Category,
		From:     filter.From,
		To:       filter.To,
	}
	if domainFilter.Page < 1 {
		domainFilter.Page = 1
	}
	if domainFilter.PageSize < 1 {
		domainFilter.PageSize = 20
	}

	expenses, err := s.expenseRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.expenseRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ExpenseResponse, len(expenses))
	for i := range expenses {
		responses[i] = ToExpenseResponse(&expenses[i])
	}
	return responses, total, nil
}

// Update updates an existing expense
func (s *ExpenseService) Update(ctx context.Context, id uuid.UUID, req UpdateExpenseRequest) (*ExpenseResponse, error) {
	expense, err := s.expenseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	title, amount, category, notes, spentAt := expense.Title, expense.Amount, expense.Category, expense.Notes, expense.SpentAt
	if req.Title != nil {
		title = *req.Title
	}
	if req.Amount != nil {
		amount = *req.Amount
	}
	if req.Category != nil {
		category = *req.Category
	}
	if req.Notes != nil {
		notes = *req.Notes
	}
	if req.SpentAt != nil {
		spentAt = *req.SpentAt
	}

	if err := expense.Update(title, amount, category, notes, spentAt); err != nil {
		return nil, err
	}
	if err := s.expenseRepo.Save(ctx, expense); err != nil {
		return nil, err
	}
	response := ToExpenseResponse(expense)
	return &response, nil
}

// Delete deletes an expense
func (s *ExpenseService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.expenseRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.expenseRepo.Delete(ctx, id)
}
