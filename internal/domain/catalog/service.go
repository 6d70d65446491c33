package catalog

import (
	"strings"

	"github.com/pos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Service is a sellable item without stock or cost. Profit on a service
// sale equals its revenue, so only TotalSold and Revenue are kept.
type Service struct {
	shared.BaseEntity
	Name         string
	Description  string
	DefaultPrice decimal.Decimal
	TotalSold    int64
	Revenue      decimal.Decimal
}

// NewService creates a new service
func NewService(name, description string, defaultPrice decimal.Decimal) (*Service, error) {
	name = strings.TrimSpace(name)
	if err := validateServiceName(name); err != nil {
		return nil, err
	}
	if defaultPrice.IsNegative() {
		return nil, shared.NewValidationError("Default price cannot be negative")
	}
	return &Service{
		BaseEntity:   shared.NewBaseEntity(),
		Name:         name,
		Description:  description,
		DefaultPrice: defaultPrice,
		Revenue:      decimal.Zero,
	}, nil
}

// Update changes the service's descriptive fields
func (s *Service) Update(name, description string, defaultPrice decimal.Decimal) error {
	name = strings.TrimSpace(name)
	if err := validateServiceName(name); err != nil {
		return err
	}
	if defaultPrice.IsNegative() {
		return shared.NewValidationError("Default price cannot be negative")
	}
	s.Name = name
	s.Description = description
	s.DefaultPrice = defaultPrice
	s.Touch()
	return nil
}

// ApplySale moves TotalSold and Revenue by one sale delta
func (s *Service) ApplySale(amount int64, revenue decimal.Decimal) {
	s.TotalSold += amount
	s.Revenue = s.Revenue.Add(revenue)
	s.Touch()
}

// Profit returns the service's profit, which is its revenue
func (s *Service) Profit() decimal.Decimal {
	return s.Revenue
}

func validateServiceName(name string) error {
	if name == "" {
		return shared.NewValidationError("Service name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewValidationError("Service name cannot exceed 200 characters")
	}
	return nil
}
