package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/catalog"
	"github.com/pos/backend/internal/domain/sales"
	"github.com/pos/backend/internal/domain/shared"
)

// ServiceCatalogService manages sellable services
type ServiceCatalogService struct {
	serviceRepo     catalog.ServiceRepository
	sellHistoryRepo sales.SellHistoryRepository
}

// NewServiceCatalogService creates a new ServiceCatalogService
func NewServiceCatalogService(serviceRepo catalog.ServiceRepository, sellHistoryRepo sales.SellHistoryRepository) *ServiceCatalogService {
	return &ServiceCatalogService{
		serviceRepo:     serviceRepo,
		sellHistoryRepo: sellHistoryRepo,
	}
}

// Create creates a new service
func (s *ServiceCatalogService) Create(ctx context.Context, req CreateServiceRequest) (*ServiceResponse, error) {
	service, err := catalog.NewService(req.Name, req.Description, req.DefaultPrice)
	if err != nil {
		return nil, err
	}
	if err := s.serviceRepo.Save(ctx, service); err != nil {
		return nil, err
	}
	response := ToServiceResponse(service)
	return &response, nil
}

// GetByID retrieves a service by ID
func (s *ServiceCatalogService) GetByID(ctx context.Context, id uuid.UUID) (*ServiceResponse, error) {
	service, err := s.serviceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToServiceResponse(service)
	return &response, nil
}

// List retrieves a paginated list of services ordered by name
func (s *ServiceCatalogService) List(ctx context.Context, filter ServiceListFilter) ([]ServiceResponse, int64, error) {
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  "name",
		OrderDir: "asc",
		Search:   filter.Search,
	}
	if domainFilter.Page < 1 {
		domainFilter.Page = 1
	}
	if domainFilter.PageSize < 1 {
		domainFilter.PageSize = 20
	}

	services, err := s.serviceRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.serviceRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ServiceResponse, len(services))
	for i := range services {
		responses[i] = ToServiceResponse(&services[i])
	}
	return responses, total, nil
}

// Update updates a service's name, description and default price
func (s *ServiceCatalogService) Update(ctx context.Context, id uuid.UUID, req UpdateServiceRequest) (*ServiceResponse, error) {
	service, err := s.serviceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name := service.Name
	if req.Name != nil {
		name = *req.Name
	}
	description := service.Description
	if req.Description != nil {
		description = *req.Description
	}
	price := service.DefaultPrice
	if req.DefaultPrice != nil {
		price = *req.DefaultPrice
	}
	if err := service.Update(name, description, price); err != nil {
		return nil, err
	}

	if err := s.serviceRepo.Save(ctx, service); err != nil {
		return nil, err
	}
	response := ToServiceResponse(service)
	return &response, nil
}

// Delete deletes a service that has never been sold
func (s *ServiceCatalogService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.serviceRepo.FindByID(ctx, id); err != nil {
		return err
	}
	used, err := s.sellHistoryRepo.ExistsForItem(ctx, sales.ServiceRef(id))
	if err != nil {
		return err
	}
	if used {
		return shared.NewConflictError("Service has recorded sales; delete its sales first")
	}
	return s.serviceRepo.Delete(ctx, id)
}
