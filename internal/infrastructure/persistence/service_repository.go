package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/catalog"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/pos/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormServiceRepository implements ServiceRepository using GORM
type GormServiceRepository struct {
	db *gorm.DB
}

// NewGormServiceRepository creates a new GormServiceRepository
func NewGormServiceRepository(db *gorm.DB) *GormServiceRepository {
	return &GormServiceRepository{db: db}
}

// FindByID finds a service by its ID
func (r *GormServiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Service, error) {
	return r.findOne(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate loads a service with a row lock
func (r *GormServiceRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*catalog.Service, error) {
	return r.findOne(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormServiceRepository) findOne(db *gorm.DB, id uuid.UUID) (*catalog.Service, error) {
	var model models.ServiceModel
	if err := db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all services matching the filter
func (r *GormServiceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Service, error) {
	var rows []models.ServiceModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ServiceModel{}), filter)
	query = applyPagination(query, filter, ServiceSortFields, "name")

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	services := make([]catalog.Service, len(rows))
	for i := range rows {
		services[i] = *rows[i].ToDomain()
	}
	return services, nil
}

// Count counts services matching the filter
func (r *GormServiceRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ServiceModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a service
func (r *GormServiceRepository) Save(ctx context.Context, service *catalog.Service) error {
	model := models.ServiceModelFromDomain(service)
	return translateError(r.db.WithContext(ctx).Save(model).Error, "Service could not be saved")
}

// Delete deletes a service
func (r *GormServiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ServiceModel{}, "id = ?", id)
	if result.Error != nil {
		return translateError(result.Error, "Service has recorded sales")
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormServiceRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	return query
}

var _ catalog.ServiceRepository = (*GormServiceRepository)(nil)
