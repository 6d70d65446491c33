package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/sales"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/pos/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSellHistoryRepository implements SellHistoryRepository using GORM
type GormSellHistoryRepository struct {
	db *gorm.DB
}

// NewGormSellHistoryRepository creates a new GormSellHistoryRepository
func NewGormSellHistoryRepository(db *gorm.DB) *GormSellHistoryRepository {
	return &GormSellHistoryRepository{db: db}
}

// FindByID finds a sale by its ID
func (r *GormSellHistoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.SellHistory, error) {
	return r.findOne(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate loads a sale with a row lock
func (r *GormSellHistoryRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*sales.SellHistory, error) {
	return r.findOne(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormSellHistoryRepository) findOne(db *gorm.DB, id uuid.UUID) (*sales.SellHistory, error) {
	var model models.SellHistoryModel
	if err := db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs finds multiple sales by their IDs
func (r *GormSellHistoryRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]sales.SellHistory, error) {
	if len(ids) == 0 {
		return []sales.SellHistory{}, nil
	}
	var rows []models.SellHistoryModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return sellHistoriesToDomain(rows), nil
}

// FindByTransactionID returns every sale of a bulk transaction, oldest first
func (r *GormSellHistoryRepository) FindByTransactionID(ctx context.Context, transactionID uuid.UUID) ([]sales.SellHistory, error) {
	var rows []models.SellHistoryModel
	if err := r.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return sellHistoriesToDomain(rows), nil
}

// FindAll finds all sales matching the filter
func (r *GormSellHistoryRepository) FindAll(ctx context.Context, filter sales.SellHistoryFilter) ([]sales.SellHistory, error) {
	var rows []models.SellHistoryModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.SellHistoryModel{}), filter)
	query = applyPagination(query, filter.Filter, SellHistorySortFields, "created_at")

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return sellHistoriesToDomain(rows), nil
}

// Count counts sales matching the filter
func (r *GormSellHistoryRepository) Count(ctx context.Context, filter sales.SellHistoryFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.SellHistoryModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a sale
func (r *GormSellHistoryRepository) Save(ctx context.Context, sale *sales.SellHistory) error {
	model := models.SellHistoryModelFromDomain(sale)
	return translateError(r.db.WithContext(ctx).Save(model).Error, "Sale could not be saved")
}

// SaveBatch inserts the sales of one bulk sell
func (r *GormSellHistoryRepository) SaveBatch(ctx context.Context, batch []*sales.SellHistory) error {
	if len(batch) == 0 {
		return nil
	}
	rows := make([]*models.SellHistoryModel, len(batch))
	for i, s := range batch {
		rows[i] = models.SellHistoryModelFromDomain(s)
	}
	err := r.db.WithContext(ctx).CreateInBatches(rows, 100).Error
	return translateError(err, "Sales could not be saved")
}

// Delete deletes a sale
func (r *GormSellHistoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.SellHistoryModel{}, "id = ?", id)
	if result.Error != nil {
		return translateError(result.Error, "Remove the sale from its debit first")
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ExistsForItem reports whether any sale references the product or service
func (r *GormSellHistoryRepository) ExistsForItem(ctx context.Context, item sales.ItemRef) (bool, error) {
	column := "service_id"
	if item.IsProduct() {
		column = "product_id"
	}
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.SellHistoryModel{}).
		Where(column+" = ?", item.ID).
		Limit(1).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies kind, item, transaction and date range filters.
// The date range is half-open: [From, To).
func (r *GormSellHistoryRepository) applyFilter(query *gorm.DB, filter sales.SellHistoryFilter) *gorm.DB {
	if filter.Kind != "" {
		query = query.Where("kind = ?", string(filter.Kind))
	}
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.ServiceID != nil {
		query = query.Where("service_id = ?", *filter.ServiceID)
	}
	if filter.TransactionID != nil {
		query = query.Where("transaction_id = ?", *filter.TransactionID)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", *filter.To)
	}
	return query
}

func sellHistoriesToDomain(rows []models.SellHistoryModel) []sales.SellHistory {
	out := make([]sales.SellHistory, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

var _ sales.SellHistoryRepository = (*GormSellHistoryRepository)(nil)
