package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/finance"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/pos/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormDebitRepository implements DebitRepository using GORM. Items are
// stored in debit_items and always loaded with their debit.
type GormDebitRepository struct {
	db *gorm.DB
}

// NewGormDebitRepository creates a new GormDebitRepository
func NewGormDebitRepository(db *gorm.DB) *GormDebitRepository {
	return &GormDebitRepository{db: db}
}

// FindByID finds a debit with its items
func (r *GormDebitRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Debit, error) {
	return r.findOne(ctx, r.db.WithContext(ctx), id)
}

// FindByIDForUpdate loads a debit with a row lock on the debit
func (r *GormDebitRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*finance.Debit, error) {
	return r.findOne(ctx, r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormDebitRepository) findOne(ctx context.Context, db *gorm.DB, id uuid.UUID) (*finance.Debit, error) {
	var model models.DebitModel
	if err := db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	items, err := r.loadItems(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	return model.ToDomain(items[id]), nil
}

// FindAll finds debits matching the filter, with their items
func (r *GormDebitRepository) FindAll(ctx context.Context, filter finance.DebitFilter) ([]finance.Debit, error) {
	var rows []models.DebitModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.DebitModel{}), filter)
	query = applyPagination(query, filter.Filter, DebitSortFields, "created_at")
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(rows))
	for i := range rows {
		ids[i] = rows[i].ID
	}
	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}

	debits := make([]finance.Debit, len(rows))
	for i := range rows {
		debits[i] = *rows[i].ToDomain(items[rows[i].ID])
	}
	return debits, nil
}

// Count counts debits matching the filter
func (r *GormDebitRepository) Count(ctx context.Context, filter finance.DebitFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.DebitModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save upserts the debit and inserts any items not yet stored. Items are
// immutable once written; removal goes through DebitItemRepository.Delete.
func (r *GormDebitRepository) Save(ctx context.Context, debit *finance.Debit) error {
	db := r.db.WithContext(ctx)
	if err := db.Save(models.DebitModelFromDomain(debit)).Error; err != nil {
		return err
	}
	if len(debit.Items) == 0 {
		return nil
	}
	items := make([]*models.DebitItemModel, len(debit.Items))
	for i := range debit.Items {
		items[i] = &models.DebitItemModel{}
		items[i].FromDomain(&debit.Items[i])
	}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(items).Error
	return translateError(err, "Sale is already on a debit")
}

// Delete deletes a debit together with its items
func (r *GormDebitRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("debit_id = ?", id).Delete(&models.DebitItemModel{}).Error; err != nil {
		return err
	}
	result := db.Delete(&models.DebitModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// OutstandingTotal sums total - paid over debits that are not fully paid
func (r *GormDebitRepository) OutstandingTotal(ctx context.Context) (decimal.Decimal, error) {
	var result struct {
		Outstanding decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.DebitModel{}).
		Select("COALESCE(SUM(total_amount - paid_amount), 0) AS outstanding").
		Where("status <> ?", string(finance.DebitStatusPaid)).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Outstanding, nil
}

func (r *GormDebitRepository) loadItems(ctx context.Context, debitIDs []uuid.UUID) (map[uuid.UUID][]models.DebitItemModel, error) {
	grouped := make(map[uuid.UUID][]models.DebitItemModel, len(debitIDs))
	if len(debitIDs) == 0 {
		return grouped, nil
	}
	var items []models.DebitItemModel
	if err := r.db.WithContext(ctx).
		Where("debit_id IN ?", debitIDs).
		Order("created_at ASC, id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	for _, item := range items {
		grouped[item.DebitID] = append(grouped[item.DebitID], item)
	}
	return grouped, nil
}

func (r *GormDebitRepository) applyFilter(query *gorm.DB, filter finance.DebitFilter) *gorm.DB {
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.Search != "" {
		query = query.Where("LOWER(customer_name) LIKE ?", likePattern(filter.Search))
	}
	return query
}

// GormDebitItemRepository implements DebitItemRepository using GORM
type GormDebitItemRepository struct {
	db *gorm.DB
}

// NewGormDebitItemRepository creates a new GormDebitItemRepository
func NewGormDebitItemRepository(db *gorm.DB) *GormDebitItemRepository {
	return &GormDebitItemRepository{db: db}
}

// FindBySellHistoryID finds the item crediting a sale
func (r *GormDebitItemRepository) FindBySellHistoryID(ctx context.Context, sellHistoryID uuid.UUID) (*finance.DebitItem, error) {
	var model models.DebitItemModel
	if err := r.db.WithContext(ctx).First(&model, "sell_history_id = ?", sellHistoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySellHistoryIDs finds the items crediting any of the given sales
func (r *GormDebitItemRepository) FindBySellHistoryIDs(ctx context.Context, sellHistoryIDs []uuid.UUID) ([]finance.DebitItem, error) {
	if len(sellHistoryIDs) == 0 {
		return []finance.DebitItem{}, nil
	}
	var rows []models.DebitItemModel
	if err := r.db.WithContext(ctx).Where("sell_history_id IN ?", sellHistoryIDs).Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]finance.DebitItem, len(rows))
	for i := range rows {
		items[i] = *rows[i].ToDomain()
	}
	return items, nil
}

// ExistsBySellHistoryID reports whether a sale is on a debit
func (r *GormDebitItemRepository) ExistsBySellHistoryID(ctx context.Context, sellHistoryID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.DebitItemModel{}).
		Where("sell_history_id = ?", sellHistoryID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Delete deletes a debit item
func (r *GormDebitItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.DebitItemModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var (
	_ finance.DebitRepository     = (*GormDebitRepository)(nil)
	_ finance.DebitItemRepository = (*GormDebitItemRepository)(nil)
)
