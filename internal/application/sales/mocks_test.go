package sales

import (
	"context"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/catalog"
	"github.com/pos/backend/internal/domain/finance"
	"github.com/pos/backend/internal/domain/sales"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) SaveBatch(ctx context.Context, products []*catalog.Product) error {
	args := m.Called(ctx, products)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockServiceRepository is a mock implementation of catalog.ServiceRepository
type MockServiceRepository struct {
	mock.Mock
}

func (m *MockServiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Service), args.Error(1)
}

func (m *MockServiceRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*catalog.Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Service), args.Error(1)
}

func (m *MockServiceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Service, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Service), args.Error(1)
}

func (m *MockServiceRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockServiceRepository) Save(ctx context.Context, service *catalog.Service) error {
	args := m.Called(ctx, service)
	return args.Error(0)
}

func (m *MockServiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockSellHistoryRepository is a mock implementation of sales.SellHistoryRepository
type MockSellHistoryRepository struct {
	mock.Mock
}

func (m *MockSellHistoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.SellHistory, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.SellHistory), args.Error(1)
}

func (m *MockSellHistoryRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*sales.SellHistory, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.SellHistory), args.Error(1)
}

func (m *MockSellHistoryRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]sales.SellHistory, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]sales.SellHistory), args.Error(1)
}

func (m *MockSellHistoryRepository) FindByTransactionID(ctx context.Context, transactionID uuid.UUID) ([]sales.SellHistory, error) {
	args := m.Called(ctx, transactionID)
	return args.Get(0).([]sales.SellHistory), args.Error(1)
}

func (m *MockSellHistoryRepository) FindAll(ctx context.Context, filter sales.SellHistoryFilter) ([]sales.SellHistory, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]sales.SellHistory), args.Error(1)
}

func (m *MockSellHistoryRepository) Count(ctx context.Context, filter sales.SellHistoryFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSellHistoryRepository) Save(ctx context.Context, sale *sales.SellHistory) error {
	args := m.Called(ctx, sale)
	return args.Error(0)
}

func (m *MockSellHistoryRepository) SaveBatch(ctx context.Context, rows []*sales.SellHistory) error {
	args := m.Called(ctx, rows)
	return args.Error(0)
}

func (m *MockSellHistoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSellHistoryRepository) ExistsForItem(ctx context.Context, item sales.ItemRef) (bool, error) {
	args := m.Called(ctx, item)
	return args.Bool(0), args.Error(1)
}

// MockTransactionRepository is a mock implementation of sales.TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*sales.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]sales.Transaction, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]sales.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransactionRepository) Save(ctx context.Context, tx *sales.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockDebitItemRepository is a mock implementation of finance.DebitItemRepository
type MockDebitItemRepository struct {
	mock.Mock
}

func (m *MockDebitItemRepository) FindBySellHistoryID(ctx context.Context, sellHistoryID uuid.UUID) (*finance.DebitItem, error) {
	args := m.Called(ctx, sellHistoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.DebitItem), args.Error(1)
}

func (m *MockDebitItemRepository) FindBySellHistoryIDs(ctx context.Context, sellHistoryIDs []uuid.UUID) ([]finance.DebitItem, error) {
	args := m.Called(ctx, sellHistoryIDs)
	return args.Get(0).([]finance.DebitItem), args.Error(1)
}

func (m *MockDebitItemRepository) ExistsBySellHistoryID(ctx context.Context, sellHistoryID uuid.UUID) (bool, error) {
	args := m.Called(ctx, sellHistoryID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDebitItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type testRepos struct {
	products     *MockProductRepository
	services     *MockServiceRepository
	sellHistory  *MockSellHistoryRepository
	transactions *MockTransactionRepository
	debitItems   *MockDebitItemRepository
}

func newTestService() (*SaleService, *testRepos) {
	r := &testRepos{
		products:     new(MockProductRepository),
		services:     new(MockServiceRepository),
		sellHistory:  new(MockSellHistoryRepository),
		transactions: new(MockTransactionRepository),
		debitItems:   new(MockDebitItemRepository),
	}
	scope := NewNoOpTransactionScope(r.products, r.services, r.sellHistory, r.transactions, r.debitItems)
	return NewSaleService(r.sellHistory, r.transactions, scope), r
}
