package sales

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/catalog"
	"github.com/pos/backend/internal/domain/sales"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/pos/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
)

// SaleService records, amends and deletes sales while keeping product,
// service and transaction aggregates equal to the sum over their rows
type SaleService struct {
	sellHistoryRepo sales.SellHistoryRepository
	transactionRepo sales.TransactionRepository
	txScope         TransactionScope
	businessMetrics *telemetry.BusinessMetrics
}

// NewSaleService creates a new SaleService
func NewSaleService(
	sellHistoryRepo sales.SellHistoryRepository,
	transactionRepo sales.TransactionRepository,
	txScope TransactionScope,
) *SaleService {
	return &SaleService{
		sellHistoryRepo: sellHistoryRepo,
		transactionRepo: transactionRepo,
		txScope:         txScope,
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *SaleService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// Sell records a single sale
func (s *SaleService) Sell(ctx context.Context, req SellRequest) (*SaleResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sale", "sell")
	defer span.End()

	var row *sales.SellHistory
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		rows, _, err := recordSales(ctx, repos, []SellRequest{req}, false)
		if err != nil {
			return err
		}
		row = rows[0]
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.observeRejection(ctx, err)
		return nil, err
	}

	s.observeSales(ctx, []*sales.SellHistory{row})
	response := ToSaleResponse(row)
	return &response, nil
}

// BulkSell records several lines as one transaction. Stock is checked for
// every line before anything is written, so one short line rejects the batch.
func (s *SaleService) BulkSell(ctx context.Context, req BulkSellRequest) (*TransactionResponse, error) {
	if len(req.Items) == 0 {
		return nil, shared.NewValidationError("A bulk sale needs at least one item")
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "sale", "bulk_sell", telemetry.AttrSaleMode.String("bulk"))
	defer span.End()

	var (
		rows []*sales.SellHistory
		tx   *sales.Transaction
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		rows, tx, err = recordSales(ctx, repos, req.Items, true)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.observeRejection(ctx, err)
		return nil, err
	}

	s.observeSales(ctx, rows)
	values := make([]sales.SellHistory, len(rows))
	for i, row := range rows {
		values[i] = *row
	}
	response := ToTransactionResponse(tx, values)
	return &response, nil
}

// Amend edits a sale's amount, unit price or date and moves the aggregates
// by the difference between the row's old and new contribution
func (s *SaleService) Amend(ctx context.Context, id uuid.UUID, req AmendSaleRequest) (*SaleResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sale", "amend")
	defer span.End()

	var row *sales.SellHistory
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		row, err = repos.SellHistoryRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		target, err := lockItem(ctx, repos, row.Item)
		if err != nil {
			return err
		}

		before := row.Contribution(target.fallbackCost())
		if err := row.Amend(sales.Amendment{
			Amount:    req.Amount,
			SoldPrice: req.SoldPrice,
			CreatedAt: req.CreatedAt,
		}, target.fallbackCost()); err != nil {
			return err
		}
		if err := checkDebitCover(ctx, repos, row); err != nil {
			return err
		}

		delta := row.Contribution(target.fallbackCost()).Sub(before)
		if err := target.apply(ctx, repos, delta); err != nil {
			return err
		}
		if err := repos.SellHistoryRepo().Save(ctx, row); err != nil {
			return err
		}

		if row.TransactionID != nil {
			return resumTransaction(ctx, repos, *row.TransactionID)
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.observeRejection(ctx, err)
		return nil, err
	}

	if s.businessMetrics != nil {
		s.businessMetrics.RecordSaleChange(ctx, telemetry.SaleOperationAmend, string(row.Item.Kind))
	}
	response := ToSaleResponse(row)
	return &response, nil
}

// Delete removes a sale and reverses its whole contribution. A sale that is
// on a debit must be removed from the debit first.
func (s *SaleService) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "sale", "delete")
	defer span.End()

	var kind sales.SaleKind
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		row, err := repos.SellHistoryRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		kind = row.Item.Kind

		onDebit, err := repos.DebitItemRepo().ExistsBySellHistoryID(ctx, row.ID)
		if err != nil {
			return err
		}
		if onDebit {
			return shared.NewConflictError(fmt.Sprintf("Sale %s is on a debit; remove it from the debit first", row.ID))
		}

		target, err := lockItem(ctx, repos, row.Item)
		if err != nil {
			return err
		}
		if err := target.apply(ctx, repos, row.Contribution(target.fallbackCost()).Negate()); err != nil {
			return err
		}
		if err := repos.SellHistoryRepo().Delete(ctx, row.ID); err != nil {
			return err
		}

		if row.TransactionID != nil {
			return resumTransaction(ctx, repos, *row.TransactionID)
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	if s.businessMetrics != nil {
		s.businessMetrics.RecordSaleChange(ctx, telemetry.SaleOperationDelete, string(kind))
	}
	return nil
}

// GetByID retrieves a sale by ID
func (s *SaleService) GetByID(ctx context.Context, id uuid.UUID) (*SaleResponse, error) {
	row, err := s.sellHistoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToSaleResponse(row)
	return &response, nil
}

// List retrieves sales matching the filter
func (s *SaleService) List(ctx context.Context, filter SaleListFilter) ([]SaleResponse, int64, error) {
	domainFilter := sales.SellHistoryFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
		},
		Kind:          sales.SaleKind(filter.Kind),
		ProductID:     filter.ProductID,
		ServiceID:     filter.ServiceID,
		TransactionID: filter.TransactionID,
		From:          filter.From,
		To:            filter.To,
	}
	if domainFilter.Page < 1 {
		domainFilter.Page = 1
	}
	if domainFilter.PageSize < 1 {
		domainFilter.PageSize = 20
	}
	if domainFilter.OrderBy == "" {
		domainFilter.OrderBy = "created_at"
	}
	if domainFilter.OrderDir == "" {
		domainFilter.OrderDir = "desc"
	}

	rows, err := s.sellHistoryRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.sellHistoryRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToSaleResponses(rows), total, nil
}

// GetTransaction retrieves a bulk transaction with its rows
func (s *SaleService) GetTransaction(ctx context.Context, id uuid.UUID) (*TransactionResponse, error) {
	tx, err := s.transactionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	rows, err := s.sellHistoryRepo.FindByTransactionID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToTransactionResponse(tx, rows)
	return &response, nil
}

// ListTransactions retrieves transactions without their rows
func (s *SaleService) ListTransactions(ctx context.Context, filter TransactionListFilter) ([]TransactionResponse, int64, error) {
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  "created_at",
		OrderDir: filter.OrderDir,
	}
	if domainFilter.Page < 1 {
		domainFilter.Page = 1
	}
	if domainFilter.PageSize < 1 {
		domainFilter.PageSize = 20
	}
	if domainFilter.OrderDir == "" {
		domainFilter.OrderDir = "desc"
	}

	txs, err := s.transactionRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.transactionRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]TransactionResponse, len(txs))
	for i := range txs {
		responses[i] = ToTransactionResponse(&txs[i], nil)
	}
	return responses, total, nil
}

func (s *SaleService) observeSales(ctx context.Context, rows []*sales.SellHistory) {
	if s.businessMetrics == nil {
		return
	}
	for _, row := range rows {
		s.businessMetrics.RecordSale(ctx, string(row.Item.Kind), row.Amount, row.TotalPrice)
	}
}

func (s *SaleService) observeRejection(ctx context.Context, err error) {
	if s.businessMetrics != nil && errors.Is(err, shared.ErrInsufficientStock) {
		s.businessMetrics.RecordStockRejection(ctx)
	}
}

// recordSales writes the rows for lines. Every referenced product and
// service is locked in id order and every product's summed demand is
// checked against stock before the first aggregate moves.
func recordSales(ctx context.Context, repos TransactionalRepositories, lines []SellRequest, bulk bool) ([]*sales.SellHistory, *sales.Transaction, error) {
	demand := make(map[uuid.UUID]int64)
	serviceIDs := make(map[uuid.UUID]struct{})
	for i, line := range lines {
		ref, err := line.itemRef()
		if err != nil {
			return nil, nil, lineError(i, len(lines), err)
		}
		if line.Amount <= 0 {
			return nil, nil, lineError(i, len(lines), shared.NewValidationError("Amount must be a positive integer"))
		}
		if !line.SoldPrice.IsPositive() {
			return nil, nil, lineError(i, len(lines), shared.NewValidationError("Sold price must be greater than zero"))
		}
		if ref.IsProduct() {
			demand[ref.ID] += line.Amount
		} else {
			serviceIDs[ref.ID] = struct{}{}
		}
	}

	products := make(map[uuid.UUID]*catalog.Product, len(demand))
	for _, id := range sortedIDs(demand) {
		product, err := repos.ProductRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		if !product.HasStock(demand[id]) {
			return nil, nil, shared.NewInsufficientStockError(fmt.Sprintf(
				"Insufficient stock for product %q: available %d, requested %d", product.Name, product.Quantity, demand[id]))
		}
		products[id] = product
	}

	services := make(map[uuid.UUID]*catalog.Service, len(serviceIDs))
	for _, id := range sortedIDs(serviceIDs) {
		service, err := repos.ServiceRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		services[id] = service
	}

	var tx *sales.Transaction
	if bulk {
		tx = sales.NewTransaction()
	}

	rows := make([]*sales.SellHistory, 0, len(lines))
	contributions := make([]sales.Contribution, 0, len(lines))
	for _, line := range lines {
		ref, _ := line.itemRef()

		var (
			row *sales.SellHistory
			err error
		)
		if ref.IsProduct() {
			product := products[ref.ID]
			row, err = sales.NewProductSale(product.ID, line.Amount, line.SoldPrice, product.InitialPrice)
			if err != nil {
				return nil, nil, err
			}
			if err := row.Contribution(product.InitialPrice).ApplyToProduct(product); err != nil {
				return nil, nil, err
			}
			contributions = append(contributions, row.Contribution(product.InitialPrice))
		} else {
			service := services[ref.ID]
			row, err = sales.NewServiceSale(service.ID, line.Amount, line.SoldPrice)
			if err != nil {
				return nil, nil, err
			}
			row.Contribution(decimal.Zero).ApplyToService(service)
			contributions = append(contributions, row.Contribution(decimal.Zero))
		}
		if tx != nil {
			row.AttachTo(tx.ID)
		}
		rows = append(rows, row)
	}

	for _, id := range sortedIDs(demand) {
		if err := repos.ProductRepo().Save(ctx, products[id]); err != nil {
			return nil, nil, err
		}
	}
	for _, id := range sortedIDs(serviceIDs) {
		if err := repos.ServiceRepo().Save(ctx, services[id]); err != nil {
			return nil, nil, err
		}
	}

	if tx != nil {
		tx.Recalculate(contributions)
		if err := repos.TransactionRepo().Save(ctx, tx); err != nil {
			return nil, nil, err
		}
	}
	if err := repos.SellHistoryRepo().SaveBatch(ctx, rows); err != nil {
		return nil, nil, err
	}

	return rows, tx, nil
}

// resumTransaction recomputes a transaction's totals from its remaining
// rows, deleting the transaction when none are left
func resumTransaction(ctx context.Context, repos TransactionalRepositories, id uuid.UUID) error {
	tx, err := repos.TransactionRepo().FindByIDForUpdate(ctx, id)
	if err != nil {
		return err
	}
	rows, err := repos.SellHistoryRepo().FindByTransactionID(ctx, id)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return repos.TransactionRepo().Delete(ctx, id)
	}

	costs, err := fallbackCosts(ctx, repos, rows)
	if err != nil {
		return err
	}
	contributions := make([]sales.Contribution, len(rows))
	for i := range rows {
		contributions[i] = rows[i].Contribution(costs[rows[i].Item.ID])
	}
	tx.Recalculate(contributions)
	return repos.TransactionRepo().Save(ctx, tx)
}

// fallbackCosts loads the current cost of products whose rows carry no
// cost snapshot
func fallbackCosts(ctx context.Context, repos TransactionalRepositories, rows []sales.SellHistory) (map[uuid.UUID]decimal.Decimal, error) {
	var ids []uuid.UUID
	for _, row := range rows {
		if row.Item.IsProduct() && row.InitialPrice == nil {
			ids = append(ids, row.Item.ID)
		}
	}
	costs := make(map[uuid.UUID]decimal.Decimal, len(ids))
	if len(ids) == 0 {
		return costs, nil
	}
	products, err := repos.ProductRepo().FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		costs[p.ID] = p.InitialPrice
	}
	return costs, nil
}

// checkDebitCover refuses an edit that would leave a sale worth less than
// the amount credited for it on a debit
func checkDebitCover(ctx context.Context, repos TransactionalRepositories, row *sales.SellHistory) error {
	item, err := repos.DebitItemRepo().FindBySellHistoryID(ctx, row.ID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	if row.TotalPrice.LessThan(item.Amount) {
		return shared.NewValidationError(fmt.Sprintf(
			"Sale total %s cannot drop below its debit amount %s",
			row.TotalPrice.StringFixed(2), item.Amount.StringFixed(2)))
	}
	return nil
}

// lockedItem is the locked product or service behind a sale row
type lockedItem struct {
	product *catalog.Product
	service *catalog.Service
}

func lockItem(ctx context.Context, repos TransactionalRepositories, ref sales.ItemRef) (*lockedItem, error) {
	if ref.IsProduct() {
		product, err := repos.ProductRepo().FindByIDForUpdate(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		return &lockedItem{product: product}, nil
	}
	service, err := repos.ServiceRepo().FindByIDForUpdate(ctx, ref.ID)
	if err != nil {
		return nil, err
	}
	return &lockedItem{service: service}, nil
}

func (l *lockedItem) fallbackCost() decimal.Decimal {
	if l.product != nil {
		return l.product.InitialPrice
	}
	return decimal.Zero
}

func (l *lockedItem) apply(ctx context.Context, repos TransactionalRepositories, delta sales.Contribution) error {
	if delta.IsZero() {
		return nil
	}
	if l.product != nil {
		if err := delta.ApplyToProduct(l.product); err != nil {
			return err
		}
		return repos.ProductRepo().Save(ctx, l.product)
	}
	delta.ApplyToService(l.service)
	return repos.ServiceRepo().Save(ctx, l.service)
}

func (r SellRequest) itemRef() (sales.ItemRef, error) {
	switch {
	case r.ProductID != nil && r.ServiceID != nil:
		return sales.ItemRef{}, shared.NewValidationError("A sale references either a product or a service, not both")
	case r.ProductID != nil:
		return sales.ProductRef(*r.ProductID), nil
	case r.ServiceID != nil:
		return sales.ServiceRef(*r.ServiceID), nil
	default:
		return sales.ItemRef{}, shared.NewValidationError("A sale needs a product_id or a service_id")
	}
}

func lineError(index, count int, err error) error {
	if count == 1 {
		return err
	}
	var de *shared.DomainError
	if errors.As(err, &de) {
		return shared.NewDomainError(de.Code, fmt.Sprintf("Item %d: %s", index+1, de.Message))
	}
	return err
}

func sortedIDs[V any](m map[uuid.UUID]V) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}
