package finance

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/finance"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/pos/backend/internal/infrastructure/telemetry"
)

// DebitService manages customer debits over recorded sales
type DebitService struct {
	debitRepo       finance.DebitRepository
	txScope         TransactionScope
	businessMetrics *telemetry.BusinessMetrics
}

// NewDebitService creates a new DebitService
func NewDebitService(debitRepo finance.DebitRepository, txScope TransactionScope) *DebitService {
	return &DebitService{
		debitRepo: debitRepo,
		txScope:   txScope,
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *DebitService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// Create opens a PENDING debit over the given sales. A sale can be on at
// most one debit and cannot be credited for more than its total price.
func (s *DebitService) Create(ctx context.Context, req CreateDebitRequest) (*DebitResponse, error) {
	if len(req.Items) == 0 {
		return nil, shared.NewValidationError("A debit needs at least one item")
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "debit", "create")
	defer span.End()

	var debit *finance.Debit
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		ids := make([]uuid.UUID, 0, len(req.Items))
		seen := make(map[uuid.UUID]struct{}, len(req.Items))
		for _, item := range req.Items {
			if _, dup := seen[item.SellHistoryID]; dup {
				return shared.NewConflictError(fmt.Sprintf("Sale %s is listed more than once", item.SellHistoryID))
			}
			seen[item.SellHistoryID] = struct{}{}
			ids = append(ids, item.SellHistoryID)
		}

		existing, err := repos.DebitItemRepo().FindBySellHistoryIDs(ctx, ids)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return shared.NewConflictError(fmt.Sprintf("Sale %s is already on a debit", existing[0].SellHistoryID))
		}

		// Lock in id order so two debits over the same sales cannot interleave
		sorted := append([]uuid.UUID(nil), ids...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].String() < sorted[j].String() })
		totals := make(map[uuid.UUID]*finance.DebitLine, len(sorted))
		for _, id := range sorted {
			sale, err := repos.SellHistoryRepo().FindByIDForUpdate(ctx, id)
			if err != nil {
				return err
			}
			totals[id] = &finance.DebitLine{SellHistoryID: id, SaleTotalPrice: sale.TotalPrice}
		}

		lines := make([]finance.DebitLine, len(req.Items))
		for i, item := range req.Items {
			line := *totals[item.SellHistoryID]
			line.Amount = item.Amount
			lines[i] = line
		}

		debit, err = finance.NewDebit(req.CustomerName, req.Notes, lines)
		if err != nil {
			return err
		}
		return repos.DebitRepo().Save(ctx, debit)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	response := ToDebitResponse(debit)
	return &response, nil
}

// Update changes a debit's details and, when PaidAmount is given, records
// the cumulative payment and rederives the status
func (s *DebitService) Update(ctx context.Context, id uuid.UUID, req UpdateDebitRequest) (*DebitResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "debit", "update")
	defer span.End()

	var debit *finance.Debit
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		debit, err = repos.DebitRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		debit.UpdateDetails(req.CustomerName, req.Notes)
		if req.PaidAmount != nil {
			if err := debit.SetPaidAmount(*req.PaidAmount); err != nil {
				return err
			}
		}
		return repos.DebitRepo().Save(ctx, debit)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if req.PaidAmount != nil && s.businessMetrics != nil {
		s.businessMetrics.RecordDebitPayment(ctx, debit.Status.String())
	}
	response := ToDebitResponse(debit)
	return &response, nil
}

// RemoveItem takes a sale off its debit. The debit is resummed, its paid
// amount clamped to the new total and its status rederived; a debit left
// without items is deleted.
func (s *DebitService) RemoveItem(ctx context.Context, sellHistoryID uuid.UUID) (*RemoveDebitItemResponse, error) {
	result := &RemoveDebitItemResponse{}
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		item, err := repos.DebitItemRepo().FindBySellHistoryID(ctx, sellHistoryID)
		if err != nil {
			return err
		}
		debit, err := repos.DebitRepo().FindByIDForUpdate(ctx, item.DebitID)
		if err != nil {
			return err
		}
		result.DebitID = debit.ID

		removed, empty, err := debit.RemoveItemForSale(sellHistoryID)
		if err != nil {
			return err
		}
		if err := repos.DebitItemRepo().Delete(ctx, removed.ID); err != nil {
			return err
		}

		if empty {
			result.DebitDeleted = true
			return repos.DebitRepo().Delete(ctx, debit.ID)
		}
		if err := repos.DebitRepo().Save(ctx, debit); err != nil {
			return err
		}
		response := ToDebitResponse(debit)
		result.Debit = &response
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes a debit with all its items; its sales become deletable again
func (s *DebitService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := repos.DebitRepo().FindByIDForUpdate(ctx, id); err != nil {
			return err
		}
		return repos.DebitRepo().Delete(ctx, id)
	})
}

// GetByID retrieves a debit with its items
func (s *DebitService) GetByID(ctx context.Context, id uuid.UUID) (*DebitResponse, error) {
	debit, err := s.debitRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToDebitResponse(debit)
	return &response, nil
}

// List retrieves debits matching the filter
func (s *DebitService) List(ctx context.Context, filter DebitListFilter) ([]DebitResponse, int64, error) {
	domainFilter := finance.DebitFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  "created_at",
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		},
		Status: finance.DebitStatus(filter.Status),
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

	debits, err := s.debitRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.debitRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]DebitResponse, len(debits))
	for i := range debits {
		responses[i] = ToDebitResponse(&debits[i])
	}
	return responses, total, nil
}
