package finance

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DebitStatus represents how much of a debit has been paid
type DebitStatus string

const (
	DebitStatusPending DebitStatus = "PENDING"
	DebitStatusPartial DebitStatus = "PARTIAL"
	DebitStatusPaid    DebitStatus = "PAID"
)

// IsValid checks if the status is a valid DebitStatus
func (s DebitStatus) IsValid() bool {
	switch s {
	case DebitStatusPending, DebitStatusPartial, DebitStatusPaid:
		return true
	}
	return false
}

// String returns the string representation of DebitStatus
func (s DebitStatus) String() string {
	return string(s)
}

// DeriveDebitStatus applies the status rule. The checks run in this order:
// fully paid, then anything paid, then nothing paid.
func DeriveDebitStatus(paid, total decimal.Decimal) DebitStatus {
	switch {
	case paid.GreaterThanOrEqual(total):
		return DebitStatusPaid
	case paid.IsPositive():
		return DebitStatusPartial
	default:
		return DebitStatusPending
	}
}

// DebitItem places (part of) one sale on credit. A sale has at most one item.
type DebitItem struct {
	shared.BaseEntity
	DebitID       uuid.UUID
	SellHistoryID uuid.UUID
	Amount        decimal.Decimal
}

// DebitLine is the input for one debit item, together with the total price of
// the sale it refers to
type DebitLine struct {
	SellHistoryID  uuid.UUID
	Amount         decimal.Decimal
	SaleTotalPrice decimal.Decimal
}

// Debit is a customer's deferred or partial payment over one or more sales
type Debit struct {
	shared.BaseEntity
	CustomerName *string
	Notes        *string
	TotalAmount  decimal.Decimal
	PaidAmount   decimal.Decimal
	Status       DebitStatus
	PaidAt       *time.Time
	Items        []DebitItem
}

// NewDebit creates a PENDING debit over the given lines
func NewDebit(customerName, notes *string, lines []DebitLine) (*Debit, error) {
	if len(lines) == 0 {
		return nil, shared.NewValidationError("A debit needs at least one item")
	}

	debit := &Debit{
		BaseEntity:   shared.NewBaseEntity(),
		CustomerName: normalizeOptional(customerName),
		Notes:        normalizeOptional(notes),
		PaidAmount:   decimal.Zero,
		Status:       DebitStatusPending,
		Items:        make([]DebitItem, 0, len(lines)),
	}

	seen := make(map[uuid.UUID]struct{}, len(lines))
	for _, line := range lines {
		if _, dup := seen[line.SellHistoryID]; dup {
			return nil, shared.NewConflictError(fmt.Sprintf("Sale %s is listed more than once", line.SellHistoryID))
		}
		seen[line.SellHistoryID] = struct{}{}

		if !line.Amount.IsPositive() {
			return nil, shared.NewValidationError(fmt.Sprintf("Debit amount for sale %s must be greater than zero", line.SellHistoryID))
		}
		if line.Amount.GreaterThan(line.SaleTotalPrice) {
			return nil, shared.NewValidationError(fmt.Sprintf(
				"Debit amount %s for sale %s exceeds its total price %s",
				line.Amount.StringFixed(2), line.SellHistoryID, line.SaleTotalPrice.StringFixed(2)))
		}

		debit.Items = append(debit.Items, DebitItem{
			BaseEntity:    shared.NewBaseEntity(),
			DebitID:       debit.ID,
			SellHistoryID: line.SellHistoryID,
			Amount:        line.Amount,
		})
	}
	debit.TotalAmount = debit.itemsTotal()

	return debit, nil
}

// UpdateDetails replaces the customer name and notes when given
func (d *Debit) UpdateDetails(customerName, notes *string) {
	if customerName != nil {
		d.CustomerName = normalizeOptional(customerName)
	}
	if notes != nil {
		d.Notes = normalizeOptional(notes)
	}
	d.Touch()
}

// SetPaidAmount records the cumulative amount paid so far
func (d *Debit) SetPaidAmount(paid decimal.Decimal) error {
	if paid.IsNegative() {
		return shared.NewValidationError("Paid amount cannot be negative")
	}
	if paid.GreaterThan(d.TotalAmount) {
		return shared.NewValidationError(fmt.Sprintf(
			"Paid amount %s exceeds total amount %s", paid.StringFixed(2), d.TotalAmount.StringFixed(2)))
	}
	d.PaidAmount = paid
	d.refreshStatus()
	return nil
}

// RemoveItemForSale drops the item of the given sale, resums the total,
// clamps the paid amount and rederives the status. It returns the removed
// item and whether the debit has no items left.
func (d *Debit) RemoveItemForSale(sellHistoryID uuid.UUID) (*DebitItem, bool, error) {
	idx := -1
	for i := range d.Items {
		if d.Items[i].SellHistoryID == sellHistoryID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, false, shared.NewNotFoundError(fmt.Sprintf("Sale %s is not on this debit", sellHistoryID))
	}

	removed := d.Items[idx]
	d.Items = append(d.Items[:idx], d.Items[idx+1:]...)

	d.TotalAmount = d.itemsTotal()
	if d.PaidAmount.GreaterThan(d.TotalAmount) {
		d.PaidAmount = d.TotalAmount
	}
	d.refreshStatus()

	return &removed, len(d.Items) == 0, nil
}

// RemainingAmount returns what is still owed
func (d *Debit) RemainingAmount() decimal.Decimal {
	return d.TotalAmount.Sub(d.PaidAmount)
}

// IsPaid reports whether the debit is settled
func (d *Debit) IsPaid() bool {
	return d.Status == DebitStatusPaid
}

// refreshStatus rederives Status from PaidAmount and TotalAmount. PaidAt is
// set the first time the debit is paid and survives later re-saves; it is
// cleared only when nothing is paid any more.
func (d *Debit) refreshStatus() {
	d.Status = DeriveDebitStatus(d.PaidAmount, d.TotalAmount)
	switch {
	case d.PaidAmount.IsZero():
		d.PaidAt = nil
	case d.IsPaid() && d.PaidAt == nil:
		now := time.Now()
		d.PaidAt = &now
	}
	d.Touch()
}

func (d *Debit) itemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range d.Items {
		total = total.Add(item.Amount)
	}
	return total
}

func normalizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
