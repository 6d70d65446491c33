package sales

import (
	"github.com/pos/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// Contribution is the share of a product's or service's aggregates owed to
// sale rows. The engine keeps aggregates consistent by applying the
// difference between a row's contribution before and after each change.
type Contribution struct {
	Amount  int64
	Revenue decimal.Decimal
	Profit  decimal.Decimal
}

// Add returns c + o
func (c Contribution) Add(o Contribution) Contribution {
	return Contribution{
		Amount:  c.Amount + o.Amount,
		Revenue: c.Revenue.Add(o.Revenue),
		Profit:  c.Profit.Add(o.Profit),
	}
}

// Sub returns c - o
func (c Contribution) Sub(o Contribution) Contribution {
	return Contribution{
		Amount:  c.Amount - o.Amount,
		Revenue: c.Revenue.Sub(o.Revenue),
		Profit:  c.Profit.Sub(o.Profit),
	}
}

// Negate returns -c
func (c Contribution) Negate() Contribution {
	return Contribution{}.Sub(c)
}

// IsZero reports whether applying c changes nothing
func (c Contribution) IsZero() bool {
	return c.Amount == 0 && c.Revenue.IsZero() && c.Profit.IsZero()
}

// ApplyToProduct moves the product's aggregates by c
func (c Contribution) ApplyToProduct(p *catalog.Product) error {
	return p.ApplySale(c.Amount, c.Revenue, c.Profit)
}

// ApplyToService moves the service's aggregates by c. Profit is not stored
// on services.
func (c Contribution) ApplyToService(s *catalog.Service) {
	s.ApplySale(c.Amount, c.Revenue)
}
