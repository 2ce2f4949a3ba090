// Package pricing computes cart and order amounts in exact decimal
// arithmetic, rounded to cents half away from zero.
package pricing

import "github.com/shopspring/decimal"

// TaxRate is the flat sales tax percentage applied to every purchase.
const TaxRate = 8.25

var (
	hundred = decimal.NewFromInt(100)
	taxRate = decimal.NewFromFloat(TaxRate).Div(hundred)
)

type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int64
}

type Breakdown struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

func roundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Price is the list price in cents precision. Cart and order amounts are
// always computed from it.
func Price(price float64) decimal.Decimal {
	return roundCents(decimal.NewFromFloat(price))
}

// SalePrice is the advertised price with the sale percentage taken off. It is
// shown in the catalog only and never charged.
func SalePrice(price float64, salePercentage *float64) decimal.Decimal {
	p := decimal.NewFromFloat(price)
	if salePercentage == nil || *salePercentage <= 0 {
		return roundCents(p)
	}

	off := decimal.NewFromFloat(*salePercentage).Div(hundred)
	return roundCents(p.Mul(decimal.NewFromInt(1).Sub(off)))
}

func Subtotal(lines []Line) decimal.Decimal {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt(line.Quantity)))
	}

	return roundCents(subtotal)
}

// CartTotal is the subtotal with tax applied.
func CartTotal(lines []Line) decimal.Decimal {
	return roundCents(Subtotal(lines).Mul(decimal.NewFromInt(1).Add(taxRate)))
}

// Compute prices an order. discountPercentage may be nil when no code was
// applied. The discount is clamped so that the total never goes negative.
func Compute(lines []Line, discountPercentage *float64) Breakdown {
	b := Breakdown{Subtotal: Subtotal(lines)}
	b.Tax = roundCents(b.Subtotal.Mul(taxRate))
	b.Discount = decimal.Zero

	if discountPercentage != nil {
		b.Discount = roundCents(b.Subtotal.Mul(decimal.NewFromFloat(*discountPercentage)).Div(hundred))
	}

	gross := b.Subtotal.Add(b.Tax)
	if b.Discount.GreaterThan(gross) {
		b.Discount = gross
	}
	if b.Discount.IsNegative() {
		b.Discount = decimal.Zero
	}

	b.Total = gross.Sub(b.Discount)

	return b
}

func ToFloat(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}
