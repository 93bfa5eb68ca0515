package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Aggregates are the invoice-level totals folded from normalized lines.
type Aggregates struct {
	Subtotal      decimal.Decimal
	TotalDiscount decimal.Decimal
	NetTotal      decimal.Decimal
	TotalCost     decimal.Decimal
	Profit        decimal.Decimal
}

// BuildAggregates folds lines into invoice totals. A line with no market
// price contributes 0 to the subtotal; a line with no cost contributes 0 to
// total cost.
//
// Card sales do not participate in cash-discount promotions: when cardInfo is
// non-empty the aggregate discount is forced to zero. Stored line-level
// discounts are untouched so history stays accurate.
func BuildAggregates(lines []Line, cardInfo string) Aggregates {
	subtotal := decimal.Zero
	discount := decimal.Zero
	cost := decimal.Zero

	for _, line := range lines {
		if line.UnitMarketPrice != nil {
			subtotal = subtotal.Add(line.Quantity.Mul(*line.UnitMarketPrice))
		}
		discount = discount.Add(line.PerUnitDiscount.Mul(line.Quantity))
		if line.UnitCost != nil {
			cost = cost.Add(line.Quantity.Mul(*line.UnitCost))
		}
	}

	if strings.TrimSpace(cardInfo) != "" {
		discount = decimal.Zero
	}

	net := subtotal.Sub(discount)
	return Aggregates{
		Subtotal:      subtotal,
		TotalDiscount: discount,
		NetTotal:      net,
		TotalCost:     cost,
		Profit:        net.Sub(cost),
	}
}

// AppliedCash is the cash amount actually kept in the drawer: cash tendered
// minus any change returned. Card amounts are applied in full as entered.
func AppliedCash(cashPaid, cardPaid, netTotal decimal.Decimal) decimal.Decimal {
	change := cashPaid.Add(cardPaid).Sub(netTotal)
	if change.IsNegative() {
		change = decimal.Zero
	}
	applied := cashPaid.Sub(change)
	if applied.IsNegative() {
		return decimal.Zero
	}
	return applied
}

// Covers reports whether the tendered cash+card amount pays the net total in
// full. Invoices may not be recorded without full payment cover.
func Covers(cashPaid, cardPaid, netTotal decimal.Decimal) bool {
	return cashPaid.Add(cardPaid).GreaterThanOrEqual(netTotal)
}
