// Package pricing holds the pure cart arithmetic: normalizing duck-typed cart
// lines into one canonical shape and folding them into invoice aggregates.
// Nothing in here touches the database.
package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidLine marks a cart line the calculator refuses to normalize.
// Optional prices never trigger it; only a missing item reference or a
// missing/non-positive quantity do.
var ErrInvalidLine = errors.New("invalid cart line")

// RawLine is the duck-typed wire shape. POS clients have drifted over the
// years and send the same value under different keys, so every alias is
// accepted here and nowhere else; past this boundary only Line exists.
// decimal.Decimal unmarshals both bare and quoted JSON numbers, which covers
// clients that stringify their numerics.
type RawLine struct {
	ItemID          *uint            `json:"item_id"`
	ItemIDAlt       *uint            `json:"itemId"`
	Barcode         string           `json:"barcode"`
	Qty             *decimal.Decimal `json:"qty"`
	Quantity        *decimal.Decimal `json:"quantity"`
	Warranty        string           `json:"warranty"`
	Cost            *decimal.Decimal `json:"cost"`
	MarketPrice     *decimal.Decimal `json:"market_price"`
	MarketPriceAlt  *decimal.Decimal `json:"marketPrice"`
	SellingPrice    *decimal.Decimal `json:"selling_price"`
	SellingPriceAlt *decimal.Decimal `json:"sellingPrice"`
	Price           *decimal.Decimal `json:"price"`
	Discount        *decimal.Decimal `json:"discount"`
	Total           *decimal.Decimal `json:"total"`
	TotalValue      *decimal.Decimal `json:"total_value"`
	Other           string           `json:"other"`
}

// Line is the canonical normalized cart line.
type Line struct {
	ItemID           *uint
	Barcode          string
	Quantity         decimal.Decimal
	UnitCost         *decimal.Decimal
	UnitMarketPrice  *decimal.Decimal
	UnitSellingPrice *decimal.Decimal
	PerUnitDiscount  decimal.Decimal
	LineTotal        *decimal.Decimal // nil when no price information exists at all
	Warranty         string
	Other            string
}

// Normalize maps a raw cart line onto the canonical shape, applying the
// derived-value precedence rules:
//
//	discount   = explicit | (market − selling) | 0
//	line total = total | total_value | qty×market | qty×selling | unknown
//
// The zero discount default is a policy choice, not an absence of data.
func Normalize(raw RawLine) (Line, error) {
	itemID := firstUint(raw.ItemID, raw.ItemIDAlt)
	if itemID == nil && raw.Barcode == "" {
		return Line{}, fmt.Errorf("%w: missing item reference", ErrInvalidLine)
	}

	qty := firstDecimal(raw.Qty, raw.Quantity)
	if qty == nil {
		return Line{}, fmt.Errorf("%w: missing quantity", ErrInvalidLine)
	}
	if !qty.IsPositive() {
		return Line{}, fmt.Errorf("%w: quantity must be greater than zero, got %s", ErrInvalidLine, qty)
	}

	market := firstDecimal(raw.MarketPrice, raw.MarketPriceAlt)
	selling := firstDecimal(raw.SellingPrice, raw.SellingPriceAlt, raw.Price)

	discount := decimal.Zero
	switch {
	case raw.Discount != nil:
		discount = *raw.Discount
	case market != nil && selling != nil:
		discount = market.Sub(*selling)
	}

	var total *decimal.Decimal
	switch {
	case raw.Total != nil:
		total = raw.Total
	case raw.TotalValue != nil:
		total = raw.TotalValue
	case market != nil:
		t := qty.Mul(*market)
		total = &t
	case selling != nil:
		t := qty.Mul(*selling)
		total = &t
	}

	return Line{
		ItemID:           itemID,
		Barcode:          raw.Barcode,
		Quantity:         *qty,
		UnitCost:         raw.Cost,
		UnitMarketPrice:  market,
		UnitSellingPrice: selling,
		PerUnitDiscount:  discount,
		LineTotal:        total,
		Warranty:         raw.Warranty,
		Other:            raw.Other,
	}, nil
}

// NormalizeAll normalizes a whole cart, failing on the first bad line.
func NormalizeAll(raws []RawLine) ([]Line, error) {
	lines := make([]Line, 0, len(raws))
	for i, raw := range raws {
		line, err := Normalize(raw)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func firstUint(vals ...*uint) *uint {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

func firstDecimal(vals ...*decimal.Decimal) *decimal.Decimal {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}
