package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry records the realized cash/card split of a committed invoice
// against the operator who rang it up. It sits outside the invoice's
// atomicity boundary: a failed posting never unwinds the sale.
type LedgerEntry struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	InvoiceID    uint            `gorm:"not null;index" json:"invoice_id"`
	OperatorName string          `gorm:"type:varchar(100);not null;index" json:"operator_name"`
	CashAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"cash_amount"`
	CardAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"card_amount"`
	CardInfo     string          `gorm:"type:text" json:"card_info"`
	CreatedAt    time.Time       `gorm:"index" json:"created_at"`
}
