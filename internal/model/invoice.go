package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice status constants
const (
	InvoiceStatusDraft     = "draft"
	InvoiceStatusCompleted = "completed"
)

// Invoice is one committed sale: header aggregates plus the cash/card split.
// CustomerName is denormalized on purpose: the receipt must keep showing the
// name the sale was made under even if the customer row changes later.
type Invoice struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	InvoiceNo     string          `gorm:"type:varchar(50);index" json:"invoice_no"` // human-readable, may be blank
	IssuedAt      time.Time       `gorm:"not null;index" json:"issued_at"`
	CustomerID    *uint           `gorm:"index" json:"customer_id"`
	Customer      *Customer       `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	CustomerName  string          `gorm:"type:varchar(255)" json:"customer_name"`
	NetTotal      decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"net_total"`
	TotalDiscount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"total_discount"`
	TotalCost     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"total_cost"`
	TotalProfit   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"total_profit"`
	CashPayment   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"cash_payment"`
	CardPayment   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"card_payment"`
	CardInfo      string          `gorm:"type:text" json:"card_info"` // number/bank/type as entered
	OperatorName  string          `gorm:"type:varchar(100)" json:"operator_name"`
	Status        string          `gorm:"type:varchar(20);not null;default:'completed'" json:"status"`
	Items         []InvoiceItem   `gorm:"foreignKey:InvoiceID" json:"items"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// InvoiceItem is one sold line. ItemID is nullable: a line may carry only a
// barcode that no longer resolves to a catalog row. Nullable prices stay
// nullable; a stored zero and an unknown value are different facts.
type InvoiceItem struct {
	ID               uint             `gorm:"primaryKey" json:"id"`
	InvoiceID        uint             `gorm:"not null;index" json:"invoice_id"`
	ItemID           *uint            `gorm:"index" json:"item_id"`
	ItemBarcode      string           `gorm:"type:varchar(100)" json:"item_barcode"`
	Quantity         decimal.Decimal  `gorm:"type:decimal(18,3);not null" json:"quantity"`
	UnitCost         *decimal.Decimal `gorm:"type:decimal(18,4)" json:"unit_cost"`
	UnitMarketPrice  *decimal.Decimal `gorm:"type:decimal(18,4)" json:"unit_market_price"`
	UnitSellingPrice *decimal.Decimal `gorm:"type:decimal(18,4)" json:"unit_selling_price"`
	PerUnitDiscount  decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0" json:"per_unit_discount"`
	TotalValue       *decimal.Decimal `gorm:"type:decimal(18,4)" json:"total_value"`
	Warranty         string           `gorm:"type:varchar(100)" json:"warranty"`
	Other            string           `gorm:"type:text" json:"other"`
}
