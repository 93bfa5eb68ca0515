package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Hold is a parked, uncommitted sale. It carries the same shape as an invoice
// but none of its financial weight: no payment-cover guard, no stock movement,
// no ledger posting. Deleting the hold after the real invoice commits is the
// caller's job.
type Hold struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	InvoiceNo     string          `gorm:"type:varchar(50)" json:"invoice_no"`
	IssuedAt      time.Time       `json:"issued_at"`
	CustomerID    *uint           `json:"customer_id"`
	CustomerName  string          `gorm:"type:varchar(255)" json:"customer_name"`
	NetTotal      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"net_total"`
	TotalDiscount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"total_discount"`
	CashPayment   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"cash_payment"`
	CardPayment   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"card_payment"`
	CardInfo      string          `gorm:"type:text" json:"card_info"`
	OperatorName  string          `gorm:"type:varchar(100)" json:"operator_name"`
	Remark        string          `gorm:"type:text" json:"remark"`
	Items         []HoldItem      `gorm:"foreignKey:HoldID" json:"items"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// HoldItem mirrors InvoiceItem so a resumed hold round-trips into the invoice
// request without loss.
type HoldItem struct {
	ID               uint             `gorm:"primaryKey" json:"id"`
	HoldID           uuid.UUID        `gorm:"type:uuid;not null;index" json:"hold_id"`
	ItemID           *uint            `json:"item_id"`
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
