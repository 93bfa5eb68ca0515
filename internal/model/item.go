package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Item is a catalog row. The engine only ever mutates Qty, and only downward;
// restocking goes through the catalog endpoints.
type Item struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	ItemName        string          `gorm:"type:varchar(255);not null;index" json:"item_name"`
	ItemBarcode     string          `gorm:"type:varchar(100);index" json:"item_barcode"`
	Qty             decimal.Decimal `gorm:"type:decimal(18,3);not null;default:0" json:"qty"`
	QtyType         string          `gorm:"type:varchar(50)" json:"qty_type"` // pcs, kg, box...
	Warranty        string          `gorm:"type:varchar(100)" json:"warranty"`
	ItemDescription string          `gorm:"type:text" json:"item_description"`
	Category        string          `gorm:"type:varchar(100);index" json:"category"`
	Cost            decimal.Decimal `gorm:"type:decimal(18,4);default:0" json:"cost"`
	MarketPrice     decimal.Decimal `gorm:"type:decimal(18,4);default:0" json:"market_price"`
	SellingPrice    decimal.Decimal `gorm:"type:decimal(18,4);default:0" json:"selling_price"`
	TotalCost       decimal.Decimal `gorm:"type:decimal(18,4);default:0" json:"total_cost"`
	UserName        string          `gorm:"type:varchar(100)" json:"user_name"`
	Other           string          `gorm:"type:text" json:"other"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`
}

// ItemSnapshot is the reduced shape POS clients use to refresh their local
// item cache after a sale.
type ItemSnapshot struct {
	ID              uint            `json:"id"`
	ItemName        string          `json:"item_name"`
	ItemBarcode     string          `json:"item_barcode"`
	Qty             decimal.Decimal `json:"qty"`
	QtyType         string          `json:"qty_type"`
	Warranty        string          `json:"warranty"`
	ItemDescription string          `json:"item_description"`
	Category        string          `json:"category"`
	TotalCost       decimal.Decimal `json:"total_cost"`
	UserName        string          `json:"user_name"`
	Other           string          `json:"other"`
}

// Snapshot projects the catalog row onto the client cache shape.
func (i Item) Snapshot() ItemSnapshot {
	return ItemSnapshot{
		ID:              i.ID,
		ItemName:        i.ItemName,
		ItemBarcode:     i.ItemBarcode,
		Qty:             i.Qty,
		QtyType:         i.QtyType,
		Warranty:        i.Warranty,
		ItemDescription: i.ItemDescription,
		Category:        i.Category,
		TotalCost:       i.TotalCost,
		UserName:        i.UserName,
		Other:           i.Other,
	}
}
