package model

import "time"

// Customer is owned by the customer-management module; the invoice engine only
// reads it, or creates a minimal code/name placeholder when a sale names a
// customer that does not exist yet.
type Customer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Code      string    `gorm:"type:varchar(50);index;not null" json:"code"`
	Name      string    `gorm:"type:varchar(255);index;not null" json:"name"`
	Phone     string    `gorm:"type:varchar(30)" json:"phone"`
	Address   string    `gorm:"type:text" json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
