package model

import (
	"time"

	"gorm.io/gorm"
)

// Operator roles
const (
	RoleAdmin   = "admin"
	RoleCashier = "cashier"
)

// User is an operator account. Identity is resolved once at the HTTP boundary
// and threaded into the engine as a plain name; the engine never reads it back.
type User struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Username    string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`
	DisplayName string         `gorm:"type:varchar(255);not null" json:"display_name"`
	Password    string         `gorm:"type:varchar(255);not null" json:"-"` // bcrypt hash, never serialized
	Role        string         `gorm:"type:varchar(50);not null;default:'cashier'" json:"role"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
