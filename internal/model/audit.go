package model

import "time"

const (
	ActionCreateInvoice = "CREATE_INVOICE"
	ActionUpdateInvoice = "UPDATE_INVOICE"
	ActionSaveHold      = "SAVE_HOLD"
	ActionDeleteHold    = "DELETE_HOLD"
	ActionCreateItem    = "CREATE_ITEM"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	OperatorName string    `gorm:"type:varchar(100);index" json:"operator_name"`
	Action       string    `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID     string    `gorm:"type:varchar(50);index" json:"entity_id"`
	Details      string    `gorm:"type:jsonb" json:"details"` // serialized JSON payload of the action
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
}
