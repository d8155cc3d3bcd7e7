package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// GroupTransaction Model, an income, expense or contribution attributed to one member
type GroupTransaction struct {
	ID        uint                 `gorm:"primaryKey" json:"id"`
	GroupID   uint                 `gorm:"index;not null" json:"group_id"`
	MemberID  uint                 `gorm:"index;not null" json:"member_id"`
	CreatedBy uint                 `gorm:"not null" json:"created_by"` // Principal that recorded it
	Type      GroupTransactionType `gorm:"size:16;not null" json:"type"`
	Source    GroupExpenseSource   `gorm:"size:20" json:"source,omitempty"`
	Amount    decimal.Decimal      `gorm:"type:decimal(20,2);not null" json:"amount"`
	Note      string               `gorm:"size:255" json:"note"`
	Date      time.Time            `gorm:"index" json:"date"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}
