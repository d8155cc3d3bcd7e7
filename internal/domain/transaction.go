package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction Model, a single personal income or expense on one wallet
type Transaction struct {
	ID         uint            `gorm:"primaryKey" json:"id"`                         // Primary key
	UserID     uint            `gorm:"index;not null" json:"user_id"`                // Owning user
	WalletID   uint            `gorm:"index;not null" json:"wallet_id"`              // Wallet the effect is attributed to
	CategoryID uint            `gorm:"index;not null" json:"category_id"`            // Category, must match Type
	Type       TransactionType `gorm:"size:16;not null" json:"type"`                 // INCOME or EXPENSE
	Amount     decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`    // Strictly positive
	Note       string          `gorm:"size:255" json:"note"`                         // Free text
	Date       time.Time       `gorm:"index" json:"date"`                            // Business date
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// OwnerID implements OwnerEntity
func (t Transaction) OwnerID() uint { return t.UserID }
