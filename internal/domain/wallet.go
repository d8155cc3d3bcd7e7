package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet Model
type Wallet struct {
	ID        uint            `gorm:"primaryKey" json:"id"`                               // Primary key
	UserID    uint            `gorm:"index;not null" json:"user_id"`                      // Owning user
	Name      string          `gorm:"size:100" json:"name"`                               // Display name
	Currency  string          `gorm:"size:3;not null;default:USD" json:"currency"`        // ISO currency code, informational
	Balance   decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"balance"` // Running balance
	Version   uint            `gorm:"not null;default:0" json:"version"`                  // Optimistic lock counter
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// OwnerID implements OwnerEntity
func (w Wallet) OwnerID() uint { return w.UserID }
