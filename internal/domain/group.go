package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Group Model. Balance is a cache of the settlement calculator output and is never
// written by transaction code directly.
type Group struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	CreatorID      uint            `gorm:"index;not null" json:"creator_id"`
	Name           string          `gorm:"size:100;not null" json:"name"`
	InitialFunding decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"initial_funding"`
	Balance        decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"balance"`
	SharingToken   string          `gorm:"size:32;index" json:"-"`
	IsSharing      bool            `gorm:"not null;default:false" json:"is_sharing"`
	Version        uint            `gorm:"not null;default:0" json:"version"`
	Members        []GroupMember   `gorm:"constraint:OnDelete:CASCADE;" json:"members,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// OwnerID implements OwnerEntity; the creator owns the group
func (g Group) OwnerID() uint { return g.CreatorID }

// GroupMember Model. UserID is nil for placeholder members without an account.
type GroupMember struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	GroupID       uint            `gorm:"index;not null" json:"group_id"`
	UserID        *uint           `gorm:"index" json:"user_id"`
	Name          string          `gorm:"size:100" json:"name"`
	Role          MemberRole      `gorm:"size:16;not null" json:"role"`
	AdvanceAmount decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"advance_amount"`
	BalanceOwed   decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"balance_owed"`
	CreatedAt     time.Time       `json:"created_at"`
}

// IsUser reports whether the member is linked to the given user
func (m GroupMember) IsUser(userID uint) bool {
	return m.UserID != nil && *m.UserID == userID
}
