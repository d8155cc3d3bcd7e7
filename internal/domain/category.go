package domain

// Category Model, read-only from the ledger's point of view
type Category struct {
	ID     uint            `gorm:"primaryKey" json:"id"`          // Primary key
	UserID uint            `gorm:"index;not null" json:"user_id"` // Owning user
	Name   string          `gorm:"size:100;not null" json:"name"` // Display name
	Type   TransactionType `gorm:"size:16;not null" json:"type"`  // INCOME or EXPENSE
}

// OwnerID implements OwnerEntity
func (c Category) OwnerID() uint { return c.UserID }
