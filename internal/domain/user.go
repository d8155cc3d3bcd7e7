package domain

// User Model
type User struct {
	ID       uint     `gorm:"primaryKey"`                                    // Primary key
	Username string   `gorm:"uniqueIndex;size:64;not null"`                  // Unique username
	Password string   `gorm:"not null" json:"-"`                             // Hashed password
	Wallets  []Wallet `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"` // Personal wallets
}
