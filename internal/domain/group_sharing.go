package domain

import "time"

// GroupSharing Model, one join request of a user for a group
type GroupSharing struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	GroupID      uint          `gorm:"index:idx_sharing_group_user;not null" json:"group_id"`
	SharedUserID uint          `gorm:"index:idx_sharing_group_user;not null" json:"shared_user_id"`
	Status       SharingStatus `gorm:"size:16;not null;index" json:"status"`
	SharingToken string        `gorm:"size:32" json:"-"`
	JoinedAt     time.Time     `json:"joined_at"`
	AcceptedAt   *time.Time    `json:"accepted_at,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}
