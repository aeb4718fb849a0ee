package models

import "time"

// Pickup request status values.
const (
	PickupPending    = "pending"
	PickupScheduled  = "scheduled"
	PickupInProgress = "in_progress"
	PickupCompleted  = "completed"
	PickupCancelled  = "cancelled"
)

// ValidPickupStatuses lists every pickup request status.
var ValidPickupStatuses = []string{
	PickupPending,
	PickupScheduled,
	PickupInProgress,
	PickupCompleted,
	PickupCancelled,
}

// IsValidPickupStatus reports whether status is a known lifecycle state.
func IsValidPickupStatus(status string) bool {
	for _, s := range ValidPickupStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// PickupRequest tracks the collection lifecycle of a single item. Each
// item has at most one request, created alongside it.
type PickupRequest struct {
	BaseModel

	ItemID string `gorm:"type:uuid;uniqueIndex;not null" json:"item_id"`
	Item   *Item  `gorm:"constraint:OnDelete:CASCADE" json:"item,omitempty"`

	AssignedToID *string `gorm:"type:uuid;index" json:"assigned_to_id"`
	AssignedTo   *User   `gorm:"foreignKey:AssignedToID;constraint:OnDelete:SET NULL" json:"assigned_to,omitempty"`

	Status string `gorm:"type:varchar(16);default:'pending';index" json:"status"`
	Notes  string `gorm:"type:text" json:"notes"`

	ScheduledAt *time.Time `json:"scheduled_at"`
	CompletedAt *time.Time `json:"completed_at"`
}
