package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification types.
const (
	NotificationPickupCreated = "pickup_created"
	NotificationPickupUpdated = "pickup_updated"
	NotificationSystem        = "system"
)

// Notification is an in-app message addressed either to a single user
// or to a company. Exactly one of UserID and CompanyID is set.
type Notification struct {
	BaseModel

	UserID *string `gorm:"type:uuid;index" json:"user_id"`
	User   *User   `gorm:"constraint:OnDelete:CASCADE" json:"-"`

	CompanyID *string  `gorm:"type:uuid;index" json:"company_id"`
	Company   *Company `gorm:"constraint:OnDelete:SET NULL" json:"-"`

	Type      string         `gorm:"type:varchar(64);not null" json:"type"`
	Title     string         `gorm:"type:varchar(255);not null" json:"title"`
	Message   string         `gorm:"type:text" json:"message"`
	ActionURL string         `gorm:"type:text" json:"action_url"`
	Metadata  datatypes.JSON `json:"metadata"`

	IsRead bool       `gorm:"default:false;index" json:"is_read"`
	ReadAt *time.Time `json:"read_at"`
}
