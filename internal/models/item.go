package models

import "time"

// Item condition values.
const (
	ConditionWorking = "working"
	ConditionPartial = "partial"
	ConditionBroken  = "broken"
)

// ValidConditions lists every accepted item condition.
var ValidConditions = []string{ConditionWorking, ConditionPartial, ConditionBroken}

// IsValidCondition reports whether the given condition is one of the
// accepted values.
func IsValidCondition(condition string) bool {
	for _, c := range ValidConditions {
		if c == condition {
			return true
		}
	}
	return false
}

// Item is a piece of e-waste reported by a customer for collection.
type Item struct {
	BaseModel

	UserID string `gorm:"type:uuid;index;not null" json:"user_id"`
	User   *User  `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`

	CategoryID *string   `gorm:"type:uuid;index" json:"category_id"`
	Category   *Category `gorm:"constraint:OnDelete:SET NULL" json:"category,omitempty"`

	Name        string `gorm:"not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Condition   string `gorm:"type:varchar(16);not null" json:"condition"`
	Quantity    int    `gorm:"default:1;not null" json:"quantity"`

	PickupAddress string     `gorm:"type:text" json:"pickup_address"`
	ContactPhone  string     `gorm:"type:varchar(32)" json:"contact_phone"`
	PreferredDate *time.Time `json:"preferred_date"`

	// Newline-separated image paths or URLs supplied by the reporter.
	Images string `gorm:"type:text" json:"images"`

	Collected bool `gorm:"default:false;index" json:"collected"`
}
