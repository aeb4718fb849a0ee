package models

// Company represents a recycling company whose members help coordinate
// pickups alongside staff.
type Company struct {
	BaseModel

	Name         string `gorm:"uniqueIndex;not null" json:"name"`
	ContactEmail string `gorm:"type:varchar(255)" json:"contact_email"`
	Phone        string `gorm:"type:varchar(32)" json:"phone"`
	Address      string `gorm:"type:text" json:"address"`
	Description  string `gorm:"type:text" json:"description"`

	IsActive bool `gorm:"default:true" json:"is_active"`
}
