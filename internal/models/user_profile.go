package models

// UserProfile carries the optional attributes attached to an account.
// Not every user has one; role resolution treats a missing profile the
// same as a profile without company membership.
type UserProfile struct {
	BaseModel

	UserID string `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	User   *User  `gorm:"constraint:OnDelete:CASCADE" json:"-"`

	Phone   string `gorm:"type:varchar(32)" json:"phone"`
	Address string `gorm:"type:text" json:"address"`

	IsCompany bool     `gorm:"default:false" json:"is_company"`
	CompanyID *string  `gorm:"type:uuid" json:"company_id"`
	Company   *Company `gorm:"constraint:OnDelete:SET NULL" json:"company,omitempty"`
}
