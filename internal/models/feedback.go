package models

// Feedback is a rated message left by a visitor. The author link is
// optional so feedback survives account deletion.
type Feedback struct {
	BaseModel

	UserID *string `gorm:"type:uuid;index" json:"user_id"`
	User   *User   `gorm:"constraint:OnDelete:SET NULL" json:"user,omitempty"`

	Name    string `gorm:"type:varchar(255)" json:"name"`
	Email   string `gorm:"type:varchar(255)" json:"email"`
	Subject string `gorm:"type:varchar(255)" json:"subject"`
	Message string `gorm:"type:text" json:"message"`
	Rating  int    `gorm:"not null" json:"rating"`
}
