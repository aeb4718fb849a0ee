package models

// Category groups e-waste items by kind. Seeded at startup and rarely
// changed afterwards.
type Category struct {
	BaseModel

	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Icon        string `gorm:"type:varchar(16)" json:"icon"`
}
