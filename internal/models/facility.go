package models

// Facility is a public drop-off location for e-waste. Coordinates are
// optional; facilities without them are excluded from proximity search.
type Facility struct {
	BaseModel

	Name    string `gorm:"not null" json:"name"`
	Address string `gorm:"type:text;not null" json:"address"`
	Phone   string `gorm:"type:varchar(32)" json:"phone"`
	Email   string `gorm:"type:varchar(255)" json:"email"`
	Hours   string `gorm:"type:varchar(255)" json:"hours"`

	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`

	AcceptedTypes string `gorm:"type:text" json:"accepted_types"`
	IsActive      bool   `gorm:"default:true" json:"is_active"`
}
