package database

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/greencycle/ecollect/internal/models"
	"github.com/greencycle/ecollect/pkg/crypto"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.UserProfile{},
		&models.Company{},
		&models.Category{},
		&models.Item{},
		&models.PickupRequest{},
		&models.Facility{},
		&models.Feedback{},
		&models.Notification{},
	)
}

// SeedData populates the default e-waste categories.
func SeedData(db *gorm.DB) error {
	categories := []models.Category{
		{Name: "Smartphones", Description: "Mobile phones and smartphones of all brands", Icon: "📱"},
		{Name: "Laptops & Computers", Description: "Laptops, desktops, and computer accessories", Icon: "💻"},
		{Name: "Tablets & E-Readers", Description: "Tablets, iPads, and e-reading devices", Icon: "📱"},
		{Name: "Televisions", Description: "TVs, monitors, and display screens", Icon: "📺"},
		{Name: "Audio Equipment", Description: "Speakers, headphones, and sound systems", Icon: "🔊"},
		{Name: "Printers & Scanners", Description: "Printing and scanning devices", Icon: "🖨️"},
		{Name: "Gaming Devices", Description: "Gaming consoles and accessories", Icon: "🎮"},
		{Name: "Cameras & Photography", Description: "Digital cameras and photography equipment", Icon: "📷"},
		{Name: "Home Appliances", Description: "Small home electronic appliances", Icon: "🏠"},
		{Name: "Cables & Accessories", Description: "Chargers, cables, and electronic accessories", Icon: "🔌"},
	}

	for _, category := range categories {
		if err := db.Where(models.Category{Name: category.Name}).Attrs(category).FirstOrCreate(&models.Category{}).Error; err != nil {
			return err
		}
	}

	return nil
}

// BootstrapAccount describes the staff account ensured at start-up.
type BootstrapAccount struct {
	Username string
	Email    string
	Password string
}

// EnsureStaffAccount creates the configured staff account when no staff
// user exists yet. Existing staff accounts are left untouched.
func EnsureStaffAccount(db *gorm.DB, account BootstrapAccount) error {
	if db == nil {
		return errors.New("nil database handle")
	}

	username := strings.TrimSpace(account.Username)
	if username == "" || account.Password == "" {
		return nil
	}

	var count int64
	if err := db.Model(&models.User{}).Where("is_staff = ?", true).Count(&count).Error; err != nil {
		return fmt.Errorf("count staff accounts: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := crypto.HashPassword(account.Password)
	if err != nil {
		return fmt.Errorf("hash bootstrap password: %w", err)
	}

	user := models.User{
		Username: username,
		Email:    strings.TrimSpace(account.Email),
		Password: hash,
		IsStaff:  true,
		IsActive: true,
	}
	if user.Email == "" {
		user.Email = username + "@localhost"
	}

	if err := db.Create(&user).Error; err != nil {
		return fmt.Errorf("create staff account: %w", err)
	}
	return nil
}
