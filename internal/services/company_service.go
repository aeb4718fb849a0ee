package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/greencycle/ecollect/internal/models"
	apperrors "github.com/greencycle/ecollect/pkg/errors"
)

// ErrCompanyNotFound is returned when a company lookup misses.
var ErrCompanyNotFound = apperrors.New("COMPANY_NOT_FOUND", "Company not found", 404)

// CompanyInput carries company attributes for create and update.
type CompanyInput struct {
	Name         string
	ContactEmail string
	Phone        string
	Address      string
	Description  string
	IsActive     *bool
}

// CompanyService manages recycling companies. All mutations are staff
// only.
type CompanyService struct {
	db *gorm.DB
}

// NewCompanyService constructs a CompanyService.
func NewCompanyService(db *gorm.DB) (*CompanyService, error) {
	if db == nil {
		return nil, errors.New("company service: db is required")
	}
	return &CompanyService{db: db}, nil
}

// Create registers a new company.
func (s *CompanyService) Create(ctx context.Context, actor Actor, input CompanyInput) (*models.Company, error) {
	ctx = ensureContext(ctx)
	if !actor.IsStaff() {
		return nil, apperrors.ErrForbidden
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("Company name is required")
	}

	company := models.Company{
		Name:         name,
		ContactEmail: strings.TrimSpace(input.ContactEmail),
		Phone:        strings.TrimSpace(input.Phone),
		Address:      strings.TrimSpace(input.Address),
		Description:  strings.TrimSpace(input.Description),
		IsActive:     true,
	}
	if input.IsActive != nil {
		company.IsActive = *input.IsActive
	}

	if err := s.db.WithContext(ctx).Create(&company).Error; err != nil {
		return nil, fmt.Errorf("company service: create company: %w", err)
	}
	return &company, nil
}

// Update edits an existing company.
func (s *CompanyService) Update(ctx context.Context, actor Actor, companyID string, input CompanyInput) (*models.Company, error) {
	ctx = ensureContext(ctx)
	if !actor.IsStaff() {
		return nil, apperrors.ErrForbidden
	}

	var company models.Company
	if err := s.db.WithContext(ctx).First(&company, "id = ?", companyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCompanyNotFound
		}
		return nil, fmt.Errorf("company service: load company: %w", err)
	}

	updates := map[string]any{}
	if name := strings.TrimSpace(input.Name); name != "" {
		updates["name"] = name
	}
	if input.ContactEmail != "" {
		updates["contact_email"] = strings.TrimSpace(input.ContactEmail)
	}
	if input.Phone != "" {
		updates["phone"] = strings.TrimSpace(input.Phone)
	}
	if input.Address != "" {
		updates["address"] = strings.TrimSpace(input.Address)
	}
	if input.Description != "" {
		updates["description"] = strings.TrimSpace(input.Description)
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&company).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("company service: update company: %w", err)
		}
	}
	return &company, nil
}

// Get loads a single company.
func (s *CompanyService) Get(ctx context.Context, companyID string) (*models.Company, error) {
	ctx = ensureContext(ctx)

	var company models.Company
	if err := s.db.WithContext(ctx).First(&company, "id = ?", companyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCompanyNotFound
		}
		return nil, fmt.Errorf("company service: load company: %w", err)
	}
	return &company, nil
}

// List returns all companies ordered by name.
func (s *CompanyService) List(ctx context.Context) ([]models.Company, error) {
	ctx = ensureContext(ctx)

	var companies []models.Company
	if err := s.db.WithContext(ctx).Order("name").Find(&companies).Error; err != nil {
		return nil, fmt.Errorf("company service: list companies: %w", err)
	}
	return companies, nil
}

// Delete removes a company. Member profiles and company notifications
// keep existing with their company reference cleared.
func (s *CompanyService) Delete(ctx context.Context, actor Actor, companyID string) error {
	ctx = ensureContext(ctx)
	if !actor.IsStaff() {
		return apperrors.ErrForbidden
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.UserProfile{}).
			Where("company_id = ?", companyID).
			Update("company_id", nil).Error; err != nil {
			return fmt.Errorf("detach profiles: %w", err)
		}
		if err := tx.Model(&models.Notification{}).
			Where("company_id = ?", companyID).
			Update("company_id", nil).Error; err != nil {
			return fmt.Errorf("detach notifications: %w", err)
		}

		result := tx.Delete(&models.Company{}, "id = ?", companyID)
		if result.Error != nil {
			return fmt.Errorf("delete company: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrCompanyNotFound
		}
		return nil
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		return fmt.Errorf("company service: %w", err)
	}
	return nil
}
