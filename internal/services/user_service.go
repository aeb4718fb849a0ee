package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"gorm.io/gorm"

	"github.com/greencycle/ecollect/internal/models"
	"github.com/greencycle/ecollect/pkg/crypto"
	apperrors "github.com/greencycle/ecollect/pkg/errors"
	"github.com/greencycle/ecollect/pkg/metrics"
)

// Authentication errors. All of them surface as 401 so the client
// cannot probe which accounts exist.
var (
	ErrInvalidCredentials = apperrors.New("INVALID_CREDENTIALS", "Invalid username or password", 401)
	ErrAccountDisabled    = apperrors.New("ACCOUNT_DISABLED", "This account has been disabled", 401)
	ErrNotCompanyAccount  = apperrors.New("NOT_COMPANY_ACCOUNT", "This account is not registered as a company member. Log in as a customer instead.", 401)
	ErrNotCustomerAccount = apperrors.New("NOT_CUSTOMER_ACCOUNT", "This account belongs to a recycling company. Log in as a company member instead.", 401)
)

// ErrUserNotFound is returned when a user lookup misses.
var ErrUserNotFound = apperrors.New("USER_NOT_FOUND", "User not found", 404)

// Login role hints accepted by Authenticate.
const (
	LoginAsCustomer = "customer"
	LoginAsCompany  = "company"
)

// SignUpInput carries a registration request.
type SignUpInput struct {
	Username        string
	Email           string
	Password        string
	PasswordConfirm string
	FirstName       string
	LastName        string
	Phone           string
	Address         string
}

// AuthenticateInput carries a login attempt.
type AuthenticateInput struct {
	Username string
	Password string
	LoginAs  string
}

// UpdateUserInput carries a staff edit of an account.
type UpdateUserInput struct {
	FirstName *string
	LastName  *string
	Email     *string
	IsActive  *bool
}

// CustomerSummary pairs a customer with their reporting activity.
type CustomerSummary struct {
	User      models.User `json:"user"`
	ItemCount int64       `json:"item_count"`
}

// UserService manages accounts and authentication.
type UserService struct {
	db *gorm.DB
}

// NewUserService constructs a UserService.
func NewUserService(db *gorm.DB) (*UserService, error) {
	if db == nil {
		return nil, errors.New("user service: db is required")
	}
	return &UserService{db: db}, nil
}

// SignUp registers a new customer account with its default profile.
func (s *UserService) SignUp(ctx context.Context, input SignUpInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	username := strings.TrimSpace(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if username == "" {
		return nil, apperrors.NewBadRequest("Username is required")
	}
	if email == "" {
		return nil, apperrors.NewBadRequest("Email is required")
	}
	if len(input.Password) < 8 {
		return nil, apperrors.NewBadRequest("Password must be at least 8 characters")
	}
	if input.Password != input.PasswordConfirm {
		return nil, apperrors.NewBadRequest("Passwords do not match")
	}
	if err := validateName(input.FirstName, "First name"); err != nil {
		return nil, err
	}
	if err := validateName(input.LastName, "Last name"); err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("user service: check uniqueness: %w", err)
	}
	if count > 0 {
		return nil, apperrors.NewBadRequest("Username or email is already taken")
	}

	hash, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("user service: hash password: %w", err)
	}

	user := models.User{
		Username:  username,
		Email:     email,
		Password:  hash,
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		IsActive:  true,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		profile := models.UserProfile{
			UserID:  user.ID,
			Phone:   strings.TrimSpace(input.Phone),
			Address: strings.TrimSpace(input.Address),
		}
		if err := tx.Create(&profile).Error; err != nil {
			return fmt.Errorf("create profile: %w", err)
		}
		user.Profile = &profile
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("user service: sign up: %w", err)
	}

	return &user, nil
}

// Authenticate verifies credentials and the requested role hint. Staff
// accounts ignore the hint entirely.
func (s *UserService) Authenticate(ctx context.Context, input AuthenticateInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, ErrInvalidCredentials
	}

	var user models.User
	if err := s.db.WithContext(ctx).
		Preload("Profile").
		Where("username = ?", username).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.AuthAttempts.WithLabelValues("failure").Inc()
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("user service: load user: %w", err)
	}

	if !crypto.VerifyPassword(user.Password, input.Password) {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, ErrAccountDisabled
	}

	role := ResolveRole(&user)
	if role != RoleStaff {
		switch strings.ToLower(strings.TrimSpace(input.LoginAs)) {
		case "", LoginAsCustomer:
			if role == RoleCompanyMember {
				metrics.AuthAttempts.WithLabelValues("failure").Inc()
				return nil, ErrNotCustomerAccount
			}
		case LoginAsCompany:
			if role != RoleCompanyMember {
				metrics.AuthAttempts.WithLabelValues("failure").Inc()
				return nil, ErrNotCompanyAccount
			}
		default:
			metrics.AuthAttempts.WithLabelValues("failure").Inc()
			return nil, apperrors.NewBadRequest("login_as must be 'customer' or 'company'")
		}
	}

	now := time.Now().UTC()
	if err := s.db.WithContext(ctx).Model(&user).Update("last_login_at", now).Error; err != nil {
		return nil, fmt.Errorf("user service: record login: %w", err)
	}
	user.LastLoginAt = &now

	metrics.AuthAttempts.WithLabelValues("success").Inc()
	return &user, nil
}

// Get loads a user with their profile.
func (s *UserService) Get(ctx context.Context, userID string) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	if err := s.db.WithContext(ctx).
		Preload("Profile").
		Preload("Profile.Company").
		First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user service: load user: %w", err)
	}
	return &user, nil
}

// List returns all accounts for coordinators.
func (s *UserService) List(ctx context.Context, actor Actor) ([]models.User, error) {
	ctx = ensureContext(ctx)
	if !actor.CanManagePickups() {
		return nil, apperrors.ErrForbidden
	}

	var users []models.User
	if err := s.db.WithContext(ctx).
		Preload("Profile").
		Order("username").
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("user service: list users: %w", err)
	}
	return users, nil
}

// ListCustomers returns customer accounts with their item counts.
func (s *UserService) ListCustomers(ctx context.Context, actor Actor) ([]CustomerSummary, error) {
	ctx = ensureContext(ctx)
	if !actor.CanManagePickups() {
		return nil, apperrors.ErrForbidden
	}

	var users []models.User
	if err := s.db.WithContext(ctx).
		Preload("Profile").
		Where("is_staff = ?", false).
		Order("username").
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("user service: list customers: %w", err)
	}

	summaries := make([]CustomerSummary, 0, len(users))
	for _, user := range users {
		if user.Profile != nil && user.Profile.IsCompany {
			continue
		}
		var itemCount int64
		if err := s.db.WithContext(ctx).Model(&models.Item{}).
			Where("user_id = ?", user.ID).
			Count(&itemCount).Error; err != nil {
			return nil, fmt.Errorf("user service: count items: %w", err)
		}
		summaries = append(summaries, CustomerSummary{User: user, ItemCount: itemCount})
	}
	return summaries, nil
}

// Update applies a coordinator edit to an account.
func (s *UserService) Update(ctx context.Context, actor Actor, userID string, input UpdateUserInput) (*models.User, error) {
	ctx = ensureContext(ctx)
	if !actor.CanManagePickups() {
		return nil, apperrors.ErrForbidden
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user service: load user: %w", err)
	}

	updates := map[string]any{}
	if input.FirstName != nil {
		if err := validateName(*input.FirstName, "First name"); err != nil {
			return nil, err
		}
		updates["first_name"] = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		if err := validateName(*input.LastName, "Last name"); err != nil {
			return nil, err
		}
		updates["last_name"] = strings.TrimSpace(*input.LastName)
	}
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email == "" {
			return nil, apperrors.NewBadRequest("Email cannot be empty")
		}
		updates["email"] = email
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("user service: update user: %w", err)
		}
	}
	return s.Get(ctx, userID)
}

// GrantCompanyMembership links an account's profile to a company and
// marks it as a company member. Staff only.
func (s *UserService) GrantCompanyMembership(ctx context.Context, actor Actor, userID, companyID string) (*models.User, error) {
	ctx = ensureContext(ctx)
	if !actor.IsStaff() {
		return nil, apperrors.ErrForbidden
	}

	var company models.Company
	if err := s.db.WithContext(ctx).First(&company, "id = ?", companyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewBadRequest("Unknown company")
		}
		return nil, fmt.Errorf("user service: load company: %w", err)
	}

	var user models.User
	if err := s.db.WithContext(ctx).Preload("Profile").First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user service: load user: %w", err)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if user.Profile == nil {
			profile := models.UserProfile{
				UserID:    user.ID,
				IsCompany: true,
				CompanyID: &company.ID,
			}
			if err := tx.Create(&profile).Error; err != nil {
				return fmt.Errorf("create profile: %w", err)
			}
			user.Profile = &profile
			return nil
		}
		if err := tx.Model(user.Profile).Updates(map[string]any{
			"is_company": true,
			"company_id": company.ID,
		}).Error; err != nil {
			return fmt.Errorf("update profile: %w", err)
		}
		user.Profile.IsCompany = true
		user.Profile.CompanyID = &company.ID
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("user service: grant membership: %w", err)
	}

	return &user, nil
}

func validateName(name, label string) error {
	for _, r := range strings.TrimSpace(name) {
		if !unicode.IsLetter(r) && r != ' ' && r != '-' && r != '\'' {
			return apperrors.NewBadRequest(label + " may only contain letters")
		}
	}
	return nil
}
