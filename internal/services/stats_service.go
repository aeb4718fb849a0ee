package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/greencycle/ecollect/internal/models"
	apperrors "github.com/greencycle/ecollect/pkg/errors"
)

// GlobalStats summarises platform activity for the public home page.
type GlobalStats struct {
	TotalItems       int64 `json:"total_items"`
	CollectedItems   int64 `json:"collected_items"`
	PendingPickups   int64 `json:"pending_pickups"`
	CompletedPickups int64 `json:"completed_pickups"`
	TotalUsers       int64 `json:"total_users"`
	TotalCategories  int64 `json:"total_categories"`
}

// UserStats summarises one reporter's activity.
type UserStats struct {
	TotalItems       int64 `json:"total_items"`
	CollectedItems   int64 `json:"collected_items"`
	PendingPickups   int64 `json:"pending_pickups"`
	CompletedPickups int64 `json:"completed_pickups"`
}

// CategoryCount pairs a category name with its item count.
type CategoryCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// AdminDashboard aggregates the data shown on the staff dashboard.
type AdminDashboard struct {
	Stats               GlobalStats            `json:"stats"`
	PendingPickups      []models.PickupRequest `json:"pending_pickups"`
	UnreadNotifications int64                  `json:"unread_notifications"`
	TotalCompanies      int64                  `json:"total_companies"`
	CompanyMembers      []models.User          `json:"company_members"`
}

// ItemExportRow is a flat export row for a reporter's items.
type ItemExportRow struct {
	Name          string     `json:"name"`
	Category      string     `json:"category"`
	Condition     string     `json:"condition"`
	Quantity      int        `json:"quantity"`
	Collected     bool       `json:"collected"`
	PickupStatus  string     `json:"pickup_status"`
	ReportedAt    time.Time  `json:"reported_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	PickupAddress string     `json:"pickup_address,omitempty"`
}

// StatsService computes reporting aggregates.
type StatsService struct {
	db *gorm.DB
}

// NewStatsService constructs a StatsService.
func NewStatsService(db *gorm.DB) (*StatsService, error) {
	if db == nil {
		return nil, errors.New("stats service: db is required")
	}
	return &StatsService{db: db}, nil
}

// Global returns platform-wide counters.
func (s *StatsService) Global(ctx context.Context) (*GlobalStats, error) {
	ctx = ensureContext(ctx)

	stats := GlobalStats{}
	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&stats.TotalItems, s.db.WithContext(ctx).Model(&models.Item{})},
		{&stats.CollectedItems, s.db.WithContext(ctx).Model(&models.Item{}).Where("collected = ?", true)},
		{&stats.PendingPickups, s.db.WithContext(ctx).Model(&models.PickupRequest{}).Where("status IN ?", []string{models.PickupPending, models.PickupScheduled})},
		{&stats.CompletedPickups, s.db.WithContext(ctx).Model(&models.PickupRequest{}).Where("status = ?", models.PickupCompleted)},
		{&stats.TotalUsers, s.db.WithContext(ctx).Model(&models.User{}).Where("is_staff = ?", false)},
		{&stats.TotalCategories, s.db.WithContext(ctx).Model(&models.Category{})},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, fmt.Errorf("stats service: count: %w", err)
		}
	}
	return &stats, nil
}

// ForUser returns the reporting totals of a single user.
func (s *StatsService) ForUser(ctx context.Context, userID string) (*UserStats, error) {
	ctx = ensureContext(ctx)
	if userID == "" {
		return nil, errors.New("stats service: user id is required")
	}

	stats := UserStats{}
	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&stats.TotalItems, s.db.WithContext(ctx).Model(&models.Item{}).Where("user_id = ?", userID)},
		{&stats.CollectedItems, s.db.WithContext(ctx).Model(&models.Item{}).Where("user_id = ? AND collected = ?", userID, true)},
		{&stats.PendingPickups, s.db.WithContext(ctx).Model(&models.PickupRequest{}).
			Joins("JOIN items ON items.id = pickup_requests.item_id").
			Where("items.user_id = ? AND pickup_requests.status IN ?", userID, []string{models.PickupPending, models.PickupScheduled})},
		{&stats.CompletedPickups, s.db.WithContext(ctx).Model(&models.PickupRequest{}).
			Joins("JOIN items ON items.id = pickup_requests.item_id").
			Where("items.user_id = ? AND pickup_requests.status = ?", userID, models.PickupCompleted)},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, fmt.Errorf("stats service: count: %w", err)
		}
	}
	return &stats, nil
}

// ByCategory returns item counts per category name, largest first.
func (s *StatsService) ByCategory(ctx context.Context) ([]CategoryCount, error) {
	ctx = ensureContext(ctx)

	var counts []CategoryCount
	if err := s.db.WithContext(ctx).Model(&models.Item{}).
		Select("categories.name AS name, COUNT(items.id) AS count").
		Joins("JOIN categories ON categories.id = items.category_id").
		Group("categories.name").
		Order("count DESC").
		Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("stats service: count by category: %w", err)
	}
	return counts, nil
}

// Dashboard builds the staff dashboard. Staff only.
func (s *StatsService) Dashboard(ctx context.Context, actor Actor) (*AdminDashboard, error) {
	ctx = ensureContext(ctx)
	if !actor.IsStaff() {
		return nil, apperrors.ErrForbidden
	}

	stats, err := s.Global(ctx)
	if err != nil {
		return nil, err
	}

	dashboard := AdminDashboard{Stats: *stats}

	if err := s.db.WithContext(ctx).
		Preload("Item").
		Where("status = ?", models.PickupPending).
		Order("created_at").
		Limit(20).
		Find(&dashboard.PendingPickups).Error; err != nil {
		return nil, fmt.Errorf("stats service: pending pickups: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", actor.UserID, false).
		Count(&dashboard.UnreadNotifications).Error; err != nil {
		return nil, fmt.Errorf("stats service: unread notifications: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&models.Company{}).
		Count(&dashboard.TotalCompanies).Error; err != nil {
		return nil, fmt.Errorf("stats service: count companies: %w", err)
	}

	if err := s.db.WithContext(ctx).
		Joins("JOIN user_profiles ON user_profiles.user_id = users.id").
		Where("user_profiles.is_company = ?", true).
		Order("users.username").
		Find(&dashboard.CompanyMembers).Error; err != nil {
		return nil, fmt.Errorf("stats service: company members: %w", err)
	}

	return &dashboard, nil
}

// ExportUserItems returns a flat view of everything a user reported.
func (s *StatsService) ExportUserItems(ctx context.Context, userID string) ([]ItemExportRow, error) {
	ctx = ensureContext(ctx)
	if userID == "" {
		return nil, errors.New("stats service: user id is required")
	}

	var items []models.Item
	if err := s.db.WithContext(ctx).
		Preload("Category").
		Where("user_id = ?", userID).
		Order("created_at").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("stats service: load items: %w", err)
	}

	rows := make([]ItemExportRow, 0, len(items))
	for _, item := range items {
		row := ItemExportRow{
			Name:          item.Name,
			Condition:     item.Condition,
			Quantity:      item.Quantity,
			Collected:     item.Collected,
			ReportedAt:    item.CreatedAt,
			PickupAddress: item.PickupAddress,
		}
		if item.Category != nil {
			row.Category = item.Category.Name
		}

		var pickup models.PickupRequest
		if err := s.db.WithContext(ctx).First(&pickup, "item_id = ?", item.ID).Error; err == nil {
			row.PickupStatus = pickup.Status
			row.CompletedAt = pickup.CompletedAt
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("stats service: load pickup: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
