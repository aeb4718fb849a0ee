package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/greencycle/ecollect/internal/models"
	apperrors "github.com/greencycle/ecollect/pkg/errors"
	"github.com/greencycle/ecollect/pkg/logger"
	"github.com/greencycle/ecollect/pkg/metrics"
)

// ErrItemNotFound is returned when an item lookup misses.
var ErrItemNotFound = apperrors.New("ITEM_NOT_FOUND", "Item not found", 404)

// PickupAlertDispatcher notifies coordinators about new pickups. It is
// invoked once after the reporting transaction commits.
type PickupAlertDispatcher interface {
	DispatchPickupCreated(ctx context.Context, item *models.Item, reporter *models.User) error
}

// ReportItemInput carries the attributes of a newly reported item.
type ReportItemInput struct {
	Name          string
	Description   string
	CategoryID    string
	Condition     string
	Quantity      int
	PickupAddress string
	ContactPhone  string
	PreferredDate *time.Time
	Images        string
}

// ListItemsInput filters item listings.
type ListItemsInput struct {
	Search     string
	CategoryID string
	Collected  *bool
	Limit      int
	Offset     int
}

// ItemService manages reported e-waste items.
type ItemService struct {
	db         *gorm.DB
	dispatcher PickupAlertDispatcher
	log        *zap.Logger
}

// NewItemService constructs an ItemService. The dispatcher is optional.
func NewItemService(db *gorm.DB, dispatcher PickupAlertDispatcher) (*ItemService, error) {
	if db == nil {
		return nil, errors.New("item service: db is required")
	}
	return &ItemService{
		db:         db,
		dispatcher: dispatcher,
		log:        logger.WithModule("services.item"),
	}, nil
}

// Report registers an item together with its pending pickup request in
// a single transaction, then alerts coordinators. Only customers may
// report items.
func (s *ItemService) Report(ctx context.Context, actor Actor, input ReportItemInput) (*models.Item, error) {
	ctx = ensureContext(ctx)

	if actor.Role != RoleCustomer {
		return nil, apperrors.ErrForbidden
	}
	if actor.UserID == "" {
		return nil, apperrors.ErrUnauthorized
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("Item name is required")
	}
	if !models.IsValidCondition(input.Condition) {
		return nil, apperrors.NewBadRequest(fmt.Sprintf("Condition must be one of: %s", strings.Join(models.ValidConditions, ", ")))
	}
	quantity := input.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 1 {
		return nil, apperrors.NewBadRequest("Quantity must be at least 1")
	}

	item := models.Item{
		UserID:        actor.UserID,
		Name:          name,
		Description:   strings.TrimSpace(input.Description),
		Condition:     input.Condition,
		Quantity:      quantity,
		PickupAddress: strings.TrimSpace(input.PickupAddress),
		ContactPhone:  strings.TrimSpace(input.ContactPhone),
		PreferredDate: input.PreferredDate,
		Images:        strings.TrimSpace(input.Images),
	}

	if categoryID := strings.TrimSpace(input.CategoryID); categoryID != "" {
		var category models.Category
		if err := s.db.WithContext(ctx).First(&category, "id = ?", categoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.NewBadRequest("Unknown category")
			}
			return nil, fmt.Errorf("item service: load category: %w", err)
		}
		item.CategoryID = &category.ID
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&item).Error; err != nil {
			return fmt.Errorf("create item: %w", err)
		}
		pickup := models.PickupRequest{
			ItemID: item.ID,
			Status: models.PickupPending,
		}
		if err := tx.Create(&pickup).Error; err != nil {
			return fmt.Errorf("create pickup request: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("item service: report item: %w", err)
	}

	metrics.ItemsReported.Inc()

	if s.dispatcher != nil {
		var reporter models.User
		if err := s.db.WithContext(ctx).First(&reporter, "id = ?", actor.UserID).Error; err != nil {
			s.log.Warn("load reporter for pickup alert", zap.Error(err))
		} else if err := s.dispatcher.DispatchPickupCreated(ctx, &item, &reporter); err != nil {
			// Alerts never fail the report.
			s.log.Warn("dispatch pickup alert", zap.String("item_id", item.ID), zap.Error(err))
		}
	}

	return &item, nil
}

// Get loads a single item. Customers can only see their own items.
func (s *ItemService) Get(ctx context.Context, actor Actor, itemID string) (*models.Item, error) {
	ctx = ensureContext(ctx)

	var item models.Item
	if err := s.db.WithContext(ctx).
		Preload("Category").
		First(&item, "id = ?", itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("item service: load item: %w", err)
	}

	if !actor.CanManagePickups() && item.UserID != actor.UserID {
		return nil, apperrors.ErrForbidden
	}
	return &item, nil
}

// ListForUser returns the items reported by the supplied user.
func (s *ItemService) ListForUser(ctx context.Context, userID string, input ListItemsInput) ([]models.Item, int64, error) {
	ctx = ensureContext(ctx)
	if strings.TrimSpace(userID) == "" {
		return nil, 0, errors.New("item service: user id is required")
	}

	query := s.db.WithContext(ctx).Model(&models.Item{}).Where("user_id = ?", userID)
	return s.list(ctx, query, input)
}

// ListAll returns every reported item for coordinators.
func (s *ItemService) ListAll(ctx context.Context, actor Actor, input ListItemsInput) ([]models.Item, int64, error) {
	ctx = ensureContext(ctx)
	if !actor.CanManagePickups() {
		return nil, 0, apperrors.ErrForbidden
	}

	query := s.db.WithContext(ctx).Model(&models.Item{})
	return s.list(ctx, query, input)
}

func (s *ItemService) list(ctx context.Context, query *gorm.DB, input ListItemsInput) ([]models.Item, int64, error) {
	if search := strings.TrimSpace(input.Search); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("name LIKE ? OR description LIKE ?", pattern, pattern)
	}
	if categoryID := strings.TrimSpace(input.CategoryID); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}
	if input.Collected != nil {
		query = query.Where("collected = ?", *input.Collected)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("item service: count items: %w", err)
	}

	limit := input.Limit
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	offset := input.Offset
	if offset < 0 {
		offset = 0
	}

	var items []models.Item
	if err := query.
		Preload("Category").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&items).Error; err != nil {
		return nil, 0, fmt.Errorf("item service: list items: %w", err)
	}
	return items, total, nil
}

// ListCategories returns all item categories ordered by name.
func (s *ItemService) ListCategories(ctx context.Context) ([]models.Category, error) {
	ctx = ensureContext(ctx)

	var categories []models.Category
	if err := s.db.WithContext(ctx).Order("name").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("item service: list categories: %w", err)
	}
	return categories, nil
}
