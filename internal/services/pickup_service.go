package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/greencycle/ecollect/internal/models"
	apperrors "github.com/greencycle/ecollect/pkg/errors"
	"github.com/greencycle/ecollect/pkg/metrics"
)

// ErrPickupNotFound is returned when a pickup request lookup misses.
var ErrPickupNotFound = apperrors.New("PICKUP_NOT_FOUND", "Pickup request not found", 404)

// UpdatePickupInput carries a manual edit of a pickup request.
type UpdatePickupInput struct {
	Status      string
	Notes       *string
	ScheduledAt *time.Time
}

// ListPickupsInput filters pickup listings.
type ListPickupsInput struct {
	Status string
	Limit  int
	Offset int
}

// PickupService drives pickup requests through their lifecycle. Status
// changes are deliberately permissive: any staff or company member can
// move a request into any state, including out of completed or
// cancelled.
type PickupService struct {
	db *gorm.DB
}

// NewPickupService constructs a PickupService.
func NewPickupService(db *gorm.DB) (*PickupService, error) {
	if db == nil {
		return nil, errors.New("pickup service: db is required")
	}
	return &PickupService{db: db}, nil
}

// Accept claims a pending request for the acting coordinator.
func (s *PickupService) Accept(ctx context.Context, actor Actor, requestID string) (*models.PickupRequest, error) {
	return s.transition(ctx, actor, requestID, models.PickupScheduled, transitionOptions{assign: true})
}

// Schedule sets the pickup time and claims the request.
func (s *PickupService) Schedule(ctx context.Context, actor Actor, requestID string, scheduledAt *time.Time) (*models.PickupRequest, error) {
	return s.transition(ctx, actor, requestID, models.PickupScheduled, transitionOptions{assign: true, scheduledAt: scheduledAt})
}

// Start marks the pickup as underway.
func (s *PickupService) Start(ctx context.Context, actor Actor, requestID string) (*models.PickupRequest, error) {
	return s.transition(ctx, actor, requestID, models.PickupInProgress, transitionOptions{assign: true})
}

// Complete finishes the pickup and marks the item collected in the
// same transaction.
func (s *PickupService) Complete(ctx context.Context, actor Actor, requestID string) (*models.PickupRequest, error) {
	return s.transition(ctx, actor, requestID, models.PickupCompleted, transitionOptions{assign: true})
}

// Cancel aborts the pickup. The item's collected flag is left as is.
func (s *PickupService) Cancel(ctx context.Context, actor Actor, requestID string) (*models.PickupRequest, error) {
	return s.transition(ctx, actor, requestID, models.PickupCancelled, transitionOptions{})
}

type transitionOptions struct {
	assign      bool
	scheduledAt *time.Time
}

func (s *PickupService) transition(ctx context.Context, actor Actor, requestID, status string, opts transitionOptions) (*models.PickupRequest, error) {
	ctx = ensureContext(ctx)
	if !actor.CanManagePickups() {
		return nil, apperrors.ErrForbidden
	}

	var pickup models.PickupRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&pickup, "id = ?", requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPickupNotFound
			}
			return fmt.Errorf("load pickup: %w", err)
		}

		updates := map[string]any{"status": status}
		if opts.assign {
			updates["assigned_to_id"] = actor.UserID
		}
		if opts.scheduledAt != nil {
			updates["scheduled_at"] = *opts.scheduledAt
		}
		if status == models.PickupCompleted {
			now := time.Now().UTC()
			updates["completed_at"] = now
			pickup.CompletedAt = &now
			if err := tx.Model(&models.Item{}).
				Where("id = ?", pickup.ItemID).
				Update("collected", true).Error; err != nil {
				return fmt.Errorf("mark item collected: %w", err)
			}
		}

		if err := tx.Model(&pickup).Updates(updates).Error; err != nil {
			return fmt.Errorf("update pickup: %w", err)
		}

		pickup.Status = status
		if opts.assign {
			id := actor.UserID
			pickup.AssignedToID = &id
		}
		if opts.scheduledAt != nil {
			pickup.ScheduledAt = opts.scheduledAt
		}
		return nil
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, fmt.Errorf("pickup service: %w", err)
	}

	metrics.PickupTransitions.WithLabelValues(status).Inc()
	return &pickup, nil
}

// Update applies an arbitrary manual edit. An unassigned request is
// claimed by the acting user.
func (s *PickupService) Update(ctx context.Context, actor Actor, requestID string, input UpdatePickupInput) (*models.PickupRequest, error) {
	ctx = ensureContext(ctx)
	if !actor.CanManagePickups() {
		return nil, apperrors.ErrForbidden
	}

	status := strings.TrimSpace(input.Status)
	if status != "" && !models.IsValidPickupStatus(status) {
		return nil, apperrors.NewBadRequest(fmt.Sprintf("Status must be one of: %s", strings.Join(models.ValidPickupStatuses, ", ")))
	}

	var pickup models.PickupRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&pickup, "id = ?", requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPickupNotFound
			}
			return fmt.Errorf("load pickup: %w", err)
		}

		updates := map[string]any{}
		if status != "" {
			updates["status"] = status
			pickup.Status = status
		}
		if input.Notes != nil {
			updates["notes"] = *input.Notes
			pickup.Notes = *input.Notes
		}
		if input.ScheduledAt != nil {
			updates["scheduled_at"] = *input.ScheduledAt
			pickup.ScheduledAt = input.ScheduledAt
		}
		if pickup.AssignedToID == nil {
			id := actor.UserID
			updates["assigned_to_id"] = id
			pickup.AssignedToID = &id
		}

		if status == models.PickupCompleted {
			now := time.Now().UTC()
			updates["completed_at"] = now
			pickup.CompletedAt = &now
			if err := tx.Model(&models.Item{}).
				Where("id = ?", pickup.ItemID).
				Update("collected", true).Error; err != nil {
				return fmt.Errorf("mark item collected: %w", err)
			}
		}

		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&pickup).Updates(updates).Error; err != nil {
			return fmt.Errorf("update pickup: %w", err)
		}
		return nil
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, fmt.Errorf("pickup service: %w", err)
	}

	if status != "" {
		metrics.PickupTransitions.WithLabelValues(status).Inc()
	}
	return &pickup, nil
}

// Get loads a pickup request with its item. Customers only see their
// own requests.
func (s *PickupService) Get(ctx context.Context, actor Actor, requestID string) (*models.PickupRequest, error) {
	ctx = ensureContext(ctx)

	var pickup models.PickupRequest
	if err := s.db.WithContext(ctx).
		Preload("Item").
		Preload("Item.Category").
		Preload("AssignedTo").
		First(&pickup, "id = ?", requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPickupNotFound
		}
		return nil, fmt.Errorf("pickup service: load pickup: %w", err)
	}

	if !actor.CanManagePickups() {
		if pickup.Item == nil || pickup.Item.UserID != actor.UserID {
			return nil, apperrors.ErrForbidden
		}
	}
	return &pickup, nil
}

// List returns pickup requests for coordinators, newest first.
func (s *PickupService) List(ctx context.Context, actor Actor, input ListPickupsInput) ([]models.PickupRequest, int64, error) {
	ctx = ensureContext(ctx)
	if !actor.CanManagePickups() {
		return nil, 0, apperrors.ErrForbidden
	}

	query := s.db.WithContext(ctx).Model(&models.PickupRequest{})
	if status := strings.TrimSpace(input.Status); status != "" {
		if !models.IsValidPickupStatus(status) {
			return nil, 0, apperrors.NewBadRequest("Unknown pickup status")
		}
		query = query.Where("status = ?", status)
	}

	return s.listPickups(query, input)
}

// ListForUser returns the pickup requests attached to the user's items.
func (s *PickupService) ListForUser(ctx context.Context, userID string, input ListPickupsInput) ([]models.PickupRequest, int64, error) {
	ctx = ensureContext(ctx)
	if strings.TrimSpace(userID) == "" {
		return nil, 0, errors.New("pickup service: user id is required")
	}

	query := s.db.WithContext(ctx).
		Model(&models.PickupRequest{}).
		Joins("JOIN items ON items.id = pickup_requests.item_id").
		Where("items.user_id = ?", userID)
	if status := strings.TrimSpace(input.Status); status != "" {
		query = query.Where("pickup_requests.status = ?", status)
	}

	return s.listPickups(query, input)
}

func (s *PickupService) listPickups(query *gorm.DB, input ListPickupsInput) ([]models.PickupRequest, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("pickup service: count pickups: %w", err)
	}

	limit := input.Limit
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	offset := input.Offset
	if offset < 0 {
		offset = 0
	}

	var pickups []models.PickupRequest
	if err := query.
		Preload("Item").
		Preload("Item.Category").
		Preload("AssignedTo").
		Order("pickup_requests.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&pickups).Error; err != nil {
		return nil, 0, fmt.Errorf("pickup service: list pickups: %w", err)
	}
	return pickups, total, nil
}
