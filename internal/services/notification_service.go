package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/greencycle/ecollect/internal/models"
	"github.com/greencycle/ecollect/internal/notifications"
	apperrors "github.com/greencycle/ecollect/pkg/errors"
	"github.com/greencycle/ecollect/pkg/logger"
	"github.com/greencycle/ecollect/pkg/mail"
	"github.com/greencycle/ecollect/pkg/metrics"
)

// NotificationDTO represents the API-friendly notification payload.
type NotificationDTO struct {
	ID        string         `json:"id"`
	UserID    *string        `json:"user_id,omitempty"`
	CompanyID *string        `json:"company_id,omitempty"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	ActionURL string         `json:"action_url,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	IsRead    bool           `json:"is_read"`
	CreatedAt time.Time      `json:"created_at"`
	ReadAt    *time.Time     `json:"read_at,omitempty"`
}

// ListNotificationsInput defines filters for querying user notifications.
type ListNotificationsInput struct {
	UserID     string
	UnreadOnly bool
	Limit      int
	Offset     int
}

// NotificationService manages in-app notifications and the pickup
// alert fan-out.
type NotificationService struct {
	db     *gorm.DB
	hub    *notifications.Hub
	mailer mail.Mailer
	log    *zap.Logger
}

// NewNotificationService constructs a NotificationService. The hub and
// mailer are optional; without them dispatch degrades to database
// writes only.
func NewNotificationService(db *gorm.DB, hub *notifications.Hub, mailer mail.Mailer) (*NotificationService, error) {
	if db == nil {
		return nil, errors.New("notification service: db is required")
	}
	return &NotificationService{
		db:     db,
		hub:    hub,
		mailer: mailer,
		log:    logger.WithModule("services.notification"),
	}, nil
}

// DispatchPickupCreated alerts coordinators about a freshly reported
// pickup: one unread notification per staff account plus a single
// deduplicated email to staff and company contact addresses. Email
// delivery is best effort; failures are logged and swallowed.
func (s *NotificationService) DispatchPickupCreated(ctx context.Context, item *models.Item, reporter *models.User) error {
	ctx = ensureContext(ctx)
	if item == nil || reporter == nil {
		return errors.New("notification service: item and reporter are required")
	}

	message := fmt.Sprintf("New pickup reported: %s by %s.", item.Name, reporter.Username)

	var staff []models.User
	if err := s.db.WithContext(ctx).
		Where("is_staff = ? AND is_active = ?", true, true).
		Find(&staff).Error; err != nil {
		return fmt.Errorf("notification service: load staff accounts: %w", err)
	}

	metadata, err := json.Marshal(map[string]any{
		"item_id":     item.ID,
		"reporter_id": reporter.ID,
	})
	if err != nil {
		return fmt.Errorf("notification service: marshal metadata: %w", err)
	}

	notified := make([]string, 0, len(staff))
	for i := range staff {
		userID := staff[i].ID
		notification := models.Notification{
			UserID:    &userID,
			Type:      models.NotificationPickupCreated,
			Title:     "New pickup request",
			Message:   message,
			ActionURL: "/manage-pickups",
			Metadata:  datatypes.JSON(metadata),
		}
		if err := s.db.WithContext(ctx).Create(&notification).Error; err != nil {
			return fmt.Errorf("notification service: create notification: %w", err)
		}
		notified = append(notified, userID)
		metrics.NotificationsDispatched.Inc()

		if s.hub != nil {
			s.hub.PushToUser(userID, notifications.Event{
				Event: "notification.created",
				Data:  mapNotification(notification),
			})
		}
	}

	s.sendPickupEmail(ctx, staff, message)
	s.log.Info("pickup alert dispatched",
		zap.String("item_id", item.ID),
		zap.Int("staff_notified", len(notified)))
	return nil
}

func (s *NotificationService) sendPickupEmail(ctx context.Context, staff []models.User, message string) {
	if s.mailer == nil {
		metrics.EmailSends.WithLabelValues("skipped").Inc()
		return
	}

	recipients := make([]string, 0, len(staff))
	for i := range staff {
		if addr := strings.TrimSpace(staff[i].Email); addr != "" {
			recipients = append(recipients, addr)
		}
	}

	var companies []models.Company
	if err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Find(&companies).Error; err != nil {
		s.log.Warn("load company contacts for email", zap.Error(err))
	} else {
		for i := range companies {
			if addr := strings.TrimSpace(companies[i].ContactEmail); addr != "" {
				recipients = append(recipients, addr)
			}
		}
	}

	if len(recipients) == 0 {
		metrics.EmailSends.WithLabelValues("skipped").Inc()
		return
	}

	err := s.mailer.Send(ctx, mail.Message{
		To:      recipients,
		Subject: "New pickup request",
		Body:    message,
	})
	switch {
	case err == nil:
		metrics.EmailSends.WithLabelValues("success").Inc()
	case errors.Is(err, mail.ErrDisabled):
		metrics.EmailSends.WithLabelValues("skipped").Inc()
	default:
		metrics.EmailSends.WithLabelValues("failure").Inc()
		s.log.Warn("pickup alert email failed", zap.Error(err))
	}
}

// ListForUser returns notifications for the supplied user ordered by recency.
func (s *NotificationService) ListForUser(ctx context.Context, input ListNotificationsInput) ([]NotificationDTO, error) {
	ctx = ensureContext(ctx)
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, errors.New("notification service: user id is required")
	}

	limit := input.Limit
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	offset := input.Offset
	if offset < 0 {
		offset = 0
	}

	query := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if input.UnreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var rows []models.Notification
	if err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("notification service: list notifications: %w", err)
	}

	result := make([]NotificationDTO, 0, len(rows))
	for _, row := range rows {
		result = append(result, mapNotification(row))
	}
	return result, nil
}

// UnreadCount returns the number of unread notifications for a user.
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	ctx = ensureContext(ctx)
	if strings.TrimSpace(userID) == "" {
		return 0, errors.New("notification service: user id is required")
	}

	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("notification service: count unread: %w", err)
	}
	return count, nil
}

// MarkRead sets the notification read flag for a user.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) (*NotificationDTO, error) {
	ctx = ensureContext(ctx)
	var notification models.Notification
	if err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", notificationID, userID).
		First(&notification).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("notification service: load notification: %w", err)
	}

	now := time.Now().UTC()
	if err := s.db.WithContext(ctx).Model(&notification).
		Updates(map[string]any{
			"is_read": true,
			"read_at": now,
		}).Error; err != nil {
		return nil, fmt.Errorf("notification service: mark read: %w", err)
	}

	notification.IsRead = true
	notification.ReadAt = &now
	dto := mapNotification(notification)
	return &dto, nil
}

// MarkAllRead marks all notifications for the user as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	ctx = ensureContext(ctx)
	if strings.TrimSpace(userID) == "" {
		return errors.New("notification service: user id is required")
	}

	now := time.Now().UTC()
	if err := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]any{
			"is_read": true,
			"read_at": now,
		}).Error; err != nil {
		return fmt.Errorf("notification service: mark all read: %w", err)
	}
	return nil
}

func mapNotification(n models.Notification) NotificationDTO {
	dto := NotificationDTO{
		ID:        n.ID,
		UserID:    n.UserID,
		CompanyID: n.CompanyID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		ActionURL: n.ActionURL,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
		ReadAt:    n.ReadAt,
	}
	if len(n.Metadata) > 0 {
		var meta map[string]any
		if err := json.Unmarshal(n.Metadata, &meta); err == nil {
			dto.Metadata = meta
		}
	}
	return dto
}
