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

// SubmitFeedbackInput carries a feedback submission. Actor is optional;
// anonymous feedback is allowed.
type SubmitFeedbackInput struct {
	Actor   *Actor
	Name    string
	Email   string
	Subject string
	Message string
	Rating  int
}

// FeedbackService collects visitor feedback.
type FeedbackService struct {
	db *gorm.DB
}

// NewFeedbackService constructs a FeedbackService.
func NewFeedbackService(db *gorm.DB) (*FeedbackService, error) {
	if db == nil {
		return nil, errors.New("feedback service: db is required")
	}
	return &FeedbackService{db: db}, nil
}

// Submit stores a feedback entry.
func (s *FeedbackService) Submit(ctx context.Context, input SubmitFeedbackInput) (*models.Feedback, error) {
	ctx = ensureContext(ctx)

	if input.Rating < 1 || input.Rating > 5 {
		return nil, apperrors.NewBadRequest("Rating must be between 1 and 5")
	}

	feedback := models.Feedback{
		Name:    strings.TrimSpace(input.Name),
		Email:   strings.TrimSpace(input.Email),
		Subject: strings.TrimSpace(input.Subject),
		Message: strings.TrimSpace(input.Message),
		Rating:  input.Rating,
	}
	if input.Actor != nil && input.Actor.UserID != "" {
		id := input.Actor.UserID
		feedback.UserID = &id
		if feedback.Name == "" {
			feedback.Name = input.Actor.Username
		}
		if feedback.Email == "" {
			feedback.Email = input.Actor.Email
		}
	}

	if err := s.db.WithContext(ctx).Create(&feedback).Error; err != nil {
		return nil, fmt.Errorf("feedback service: create feedback: %w", err)
	}
	return &feedback, nil
}

// List returns feedback entries for staff, newest first.
func (s *FeedbackService) List(ctx context.Context, actor Actor) ([]models.Feedback, error) {
	ctx = ensureContext(ctx)
	if !actor.IsStaff() {
		return nil, apperrors.ErrForbidden
	}

	var entries []models.Feedback
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("feedback service: list feedback: %w", err)
	}
	return entries, nil
}
