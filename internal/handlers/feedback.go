package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/greencycle/ecollect/internal/middleware"
	"github.com/greencycle/ecollect/internal/services"
	"github.com/greencycle/ecollect/pkg/response"
)

// FeedbackHandler exposes feedback endpoints.
type FeedbackHandler struct {
	feedback *services.FeedbackService
}

// NewFeedbackHandler constructs a FeedbackHandler.
func NewFeedbackHandler(db *gorm.DB) (*FeedbackHandler, error) {
	feedback, err := services.NewFeedbackService(db)
	if err != nil {
		return nil, err
	}
	return &FeedbackHandler{feedback: feedback}, nil
}

type feedbackRequest struct {
	Name    string `json:"name" validate:"max=255"`
	Email   string `json:"email" validate:"omitempty,email"`
	Subject string `json:"subject" validate:"required,max=255"`
	Message string `json:"message" validate:"required,max=2000"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
}

// Submit stores a feedback entry. Works with or without an
// authenticated actor.
func (h *FeedbackHandler) Submit(c *gin.Context) {
	var req feedbackRequest
	if !bindAndValidate(c, &req) {
		return
	}

	input := services.SubmitFeedbackInput{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
		Rating:  req.Rating,
	}
	if actor, ok := middleware.ActorFromContext(c); ok {
		input.Actor = &actor
	}

	feedback, err := h.feedback.Submit(requestContext(c), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, feedback)
}

// List returns all feedback for staff.
func (h *FeedbackHandler) List(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	entries, err := h.feedback.List(requestContext(c), actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, entries)
}
