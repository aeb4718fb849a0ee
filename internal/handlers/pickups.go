package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/greencycle/ecollect/internal/models"
	"github.com/greencycle/ecollect/internal/services"
	appErrors "github.com/greencycle/ecollect/pkg/errors"
	"github.com/greencycle/ecollect/pkg/response"
)

// PickupHandler exposes pickup lifecycle endpoints.
type PickupHandler struct {
	pickups *services.PickupService
}

// NewPickupHandler constructs a PickupHandler.
func NewPickupHandler(db *gorm.DB) (*PickupHandler, error) {
	pickups, err := services.NewPickupService(db)
	if err != nil {
		return nil, err
	}
	return &PickupHandler{pickups: pickups}, nil
}

// List returns pickups for coordinators, or the caller's own when
// mine=true or the caller is a customer.
func (h *PickupHandler) List(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	input := services.ListPickupsInput{
		Status: c.Query("status"),
		Limit:  parseIntQuery(c, "limit", 25),
		Offset: parseIntQuery(c, "offset", 0),
	}

	var (
		pickups []models.PickupRequest
		total   int64
		err     error
	)
	if c.Query("mine") == "true" || !actor.CanManagePickups() {
		pickups, total, err = h.pickups.ListForUser(requestContext(c), actor.UserID, input)
	} else {
		pickups, total, err = h.pickups.List(requestContext(c), actor, input)
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, pickups, &response.Meta{Total: total})
}

// Get returns a single pickup request.
func (h *PickupHandler) Get(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	pickup, err := h.pickups.Get(requestContext(c), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, pickup)
}

// Accept claims a pickup for the acting coordinator.
func (h *PickupHandler) Accept(c *gin.Context) {
	h.transition(c, func(actor services.Actor, id string) (*models.PickupRequest, error) {
		return h.pickups.Accept(requestContext(c), actor, id)
	})
}

type scheduleRequest struct {
	ScheduledAt string `json:"scheduled_at" validate:"required"`
}

// Schedule sets the pickup time.
func (h *PickupHandler) Schedule(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req scheduleRequest
	if !bindAndValidate(c, &req) {
		return
	}

	scheduledAt, err := time.Parse(time.RFC3339, strings.TrimSpace(req.ScheduledAt))
	if err != nil {
		response.Error(c, appErrors.NewBadRequest("scheduled_at must be an RFC3339 timestamp"))
		return
	}

	pickup, err := h.pickups.Schedule(requestContext(c), actor, c.Param("id"), &scheduledAt)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, pickup)
}

// Start marks the pickup as underway.
func (h *PickupHandler) Start(c *gin.Context) {
	h.transition(c, func(actor services.Actor, id string) (*models.PickupRequest, error) {
		return h.pickups.Start(requestContext(c), actor, id)
	})
}

// Complete finishes the pickup and marks the item collected.
func (h *PickupHandler) Complete(c *gin.Context) {
	h.transition(c, func(actor services.Actor, id string) (*models.PickupRequest, error) {
		return h.pickups.Complete(requestContext(c), actor, id)
	})
}

// Cancel aborts the pickup.
func (h *PickupHandler) Cancel(c *gin.Context) {
	h.transition(c, func(actor services.Actor, id string) (*models.PickupRequest, error) {
		return h.pickups.Cancel(requestContext(c), actor, id)
	})
}

func (h *PickupHandler) transition(c *gin.Context, op func(services.Actor, string) (*models.PickupRequest, error)) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	pickup, err := op(actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, pickup)
}

type updatePickupRequest struct {
	Status      string  `json:"status" validate:"omitempty,oneof=pending scheduled in_progress completed cancelled"`
	Notes       *string `json:"notes"`
	ScheduledAt string  `json:"scheduled_at"`
}

// Update applies a manual edit to a pickup request.
func (h *PickupHandler) Update(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req updatePickupRequest
	if !bindAndValidate(c, &req) {
		return
	}

	input := services.UpdatePickupInput{
		Status: req.Status,
		Notes:  req.Notes,
	}
	if raw := strings.TrimSpace(req.ScheduledAt); raw != "" {
		scheduledAt, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.Error(c, appErrors.NewBadRequest("scheduled_at must be an RFC3339 timestamp"))
			return
		}
		input.ScheduledAt = &scheduledAt
	}

	pickup, err := h.pickups.Update(requestContext(c), actor, c.Param("id"), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, pickup)
}
