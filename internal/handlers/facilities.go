package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/greencycle/ecollect/internal/services"
	appErrors "github.com/greencycle/ecollect/pkg/errors"
	"github.com/greencycle/ecollect/pkg/response"
)

// FacilityHandler exposes drop-off facility endpoints.
type FacilityHandler struct {
	facilities *services.FacilityService
}

// NewFacilityHandler constructs a FacilityHandler.
func NewFacilityHandler(db *gorm.DB) (*FacilityHandler, error) {
	facilities, err := services.NewFacilityService(db)
	if err != nil {
		return nil, err
	}
	return &FacilityHandler{facilities: facilities}, nil
}

// List returns all active facilities.
func (h *FacilityHandler) List(c *gin.Context) {
	facilities, err := h.facilities.List(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, facilities)
}

// Get returns a single facility.
func (h *FacilityHandler) Get(c *gin.Context) {
	facility, err := h.facilities.Get(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, facility)
}

// Nearby returns facilities within a radius of the supplied point.
func (h *FacilityHandler) Nearby(c *gin.Context) {
	lat, okLat := parseFloatQuery(c, "lat")
	lng, okLng := parseFloatQuery(c, "lng")
	if !okLat || !okLng {
		response.Error(c, appErrors.NewBadRequest("lat and lng query parameters are required"))
		return
	}

	radius := 25.0
	if value, ok := parseFloatQuery(c, "radius_km"); ok {
		radius = value
	}

	facilities, err := h.facilities.Nearby(requestContext(c), lat, lng, radius)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, facilities)
}

type facilityRequest struct {
	Name          string   `json:"name" validate:"omitempty,max=255"`
	Address       string   `json:"address" validate:"omitempty,max=500"`
	Phone         string   `json:"phone" validate:"max=32"`
	Email         string   `json:"email" validate:"omitempty,email"`
	Hours         string   `json:"hours" validate:"max=255"`
	Latitude      *float64 `json:"latitude" validate:"omitempty,min=-90,max=90"`
	Longitude     *float64 `json:"longitude" validate:"omitempty,min=-180,max=180"`
	AcceptedTypes string   `json:"accepted_types" validate:"max=1000"`
	IsActive      *bool    `json:"is_active"`
}

func (r facilityRequest) toInput() services.FacilityInput {
	return services.FacilityInput{
		Name:          r.Name,
		Address:       r.Address,
		Phone:         r.Phone,
		Email:         r.Email,
		Hours:         r.Hours,
		Latitude:      r.Latitude,
		Longitude:     r.Longitude,
		AcceptedTypes: r.AcceptedTypes,
		IsActive:      r.IsActive,
	}
}

// Create registers a new facility.
func (h *FacilityHandler) Create(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req facilityRequest
	if !bindAndValidate(c, &req) {
		return
	}

	facility, err := h.facilities.Create(requestContext(c), actor, req.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, facility)
}

// Update edits a facility.
func (h *FacilityHandler) Update(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req facilityRequest
	if !bindAndValidate(c, &req) {
		return
	}

	facility, err := h.facilities.Update(requestContext(c), actor, c.Param("id"), req.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, facility)
}

// Delete removes a facility.
func (h *FacilityHandler) Delete(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	if err := h.facilities.Delete(requestContext(c), actor, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": "deleted"})
}
