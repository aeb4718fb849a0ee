package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/greencycle/ecollect/internal/services"
	appErrors "github.com/greencycle/ecollect/pkg/errors"
	"github.com/greencycle/ecollect/pkg/response"
)

// ItemHandler exposes item reporting and browsing endpoints.
type ItemHandler struct {
	items *services.ItemService
}

// NewItemHandler constructs an ItemHandler.
func NewItemHandler(db *gorm.DB, dispatcher services.PickupAlertDispatcher) (*ItemHandler, error) {
	items, err := services.NewItemService(db, dispatcher)
	if err != nil {
		return nil, err
	}
	return &ItemHandler{items: items}, nil
}

type reportItemRequest struct {
	Name          string `json:"name" validate:"required,max=255"`
	Description   string `json:"description" validate:"max=2000"`
	CategoryID    string `json:"category_id"`
	Condition     string `json:"condition" validate:"required,oneof=working partial broken"`
	Quantity      int    `json:"quantity" validate:"omitempty,min=1"`
	PickupAddress string `json:"pickup_address" validate:"max=500"`
	ContactPhone  string `json:"contact_phone" validate:"max=32"`
	PreferredDate string `json:"preferred_date"`
	Images        string `json:"images" validate:"max=2000"`
}

// Report registers a new item along with its pending pickup request.
func (h *ItemHandler) Report(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req reportItemRequest
	if !bindAndValidate(c, &req) {
		return
	}

	input := services.ReportItemInput{
		Name:          req.Name,
		Description:   req.Description,
		CategoryID:    req.CategoryID,
		Condition:     req.Condition,
		Quantity:      req.Quantity,
		PickupAddress: req.PickupAddress,
		ContactPhone:  req.ContactPhone,
		Images:        req.Images,
	}
	if raw := strings.TrimSpace(req.PreferredDate); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(c, appErrors.NewBadRequest("preferred_date must be formatted as YYYY-MM-DD"))
			return
		}
		input.PreferredDate = &parsed
	}

	item, err := h.items.Report(requestContext(c), actor, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, item)
}

// List returns the caller's items, or every item for coordinators when
// all=true.
func (h *ItemHandler) List(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	input := services.ListItemsInput{
		Search:     c.Query("search"),
		CategoryID: c.Query("category_id"),
		Limit:      parseIntQuery(c, "limit", 25),
		Offset:     parseIntQuery(c, "offset", 0),
	}
	if raw := strings.TrimSpace(c.Query("collected")); raw != "" {
		collected := raw == "true" || raw == "1"
		input.Collected = &collected
	}

	var (
		items interface{}
		total int64
		err   error
	)
	if c.Query("all") == "true" && actor.CanManagePickups() {
		items, total, err = h.items.ListAll(requestContext(c), actor, input)
	} else {
		items, total, err = h.items.ListForUser(requestContext(c), actor.UserID, input)
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, items, &response.Meta{Total: total})
}

// Search returns items matching the query string. Coordinators search
// the full inventory, other callers their own reports.
func (h *ItemHandler) Search(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		response.Error(c, appErrors.NewBadRequest("q query parameter is required"))
		return
	}

	input := services.ListItemsInput{
		Search: query,
		Limit:  parseIntQuery(c, "limit", 25),
		Offset: parseIntQuery(c, "offset", 0),
	}

	var (
		items interface{}
		total int64
		err   error
	)
	if actor.CanManagePickups() {
		items, total, err = h.items.ListAll(requestContext(c), actor, input)
	} else {
		items, total, err = h.items.ListForUser(requestContext(c), actor.UserID, input)
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, items, &response.Meta{Total: total})
}

// Get returns a single item.
func (h *ItemHandler) Get(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	item, err := h.items.Get(requestContext(c), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, item)
}

// Categories lists the available item categories.
func (h *ItemHandler) Categories(c *gin.Context) {
	categories, err := h.items.ListCategories(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, categories)
}
