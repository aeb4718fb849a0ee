package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/greencycle/ecollect/internal/services"
	"github.com/greencycle/ecollect/pkg/response"
)

// DashboardHandler exposes statistics and dashboard endpoints.
type DashboardHandler struct {
	stats   *services.StatsService
	users   *services.UserService
	pickups *services.PickupService
}

// NewDashboardHandler constructs a DashboardHandler.
func NewDashboardHandler(db *gorm.DB) (*DashboardHandler, error) {
	stats, err := services.NewStatsService(db)
	if err != nil {
		return nil, err
	}
	users, err := services.NewUserService(db)
	if err != nil {
		return nil, err
	}
	pickups, err := services.NewPickupService(db)
	if err != nil {
		return nil, err
	}
	return &DashboardHandler{stats: stats, users: users, pickups: pickups}, nil
}

// GlobalStats returns platform-wide counters for the public home page.
func (h *DashboardHandler) GlobalStats(c *gin.Context) {
	stats, err := h.stats.Global(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, stats)
}

// UserDashboard returns the caller's reporting totals.
func (h *DashboardHandler) UserDashboard(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	stats, err := h.stats.ForUser(requestContext(c), actor.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, stats)
}

// CategoryStats returns item counts per category.
func (h *DashboardHandler) CategoryStats(c *gin.Context) {
	counts, err := h.stats.ByCategory(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, counts)
}

// AdminDashboard returns the staff dashboard aggregate.
func (h *DashboardHandler) AdminDashboard(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	dashboard, err := h.stats.Dashboard(requestContext(c), actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, dashboard)
}

// CompanyDashboard returns the coordinator view: customers with their
// item counts plus the open pickup queue.
func (h *DashboardHandler) CompanyDashboard(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	ctx := requestContext(c)

	customers, err := h.users.ListCustomers(ctx, actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	pending, _, err := h.pickups.List(ctx, actor, services.ListPickupsInput{Status: "pending", Limit: 50})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"customers":       customers,
		"pending_pickups": pending,
	})
}

// ExportItems returns a flat export of the caller's reported items.
func (h *DashboardHandler) ExportItems(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	rows, err := h.stats.ExportUserItems(requestContext(c), actor.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, rows)
}
