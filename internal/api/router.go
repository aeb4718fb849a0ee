package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	iauth "github.com/greencycle/ecollect/internal/auth"
	"github.com/greencycle/ecollect/internal/handlers"
	"github.com/greencycle/ecollect/internal/middleware"
	"github.com/greencycle/ecollect/internal/notifications"
	"github.com/greencycle/ecollect/pkg/mail"
)

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(db *gorm.DB, jwt *iauth.JWTService, hub *notifications.Hub, mailer mail.Mailer) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if hub == nil {
		hub = notifications.NewHub()
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())

	// Health endpoint (public)
	r.GET("/health", handlers.Health())

	authHandler, err := handlers.NewAuthHandler(db, jwt)
	if err != nil {
		return nil, err
	}
	notificationHandler, err := handlers.NewNotificationHandler(db, hub, mailer)
	if err != nil {
		return nil, err
	}
	itemHandler, err := handlers.NewItemHandler(db, notificationHandler.Service())
	if err != nil {
		return nil, err
	}
	pickupHandler, err := handlers.NewPickupHandler(db)
	if err != nil {
		return nil, err
	}
	userHandler, err := handlers.NewUserHandler(db)
	if err != nil {
		return nil, err
	}
	companyHandler, err := handlers.NewCompanyHandler(db)
	if err != nil {
		return nil, err
	}
	facilityHandler, err := handlers.NewFacilityHandler(db)
	if err != nil {
		return nil, err
	}
	feedbackHandler, err := handlers.NewFeedbackHandler(db)
	if err != nil {
		return nil, err
	}
	dashboardHandler, err := handlers.NewDashboardHandler(db)
	if err != nil {
		return nil, err
	}

	// Public routes
	auth := r.Group("/api/auth")
	{
		auth.POST("/signup", authHandler.SignUp)
		auth.POST("/login", authHandler.Login)
	}
	r.GET("/api/facilities", facilityHandler.List)
	r.GET("/api/facilities/nearby", facilityHandler.Nearby)
	r.GET("/api/facilities/:id", facilityHandler.Get)
	r.GET("/api/categories", itemHandler.Categories)
	r.GET("/api/stats", dashboardHandler.GlobalStats)
	r.POST("/api/feedback", middleware.OptionalAuth(jwt, db), feedbackHandler.Submit)

	// Protected routes
	requireAuth := middleware.Auth(jwt, db)

	api := r.Group("/api")
	api.Use(requireAuth)

	api.GET("/auth/me", authHandler.Me)

	items := api.Group("/items")
	{
		items.GET("", itemHandler.List)
		items.POST("", itemHandler.Report)
		items.GET("/search", itemHandler.Search)
		items.GET("/:id", itemHandler.Get)
	}

	pickups := api.Group("/pickups")
	{
		pickups.GET("", pickupHandler.List)
		pickups.GET("/:id", pickupHandler.Get)
		pickups.POST("/:id/accept", middleware.RequireCoordinator(), pickupHandler.Accept)
		pickups.POST("/:id/schedule", middleware.RequireCoordinator(), pickupHandler.Schedule)
		pickups.POST("/:id/start", middleware.RequireCoordinator(), pickupHandler.Start)
		pickups.POST("/:id/complete", middleware.RequireCoordinator(), pickupHandler.Complete)
		pickups.POST("/:id/cancel", middleware.RequireCoordinator(), pickupHandler.Cancel)
		pickups.PATCH("/:id", middleware.RequireCoordinator(), pickupHandler.Update)
	}

	notif := api.Group("/notifications")
	{
		notif.GET("", notificationHandler.List)
		notif.GET("/unread-count", notificationHandler.UnreadCount)
		notif.POST("/:id/read", notificationHandler.MarkRead)
		notif.POST("/read-all", notificationHandler.MarkAllRead)
		notif.GET("/stream", notificationHandler.Stream)
	}

	users := api.Group("/users")
	users.Use(middleware.RequireCoordinator())
	{
		users.GET("", userHandler.List)
		users.GET("/customers", userHandler.ListCustomers)
		users.PATCH("/:id", middleware.RequireStaff(), userHandler.Update)
		users.POST("/:id/company-membership", middleware.RequireStaff(), userHandler.GrantCompanyMembership)
	}

	companies := api.Group("/companies")
	{
		companies.GET("", companyHandler.List)
		companies.GET("/:id", companyHandler.Get)
		companies.POST("", middleware.RequireStaff(), companyHandler.Create)
		companies.PATCH("/:id", middleware.RequireStaff(), companyHandler.Update)
		companies.DELETE("/:id", middleware.RequireStaff(), companyHandler.Delete)
	}

	facilities := api.Group("/facilities")
	facilities.Use(middleware.RequireStaff())
	{
		facilities.POST("", facilityHandler.Create)
		facilities.PATCH("/:id", facilityHandler.Update)
		facilities.DELETE("/:id", facilityHandler.Delete)
	}

	api.GET("/feedback", middleware.RequireStaff(), feedbackHandler.List)

	dashboard := api.Group("/dashboard")
	{
		dashboard.GET("", dashboardHandler.UserDashboard)
		dashboard.GET("/categories", dashboardHandler.CategoryStats)
		dashboard.GET("/company", middleware.RequireCoordinator(), dashboardHandler.CompanyDashboard)
		dashboard.GET("/admin", middleware.RequireStaff(), dashboardHandler.AdminDashboard)
		dashboard.GET("/export", dashboardHandler.ExportItems)
	}

	// Metrics endpoint
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// NotFound fallback
	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
