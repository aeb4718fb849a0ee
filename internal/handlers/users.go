package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/greencycle/ecollect/internal/services"
	"github.com/greencycle/ecollect/pkg/response"
)

// UserHandler exposes account administration endpoints.
type UserHandler struct {
	users *services.UserService
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(db *gorm.DB) (*UserHandler, error) {
	users, err := services.NewUserService(db)
	if err != nil {
		return nil, err
	}
	return &UserHandler{users: users}, nil
}

// List returns all accounts for coordinators.
func (h *UserHandler) List(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	users, err := h.users.List(requestContext(c), actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, users)
}

// ListCustomers returns customers with their item counts.
func (h *UserHandler) ListCustomers(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	customers, err := h.users.ListCustomers(requestContext(c), actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, customers)
}

type updateUserRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,max=64"`
	LastName  *string `json:"last_name" validate:"omitempty,max=64"`
	Email     *string `json:"email" validate:"omitempty,email"`
	IsActive  *bool   `json:"is_active"`
}

// Update edits an account.
func (h *UserHandler) Update(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req updateUserRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.users.Update(requestContext(c), actor, c.Param("id"), services.UpdateUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		IsActive:  req.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, user)
}

type grantMembershipRequest struct {
	CompanyID string `json:"company_id" validate:"required"`
}

// GrantCompanyMembership links an account to a company.
func (h *UserHandler) GrantCompanyMembership(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req grantMembershipRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.users.GrantCompanyMembership(requestContext(c), actor, c.Param("id"), req.CompanyID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, user)
}
