package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/greencycle/ecollect/internal/services"
	"github.com/greencycle/ecollect/pkg/response"
)

// CompanyHandler exposes company administration endpoints.
type CompanyHandler struct {
	companies *services.CompanyService
}

// NewCompanyHandler constructs a CompanyHandler.
func NewCompanyHandler(db *gorm.DB) (*CompanyHandler, error) {
	companies, err := services.NewCompanyService(db)
	if err != nil {
		return nil, err
	}
	return &CompanyHandler{companies: companies}, nil
}

type companyRequest struct {
	Name         string `json:"name" validate:"omitempty,max=255"`
	ContactEmail string `json:"contact_email" validate:"omitempty,email"`
	Phone        string `json:"phone" validate:"max=32"`
	Address      string `json:"address" validate:"max=500"`
	Description  string `json:"description" validate:"max=2000"`
	IsActive     *bool  `json:"is_active"`
}

func (r companyRequest) toInput() services.CompanyInput {
	return services.CompanyInput{
		Name:         r.Name,
		ContactEmail: r.ContactEmail,
		Phone:        r.Phone,
		Address:      r.Address,
		Description:  r.Description,
		IsActive:     r.IsActive,
	}
}

// Create registers a new company.
func (h *CompanyHandler) Create(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req companyRequest
	if !bindAndValidate(c, &req) {
		return
	}

	company, err := h.companies.Create(requestContext(c), actor, req.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, company)
}

// Update edits a company.
func (h *CompanyHandler) Update(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req companyRequest
	if !bindAndValidate(c, &req) {
		return
	}

	company, err := h.companies.Update(requestContext(c), actor, c.Param("id"), req.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, company)
}

// List returns all companies.
func (h *CompanyHandler) List(c *gin.Context) {
	companies, err := h.companies.List(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, companies)
}

// Get returns a single company.
func (h *CompanyHandler) Get(c *gin.Context) {
	company, err := h.companies.Get(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, company)
}

// Delete removes a company.
func (h *CompanyHandler) Delete(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	if err := h.companies.Delete(requestContext(c), actor, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": "deleted"})
}
