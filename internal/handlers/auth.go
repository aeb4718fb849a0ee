package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	iauth "github.com/greencycle/ecollect/internal/auth"
	"github.com/greencycle/ecollect/internal/models"
	"github.com/greencycle/ecollect/internal/services"
	"github.com/greencycle/ecollect/pkg/response"
)

// AuthHandler exposes registration and login endpoints.
type AuthHandler struct {
	users *services.UserService
	jwt   *iauth.JWTService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, jwt *iauth.JWTService) (*AuthHandler, error) {
	users, err := services.NewUserService(db)
	if err != nil {
		return nil, err
	}
	return &AuthHandler{users: users, jwt: jwt}, nil
}

type signUpRequest struct {
	Username        string `json:"username" validate:"required,min=3,max=64"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required"`
	FirstName       string `json:"first_name" validate:"max=64"`
	LastName        string `json:"last_name" validate:"max=64"`
	Phone           string `json:"phone" validate:"max=32"`
	Address         string `json:"address" validate:"max=255"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	LoginAs  string `json:"login_as" validate:"omitempty,oneof=customer company"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
	Role  string       `json:"role"`
}

// SignUp registers a new customer account.
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req signUpRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.users.SignUp(requestContext(c), services.SignUpInput{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Phone:           req.Phone,
		Address:         req.Address,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, user)
}

// Login authenticates credentials and issues an access token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.users.Authenticate(requestContext(c), services.AuthenticateInput{
		Username: req.Username,
		Password: req.Password,
		LoginAs:  req.LoginAs,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	role := services.ResolveRole(user)
	token, err := h.jwt.GenerateAccessToken(iauth.AccessTokenInput{
		UserID: user.ID,
		Role:   string(role),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, authResponse{
		Token: token,
		User:  user,
		Role:  string(role),
	})
}

// Me returns the authenticated user's account and resolved role.
func (h *AuthHandler) Me(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	user, err := h.users.Get(requestContext(c), actor.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user": user,
		"role": string(actor.Role),
	})
}
