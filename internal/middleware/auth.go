package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	iauth "github.com/greencycle/ecollect/internal/auth"
	"github.com/greencycle/ecollect/internal/models"
	"github.com/greencycle/ecollect/internal/services"
	"github.com/greencycle/ecollect/pkg/errors"
	"github.com/greencycle/ecollect/pkg/response"
)

const (
	CtxClaimsKey = "authClaims"
	CtxUserIDKey = "userID"
	CtxActorKey  = "actor"
	CtxUserKey   = "authUser"
)

// Auth enforces JWT authentication, resolves the acting user and stores
// the Actor in the request context.
func Auth(jwt *iauth.JWTService, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if len(authz) < 8 || !strings.EqualFold(authz[:7], "Bearer ") {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		token := strings.TrimSpace(authz[7:])
		claims, err := jwt.ValidateAccessToken(token)
		if err != nil {
			// Normalise all validation failures to 401
			c.Header("WWW-Authenticate", "Bearer")
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		var user models.User
		if err := db.WithContext(c.Request.Context()).
			Preload("Profile").
			First(&user, "id = ?", claims.UserID).Error; err != nil {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}
		if !user.IsActive {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		c.Set(CtxClaimsKey, claims)
		c.Set(CtxUserIDKey, user.ID)
		c.Set(CtxUserKey, &user)
		c.Set(CtxActorKey, services.ActorFromUser(&user))

		c.Next()
	}
}

// OptionalAuth resolves the actor when a valid bearer token is present
// and otherwise lets the request through anonymously. Used on public
// endpoints that attribute submissions to logged-in users.
func OptionalAuth(jwt *iauth.JWTService, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if len(authz) < 8 || !strings.EqualFold(authz[:7], "Bearer ") {
			c.Next()
			return
		}

		token := strings.TrimSpace(authz[7:])
		claims, err := jwt.ValidateAccessToken(token)
		if err != nil {
			c.Next()
			return
		}

		var user models.User
		if err := db.WithContext(c.Request.Context()).
			Preload("Profile").
			First(&user, "id = ?", claims.UserID).Error; err != nil {
			c.Next()
			return
		}
		if !user.IsActive {
			c.Next()
			return
		}

		c.Set(CtxClaimsKey, claims)
		c.Set(CtxUserIDKey, user.ID)
		c.Set(CtxUserKey, &user)
		c.Set(CtxActorKey, services.ActorFromUser(&user))

		c.Next()
	}
}

// ActorFromContext returns the resolved actor, if any.
func ActorFromContext(c *gin.Context) (services.Actor, bool) {
	value, exists := c.Get(CtxActorKey)
	if !exists {
		return services.Actor{}, false
	}
	actor, ok := value.(services.Actor)
	return actor, ok
}
