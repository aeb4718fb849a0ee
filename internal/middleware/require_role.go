package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/greencycle/ecollect/internal/services"
	"github.com/greencycle/ecollect/pkg/errors"
	"github.com/greencycle/ecollect/pkg/response"
)

// RequireRole rejects requests whose resolved actor holds none of the
// supplied roles. Must run after Auth.
func RequireRole(roles ...services.Role) gin.HandlerFunc {
	allowed := make(map[services.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(c *gin.Context) {
		actor, ok := ActorFromContext(c)
		if !ok {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, permitted := allowed[actor.Role]; !permitted {
			response.Error(c, errors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireStaff is shorthand for RequireRole(RoleStaff).
func RequireStaff() gin.HandlerFunc {
	return RequireRole(services.RoleStaff)
}

// RequireCoordinator allows staff and company members.
func RequireCoordinator() gin.HandlerFunc {
	return RequireRole(services.RoleStaff, services.RoleCompanyMember)
}
