package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/greencycle/ecollect/internal/middleware"
	"github.com/greencycle/ecollect/internal/services"
	"github.com/greencycle/ecollect/pkg/errors"
	"github.com/greencycle/ecollect/pkg/response"
)

// requestContext safely returns the request context with a background fallback for tests.
func requestContext(c *gin.Context) context.Context {
	if c == nil {
		return context.Background()
	}
	if req := c.Request; req != nil {
		return req.Context()
	}
	return context.Background()
}

// currentActor returns the resolved actor or writes a 401 and reports
// failure.
func currentActor(c *gin.Context) (services.Actor, bool) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok || actor.UserID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return services.Actor{}, false
	}
	return actor, true
}
