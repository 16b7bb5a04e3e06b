package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/betosaco/soulpath-sub003/internal/middleware"
	appErrors "github.com/betosaco/soulpath-sub003/pkg/errors"
	"github.com/betosaco/soulpath-sub003/pkg/response"
)

// statusClientClosedRequest marks requests abandoned by the caller.
const statusClientClosedRequest = 499

func actorID(c *gin.Context) string {
	if claims, ok := middleware.CurrentClaims(c); ok {
		return claims.UserID
	}
	return "anonymous"
}

// writeError renders err, leaving cancelled requests without a body since
// nobody is listening.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, context.Canceled):
		c.AbortWithStatus(statusClientClosedRequest)
	case errors.Is(err, context.DeadlineExceeded):
		response.Error(c, appErrors.Wrap(err, appErrors.ErrPortUnavailable.Code, appErrors.ErrPortUnavailable.Status, "schedule lookup timed out"))
	default:
		response.Error(c, err)
	}
}
