package v1

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-task-manager/internal/models"
	"github.com/adanyl0v/go-task-manager/internal/services"
)

const actorCtxKey = "actor"

func (h *handlerImpl) HandleAuthMiddleware(c *gin.Context) {
	const authHeader = "Authorization"
	header := c.GetHeader(authHeader)
	if header == "" {
		h.logger.Error().Msg("authorization header required")
		abort(c, newStatusTextError(http.StatusUnauthorized))
		return
	}

	const bearerPrefix = "Bearer"
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != bearerPrefix || parts[1] == "" {
		h.logger.Error().Msg("invalid authorization header")
		abort(c, newStatusTextError(http.StatusUnauthorized))
		return
	}

	actor, err := h.auth.Authenticate(c, parts[1])
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to authenticate")
		if errors.Is(err, services.ErrInvalidCredentials) {
			abort(c, newStatusTextError(http.StatusUnauthorized))
			return
		}
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	c.Set(actorCtxKey, *actor)
	c.Next()
}

// actorFromContext returns the actor the auth middleware stored.
func actorFromContext(c *gin.Context) (models.Actor, bool) {
	value, exists := c.Get(actorCtxKey)
	if !exists {
		return models.Actor{}, false
	}
	actor, ok := value.(models.Actor)
	return actor, ok
}
