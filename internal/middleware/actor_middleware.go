// internal/middleware/actor_middleware.go
package middleware

import (
	"fmt"
	"strings"

	"dealer-crm-service/internal/domain/timeline"
	xerrors "dealer-crm-service/internal/pkg/errors"
	"dealer-crm-service/internal/pkg/jwt"
	"dealer-crm-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	actorKey    = "actor"
	ActorHeader = "X-Actor"
)

// ActorMiddleware resolves who is acting on the request. With a verifier
// configured only a verified bearer token names the actor and X-Actor is
// ignored; without one the X-Actor header is trusted. Requests that name
// nobody act as the system user.
type ActorMiddleware struct {
	verifier *jwt.Verifier
}

func NewActorMiddleware(verifier *jwt.Verifier) *ActorMiddleware {
	return &ActorMiddleware{verifier: verifier}
}

func (m *ActorMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.verifier != nil {
			m.verified(c)
			return
		}

		actor := strings.TrimSpace(c.GetHeader(ActorHeader))
		if actor == "" {
			actor = timeline.SystemActor
		}
		c.Set(actorKey, actor)
		c.Next()
	}
}

func (m *ActorMiddleware) verified(c *gin.Context) {
	token := extractToken(c)
	if token == "" {
		c.Set(actorKey, timeline.SystemActor)
		c.Next()
		return
	}

	claims, err := m.verifier.Verify(token)
	if err != nil {
		response.FromError(c, "invalid or expired token", fmt.Errorf("%w: %w", xerrors.ErrUnauthorized, err))
		return
	}
	c.Set(actorKey, claims.Actor())
	c.Next()
}

// GetActor returns the acting user set by ActorMiddleware.
func GetActor(c *gin.Context) string {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(string); ok && actor != "" {
			return actor
		}
	}
	return timeline.SystemActor
}

func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
