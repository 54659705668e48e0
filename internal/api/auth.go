package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"facility-booking-backend/internal/identity"
)

const actorKey = "actor"

// RequireActor builds the acting identity from the gateway-injected
// headers and rejects requests without one. Authentication itself happens
// upstream; these headers are trusted inside the deployment boundary.
func RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader("X-User-ID"))
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "detail": "missing X-User-ID header"})
			return
		}

		var roles []string
		for _, r := range strings.Split(c.GetHeader("X-User-Roles"), ",") {
			if r = strings.TrimSpace(r); r != "" {
				roles = append(roles, r)
			}
		}

		c.Set(actorKey, identity.Actor{ID: userID, Roles: roles})
		c.Next()
	}
}

// Actor returns the acting identity set by RequireActor.
func Actor(c *gin.Context) identity.Actor {
	v, _ := c.Get(actorKey)
	actor, _ := v.(identity.Actor)
	return actor
}
