package middleware

import "github.com/gin-gonic/gin"

// actorHeader names the header carrying the acting user's identity. Auth is
// handled by an upstream collaborator; this service only records who acted.
const actorHeader = "X-Actor-ID"

// GetActorID returns the acting user ID supplied by the caller, defaulting to
// "system" when absent.
func GetActorID(c *gin.Context) string {
	if actor := c.GetHeader(actorHeader); actor != "" {
		return actor
	}
	return "system"
}
