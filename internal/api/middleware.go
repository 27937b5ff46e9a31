package api

import (
	"strings"

	"detectorbot/relay/internal/domain"
	"detectorbot/relay/internal/service"

	"github.com/gin-gonic/gin"
)

// Constants for context keys
const ContextUserIDKey = "userID"

// OptionalAuthMiddleware resolves an Authorization bearer credential into an
// authenticated user id when one is present and valid. It never aborts:
// authentication is optional on every endpoint, and a broken credential just
// means the request proceeds anonymously.
func OptionalAuthMiddleware(resolver service.IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if credential := bearerCredential(c); credential != "" {
			if userID := resolver.ResolveAuthenticated(c.Request.Context(), credential); userID != "" {
				c.Set(ContextUserIDKey, userID)
			}
		}
		c.Next()
	}
}

// bearerCredential extracts the token from an "Authorization: Bearer <token>"
// header, or "" when absent or malformed.
func bearerCredential(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// principalFromContext assembles the request principal from the resolved
// authentication (if any) and a caller-supplied session handle.
func principalFromContext(c *gin.Context, sessionID string) domain.Principal {
	p := domain.Principal{SessionHandle: sessionID}
	if idRaw, exists := c.Get(ContextUserIDKey); exists {
		if idStr, ok := idRaw.(string); ok {
			p.UserID = idStr
		}
	}
	return p
}

// Helper to return JSON error response with a machine-readable code.
func errorResponse(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"error": gin.H{"code": code, "message": message}})
}
