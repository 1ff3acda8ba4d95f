package middleware

import (
	"net/http"

	"inkwell/internal/models"
	"inkwell/internal/services"

	"github.com/gin-gonic/gin"
)

// SessionCookie is the fixed name of the httpOnly credential cookie.
const SessionCookie = "inkwell_token"

// CurrentUserKey is the context key holding the resolved *models.User.
const CurrentUserKey = "current_user"

// LoadUser resolves the caller's identity from the session cookie and
// attaches it to the request context. It never aborts: routes that allow
// anonymous access (published blog reads) run behind this alone.
//
// The identity is attached only when the credential verifies AND the user
// record still exists and is active. A valid token for a deleted account
// resolves to nothing, so downstream code never sees a half-authenticated
// request.
func LoadUser(tokens *services.TokenService, identity *services.IdentityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		credential, err := c.Cookie(SessionCookie)
		if err != nil || credential == "" {
			c.Next()
			return
		}

		claims, err := tokens.Verify(credential)
		if err != nil {
			// Expired, tampered and malformed all mean "not logged in";
			// the distinction stays server-side.
			c.Next()
			return
		}

		user, err := identity.FindByID(claims.UserID)
		if err != nil || !user.IsActive {
			c.Next()
			return
		}

		c.Set(CurrentUserKey, user)
		c.Next()
	}
}

// AuthRequired rejects requests without a resolved identity. Runs after
// LoadUser on protected groups.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(CurrentUserKey); !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Not logged in",
			})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the resolved identity, or nil for anonymous requests.
func CurrentUser(c *gin.Context) *models.User {
	if v, exists := c.Get(CurrentUserKey); exists {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}
