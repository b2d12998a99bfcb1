package middleware

import (
	"ctchen222/Simple-Blog/internal/auth"
	"ctchen222/Simple-Blog/internal/logger"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// SessionCookie is the cookie carrying the signed session token.
const SessionCookie = "ourSimpleApp"

// Authenticate decodes the session cookie on every request. A valid token stores the
// identity on the context; anything else leaves the request anonymous.
func Authenticate(tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err != nil || token == "" {
			c.Next()
			return
		}

		identity, ok := tokens.Verify(token)
		if !ok {
			slog.DebugContext(c.Request.Context(), "Ignoring invalid session token")
			c.Next()
			return
		}

		c.Set(auth.ContextKey, &identity)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), identity.UserID))
		c.Next()
	}
}

// CurrentUser returns the identity set by Authenticate.
func CurrentUser(c *gin.Context) (*auth.Identity, bool) {
	v, exists := c.Get(auth.ContextKey)
	if !exists {
		return nil, false
	}
	identity, ok := v.(*auth.Identity)
	return identity, ok && identity != nil
}

// RequireAuth redirects anonymous requests home before the handler runs.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}
		c.Next()
	}
}
