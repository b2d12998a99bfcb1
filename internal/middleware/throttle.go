package middleware

import (
	"ctchen222/Simple-Blog/internal/api/response"
	"ctchen222/Simple-Blog/internal/repository"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// MsgTooManyAttempts is shown when a client exceeds the attempt limit.
const MsgTooManyAttempts = "Too many attempts. Please try again later."

// Throttle limits attempts per client IP to limit per window. Over the limit the request
// is answered with 429 and view re-rendered with an error. A successful attempt (the
// handler redirects) clears the client's counter. A nil repository disables the check,
// and store failures let the request through.
func Throttle(attempts repository.AttemptRepository, limit int, window time.Duration, view string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if attempts == nil || limit <= 0 {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		count, err := attempts.Hit(ctx, c.ClientIP(), window)
		if err != nil {
			slog.WarnContext(ctx, "Attempt counter unavailable, allowing request", "error", err)
			c.Next()
			return
		}

		if count > int64(limit) {
			slog.WarnContext(ctx, "Too many attempts", "client.ip", c.ClientIP(), "attempts", count)
			response.Errors(c, http.StatusTooManyRequests, view, []string{MsgTooManyAttempts}, nil)
			c.Abort()
			return
		}
		c.Next()

		if c.Writer.Status() == http.StatusFound {
			if err := attempts.Reset(ctx, c.ClientIP()); err != nil {
				slog.WarnContext(ctx, "Failed to clear attempt counter", "error", err)
			}
		}
	}
}
