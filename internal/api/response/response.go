// Package response renders the HTML views and redirects shared by every handler.
package response

import (
	"ctchen222/Simple-Blog/internal/auth"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Render writes the named view. Every view receives "errors" (empty unless set by the
// caller) and "user" (the signed-in identity, or nil).
func Render(c *gin.Context, code int, view string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if _, ok := data["errors"]; !ok {
		data["errors"] = []string{}
	}

	data["user"] = nil
	if v, ok := c.Get(auth.ContextKey); ok {
		if user, ok := v.(*auth.Identity); ok && user != nil {
			data["user"] = user
		}
	}

	c.HTML(code, view, data)
}

// Errors re-renders a form view with the given validation messages.
func Errors(c *gin.Context, code int, view string, messages []string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["errors"] = messages
	Render(c, code, view, data)
}

// Redirect sends a 302 to location.
func Redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusFound, location)
}

// InternalError logs err and answers with a plain 500 page.
func InternalError(c *gin.Context, err error) {
	slog.ErrorContext(c.Request.Context(), "Request failed", "error", err, "http.path", c.Request.URL.Path)
	c.String(http.StatusInternalServerError, "Internal Server Error")
}
