package middleware

import (
	"ctchen222/Simple-Blog/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader is read from incoming requests and echoed on every response.
const RequestIDHeader = "X-Request-ID"

const maxRequestIDLength = 64

// RequestID tags each request with an id, reusing a sane client-supplied one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.New().String()
		}

		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}
