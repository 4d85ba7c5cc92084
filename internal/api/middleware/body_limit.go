package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mdavis72884/bramble-claude-sub001/pkg/response"
)

// BodyLimit caps request bodies at maxBytes. Declared oversize bodies are
// rejected up front; undeclared ones fail when a handler reads past the cap.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "request body too large")
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()
	}
}
