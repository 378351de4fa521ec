package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	AdminKeyHeader    = "X-Admin-Key"
	SubmitterIDHeader = "X-Submitter-ID"

	// SubmitterIDKey is the gin context key holding the caller's submitter id.
	SubmitterIDKey = "submitterID"
)

type AdminMiddleware struct {
	key []byte
}

func NewAdminMiddleware(key string) *AdminMiddleware {
	return &AdminMiddleware{key: []byte(key)}
}

// Middleware rejects requests whose X-Admin-Key does not match the configured
// key. An empty configured key locks the admin surface entirely.
func (m *AdminMiddleware) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader(AdminKeyHeader)
		if got == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing admin key"})
			return
		}

		if len(m.key) == 0 || subtle.ConstantTimeCompare([]byte(got), m.key) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Next()
	}
}

// Submitter stores the X-Submitter-ID header in the context. Submitters are
// identified by an opaque id issued elsewhere.
func Submitter() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(SubmitterIDHeader))
		if id == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing submitter id"})
			return
		}

		c.Set(SubmitterIDKey, id)
		c.Next()
	}
}
