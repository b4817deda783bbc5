package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// bearerToken extracts the token from the Authorization header. The
// "Bearer " prefix is stripped when present; otherwise the raw value is
// used as-is. Returns false when the header is absent.
func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer "), true
	}
	return header, true
}
