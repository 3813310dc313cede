package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "moneta/internal/errors"
	"moneta/internal/uuid"
)

const userIDKey = "userID"

// UserScope returns a Gin middleware that reads the caller's identity from
// the X-User-ID header and stores it on the context. Every data-bearing
// route requires it; requests without a valid user ID are rejected before
// any handler runs.
func UserScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" || !uuid.IsValid(userID) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": gin.H{
					"code":    apperrors.ErrMissingUserID.Code,
					"message": apperrors.ErrMissingUserID.Message,
				},
			})
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}
