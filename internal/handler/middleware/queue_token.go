package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	QueueTokenHeader = "X-Queue-Token"
	ctxQueueTokenKey = "queue_token"
)

// RequireQueueToken only checks presence; whether the token is ACTIVE is decided by the queue.
func RequireQueueToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.GetHeader(QueueTokenHeader))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": gin.H{"message": "Queue token required"},
			})
			return
		}
		c.Set(ctxQueueTokenKey, token)
		c.Next()
	}
}

func GetQueueToken(c *gin.Context) (string, bool) {
	token, exists := c.Get(ctxQueueTokenKey)
	if !exists {
		return "", false
	}
	s, ok := token.(string)
	return s, ok && s != ""
}
