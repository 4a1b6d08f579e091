package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDKey — ключ в контексте gin, под которым хранится идентификатор запроса.
const RequestIDKey = "request_id"

// RequestID присваивает каждому запросу уникальный идентификатор.
// Если клиент передал X-Request-ID, используем его, иначе генерируем новый.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}
