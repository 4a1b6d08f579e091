package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/glossa-labs/glossa-backend/internal/logger"
	"github.com/glossa-labs/glossa-backend/internal/pkg/apperror"
)

// ErrorHandler обрабатывает ошибки централизованно.
// Маскирует внутренние ошибки и возвращает понятные сообщения клиенту.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Проверяем, не был ли уже отправлен ответ
		if c.Writer.Written() {
			return
		}

		if len(c.Errors) > 0 {
			err := c.Errors.Last()

			statusCode := http.StatusInternalServerError
			code := apperror.ErrCodeInternal
			message := "внутренняя ошибка сервера"

			var appErr *apperror.AppError
			if errors.As(err.Err, &appErr) {
				statusCode = appErr.HTTPStatus
				code = appErr.Code
				message = appErr.Message
			}

			// Логируем ошибку
			if logger.Log != nil {
				entry := logger.Log.WithFields(logrus.Fields{
					"error":      err.Error(),
					"error_code": code,
					"path":       c.Request.URL.Path,
					"method":     c.Request.Method,
					"request_id": c.GetString(RequestIDKey),
				})
				if statusCode >= http.StatusInternalServerError {
					entry.Error("Request error")
				} else {
					entry.Warn("Request error")
				}
			}

			c.JSON(statusCode, gin.H{"error": message, "code": code})
		}
	}
}
