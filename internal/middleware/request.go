package middleware

import (
	"time"

	"github.com/787516/Matrimonial/pkg/logger"
	"github.com/787516/Matrimonial/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// RequestID tags every request with an ID, reusing a well-formed one sent
// by the client
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// RequestLogger logs one line per request
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log := logger.With("request_id", c.GetString(requestIDKey))
		if userID, ok := GetUserID(c); ok {
			log = log.With("user", userID)
		}
		kv := []interface{}{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
		}

		if c.Writer.Status() >= 500 {
			log.Errorw("Request handled", kv...)
			return
		}
		log.Debugw("Request handled", kv...)
	}
}

// Recovery turns a panic into a 500 reply
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Panic recovered", "panic", r, "path", c.FullPath(), "request_id", c.GetString(requestIDKey))
				if !c.Writer.Written() {
					utils.InternalServerError(c)
				}
				c.Abort()
			}
		}()
		c.Next()
	}
}
