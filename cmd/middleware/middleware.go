package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/avora-app/reservations/internal/dto"
)

func LoggingMiddleware() gin.HandlerFunc {
	return func(c *ginext.Context) {
		start := time.Now()
		c.Next()

		zlog.Logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

// StaffOnly gates the moderation surface behind a shared staff token. Real
// authentication stays out of scope; this is the staff flag, nothing more.
func StaffOnly(token string) gin.HandlerFunc {
	return func(c *ginext.Context) {
		if token == "" || c.GetHeader("X-Admin-Token") != token {
			dto.UnauthorizedError(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
