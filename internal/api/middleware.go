package api

import (
	"net/http"
	"time"

	"github.com/caffeineduck/pyplay/internal/logger"
	"github.com/gin-gonic/gin"
)

// LoggingMiddleware logs HTTP requests
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()

		// [method] path?query - status (latency)
		if raw != "" {
			path = path + "?" + raw
		}

		switch {
		case statusCode >= 500:
			logger.Errorf("[%s] %s - %d (%v)", c.Request.Method, path, statusCode, latency)
		case statusCode >= 400:
			logger.Warnf("[%s] %s - %d (%v)", c.Request.Method, path, statusCode, latency)
		default:
			logger.Debugf("[%s] %s - %d (%v)", c.Request.Method, path, statusCode, latency)
		}
	}
}

const sessionKey = "session"

// sessionMiddleware resolves :id to a live session and touches it.
func (s *Server) sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := s.sessions.get(c.Param("id"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

func sessionFrom(c *gin.Context) *session {
	return c.MustGet(sessionKey).(*session)
}
