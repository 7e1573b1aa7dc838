package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/lunacycle-screening-server/internal/config"
	"github.com/lunacycle-screening-server/internal/domain"
)

const requestIDKey = "request_id"

// requestIDMiddleware attaches a request ID to every request, honoring a
// caller-supplied X-Request-ID header.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Header("X-Request-ID", rid)
		c.Next()
	}
}

// loggingMiddleware emits a structured access log line per request.
func loggingMiddleware(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		rid, _ := c.Get(requestIDKey)
		logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"duration":   time.Since(start).String(),
			"request_id": rid,
		}).Info("HTTP request")
	}
}

// rateLimitMiddleware applies a token-bucket limit per client IP.
func rateLimitMiddleware(cfg config.RateLimitConfig, logger *logrus.Logger) gin.HandlerFunc {
	var (
		mu       sync.Mutex
		limiters = make(map[string]*rate.Limiter)
	)

	limiterFor := func(clientIP string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		l, ok := limiters[clientIP]
		if !ok {
			l = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)
			limiters[clientIP] = l
		}
		return l
	}

	return func(c *gin.Context) {
		if !limiterFor(c.ClientIP()).Allow() {
			logger.WithField("client_ip", c.ClientIP()).Warn("Rate limit exceeded")
			rid, _ := c.Get(requestIDKey)
			ridStr, _ := rid.(string)
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				domain.NewAPIError(domain.ErrCodeRateLimit, "too many requests", "", ridStr))
			return
		}
		c.Next()
	}
}
