package middleware

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/OkontaEhis/myhitmeup-backend/internal/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// Allower 非阻塞地为 key 取一个令牌。
type Allower interface {
	Allow(ctx context.Context, key string) (bool, time.Duration, error)
}

// RateLimit 按客户端 IP 与路由限流，超限返回 429 并带 Retry-After。
// 限流器出错时放行请求，只记录日志。
func RateLimit(limiter Allower, route string, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := route + ":" + c.ClientIP()
		ok, wait, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			logger.Warn("rate limit check failed", slog.String("route", route), slog.String("error", err.Error()))
			c.Next()
			return
		}
		if !ok {
			metrics.RateLimitRejectedTotal.WithLabelValues(route).Inc()
			secs := int(math.Ceil(wait.Seconds()))
			if secs < 1 {
				secs = 1
			}
			c.Header("Retry-After", strconv.Itoa(secs))
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests", "retry_after": secs})
			c.Abort()
			return
		}
		c.Next()
	}
}
