package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rentgengl/copilot-1c-proxy/internal/metrics"
	"github.com/rentgengl/copilot-1c-proxy/internal/requestmeta"
)

// RequestID присваивает каждому запросу идентификатор и возвращает его
// клиенту в заголовке X-Request-Id.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.New().String()
		c.Request = c.Request.WithContext(requestmeta.WithRequestID(c.Request.Context(), id))
		c.Header("X-Request-Id", id)
		c.Next()
	}
}

// AccessLog пишет структурированную запись о каждом обработанном запросе.
func AccessLog(log *zap.Logger) gin.HandlerFunc {
	accessLog := log.Named("http")
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		accessLog.Info("запрос обработан",
			zap.String("request_id", requestmeta.RequestID(c.Request.Context())),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(started)),
		)
	}
}

// Observe учитывает запрос в метриках. Ресурсом служит шаблон маршрута,
// чтобы не плодить метки на каждый идентификатор объекта.
func Observe(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(started))
	}
}
