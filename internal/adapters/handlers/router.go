package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rentgengl/copilot-1c-proxy/internal/metrics"
)

// ProvideRouter настраивает и возвращает HTTP-роутер
func ProvideRouter(h *Handler, m *metrics.Metrics, log *zap.Logger) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), AccessLog(log), Observe(m))

	router.GET("/", h.Root)
	router.GET("/health", h.Health)
	router.GET("/metrics", gin.WrapH(m.Handler()))

	router.POST("/ask-ai", h.AskAI)
	router.POST("/explain-syntax", h.ExplainSyntax)
	router.POST("/check-code", h.CheckCode)

	router.GET("/sessions", h.Sessions)
	router.DELETE("/sessions/:key", h.DropSession)

	api := router.Group("/api")
	{
		api.GET("/:resource", h.HandleResource)
		api.POST("/:resource", h.HandleResource)
		api.GET("/:resource/:id", h.HandleResource)
		api.PUT("/:resource/:id", h.HandleResource)
		api.PATCH("/:resource/:id", h.HandleResource)
		api.DELETE("/:resource/:id", h.HandleResource)
	}
	return router
}
