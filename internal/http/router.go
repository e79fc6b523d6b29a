package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter configura el router de Gin con middlewares y la ruta del chat.
func NewRouter(logger *zap.Logger, chatH *ChatHandler) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonResponses())

	api := r.Group("/api")
	api.POST("/chat", chatH.PostChat)

	return r
}

// zapLoggerMiddleware registra una línea por request con la regla aplicada, si la hubo.
// Nunca loguea el body.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.Int("bytes", c.Writer.Size()),
			zap.String("client_ip", c.ClientIP()),
		}
		if rule := c.GetString(ctxKeyReplyRule); rule != "" {
			fields = append(fields, zap.String("rule", rule))
		}
		logger.Info("chat request", fields...)
	}
}

// jsonResponses fija el Content-Type antes del handler; las rutas que no existen también responden JSON.
func jsonResponses() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "application/json")
		c.Next()
	}
}
