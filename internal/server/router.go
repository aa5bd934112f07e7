package server

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// NewRouter wires the prediction routes, CORS, request IDs and access logs.
// An origin of "*" allows every origin.
func NewRouter(h *PredictHandler, allowOrigins []string) (*gin.Engine, error) {
	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", requestIDHeader},
		ExposeHeaders: []string{requestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range allowOrigins {
		switch {
		case o == "*":
			corsCfg.AllowAllOrigins = true
		case strings.HasPrefix(o, "http://"), strings.HasPrefix(o, "https://"):
			corsCfg.AllowOrigins = append(corsCfg.AllowOrigins, o)
		default:
			return nil, fmt.Errorf("server: bad CORS origin %q: must start with http:// or https://", o)
		}
	}
	if corsCfg.AllowAllOrigins {
		corsCfg.AllowOrigins = nil
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestID(), accessLog())
	if corsCfg.AllowAllOrigins || len(corsCfg.AllowOrigins) > 0 {
		r.Use(cors.New(corsCfg))
	}

	r.POST("/predict", h.Predict)
	r.GET("/health", h.GetHealth)
	return r, nil
}

// requestID propagates X-Request-ID or assigns a new UUID.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Info("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"request_id", c.GetString(requestIDKey),
		)
	}
}
