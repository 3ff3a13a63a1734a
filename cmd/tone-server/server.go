package main

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/theimaginaryfoundation/tonetype/tone"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// server exposes the enhancer over HTTP. Remote classification failures never surface in a
// response; they fall back to the offline rules inside the enhancer.
type server struct {
	enhancer     *tone.Enhancer
	apiKey       string
	defaults     tone.Settings
	maxBodyBytes int64
	logger       *slog.Logger
}

type enhanceRequest struct {
	Text     string         `json:"text"`
	Settings *tone.Settings `json:"settings,omitempty"`
}

type enhanceResponse struct {
	RequestID string `json:"request_id"`
	tone.EnhancedMessage
}

func (s *server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestID(), s.accessLog())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/v1")
	{
		v1.POST("/enhance", s.handleEnhance)
		v1.POST("/preview", s.handlePreview)
		v1.GET("/styles", s.handleStyles)
	}
	return r
}

func (s *server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func (s *server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.LogAttrs(c.Request.Context(), slog.LevelInfo, "request",
			slog.String(requestIDKey, c.GetString(requestIDKey)),
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("elapsed", time.Since(start)),
		)
	}
}

// bindEnhanceRequest decodes the body. Settings fields the request leaves out keep the server
// defaults.
func (s *server) bindEnhanceRequest(c *gin.Context) (enhanceRequest, tone.Settings, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxBodyBytes)

	merged := s.defaults
	req := enhanceRequest{Settings: &merged}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
		return enhanceRequest{}, tone.Settings{}, false
	}
	settings := s.defaults
	if req.Settings != nil {
		settings = *req.Settings
	}
	if err := settings.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid settings", "details": err.Error()})
		return enhanceRequest{}, tone.Settings{}, false
	}
	return req, settings, true
}

func (s *server) handleEnhance(c *gin.Context) {
	req, settings, ok := s.bindEnhanceRequest(c)
	if !ok {
		return
	}

	id := c.GetString(requestIDKey)
	ctx := tone.WithRequestID(c.Request.Context(), id)
	msg, err := s.enhancer.Enhance(ctx, req.Text, s.credential(c), settings)
	if err != nil {
		// Settings were validated above; what remains is the client going away.
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Enhancement abandoned", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, enhanceResponse{RequestID: id, EnhancedMessage: msg})
}

func (s *server) handlePreview(c *gin.Context) {
	req, settings, ok := s.bindEnhanceRequest(c)
	if !ok {
		return
	}
	preview, err := s.enhancer.Preview(req.Text, settings)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid settings", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, preview)
}

func (s *server) handleStyles(c *gin.Context) {
	c.JSON(http.StatusOK, tone.PreviewAllStyles(c.Query("text")))
}

// credential prefers the caller's bearer token over the server's configured key.
func (s *server) credential(c *gin.Context) string {
	const prefix = "Bearer "
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, prefix) {
		if key := strings.TrimSpace(strings.TrimPrefix(h, prefix)); key != "" {
			return key
		}
	}
	return s.apiKey
}
