package server

import (
	"io"
	"net/http"
	"time"

	"github.com/danmuck/serialforce/internal/envelope"
	"github.com/danmuck/serialforce/internal/inspect"
	"github.com/danmuck/serialforce/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	observability.RegisterMetrics()

	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.started).String(),
			"service": nodeName,
			"version": version,
		})
	})
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.router.Group("/v1")
	v1.GET("/types", s.handleTypes)
	v1.POST("/inspect", s.handleInspect)
	v1.POST("/verify", s.handleVerify)
}

func (s *Server) handleTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"types": s.resolver.Names()})
}

func (s *Server) handleInspect(c *gin.Context) {
	format, err := inspect.ParseFormat(c.Query("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	body, ok := s.readEnvelope(c, "inspect")
	if !ok {
		return
	}

	node := inspect.Inspect(body, s.resolver, inspect.Options{})
	stats := inspect.Count(node)
	observability.RecordEnvelope("http", "inspect", observability.EnvelopeResult(stats.Invalid, stats.Unknown), len(body))

	out, err := inspect.Marshal(node, format)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, format.ContentType(), out)
}

func (s *Server) handleVerify(c *gin.Context) {
	body, ok := s.readEnvelope(c, "verify")
	if !ok {
		return
	}
	h, err := envelope.Verify(body)
	if err != nil {
		observability.RecordEnvelope("http", "verify", observability.ResultInvalid, len(body))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"valid": false, "error": err.Error()})
		return
	}
	name := s.resolver.Resolve(body)
	result := observability.ResultOK
	if name == "" {
		result = observability.ResultUnknown
	}
	observability.RecordEnvelope("http", "verify", result, len(body))
	c.JSON(http.StatusOK, gin.H{
		"valid":       true,
		"type":        name,
		"type_token":  h.Type.String(),
		"payload_len": h.PayloadLen,
	})
}

// readEnvelope reads the request body under the configured size limit. It
// writes the error response itself and reports false on failure.
func (s *Server) readEnvelope(c *gin.Context, op string) ([]byte, bool) {
	limit := s.limits.MaxEnvelopeBytes
	var r io.Reader = c.Request.Body
	if limit > 0 {
		r = io.LimitReader(c.Request.Body, int64(limit)+1)
	}
	body, err := io.ReadAll(r)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	if err := s.limits.Check(len(body)); err != nil {
		observability.RecordEnvelope("http", op, observability.ResultRejected, len(body))
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
		return nil, false
	}
	return body, true
}
