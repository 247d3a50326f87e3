// Package stubserver is a development backend for the services endpoint.
package stubserver

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/samvad-hq/samvad-services-client/internal/domain"
	"github.com/samvad-hq/samvad-services-client/internal/logger"
)

// Response is what GET /services currently answers with.
type Response struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// Server holds the mutable stub response.
type Server struct {
	mu   sync.RWMutex
	resp Response
	log  logger.Logger
}

// New returns a Server answering with resp.
func New(resp Response, log logger.Logger) *Server {
	if resp.Status == 0 {
		resp.Status = http.StatusOK
	}
	return &Server{resp: resp, log: logger.Ensure(log)}
}

// Current returns the configured response.
func (s *Server) Current() Response {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resp
}

// Router builds the gin engine.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/services", s.handleServices)
	r.PUT("/_stub/response", s.handleUpdate)
	r.GET("/_stub/response", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.Current())
	})
	return r
}

func (s *Server) handleServices(c *gin.Context) {
	resp := s.Current()
	s.log.DebugObj("stub services request", "stub_request", map[string]any{
		"remote": c.ClientIP(),
		"status": resp.Status,
	})

	switch {
	case resp.Status == http.StatusNoContent:
		c.Status(resp.Status)
	case resp.Status >= 200 && resp.Status < 300:
		c.JSON(resp.Status, domain.ServiceRecord{Message: resp.Message})
	default:
		c.JSON(resp.Status, gin.H{"error": http.StatusText(resp.Status)})
	}
}

func (s *Server) handleUpdate(c *gin.Context) {
	var req struct {
		Message *string `json:"message"`
		Status  *int    `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Status != nil && (*req.Status < 100 || *req.Status > 599) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be a valid HTTP status code"})
		return
	}

	s.mu.Lock()
	if req.Message != nil {
		s.resp.Message = *req.Message
	}
	if req.Status != nil {
		s.resp.Status = *req.Status
	}
	updated := s.resp
	s.mu.Unlock()

	s.log.InfoObj("stub response updated", "stub_response", updated)
	c.JSON(http.StatusOK, updated)
}
