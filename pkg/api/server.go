// Package api exposes a Fortuna accumulator over HTTP: entropy ingestion,
// random data requests, health and Prometheus metrics. The accumulator
// itself keeps no internal locking, so the server guards every call with a
// mutex.
package api

import (
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lokey/fortuna-core/pkg/database"
	"github.com/lokey/fortuna-core/pkg/fortuna"
	"github.com/lokey/fortuna-core/pkg/metrics"
)

// Server is the HTTP API in front of a Fortuna accumulator.
type Server struct {
	accumulator *fortuna.Accumulator
	audit       database.AuditLog
	port        int
	Router      *gin.Engine
	validate    *validator.Validate
	metrics     *metrics.Metrics
	registry    *prometheus.Registry

	mu sync.Mutex
}

// EventRequest is the body of POST /api/v1/events: one entropy observation
// to absorb into a pool.
type EventRequest struct {
	SourceID  byte   `json:"source_id"`
	PoolIndex int    `json:"pool_index" validate:"gte=0,lt=32"`
	Data      string `json:"data" validate:"required,hexadecimal"`
}

// RandomRequest is the body of POST /api/v1/random: a request for
// pseudorandom bytes.
type RandomRequest struct {
	Size int `json:"size" validate:"required,gt=0,lte=1048576"`
}

// RandomResponse carries the generated bytes hex-encoded, since JSON has no
// native binary type.
type RandomResponse struct {
	Data string `json:"data"`
	Size int    `json:"size"`
}

// HealthResponse reports whether the accumulator has been seeded.
type HealthResponse struct {
	Status string `json:"status"`
	Seeded bool   `json:"seeded"`
}

// NewServer builds a Server wrapping accumulator. audit may be nil, in which
// case emissions and reseeds are simply not logged. reg is the Prometheus
// registry metrics are registered against; pass prometheus.NewRegistry() in
// tests to avoid colliding across test cases.
func NewServer(accumulator *fortuna.Accumulator, audit database.AuditLog, port int, reg *prometheus.Registry) *Server {
	router := gin.Default()
	validate := validator.New()

	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	s := &Server{
		accumulator: accumulator,
		audit:       audit,
		port:        port,
		Router:      router,
		validate:    validate,
		metrics:     metrics.New(reg),
		registry:    reg,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.Router.GET("/health", s.HealthCheck)
	s.Router.GET("/metrics", s.MetricsHandler)

	v1 := s.Router.Group("/api/v1")
	{
		v1.POST("/events", s.AddEvent)
		v1.POST("/random", s.GetRandomData)
	}
}

// Run starts the HTTP server and blocks until it exits.
func (s *Server) Run() error {
	return s.Router.Run(fmt.Sprintf(":%d", s.port))
}

// AddEvent ingests one entropy event into the accumulator's pools.
func (s *Server) AddEvent(c *gin.Context) {
	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := s.validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	data, err := hex.DecodeString(req.Data)
	if err != nil || len(data) == 0 || len(data) > 32 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "data must be 1-32 bytes, hex encoded"})
		return
	}

	s.mu.Lock()
	s.accumulator.AddEvent(req.SourceID, req.PoolIndex, data)
	pool0Fill := s.accumulator.Pool0FillBytes()
	s.mu.Unlock()

	s.metrics.EventsIngested.WithLabelValues(strconv.Itoa(int(req.SourceID))).Inc()
	s.metrics.Pool0FillBytes.Set(float64(pool0Fill))
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

// GetRandomData returns size pseudorandom bytes, hex encoded.
func (s *Server) GetRandomData(c *gin.Context) {
	var req RandomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := s.validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	out := make([]byte, req.Size)

	s.mu.Lock()
	reseedsBefore := s.accumulator.ReseedCount()
	err := s.accumulator.RandomData(out)
	reseedsAfter := s.accumulator.ReseedCount()
	pool0Fill := s.accumulator.Pool0FillBytes()
	s.mu.Unlock()

	if err != nil {
		s.metrics.NotSeededErrors.Inc()
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	s.metrics.BytesEmitted.Add(float64(len(out)))
	s.metrics.Pool0FillBytes.Set(float64(pool0Fill))
	if reseedsAfter != reseedsBefore {
		s.metrics.ReseedsTotal.Add(float64(reseedsAfter - reseedsBefore))
		if s.audit != nil {
			_ = s.audit.RecordReseed(reseedsAfter)
		}
	}
	if s.audit != nil {
		_ = s.audit.RecordEmission(len(out))
	}

	c.JSON(http.StatusOK, RandomResponse{
		Data: hex.EncodeToString(out),
		Size: len(out),
	})
}

// HealthCheck reports service liveness and whether the accumulator has
// completed its first reseed yet.
func (s *Server) HealthCheck(c *gin.Context) {
	s.mu.Lock()
	seeded := s.accumulator.Seeded()
	s.mu.Unlock()

	status := http.StatusOK
	statusText := "ok"
	if !seeded {
		status = http.StatusServiceUnavailable
		statusText = "unseeded"
	}

	c.JSON(status, HealthResponse{Status: statusText, Seeded: seeded})
}

// MetricsHandler serves Prometheus metrics.
func (s *Server) MetricsHandler(c *gin.Context) {
	promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}).ServeHTTP(c.Writer, c.Request)
}
