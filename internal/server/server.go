// Package server exposes the table service over HTTP and WebSocket: a JSON
// API for table operations and a per-table event stream. It owns no game
// state; every request goes straight to the service and every event comes
// off the bus.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/feltkit/holdemd/internal/events"
	"github.com/feltkit/holdemd/internal/table"
)

// Server is the HTTP/WebSocket front of one holdemd instance.
type Server struct {
	svc      *table.Service
	bus      *events.Bus
	logger   *log.Logger
	router   *gin.Engine
	upgrader websocket.Upgrader
	latency  *prometheus.HistogramVec
	wsGauge  prometheus.Gauge
}

// New builds the server and its routes. The registry may be nil, in which
// case metrics are collected but /metrics serves an empty registry.
func New(svc *table.Service, bus *events.Bus, reg *prometheus.Registry, logger *log.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		svc:    svc,
		bus:    bus,
		logger: logger.WithPrefix("server"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// The stream is already scoped by the player query
				// parameter; no cookie auth to protect.
				return true
			},
		},
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "holdemd",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Request latency by route, method and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
		wsGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "holdemd",
			Subsystem: "ws",
			Name:      "clients",
			Help:      "Connected WebSocket clients.",
		}),
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	} else {
		reg.MustRegister(s.latency, s.wsGauge)
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.observe())

	r.GET("/healthz", s.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	r.GET("/ws", s.handleWS)

	t := r.Group("/tables/:id")
	t.POST("/deal", s.handleDeal)
	t.POST("/action", s.handleAction)
	t.POST("/timeout", s.handleTimeout)
	t.GET("/state", s.handleState)
	t.POST("/reset", s.handleReset)
	t.POST("/join", s.handleJoin)
	t.POST("/leave", s.handleLeave)
	t.GET("/suggest", s.handleSuggest)

	s.router = r
	return s
}

// Handler exposes the route tree, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is canceled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	s.logger.Info("Listening", "addr", addr)
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutCtx); err != nil {
			return err
		}
		s.logger.Info("Server stopped")
		return nil
	}
}

// observe times every request into the latency histogram and debug-logs it.
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unrouted"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)
		s.latency.WithLabelValues(route, c.Request.Method, strconv.Itoa(status)).Observe(elapsed.Seconds())
		s.logger.Debug("Request served",
			"method", c.Request.Method, "path", c.Request.URL.Path, "status", status, "duration", elapsed)
	}
}

// fail writes the wire error for err. Rule violations and lookups are the
// client's problem and logged quietly; everything unrecognized is ours.
func (s *Server) fail(c *gin.Context, err error) {
	status, ae := classify(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed", "path", c.Request.URL.Path, "error", err)
	} else {
		s.logger.Debug("Request rejected", "path", c.Request.URL.Path, "code", ae.Code, "error", err)
	}
	c.JSON(status, errorResponse{Success: false, Error: ae})
}

func (s *Server) invalid(c *gin.Context, message string) {
	s.fail(c, &invalidRequestError{message: message})
}

// invalidRequestError carries binding and parameter problems into classify.
type invalidRequestError struct {
	message string
}

func (e *invalidRequestError) Error() string {
	return e.message
}

var errInvalidRequest = errors.New("invalid request")

func (e *invalidRequestError) Is(target error) bool {
	return target == errInvalidRequest
}
