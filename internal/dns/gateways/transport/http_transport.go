package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/haukened/rr-anchor/internal/dns/common/log"
)

const shutdownTimeout = 5 * time.Second

// HTTPTransport serves the read-only lookup API over HTTP using gin.
type HTTPTransport struct {
	addr   string
	engine *gin.Engine
	server *http.Server
	logger log.Logger

	mu       sync.RWMutex
	running  bool
	listener net.Listener
	done     chan struct{}
}

// NewHTTPTransport builds the gin engine and routes; nothing is bound until Start.
func NewHTTPTransport(addr string, reg Registry, stats StatsFunc, logger log.Logger) *HTTPTransport {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(logger))
	registerRoutes(engine, &handler{reg: reg, stats: stats, logger: logger})

	return &HTTPTransport{
		addr:   addr,
		engine: engine,
		logger: logger,
		server: &http.Server{
			Handler:           engine,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// Handler exposes the routed engine, e.g. for httptest.
func (t *HTTPTransport) Handler() http.Handler {
	return t.engine
}

// Start binds the listener and serves in the background. Cancelling ctx stops
// the transport.
func (t *HTTPTransport) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return fmt.Errorf("HTTP transport already running")
	}

	ln, err := net.Listen("tcp", t.addr)
	if err != nil {
		return fmt.Errorf("failed to bind HTTP listener on %s: %w", t.addr, err)
	}
	t.listener = ln
	t.running = true
	t.done = make(chan struct{})

	t.logger.Info(map[string]any{
		"transport": "http",
		"address":   ln.Addr().String(),
	}, "lookup transport started")

	go t.serve(ln, t.done)
	go func(done <-chan struct{}) {
		select {
		case <-ctx.Done():
			t.logger.Debug(nil, "HTTP transport stopping due to context cancellation")
			_ = t.Stop()
		case <-done:
		}
	}(t.done)
	return nil
}

func (t *HTTPTransport) serve(ln net.Listener, done chan struct{}) {
	defer close(done)
	if err := t.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		t.logger.Error(map[string]any{"error": err.Error()}, "HTTP transport failed")
	}
}

// Stop gracefully shuts down the server. The lock is held until in-flight
// requests have drained, so concurrent callers return only after shutdown.
func (t *HTTPTransport) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := t.server.Shutdown(ctx)
	if err != nil {
		t.logger.Warn(map[string]any{"error": err.Error()}, "Error shutting down HTTP server")
	}
	<-t.done
	t.running = false

	t.logger.Info(map[string]any{
		"transport": "http",
		"address":   t.listener.Addr().String(),
	}, "lookup transport stopped")
	return err
}

// Address returns the bound address once started, else the configured one.
func (t *HTTPTransport) Address() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.listener != nil {
		return t.listener.Addr().String()
	}
	return t.addr
}

func requestLogger(logger log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		logger.Debug(map[string]any{
			"method":     method,
			"path":       path,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  c.ClientIP(),
		}, "api request")
	}
}
