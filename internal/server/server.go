package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"pandemic/internal/config"
	"pandemic/internal/engine"
	"pandemic/internal/identity"
	"pandemic/internal/store"
)

// Server ties together the HTTP API and the per-room WebSocket hubs.
type Server struct {
	conf   config.Config
	rules  *engine.Rules
	feed   *store.Feed
	issuer *identity.Issuer
	log    *zap.Logger
	router *gin.Engine

	ctx  context.Context // parent of every hub
	stop context.CancelFunc

	mu   sync.Mutex
	hubs map[string]*Hub
}

func New(conf config.Config, rules *engine.Rules, st store.Store, issuer *identity.Issuer, l *zap.Logger) *Server {
	if l == nil {
		l = zap.NewNop()
	}
	ctx, stop := context.WithCancel(context.Background())
	s := &Server{
		conf:   conf,
		rules:  rules,
		feed:   store.NewFeed(st),
		issuer: issuer,
		log:    l,
		ctx:    ctx,
		stop:   stop,
		hubs:   make(map[string]*Hub),
	}
	s.router = s.newRouter()
	return s
}

func (s *Server) newRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.log))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ws", s.HandleWS)

	api := r.Group("/api")
	api.POST("/identity", s.HandleIdentity)
	api.POST("/rooms", s.requireIdentity(), s.HandleCreateRoom)
	api.GET("/rooms/:code", s.HandleGetRoom)
	api.GET("/rooms/:code/qr", s.HandleQR)
	return r
}

// Handler exposes the router, e.g. for httptest.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.conf.HTTP.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.log.Info("pandemic server starting", zap.String("addr", srv.Addr))

	select {
	case err := <-errCh:
		s.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	s.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.conf.HTTP.ShutdownTimeout())
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// Close stops every hub, which disconnects their clients.
func (s *Server) Close() {
	s.stop()
}

func (s *Server) newLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Limit(s.conf.WS.MessagesPerSecond), s.conf.WS.Burst)
}

// attach registers c with the hub of roomID, starting one if needed.
func (s *Server) attach(roomID string, c *Client) (*Hub, error) {
	for {
		s.mu.Lock()
		h := s.hubs[roomID]
		if h == nil {
			h = newHub(s, roomID)
			s.hubs[roomID] = h
			go h.Run(s.ctx)
		}
		s.mu.Unlock()

		select {
		case h.register <- c:
			return h, nil
		case <-h.done:
			if h.err != nil {
				return nil, h.err
			}
			// The hub emptied and stopped between lookup and register.
		}
	}
}

func (s *Server) dropHub(h *Hub) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hubs[h.roomID] == h {
		delete(s.hubs, h.roomID)
	}
}

func requestLogger(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		l.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
