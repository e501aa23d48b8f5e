package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"stock-watchlist/src/interfaces"
	"stock-watchlist/src/logger"
	"stock-watchlist/src/models"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// WatchlistServer
// -----------------------------------------------------------------------------

// WatchlistServer is the backend: it proxies quotes and symbol search to the
// upstream provider, and exposes the mounted watchlist over REST and websocket.
type WatchlistServer struct {
	Config   *models.MConfig
	Logger   *logger.Logger
	Upstream interfaces.IUpstream
	Watch    interfaces.IWatchlistEngine // nil disables /api/watchlist and /ws

	engine     *gin.Engine
	httpServer *http.Server

	// WebSocket clients, owned by the hub loop
	clients     map[*Client]struct{}
	register    chan *Client
	unregister  chan *Client
	viewChanged chan *Client
	changed     chan struct{} // coalesced engine notifications
	quit        chan struct{}
	connections atomic.Int64

	hubOnce     sync.Once
	stopOnce    sync.Once
	unsubscribe func()
}

var _ interfaces.IDataExchanger = (*WatchlistServer)(nil)

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewWatchlistServer(cfg *models.MConfig, log *logger.Logger, upstream interfaces.IUpstream, watch interfaces.IWatchlistEngine) *WatchlistServer {
	if strings.ToLower(cfg.LogLevel) != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &WatchlistServer{
		Config:      cfg,
		Logger:      log,
		Upstream:    upstream,
		Watch:       watch,
		engine:      gin.New(),
		clients:     make(map[*Client]struct{}),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		viewChanged: make(chan *Client),
		changed:     make(chan struct{}, 1),
		quit:        make(chan struct{}),
	}

	s.engine.Use(Recovery(), RequestID(), Logging(LoggingConfig{SkipPaths: []string{"/api/health"}}), CORS())
	s.setupRoutes()

	if watch != nil {
		s.unsubscribe = watch.Subscribe(s.Notify)
	}
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *WatchlistServer) setupRoutes() {
	api := s.engine.Group("/api")

	// Quote proxy
	api.GET("/quote/:symbol", s.getQuote)
	api.GET("/search", s.getSearch)

	api.GET("/health", s.getHealth)
	api.GET("/config", s.getConfig)

	if s.Watch != nil {
		api.GET("/watchlist", s.getWatchlist)
		api.POST("/watchlist", s.addSymbol)
		api.DELETE("/watchlist/:symbol", s.removeSymbol)

		s.engine.GET("/ws", s.handleWebSocket)
	}
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

// Handler exposes the router with the hub running, for embedding and tests
func (s *WatchlistServer) Handler() http.Handler {
	s.startHub()
	return s.engine
}

// -----------------------------------------------------------------------------

func (s *WatchlistServer) startHub() {
	s.hubOnce.Do(func() {
		go s.runHub()
	})
}

// -----------------------------------------------------------------------------

func (s *WatchlistServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting server on %s", addr)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *WatchlistServer) Stop() error {
	var err error
	s.stopOnce.Do(func() {
		if s.unsubscribe != nil {
			s.unsubscribe()
		}
		close(s.quit)

		if s.httpServer != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			err = s.httpServer.Shutdown(ctx)
		}
	})
	return err
}

// -----------------------------------------------------------------------------

// Notify schedules a snapshot push to every websocket viewer. Bursts of
// notifications collapse into one push.
func (s *WatchlistServer) Notify() {
	select {
	case s.changed <- struct{}{}:
	default:
	}
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *WatchlistServer) getHealth(c *gin.Context) {
	resp := gin.H{
		"status":      "ok",
		"connections": s.connections.Load(),
		"upstream":    s.Upstream.Name(),
	}

	if s.Watch != nil {
		snap := s.Watch.Snapshot("", "")
		resp["state"] = snap.State
		resp["symbols"] = snap.Total
		resp["latest_update"] = snap.LastRefresh
		if snap.State == models.StateError {
			resp["status"] = "degraded"
		}
	}

	c.JSON(http.StatusOK, resp)
}

// -----------------------------------------------------------------------------

func (s *WatchlistServer) getConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"refreshIntervalSeconds": s.Config.Watchlist.RefreshIntervalSeconds,
		"sortOptions":            sortOptionNames(),
		"provider":               s.Upstream.Name(),
	})
}
