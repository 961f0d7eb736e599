// Package web serves the review dashboard over HTTP with echo.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/huangsam/reviewdash/core"
	"github.com/huangsam/reviewdash/internal/contract"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Server is the web dashboard. It owns one long-lived dashboard session
// shared by every browser, and handlers take turns on it.
type Server struct {
	cfg      *contract.Config
	echo     *echo.Echo
	logger   *logrus.Logger
	upgrader websocket.Upgrader
	now      contract.Clock
	history  contract.HistoryStore

	done      chan struct{} // closed by Shutdown to end websocket feeds
	closeOnce sync.Once

	mu        sync.Mutex // serializes use of dashboard
	dashboard *core.Dashboard
	table     *tableBody
	charts    *chartBoard
}

// Option configures a Server.
type Option func(*Server)

// WithHistory records every load in store.
func WithHistory(store contract.HistoryStore) Option {
	return func(s *Server) { s.history = store }
}

// WithClock overrides the time source.
func WithClock(clock contract.Clock) Option {
	return func(s *Server) { s.now = clock }
}

// templateRenderer adapts html/template to echo.
type templateRenderer struct {
	templates *template.Template
}

func (r *templateRenderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}

// NewServer builds the echo application around a fresh session seeded
// from cfg.
func NewServer(cfg *contract.Config, fetcher contract.ReviewFetcher, logger *logrus.Logger, opts ...Option) (*Server, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
		done:   make(chan struct{}),
		table:  &tableBody{},
		charts: newChartBoard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = contract.NewDiscardLogger()
	}

	dashOpts := []core.Option{core.WithLogger(s.logger), core.WithClock(s.now)}
	if s.history != nil {
		dashOpts = append(dashOpts, core.WithHistory(s.history))
	}
	s.dashboard = core.NewDashboard(core.NewSessionFromConfig(cfg), fetcher, s.table, s.charts, dashOpts...)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = &templateRenderer{templates: tmpl}
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(LoggingMiddleware(s.logger))

	e.GET("/", s.handleTablePage)
	e.GET("/charts", s.handleChartsPage)
	e.GET("/api/view/logs", s.handleLogs)
	e.GET("/api/view/stats", s.handleStats)
	e.GET("/api/view/filter-options", s.handleFilterOptions)
	e.GET("/ws", s.handleWebSocket)
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	s.echo = e
	return s, nil
}

// Handler returns the HTTP handler of the dashboard.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	err := s.echo.Start(addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown ends the websocket feeds, stops the HTTP server and releases
// every chart.
func (s *Server) Shutdown(ctx context.Context) error {
	s.closeOnce.Do(func() { close(s.done) })
	err := s.echo.Shutdown(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	return errors.Join(err, s.dashboard.Close())
}
