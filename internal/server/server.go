// Package server exposes LinkPub over an HTTP JSON API built on echo.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/yuanying/linkpub/internal/auth"
	"github.com/yuanying/linkpub/internal/bookmarks"
	"github.com/yuanying/linkpub/internal/convert"
	"github.com/yuanying/linkpub/internal/epub"
)

const (
	sessionCookie   = "linkpub_session"
	shutdownTimeout = 10 * time.Second
	bodyLimit       = "1M"
)

// Options holds server behaviour switches.
type Options struct {
	AllowRegistration bool
	CookieSecure      bool
	DefaultVariant    epub.Variant
	DefaultFeedURL    string
	StaticDir         string
}

// Deps are the collaborators the handlers call into.
type Deps struct {
	Pipeline  *convert.Pipeline
	Users     *auth.Store
	Tokens    *auth.Tokens
	Bookmarks *bookmarks.Source
	Logger    *slog.Logger
}

// Server is the LinkPub HTTP API.
type Server struct {
	echo      *echo.Echo
	pipeline  *convert.Pipeline
	users     *auth.Store
	tokens    *auth.Tokens
	bookmarks *bookmarks.Source
	drafts    *drafts
	opts      Options
	logger    *slog.Logger
}

func New(deps Deps, opts Options) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		echo:      echo.New(),
		pipeline:  deps.Pipeline,
		users:     deps.Users,
		tokens:    deps.Tokens,
		bookmarks: deps.Bookmarks,
		drafts:    newDrafts(),
		opts:      opts,
		logger:    logger,
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.HTTPErrorHandler = s.handleError
	s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) routes() {
	e := s.echo
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(s.requestLogger())
	e.Use(middleware.BodyLimit(bodyLimit))
	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
	}))

	api := e.Group("/api")
	api.GET("/health", s.health)
	api.POST("/register", s.register)
	api.POST("/login", s.login)

	authed := api.Group("", s.requireSession)
	authed.POST("/logout", s.logout)
	authed.POST("/convert", s.convert)

	authed.GET("/collection", s.getCollection)
	authed.POST("/collection/articles", s.addArticle)
	authed.DELETE("/collection/articles/:index", s.removeArticle)
	authed.PUT("/collection/order", s.reorderArticles)
	authed.DELETE("/collection", s.clearCollection)
	authed.POST("/collection/build", s.buildCollection)

	authed.GET("/library", s.listLibrary)
	authed.GET("/library/:filename", s.downloadBook)
	authed.DELETE("/library/:filename", s.deleteBook)

	authed.GET("/bookmarks", s.listBookmarks)

	if s.opts.StaticDir != "" {
		e.Static("/", s.opts.StaticDir)
	}
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("http server listening", "addr", addr)
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("http server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.echo.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
