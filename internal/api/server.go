// Package api serves playground workspaces over HTTP and WebSocket.
//
// Each service session owns one playground.Workspace whose saved slots live
// under the session id in the shared store. Clients drive a workspace with
// commands (POST /v1/sessions/:id/<command> or WebSocket messages) and follow
// it through the WebSocket event stream.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/caffeineduck/pyplay/internal/logger"
	"github.com/caffeineduck/pyplay/locale"
	"github.com/caffeineduck/pyplay/playground"
	"github.com/caffeineduck/pyplay/store"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// DefaultSessionTTL is how long an idle session survives.
const DefaultSessionTTL = 30 * time.Minute

// Options configures a Server.
type Options struct {
	// Runner executes programs for every session.
	Runner playground.Runner
	// Store holds saved code. Defaults to an in-memory store.
	Store   store.Backend
	Catalog *locale.Catalog
	// Locale is the language used when a client states no preference.
	Locale           string
	Limit            time.Duration
	AutosaveInterval time.Duration
	SessionTTL       time.Duration
	AllowedOrigins   []string
	Clock            func() time.Time
}

// Server is the playground HTTP service.
type Server struct {
	engine   *gin.Engine
	sessions *sessionManager
	opts     Options
	origins  map[string]bool
}

// New builds the router. Close releases every session.
func New(opts Options) *Server {
	if opts.Store == nil {
		opts.Store = store.NewMemory()
	}
	if opts.Catalog == nil {
		opts.Catalog = locale.Default()
	}
	if opts.Locale == "" {
		opts.Locale = locale.DefaultLanguage.String()
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = DefaultSessionTTL
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}

	s := &Server{opts: opts, origins: make(map[string]bool)}
	for _, o := range opts.AllowedOrigins {
		s.origins[o] = true
	}
	s.sessions = newSessionManager(opts.SessionTTL, s.openWorkspace, opts.Clock)
	s.engine = s.routes()
	return s
}

func (s *Server) openWorkspace(ctx context.Context, id, lang string) (*playground.Workspace, error) {
	ws, err := playground.NewWorkspace(ctx,
		playground.WithRunner(s.opts.Runner),
		playground.WithStore(store.Scope(s.opts.Store, id)),
		playground.WithLocalizer(s.opts.Catalog.Localizer(lang)),
		playground.WithLimit(s.opts.Limit),
		playground.WithAutosaveInterval(s.opts.AutosaveInterval),
	)
	if err != nil {
		return nil, err
	}
	go ws.Autosave(ctx)
	return ws, nil
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:  s.opts.AllowedOrigins,
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept-Language"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition"},
	}))
	router.Use(LoggingMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	v1 := router.Group("/v1")
	{
		v1.GET("/examples", s.listExamples)
		v1.GET("/examples/:name", s.getExample)
		v1.POST("/sessions", s.createSession)
	}

	sess := v1.Group("/sessions/:id")
	sess.Use(s.sessionMiddleware())
	{
		sess.GET("", s.getSession)
		sess.DELETE("", s.deleteSession)
		sess.PUT("/code", s.putCode)
		sess.GET("/download", s.download)
		sess.GET("/ws", s.serveWS)
		sess.POST("/commands", s.command(""))
		for _, name := range []string{
			CmdRun, CmdStop, CmdInput, CmdSave, CmdLoad, CmdClear,
			CmdExample, CmdFont, CmdSplit, CmdKey,
		} {
			sess.POST("/"+name, s.command(name))
		}
	}

	return router
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Infof("pyplay server listening on %s", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.Infof("shutting down")
	return srv.Shutdown(shutdownCtx)
}

// Close ends every session.
func (s *Server) Close() {
	s.sessions.closeAll()
}
