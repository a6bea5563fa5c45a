// Package gateway implements the HTTP tier: the submission endpoint that relays
// form posts to the ingestion listener, and the static page server.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/hay-kot/postbox/internal/core/relay"
	"github.com/hay-kot/postbox/pkg/randid"
)

const (
	defaultMaxBodyBytes = 64 << 10
	defaultSendTimeout  = 2 * time.Second
	shutdownTimeout     = 5 * time.Second
)

// Options configures the gateway.
type Options struct {
	Mode         string        // gin mode: release, debug or test
	MaxBodyBytes int64         // largest accepted POST body
	SendTimeout  time.Duration // bound on a single relay send
	ReadTimeout  time.Duration // bound on reading a full request
	StaticDeny   []string      // glob patterns under static/ that are never served
}

// Server is the gateway's HTTP surface.
type Server struct {
	Router *gin.Engine

	site   fs.FS
	sender relay.Sender
	log    zerolog.Logger
	opts   Options
}

// NewServer builds the router. site must contain templates/ and static/.
func NewServer(site fs.FS, sender relay.Sender, log zerolog.Logger, opts Options) *Server {
	if opts.Mode != "" {
		gin.SetMode(opts.Mode)
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = defaultSendTimeout
	}

	engine := gin.New()
	// Unknown paths, including trailing-slash variants, get the not-found page.
	engine.RedirectTrailingSlash = false

	s := &Server{
		Router: engine,
		site:   site,
		sender: sender,
		log:    log,
		opts:   opts,
	}

	s.MountMiddlewares()
	s.MountHandlers()

	return s
}

func (s *Server) MountMiddlewares() {
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New(requestid.WithGenerator(randid.Request)))
	s.Router.Use(requestLogger(s.log))
}

func (s *Server) MountHandlers() {
	s.Router.GET("/", s.HandlePage("index.html"))
	s.Router.GET("/index.html", s.HandlePage("index.html"))
	s.Router.GET("/message.html", s.HandlePage("message.html"))
	s.Router.GET("/static/*filepath", s.HandleStatic)

	s.Router.POST("/message", s.HandleSubmit)

	// With HandleMethodNotAllowed off, wrong methods fall through to NoRoute.
	s.Router.NoRoute(s.HandleNotFound)
}

// Run serves HTTP on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router,
		ReadHeaderTimeout: s.opts.ReadTimeout,
		ReadTimeout:       s.opts.ReadTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("gateway started")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http: %w", err)
	}

	s.log.Info().Msg("gateway stopped")
	return nil
}
