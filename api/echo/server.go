package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/auth"
	"github.com/darasahq/darasa/core/profile"
	"github.com/darasahq/darasa/core/session"
	"github.com/darasahq/darasa/core/user"
)

type (
	Options struct {
		Address        string
		DisableReqLogs bool

		Users    user.Service
		Profiles profile.Service
		Sessions session.Store
		Manager  *auth.Manager
		Policy   *auth.Policy
		Logger   core.Logger

		// SignalShutdown is called when an unrecoverable error is caught.
		SignalShutdown func()
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	if opts.Policy == nil {
		opts.Policy = auth.DefaultPolicy()
	}
	if opts.SignalShutdown == nil {
		opts.SignalShutdown = func() {}
	}
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(core.Conf.Debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.SignalShutdown)
	s.app.Debug = core.Conf.Debug
	s.app.HideBanner = true

	registerPages(s.app, s.opts.Policy)

	v1 := s.app.Group("/v1")
	sessionMW := sessionMiddleware(s.opts.Sessions)

	registerAccountAPI(v1, sessionMW, s.opts.Manager, s.opts.Users, s.opts.Profiles)
	registerProfileAPI(v1, sessionMW, s.opts.Users, s.opts.Profiles)
}

func (s *server) Start() error {
	return s.app.Start(s.opts.Address)
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}
