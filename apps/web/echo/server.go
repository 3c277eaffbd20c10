package echoweb

import (
	"context"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trezcool/assignflow/core"
	"github.com/trezcool/assignflow/core/assignment"
	"github.com/trezcool/assignflow/core/fixtures"
	"github.com/trezcool/assignflow/core/session"
	"github.com/trezcool/assignflow/core/support"
)

type (
	Options struct {
		Conf        *core.Config
		Logger      core.Logger
		Sessions    *session.Registry
		Assignments *assignment.Source
		Fixtures    *fixtures.Set
		Support     *support.Service
		Validate    *validator.Validate
		Translator  ut.Translator

		// SignalShutdown is called when a handler hits a core shutdown error.
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

func NewServer(opts *Options) (Server, error) {
	if opts.SignalShutdown == nil {
		opts.SignalShutdown = func() {}
	}
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	if err := s.setup(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *server) setup() error {
	conf := s.opts.Conf

	renderer, err := newRenderer(conf.AppName)
	if err != nil {
		return err
	}
	s.app.Renderer = renderer
	s.app.HideBanner = true

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.Translator, s.opts.SignalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/healthz", healthz)
	s.app.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	g := s.app.Group("", s.sessionMiddleware)
	g.GET("/login", s.loginPage)
	g.POST("/login", s.login)
	g.POST("/logout", s.logout)

	g.GET("/", s.current)
	g.GET("/:view", s.view)

	g.POST("/assignments", s.createAssignment)
	g.POST("/assignments/:id/delete", s.deleteAssignment)
	g.POST("/submissions/:id/grade", s.gradeSubmission)
	g.POST("/my-assignments/:id/submit", s.submitAssignment)
	g.POST("/support", s.askFaculty)
	return nil
}

func (s *server) Start() error {
	return s.app.Start(s.opts.Conf.Server.Address)
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func healthz(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "ok")
}
