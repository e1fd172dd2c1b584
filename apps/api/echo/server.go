package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/mohdshetty/grap/core"
	"github.com/mohdshetty/grap/core/directory"
	"github.com/mohdshetty/grap/core/gap"
	"github.com/mohdshetty/grap/core/notice"
	"github.com/mohdshetty/grap/core/policy"
	"github.com/mohdshetty/grap/core/submission"
	"github.com/mohdshetty/grap/core/user"
	"github.com/mohdshetty/grap/services/metrics"
)

type (
	Options struct {
		Conf           *core.Config
		Logger         core.Logger
		Validate       *validator.Validate
		Translator     ut.Translator
		Metrics        *metricsvc.Metrics
		Policy         *policy.Store
		UserSvc        *user.Service
		DirectorySvc   *directory.Service
		SubmissionSvc  *submission.Service
		NoticeSvc      *notice.Service
		DisableReqLogs bool
	}

	Server struct {
		opts     *Options
		app      *echo.Echo
		shutdown chan os.Signal
		errors   chan error
	}
)

var _ http.Handler = (*Server)(nil)

func NewServer(opts *Options) *Server {
	s := &Server{
		opts:     opts,
		app:      echo.New(),
		shutdown: make(chan os.Signal, 1),
		errors:   make(chan error, 1),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.opts.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(s.opts.Metrics.Middleware())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)
	s.app.GET("/metrics", echo.WrapHandler(s.opts.Metrics.Handler()))

	v1 := s.app.Group("/v1")
	revoked := newRevocationList()
	auth := []echo.MiddlewareFunc{
		middleware.JWTWithConfig(jwtConfig(conf)),
		userMiddleware(s.opts.UserSvc, revoked),
	}
	audit := auditor{notices: s.opts.NoticeSvc, users: s.opts.UserSvc, logger: s.opts.Logger}

	registerUserAPI(v1, auth, &userApi{
		conf:       conf,
		svc:        s.opts.UserSvc,
		dirSvc:     s.opts.DirectorySvc,
		policy:     s.opts.Policy,
		metrics:    s.opts.Metrics,
		audit:      audit,
		revoked:    revoked,
		validate:   s.opts.Validate,
		translator: s.opts.Translator,
	})
	registerDirectoryAPI(v1, auth, &directoryApi{
		svc:    s.opts.DirectorySvc,
		policy: s.opts.Policy,
		audit:  audit,
	})
	registerSubmissionAPI(v1, auth, &submissionApi{
		svc:      s.opts.SubmissionSvc,
		dirSvc:   s.opts.DirectorySvc,
		policy:   s.opts.Policy,
		metrics:  s.opts.Metrics,
		audit:    audit,
		validate: s.opts.Validate,
	})
	registerGapAPI(v1, auth, &gapApi{
		conf:   conf,
		subSvc: s.opts.SubmissionSvc,
		dirSvc: s.opts.DirectorySvc,
		policy: s.opts.Policy,
		weights: gap.Weights{
			Compliance: conf.Scoring.ComplianceWeight,
			Status:     conf.Scoring.StatusWeight,
			Coverage:   conf.Scoring.CoverageWeight,
		},
	})
	registerPolicyAPI(v1, auth, &policyApi{store: s.opts.Policy, audit: audit})
	registerNoticeAPI(v1, auth, &noticeApi{
		svc:      s.opts.NoticeSvc,
		policy:   s.opts.Policy,
		audit:    audit,
		validate: s.opts.Validate,
	})
}

// Start listens until the server is shut down. Listener errors are reported on Errors.
func (s *Server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	if err := s.app.Start(s.opts.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // already shutting down
	}
}

// Shutdown stops accepting requests and waits for the active ones until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to the Staff Gap API!")
}
