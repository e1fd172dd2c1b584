package dig_container

import (
	"fmt"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/mohdshetty/grap/apps/api/echo"
	"github.com/mohdshetty/grap/core"
	"github.com/mohdshetty/grap/core/directory"
	"github.com/mohdshetty/grap/core/notice"
	"github.com/mohdshetty/grap/core/policy"
	"github.com/mohdshetty/grap/core/submission"
	"github.com/mohdshetty/grap/core/user"
	logsvc "github.com/mohdshetty/grap/services/logger"
	metricsvc "github.com/mohdshetty/grap/services/metrics"
	dummydb "github.com/mohdshetty/grap/storage/database/dummy"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

type ServerParams struct {
	dig.In

	Conf          *core.Config
	Logger        core.Logger
	Validate      *validator.Validate
	Translator    ut.Translator
	Metrics       *metricsvc.Metrics
	Policy        *policy.Store
	UserSvc       *user.Service
	DirectorySvc  *directory.Service
	SubmissionSvc *submission.Service
	NoticeSvc     *notice.Service
}

func newRollbarLogger(conf *core.Config) *logsvc.RollbarLogger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func newDB(conf *core.Config, loggerParam DBLoggerParam) *dummydb.DB {
	db, err := dummydb.OpenSeeded(conf.SeedFile)
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db
}

func newPolicyStore(conf *core.Config, logger core.Logger) *policy.Store {
	store := policy.NewStore()
	if conf.PolicyFile != "" {
		if err := store.LoadFile(conf.PolicyFile); err != nil {
			logger.Fatal(fmt.Sprintf("loading policy file: %v", err), err)
		}
	}
	return store
}

func newValidator(translator ut.Translator) *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	return validate
}

func newSubmissionService(repo submission.Repository, conf *core.Config) *submission.Service {
	return submission.NewService(repo, conf.AcademicYear)
}

func newServer(p ServerParams) *echoapi.Server {
	return echoapi.NewServer(&echoapi.Options{
		Conf:          p.Conf,
		Logger:        p.Logger,
		Validate:      p.Validate,
		Translator:    p.Translator,
		Metrics:       p.Metrics,
		Policy:        p.Policy,
		UserSvc:       p.UserSvc,
		DirectorySvc:  p.DirectorySvc,
		SubmissionSvc: p.SubmissionSvc,
		NoticeSvc:     p.NoticeSvc,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newRollbarLogger))
	must(c.Provide(func(l *logsvc.RollbarLogger) core.Logger { return l }))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(dummydb.NewUserRepository))
	must(c.Provide(dummydb.NewDirectoryRepository))
	must(c.Provide(dummydb.NewSubmissionRepository))
	must(c.Provide(dummydb.NewNoticeRepository))
	must(c.Provide(newPolicyStore))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newValidator))
	must(c.Provide(metricsvc.New))
	must(c.Provide(directory.NewService))
	must(c.Provide(func(svc *directory.Service) user.Directory { return svc }))
	must(c.Provide(user.NewService))
	must(c.Provide(newSubmissionService))
	must(c.Provide(notice.NewService))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
