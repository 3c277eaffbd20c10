package dig_container

import (
	"context"
	"fmt"
	"log"
	"os"
	"syscall"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoweb "github.com/trezcool/assignflow/apps/web/echo"
	"github.com/trezcool/assignflow/core"
	"github.com/trezcool/assignflow/core/assignment"
	"github.com/trezcool/assignflow/core/fixtures"
	"github.com/trezcool/assignflow/core/session"
	"github.com/trezcool/assignflow/core/support"
	"github.com/trezcool/assignflow/core/user"
	emailsvc "github.com/trezcool/assignflow/services/email"
	logsvc "github.com/trezcool/assignflow/services/logger"
	"github.com/trezcool/assignflow/services/supabase"
	"github.com/trezcool/assignflow/storage/database"
	inmemdb "github.com/trezcool/assignflow/storage/database/inmem"
	pgrepos "github.com/trezcool/assignflow/storage/database/postgres"
	"github.com/trezcool/assignflow/storage/remote"
	"github.com/trezcool/assignflow/storage/sessiondb"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

// Backend is the storage the pages and sessions talk to, picked by `backend.driver`.
type Backend struct {
	Auth        session.AuthFactory
	Profiles    user.ProfileRepository
	Assignments assignment.Repository

	closers []func() error
}

func (b *Backend) Close() error {
	for _, c := range b.closers {
		if err := c(); err != nil {
			return err
		}
	}
	return nil
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "WEB : ", log.LstdFlags)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func newSupabaseClient(conf *core.Config) *supabase.Client {
	return supabase.NewClient(conf.Backend.URL, conf.Backend.AnonKey, supabase.WithTimeout(conf.Backend.Timeout))
}

func newPostgres(conf *core.Config) (*sqlx.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), conf.Backend.Timeout*3)
	defer cancel()

	if err := database.CreateIfNotExist(ctx, conf); err != nil {
		return nil, err
	}
	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}
	if err = database.Migrate(db, "up"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func newBackend(conf *core.Config, client *supabase.Client, set *fixtures.Set, loggerParam DBLoggerParam) (*Backend, error) {
	logger := loggerParam.Logger

	switch conf.Backend.Driver {
	case core.DriverRemote:
		if !conf.BackendConfigured() {
			logger.Warn(fmt.Sprintf("backend not configured (%s): pages will use demo data", conf.Backend.URL))
		}
		return &Backend{
			Auth:        remote.AuthFactory(client),
			Profiles:    remote.NewProfileRepository(client),
			Assignments: remote.NewAssignmentRepository(client),
		}, nil

	case core.DriverPostgres:
		db, err := newPostgres(conf)
		if err != nil {
			return nil, errors.Wrap(err, "setting up database")
		}
		// sign-in still goes through the auth service
		return &Backend{
			Auth:        remote.AuthFactory(client),
			Profiles:    pgrepos.NewProfileRepository(db),
			Assignments: pgrepos.NewAssignmentRepository(db),
			closers:     []func() error{db.Close},
		}, nil

	case core.DriverInMem:
		db := inmemdb.Open()
		db.SeedAssignments(set.Assignments(), time.Now())
		return &Backend{
			Auth:        inmemdb.AuthFactory(db),
			Profiles:    inmemdb.NewProfileRepository(db),
			Assignments: inmemdb.NewAssignmentRepository(db),
		}, nil
	}
	return nil, errors.Errorf("unknown backend driver %q", conf.Backend.Driver)
}

func newPersister(conf *core.Config) (session.Persister, func() error, error) {
	if conf.TestMode || conf.SessionDB.Path == "" {
		return session.NewMemoryPersister(), func() error { return nil }, nil
	}
	store, err := sessiondb.Open(conf.SessionDB.Path)
	if err != nil {
		return nil, nil, err
	}
	return store, store.Close, nil
}

type persisterOut struct {
	dig.Out
	Persister session.Persister
	Close     func() error `name:"closePersister"`
}

func providePersister(conf *core.Config) (persisterOut, error) {
	p, closeFn, err := newPersister(conf)
	if err != nil {
		return persisterOut{}, errors.Wrap(err, "opening session store")
	}
	return persisterOut{Persister: p, Close: closeFn}, nil
}

func newRegistry(conf *core.Config, backend *Backend, set *fixtures.Set, persist session.Persister, logger core.Logger) *session.Registry {
	return session.NewRegistry(backend.Auth, backend.Profiles, set.Roster, persist, logger, session.RegistryOptions{
		IdleTTL: conf.Server.SessionTTL,
		Timeout: conf.Backend.Timeout,
	})
}

func newAssignmentSource(backend *Backend, set *fixtures.Set, logger core.Logger) *assignment.Source {
	return assignment.NewSource(backend.Assignments, set.Assignments, logger)
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug || conf.SendgridApiKey == "" {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

func newValidator(translator ut.Translator) *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, translator)
	return validate
}

// ShutdownChannel receives OS signals, and the server's request to stop.
type ShutdownChannel chan os.Signal

func newShutdownChannel() ShutdownChannel {
	return make(ShutdownChannel, 1)
}

type serverParams struct {
	dig.In
	Shutdown    ShutdownChannel
	Conf        *core.Config
	Logger      core.Logger
	Sessions    *session.Registry
	Assignments *assignment.Source
	Fixtures    *fixtures.Set
	Support     *support.Service
	Validate    *validator.Validate
	Translator  ut.Translator
}

func newServer(p serverParams) (echoweb.Server, error) {
	opts := &echoweb.Options{
		Conf:        p.Conf,
		Logger:      p.Logger,
		Sessions:    p.Sessions,
		Assignments: p.Assignments,
		Fixtures:    p.Fixtures,
		Support:     p.Support,
		Validate:    p.Validate,
		Translator:  p.Translator,
	}
	opts.SignalShutdown = func() {
		select {
		case p.Shutdown <- syscall.SIGTERM:
		default:
		}
	}
	return echoweb.NewServer(opts)
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newShutdownChannel))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(fixtures.Default))
	must(c.Provide(newSupabaseClient))
	must(c.Provide(newBackend))
	must(c.Provide(providePersister))
	must(c.Provide(newRegistry))
	must(c.Provide(newAssignmentSource))
	must(c.Provide(newEmailService))
	must(c.Provide(support.NewService))
	must(c.Provide(newTranslator))
	must(c.Provide(newValidator))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
