package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/haf/internal/browser"
	"github.com/spec-kit/haf/internal/config"
	"github.com/spec-kit/haf/internal/events"
	"github.com/spec-kit/haf/internal/kafka"
	"github.com/spec-kit/haf/internal/observability"
	"github.com/spec-kit/haf/internal/persistence"
	"github.com/spec-kit/haf/internal/portal"
	"github.com/spec-kit/haf/internal/repository"
	"github.com/spec-kit/haf/internal/service"
	"github.com/spec-kit/haf/internal/settings"
	"github.com/spec-kit/haf/internal/ticketlog"
	"github.com/spec-kit/haf/internal/workflow"
	"github.com/spec-kit/haf/internal/worker"
)

// app holds what every subcommand needs: config, logging and the file stores.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	metrics   *observability.Metrics
	settings  *settings.Store
	templates repository.TemplateRepository
	calls     repository.CallRepository
	profile   portal.Profile
}

// newApp loads configuration and opens the file stores. When the process
// owns the terminal the JSON log goes to a file under the data directory
// unless LOG_OUTPUT says otherwise.
func newApp(cmd *cobra.Command, interactive bool) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.Paths.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}
	if _, set := os.LookupEnv("LOG_OUTPUT"); interactive && !set {
		cfg.Logger.Output = filepath.Join(cfg.Paths.DataDir, "haf.log")
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}

	profile, err := portal.LoadProfile(cfg.Paths.PortalProfile)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:       cfg,
		logger:    logger,
		metrics:   observability.NewMetrics(),
		settings:  settings.NewStore(cfg.Paths.Settings),
		templates: repository.NewTemplateRepository(cfg.Paths.Templates),
		calls:     repository.NewCallRepository(cfg.Paths.Call),
		profile:   profile,
	}, nil
}

func (a *app) Close() {
	_ = a.logger.Sync()
}

// runtime adds the event sinks, the ticket log and the call service.
type runtime struct {
	*app
	dispatcher events.Dispatcher
	postgres   *persistence.Postgres
	redis      *persistence.Redis
	producer   *kafka.Producer
	sinks      *service.SinkService
	ticketLog  *ticketlog.Logger
	callSvc    *service.CallService
}

func (a *app) runtime(ctx context.Context) (*runtime, error) {
	rt := &runtime{app: a, dispatcher: events.NewInMemoryDispatcher(a.logger)}

	pg, err := persistence.NewPostgres(ctx, a.cfg.Postgres, a.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect postgres: %w", err)
	}
	rt.postgres = pg
	rt.redis = persistence.NewRedis(a.cfg.Redis, a.logger)
	rt.producer = kafka.NewProducer(a.cfg.Kafka.Brokers, a.cfg.Kafka.Topic, a.logger)

	sinkDeps := service.SinkDependencies{
		Dispatcher: rt.dispatcher,
		Producer:   rt.producer,
		Logger:     a.logger,
	}
	if pg.Enabled() {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), a.logger); err != nil {
			rt.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		sinkDeps.ArchiveRepo = repository.NewArchiveRepository(pg.PoolHandle())
	}
	if rt.redis.Enabled() {
		sinkDeps.RecentRepo = repository.NewRecentRepository(rt.redis.Client, a.cfg.Redis.Recent)
	}
	rt.sinks = service.NewSinkService(sinkDeps)
	worker.StartSinkWorker(rt.sinks)

	rt.ticketLog = ticketlog.New(a.cfg.Paths.LogText, a.settings, repository.NewSnapshotRepository(a.cfg.Paths.Snapshot), ticketlog.Options{
		DefaultTeam: a.cfg.Workflow.DefaultTeam,
		Dispatcher:  rt.dispatcher,
		Logger:      a.logger,
	})
	engine := workflow.NewEngine(a.templates, a.profile, workflow.Options{
		MaxAttempts: a.cfg.Workflow.OpenMaxAttempts,
		Logger:      a.logger,
		Metrics:     a.metrics,
	})
	rt.callSvc = service.NewCallService(service.CallDependencies{
		CallRepo:     a.calls,
		TemplateRepo: a.templates,
		Engine:       engine,
		Recorder:     rt.ticketLog,
		Logger:       a.logger,
	})
	return rt, nil
}

// launch opens Chrome and logs into the portal with the stored credentials.
// Progress lines go to out.
func (rt *runtime) launch(ctx context.Context, out io.Writer) (*browser.Session, error) {
	creds, err := rt.settings.Load()
	if err != nil {
		return nil, err
	}
	return browser.Launch(ctx, rt.profile, creds, browser.Options{
		Browser:     rt.cfg.Browser,
		UserDataDir: rt.cfg.Paths.ChromeProfile,
		Logger:      rt.logger,
		Notify: func(msg string) {
			fmt.Fprintln(out, strings.TrimRight(msg, "\n"))
		},
	})
}

func (rt *runtime) Close() {
	if err := rt.producer.Close(); err != nil {
		rt.logger.Warn("failed to close kafka producer", zap.Error(err))
	}
	rt.redis.Close()
	rt.postgres.Close()
}
