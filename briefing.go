package briefing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/phdev/briefing/internal/cli"
	"github.com/phdev/briefing/internal/config"
	"github.com/phdev/briefing/internal/logging"
	"github.com/phdev/briefing/internal/runtime"
	httpAdapter "github.com/phdev/briefing/pkg/adapters/http"
	mcpAdapter "github.com/phdev/briefing/pkg/adapters/mcp"
	"github.com/phdev/briefing/pkg/adapters/memory"
	redisAdapter "github.com/phdev/briefing/pkg/adapters/redis"
	"github.com/phdev/briefing/pkg/flow"
	"github.com/phdev/briefing/pkg/observability"
	"github.com/phdev/briefing/pkg/persistence/middleware"
	"github.com/phdev/briefing/pkg/ports"
	"github.com/phdev/briefing/pkg/runner"
	"github.com/phdev/briefing/pkg/scheduler"
	"github.com/phdev/briefing/pkg/session"
	"github.com/phdev/briefing/pkg/wizard"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Service is a configured briefing bot: the flow, its engine, the session
// store and the runner every front end talks to.
type Service struct {
	cfg      *config.Config
	logger   *slog.Logger
	table    *flow.Table
	engine   *runtime.Engine
	runner   *runner.Runner
	store    ports.StateStore
	registry *prometheus.Registry
	health   func(context.Context) error
	closers  []io.Closer
}

type options struct {
	logger    *slog.Logger
	registry  *prometheus.Registry
	scheduler scheduler.Scheduler
	clock     func() time.Time
}

// Option configures New.
type Option func(*options)

// WithLogger overrides the logger built from the log level.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRegistry sets the Prometheus registry metrics are registered in.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(o *options) {
		o.registry = reg
	}
}

// WithScheduler replaces the wall-clock timer, mainly for tests.
func WithScheduler(s scheduler.Scheduler) Option {
	return func(o *options) {
		o.scheduler = s
	}
}

// WithClock sets the time source of the engine and runner.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.clock = now
	}
}

// New builds a Service from cfg.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	logger := o.logger
	if logger == nil {
		level, err := logging.ParseLevel(cfg.Log.Level)
		if err != nil {
			return nil, err
		}
		logger = logging.New(level)
	}
	reg := o.registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}

	s := &Service{cfg: cfg, logger: logger, registry: reg}

	table, err := wizard.Flow()
	if err != nil {
		return nil, fmt.Errorf("failed to build flow: %w", err)
	}
	s.table = table

	metrics, err := observability.NewMetrics(reg)
	if err != nil {
		return nil, err
	}
	hooks := metrics.Hooks().Merge(observability.LoggingHooks(logger))

	target, err := cfg.HandoffTarget()
	if err != nil {
		return nil, err
	}
	engineOpts := []runtime.EngineOption{
		runtime.WithPacing(runtime.Pacing{Typing: cfg.Pacing.Typing, Card: cfg.Pacing.Card, Read: cfg.Pacing.Read}),
		runtime.WithPolicy(runtime.Policy(cfg.Validation.Policy)),
		runtime.WithMaxInputSize(cfg.Validation.MaxInputSize),
		runtime.WithTarget(target),
		runtime.WithProcessCard(wizard.ProcessCard()),
		runtime.WithSeedResolver(wizard.ResolvePackage),
		runtime.WithLifecycleHooks(hooks),
		runtime.WithLogger(logger),
	}
	if o.clock != nil {
		engineOpts = append(engineOpts, runtime.WithClock(o.clock))
	}
	s.engine, err = runtime.NewEngine(table, engineOpts...)
	if err != nil {
		return nil, err
	}

	managerOpts, err := s.setupStore()
	if err != nil {
		return nil, err
	}
	manager := session.NewManager(s.store, append(managerOpts, session.WithLogger(logger))...)

	runnerOpts := []runner.Option{runner.WithLogger(logger)}
	if o.scheduler != nil {
		runnerOpts = append(runnerOpts, runner.WithScheduler(o.scheduler))
	}
	if o.clock != nil {
		runnerOpts = append(runnerOpts, runner.WithClock(o.clock))
	}
	s.runner = runner.New(s.engine, manager, runnerOpts...)

	if err := observability.RegisterSessionGauge(reg, s.countSessions); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// setupStore opens the configured backend and wraps it with encryption.
func (s *Service) setupStore() ([]session.Option, error) {
	var opts []session.Option
	switch s.cfg.Store.Driver {
	case config.DriverRedis:
		rc := s.cfg.Store.Redis
		store := redisAdapter.New(rc.Addr, rc.Password, rc.DB,
			redisAdapter.WithTTL(rc.TTL),
			redisAdapter.WithPrefix(rc.Prefix),
		)
		s.store = store
		s.health = store.Ping
		s.closers = append(s.closers, store)
		opts = append(opts, session.WithLocker(redisAdapter.NewLocker(store.Client(), rc.Prefix)))
		s.logger.Info("Using redis session store", "addr", rc.Addr, "db", rc.DB)
	default:
		s.store = memory.NewStore()
	}

	enc, err := s.cfg.Encryption()
	if err != nil {
		return nil, err
	}
	if enc != nil {
		mw, err := middleware.NewEncryptionMiddleware(*enc)
		if err != nil {
			return nil, err
		}
		s.store = middleware.Chain(s.store, mw)
		s.logger.Info("Session encryption enabled", "fallback_keys", len(enc.FallbackKeys))
	}
	return opts, nil
}

func (s *Service) countSessions() float64 {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	ids, err := s.store.List(ctx)
	if err != nil {
		s.logger.Warn("failed to count sessions", "err", err)
		return 0
	}
	return float64(len(ids))
}

// Runner returns the conversation runner.
func (s *Service) Runner() *runner.Runner {
	return s.runner
}

// Store returns the session store, decrypting when encryption is on.
func (s *Service) Store() ports.StateStore {
	return s.store
}

// Table returns the briefing flow.
func (s *Service) Table() *flow.Table {
	return s.table
}

// Logger returns the service logger.
func (s *Service) Logger() *slog.Logger {
	return s.logger
}

// Registry returns the metrics registry.
func (s *Service) Registry() *prometheus.Registry {
	return s.registry
}

// Health probes the session backend.
func (s *Service) Health(ctx context.Context) error {
	if s.health == nil {
		return nil
	}
	return s.health(ctx)
}

// Handler returns the HTTP API.
func (s *Service) Handler() (http.Handler, error) {
	return httpAdapter.NewHandler(s.runner,
		httpAdapter.WithLogger(s.logger),
		httpAdapter.WithAllowedOrigin(s.cfg.HTTP.AllowedOrigin),
		httpAdapter.WithGraph(s.table),
		httpAdapter.WithMetrics(s.registry),
		httpAdapter.WithHealthCheck(s.Health),
		httpAdapter.WithVersion(Version),
	)
}

// MCP returns the MCP server.
func (s *Service) MCP(opts ...mcpAdapter.Option) *mcpAdapter.Server {
	return mcpAdapter.NewServer(s.runner, s.table, Version, append([]mcpAdapter.Option{mcpAdapter.WithLogger(s.logger)}, opts...)...)
}

// Chat returns a terminal chat bound to this service.
func (s *Service) Chat(in io.Reader, out io.Writer, opts ...cli.ChatOption) *cli.Chat {
	return cli.NewChat(s.runner, in, out, append([]cli.ChatOption{cli.WithLogger(s.logger)}, opts...)...)
}

// Close stops the runner and releases the store. Sessions stay stored.
func (s *Service) Close() error {
	if s.runner != nil {
		s.runner.Close()
	}
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
