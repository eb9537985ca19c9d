package scatterbrainservice

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/ronnydonkey/scatterbrain-ai/internal/api"
	"github.com/ronnydonkey/scatterbrain-ai/internal/auth"
	"github.com/ronnydonkey/scatterbrain-ai/internal/config"
	"github.com/ronnydonkey/scatterbrain-ai/internal/factory"
	"github.com/ronnydonkey/scatterbrain-ai/internal/health"
	"github.com/ronnydonkey/scatterbrain-ai/internal/localstate"
	"github.com/ronnydonkey/scatterbrain-ai/internal/logger"
	"github.com/ronnydonkey/scatterbrain-ai/internal/metrics"
	"github.com/ronnydonkey/scatterbrain-ai/internal/oracle"
	"github.com/ronnydonkey/scatterbrain-ai/internal/personas"
	"github.com/ronnydonkey/scatterbrain-ai/internal/ratelimit"
	"github.com/ronnydonkey/scatterbrain-ai/internal/services"
	"github.com/ronnydonkey/scatterbrain-ai/internal/store"
)

// dependencies groups the adapters built at startup.
type dependencies struct {
	store   store.Store
	local   *localstate.Store
	oracle  oracle.Oracle // nil when no provider is configured
	limiter ratelimit.Limiter
	dir     *personas.Directory
}

// Close releases whatever adapters hold connections.
func (d *dependencies) Close() {
	if c, ok := d.store.(io.Closer); ok {
		_ = c.Close()
	}
	if d.local != nil {
		_ = d.local.Close()
	}
	if c, ok := d.limiter.(io.Closer); ok {
		_ = c.Close()
	}
}

// Run starts the scatterbrain HTTP server and blocks until shutdown or error.
func Run() error {
	log := logger.New("scatterbrain-service")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}
	log = logger.NewForFormat("scatterbrain-service", cfg.LogFormat)
	logger.SetLevel(cfg.LogLevel)
	zlog.Logger = log

	log.Info().
		Str("build_target", cfg.BuildTarget).
		Str("db_driver", cfg.DBDriver).
		Int("http_port", cfg.HTTPPort).
		Str("rate_limit_backend", cfg.RateLimitBackend).
		Msg("Scatterbrain service starting")

	// Create cancellable root context bound to SIGINT/SIGTERM
	ctx, stop := newServerContext()
	defer stop()

	deps, err := initDependencies(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer deps.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.MustNew(reg)

	board := services.NewBoardService(deps.store, deps.local, deps.dir, log, m)
	autoSaver := services.NewAutoSaver(board, cfg.BoardSaveDebounce(), log)

	// Templates are seeded in the background; reads fall back to built-ins meanwhile
	go func() {
		if err := board.SeedTemplates(ctx); err != nil {
			log.Warn().Err(err).Msg("template seeding failed")
		}
	}()

	// Start health checkers and bind service health
	svcHealth := startHealthCheckers(ctx, cfg, log, deps, m)

	// Block startup until dependencies report healthy; fail fast otherwise
	if err := waitUntilHealthy(ctx, cfg, svcHealth); err != nil {
		log.Error().Stack().Err(err).Msg("startup health check failed")
		return err
	}

	router := buildRouter(cfg, log, deps, board, autoSaver, svcHealth, m, reg)

	// HTTP server and serve
	server := newHTTPServer(ctx, cfg, router)
	errCh := serveHTTP(server, log, cfg)

	// Graceful shutdown on context cancel or server error
	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := server.Shutdown(ctxShutdown)
		// Pending debounced board saves are written before the store closes
		autoSaver.Flush(ctxShutdown)
		if err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		autoSaver.Flush(context.Background())
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

// initDependencies constructs the adapters. Store and local state are required;
// a missing oracle only disables the synthesis endpoints.
func initDependencies(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*dependencies, error) {
	dir, err := personas.Load()
	if err != nil {
		log.Error().Stack().Err(err).Msg("Persona catalog invalid")
		return nil, err
	}

	st, err := factory.NewStore(ctx, cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Store adapter unavailable")
		return nil, err
	}
	deps := &dependencies{store: st, dir: dir}

	deps.local, err = factory.NewLocalState(cfg)
	if err != nil {
		deps.Close()
		log.Error().Stack().Err(err).Msg("Local state unavailable")
		return nil, err
	}

	deps.oracle, err = factory.NewOracle(ctx, cfg, log)
	if err != nil {
		deps.Close()
		log.Error().Stack().Err(err).Msg("Oracle provider unavailable")
		return nil, err
	}

	deps.limiter, err = factory.NewRateLimiter(ctx, cfg, log)
	if err != nil {
		deps.Close()
		log.Error().Stack().Err(err).Msg("Rate limiter unavailable")
		return nil, err
	}
	return deps, nil
}

// buildRouter wires services into the HTTP surface.
func buildRouter(cfg *config.Config, log zerolog.Logger, deps *dependencies, board *services.BoardService, autoSaver *services.AutoSaver, svcHealth *health.ServiceHealthChecker, m *metrics.Metrics, reg *prometheus.Registry) *mux.Router {
	return api.NewRouter(api.Deps{
		Directory:  deps.dir,
		Board:      board,
		AutoSaver:  autoSaver,
		Synthesis:  services.NewSynthesisService(deps.oracle, board, log, m),
		Demo:       services.NewDemoService(deps.oracle, deps.limiter, log, m),
		Verifier:   auth.NewVerifierFactory(cfg).CreateVerifier(),
		Health:     svcHealth,
		Gatherer:   reg,
		CORSOrigin: cfg.CORSOrigin,
		Log:        log,
	})
}

// startHealthCheckers starts component checkers and the service-level aggregator.
func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, deps *dependencies, m *metrics.Metrics) *health.ServiceHealthChecker {
	probeTimeout := time.Duration(cfg.HealthProbeTimeoutSeconds) * time.Second
	interval := time.Duration(cfg.HealthIntervalSeconds) * time.Second

	storeChecker := store.NewStoreHealthChecker(deps.store, log, probeTimeout)
	go storeChecker.Start(ctx, interval)

	var optional []health.HealthChecker
	if deps.oracle != nil {
		oc := oracle.NewHealthChecker(deps.oracle, log, probeTimeout)
		go oc.Start(ctx, interval)
		optional = append(optional, oc)
	}
	if r, ok := deps.limiter.(*ratelimit.Redis); ok {
		rc := ratelimit.NewHealthChecker(r, log, probeTimeout)
		go rc.Start(ctx, interval)
		optional = append(optional, rc)
	}

	svcHealth := health.NewServiceHealthChecker(log, storeChecker).
		WithOptional(optional...).
		WithObserver(m.DependencyUp)
	go svcHealth.Start(ctx, interval)
	return svcHealth
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		// Board synthesis fans out to up to nine completions
		WriteTimeout: cfg.OracleTimeout()*2 + 15*time.Second,
		IdleTimeout:  60 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// calculateStartupHealthTimeout returns the startup health timeout in seconds,
// calculated as interval*2 with a minimum of 60 seconds.
func calculateStartupHealthTimeout(healthIntervalSeconds int) int {
	timeout := healthIntervalSeconds * 2
	if timeout < 60 {
		return 60
	}
	return timeout
}

// waitUntilHealthy blocks until service health is healthy or the startup window expires.
func waitUntilHealthy(ctx context.Context, cfg *config.Config, svcHealth *health.ServiceHealthChecker) error {
	timeoutSeconds := calculateStartupHealthTimeout(cfg.HealthIntervalSeconds)
	deadline := time.Now().Add(time.Duration(timeoutSeconds) * time.Second)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		if svcHealth.IsHealthy() {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("startup aborted: dependencies not healthy within %d seconds", timeoutSeconds)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// newServerContext returns a cancellable context that is cancelled on SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
