// Package app wires the cadastro server runtime: config, logging, HTTP routes and
// the process-wide identity store and activity log.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"cadastro/cmd/identity"
	"cadastro/cmd/internal/activity"
	authapi "cadastro/cmd/internal/auth/api"
	"cadastro/cmd/internal/auth/session"
	"cadastro/cmd/internal/metrics"
	"cadastro/cmd/security/password"

	"golang.org/x/sync/errgroup"
)

// App is the cadastro runtime. It owns the store, the activity log and the HTTP wiring.
type App struct {
	cfg Config
	log Logger

	store    *identity.MemoryStore
	activity *activity.Log
	metrics  *metrics.Metrics
	tokens   *session.Service

	handler http.Handler
	ready   atomic.Bool
}

// New constructs a fully wired App instance from config and logger.
func New(cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel, cfg.LogFormat, cfg.LogColor)
	}

	secret, err := ValidateSecurityConfig(cfg)
	if err != nil {
		return nil, err
	}
	if secret.Ephemeral {
		log.Warn("security.token_secret.ephemeral", "hint", "set CADASTRO_TOKEN_SECRET to keep tokens valid across restarts")
	}

	apiCfg := authapi.LoadConfigFromEnv()
	apiCfg.TrustProxy = apiCfg.TrustProxy || cfg.TrustProxy

	pwCfg, err := password.FromEnv()
	if err != nil {
		return nil, fmt.Errorf("password config: %w", err)
	}
	if apiCfg.Variant == authapi.VariantBasic && EnvString("CADASTRO_PASSWORD_MIN_LEN", "") == "" {
		pwCfg.Policy.MinLength = 1
	}
	hasher, err := pwCfg.NewHasher()
	if err != nil {
		return nil, fmt.Errorf("password hasher: %w", err)
	}

	sessCfg, err := session.LoadConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("token config: %w", err)
	}

	store := identity.NewMemoryStore(identity.Policy{
		UniqueEmail: EnvBool("CADASTRO_UNIQUE_EMAIL", apiCfg.Variant == authapi.VariantAdvanced),
	})
	actLog := activity.New(activity.WithSubscriberQueue(cfg.ActivityStreamQueue))

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
		m.RegisterGauges(
			func() float64 { return float64(store.Stats(context.Background()).TotalUsers) },
			func() float64 { return float64(store.Stats(context.Background()).UsersLoggedIn) },
			func() float64 { return float64(actLog.Count()) },
		)
	}

	lookup := session.LookupFunc(func(ctx context.Context, username string) bool {
		_, found := store.FindByUsername(ctx, username)
		return found
	})
	tokens, err := session.NewService(sessCfg, secret.Key, lookup,
		session.WithLogger(log),
		session.WithIssueHook(func(_ string, degraded bool) { m.TokenIssued(degraded) }),
		session.WithValidateHook(m.TokenValidated),
	)
	if err != nil {
		return nil, fmt.Errorf("token service: %w", err)
	}

	auth, err := authapi.NewHandler(log, apiCfg, authapi.Deps{
		Store:    store,
		Hasher:   hasher,
		Tokens:   tokens,
		Activity: actLog,
		Metrics:  m,
	})
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:      cfg,
		log:      log,
		store:    store,
		activity: actLog,
		metrics:  m,
		tokens:   tokens,
	}
	a.handler = newRouter(log, cfg, &a.ready, m, auth)

	log.Info("app.configured",
		"variant", apiCfg.Variant,
		"password_algo", pwCfg.Algorithm,
		"unique_email", store.Policy().UniqueEmail,
		"token_fallback", tokens.Config().FallbackEnabled,
		"login_ttl", tokens.Config().LoginTTL,
		"token_secret_fp", secret.Fingerprint(),
	)
	return a, nil
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler { return a.handler }

// Reset empties the identity store and the activity log, restarting both id counters.
func (a *App) Reset() {
	a.store.Reset()
	a.activity.Reset()
}

// Run starts the HTTP server and blocks until context cancellation or fatal server error.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return a.Serve(ctx, ln)
}

// Serve runs the HTTP server on ln until ctx is done, then shuts down gracefully.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           a.handler,
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      a.cfg.WriteTimeout,
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.log.Info("server.start", "addr", ln.Addr().String())
		a.ready.Store(true)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("server.fail", "err", err)
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.ready.Store(false)
		a.log.Info("server.stop", "reason", "context_done")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), nonZeroDuration(a.cfg.ShutdownTimeout, 10*time.Second))
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.log.Error("server.shutdown.fail", "err", err)
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	a.log.Info("server.stopped")
	return nil
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
