package cli

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/livingtrust/livingtrust"
	"github.com/livingtrust/livingtrust/internal/adapters/file"
	"github.com/livingtrust/livingtrust/internal/config"
	lthttp "github.com/livingtrust/livingtrust/pkg/adapters/http"
	"github.com/livingtrust/livingtrust/pkg/adapters/loam"
	"github.com/livingtrust/livingtrust/pkg/adapters/memory"
	"github.com/livingtrust/livingtrust/pkg/adapters/redis"
	"github.com/livingtrust/livingtrust/pkg/adapters/sqlite"
	"github.com/livingtrust/livingtrust/pkg/advisor"
	"github.com/livingtrust/livingtrust/pkg/auth"
	"github.com/livingtrust/livingtrust/pkg/gateway"
	"github.com/livingtrust/livingtrust/pkg/observability"
	"github.com/livingtrust/livingtrust/pkg/persistence/middleware"
	"github.com/livingtrust/livingtrust/pkg/ports"
)

// Backend holds the collaborators built from the configuration.
type Backend struct {
	Engine    *livingtrust.Engine
	Sessions  ports.WizardStore
	Trusts    ports.TrustRepository
	Documents ports.DocumentRepository
	Users     ports.UserRepository
	Auth      *auth.Service
	Advisor   ports.Advisor
	Streams   *lthttp.StreamManager
	Metrics   *observability.Metrics

	closers []func() error
}

// BackendOption adjusts NewBackend.
type BackendOption func(*backendOptions)

type backendOptions struct {
	sessions ports.WizardStore
	gateway  ports.SubmissionGateway
}

// WithSessionStore overrides the session store chosen by the store kind.
func WithSessionStore(s ports.WizardStore) BackendOption {
	return func(o *backendOptions) { o.sessions = s }
}

// WithRemoteGateway submits confirmed drafts somewhere other than the local trust repository.
func WithRemoteGateway(g ports.SubmissionGateway) BackendOption {
	return func(o *backendOptions) { o.gateway = g }
}

// NewBackend wires stores, repositories and services for cfg.Store.Kind:
//   - memory: everything in process memory.
//   - sqlite: records in SQLite, wizard sessions as files in SessionDir.
//   - redis: records in SQLite, wizard sessions and their locks in Redis.
//
// DocumentsDir moves documents to a markdown vault. EncryptionKey seals
// sessions at rest.
func NewBackend(cfg *config.Config, logger *slog.Logger, opts ...BackendOption) (*Backend, error) {
	var o backendOptions
	for _, opt := range opts {
		opt(&o)
	}

	b := &Backend{
		Metrics: observability.NewMetrics(),
		Streams: lthttp.NewStreamManager(logger),
	}
	var locker ports.DistributedLocker

	switch cfg.Store.Kind {
	case config.StoreMemory:
		b.Trusts = memory.NewTrustRepository()
		b.Documents = memory.NewDocumentRepository()
		b.Users = memory.NewUserRepository()
		b.Sessions = memory.NewStore()

	case config.StoreSQLite, config.StoreRedis:
		db, err := sqlite.OpenDB(cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, db.Close)
		b.useSQLite(db)

		if cfg.Store.Kind == config.StoreRedis {
			rs := redis.New(cfg.Store.Redis.Addr, cfg.Store.Redis.Password, cfg.Store.Redis.DB,
				redis.WithPrefix(cfg.Store.Redis.Prefix),
				redis.WithTTL(cfg.Store.Redis.TTL),
			)
			b.closers = append(b.closers, rs.Close)
			b.Sessions = rs
			locker = redis.NewLocker(rs.Client(), cfg.Store.Redis.Prefix)
		} else {
			b.Sessions = file.New(cfg.Store.SessionDir)
		}

	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store.Kind)
	}

	if o.sessions != nil {
		b.Sessions = o.sessions
	}
	sealed, err := seal(b.Sessions, cfg.Store.EncryptionKey)
	if err != nil {
		_ = b.Close()
		return nil, err
	}
	b.Sessions = sealed

	if cfg.DocumentsDir != "" {
		vault, err := loam.Open(cfg.DocumentsDir)
		if err != nil {
			_ = b.Close()
			return nil, err
		}
		b.Documents = vault
	}

	if cfg.Auth.JWTSecret == config.DefaultJWTSecret {
		logger.Warn("using the default JWT secret, set JWT_SECRET outside local development")
	}
	b.Auth = auth.NewService(b.Users, cfg.Auth.JWTSecret)
	if cfg.Auth.TokenTTL > 0 {
		b.Auth.TTL = cfg.Auth.TokenTTL
	}
	b.Advisor = advisor.New(cfg.AI, logger)

	gw := o.gateway
	if gw == nil {
		gw = gateway.NewLocal(b.Trusts, gateway.WithLogger(logger))
	}
	engineOpts := []livingtrust.Option{
		livingtrust.WithLogger(logger),
		livingtrust.WithStore(b.Sessions),
		livingtrust.WithGateway(gw),
		livingtrust.WithLifecycleHooks(b.Metrics.Hooks()),
		livingtrust.WithObserver(b.Streams.Observe),
	}
	if locker != nil {
		engineOpts = append(engineOpts, livingtrust.WithLocker(locker))
	}
	b.Engine = livingtrust.New(engineOpts...)
	return b, nil
}

func (b *Backend) useSQLite(db *sql.DB) {
	b.Trusts = sqlite.NewTrustRepo(db)
	b.Documents = sqlite.NewDocumentRepo(db)
	b.Users = sqlite.NewUserRepo(db)
}

// HTTPConfig returns the API server configuration for this backend.
func (b *Backend) HTTPConfig(cfg *config.Config, logger *slog.Logger) lthttp.Config {
	hc := lthttp.Config{
		Sessions:  b.Engine.Sessions(),
		Trusts:    b.Trusts,
		Documents: b.Documents,
		Auth:      b.Auth,
		Advisor:   b.Advisor,
		Streams:   b.Streams,
		Metrics:   b.Metrics,
		Logger:    logger,
		Version:   strings.TrimSpace(livingtrust.Version),
	}
	if cfg.RateLimit.PerMinute > 0 {
		hc.AILimiter = lthttp.NewRateLimiter(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst)
	}
	return hc
}

// Close releases database and cache connections.
func (b *Backend) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		errs = append(errs, b.closers[i]())
	}
	b.closers = nil
	return errors.Join(errs...)
}

// OpenSessionStore returns the store the wizard command uses for cfg: Redis
// for the redis kind, session files otherwise, sealed when a key is set.
func OpenSessionStore(cfg *config.Config) (ports.WizardStore, func() error, error) {
	var store ports.WizardStore
	closeFn := func() error { return nil }
	if cfg.Store.Kind == config.StoreRedis {
		rs := redis.New(cfg.Store.Redis.Addr, cfg.Store.Redis.Password, cfg.Store.Redis.DB,
			redis.WithPrefix(cfg.Store.Redis.Prefix),
			redis.WithTTL(cfg.Store.Redis.TTL),
		)
		store, closeFn = rs, rs.Close
	} else {
		store = file.New(cfg.Store.SessionDir)
	}
	sealed, err := seal(store, cfg.Store.EncryptionKey)
	if err != nil {
		_ = closeFn()
		return nil, nil, err
	}
	return sealed, closeFn, nil
}

// seal wraps store with AES-GCM encryption when secret is set.
func seal(store ports.WizardStore, secret string) (ports.WizardStore, error) {
	if secret == "" {
		return store, nil
	}
	key, err := middleware.KeyFromSecret(secret)
	if err != nil {
		return nil, fmt.Errorf("encryption key: %w", err)
	}
	enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
	if err != nil {
		return nil, err
	}
	return middleware.Chain(store, enc), nil
}
