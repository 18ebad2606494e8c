package livingtrust

import (
	"context"
	"io"
	"log/slog"

	"github.com/livingtrust/livingtrust/internal/logging"
	"github.com/livingtrust/livingtrust/internal/wizard"
	"github.com/livingtrust/livingtrust/pkg/adapters/memory"
	"github.com/livingtrust/livingtrust/pkg/domain"
	"github.com/livingtrust/livingtrust/pkg/gateway"
	"github.com/livingtrust/livingtrust/pkg/ports"
	"github.com/livingtrust/livingtrust/pkg/runner"
	"github.com/livingtrust/livingtrust/pkg/session"
)

// Engine is the high-level entry point for the library.
// It wires the wizard reducer, a session store and a submission gateway.
type Engine struct {
	sessions *session.Manager
	store    ports.WizardStore
	gateway  ports.SubmissionGateway
	locker   ports.DistributedLocker
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	observer session.Observer
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithStore persists sessions in store instead of memory.
func WithStore(store ports.WizardStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithGateway sets where confirmed drafts are submitted. The default is a
// Local gateway over an in-memory trust repository.
func WithGateway(g ports.SubmissionGateway) Option {
	return func(e *Engine) {
		e.gateway = g
	}
}

// WithLocker enables distributed session locking.
func WithLocker(l ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = l
	}
}

// WithObserver is notified after every persisted state change.
func WithObserver(o session.Observer) Option {
	return func(e *Engine) {
		e.observer = o
	}
}

// New initializes an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	if e.store == nil {
		e.store = memory.NewStore()
	}
	if e.gateway == nil {
		e.gateway = gateway.NewLocal(memory.NewTrustRepository(), gateway.WithLogger(e.logger))
	}

	reducer := wizard.NewEngine(
		wizard.WithLifecycleHooks(e.hooks),
		wizard.WithLogger(e.logger),
	)
	sessOpts := []session.Option{
		session.WithEngine(reducer),
		session.WithGateway(e.gateway),
		session.WithLogger(e.logger),
		session.WithObserver(e.observer),
	}
	if e.locker != nil {
		sessOpts = append(sessOpts, session.WithLocker(e.locker))
	}
	e.sessions = session.NewManager(e.store, sessOpts...)
	return e
}

// Sessions returns the session manager, e.g. to pass to the HTTP adapter.
func (e *Engine) Sessions() *session.Manager {
	return e.sessions
}

// Steps returns the five wizard steps.
func (e *Engine) Steps() []domain.StepSpec {
	return wizard.Steps()
}

// Start creates a session owned by ownerID (may be empty).
func (e *Engine) Start(ctx context.Context, ownerID string) (*domain.WizardState, error) {
	return e.sessions.Start(ctx, ownerID)
}

func (e *Engine) Load(ctx context.Context, sessionID string) (*domain.WizardState, error) {
	return e.sessions.Load(ctx, sessionID)
}

func (e *Engine) Update(ctx context.Context, sessionID string, field domain.Field, value string) (*domain.WizardState, error) {
	return e.sessions.Update(ctx, sessionID, field, value)
}

// Next advances the session. A blank required field returns the unchanged
// state with its notice together with a *domain.ValidationError.
func (e *Engine) Next(ctx context.Context, sessionID string) (*domain.WizardState, error) {
	return e.sessions.Next(ctx, sessionID)
}

func (e *Engine) Back(ctx context.Context, sessionID string) (*domain.WizardState, error) {
	return e.sessions.Back(ctx, sessionID)
}

func (e *Engine) Cancel(ctx context.Context, sessionID string) (*domain.WizardState, error) {
	return e.sessions.Cancel(ctx, sessionID)
}

// Confirm submits the draft exactly once per session.
func (e *Engine) Confirm(ctx context.Context, sessionID string) (*domain.WizardState, error) {
	return e.sessions.Confirm(ctx, sessionID)
}

// Respond answers the confirmation prompt. Blank means no.
func (e *Engine) Respond(ctx context.Context, sessionID, answer string) (*domain.WizardState, error) {
	return e.sessions.Respond(ctx, sessionID, answer)
}

func (e *Engine) Discard(ctx context.Context, sessionID string) error {
	return e.sessions.Discard(ctx, sessionID)
}

func (e *Engine) List(ctx context.Context) ([]string, error) {
	return e.sessions.List(ctx)
}

var _ runner.Wizard = (*Engine)(nil)

// Run drives a new session over in and out with the line runner and
// returns the created trust.
func (e *Engine) Run(ctx context.Context, in io.Reader, out io.Writer, opts ...runner.Option) (*runner.Result, error) {
	opts = append([]runner.Option{
		runner.WithInputHandler(runner.NewTextHandler(in, out)),
		runner.WithLogger(e.logger),
	}, opts...)
	return runner.NewRunner(opts...).Run(ctx, e)
}
