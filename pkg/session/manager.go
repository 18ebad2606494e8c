package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/livingtrust/livingtrust/internal/logging"
	"github.com/livingtrust/livingtrust/internal/wizard"
	"github.com/livingtrust/livingtrust/pkg/domain"
	"github.com/livingtrust/livingtrust/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed session lock may be held.
// It covers the gateway call made while confirming.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Observer is notified after every persisted state change.
type Observer func(ctx context.Context, old, new *domain.WizardState)

// Manager runs wizard operations as load, reduce, save under a per-session lock.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store   ports.WizardStore
	engine  *wizard.Engine
	gateway ports.SubmissionGateway

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker    ports.DistributedLocker // Optional distributed locker
	lockTTL   time.Duration
	logger    *slog.Logger
	observers []Observer
	newID     func() string
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithEngine replaces the default wizard engine (e.g. to attach hooks).
func WithEngine(e *wizard.Engine) Option {
	return func(m *Manager) {
		if e != nil {
			m.engine = e
		}
	}
}

// WithGateway sets the gateway used by Confirm.
func WithGateway(g ports.SubmissionGateway) Option {
	return func(m *Manager) {
		m.gateway = g
	}
}

// WithObserver registers a callback for state changes.
func WithObserver(o Observer) Option {
	return func(m *Manager) {
		if o != nil {
			m.observers = append(m.observers, o)
		}
	}
}

// WithIDGenerator overrides the session ID generator (uuid by default).
func WithIDGenerator(fn func() string) Option {
	return func(m *Manager) {
		if fn != nil {
			m.newID = fn
		}
	}
}

// NewManager creates a new Session Manager with the given persistence store.
func NewManager(store ports.WizardStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		engine:  wizard.NewEngine(),
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// WithLock executes fn while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// Start creates and persists a new session owned by ownerID (may be empty).
func (m *Manager) Start(ctx context.Context, ownerID string) (*domain.WizardState, error) {
	id := m.newID()
	var state *domain.WizardState
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		state = m.engine.Start(ctx, id)
		state.OwnerID = ownerID
		if err := m.store.Save(ctx, id, state); err != nil {
			return fmt.Errorf("failed to initialize session: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.notify(ctx, nil, state)
	m.logger.Debug("wizard session started", "session_id", id)
	return state.Snapshot(), nil
}

// Load retrieves an existing session from the store.
func (m *Manager) Load(ctx context.Context, sessionID string) (*domain.WizardState, error) {
	var state *domain.WizardState
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		state, err = m.store.Load(ctx, sessionID)
		return err
	})
	return state, err
}

// Update edits one draft field.
func (m *Manager) Update(ctx context.Context, sessionID string, field domain.Field, value string) (*domain.WizardState, error) {
	return m.apply(ctx, sessionID, func(ctx context.Context, s *domain.WizardState) (*domain.WizardState, error) {
		return m.engine.Update(ctx, s, field, value)
	})
}

// Next advances the session. A blocked step is persisted with its notice and
// returned together with the *domain.ValidationError.
func (m *Manager) Next(ctx context.Context, sessionID string) (*domain.WizardState, error) {
	return m.apply(ctx, sessionID, m.engine.Next)
}

// Back returns to the previous step.
func (m *Manager) Back(ctx context.Context, sessionID string) (*domain.WizardState, error) {
	return m.apply(ctx, sessionID, m.engine.Back)
}

// Cancel dismisses the confirmation prompt.
func (m *Manager) Cancel(ctx context.Context, sessionID string) (*domain.WizardState, error) {
	return m.apply(ctx, sessionID, m.engine.Cancel)
}

// Confirm submits the session's draft. The session lock is held across the
// gateway call, so concurrent confirms are serialized: the second one sees
// the submitted state and returns the stored acknowledgement.
func (m *Manager) Confirm(ctx context.Context, sessionID string) (*domain.WizardState, error) {
	return m.apply(ctx, sessionID, func(ctx context.Context, s *domain.WizardState) (*domain.WizardState, error) {
		return m.engine.Confirm(ctx, s, m.gateway)
	})
}

// Respond answers the confirmation prompt (blank means no).
func (m *Manager) Respond(ctx context.Context, sessionID, answer string) (*domain.WizardState, error) {
	return m.apply(ctx, sessionID, func(ctx context.Context, s *domain.WizardState) (*domain.WizardState, error) {
		return m.engine.Respond(ctx, s, answer, m.gateway)
	})
}

// Discard removes the session from the store.
func (m *Manager) Discard(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying wizard store.
func (m *Manager) Store() ports.WizardStore {
	return m.store
}

type reducer func(context.Context, *domain.WizardState) (*domain.WizardState, error)

// apply loads the session, runs fn and persists whatever state fn returns,
// including the states that accompany validation and submission errors.
func (m *Manager) apply(ctx context.Context, sessionID string, fn reducer) (*domain.WizardState, error) {
	var old, next *domain.WizardState
	var opErr error
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		old, err = m.store.Load(ctx, sessionID)
		if err != nil {
			return err
		}
		next, opErr = fn(ctx, old)
		if next == nil {
			return opErr
		}
		if err := m.store.Save(ctx, sessionID, next); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.notify(ctx, old, next)
	if opErr != nil && !errors.Is(opErr, domain.ErrValidationBlocked) && !errors.Is(opErr, domain.ErrSubmissionFailed) {
		m.logger.Debug("wizard operation rejected", "session_id", sessionID, "err", opErr)
	}
	return next.Snapshot(), opErr
}

func (m *Manager) notify(ctx context.Context, old, new *domain.WizardState) {
	for _, o := range m.observers {
		o(ctx, old, new)
	}
}
