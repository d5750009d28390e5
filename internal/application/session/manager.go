package session

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// PermissionProductionWrite allows mutating production operations
const PermissionProductionWrite = "production:write"

const wildcardPermission = "*"

// ErrNotAuthenticated is returned when an operation needs a session and none is active
var ErrNotAuthenticated = errors.New("not authenticated")

// Event is delivered to subscribers on session changes
type Event int

const (
	EventLogin Event = iota
	EventLogout
	EventInvalidated
)

func (e Event) String() string {
	switch e {
	case EventLogin:
		return "login"
	case EventLogout:
		return "logout"
	case EventInvalidated:
		return "invalidated"
	default:
		return "unknown"
	}
}

// Subscriber is notified after the session changes
type Subscriber func(Event)

// Revoker ends the session on the server side
type Revoker interface {
	Revoke(ctx context.Context, token string) error
}

// Manager holds the client session: bearer token, actor and permissions.
// Logout is de-duplicated, so concurrent teardown requests (for example several
// requests failing with 401 at once) produce a single revoke and a single event.
type Manager struct {
	mu          sync.RWMutex
	token       string
	actor       string
	permissions map[string]struct{}
	subscribers map[int]Subscriber
	nextID      int

	revoker Revoker
	group   singleflight.Group
	logger  *zap.Logger
}

// NewManager creates an empty session. revoker may be nil when the server has
// no revoke endpoint.
func NewManager(revoker Revoker, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		permissions: make(map[string]struct{}),
		subscribers: make(map[int]Subscriber),
		revoker:     revoker,
		logger:      logger,
	}
}

// Login installs a new session and notifies subscribers
func (m *Manager) Login(token, actor string, permissions []string) {
	m.mu.Lock()
	m.token = token
	m.actor = actor
	m.permissions = make(map[string]struct{}, len(permissions))
	for _, p := range permissions {
		m.permissions[p] = struct{}{}
	}
	m.mu.Unlock()

	m.logger.Info("session started", zap.String("actor", actor), zap.Strings("permissions", permissions))
	m.notify(EventLogin)
}

// Token returns the bearer token of the active session
func (m *Manager) Token() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.token == "" {
		return "", ErrNotAuthenticated
	}
	return m.token, nil
}

// Actor returns the identity of the active session, empty when logged out
func (m *Manager) Actor() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.actor
}

// Authenticated reports whether a session is active
func (m *Manager) Authenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token != ""
}

// Can reports whether the active session holds permission
func (m *Manager) Can(permission string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.token == "" {
		return false
	}
	if _, ok := m.permissions[wildcardPermission]; ok {
		return true
	}
	_, ok := m.permissions[permission]
	return ok
}

// Subscribe registers fn for session events and returns its unsubscribe function
func (m *Manager) Subscribe(fn Subscriber) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subscribers[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subscribers, id)
		m.mu.Unlock()
	}
}

// Logout ends the session at the user's request
func (m *Manager) Logout(ctx context.Context) error {
	return m.teardown(ctx, EventLogout, true)
}

// Invalidate ends the session after the server refused its credentials.
// The token is already dead, so nothing is revoked.
func (m *Manager) Invalidate(ctx context.Context) {
	if err := m.teardown(ctx, EventInvalidated, false); err != nil {
		m.logger.Warn("session invalidation failed", zap.Error(err))
	}
}

func (m *Manager) teardown(ctx context.Context, event Event, revoke bool) error {
	_, err, _ := m.group.Do("teardown", func() (interface{}, error) {
		m.mu.Lock()
		token := m.token
		m.token = ""
		m.actor = ""
		m.permissions = make(map[string]struct{})
		m.mu.Unlock()

		if token == "" {
			return nil, nil
		}

		var revokeErr error
		if revoke && m.revoker != nil {
			revokeErr = m.revoker.Revoke(ctx, token)
		}

		m.logger.Info("session ended", zap.Stringer("reason", event))
		m.notify(event)
		return nil, revokeErr
	})
	return err
}

func (m *Manager) notify(event Event) {
	m.mu.RLock()
	subs := make([]Subscriber, 0, len(m.subscribers))
	for _, fn := range m.subscribers {
		subs = append(subs, fn)
	}
	m.mu.RUnlock()

	for _, fn := range subs {
		fn(event)
	}
}
