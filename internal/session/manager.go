// File: internal/session/manager.go
package session

import (
	"context"
	"os"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/riku-sakamoto/manabo-cli/api/schemas"
)

// Environment variables consulted for credentials at the moment
// authentication is attempted, not at process start.
const (
	EnvUsername = "CHUKYO_USERNAME"
	EnvPassword = "CHUKYO_PASSWORD"
)

// remediationText tells the user how to supply credentials. Every
// user-facing authentication failure carries it.
const remediationText = "set " + EnvUsername + " and " + EnvPassword +
	" or pass --username/--password, then run 'manabo-cli login'"

// ensureKey is the single-flight key: there is only ever one session to
// ensure per manager.
const ensureKey = "ensure"

// Manager owns the current live session. It guarantees at most one live
// SessionState at a time, restores a persisted state when possible, falls
// back to a fresh login when credentials are available, and serializes
// authentication attempts so concurrent callers share one in-flight login.
type Manager struct {
	store  schemas.SessionStore
	auth   schemas.Authenticator
	prober schemas.SessionProber
	logger *zap.Logger

	// creds are explicit credentials that take precedence over the
	// environment. Optional.
	creds *schemas.Credentials

	mu    sync.RWMutex
	live  *schemas.SessionState
	group singleflight.Group
}

var _ schemas.SessionManager = (*Manager)(nil)

// NewManager wires a session manager from its collaborators.
func NewManager(store schemas.SessionStore, auth schemas.Authenticator, prober schemas.SessionProber, logger *zap.Logger) *Manager {
	return &Manager{
		store:  store,
		auth:   auth,
		prober: prober,
		logger: logger.Named("session_manager"),
	}
}

// SetCredentials installs explicit credentials that take precedence over
// environment sourcing.
func (m *Manager) SetCredentials(creds schemas.Credentials) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds = &creds
}

// EnsureSession returns the live session state, restoring a persisted state
// or authenticating as needed. Overlapping callers wait for the in-flight
// attempt's result rather than each issuing their own login.
func (m *Manager) EnsureSession(ctx context.Context) (*schemas.SessionState, error) {
	m.mu.RLock()
	live := m.live
	m.mu.RUnlock()
	if live != nil {
		return live, nil
	}

	result, err, _ := m.group.Do(ensureKey, func() (interface{}, error) {
		return m.ensure(ctx)
	})
	if err != nil {
		return nil, err
	}
	return result.(*schemas.SessionState), nil
}

// ensure runs under the single-flight group.
func (m *Manager) ensure(ctx context.Context) (*schemas.SessionState, error) {
	// A concurrent caller may have completed while we queued.
	m.mu.RLock()
	live := m.live
	m.mu.RUnlock()
	if live != nil {
		return live, nil
	}

	// Restoring: try the persisted state first.
	if m.store.Exists() {
		state, err := m.store.Load()
		if err != nil {
			m.logger.Warn("Persisted session state unreadable; falling back to login.", zap.Error(err))
		} else if err := m.prober.Probe(ctx, state); err != nil {
			m.logger.Warn("Persisted session state unusable; falling back to login.", zap.Error(err))
		} else {
			m.logger.Info("Session restored from persisted state.")
			m.setLive(state)
			return state, nil
		}
	}

	// Authenticating: explicit credentials win, environment is consulted
	// at this moment only.
	creds, ok := m.credentials()
	if !ok {
		return nil, &schemas.AuthError{
			Reason:      "no credentials available",
			Remediation: remediationText,
		}
	}

	state, err := m.auth.Authenticate(ctx, creds)
	if err != nil {
		return nil, err
	}
	if err := m.store.Save(state); err != nil {
		// A session that cannot be persisted is still a session.
		m.logger.Warn("Failed to persist fresh session state.", zap.Error(err))
	}
	m.setLive(state)
	return state, nil
}

// Invalidate discards the live session and its persisted copy so the next
// EnsureSession is forced into a fresh login. Dropping the persisted copy
// matters: a state that just produced a login redirect would otherwise be
// restored verbatim and fail again.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	if m.live != nil {
		m.logger.Info("Live session invalidated.")
	}
	m.live = nil
	m.mu.Unlock()

	if err := m.store.Clear(); err != nil {
		m.logger.Warn("Failed to clear persisted session state.", zap.Error(err))
	}
}

func (m *Manager) setLive(state *schemas.SessionState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.live = state
}

func (m *Manager) credentials() (schemas.Credentials, bool) {
	m.mu.RLock()
	creds := m.creds
	m.mu.RUnlock()
	if creds != nil && creds.Username != "" && creds.Password != "" {
		return *creds, true
	}

	username := os.Getenv(EnvUsername)
	password := os.Getenv(EnvPassword)
	if username != "" && password != "" {
		return schemas.Credentials{Username: username, Password: password}, true
	}
	return schemas.Credentials{}, false
}
