// File: internal/session/manager_test.go
package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/riku-sakamoto/manabo-cli/api/schemas"
)

// -- Fakes --

type fakeStore struct {
	mu    sync.Mutex
	state *schemas.SessionState

	loadErr error
	saveErr error

	saves  int
	clears int
}

func (f *fakeStore) Exists() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state != nil
}

func (f *fakeStore) Load() (*schemas.SessionState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.state, nil
}

func (f *fakeStore) Save(state *schemas.SessionState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.state = state
	return nil
}

func (f *fakeStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clears++
	f.state = nil
	return nil
}

// countingAuth counts handshake attempts and can slow them down to widen the
// race window for concurrency tests.
type countingAuth struct {
	calls atomic.Int32
	delay time.Duration
	err   error
}

func (a *countingAuth) Authenticate(ctx context.Context, creds schemas.Credentials) (*schemas.SessionState, error) {
	a.calls.Add(1)
	if a.delay > 0 {
		time.Sleep(a.delay)
	}
	if a.err != nil {
		return nil, a.err
	}
	return &schemas.SessionState{
		Cookies: []schemas.Cookie{{Name: "session", Value: creds.Username}},
		SavedAt: time.Now(),
	}, nil
}

type fakeProber struct {
	err   error
	calls atomic.Int32
}

func (p *fakeProber) Probe(ctx context.Context, state *schemas.SessionState) error {
	p.calls.Add(1)
	return p.err
}

func newTestManager(store *fakeStore, auth *countingAuth, prober *fakeProber) *Manager {
	return NewManager(store, auth, prober, zap.NewNop())
}

// -- Tests --

func TestEnsureSessionRestoresPersistedState(t *testing.T) {
	persisted := &schemas.SessionState{
		Cookies: []schemas.Cookie{{Name: "session", Value: "persisted"}},
		SavedAt: time.Now().Add(-time.Hour),
	}
	store := &fakeStore{state: persisted}
	auth := &countingAuth{}
	m := newTestManager(store, auth, &fakeProber{})

	state, err := m.EnsureSession(context.Background())
	require.NoError(t, err)
	assert.Same(t, persisted, state)

	// Restoring a usable state never triggers a login.
	assert.Zero(t, auth.calls.Load())
}

func TestEnsureSessionFallsBackToLoginWhenProbeFails(t *testing.T) {
	store := &fakeStore{state: &schemas.SessionState{
		Cookies: []schemas.Cookie{{Name: "session", Value: "expired"}},
	}}
	auth := &countingAuth{}
	prober := &fakeProber{err: errors.New("session rejected")}
	m := newTestManager(store, auth, prober)
	m.SetCredentials(schemas.Credentials{Username: "user", Password: "pass"})

	state, err := m.EnsureSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "user", state.Cookies[0].Value)
	assert.Equal(t, int32(1), auth.calls.Load())

	// The fresh state replaced the stale one in the store.
	assert.Equal(t, 1, store.saves)
}

func TestEnsureSessionWithoutCredentials(t *testing.T) {
	// Neither explicit credentials nor environment variables are set.
	t.Setenv(EnvUsername, "")
	t.Setenv(EnvPassword, "")

	m := newTestManager(&fakeStore{}, &countingAuth{}, &fakeProber{})

	_, err := m.EnsureSession(context.Background())
	require.Error(t, err)

	var authErr *schemas.AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, "no credentials available", authErr.Reason)
	assert.Contains(t, authErr.Remediation, EnvUsername)
	assert.Contains(t, authErr.Remediation, "login")
}

func TestEnsureSessionReadsEnvironmentAtAttemptTime(t *testing.T) {
	t.Setenv(EnvUsername, "env-user")
	t.Setenv(EnvPassword, "env-pass")

	auth := &countingAuth{}
	m := newTestManager(&fakeStore{}, auth, &fakeProber{})

	state, err := m.EnsureSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "env-user", state.Cookies[0].Value)
}

func TestExplicitCredentialsWinOverEnvironment(t *testing.T) {
	t.Setenv(EnvUsername, "env-user")
	t.Setenv(EnvPassword, "env-pass")

	auth := &countingAuth{}
	m := newTestManager(&fakeStore{}, auth, &fakeProber{})
	m.SetCredentials(schemas.Credentials{Username: "explicit-user", Password: "explicit-pass"})

	state, err := m.EnsureSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "explicit-user", state.Cookies[0].Value)
}

func TestEnsureSessionSingleFlight(t *testing.T) {
	defer goleak.VerifyNone(t)

	auth := &countingAuth{delay: 50 * time.Millisecond}
	m := newTestManager(&fakeStore{}, auth, &fakeProber{})
	m.SetCredentials(schemas.Credentials{Username: "user", Password: "pass"})

	const callers = 16
	states := make([]*schemas.SessionState, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			state, err := m.EnsureSession(context.Background())
			assert.NoError(t, err)
			states[i] = state
		}(i)
	}
	wg.Wait()

	// Concurrent callers share one in-flight login and one resulting state.
	assert.Equal(t, int32(1), auth.calls.Load())
	for i := 1; i < callers; i++ {
		assert.Same(t, states[0], states[i])
	}
}

func TestEnsureSessionReturnsLiveStateWithoutWork(t *testing.T) {
	auth := &countingAuth{}
	store := &fakeStore{}
	m := newTestManager(store, auth, &fakeProber{})
	m.SetCredentials(schemas.Credentials{Username: "user", Password: "pass"})

	first, err := m.EnsureSession(context.Background())
	require.NoError(t, err)
	second, err := m.EnsureSession(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), auth.calls.Load())
}

func TestInvalidateForcesFreshLogin(t *testing.T) {
	auth := &countingAuth{}
	store := &fakeStore{}
	m := newTestManager(store, auth, &fakeProber{})
	m.SetCredentials(schemas.Credentials{Username: "user", Password: "pass"})

	first, err := m.EnsureSession(context.Background())
	require.NoError(t, err)

	m.Invalidate()

	// The persisted copy is cleared too: a state that just failed must not
	// be restored verbatim.
	assert.Equal(t, 1, store.clears)

	second, err := m.EnsureSession(context.Background())
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, int32(2), auth.calls.Load())
}

func TestAuthenticationFailurePropagates(t *testing.T) {
	auth := &countingAuth{err: &schemas.AuthError{Reason: "login failed", Remediation: "check credentials"}}
	m := newTestManager(&fakeStore{}, auth, &fakeProber{})
	m.SetCredentials(schemas.Credentials{Username: "user", Password: "bad"})

	_, err := m.EnsureSession(context.Background())
	require.Error(t, err)
	assert.True(t, schemas.IsAuthError(err))
}

func TestSaveFailureDoesNotLoseSession(t *testing.T) {
	auth := &countingAuth{}
	store := &fakeStore{saveErr: errors.New("disk full")}
	m := newTestManager(store, auth, &fakeProber{})
	m.SetCredentials(schemas.Credentials{Username: "user", Password: "pass"})

	// A session that cannot be persisted is still usable for this process.
	state, err := m.EnsureSession(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, state)
}
