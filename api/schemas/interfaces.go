package schemas

import (
	"context"
)

// -- Session Interfaces --

// SessionStore persists a reusable session state to durable storage and
// restores it. It has no logic beyond load/save and existence checks.
type SessionStore interface {
	Load() (*SessionState, error)
	Save(state *SessionState) error
	Exists() bool
	Clear() error
}

// Authenticator drives the portal login handshake and produces a fresh
// session state on demand. One attempt, one determinate outcome; it never
// retries on its own and never persists anything.
type Authenticator interface {
	Authenticate(ctx context.Context, creds Credentials) (*SessionState, error)
}

// SessionProber checks that a persisted session state is still usable by
// opening a browsing context with it.
type SessionProber interface {
	Probe(ctx context.Context, state *SessionState) error
}

// SessionManager owns the current live session. It guarantees at most one
// live session at a time and serializes authentication attempts so that
// concurrent callers share one in-flight login.
type SessionManager interface {
	// EnsureSession returns the live session state, restoring or
	// re-authenticating as needed.
	EnsureSession(ctx context.Context) (*SessionState, error)
	// Invalidate discards the live session so the next EnsureSession call
	// starts from scratch.
	Invalidate()
}

// -- Page Interfaces --

// LoadedPage is a page scope holding a rendered document. It is exclusively
// owned by the analyze call that opened it and must be closed on every exit
// path.
type LoadedPage interface {
	// CurrentURL returns the URL the page actually landed on.
	CurrentURL(ctx context.Context) (string, error)
	Title(ctx context.Context) (string, error)
	// HTML captures the rendered document markup.
	HTML(ctx context.Context) (string, error)
	Screenshot(ctx context.Context) ([]byte, error)
	// NetworkLogs returns a copy of the responses observed so far.
	NetworkLogs() []NetworkLog
	Close()
}

// Navigator opens pages under an authenticated session, detecting
// login redirects and recovering through re-authentication exactly once.
type Navigator interface {
	Open(ctx context.Context, state *SessionState, target PageTarget) (LoadedPage, error)
}

// -- Extraction & Caching --

// Extractor derives a PageStructure from captured page content. Pure with
// respect to content: no network or session side effects.
type Extractor interface {
	Extract(content string, kind PageKind) (PageStructure, error)
}

// ResultCache maps a deterministic fingerprint of (target, content hint) to
// a previously computed result with a fixed expiration.
type ResultCache interface {
	Get(target PageTarget, contentHint string) (*AnalysisResult, bool)
	Set(target PageTarget, contentHint string, result *AnalysisResult)
	Clear()
	Size() int
}

// -- Downstream collaborator --

// DocGenerator turns an analysis result's raw material into prose
// documentation. Treated as an opaque external collaborator; the analyzer
// itself never depends on it.
type DocGenerator interface {
	Generate(ctx context.Context, input DocInput) (string, error)
}
