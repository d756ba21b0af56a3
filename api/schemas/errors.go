package schemas

import (
	"errors"
	"fmt"
)

// Error taxonomy for the analysis engine. AuthError, NavigationError and
// ExtractionError originate in their respective layers; AnalysisError wraps
// any of them for the orchestrator's external contract.

// AuthError reports a failure to obtain or restore an authenticated session.
// Remediation carries actionable text telling the user how to supply
// credentials; it must be populated for user-facing failures.
type AuthError struct {
	Reason      string
	Remediation string
	Err         error
}

func (e *AuthError) Error() string {
	msg := fmt.Sprintf("authentication failed: %s", e.Reason)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Remediation != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Remediation)
	}
	return msg
}

func (e *AuthError) Unwrap() error { return e.Err }

// NavigationError reports a transport failure or a repeated redirect to the
// identity provider after the one-shot re-authentication retry was spent.
type NavigationError struct {
	URL    string
	Reason string
	Err    error
}

func (e *NavigationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("navigation to %s failed: %s: %v", e.URL, e.Reason, e.Err)
	}
	return fmt.Sprintf("navigation to %s failed: %s", e.URL, e.Reason)
}

func (e *NavigationError) Unwrap() error { return e.Err }

// ExtractionError reports a page-evaluation fault during structure
// extraction. Element absence is never an extraction error; only a failure
// to evaluate the content at all (e.g. unparseable markup, page closed
// mid-extraction) is.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("structure extraction failed: %v", e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// AnalysisError wraps any lower-layer failure for the orchestrator's
// fail-fast contract.
type AnalysisError struct {
	Target PageTarget
	Err    error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analysis of %s failed: %v", e.Target.URL, e.Err)
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// IsAuthError reports whether err has an AuthError anywhere in its chain.
func IsAuthError(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// IsNavigationError reports whether err has a NavigationError in its chain.
func IsNavigationError(err error) bool {
	var ne *NavigationError
	return errors.As(err, &ne)
}
