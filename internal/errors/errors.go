// internal/errors/errors.go
package errors

import (
	"errors"
	"fmt"
)

// ErrAccountNotFound is returned when a tracked login no longer resolves on the
// provider. Tracking continues; the condition is surfaced as a warning so a
// transient provider blip never silently untracks anyone.
var ErrAccountNotFound = errors.New("account not found on provider")

// ErrCommitNotFound is returned when a commit listed earlier has been rewritten
// or force-pushed away before its stats could be fetched.
var ErrCommitNotFound = errors.New("commit not found")

// ProviderUnavailableError wraps a network or remote outage. The affected
// account is retried on the next cycle without alerting.
type ProviderUnavailableError struct {
	Err error
}

func (e *ProviderUnavailableError) Error() string {
	return fmt.Sprintf("provider unavailable: %v", e.Err)
}

func (e *ProviderUnavailableError) Unwrap() error { return e.Err }

// ErrInvalidDomainID is returned when an account lifecycle request carries an
// empty or malformed domain scope.
type ErrInvalidDomainID struct {
	DomainID string
}

func (e *ErrInvalidDomainID) Error() string {
	return fmt.Sprintf("invalid domain id: %q", e.DomainID)
}
