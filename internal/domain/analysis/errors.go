package analysis

import (
	"errors"
	"fmt"
)

// The four terminal outcomes of an analysis attempt. None is retried
// internally; retrying is a caller decision.
var (
	// ErrInvalidInput rejects the attempt before any collaborator is called.
	ErrInvalidInput = errors.New("invalid analysis input")

	// ErrUpstreamUnavailable covers transport failures and malformed payloads
	// from a required external service.
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")

	// ErrPersistenceFailed means a report was generated but not saved. The
	// report is not cached; a retry recomputes it.
	ErrPersistenceFailed = errors.New("analysis not persisted")

	// ErrNotAccessible collapses not-found and not-owned on reads.
	ErrNotAccessible = errors.New("analysis not accessible")
)

// RejectionError is the generator's explicit refusal: the image is not a
// cattle/buffalo photo. Retrying with the same image is pointless, so this is
// kept distinct from ErrUpstreamUnavailable.
type RejectionError struct {
	Reason string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("analysis rejected: %s", e.Reason)
}
