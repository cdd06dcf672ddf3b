// Package nim provides clients for NVIDIA NIM molecular AI services
// (ESMFold structure prediction, MolMIM molecule generation, DiffDock
// docking).
package nim

import "fmt"

// ErrorKind classifies remote service failures.
type ErrorKind string

// Error kinds.
const (
	// KindUnavailable covers transport failures, timeouts, and 5xx
	// responses: the service could not serve the request.
	KindUnavailable ErrorKind = "unavailable"
	// KindRejected covers 4xx responses: the service refused the request
	// (invalid input, auth, quota).
	KindRejected ErrorKind = "rejected"
	// KindMalformed covers 2xx responses whose body violates the expected
	// contract.
	KindMalformed ErrorKind = "malformed"
)

// Error represents a failure calling a NIM endpoint.
type Error struct {
	Endpoint string
	Kind     ErrorKind
	Status   int
	Message  string
	Cause    error
}

func (e *Error) Error() string {
	base := fmt.Sprintf("nim %s: %s", e.Endpoint, e.Message)
	if e.Status != 0 {
		base = fmt.Sprintf("nim %s: HTTP %d: %s", e.Endpoint, e.Status, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", base, e.Cause)
	}
	return base
}

func (e *Error) Unwrap() error {
	return e.Cause
}
