package redfish

import (
	"errors"
	"fmt"
)

// Static errors for err113 compliance.
var (
	// ErrInvalidCredentials is returned when a login attempt is rejected by
	// the service, in either session or basic mode.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrResourceNotFound is returned when a fetch by id does not yield a
	// successful response.
	ErrResourceNotFound = errors.New("resource not found")

	// ErrNoAddressableID is returned when a request verb is invoked on a
	// resource that has no resolvable target address. This signals a caller
	// bug, not a retryable condition.
	ErrNoAddressableID = errors.New("no addressable id")

	// ErrAsyncTimeout is returned when monitor polling exhausts its retry
	// budget before the operation completes.
	ErrAsyncTimeout = errors.New("timed out waiting for operation to complete")

	// ErrMissingKey is returned by strict navigation when a key is absent.
	ErrMissingKey = errors.New("key not found")

	// ErrIndexOutOfRange is returned by strict navigation when a numeric
	// segment does not address an array element.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrCacheMiss is returned by cache backends when a key is not present.
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheDisabled is returned by the no-op cache on every lookup.
	ErrCacheDisabled = errors.New("cache disabled")

	// ErrEndpointRequired is returned when a client is built without a
	// service endpoint.
	ErrEndpointRequired = errors.New("service endpoint is required")

	// ErrConfigRequired is returned when a client is built from a nil config.
	ErrConfigRequired = errors.New("config is required")

	// ErrNoSessionToken is returned when a session is created but the
	// response carries no token header.
	ErrNoSessionToken = errors.New("no session token in response")

	// ErrFragmentNotFound is returned when a fragment path does not address
	// a sub-tree of the fetched document.
	ErrFragmentNotFound = errors.New("fragment path not found")

	// ErrNoMonitor is returned when an in-progress response advertises no
	// monitor address to poll.
	ErrNoMonitor = errors.New("response has no monitor address")
)

// NotFoundError carries the id and status of a failed fetch.
type NotFoundError struct {
	ID     string
	Status int
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("resource %s not found (status %d)", e.ID, e.Status)
}

// Unwrap makes the error match ErrResourceNotFound.
func (e *NotFoundError) Unwrap() error {
	return ErrResourceNotFound
}

// IsNotFound checks if the error is a resource-not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrResourceNotFound)
}

// IsUnauthorized checks if the error is an authentication failure.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrInvalidCredentials)
}
