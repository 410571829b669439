package hub

import (
	"errors"
	"fmt"
)

// ErrNotConfigured is returned when an operation needs hub connection
// settings that have not been provided yet.
var ErrNotConfigured = errors.New("hub URL or token is not configured")

// Kind classifies a hub API failure.
type Kind int

const (
	// KindNetwork covers connection failures and timeouts.
	KindNetwork Kind = iota
	// KindAuth covers 401 and 403 responses.
	KindAuth
	// KindServer covers 5xx responses.
	KindServer
	// KindMalformed covers responses that don't match the expected schema.
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindAuth:
		return "auth"
	case KindServer:
		return "server"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Error is a typed hub API failure. Status is the HTTP status code when one
// was received, zero otherwise.
type Error struct {
	Kind   Kind
	Op     string
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("hub: %s: %s error (status %d): %v", e.Op, e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("hub: %s: %s error: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsAuth reports whether err is an auth failure (401/403).
func IsAuth(err error) bool {
	return isKind(err, KindAuth)
}

// IsNetwork reports whether err is a transport failure.
func IsNetwork(err error) bool {
	return isKind(err, KindNetwork)
}

// IsServer reports whether err is a 5xx failure.
func IsServer(err error) bool {
	return isKind(err, KindServer)
}

// IsMalformed reports whether err is a schema mismatch.
func IsMalformed(err error) bool {
	return isKind(err, KindMalformed)
}

func isKind(err error, kind Kind) bool {
	var hubErr *Error
	return errors.As(err, &hubErr) && hubErr.Kind == kind
}
