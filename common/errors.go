package common

import (
	"errors"
	"time"
)

const (
	// DefaultTimeout is the default duration to wait for a device response
	// before giving up
	DefaultTimeout = 2 * time.Second
	// DefaultRetryInterval is the default duration between discovery
	// broadcast attempts
	DefaultRetryInterval = 500 * time.Millisecond
)

var (
	// ErrNotFound is returned when a device lookup fails
	ErrNotFound = errors.New(`device not found`)
	// ErrTimeout is returned when an operation does not receive a response
	// within its deadline
	ErrTimeout = errors.New(`timed out`)
	// ErrClosed is returned on operations against a closed resource
	ErrClosed = errors.New(`closed`)
	// ErrDuplicate is returned when adding a device that is already known
	ErrDuplicate = errors.New(`duplicate device`)
	// ErrMalformedHeader is returned when a received buffer is too short to
	// contain a protocol header, or the header fields can not be parsed
	ErrMalformedHeader = errors.New(`malformed header`)
	// ErrTruncatedPayload is returned when a payload is shorter than the
	// minimum length for its message type
	ErrTruncatedPayload = errors.New(`truncated payload`)
	// ErrInvalidColorFormat is returned when a color string can not be
	// parsed
	ErrInvalidColorFormat = errors.New(`invalid color format`)
	// ErrUnknownEffect is returned when an effect name is not recognized
	ErrUnknownEffect = errors.New(`unknown effect`)
)
