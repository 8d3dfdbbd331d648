package register

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrTimeout          = errors.New("timeout")
)

// TimeoutError is returned when the busy flag did not clear within the poll budget.
type TimeoutError struct {
	Register   ID
	MaxCount   int
	CountDelay time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("max count reached while waiting for busy flag to clear before writing %s, max_count: %d, count_delay: %s",
		e.Register, e.MaxCount, e.CountDelay)
}

func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// Kind is a stable, transport-facing error identifier.
type Kind string

const (
	KindOK               Kind = "ok"
	KindInvalidArgument  Kind = "invalid_argument"
	KindNotFound         Kind = "not_found"
	KindPermissionDenied Kind = "permission_denied"
	KindTimeout          Kind = "timeout"
	KindCanceled         Kind = "canceled"
	KindTransport        Kind = "transport"
)

// KindOf classifies err. Anything not raised by this package is treated as
// a transport failure.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindOK
	case errors.Is(err, ErrInvalidArgument):
		return KindInvalidArgument
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrPermissionDenied):
		return KindPermissionDenied
	case errors.Is(err, ErrTimeout):
		return KindTimeout
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindTransport
	}
}
