package domain

import (
	"errors"
	"fmt"
)

// ErrConsentRequired is returned when an operation needs active consent and
// the user has not opted in (or has revoked). In the guardrails flow the
// enforcer swallows this and returns an empty list instead.
var ErrConsentRequired = errors.New("user consent required")

// ErrNoData is returned when a computation has no underlying account or
// transaction data to work from. Detectors degrade to zero-valued signals
// rather than surfacing it.
var ErrNoData = errors.New("no data available")

// InvalidWindowError reports a request for an unsupported window type. It is
// a caller bug and is never retried.
type InvalidWindowError struct {
	WindowType string
}

func (e *InvalidWindowError) Error() string {
	return fmt.Sprintf("invalid window type %q: must be %q or %q", e.WindowType, Window30d, Window180d)
}

// IsInvalidWindow reports whether err is an InvalidWindowError.
func IsInvalidWindow(err error) bool {
	var iw *InvalidWindowError
	return errors.As(err, &iw)
}
