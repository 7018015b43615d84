package broker

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// DispatchError is returned when no usable exchange response was obtained:
// the request never completed, or the body was not an exchange envelope.
// Body keeps whatever the exchange sent so it can be surfaced for diagnostics.
type DispatchError struct {
	Op         string
	StatusCode int
	Body       []byte
	Err        error
}

func (e *DispatchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("dispatch %s: http %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("dispatch %s: %v", e.Op, e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the exchange call was abandoned because its
// deadline elapsed.
func (e *DispatchError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

func IsDispatch(err error) bool {
	var d *DispatchError
	return errors.As(err, &d)
}
