package j1939

import (
	"errors"
	"fmt"
)

var (
	// ErrBitRange reports a bit span that does not fit the buffer.
	ErrBitRange = errors.New("bit span exceeds buffer")
	// ErrBitWidth reports a field width outside 1..64.
	ErrBitWidth = errors.New("bit length must be 1..64")
)

// OutOfRangeError reports an encode value that is not representable in
// the signal's raw width.
type OutOfRangeError struct {
	Signal   string
	Physical float64
	Raw      int64
	Min, Max int64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("signal %s: physical %g maps to raw %d outside [%d, %d]",
		e.Signal, e.Physical, e.Raw, e.Min, e.Max)
}
