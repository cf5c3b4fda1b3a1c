package loopnest

import "github.com/pkg/errors"

var (
	// ErrBadDomain is returned for an iterator domain with low > up
	ErrBadDomain = errors.New("invalid iterator domain")
	// ErrBadBuffer is returned when a buffer declaration is incomplete or duplicated
	ErrBadBuffer = errors.New("invalid buffer")
	// ErrBadComputation is returned for malformed or unknown computations
	ErrBadComputation = errors.New("invalid computation")
)

func ErrInvalidDomain(low, up int) error {
	return errors.Wrapf(ErrBadDomain, "low bound %d exceeds up bound %d", low, up)
}
