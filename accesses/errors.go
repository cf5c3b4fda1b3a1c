package accesses

import (
	"fmt"

	"github.com/notargets/DGSched/expr"
	"github.com/pkg/errors"
)

var (
	// ErrNonAffineAccess is returned when an index is not an integer-linear
	// combination of the loop iterators
	ErrNonAffineAccess = errors.New("non-affine access")
	// ErrUnresolvedBuffer is returned when a buffer name is missing from the
	// function's registry
	ErrUnresolvedBuffer = errors.New("unresolved buffer")
)

// NonAffineError locates the offending sub-expression of a rejected access
type NonAffineError struct {
	Buffer string
	Dim    int        // buffer dimension whose index failed
	Node   *expr.Expr // innermost node that could not be reduced
	Reason string
}

func (e *NonAffineError) Error() string {
	return fmt.Sprintf("%s: %s dim %d at %s: %s", ErrNonAffineAccess, e.Buffer, e.Dim, e.Node, e.Reason)
}

func (e *NonAffineError) Unwrap() error { return ErrNonAffineAccess }
