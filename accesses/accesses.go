// Package accesses extracts the affine access matrices of a computation's
// buffer reads and writes.
package accesses

import (
	"github.com/notargets/DGSched/expr"
	"github.com/notargets/DGSched/loopnest"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Computation is what the collector needs from a computation.
// *loopnest.Computation satisfies it.
type Computation interface {
	ID() loopnest.CompID
	NbIterators() int
	Expr() *expr.Expr
	Store() *expr.Expr
	Registry() loopnest.BufferRegistry
}

// Accesses is the ordered list of access matrices found in one computation
type Accesses struct {
	Comp        loopnest.CompID
	NbIterators int
	List        []AccessMatrix

	registry loopnest.BufferRegistry
}

// New returns an empty collector bound to comp
func New(comp Computation) *Accesses {
	return &Accesses{
		Comp:        comp.ID(),
		NbIterators: comp.NbIterators(),
		registry:    comp.Registry(),
	}
}

// NewAccesses collects every access of comp: its write target first, when
// it has one, then the reads of its expression in left-to-right order
func NewAccesses(comp Computation) (*Accesses, error) {
	a := New(comp)
	if store := comp.Store(); store != nil {
		m, err := a.build(store)
		if err != nil {
			return nil, err
		}
		m.IsWrite = true
		a.List = append(a.List, *m)
	}
	if err := a.CreateAccesses(comp.Expr()); err != nil {
		return nil, err
	}
	return a, nil
}

// CreateAccesses walks e and appends one AccessMatrix per access node, in
// pre-order left to right. Identical accesses are not merged. On error the
// list is left as it was before the call.
func (a *Accesses) CreateAccesses(e *expr.Expr) error {
	found, err := a.collect(e, nil)
	if err != nil {
		return err
	}
	a.List = append(a.List, found...)
	return nil
}

func (a *Accesses) collect(e *expr.Expr, found []AccessMatrix) ([]AccessMatrix, error) {
	if e == nil {
		return found, nil
	}
	if e.IsAccess() {
		// Indices are affine once build succeeds, so they hold no further
		// accesses to visit.
		m, err := a.build(e)
		if err != nil {
			return nil, err
		}
		return append(found, *m), nil
	}
	var err error
	for _, op := range e.Operands {
		if found, err = a.collect(op, found); err != nil {
			return nil, err
		}
	}
	return found, nil
}

func (a *Accesses) build(e *expr.Expr) (*AccessMatrix, error) {
	m, err := NewAccessMatrixFromExpr(a.NbIterators, e, a.Comp)
	if err != nil {
		return nil, errors.WithMessagef(err, "computation %d", a.Comp)
	}
	if err = m.SetBufferID(a.registry); err != nil {
		return nil, errors.WithMessagef(err, "computation %d", a.Comp)
	}
	logrus.WithFields(logrus.Fields{
		"comp":   a.Comp,
		"buffer": m.BufferName,
		"id":     m.BufferID,
		"dims":   m.NbDims,
	}).Debug("collected access")
	return m, nil
}

// Len returns the number of collected accesses
func (a *Accesses) Len() int {
	return len(a.List)
}

// Write returns the write access, if the computation has a store
func (a *Accesses) Write() (*AccessMatrix, bool) {
	for i := range a.List {
		if a.List[i].IsWrite {
			return &a.List[i], true
		}
	}
	return nil, false
}

// Reads returns the read accesses in collection order
func (a *Accesses) Reads() []AccessMatrix {
	reads := make([]AccessMatrix, 0, len(a.List))
	for _, m := range a.List {
		if !m.IsWrite {
			reads = append(reads, m)
		}
	}
	return reads
}

// ByBuffer returns the accesses to the given buffer id in collection order
func (a *Accesses) ByBuffer(id int) []AccessMatrix {
	var out []AccessMatrix
	for _, m := range a.List {
		if m.BufferID == id {
			out = append(out, m)
		}
	}
	return out
}
