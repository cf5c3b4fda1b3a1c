// File: loopnest/function.go

package loopnest

import (
	"github.com/notargets/DGSched/expr"
	"github.com/pkg/errors"
)

// BufferRegistry resolves buffer names to stable integer ids
type BufferRegistry interface {
	BufferID(name string) (int, bool)
}

// CompID is a handle to a computation inside its Function
type CompID int

// NoComp is the zero handle, not bound to any computation
const NoComp CompID = -1

// Function owns the buffers and the computations of one kernel. Buffers
// and computations must all be declared before analysis starts; lookups
// are not synchronised against concurrent declarations.
type Function struct {
	Name string

	buffers  []BufferSpec
	bufferID map[string]int
	comps    []*Computation
}

// NewFunction creates an empty function
func NewFunction(name string) *Function {
	return &Function{
		Name:     name,
		bufferID: make(map[string]int),
	}
}

// AddBuffers declares buffers. Ids are assigned in declaration order.
func (f *Function) AddBuffers(builders ...*BufferBuilder) error {
	for _, b := range builders {
		if b == nil {
			continue
		}
		spec := b.Spec
		if err := spec.Validate(); err != nil {
			return err
		}
		if _, exists := f.bufferID[spec.Name]; exists {
			return errors.Wrapf(ErrBadBuffer, "buffer %s already declared in %s", spec.Name, f.Name)
		}
		spec.Extents = append([]int(nil), spec.Extents...)
		f.bufferID[spec.Name] = len(f.buffers)
		f.buffers = append(f.buffers, spec)
	}
	return nil
}

// BufferID returns the id assigned to name
func (f *Function) BufferID(name string) (int, bool) {
	id, ok := f.bufferID[name]
	return id, ok
}

// Buffer returns the declaration for id, or nil
func (f *Function) Buffer(id int) *BufferSpec {
	if id < 0 || id >= len(f.buffers) {
		return nil
	}
	return &f.buffers[id]
}

// BufferByName returns the declaration for name, or nil
func (f *Function) BufferByName(name string) *BufferSpec {
	id, ok := f.bufferID[name]
	if !ok {
		return nil
	}
	return &f.buffers[id]
}

// NumBuffers returns how many buffers are declared
func (f *Function) NumBuffers() int {
	return len(f.buffers)
}

// ComputationSpec describes a computation to add to a Function
type ComputationSpec struct {
	Name      string
	Iterators []IteratorDomain // outermost loop first
	Store     *expr.Expr       // write target, an Access node; nil if none
	Expr      *expr.Expr       // value computed at every iteration
}

// Computation is one statement nested in a loop nest
type Computation struct {
	id        CompID
	name      string
	iterators []IteratorDomain
	store     *expr.Expr
	expr      *expr.Expr
	fn        *Function
}

// AddComputation validates spec and stores it, returning its handle
func (f *Function) AddComputation(spec ComputationSpec) (CompID, error) {
	if spec.Name == "" {
		return NoComp, errors.Wrap(ErrBadComputation, "computation name cannot be empty")
	}
	if spec.Expr == nil {
		return NoComp, errors.Wrapf(ErrBadComputation, "computation %s has no expression", spec.Name)
	}
	for i, d := range spec.Iterators {
		if d.LowBound > d.UpBound {
			return NoComp, errors.Wrapf(ErrBadDomain, "computation %s iterator %d: [%d, %d)",
				spec.Name, i, d.LowBound, d.UpBound)
		}
	}
	if err := spec.Expr.Validate(); err != nil {
		return NoComp, errors.Wrapf(ErrBadComputation, "computation %s: %v", spec.Name, err)
	}
	if spec.Store != nil {
		if !spec.Store.IsAccess() {
			return NoComp, errors.Wrapf(ErrBadComputation, "computation %s store is %s, not an access",
				spec.Name, spec.Store.Kind)
		}
		if err := spec.Store.Validate(); err != nil {
			return NoComp, errors.Wrapf(ErrBadComputation, "computation %s store: %v", spec.Name, err)
		}
	}

	id := CompID(len(f.comps))
	f.comps = append(f.comps, &Computation{
		id:        id,
		name:      spec.Name,
		iterators: append([]IteratorDomain(nil), spec.Iterators...),
		store:     spec.Store,
		expr:      spec.Expr,
		fn:        f,
	})
	return id, nil
}

// Computation resolves a handle
func (f *Function) Computation(id CompID) (*Computation, error) {
	if id < 0 || int(id) >= len(f.comps) {
		return nil, errors.Wrapf(ErrBadComputation, "no computation %d in %s", id, f.Name)
	}
	return f.comps[id], nil
}

// Computations returns every computation in declaration order
func (f *Function) Computations() []*Computation {
	return append([]*Computation(nil), f.comps...)
}

func (c *Computation) ID() CompID                  { return c.id }
func (c *Computation) Name() string                { return c.name }
func (c *Computation) NbIterators() int            { return len(c.iterators) }
func (c *Computation) Iterators() []IteratorDomain { return c.iterators }
func (c *Computation) Expr() *expr.Expr            { return c.expr }
func (c *Computation) Store() *expr.Expr           { return c.store }
func (c *Computation) Function() *Function         { return c.fn }

// Registry is the buffer registry of the owning function
func (c *Computation) Registry() BufferRegistry { return c.fn }

// IsReduction reports whether the computation reads its own write buffer
func (c *Computation) IsReduction() bool {
	if c.store == nil {
		return false
	}
	found := false
	expr.Walk(c.expr, func(n *expr.Expr) bool {
		if n.IsAccess() && n.Name == c.store.Name {
			found = true
		}
		return !found
	})
	return found
}
