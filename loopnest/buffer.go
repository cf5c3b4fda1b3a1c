package loopnest

import (
	"reflect"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Direction indicates how a computation uses a buffer
type Direction int

const (
	DirectionInput Direction = iota
	DirectionOutput
	DirectionInOut
	DirectionTemp
)

func (d Direction) String() string {
	switch d {
	case DirectionInput:
		return "input"
	case DirectionOutput:
		return "output"
	case DirectionInOut:
		return "inout"
	case DirectionTemp:
		return "temp"
	default:
		return "unknown"
	}
}

// BufferBuilder provides a fluent interface for declaring buffers
type BufferBuilder struct {
	Spec BufferSpec
}

// BufferSpec holds the complete declaration of a buffer
type BufferSpec struct {
	Name      string
	Direction Direction
	DataType  DataType
	Extents   []int // one per dimension, outermost first
}

// Rank is the number of dimensions
func (b *BufferSpec) Rank() int {
	return len(b.Extents)
}

// NumElements is the product of the extents
func (b *BufferSpec) NumElements() int64 {
	n := int64(1)
	for _, e := range b.Extents {
		n *= int64(e)
	}
	return n
}

// Footprint is the size of the buffer in bytes
func (b *BufferSpec) Footprint() int64 {
	return b.NumElements() * SizeOfType(b.EffectiveType())
}

// Input declares a buffer only read by computations
func Input(name string) *BufferBuilder {
	return &BufferBuilder{Spec: BufferSpec{Name: name, Direction: DirectionInput}}
}

// Output declares a buffer written by a computation
func Output(name string) *BufferBuilder {
	return &BufferBuilder{Spec: BufferSpec{Name: name, Direction: DirectionOutput}}
}

// InOut declares a buffer both read and written, e.g. a reduction accumulator
func InOut(name string) *BufferBuilder {
	return &BufferBuilder{Spec: BufferSpec{Name: name, Direction: DirectionInOut}}
}

// Temp declares an intermediate buffer local to the function
func Temp(name string) *BufferBuilder {
	return &BufferBuilder{Spec: BufferSpec{Name: name, Direction: DirectionTemp}}
}

// Dims sets the extent of every dimension, outermost first
func (b *BufferBuilder) Dims(extents ...int) *BufferBuilder {
	b.Spec.Extents = append([]int(nil), extents...)
	return b
}

// Type sets the element type
func (b *BufferBuilder) Type(dt DataType) *BufferBuilder {
	b.Spec.DataType = dt
	return b
}

// Like infers type and shape from a sample host value: a slice gives a
// rank 1 buffer, a mat.Matrix a rank 2 buffer
func (b *BufferBuilder) Like(sample interface{}) *BufferBuilder {
	if sample == nil {
		return b
	}

	if m, ok := sample.(mat.Matrix); ok {
		rows, cols := m.Dims()
		b.Spec.Extents = []int{rows, cols}
		b.Spec.DataType = Float64 // gonum matrices are float64
		return b
	}

	v := reflect.ValueOf(sample)
	if v.Kind() != reflect.Slice {
		return b
	}
	b.Spec.Extents = []int{v.Len()}
	switch v.Type().Elem().Kind() {
	case reflect.Float32:
		b.Spec.DataType = Float32
	case reflect.Float64:
		b.Spec.DataType = Float64
	case reflect.Int32:
		b.Spec.DataType = INT32
	case reflect.Int64, reflect.Int:
		b.Spec.DataType = INT64
	}
	return b
}

// Validate checks if the buffer declaration is complete
func (b *BufferSpec) Validate() error {
	if b.Name == "" {
		return errors.Wrap(ErrBadBuffer, "buffer name cannot be empty")
	}
	if len(b.Extents) == 0 {
		return errors.Wrapf(ErrBadBuffer, "buffer %s needs dims", b.Name)
	}
	for i, e := range b.Extents {
		if e <= 0 {
			return errors.Wrapf(ErrBadBuffer, "buffer %s dim %d has extent %d", b.Name, i, e)
		}
	}
	return nil
}

// IsConst returns whether computations may only read this buffer
func (b *BufferSpec) IsConst() bool {
	return b.Direction == DirectionInput
}

// EffectiveType returns the element type, defaulting to Float64
func (b *BufferSpec) EffectiveType() DataType {
	if b.DataType == 0 {
		return Float64
	}
	return b.DataType
}
