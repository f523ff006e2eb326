// Package tensor holds the rank-3 conditioning tensors the enhancement
// pipeline operates on: [batch, sequence, channel] with a declared element
// precision. Values are kept in float64 working form; the declared dtype is
// enforced by rounding on construction and on every cast.
package tensor

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrShape is returned for tensors that are not rank-3 with positive
	// dimensions, or whose data length does not match the shape.
	ErrShape = errors.New("invalid tensor shape")
	// ErrDType is returned for unknown element precisions.
	ErrDType = errors.New("unknown dtype")
)

// Shape is [batch, sequence, channel].
type Shape [3]int

// Batch returns the batch dimension.
func (s Shape) Batch() int { return s[0] }

// Seq returns the sequence dimension.
func (s Shape) Seq() int { return s[1] }

// Channels returns the channel dimension.
func (s Shape) Channels() int { return s[2] }

// Elements returns the total element count.
func (s Shape) Elements() int { return s[0] * s[1] * s[2] }

// Validate checks all dimensions are positive and the element count fits in
// an int.
func (s Shape) Validate() error {
	for i, d := range s {
		if d <= 0 {
			return fmt.Errorf("%w: dimension %d is %d", ErrShape, i, d)
		}
	}
	if s[0] > math.MaxInt/s[1] || s[0]*s[1] > math.MaxInt/s[2] {
		return fmt.Errorf("%w: %v overflows element count", ErrShape, s)
	}
	return nil
}

func (s Shape) String() string {
	return fmt.Sprintf("[%d, %d, %d]", s[0], s[1], s[2])
}

// Tensor is an immutable-by-convention rank-3 array. Pipeline stages never
// write into a tensor they did not allocate.
type Tensor struct {
	shape Shape
	dtype DType
	data  []float64
}

// New allocates a zero tensor.
func New(shape Shape, dtype DType) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if !dtype.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrDType, dtype)
	}
	return &Tensor{shape: shape, dtype: dtype, data: make([]float64, shape.Elements())}, nil
}

// FromValues builds a tensor from row-major values. Values are copied and
// rounded to dtype.
func FromValues(shape Shape, dtype DType, values []float64) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if len(values) != shape.Elements() {
		return nil, fmt.Errorf("%w: %d values for shape %v", ErrShape, len(values), shape)
	}
	t, err := New(shape, dtype)
	if err != nil {
		return nil, err
	}
	for i, v := range values {
		t.data[i] = RoundValue(v, dtype)
	}
	return t, nil
}

// Like returns a zero tensor with the shape and dtype of t.
func Like(t *Tensor) *Tensor {
	return &Tensor{shape: t.shape, dtype: t.dtype, data: make([]float64, len(t.data))}
}

// Shape returns the tensor shape.
func (t *Tensor) Shape() Shape { return t.shape }

// DType returns the declared element precision.
func (t *Tensor) DType() DType { return t.dtype }

// Data exposes the backing row-major slice. Callers that did not allocate
// the tensor must treat it as read-only.
func (t *Tensor) Data() []float64 { return t.data }

// Rows returns batch*sequence, the number of channel vectors.
func (t *Tensor) Rows() int { return t.shape[0] * t.shape[1] }

// Row returns the channel vector at flat row index i.
func (t *Tensor) Row(i int) []float64 {
	c := t.shape[2]
	return t.data[i*c : (i+1)*c : (i+1)*c]
}

// At returns the element at (b, s, c).
func (t *Tensor) At(b, s, c int) float64 {
	return t.data[(b*t.shape[1]+s)*t.shape[2]+c]
}

// Clone returns a deep copy.
func (t *Tensor) Clone() *Tensor {
	out := Like(t)
	copy(out.data, t.data)
	return out
}

// Round returns a copy whose values are rounded to the precision of dtype.
// The declared dtype of the copy is unchanged.
func (t *Tensor) Round(dtype DType) *Tensor {
	out := Like(t)
	for i, v := range t.data {
		out.data[i] = RoundValue(v, dtype)
	}
	return out
}

// WithDType casts t to dtype: values are rounded and the copy is labelled
// with the new dtype.
func (t *Tensor) WithDType(dtype DType) *Tensor {
	out := t.Round(dtype)
	out.dtype = dtype
	return out
}

// AllFinite reports whether every element is neither NaN nor infinite.
func (t *Tensor) AllFinite() bool {
	for _, v := range t.data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
