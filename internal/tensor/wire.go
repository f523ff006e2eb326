// internal/tensor/wire.go
package tensor

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/x448/float16"
)

// Encode serializes the tensor values as little-endian elements of the
// declared dtype.
func (t *Tensor) Encode() []byte {
	size := t.dtype.Size()
	buf := make([]byte, len(t.data)*size)
	for i, v := range t.data {
		off := i * size
		switch t.dtype {
		case Float16:
			binary.LittleEndian.PutUint16(buf[off:], float16.Fromfloat32(float32(v)).Bits())
		case BFloat16:
			binary.LittleEndian.PutUint16(buf[off:], bfloat16Bits(float32(v)))
		case Float32:
			binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(float32(v)))
		case Float64:
			binary.LittleEndian.PutUint64(buf[off:], math.Float64bits(v))
		}
	}
	return buf
}

// Decode builds a tensor from its wire form. The payload length is checked
// against the shape before anything is allocated.
func Decode(shape Shape, dtype DType, raw []byte) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if !dtype.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrDType, dtype)
	}
	size := dtype.Size()
	elements := shape.Elements()
	if elements > math.MaxInt/size || len(raw) != elements*size {
		return nil, fmt.Errorf("%w: %d bytes for shape %v of %s",
			ErrShape, len(raw), shape, dtype)
	}
	t, err := New(shape, dtype)
	if err != nil {
		return nil, err
	}
	for i := range t.data {
		off := i * size
		switch dtype {
		case Float16:
			t.data[i] = float64(float16.Frombits(binary.LittleEndian.Uint16(raw[off:])).Float32())
		case BFloat16:
			t.data[i] = float64(math.Float32frombits(uint32(binary.LittleEndian.Uint16(raw[off:])) << 16))
		case Float32:
			t.data[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(raw[off:])))
		case Float64:
			t.data[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[off:]))
		}
	}
	return t, nil
}
