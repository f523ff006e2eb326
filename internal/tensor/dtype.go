// internal/tensor/dtype.go
package tensor

import (
	"fmt"
	"math"
	"strings"

	"github.com/x448/float16"
)

// DType is the declared element precision of a tensor.
type DType uint8

const (
	Float32 DType = iota
	Float16
	BFloat16
	Float64
)

var dtypeNames = map[DType]string{
	Float32:  "float32",
	Float16:  "float16",
	BFloat16: "bfloat16",
	Float64:  "float64",
}

// String returns the canonical lower-case name of the dtype.
func (d DType) String() string {
	if name, ok := dtypeNames[d]; ok {
		return name
	}
	return fmt.Sprintf("dtype(%d)", uint8(d))
}

// Size returns the number of bytes one element occupies in wire form.
func (d DType) Size() int {
	switch d {
	case Float16, BFloat16:
		return 2
	case Float32:
		return 4
	case Float64:
		return 8
	}
	return 0
}

// Valid reports whether d is one of the known dtypes.
func (d DType) Valid() bool {
	_, ok := dtypeNames[d]
	return ok
}

// ParseDType parses a dtype name. Common aliases ("half", "fp16", "bf16",
// "float", "double") are accepted.
func ParseDType(s string) (DType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "float32", "fp32", "float", "f32":
		return Float32, nil
	case "float16", "fp16", "half", "f16":
		return Float16, nil
	case "bfloat16", "bf16":
		return BFloat16, nil
	case "float64", "fp64", "double", "f64":
		return Float64, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrDType, s)
}

// RoundValue rounds v to the nearest value representable in d.
func RoundValue(v float64, d DType) float64 {
	switch d {
	case Float16:
		return float64(float16.Fromfloat32(float32(v)).Float32())
	case BFloat16:
		return float64(math.Float32frombits(uint32(bfloat16Bits(float32(v))) << 16))
	case Float32:
		return float64(float32(v))
	}
	return v
}

// bfloat16Bits converts f to bfloat16 with round-to-nearest-even and
// returns the 16 significant bits.
func bfloat16Bits(f float32) uint16 {
	bits := math.Float32bits(f)
	if math.IsNaN(float64(f)) {
		// keep NaN quiet and non-zero in the truncated mantissa
		return uint16(bits>>16) | 0x0040
	}
	bits += 0x7fff + ((bits >> 16) & 1)
	return uint16(bits >> 16)
}
