package tensor

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RejectsBadShapes(t *testing.T) {
	for _, shape := range []Shape{{0, 4, 8}, {1, -1, 8}, {1, 4, 0}} {
		_, err := New(shape, Float32)
		require.Error(t, err, "shape %v", shape)
		assert.True(t, errors.Is(err, ErrShape))
	}
}

func TestNew_RejectsUnknownDType(t *testing.T) {
	_, err := New(Shape{1, 1, 1}, DType(42))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDType))
}

func TestFromValues_LengthMismatch(t *testing.T) {
	_, err := FromValues(Shape{1, 2, 2}, Float32, []float64{1, 2, 3})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrShape))
}

func TestFromValues_RoundsToDType(t *testing.T) {
	// 1/3 is not representable in half precision
	ten, err := FromValues(Shape{1, 1, 1}, Float16, []float64{1.0 / 3.0})
	require.NoError(t, err)
	assert.NotEqual(t, 1.0/3.0, ten.Data()[0])
	assert.InDelta(t, 1.0/3.0, ten.Data()[0], 1e-3)
}

func TestRowAndAt(t *testing.T) {
	ten, err := FromValues(Shape{2, 2, 3}, Float64, []float64{
		0, 1, 2,
		3, 4, 5,
		6, 7, 8,
		9, 10, 11,
	})
	require.NoError(t, err)

	assert.Equal(t, 4, ten.Rows())
	assert.Equal(t, []float64{6, 7, 8}, ten.Row(2))
	assert.Equal(t, 10.0, ten.At(1, 1, 1))
}

func TestClone_IsIndependent(t *testing.T) {
	ten, err := FromValues(Shape{1, 1, 2}, Float32, []float64{1, 2})
	require.NoError(t, err)

	c := ten.Clone()
	c.Data()[0] = 99
	assert.Equal(t, 1.0, ten.Data()[0])
}

func TestWithDType_RelabelsAndRounds(t *testing.T) {
	ten, err := FromValues(Shape{1, 1, 2}, Float64, []float64{0.1, 1e-9})
	require.NoError(t, err)

	half := ten.WithDType(Float16)
	assert.Equal(t, Float16, half.DType())
	assert.Equal(t, Float64, ten.DType())
	assert.Equal(t, RoundValue(0.1, Float16), half.Data()[0])
	assert.Equal(t, 0.0, half.Data()[1], "values below half subnormal range flush to zero")
}

func TestRoundValue_BFloat16(t *testing.T) {
	assert.Equal(t, 1.0, RoundValue(1.0, BFloat16))
	// bfloat16 keeps 8 significant bits: 1 + 2^-9 rounds back to 1
	assert.Equal(t, 1.0, RoundValue(1.0+math.Pow(2, -9), BFloat16))
	assert.Equal(t, 1.0+math.Pow(2, -7), RoundValue(1.0+math.Pow(2, -7), BFloat16))
	assert.True(t, math.IsNaN(RoundValue(math.NaN(), BFloat16)))
	assert.Equal(t, -3.0, RoundValue(-3.0, BFloat16))
	assert.Equal(t, 65536.0, RoundValue(65535.0, BFloat16))
}

func TestParseDType(t *testing.T) {
	cases := map[string]DType{
		"float16": Float16, "half": Float16, "BF16": BFloat16,
		"float32": Float32, "double": Float64,
	}
	for in, want := range cases {
		got, err := ParseDType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseDType("int8")
	assert.True(t, errors.Is(err, ErrDType))
}

func TestEncodeDecode_PreservesValuesPerDType(t *testing.T) {
	values := []float64{-2.5, 0, 0.125, 3.75, 1024, -0.5}
	for _, dt := range []DType{Float16, BFloat16, Float32, Float64} {
		ten, err := FromValues(Shape{1, 2, 3}, dt, values)
		require.NoError(t, err)

		raw := ten.Encode()
		assert.Len(t, raw, 6*dt.Size(), dt.String())

		back, err := Decode(ten.Shape(), dt, raw)
		require.NoError(t, err, dt.String())
		assert.Equal(t, ten.Data(), back.Data(), dt.String())
	}
}

func TestDecode_WrongLength(t *testing.T) {
	_, err := Decode(Shape{1, 2, 2}, Float16, make([]byte, 7))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrShape))
}

func TestDecode_HugeShapeSmallPayload(t *testing.T) {
	shapes := []Shape{
		{1 << 20, 1 << 20, 64},
		{1 << 30, 1 << 30, 4},
		{1, 1 << 28, 1 << 30},
	}
	for _, shape := range shapes {
		for _, dt := range []DType{Float16, Float64} {
			_, err := Decode(shape, dt, make([]byte, 20))
			require.Error(t, err, shape.String())
			assert.True(t, errors.Is(err, ErrShape), err.Error())
		}
	}

	_, err := FromValues(Shape{1 << 20, 1 << 20, 64}, Float32, []float64{1})
	assert.True(t, errors.Is(err, ErrShape))
}

func TestDecode_UnknownDType(t *testing.T) {
	_, err := Decode(Shape{1, 1, 1}, DType(42), make([]byte, 4))
	assert.True(t, errors.Is(err, ErrDType))
}

func TestAllFinite(t *testing.T) {
	ten, err := FromValues(Shape{1, 1, 2}, Float64, []float64{1, 2})
	require.NoError(t, err)
	assert.True(t, ten.AllFinite())

	ten.Data()[1] = math.Inf(1)
	assert.False(t, ten.AllFinite())
}
