package enhance

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SyedDaiam9101/conditioning-service/internal/tensor"
)

func mustTensor(t *testing.T, shape tensor.Shape, dtype tensor.DType, values []float64) *tensor.Tensor {
	t.Helper()
	ten, err := tensor.FromValues(shape, dtype, values)
	require.NoError(t, err)
	return ten
}

// ramp returns deterministic, non-constant test values.
func ramp(n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = math.Sin(float64(i)*0.37) + 0.01*float64(i%7)
	}
	return v
}

func TestNormalize_StandardizesRows(t *testing.T) {
	in := mustTensor(t, tensor.Shape{1, 2, 4}, tensor.Float64, []float64{1, 2, 3, 4, 10, 10, 10, 10})
	out := Normalize(in, true)

	std := math.Sqrt(5.0 / 3.0)
	want := []float64{-1.5 / (std + 1e-6), -0.5 / (std + 1e-6), 0.5 / (std + 1e-6), 1.5 / (std + 1e-6)}
	assert.InDeltaSlice(t, want, out.Row(0), 1e-12)
	// constant row: zero numerator, epsilon keeps the denominator non-zero
	assert.Equal(t, []float64{0, 0, 0, 0}, out.Row(1))
	assert.Equal(t, 1.0, in.Data()[0], "input must not be modified")
}

func TestNormalize_Disabled(t *testing.T) {
	in := mustTensor(t, tensor.Shape{1, 1, 2}, tensor.Float32, []float64{1, 2})
	assert.Same(t, in, Normalize(in, false))
}

func TestNormalize_SingleChannel(t *testing.T) {
	in := mustTensor(t, tensor.Shape{1, 3, 1}, tensor.Float32, []float64{5, -2, 0})
	out := Normalize(in, true)
	assert.True(t, out.AllFinite())
	assert.Equal(t, []float64{0, 0, 0}, out.Data())
}

func TestNormalize_AllZeroLargeChannels(t *testing.T) {
	in, err := tensor.New(tensor.Shape{1, 4, 2560}, tensor.Float16)
	require.NoError(t, err)
	out := Normalize(in, true)
	assert.True(t, out.AllFinite())
}

func TestProject_DeterministicPerSeed(t *testing.T) {
	in := mustTensor(t, tensor.Shape{2, 3, 8}, tensor.Float32, ramp(48))

	a, err := Project(in, 2, newGenerator(7))
	require.NoError(t, err)
	b, err := Project(in, 2, newGenerator(7))
	require.NoError(t, err)
	c, err := Project(in, 2, newGenerator(8))
	require.NoError(t, err)

	assert.Equal(t, in.Shape(), a.Shape())
	assert.Equal(t, a.Data(), b.Data())
	assert.NotEqual(t, a.Data(), c.Data())
}

func TestProject_DrawsOnlyReachableRows(t *testing.T) {
	in := mustTensor(t, tensor.Shape{1, 1, 4}, tensor.Float32, ramp(4))

	gen := newGenerator(3)
	_, err := Project(in, 3, gen)
	require.NoError(t, err)

	ref := newGenerator(3)
	ref.fillUniform(make([]float64, 4*4), 1)
	assert.Equal(t, ref.r.Float64(), gen.r.Float64())
}

func TestGenerator_SplitAdvancesParentByTwo(t *testing.T) {
	parent := newGenerator(11)
	child := parent.split()
	child.fillUniform(make([]float64, 1000), 1)

	ref := newGenerator(11)
	ref.r.Uint64()
	ref.r.Uint64()
	assert.Equal(t, ref.r.Uint64(), parent.r.Uint64())

	a, b := newGenerator(11).split(), newGenerator(11).split()
	assert.Equal(t, a.r.Float64(), b.r.Float64())
}

func TestProject_HiddenWidthOverflow(t *testing.T) {
	_, err := newProjector(math.MaxInt/2+1, 4, newGenerator(0))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrHiddenWidth))
}

func TestGELU(t *testing.T) {
	assert.Equal(t, 0.0, gelu(0))
	assert.InDelta(t, 0.8413447, gelu(1), 1e-6)
	assert.InDelta(t, -0.1586553, gelu(-1), 1e-6)
}

func TestModulateDetail(t *testing.T) {
	emb := mustTensor(t, tensor.Shape{1, 1, 3}, tensor.Float64, []float64{0, 1, -1})
	refined := mustTensor(t, tensor.Shape{1, 1, 3}, tensor.Float64, []float64{100, 1, -50})

	assert.Same(t, refined, ModulateDetail(refined, emb, 1.0))
	assert.Same(t, refined, ModulateDetail(refined, emb, 0.5))

	out := ModulateDetail(refined, emb, 3.0)
	for i, v := range out.Data() {
		assert.LessOrEqual(t, math.Abs(v-emb.Data()[i]), 1.0, "delta must saturate")
	}
	assert.Equal(t, 1.0, out.Data()[1], "zero delta stays zero")
	assert.InDelta(t, math.Tanh(200), out.Data()[0], 1e-12)
}

func TestEmphasizeHighFrequency(t *testing.T) {
	in := mustTensor(t, tensor.Shape{1, 3, 1}, tensor.Float64, []float64{3, 3, 3})
	out := EmphasizeHighFrequency(in, true)
	// zero padding pulls the edge averages down to 2
	assert.InDeltaSlice(t, []float64{3.4, 3, 3.4}, out.Data(), 1e-12)

	assert.Same(t, in, EmphasizeHighFrequency(in, false))
}

func TestEmphasizeHighFrequency_BatchesIndependent(t *testing.T) {
	in := mustTensor(t, tensor.Shape{2, 2, 1}, tensor.Float64, []float64{0, 0, 9, 9})
	out := EmphasizeHighFrequency(in, true)
	// first batch is all zero and must not see the second batch's values
	assert.Equal(t, []float64{0, 0}, out.Data()[:2])
	assert.InDeltaSlice(t, []float64{10.2, 10.2}, out.Data()[2:], 1e-12)
}

func TestComposite(t *testing.T) {
	emb := mustTensor(t, tensor.Shape{1, 1, 3}, tensor.Float64, []float64{1, 2, 3})
	refined := mustTensor(t, tensor.Shape{1, 1, 3}, tensor.Float64, []float64{3, 2, -1})

	assert.Equal(t, emb.Data(), Composite(emb, refined, 0, 1, 0).Data())
	assert.Equal(t, emb.Data(), Composite(emb, refined, 1.7, 0.5, 1).Data())
	assert.InDeltaSlice(t, []float64{2, 2, 1}, Composite(emb, refined, 1, 0.5, 0).Data(), 1e-12)
	assert.InDeltaSlice(t, []float64{1.5, 2, 2}, Composite(emb, refined, 1, 0.5, 0.5).Data(), 1e-12)
	// negative strength inverts the refinement direction
	assert.InDeltaSlice(t, []float64{-1, 2, 7}, Composite(emb, refined, -1, 1, 0).Data(), 1e-12)
}

func TestResidualScale(t *testing.T) {
	scale := ResidualScale(8)
	assert.InDelta(t, 1/1.4, scale, 1e-12)
	assert.InDelta(t, 0.0357, 0.05*scale, 1e-4)
	assert.InDelta(t, 1/1.05, ResidualScale(1), 1e-15)
}

func TestAttend_HeadCount(t *testing.T) {
	in := mustTensor(t, tensor.Shape{1, 2, 12}, tensor.Float32, ramp(24))
	_, err := Attend(in, 0.3, newGenerator(1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrHeadCount))
}

func TestAttend_ShapeAndResidual(t *testing.T) {
	in := mustTensor(t, tensor.Shape{2, 5, 16}, tensor.Float32, ramp(160))

	out, err := Attend(in, 0.3, newGenerator(1))
	require.NoError(t, err)
	assert.Equal(t, in.Shape(), out.Shape())
	assert.True(t, out.AllFinite())
	assert.NotEqual(t, in.Data(), out.Data())

	zero, err := Attend(in, 0, newGenerator(1))
	require.NoError(t, err)
	assert.Equal(t, in.Data(), zero.Data())
}

func TestAttend_BatchesIndependent(t *testing.T) {
	vals := ramp(2 * 3 * 8)
	both := mustTensor(t, tensor.Shape{2, 3, 8}, tensor.Float64, vals)
	first := mustTensor(t, tensor.Shape{1, 3, 8}, tensor.Float64, vals[:24])

	a, err := Attend(both, 1, newGenerator(5))
	require.NoError(t, err)
	b, err := Attend(first, 1, newGenerator(5))
	require.NoError(t, err)
	assert.InDeltaSlice(t, b.Data(), a.Data()[:24], 1e-12)
}

func TestSoftmax(t *testing.T) {
	row := []float64{1000, 1000, 1000, 1000}
	softmax(row)
	assert.InDeltaSlice(t, []float64{.25, .25, .25, .25}, row, 1e-12)
}
