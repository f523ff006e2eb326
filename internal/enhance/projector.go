// internal/enhance/projector.go
package enhance

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/SyedDaiam9101/conditioning-service/internal/tensor"
)

// projector is the ephemeral two-layer pointwise map
// channels -> channels*hiddenMult -> channels with GELU in between.
//
// The first layer is Kaiming-uniform (ReLU gain) with zero bias. The second
// layer is identity-like: weight[j][j] = 1 for j < min(out, in), zero
// elsewhere, zero bias. Hidden units outside that diagonal band have no
// outgoing weight, so only the band's first-layer rows are drawn.
type projector struct {
	channels int
	hidden   int
	// w1 holds the first-layer rows that reach the output, [band, channels].
	w1 *mat.Dense
}

// newProjector draws the projector weights from gen.
func newProjector(channels, hiddenMult int, gen *generator) (*projector, error) {
	if hiddenMult < 1 || channels > math.MaxInt/hiddenMult {
		return nil, fmt.Errorf("%w: %d channels x %d", ErrHiddenWidth, channels, hiddenMult)
	}
	hidden := channels * hiddenMult
	band := min(channels, hidden)

	// kaiming_uniform, fan_in mode, gain sqrt(2): bound = gain*sqrt(3/fan_in)
	bound := math.Sqrt2 * math.Sqrt(3/float64(channels))
	w := make([]float64, band*channels)
	gen.fillUniform(w, bound)

	return &projector{
		channels: channels,
		hidden:   hidden,
		w1:       mat.NewDense(band, channels, w),
	}, nil
}

// forward applies the projector to every row of x.
func (p *projector) forward(x *tensor.Tensor) *tensor.Tensor {
	rows := x.Rows()
	band, _ := p.w1.Dims()

	in := mat.NewDense(rows, p.channels, x.Data())
	var h mat.Dense
	h.Mul(in, p.w1.T())

	out := tensor.Like(x)
	dst := out.Data()
	for r := 0; r < rows; r++ {
		for j := 0; j < band; j++ {
			dst[r*p.channels+j] = gelu(h.At(r, j))
		}
	}
	return out
}

// Project runs a freshly initialized projector over t and discards it.
func Project(t *tensor.Tensor, hiddenMult int, gen *generator) (*tensor.Tensor, error) {
	p, err := newProjector(t.Shape().Channels(), hiddenMult, gen)
	if err != nil {
		return nil, err
	}
	return p.forward(t), nil
}

// gelu is the exact (erf) Gaussian error linear unit.
func gelu(x float64) float64 {
	return 0.5 * x * (1 + math.Erf(x/math.Sqrt2))
}
