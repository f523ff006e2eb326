// internal/enhance/attention.go
package enhance

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/SyedDaiam9101/conditioning-service/internal/tensor"
)

// selfAttention is an ephemeral multi-head attention module. Projection
// biases are zero and therefore not stored.
type selfAttention struct {
	channels int
	heads    int
	// in is the packed query/key/value projection, [3*channels, channels].
	in *mat.Dense
	// out is the output projection, [channels, channels].
	out *mat.Dense
}

// newSelfAttention draws the attention weights from gen: Xavier-uniform for
// the packed input projection, U(-1/sqrt(C), 1/sqrt(C)) for the output
// projection.
func newSelfAttention(channels, heads int, gen *generator) (*selfAttention, error) {
	if channels%heads != 0 {
		return nil, fmt.Errorf("%w: %d channels, %d heads", ErrHeadCount, channels, heads)
	}
	in := make([]float64, 3*channels*channels)
	gen.fillUniform(in, math.Sqrt(6/float64(channels+3*channels)))
	out := make([]float64, channels*channels)
	gen.fillUniform(out, 1/math.Sqrt(float64(channels)))

	return &selfAttention{
		channels: channels,
		heads:    heads,
		in:       mat.NewDense(3*channels, channels, in),
		out:      mat.NewDense(channels, channels, out),
	}, nil
}

// forward runs full (unmasked) self-attention over the sequence axis of
// every batch element, using x as query, key and value.
func (a *selfAttention) forward(x *tensor.Tensor) *tensor.Tensor {
	shape := x.Shape()
	seq, c := shape.Seq(), a.channels
	headDim := c / a.heads
	scale := 1 / math.Sqrt(float64(headDim))

	wq := a.in.Slice(0, c, 0, c)
	wk := a.in.Slice(c, 2*c, 0, c)
	wv := a.in.Slice(2*c, 3*c, 0, c)

	result := tensor.Like(x)
	var q, k, v, scores mat.Dense
	concat := mat.NewDense(seq, c, nil)

	for b := 0; b < shape.Batch(); b++ {
		xb := mat.NewDense(seq, c, x.Data()[b*seq*c:(b+1)*seq*c])
		q.Reset()
		k.Reset()
		v.Reset()
		q.Mul(xb, wq.T())
		k.Mul(xb, wk.T())
		v.Mul(xb, wv.T())

		for h := 0; h < a.heads; h++ {
			lo, hi := h*headDim, (h+1)*headDim
			qh := q.Slice(0, seq, lo, hi)
			kh := k.Slice(0, seq, lo, hi)
			vh := v.Slice(0, seq, lo, hi)

			scores.Reset()
			scores.Mul(qh, kh.T())
			scores.Scale(scale, &scores)
			for r := 0; r < seq; r++ {
				softmax(scores.RawRowView(r))
			}
			concat.Slice(0, seq, lo, hi).(*mat.Dense).Mul(&scores, vh)
		}

		dst := mat.NewDense(seq, c, result.Data()[b*seq*c:(b+1)*seq*c])
		dst.Mul(concat, a.out.T())
	}
	return result
}

// Attend adds a scaled self-attention residual to t using freshly drawn
// weights: t + strength * attn(t, t, t).
func Attend(t *tensor.Tensor, strength float64, gen *generator) (*tensor.Tensor, error) {
	a, err := newSelfAttention(t.Shape().Channels(), AttentionHeads, gen)
	if err != nil {
		return nil, err
	}
	out := a.forward(t)
	floats.Scale(strength, out.Data())
	floats.Add(out.Data(), t.Data())
	return out, nil
}

// softmax normalizes row in place.
func softmax(row []float64) {
	m := floats.Max(row)
	var sum float64
	for i, v := range row {
		e := math.Exp(v - m)
		row[i] = e
		sum += e
	}
	floats.Scale(1/sum, row)
}
