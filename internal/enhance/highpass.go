// internal/enhance/highpass.go
package enhance

import (
	"gonum.org/v1/gonum/floats"

	"github.com/SyedDaiam9101/conditioning-service/internal/tensor"
)

// EmphasizeHighFrequency sharpens t along the sequence axis:
//
//	t' = t + 0.4 * (t - avg3(t))
//
// avg3 is a centered 3-tap mean with zero padding at both ends and a fixed
// divisor of 3, so the sequence length is preserved. A disabled filter
// returns t itself.
func EmphasizeHighFrequency(t *tensor.Tensor, enabled bool) *tensor.Tensor {
	if !enabled {
		return t
	}
	shape := t.Shape()
	seq := shape.Seq()
	out := tensor.Like(t)
	avg := make([]float64, shape.Channels())

	for b := 0; b < shape.Batch(); b++ {
		for s := 0; s < seq; s++ {
			i := b*seq + s
			cur := t.Row(i)

			copy(avg, cur)
			if s > 0 {
				floats.Add(avg, t.Row(i-1))
			}
			if s < seq-1 {
				floats.Add(avg, t.Row(i+1))
			}
			floats.Scale(1.0/3.0, avg)

			dst := out.Row(i)
			floats.SubTo(dst, cur, avg)
			floats.Scale(highPassGain, dst)
			floats.Add(dst, cur)
		}
	}
	return out
}
