// internal/enhance/composite.go
package enhance

import (
	"gonum.org/v1/gonum/floats"

	"github.com/SyedDaiam9101/conditioning-service/internal/tensor"
)

// Composite blends refined back toward emb in two steps:
//
//	blended = emb + (strength*residualScale) * (refined - emb)
//	blended = blended*(1 - preserve) + emb*preserve
//
// With strength 0 the first step yields emb exactly; with preserve 1 the
// second step does.
func Composite(emb, refined *tensor.Tensor, strength, residualScale, preserve float64) *tensor.Tensor {
	out := tensor.Like(emb)
	dst, e := out.Data(), emb.Data()

	floats.SubTo(dst, refined.Data(), e)
	floats.Scale(strength*residualScale, dst)
	floats.Add(dst, e)

	if preserve != 0 {
		floats.Scale(1-preserve, dst)
		floats.AddScaled(dst, preserve, e)
	}
	return out
}
