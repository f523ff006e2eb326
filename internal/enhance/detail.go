// internal/enhance/detail.go
package enhance

import (
	"math"

	"github.com/SyedDaiam9101/conditioning-service/internal/tensor"
)

// ModulateDetail reshapes the refinement delta through tanh so that large
// boosts saturate instead of diverging:
//
//	refined' = emb + tanh((refined - emb) * (boost - 1))
//
// For boost <= 1 the stage is the identity and returns refined itself.
func ModulateDetail(refined, emb *tensor.Tensor, boost float64) *tensor.Tensor {
	if boost <= 1.0 {
		return refined
	}
	gain := boost - 1.0
	out := tensor.Like(refined)
	dst, r, e := out.Data(), refined.Data(), emb.Data()
	for i := range dst {
		dst[i] = e[i] + math.Tanh((r[i]-e[i])*gain)
	}
	return out
}
