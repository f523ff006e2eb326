// internal/enhance/normalize.go
package enhance

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/SyedDaiam9101/conditioning-service/internal/tensor"
)

// Normalize standardizes each channel vector to (x - mean) / (std + 1e-6),
// where std is the sample standard deviation of the row. A disabled
// normalizer returns t itself.
func Normalize(t *tensor.Tensor, enabled bool) *tensor.Tensor {
	if !enabled {
		return t
	}
	out := tensor.Like(t)
	for i := 0; i < t.Rows(); i++ {
		row := t.Row(i)
		mean, std := stat.MeanStdDev(row, nil)
		if len(row) < 2 || math.IsNaN(std) {
			std = 0
		}
		inv := 1 / (std + normEpsilon)
		dst := out.Row(i)
		for c, v := range row {
			dst[c] = (v - mean) * inv
		}
	}
	return out
}
