// internal/enhance/generator.go
package enhance

import "math/rand/v2"

// generator is the explicit, invocation-scoped source for ephemeral weight
// initialization. Nothing in the pipeline touches a global generator.
type generator struct {
	r *rand.Rand
}

func newGenerator(seed int64) *generator {
	s := uint64(seed)
	return &generator{r: rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))}
}

// split returns an independent child generator. The parent advances by
// exactly two draws no matter how much the child is used.
func (g *generator) split() *generator {
	return &generator{r: rand.New(rand.NewPCG(g.r.Uint64(), g.r.Uint64()))}
}

// fillUniform fills dst with samples from U(-bound, bound).
func (g *generator) fillUniform(dst []float64, bound float64) {
	for i := range dst {
		dst[i] = (2*g.r.Float64() - 1) * bound
	}
}
