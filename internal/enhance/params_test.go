package enhance

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultParameters_Valid(t *testing.T) {
	require.NoError(t, DefaultParameters().Validate())
}

func TestValidate_Bounds(t *testing.T) {
	cases := map[string]func(*Parameters){
		"strength low":       func(p *Parameters) { p.EnhanceStrength = -3.01 },
		"strength high":      func(p *Parameters) { p.EnhanceStrength = 2.01 },
		"strength nan":       func(p *Parameters) { p.EnhanceStrength = math.NaN() },
		"detail negative":    func(p *Parameters) { p.DetailBoost = -0.1 },
		"detail high":        func(p *Parameters) { p.DetailBoost = 3.5 },
		"preserve high":      func(p *Parameters) { p.PreserveOriginal = 1.1 },
		"attention negative": func(p *Parameters) { p.AttentionStrength = -0.5 },
		"hidden zero":        func(p *Parameters) { p.MLPHiddenMult = 0 },
		"hidden high":        func(p *Parameters) { p.MLPHiddenMult = 101 },
		"seed negative":      func(p *Parameters) { p.Seed = -1 },
		"seed high":          func(p *Parameters) { p.Seed = MaxSeed + 1 },
		"variant":            func(p *Parameters) { p.Variant = "turbo" },
		"seed mode":          func(p *Parameters) { p.SeedMode = "random" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			p := DefaultParameters()
			mutate(&p)
			err := p.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidParameters))
		})
	}
}

func TestValidate_Edges(t *testing.T) {
	p := DefaultParameters()
	p.EnhanceStrength = MinEnhanceStrength
	p.DetailBoost = 0
	p.PreserveOriginal = 1
	p.AttentionStrength = 1
	p.MLPHiddenMult = MaxHiddenMult
	p.Seed = MaxSeed
	p.Variant = VariantBasic
	p.SeedMode = SeedPerInvocation
	assert.NoError(t, p.Validate())
}

func TestEffective_Basic(t *testing.T) {
	p := DefaultParameters()
	p.Variant = VariantBasic
	p.PreserveOriginal = 0.9
	p.HighPassFilter = true
	p.DetailBoost = 2
	p.AttentionStrength = 0.9

	eff := p.effective()
	assert.Equal(t, 1.0, eff.residualScale)
	assert.Equal(t, 0.0, eff.preserve)
	assert.False(t, eff.highPass)
	assert.Equal(t, 1.0, eff.detailBoost)
	assert.Equal(t, 0.3, eff.attentionStrength)
}
