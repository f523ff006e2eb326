// internal/enhance/params.go
package enhance

import (
	"fmt"
	"math"
)

// Variant selects which flavour of the pipeline runs.
type Variant string

const (
	// VariantAdvanced runs every stage with the full parameter surface.
	VariantAdvanced Variant = "advanced"
	// VariantBasic skips detail, high-pass and preservation, blends without
	// hidden-width dampening and uses a fixed attention residual of 0.3.
	VariantBasic Variant = "basic"
)

// SeedMode controls how the weight generator is seeded across entries.
type SeedMode string

const (
	// SeedPerEntry reseeds with Seed before every entry, so entries of equal
	// shape receive identical projector and attention weights.
	SeedPerEntry SeedMode = "per_entry"
	// SeedPerInvocation seeds once and lets the stream advance across
	// entries.
	SeedPerInvocation SeedMode = "invocation"
)

const (
	// AttentionHeads is the fixed head count of the attention stage.
	AttentionHeads = 8

	basicAttentionStrength = 0.3
	residualDampening      = 0.05
	normEpsilon            = 1e-6
	highPassGain           = 0.4
)

// Parameter bounds.
const (
	MinEnhanceStrength = -3.0
	MaxEnhanceStrength = 2.0
	MaxDetailBoost     = 3.0
	MaxHiddenMult      = 100
	MaxSeed            = 2147483647
)

// Parameters configures one pipeline invocation. It is constant across all
// entries of the collection.
type Parameters struct {
	EnhanceStrength   float64  `json:"enhance_strength" yaml:"enhance_strength" mapstructure:"enhance_strength"`
	DetailBoost       float64  `json:"detail_boost" yaml:"detail_boost" mapstructure:"detail_boost"`
	PreserveOriginal  float64  `json:"preserve_original" yaml:"preserve_original" mapstructure:"preserve_original"`
	AttentionStrength float64  `json:"attention_strength" yaml:"attention_strength" mapstructure:"attention_strength"`
	HighPassFilter    bool     `json:"high_pass_filter" yaml:"high_pass_filter" mapstructure:"high_pass_filter"`
	Normalize         bool     `json:"normalize" yaml:"normalize" mapstructure:"normalize"`
	AddSelfAttention  bool     `json:"add_self_attention" yaml:"add_self_attention" mapstructure:"add_self_attention"`
	MLPHiddenMult     int      `json:"mlp_hidden_mult" yaml:"mlp_hidden_mult" mapstructure:"mlp_hidden_mult"`
	Seed              int64    `json:"seed" yaml:"seed" mapstructure:"seed"`
	LowVRAM           bool     `json:"low_vram" yaml:"low_vram" mapstructure:"low_vram"`
	Device            string   `json:"device" yaml:"device" mapstructure:"device"`
	Variant           Variant  `json:"variant" yaml:"variant" mapstructure:"variant"`
	SeedMode          SeedMode `json:"seed_mode" yaml:"seed_mode" mapstructure:"seed_mode"`
}

// DefaultParameters returns the stock configuration.
func DefaultParameters() Parameters {
	return Parameters{
		EnhanceStrength:   0.05,
		DetailBoost:       1.0,
		PreserveOriginal:  0.0,
		AttentionStrength: 0.3,
		HighPassFilter:    false,
		Normalize:         true,
		AddSelfAttention:  false,
		MLPHiddenMult:     8,
		Seed:              42,
		LowVRAM:           false,
		Device:            "auto",
		Variant:           VariantAdvanced,
		SeedMode:          SeedPerEntry,
	}
}

// Validate checks every field against its documented domain.
func (p Parameters) Validate() error {
	if err := inRange("enhance_strength", p.EnhanceStrength, MinEnhanceStrength, MaxEnhanceStrength); err != nil {
		return err
	}
	if err := inRange("detail_boost", p.DetailBoost, 0, MaxDetailBoost); err != nil {
		return err
	}
	if err := inRange("preserve_original", p.PreserveOriginal, 0, 1); err != nil {
		return err
	}
	if err := inRange("attention_strength", p.AttentionStrength, 0, 1); err != nil {
		return err
	}
	if p.MLPHiddenMult < 1 || p.MLPHiddenMult > MaxHiddenMult {
		return fmt.Errorf("%w: mlp_hidden_mult %d not in [1, %d]", ErrInvalidParameters, p.MLPHiddenMult, MaxHiddenMult)
	}
	if p.Seed < 0 || p.Seed > MaxSeed {
		return fmt.Errorf("%w: seed %d not in [0, %d]", ErrInvalidParameters, p.Seed, MaxSeed)
	}
	switch p.Variant {
	case VariantAdvanced, VariantBasic:
	default:
		return fmt.Errorf("%w: unknown variant %q", ErrInvalidParameters, p.Variant)
	}
	switch p.SeedMode {
	case SeedPerEntry, SeedPerInvocation:
	default:
		return fmt.Errorf("%w: unknown seed_mode %q", ErrInvalidParameters, p.SeedMode)
	}
	return nil
}

func inRange(name string, v, lo, hi float64) error {
	if math.IsNaN(v) || v < lo || v > hi {
		return fmt.Errorf("%w: %s %v not in [%v, %v]", ErrInvalidParameters, name, v, lo, hi)
	}
	return nil
}

// ResidualScale dampens the blend strength as the projector widens:
// 1/(1 + 0.05*hiddenMult).
func ResidualScale(hiddenMult int) float64 {
	return 1.0 / (1.0 + float64(hiddenMult)*residualDampening)
}

// effective resolves the per-variant stage settings.
type effective struct {
	strength          float64
	residualScale     float64
	detailBoost       float64
	highPass          bool
	preserve          float64
	attention         bool
	attentionStrength float64
}

func (p Parameters) effective() effective {
	if p.Variant == VariantBasic {
		return effective{
			strength:          p.EnhanceStrength,
			residualScale:     1,
			detailBoost:       1,
			attention:         p.AddSelfAttention,
			attentionStrength: basicAttentionStrength,
		}
	}
	return effective{
		strength:          p.EnhanceStrength,
		residualScale:     ResidualScale(p.MLPHiddenMult),
		detailBoost:       p.DetailBoost,
		highPass:          p.HighPassFilter,
		preserve:          p.PreserveOriginal,
		attention:         p.AddSelfAttention,
		attentionStrength: p.AttentionStrength,
	}
}
