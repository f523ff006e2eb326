// internal/enhancerpb/convert.go
package enhancerpb

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/SyedDaiam9101/conditioning-service/internal/enhance"
	"github.com/SyedDaiam9101/conditioning-service/internal/tensor"
)

// ErrNilEntry is returned when a request contains a nil entry.
var ErrNilEntry = errors.New("nil entry")

// TensorToWire converts a tensor to its wire form.
func TensorToWire(t *tensor.Tensor) *Tensor {
	s := t.Shape()
	return &Tensor{
		Shape: []int64{int64(s[0]), int64(s[1]), int64(s[2])},
		DType: t.DType().String(),
		Data:  t.Encode(),
	}
}

// TensorFromWire decodes a wire tensor.
func TensorFromWire(w *Tensor) (*tensor.Tensor, error) {
	if w == nil {
		return nil, enhance.ErrMissingEmbedding
	}
	if len(w.Shape) != 3 {
		return nil, fmt.Errorf("%w: rank %d, expected 3", tensor.ErrShape, len(w.Shape))
	}
	var shape tensor.Shape
	for i, d := range w.Shape {
		if d <= 0 || int64(int(d)) != d {
			return nil, fmt.Errorf("%w: dimension %d is %d", tensor.ErrShape, i, d)
		}
		shape[i] = int(d)
	}
	dtype, err := tensor.ParseDType(w.DType)
	if err != nil {
		return nil, err
	}
	return tensor.Decode(shape, dtype, w.Data)
}

// ToCollection decodes wire entries. Metadata is kept as cbor.RawMessage.
func ToCollection(entries []*Entry) (enhance.Collection, error) {
	out := make(enhance.Collection, len(entries))
	for i, e := range entries {
		if e == nil {
			return nil, fmt.Errorf("entry %d: %w", i, ErrNilEntry)
		}
		emb, err := TensorFromWire(e.Embedding)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		out[i] = enhance.Entry{Embedding: emb}
		if e.Metadata != nil {
			out[i].Metadata = e.Metadata
		}
	}
	return out, nil
}

// FromCollection encodes a collection. Metadata that is not already raw CBOR
// is marshalled.
func FromCollection(c enhance.Collection) ([]*Entry, error) {
	out := make([]*Entry, len(c))
	for i, e := range c {
		if e.Embedding == nil {
			return nil, fmt.Errorf("entry %d: %w", i, enhance.ErrMissingEmbedding)
		}
		entry := &Entry{Embedding: TensorToWire(e.Embedding)}
		switch m := e.Metadata.(type) {
		case nil:
		case cbor.RawMessage:
			entry.Metadata = m
		default:
			raw, err := Marshal(m)
			if err != nil {
				return nil, fmt.Errorf("entry %d metadata: %w", i, err)
			}
			entry.Metadata = raw
		}
		out[i] = entry
	}
	return out, nil
}

// Apply overlays the fields set in p onto base.
func (p *Parameters) Apply(base enhance.Parameters) enhance.Parameters {
	if p == nil {
		return base
	}
	if p.EnhanceStrength != nil {
		base.EnhanceStrength = *p.EnhanceStrength
	}
	if p.DetailBoost != nil {
		base.DetailBoost = *p.DetailBoost
	}
	if p.PreserveOriginal != nil {
		base.PreserveOriginal = *p.PreserveOriginal
	}
	if p.AttentionStrength != nil {
		base.AttentionStrength = *p.AttentionStrength
	}
	if p.HighPassFilter != nil {
		base.HighPassFilter = *p.HighPassFilter
	}
	if p.Normalize != nil {
		base.Normalize = *p.Normalize
	}
	if p.AddSelfAttention != nil {
		base.AddSelfAttention = *p.AddSelfAttention
	}
	if p.MLPHiddenMult != nil {
		base.MLPHiddenMult = int(*p.MLPHiddenMult)
	}
	if p.Seed != nil {
		base.Seed = *p.Seed
	}
	if p.LowVRAM != nil {
		base.LowVRAM = *p.LowVRAM
	}
	if p.Device != nil {
		base.Device = *p.Device
	}
	if p.Variant != nil {
		base.Variant = enhance.Variant(*p.Variant)
	}
	if p.SeedMode != nil {
		base.SeedMode = enhance.SeedMode(*p.SeedMode)
	}
	return base
}

// ParametersFrom sets every field of the wire parameters from p.
func ParametersFrom(p enhance.Parameters) *Parameters {
	hidden := int64(p.MLPHiddenMult)
	variant, seedMode := string(p.Variant), string(p.SeedMode)
	return &Parameters{
		EnhanceStrength:   &p.EnhanceStrength,
		DetailBoost:       &p.DetailBoost,
		PreserveOriginal:  &p.PreserveOriginal,
		AttentionStrength: &p.AttentionStrength,
		HighPassFilter:    &p.HighPassFilter,
		Normalize:         &p.Normalize,
		AddSelfAttention:  &p.AddSelfAttention,
		MLPHiddenMult:     &hidden,
		Seed:              &p.Seed,
		LowVRAM:           &p.LowVRAM,
		Device:            &p.Device,
		Variant:           &variant,
		SeedMode:          &seedMode,
	}
}
