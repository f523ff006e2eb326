// internal/enhancerpb/messages.go
package enhancerpb

import "github.com/fxamacker/cbor/v2"

// Tensor is a rank-3 [batch, sequence, channel] embedding in wire form.
// Data holds little-endian elements of DType.
type Tensor struct {
	Shape []int64 `cbor:"1,keyasint"`
	DType string  `cbor:"2,keyasint"`
	Data  []byte  `cbor:"3,keyasint"`
}

// Entry is one conditioning entry. Metadata is opaque CBOR and is returned
// byte-for-byte.
type Entry struct {
	Embedding *Tensor         `cbor:"1,keyasint"`
	Metadata  cbor.RawMessage `cbor:"2,keyasint,omitempty"`
}

// Parameters mirrors the pipeline parameters. Nil fields fall back to the
// server's configured defaults.
type Parameters struct {
	EnhanceStrength   *float64 `cbor:"1,keyasint,omitempty"`
	DetailBoost       *float64 `cbor:"2,keyasint,omitempty"`
	PreserveOriginal  *float64 `cbor:"3,keyasint,omitempty"`
	AttentionStrength *float64 `cbor:"4,keyasint,omitempty"`
	HighPassFilter    *bool    `cbor:"5,keyasint,omitempty"`
	Normalize         *bool    `cbor:"6,keyasint,omitempty"`
	AddSelfAttention  *bool    `cbor:"7,keyasint,omitempty"`
	MLPHiddenMult     *int64   `cbor:"8,keyasint,omitempty"`
	Seed              *int64   `cbor:"9,keyasint,omitempty"`
	LowVRAM           *bool    `cbor:"10,keyasint,omitempty"`
	Device            *string  `cbor:"11,keyasint,omitempty"`
	Variant           *string  `cbor:"12,keyasint,omitempty"`
	SeedMode          *string  `cbor:"13,keyasint,omitempty"`
}

// EnhanceRequest carries a conditioning collection and its parameters.
type EnhanceRequest struct {
	Entries    []*Entry    `cbor:"1,keyasint"`
	Parameters *Parameters `cbor:"2,keyasint,omitempty"`
}

// EnhanceResponse carries the enhanced collection in request order.
type EnhanceResponse struct {
	Entries []*Entry `cbor:"1,keyasint"`
	// Cached is true when the result was served from the result cache.
	Cached bool `cbor:"2,keyasint"`
}
