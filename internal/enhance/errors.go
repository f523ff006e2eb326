// internal/enhance/errors.go
package enhance

import "errors"

var (
	// ErrInvalidParameters wraps every parameter validation failure.
	ErrInvalidParameters = errors.New("invalid parameters")
	// ErrHiddenWidth is returned when channels*mlp_hidden_mult does not fit
	// in an int.
	ErrHiddenWidth = errors.New("projector hidden width out of range")
	// ErrHeadCount is returned when the channel count is not divisible by
	// the attention head count.
	ErrHeadCount = errors.New("channels not divisible by attention heads")
	// ErrMissingEmbedding is returned for an entry without a tensor.
	ErrMissingEmbedding = errors.New("entry has no embedding")
)
