// internal/enhance/interface.go
package enhance

import "context"

// Enhancer defines the interface for running the enhancement pipeline over
// a collection. This abstraction allows mocking in handler tests.
type Enhancer interface {
	// Enhance processes every entry of in with params and returns a
	// collection of equal length and order.
	Enhance(ctx context.Context, in Collection, params Parameters) (Collection, error)

	// Close releases any resources held by the enhancer.
	Close() error
}
