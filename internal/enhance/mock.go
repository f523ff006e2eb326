// internal/enhance/mock.go
package enhance

import (
	"context"
	"fmt"
)

// Mock is a mock implementation of Enhancer for testing. It returns the
// input collection unchanged and records the parameters it was called with.
type Mock struct {
	// ShouldError if true, Enhance will return an error
	ShouldError bool
	// Err is returned when ShouldError is true; a generic error is used
	// when nil
	Err error
	// CallCount tracks the number of times Enhance was called
	CallCount int
	// LastParams holds the parameters of the most recent call
	LastParams Parameters
}

// NewMock creates a new Mock that passes collections through.
func NewMock() *Mock {
	return &Mock{}
}

// Enhance returns a copy of in.
func (m *Mock) Enhance(_ context.Context, in Collection, params Parameters) (Collection, error) {
	m.CallCount++
	m.LastParams = params

	if m.ShouldError {
		if m.Err != nil {
			return nil, m.Err
		}
		return nil, fmt.Errorf("mock enhance error")
	}

	out := make(Collection, len(in))
	copy(out, in)
	return out, nil
}

// Close is a no-op for the mock implementation
func (m *Mock) Close() error {
	return nil
}

// SetError configures the mock to return err on the next Enhance call
func (m *Mock) SetError(err error) {
	m.ShouldError = true
	m.Err = err
}

// ClearError clears any configured error
func (m *Mock) ClearError() {
	m.ShouldError = false
	m.Err = nil
}

// Ensure Mock implements Enhancer at compile time
var _ Enhancer = (*Mock)(nil)
