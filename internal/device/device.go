// Package device resolves a logical device/precision choice into the
// execution context the enhancement pipeline runs under. Hardware discovery
// and memory-pressure policy live here so the numeric pipeline never
// touches either.
package device

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/SyedDaiam9101/conditioning-service/internal/tensor"
)

const (
	// Auto selects the first detected accelerator, falling back to CPU.
	Auto = "auto"
	// CPU forces host execution.
	CPU = "cpu"
)

// ErrUnknownDevice is returned when a requested device is not present.
var ErrUnknownDevice = errors.New("unknown device")

// Request is the caller's logical device choice.
type Request struct {
	Device  string
	LowVRAM bool
}

// ExecutionContext is the resolved placement and precision policy for one
// pipeline invocation.
type ExecutionContext struct {
	// Device is the resolved placement, e.g. "cpu" or "cuda:0".
	Device string
	// Accelerator is true when Device names an accelerator.
	Accelerator bool
	// Constrained requests proactive reclamation of working memory after
	// every entry.
	Constrained bool
	// WorkingDType is the precision intermediate stage results are held at.
	WorkingDType tensor.DType
	// AllowAttention is false when policy forces the attention stage off.
	AllowAttention bool
}

// Resolver turns a Request into an ExecutionContext. It is called once per
// pipeline invocation.
type Resolver interface {
	Resolve(ctx context.Context, req Request) (ExecutionContext, error)
}

// Accelerator describes one detected accelerator.
type Accelerator struct {
	// Name is the placement handle, e.g. "cuda:0".
	Name   string
	Driver string
	Model  string
}

// applyPolicy fills in the precision policy for a resolved placement.
func applyPolicy(ec ExecutionContext, lowVRAM bool) ExecutionContext {
	ec.WorkingDType = tensor.Float64
	ec.AllowAttention = true
	ec.Constrained = ec.Accelerator
	if lowVRAM {
		ec.WorkingDType = tensor.Float32
		ec.AllowAttention = false
		ec.Constrained = true
	}
	return ec
}

// place picks an accelerator (or CPU) for the requested device name.
func place(device string, accels []Accelerator) (ExecutionContext, error) {
	name := strings.ToLower(strings.TrimSpace(device))
	switch name {
	case "", Auto:
		if len(accels) == 0 {
			return ExecutionContext{Device: CPU}, nil
		}
		return ExecutionContext{Device: accels[0].Name, Accelerator: true}, nil
	case CPU:
		return ExecutionContext{Device: CPU}, nil
	}

	// Accept "cuda:N", "gpu:N" and bare "cuda" (index 0).
	kind, idx, hasIdx := strings.Cut(name, ":")
	if kind != "cuda" && kind != "gpu" {
		return ExecutionContext{}, fmt.Errorf("%w: %q", ErrUnknownDevice, device)
	}
	n := 0
	if hasIdx {
		var err error
		n, err = strconv.Atoi(idx)
		if err != nil || n < 0 {
			return ExecutionContext{}, fmt.Errorf("%w: %q", ErrUnknownDevice, device)
		}
	}
	if n >= len(accels) {
		return ExecutionContext{}, fmt.Errorf("%w: %q (%d accelerators detected)", ErrUnknownDevice, device, len(accels))
	}
	return ExecutionContext{Device: accels[n].Name, Accelerator: true}, nil
}

// Reclaim returns freed working memory to the operating system when the
// context is constrained. It is a no-op otherwise.
func Reclaim(ec ExecutionContext) {
	if ec.Constrained {
		debug.FreeOSMemory()
	}
}

// Host returns the default CPU context: float64 working precision with
// attention allowed.
func Host() ExecutionContext {
	return applyPolicy(ExecutionContext{Device: CPU}, false)
}

// StaticResolver always resolves to Context, with the low-VRAM policy still
// applied on top of it.
type StaticResolver struct {
	Context ExecutionContext
}

// Resolve implements Resolver.
func (s StaticResolver) Resolve(_ context.Context, req Request) (ExecutionContext, error) {
	ec := s.Context
	if ec.Device == "" {
		ec.Device = CPU
	}
	if req.LowVRAM {
		ec = applyPolicy(ec, true)
	}
	return ec, nil
}

var (
	_ Resolver = (*SysfsResolver)(nil)
	_ Resolver = StaticResolver{}
)
