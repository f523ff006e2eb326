// Package enhance implements the conditioning enhancement pipeline: a
// deterministic, seed-controlled sequence of numeric transforms applied to
// every conditioning entry of a collection.
//
//	normalize -> project -> detail -> high-pass -> composite -> attention
//
// Entries are processed sequentially and independently. Every ephemeral
// weight is drawn from an explicit generator owned by the invocation; the
// caller's tensors are never written to.
package enhance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/SyedDaiam9101/conditioning-service/internal/device"
	"github.com/SyedDaiam9101/conditioning-service/internal/metrics"
	"github.com/SyedDaiam9101/conditioning-service/internal/tensor"
)

const tracerName = "github.com/SyedDaiam9101/conditioning-service/internal/enhance"

// Entry pairs an embedding with its opaque metadata. Metadata is carried
// through untouched.
type Entry struct {
	Embedding *tensor.Tensor
	Metadata  any
}

// Collection is an ordered sequence of entries.
type Collection []Entry

// Pipeline runs the enhancement stages. It holds no per-invocation state and
// is safe for concurrent use.
type Pipeline struct {
	resolver device.Resolver
	logger   *slog.Logger
	tracer   trace.Tracer
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithTracerProvider sets the provider spans are created from.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(p *Pipeline) { p.tracer = tp.Tracer(tracerName) }
}

// New creates a Pipeline that resolves its execution context through
// resolver.
func New(resolver device.Resolver, opts ...Option) *Pipeline {
	p := &Pipeline{
		resolver: resolver,
		logger:   slog.Default(),
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Enhance runs the pipeline over every entry of in and returns a new
// collection of equal length and order. An empty collection is returned as
// is without resolving a device. The first failing entry aborts the whole
// invocation.
func (p *Pipeline) Enhance(ctx context.Context, in Collection, params Parameters) (Collection, error) {
	if len(in) == 0 {
		return in, nil
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	ctx, span := p.tracer.Start(ctx, "enhance.invocation", trace.WithAttributes(
		attribute.Int("enhance.entries", len(in)),
		attribute.Int64("enhance.seed", params.Seed),
		attribute.String("enhance.variant", string(params.Variant)),
	))
	defer span.End()

	ec, err := p.resolver.Resolve(ctx, device.Request{Device: params.Device, LowVRAM: params.LowVRAM})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("resolve device: %w", err)
	}
	span.SetAttributes(attribute.String("enhance.device", ec.Device))

	eff := params.effective()
	if eff.attention && !ec.AllowAttention {
		p.logger.Debug("self-attention disabled by execution policy", "device", ec.Device, "low_vram", params.LowVRAM)
		eff.attention = false
	}

	metrics.RecordCollectionSize(len(in))

	var shared *generator
	if params.SeedMode == SeedPerInvocation {
		shared = newGenerator(params.Seed)
	}

	out := make(Collection, 0, len(in))
	for i, entry := range in {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		gen := shared
		if gen == nil {
			gen = newGenerator(params.Seed)
		}

		enhanced, err := p.enhanceEntry(ctx, i, entry.Embedding, params, eff, ec, gen)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		out = append(out, Entry{Embedding: enhanced, Metadata: entry.Metadata})
		metrics.RecordEntry()
		device.Reclaim(ec)
	}

	p.logger.Debug("enhanced collection",
		"entries", len(out), "device", ec.Device, "working_dtype", ec.WorkingDType.String())
	return out, nil
}

// enhanceEntry runs all stages over one embedding. Every intermediate is
// local to this call.
func (p *Pipeline) enhanceEntry(ctx context.Context, idx int, emb *tensor.Tensor, params Parameters, eff effective, ec device.ExecutionContext, gen *generator) (*tensor.Tensor, error) {
	if emb == nil {
		return nil, ErrMissingEmbedding
	}
	ctx, span := p.tracer.Start(ctx, "enhance.entry", trace.WithAttributes(
		attribute.Int("enhance.index", idx),
		attribute.String("enhance.shape", emb.Shape().String()),
		attribute.String("enhance.dtype", emb.DType().String()),
	))
	defer span.End()

	settle := func(t *tensor.Tensor) *tensor.Tensor {
		if ec.WorkingDType == tensor.Float64 {
			return t
		}
		return t.Round(ec.WorkingDType)
	}

	// Projector and attention weights come from separate streams so the
	// attention weights do not depend on the projector's width.
	projGen, attnGen := gen.split(), gen.split()

	base := settle(emb)

	normed, _ := p.stage(ctx, "normalize", func() (*tensor.Tensor, error) {
		return Normalize(base, params.Normalize), nil
	})
	normed = settle(normed)

	refined, err := p.stage(ctx, "project", func() (*tensor.Tensor, error) {
		return Project(normed, params.MLPHiddenMult, projGen)
	})
	if err != nil {
		return nil, err
	}
	refined = settle(refined)

	if eff.detailBoost > 1.0 {
		refined, _ = p.stage(ctx, "detail", func() (*tensor.Tensor, error) {
			return ModulateDetail(refined, normed, eff.detailBoost), nil
		})
		refined = settle(refined)
	}

	if eff.highPass {
		refined, _ = p.stage(ctx, "high_pass", func() (*tensor.Tensor, error) {
			return EmphasizeHighFrequency(refined, true), nil
		})
		refined = settle(refined)
	}

	blended, _ := p.stage(ctx, "composite", func() (*tensor.Tensor, error) {
		return Composite(normed, refined, eff.strength, eff.residualScale, eff.preserve), nil
	})
	blended = settle(blended)

	if eff.attention {
		blended, err = p.stage(ctx, "attention", func() (*tensor.Tensor, error) {
			return Attend(blended, eff.attentionStrength, attnGen)
		})
		if err != nil {
			return nil, err
		}
	}

	return blended.WithDType(emb.DType()), nil
}

// stage times fn and records it as a child span.
func (p *Pipeline) stage(ctx context.Context, name string, fn func() (*tensor.Tensor, error)) (*tensor.Tensor, error) {
	_, span := p.tracer.Start(ctx, "enhance.stage."+name)
	defer span.End()

	start := time.Now()
	out, err := fn()
	metrics.RecordStageLatency(name, time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return out, err
}

// Close is a no-op; the pipeline holds no resources between invocations.
func (p *Pipeline) Close() error {
	return nil
}

var _ Enhancer = (*Pipeline)(nil)
