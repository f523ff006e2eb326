// internal/handler/handler.go
package handler

import (
	"context"
	"log/slog"
	"time"

	"github.com/SyedDaiam9101/conditioning-service/internal/cache"
	"github.com/SyedDaiam9101/conditioning-service/internal/enhance"
	pb "github.com/SyedDaiam9101/conditioning-service/internal/enhancerpb"
	"github.com/SyedDaiam9101/conditioning-service/internal/metrics"
	"github.com/SyedDaiam9101/conditioning-service/internal/middleware"
)

// ResultCache stores encoded responses by key. Get returns nil, nil on a miss.
type ResultCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
}

// Handler implements the EnhancerServer interface.
// It uses the Enhancer interface for flexibility and testability.
type Handler struct {
	pb.UnimplementedEnhancerServer
	engine   enhance.Enhancer
	results  ResultCache
	ttl      time.Duration
	defaults enhance.Parameters
}

// Option configures a Handler.
type Option func(*Handler)

// WithDefaults sets the parameters used for fields a request leaves unset.
func WithDefaults(p enhance.Parameters) Option {
	return func(h *Handler) { h.defaults = p }
}

// WithCache enables result caching with the given TTL.
func WithCache(c ResultCache, ttl time.Duration) Option {
	return func(h *Handler) {
		h.results = c
		h.ttl = ttl
	}
}

// New creates a new Handler around engine.
func New(engine enhance.Enhancer, opts ...Option) *Handler {
	h := &Handler{
		engine:   engine,
		defaults: enhance.DefaultParameters(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Enhance runs the pipeline over the request's collection. An empty
// collection is answered with an empty response.
func (h *Handler) Enhance(ctx context.Context, req *pb.EnhanceRequest) (*pb.EnhanceResponse, error) {
	start := time.Now()
	logger := middleware.Logger(ctx)

	if req == nil {
		return nil, invalidArgumentError("request cannot be nil")
	}
	if h.engine == nil {
		return nil, failedPreconditionError("enhancement engine not initialized")
	}

	params := req.Parameters.Apply(h.defaults)
	if err := params.Validate(); err != nil {
		return nil, grpcError(err)
	}

	if len(req.Entries) == 0 {
		return &pb.EnhanceResponse{Entries: []*pb.Entry{}}, nil
	}

	collection, err := pb.ToCollection(req.Entries)
	if err != nil {
		return nil, grpcError(err)
	}

	var key string
	if h.results != nil {
		key, err = cache.Key(req.Entries, params)
		if err != nil {
			return nil, internalError("derive cache key: %v", err)
		}
		if resp := h.lookup(ctx, logger, key); resp != nil {
			logger.Info("enhance served from cache", "entries", len(resp.Entries))
			return resp, nil
		}
	}

	out, err := h.engine.Enhance(ctx, collection, params)
	if err != nil {
		logger.Error("enhance failed", "error", err)
		return nil, grpcError(err)
	}

	entries, err := pb.FromCollection(out)
	if err != nil {
		return nil, internalError("encode result: %v", err)
	}
	resp := &pb.EnhanceResponse{Entries: entries}

	if h.results != nil {
		h.store(ctx, logger, key, resp)
	}

	logger.Info("enhance",
		"entries", len(entries),
		"variant", string(params.Variant),
		"seed", params.Seed,
		"total_ms", float64(time.Since(start).Microseconds())/1000.0)

	return resp, nil
}

// lookup returns a cached response or nil. Cache failures only cost a
// recomputation.
func (h *Handler) lookup(ctx context.Context, logger *slog.Logger, key string) *pb.EnhanceResponse {
	data, err := h.results.Get(ctx, key)
	if err != nil {
		metrics.RecordCacheResult("error")
		logger.Warn("cache lookup failed", "key", key, "error", err)
		return nil
	}
	if data == nil {
		metrics.RecordCacheResult("miss")
		return nil
	}

	var resp pb.EnhanceResponse
	if err := pb.Unmarshal(data, &resp); err != nil {
		metrics.RecordCacheResult("error")
		logger.Warn("discarding undecodable cache entry", "key", key, "error", err)
		return nil
	}
	metrics.RecordCacheResult("hit")
	resp.Cached = true
	return &resp
}

func (h *Handler) store(ctx context.Context, logger *slog.Logger, key string, resp *pb.EnhanceResponse) {
	data, err := pb.Marshal(resp)
	if err != nil {
		logger.Warn("encode response for cache", "error", err)
		return
	}
	if err := h.results.Set(ctx, key, data, h.ttl); err != nil {
		logger.Warn("cache store failed", "key", key, "error", err)
	}
}
