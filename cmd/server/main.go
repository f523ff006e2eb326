// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/otel"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/SyedDaiam9101/conditioning-service/internal/cache"
	"github.com/SyedDaiam9101/conditioning-service/internal/config"
	"github.com/SyedDaiam9101/conditioning-service/internal/device"
	"github.com/SyedDaiam9101/conditioning-service/internal/enhance"
	pb "github.com/SyedDaiam9101/conditioning-service/internal/enhancerpb"
	"github.com/SyedDaiam9101/conditioning-service/internal/handler"
	"github.com/SyedDaiam9101/conditioning-service/internal/logging"
	"github.com/SyedDaiam9101/conditioning-service/internal/metrics"
	"github.com/SyedDaiam9101/conditioning-service/internal/middleware"
)

const serviceName = "conditioning-service"

func main() {
	fs := pflag.NewFlagSet(serviceName, pflag.ExitOnError)
	config.RegisterFlags(fs)
	_ = fs.Parse(os.Args[1:])
	configFile, _ := fs.GetString("config")

	cfg, err := config.Load(configFile, fs)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat).With("service", serviceName)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
	logger.Info("server shutdown complete")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting",
		"port", cfg.Port,
		"metrics_port", cfg.MetricsPort,
		"redis", cfg.Redis,
		"otel", cfg.OTELEnabled,
		"device", cfg.Pipeline.Device,
		"variant", string(cfg.Pipeline.Variant))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var tracerShutdown func(context.Context) error
	if cfg.OTELEnabled {
		var err error
		tracerShutdown, err = initTracer(cfg.OTELEndpoint, logger)
		if err != nil {
			logger.Warn("failed to initialize tracer", "error", err)
		} else {
			logger.Info("OpenTelemetry tracing enabled", "exporter", "stdout")
		}
	}

	var engine enhance.Enhancer
	if cfg.UseMock {
		logger.Info("using pass-through mock enhancer")
		engine = enhance.NewMock()
	} else {
		engine = enhance.New(device.NewSysfsResolver(),
			enhance.WithLogger(logger.With("component", "pipeline")),
			enhance.WithTracerProvider(otel.GetTracerProvider()))
	}
	defer engine.Close()

	opts := []handler.Option{handler.WithDefaults(cfg.Pipeline)}
	if cfg.Redis != "" {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		results, err := cache.New(pingCtx, cfg.Redis)
		cancel()
		if err != nil {
			logger.Warn("continuing without result cache", "error", err)
		} else {
			defer results.Close()
			opts = append(opts, handler.WithCache(results, cfg.CacheTTL))
			logger.Info("result cache enabled", "redis", cfg.Redis, "ttl", cfg.CacheTTL)
		}
	}

	healthServer := health.NewServer()
	httpServer := startHTTPServer(cfg.MetricsPort, healthServer, logger)

	interceptors := []grpc.UnaryServerInterceptor{
		middleware.UnaryRequestIDInterceptor(logger),
		middleware.UnaryMetricsInterceptor(),
		middleware.UnaryLoggingInterceptor(),
		middleware.UnaryRecoveryInterceptor(),
	}
	serverOpts := []grpc.ServerOption{grpc.ChainUnaryInterceptor(interceptors...)}
	if cfg.OTELEnabled {
		serverOpts = append(serverOpts, grpc.StatsHandler(otelgrpc.NewServerHandler()))
	}
	grpcServer := grpc.NewServer(serverOpts...)

	pb.RegisterEnhancerServer(grpcServer, handler.New(engine, opts...))
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	addr := fmt.Sprintf(":%d", cfg.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	healthServer.SetServingStatus(pb.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	metrics.SetHealthy()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("gRPC server listening", "addr", addr)
		serveErr <- grpcServer.Serve(lis)
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down gracefully")
	healthServer.SetServingStatus(pb.ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	metrics.SetUnhealthy()

	// Give load balancers time to observe the unhealthy status.
	time.Sleep(5 * time.Second)
	grpcServer.GracefulStop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "error", err)
	}
	if tracerShutdown != nil {
		if err := tracerShutdown(shutdownCtx); err != nil {
			logger.Warn("tracer shutdown", "error", err)
		}
	}
	return nil
}
