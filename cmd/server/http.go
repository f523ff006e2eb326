// cmd/server/http.go
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// healthHandler answers 200 with ok while the health server reports
// SERVING and 503 with fail otherwise.
func healthHandler(healthServer *health.Server, ok, fail string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := healthServer.Check(r.Context(), &healthpb.HealthCheckRequest{})
		if err != nil || resp.Status != healthpb.HealthCheckResponse_SERVING {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(fail))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(ok))
	}
}

func newHTTPMux(healthServer *health.Server) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", healthHandler(healthServer, "OK", "Service Unavailable"))
	mux.HandleFunc("/readyz", healthHandler(healthServer, "Ready", "Not Ready"))
	return mux
}

func startHTTPServer(port int, healthServer *health.Server, logger *slog.Logger) *http.Server {
	addr := fmt.Sprintf(":%d", port)
	server := &http.Server{
		Addr:              addr,
		Handler:           newHTTPMux(healthServer),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening (metrics, health)", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	return server
}
