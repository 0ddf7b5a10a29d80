package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"rentalhub-backend/internal/api/grpc/interceptor"
	"rentalhub-backend/internal/logger"
)

// ServiceName is the health-check service name reported alongside the overall "" entry.
const ServiceName = "rentalhub.v1.Backend"

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthReporter mirrors store reachability into the gRPC health service.
type HealthReporter struct {
	health   *health.Server
	store    Pinger
	interval time.Duration
}

func NewHealthReporter(store Pinger, interval time.Duration) *HealthReporter {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &HealthReporter{health: health.NewServer(), store: store, interval: interval}
}

// NewServer returns a gRPC server exposing grpc.health.v1 and reflection.
func NewServer(reporter *HealthReporter) *grpc.Server {
	s := grpc.NewServer(grpc.UnaryInterceptor(interceptor.Unary()))
	healthpb.RegisterHealthServer(s, reporter.health)
	// Register reflection service for grpcurl
	reflection.Register(s)
	return s
}

// Check pings the store once and publishes the result.
func (h *HealthReporter) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	st := healthpb.HealthCheckResponse_SERVING
	if err := h.store.Ping(ctx); err != nil {
		logger.WarnContext(ctx, "Store unreachable", "error", err)
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.health.SetServingStatus("", st)
	h.health.SetServingStatus(ServiceName, st)
	return st
}

// Run checks on every interval until ctx is done, then marks the server as shutting down.
func (h *HealthReporter) Run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	h.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			h.health.Shutdown()
			return
		case <-ticker.C:
			h.Check(ctx)
		}
	}
}
