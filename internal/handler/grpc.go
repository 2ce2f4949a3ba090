package handler

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const probeTimeout = 3 * time.Second

// Check is a named dependency probe reported as its own health service.
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

type GrpcHandler struct {
	health *health.Server
	checks []Check
}

func CreateGRPCHandler(checks ...Check) *GrpcHandler {
	h := &GrpcHandler{
		health: health.NewServer(),
		checks: checks,
	}

	h.health.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	for _, check := range checks {
		h.health.SetServingStatus(check.Name, healthpb.HealthCheckResponse_NOT_SERVING)
	}

	return h
}

func (h *GrpcHandler) Register(srv *grpc.Server) {
	healthpb.RegisterHealthServer(srv, h.health)
}

// Refresh runs every probe and updates the reported statuses. The overall
// status is SERVING only when every probe passes.
func (h *GrpcHandler) Refresh(ctx context.Context) {
	overall := healthpb.HealthCheckResponse_SERVING

	for _, check := range h.checks {
		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		err := check.Probe(probeCtx)
		cancel()

		status := healthpb.HealthCheckResponse_SERVING
		if err != nil {
			log.Warn().Err(err).Str("component", "HealthRefresh").Str("check", check.Name).Msg("")
			status = healthpb.HealthCheckResponse_NOT_SERVING
			overall = healthpb.HealthCheckResponse_NOT_SERVING
		}
		h.health.SetServingStatus(check.Name, status)
	}

	h.health.SetServingStatus("", overall)
}

// Shutdown reports NOT_SERVING for every service and ignores later updates.
func (h *GrpcHandler) Shutdown() {
	h.health.Shutdown()
}
