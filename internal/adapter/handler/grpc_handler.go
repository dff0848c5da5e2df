package handler

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/health/grpc_health_v1"
)

const pingTimeout = 2 * time.Second

type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves grpc.health.v1.Health. The service is SERVING while
// every dependency answers a ping.
type HealthHandler struct {
	grpc_health_v1.UnimplementedHealthServer
	deps   map[string]Pinger
	logger *zap.Logger
}

func NewHealthHandler(deps map[string]Pinger, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{deps: deps, logger: logger}
}

// Status pings every dependency and reports which ones answered.
func (h *HealthHandler) Status(ctx context.Context) map[string]bool {
	out := make(map[string]bool, len(h.deps))
	for name, dep := range h.deps {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		err := dep.Ping(pingCtx)
		cancel()

		if err != nil {
			h.logger.Warn("health check failed", zap.String("dependency", name), zap.Error(err))
		}
		out[name] = err == nil
	}
	return out
}

func (h *HealthHandler) Check(ctx context.Context, req *grpc_health_v1.HealthCheckRequest) (*grpc_health_v1.HealthCheckResponse, error) {
	status := grpc_health_v1.HealthCheckResponse_SERVING
	for _, ok := range h.Status(ctx) {
		if !ok {
			status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
			break
		}
	}
	return &grpc_health_v1.HealthCheckResponse{Status: status}, nil
}
