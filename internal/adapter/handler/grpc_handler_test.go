package handler

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"google.golang.org/grpc/health/grpc_health_v1"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthCheck_Serving(t *testing.T) {
	ok := pingerFunc(func(context.Context) error { return nil })
	h := NewHealthHandler(map[string]Pinger{"backend": ok, "idempotency": ok}, zap.NewNop())

	resp, err := h.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{})
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if resp.GetStatus() != grpc_health_v1.HealthCheckResponse_SERVING {
		t.Errorf("expected SERVING, got %v", resp.GetStatus())
	}
}

func TestHealthCheck_NotServing(t *testing.T) {
	ok := pingerFunc(func(context.Context) error { return nil })
	down := pingerFunc(func(context.Context) error { return errors.New("connection refused") })
	h := NewHealthHandler(map[string]Pinger{"backend": down, "idempotency": ok}, zap.NewNop())

	resp, err := h.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{})
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if resp.GetStatus() != grpc_health_v1.HealthCheckResponse_NOT_SERVING {
		t.Errorf("expected NOT_SERVING, got %v", resp.GetStatus())
	}

	status := h.Status(context.Background())
	if status["backend"] || !status["idempotency"] {
		t.Errorf("unexpected status %v", status)
	}
}
