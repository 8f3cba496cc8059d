// Package grpc builds instrumented gRPC servers with a health service and
// polls health from the client side.
package grpc

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

const healthPollInterval = 200 * time.Millisecond

// NewHealthServer returns a gRPC server traced through otelgrpc with a
// registered health service. Every service starts NOT_SERVING.
func NewHealthServer(services ...string) (*gogrpc.Server, *health.Server) {
	server := gogrpc.NewServer(gogrpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(server, healthServer)
	SetServing(healthServer, false, services...)
	return server, healthServer
}

// SetServing marks the overall status and each named service.
func SetServing(h *health.Server, serving bool, services ...string) {
	if h == nil {
		return
	}
	status := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if serving {
		status = grpc_health_v1.HealthCheckResponse_SERVING
	}
	h.SetServingStatus("", status)
	for _, service := range services {
		h.SetServingStatus(service, status)
	}
}

// WaitForHealth blocks until service reports SERVING or ctx ends.
func WaitForHealth(ctx context.Context, conn gogrpc.ClientConnInterface, service string) error {
	if conn == nil {
		return fmt.Errorf("gRPC connection is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	client := grpc_health_v1.NewHealthClient(conn)
	ticker := time.NewTicker(healthPollInterval)
	defer ticker.Stop()
	for {
		callCtx, cancel := context.WithTimeout(ctx, time.Second)
		resp, err := client.Check(callCtx, &grpc_health_v1.HealthCheckRequest{Service: service})
		cancel()
		if err == nil && resp.GetStatus() == grpc_health_v1.HealthCheckResponse_SERVING {
			return nil
		}

		select {
		case <-ctx.Done():
			if err != nil {
				return fmt.Errorf("wait for gRPC health: %w (last error: %v)", ctx.Err(), err)
			}
			return fmt.Errorf("wait for gRPC health: %w (last status: %s)", ctx.Err(), resp.GetStatus())
		case <-ticker.C:
		}
	}
}
