// Package grpc implements the gRPC transport for voicechat.
//
// The chatbot itself is only reachable over HTTP. This transport serves the
// standard grpc.health.v1 service, mirroring /readyz, so that gRPC-native
// orchestrators and load balancers can probe the process. Server reflection
// is registered for grpcurl and friends.
package grpc

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/nadzzz/voicechat/internal/health"
	"github.com/nadzzz/voicechat/internal/transport"
)

// ServiceName is the health service name reported alongside the overall
// ("") status.
const ServiceName = "voicechat"

const defaultPollInterval = 5 * time.Second

// Transport implements transport.Transport over gRPC.
type Transport struct {
	port     int
	health   *health.Health
	interval time.Duration

	server *grpc.Server
	status *grpchealth.Server
}

// New creates a new gRPC transport on the given port. Readiness is taken
// from h; a nil h always reports SERVING.
func New(port int, h *health.Health) *Transport {
	t := &Transport{
		port:     port,
		health:   h,
		interval: defaultPollInterval,
		server:   grpc.NewServer(),
		status:   grpchealth.NewServer(),
	}
	healthpb.RegisterHealthServer(t.server, t.status)
	reflection.Register(t.server)
	return t
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "grpc" }

// Listen starts the gRPC server. The chatbot handler is not served here.
func (t *Transport) Listen(ctx context.Context, _ transport.Handler) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", t.port))
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}
	slog.Info("grpc transport listening", "port", t.port)
	return t.Serve(ctx, lis)
}

// Serve runs the server on lis until ctx is cancelled.
func (t *Transport) Serve(ctx context.Context, lis net.Listener) error {
	t.syncStatus()

	go func() {
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				slog.Info("grpc transport shutting down")
				t.status.Shutdown()
				t.server.GracefulStop()
				return
			case <-ticker.C:
				t.syncStatus()
			}
		}
	}()

	if err := t.server.Serve(lis); err != nil {
		return fmt.Errorf("grpc serve: %w", err)
	}
	return nil
}

// syncStatus copies the readiness state into the health service.
func (t *Transport) syncStatus() {
	st := healthpb.HealthCheckResponse_SERVING
	if t.health != nil {
		if err := t.health.Ready(); err != nil {
			st = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	t.status.SetServingStatus("", st)
	t.status.SetServingStatus(ServiceName, st)
}

// Close gracefully stops the gRPC server.
func (t *Transport) Close() error {
	t.status.Shutdown()
	t.server.GracefulStop()
	return nil
}
