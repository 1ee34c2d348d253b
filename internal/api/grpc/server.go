package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"rental-engine-backend/internal/api/grpc/interceptor"
	"rental-engine-backend/internal/logger"
	"rental-engine-backend/internal/security"
)

// ServiceName is the health service name reported alongside the overall "" status.
const ServiceName = "rental.engine"

// Pinger reports whether the backing store is reachable.
type Pinger func(ctx context.Context) error

// Server is the gRPC listener: health checking, plus reflection when enabled,
// behind the auth interceptor.
type Server struct {
	*grpc.Server
	health *health.Server
	ping   Pinger
}

func NewServer(tm security.TokenManager, ping Pinger, withReflection bool) *Server {
	auth := interceptor.NewAuthInterceptor(tm)
	s := grpc.NewServer(
		grpc.UnaryInterceptor(auth.Unary()),
		grpc.StreamInterceptor(auth.Stream()),
	)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)

	// Register reflection service for grpcurl
	if withReflection {
		reflection.Register(s)
	}

	srv := &Server{Server: s, health: hs, ping: ping}
	srv.setStatus(healthpb.HealthCheckResponse_SERVING)
	return srv
}

// CheckNow pings the store once and updates the reported status.
func (s *Server) CheckNow(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	if s.ping != nil {
		if err := s.ping(ctx); err != nil {
			logger.Warn("Health check failed", "error", err)
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	s.setStatus(status)
	return status
}

// WatchStore re-checks the store every interval until ctx is done.
func (s *Server) WatchStore(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			checkCtx, cancel := context.WithTimeout(ctx, interval/2)
			s.CheckNow(checkCtx)
			cancel()
		}
	}
}

// Shutdown marks every service NOT_SERVING and drains in-flight RPCs.
func (s *Server) Shutdown() {
	s.health.Shutdown()
	s.GracefulStop()
}

func (s *Server) setStatus(status healthpb.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}
