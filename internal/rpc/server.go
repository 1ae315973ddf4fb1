package rpc

import (
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"booking-api/internal/handler"
	"booking-api/internal/middleware"
)

// NewServer builds a gRPC server with logging and auth interceptors, the
// booking service and the standard health service.
func NewServer(h *handler.Handler, authn *middleware.Authenticator, log *zap.Logger) (*grpc.Server, *health.Server) {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			middleware.UnaryLogging(log),
			middleware.UnaryAuth(authn),
		),
	)
	Register(srv, NewService(h))

	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	return srv, hs
}
