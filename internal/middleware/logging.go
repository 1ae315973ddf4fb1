package middleware

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"booking-api/internal/logger"
)

// UnaryLogging attaches a request logger to the context and logs each call.
func UnaryLogging(base *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		l := base.With(
			zap.String("request_id", uuid.NewString()),
			zap.String("method", info.FullMethod),
		)
		ctx = logger.ToContext(ctx, l)

		start := time.Now()
		resp, err := next(ctx, req)
		l.Info("grpc",
			zap.String("code", status.Code(err).String()),
			zap.Duration("duration", time.Since(start)),
		)
		return resp, err
	}
}
