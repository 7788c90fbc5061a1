package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/notehub/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// loggingInterceptor attaches a per-call logger to the context and logs
// the outcome of every unary call.
func (s *GRPCServer) loggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	log := s.logger.With("method", info.FullMethod)

	resp, err := handler(logging.WithLogger(ctx, log), req)

	code := status.Code(err)
	if err != nil {
		log.Warn(ctx, "call failed", "code", code.String(), "duration", time.Since(start), "error", err)
	} else {
		log.Debug(ctx, "call completed", "code", code.String(), "duration", time.Since(start))
	}

	return resp, err
}
