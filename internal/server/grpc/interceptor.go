package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()

	resp, err := handler(ctx, req)

	args := []any{
		"method", info.FullMethod,
		"code", status.Code(err).String(),
		"duration", time.Since(start).String(),
	}
	if err != nil {
		s.logger.Warn(ctx, "rpc failed", append(args, "error", err)...)
		return resp, err
	}
	s.logger.Debug(ctx, "rpc completed", args...)

	return resp, nil
}
