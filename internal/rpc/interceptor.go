package rpc

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-production-service/internal/auth"
	"github.com/fekuna/omnipos-production-service/pkg/logger"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// LoggingInterceptor logs every call and turns panics into Internal errors.
func LoggingInterceptor(log logger.ZapLogger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic in handler", zap.String("method", info.FullMethod), zap.Any("panic", r))
				err = status.Error(codes.Internal, fmt.Sprintf("internal error: %v", r))
			}
			code := status.Code(err)
			fields := []zap.Field{
				zap.String("method", info.FullMethod),
				zap.String("code", code.String()),
				zap.Duration("duration", time.Since(start)),
			}
			if userID := auth.GetUserID(ctx); userID != "" {
				fields = append(fields, zap.String("user_id", userID))
			}
			if code == codes.Internal || code == codes.Unknown {
				log.Error("rpc failed", append(fields, zap.Error(err))...)
				return
			}
			log.Info("rpc handled", fields...)
		}()
		return handler(ctx, req)
	}
}
