// Package auth reads caller identity forwarded by the gateway. The service
// does not authenticate; the identity is used for audit logging only.
package auth

import (
	"context"

	"google.golang.org/grpc/metadata"
)

const userIDHeader = "x-user-id"

// GetUserID returns the forwarded user id, or "" when the call carries none.
func GetUserID(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if val := md.Get(userIDHeader); len(val) > 0 {
		return val[0]
	}
	return ""
}
