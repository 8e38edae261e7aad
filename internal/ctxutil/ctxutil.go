package ctxutil

import (
	"context"
	"time"
)

// private keys to avoid collisions
type key int

const (
	keyRequestID key = iota
	keyAdminID
)

// WithRequestID stores the inbound request id for log correlation.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keyRequestID, id)
}

func RequestID(ctx context.Context) (string, bool) {
	v := ctx.Value(keyRequestID)
	if v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// WithAdminID stores the acting admin for decision audit logs.
func WithAdminID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keyAdminID, id)
}

func AdminID(ctx context.Context) (string, bool) {
	v := ctx.Value(keyAdminID)
	if v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// DefaultDBTimeout bounds every single statement; report fan-outs issue
// several statements, each under its own timeout.
var DefaultDBTimeout = 5 * time.Second

// WithTimeout is a guard wrapper over context.WithTimeout.
func WithTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, d)
}

// WithDBTimeout applies the standard DB timeout, respecting a shorter
// parent deadline.
func WithDBTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	if dl, ok := parent.Deadline(); ok {
		if remain := time.Until(dl); remain < DefaultDBTimeout {
			return context.WithTimeout(parent, remain)
		}
	}
	return context.WithTimeout(parent, DefaultDBTimeout)
}
