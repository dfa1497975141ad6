// Package requestcontext holds request-scoped values that middleware sets and
// services read, without pulling net/http into the services.
//
// Usage in middleware:
//
//	ctx = requestcontext.WithRequestID(ctx, id)
//	ctx = requestcontext.WithPrincipal(ctx, userID, jti, expiresAt)
//
// Usage in services:
//
//	userID := requestcontext.UserID(ctx)
//	now := requestcontext.Now(ctx)
package requestcontext

import (
	"context"
	"time"
)

type (
	requestIDKey   struct{}
	principalKey   struct{}
	userAgentKey   struct{}
	clientIPKey    struct{}
	requestTimeKey struct{}
)

// Principal is the caller identified by a bearer token.
type Principal struct {
	UserID    string
	TokenID   string
	ExpiresAt time.Time
}

func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// WithPrincipal records the authenticated caller.
func WithPrincipal(ctx context.Context, userID, tokenID string, expiresAt time.Time) context.Context {
	return context.WithValue(ctx, principalKey{}, Principal{UserID: userID, TokenID: tokenID, ExpiresAt: expiresAt})
}

// CurrentPrincipal returns the caller, if the request was authenticated.
func CurrentPrincipal(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// UserID returns the authenticated user id or "".
func UserID(ctx context.Context) string {
	p, _ := CurrentPrincipal(ctx)
	return p.UserID
}

// WithClientMetadata injects client IP and User-Agent.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, clientIPKey{}, clientIP)
	return context.WithValue(ctx, userAgentKey{}, userAgent)
}

func ClientIP(ctx context.Context) string {
	if v, ok := ctx.Value(clientIPKey{}).(string); ok {
		return v
	}
	return ""
}

func UserAgent(ctx context.Context) string {
	if v, ok := ctx.Value(userAgentKey{}).(string); ok {
		return v
	}
	return ""
}

// Now returns the request-scoped time, or time.Now outside a request.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
