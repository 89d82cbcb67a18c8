// Package contexthelpers stores request-scoped values in the request context.
package contexthelpers

import (
	"context"
	"net/http"
)

type contextKey string

const (
	currentPathContextKey = contextKey("currentPath")
	cspNonceContextKey    = contextKey("cspNonce")
	traceIDContextKey     = contextKey("traceID")
)

func value(ctx context.Context, key contextKey) string {
	v, ok := ctx.Value(key).(string)
	if !ok {
		return ""
	}
	return v
}

func with(r *http.Request, key contextKey, v string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), key, v))
}

func CurrentPath(ctx context.Context) string {
	return value(ctx, currentPathContextKey)
}

func SetCurrentPath(r *http.Request, currentPath string) *http.Request {
	return with(r, currentPathContextKey, currentPath)
}

// CSPNonce returns the nonce script and style tags need to pass the Content-Security-Policy.
func CSPNonce(ctx context.Context) string {
	return value(ctx, cspNonceContextKey)
}

func SetCSPNonce(r *http.Request, cspNonce string) *http.Request {
	return with(r, cspNonceContextKey, cspNonce)
}

// TraceID identifies the request in logs and error responses.
func TraceID(ctx context.Context) string {
	return value(ctx, traceIDContextKey)
}

func SetTraceID(r *http.Request, traceID string) *http.Request {
	return with(r, traceIDContextKey, traceID)
}
