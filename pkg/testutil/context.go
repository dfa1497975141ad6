package testutil

import (
	"net/http"
	"time"

	"neoquiz/pkg/requestcontext"
)

// WithPrincipal marks the request as authenticated, the way RequireAuth
// would after validating a bearer token.
func WithPrincipal(req *http.Request, userID, tokenID string, expiresAt time.Time) *http.Request {
	ctx := requestcontext.WithPrincipal(req.Context(), userID, tokenID, expiresAt)
	return req.WithContext(ctx)
}

// WithRequestID sets the request id normally assigned by the RequestID
// middleware.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
