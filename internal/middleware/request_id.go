package middleware

import (
	"net/http"

	reqcontext "github.com/prajwalbharadwajbm/campaignstudio/internal/context"
)

// RequestIDMiddleware adds request IDs to incoming requests
type RequestIDMiddleware struct{}

// NewRequestIDMiddleware creates a new request ID middleware
func NewRequestIDMiddleware() *RequestIDMiddleware {
	return &RequestIDMiddleware{}
}

// Middleware returns the HTTP middleware function for request IDs.
// An upstream X-Request-ID is kept when it is a valid UUID.
func (m *RequestIDMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := reqcontext.NewRequestContext(r.Context(), r.Header.Get(reqcontext.RequestHeader))
		ctx = reqcontext.WithPartial(ctx, r.Header.Get("HX-Request") == "true")

		w.Header().Set(reqcontext.RequestHeader, reqcontext.GetRequestID(ctx))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
