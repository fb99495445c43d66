package context

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RequestContextKey represents keys used in request context
type RequestContextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey RequestContextKey = "request_id"
	// StartTimeKey is the context key for request start time
	StartTimeKey RequestContextKey = "start_time"
	// HTMXKey marks requests issued by the page script rather than a full navigation
	HTMXKey RequestContextKey = "htmx"
)

// RequestHeader is read and forwarded so backend logs correlate with ours
const RequestHeader = "X-Request-ID"

// RequestInfo holds information about the current request
type RequestInfo struct {
	ID        string    `json:"request_id"`
	StartTime time.Time `json:"start_time"`
	Partial   bool      `json:"partial"`
}

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithStartTime adds a start time to the context
func WithStartTime(ctx context.Context, startTime time.Time) context.Context {
	return context.WithValue(ctx, StartTimeKey, startTime)
}

// GetStartTime retrieves the start time from context
func GetStartTime(ctx context.Context) time.Time {
	if startTime, ok := ctx.Value(StartTimeKey).(time.Time); ok {
		return startTime
	}
	return time.Time{}
}

// WithPartial records whether the caller wants a fragment instead of a page
func WithPartial(ctx context.Context, partial bool) context.Context {
	return context.WithValue(ctx, HTMXKey, partial)
}

// IsPartial reports whether the request asked for a fragment
func IsPartial(ctx context.Context) bool {
	partial, _ := ctx.Value(HTMXKey).(bool)
	return partial
}

// NewRequestContext stamps ctx with a request ID, reusing an inbound one
func NewRequestContext(ctx context.Context, inboundID string) context.Context {
	requestID := inboundID
	if _, err := uuid.Parse(requestID); err != nil {
		requestID = uuid.New().String()
	}
	ctx = WithRequestID(ctx, requestID)
	return WithStartTime(ctx, time.Now())
}

// GetRequestInfo extracts all request information from context
func GetRequestInfo(ctx context.Context) RequestInfo {
	return RequestInfo{
		ID:        GetRequestID(ctx),
		StartTime: GetStartTime(ctx),
		Partial:   IsPartial(ctx),
	}
}
