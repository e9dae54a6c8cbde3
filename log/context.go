package log

import "context"

type contextKey string

const contextKeyTraceID contextKey = "logContextKeyTraceID"

// PutTraceID attaches a trace identifier to the context so that
// every log statement issued for the same request carries it
func PutTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, contextKeyTraceID, traceID)
}

// GetTraceID returns the trace identifier attached to the context,
// or the empty string if there is none
func GetTraceID(ctx context.Context) string {
	v := ctx.Value(contextKeyTraceID)
	if v == nil {
		return ""
	}

	traceID, ok := v.(string)
	if !ok {
		return ""
	}

	return traceID
}
