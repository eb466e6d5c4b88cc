package ctxutil

import "context"

type traceKey struct{}

// TraceData carries the correlation ids stamped on every request. TraceID
// follows the request across the transcription pipeline and into the speech
// provider calls; RequestID identifies the single HTTP exchange.
type TraceData struct {
	TraceID   string
	RequestID string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	if td == nil {
		return ctx
	}
	return context.WithValue(ctx, traceKey{}, td)
}

// GetTraceData returns the ids set by the trace middleware, or nil when the
// context never passed through it (background jobs, tests).
func GetTraceData(ctx context.Context) *TraceData {
	td, _ := ctx.Value(traceKey{}).(*TraceData)
	return td
}
