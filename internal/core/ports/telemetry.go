package ports

import "context"

//go:generate mockgen -source=telemetry.go -destination=mocks/mock_telemetry.go -package=mocks

// Span names emitted by the build pipeline.
const (
	SpanBuild   = "build"
	SpanResolve = "resolve"
	SpanFetch   = "fetch"
	SpanMerge   = "merge"
)

// Span attribute keys.
const (
	AttrRequestID   = "request_id"
	AttrFingerprint = "fingerprint"
	AttrCacheHit    = "cache_hit"
	AttrPlatform    = "platform"
	AttrMode        = "mode"
	AttrPackages    = "packages"
	AttrMissing     = "missing"
	AttrPatches     = "patches"
	AttrIncluded    = "included"
)

// Tracer opens spans around pipeline stages.
type Tracer interface {
	Start(ctx context.Context, name string, opts ...SpanOption) (context.Context, Span)
}

// Span is one traced pipeline stage.
type Span interface {
	End()
	// RecordError marks the span failed. A nil error is ignored.
	RecordError(err error)
	SetAttribute(key string, value any)
}

// SpanConfig collects the options passed to Tracer.Start.
type SpanConfig struct {
	Attributes map[string]any
}

// SpanOption configures a span at start.
type SpanOption func(*SpanConfig)

// WithAttribute sets an attribute when the span starts.
func WithAttribute(key string, value any) SpanOption {
	return func(c *SpanConfig) {
		if c.Attributes == nil {
			c.Attributes = make(map[string]any, 2)
		}
		c.Attributes[key] = value
	}
}
