// Package tracer provides a lightweight tracing abstraction for the exchange
// core. Reconcilers and the pipeline emit spans through this interface so
// they stay decoupled from OpenTelemetry APIs; production wires the otel
// adapter, tests wire the noop.
package tracer

import (
	"context"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span, recording any error that occurred.
	// End must be called exactly once, typically via defer.
	End(err error)

	// SetAttributes adds key-value pairs to the span.
	SetAttributes(attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	// Start creates a new span with the given name and attributes. The
	// returned context carries the span and should flow to child operations.
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

// String creates a string attribute.
func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

// Int creates an integer attribute.
func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: int64(value)}
}

// Bool creates a boolean attribute.
func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

// Span names used by the exchange core.
const (
	SpanSetup          = "exchange.setup"
	SpanProtocolQuery  = "exchange.protocol.query"
	SpanProtocolConfig = "exchange.protocol.configure"
	SpanManifestSync   = "exchange.manifest.sync"
	SpanPipeline       = "exchange.pipeline"
)

// Attribute keys used by the exchange core.
const (
	AttrManifestID = "manifest_id"
	AttrRecordID   = "record_id"
	AttrAuthor     = "author"
	AttrStage      = "stage"
	AttrCreated    = "created_count"
	AttrMissing    = "missing_count"
)
