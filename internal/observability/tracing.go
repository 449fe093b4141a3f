package observability

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/danmuck/zusictl"

// Tracer returns the tracer for exchange spans. Spans are no-ops until the
// embedding program installs a TracerProvider.
func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}
