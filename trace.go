package scanless

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'scanless.parser'.
func tracer() tracing.Trace {
	return tracing.Select("scanless.parser")
}
