/*
Package runtime provides small supporting data structures for the parser
runtime: a call stack of diagnostic frames (StackFrame/CallStack) and a
truncated walk-trace ring buffer, both referenced from a ParserContext
(spec §3, §7).

License

Governed by a 3-Clause BSD license.
*/
package runtime

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'scanless.runtime'.
func tracer() tracing.Trace {
	return tracing.Select("scanless.runtime")
}
