/*
Package tracing times command invocations and the connector requests they
make.

A workflow run is one trace; every request it sends is a child span. Spans
travel in the context and are written to the debug log when finished, so
a slow or failing command can be followed request by request:

	span, ctx := tracer.StartSpan(ctx, "workflow create")
	defer tracer.Finish(span)

	child, ctx := tracer.StartSpan(ctx, "element/chunk/create")
	child.SetTag("status", "200")
	tracer.Finish(child)

A nil *Tracer is valid and only hands out ids.
*/
package tracing
