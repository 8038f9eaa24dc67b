// Package event implements an in-process event bus with hierarchical
// pattern routing and per-handler fault isolation.
//
// Keys are dot-separated segments ("user.login"). Subscriptions use the same
// grammar plus two wildcards: "*" matches exactly one segment and "**",
// allowed only as the last segment, matches zero or more trailing segments.
//
//	bus := event.NewBuilder().MetricsSink(sink).Build()
//	bus.MustSubscribe("user.*", func(p event.Payload) { ... })
//	report := bus.EmitAndReport("user.login", event.NewTextPayload("alice"))
//
// Every emit runs synchronously: handlers are invoked one after another on
// the caller's goroutine, in registration order. With panic catching enabled
// (the default) a panicking handler is recorded as a Panic outcome and the
// remaining handlers still run.
//
// Building with -tags eventtrace compiles in a span per emit and per handler
// for buses built with Tracing(true).
package event
