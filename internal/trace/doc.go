// Package trace records what atremap does while it rewrites files.
//
// It is the structured log of the tool: every command, operation, file and
// (at the most verbose level) line produces begin/end or point events that
// can be streamed to stderr or a file, or kept in a ring buffer and dumped
// when an operation fails.
//
// # Usage
//
//	atremap rename --trace=- --trace-level=detail --mappings m.tsrg at/*.cfg
//
// # Levels
//
//   - LevelOff: No tracing
//   - LevelError: Only failure dumps
//   - LevelPhase: Commands and operations (load mappings, rename, archive)
//   - LevelDetail: Per-file and per-entry events
//   - LevelDebug: Everything including rewritten lines
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopeOperation, "rename", 0)
//	defer span.End("")
package trace
