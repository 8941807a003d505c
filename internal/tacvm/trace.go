package tacvm

import "github.com/iamNilotpal/cc0/internal/tacstore"

// TraceEvent is the structured record emitted for each executed
// instruction when tracing is enabled.
type TraceEvent struct {
	PC      uint32
	Opcode  tacstore.Opcode
	Dest    tacstore.Operand
	Src1    tacstore.Operand
	Src2    tacstore.Operand
	Result  Value
}

// TraceSink receives one TraceEvent per executed instruction. The engine
// does not own the sink — the host injects it via Config.Trace — and a
// sink that panics or blocks is the host's problem, not the engine's;
// the only contract the engine upholds is that a sink failure (a panic
// recovered by the caller, or simply a slow consumer) never changes
// engine state. Passing a nil sink disables tracing regardless of
// Config.EnableTracing.
type TraceSink func(TraceEvent)
