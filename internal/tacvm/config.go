package tacvm

import "go.uber.org/zap"

// FlagFloat marks an instruction's operands as float32 rather than
// int32/uint32. It only affects how a CONSTANT operand's raw payload
// bits are interpreted on decode — TEMPORARY/VARIABLE operands carry
// their own ValueTag from whatever was last stored into that slot.
const FlagFloat uint16 = 1 << 0

// Config carries the engine's construction-time parameters. Every field
// has a usable zero-adjacent default applied by Open; a host only needs
// to set what it cares about.
type Config struct {
	MaxTemporaries uint32
	MaxVariables   uint32
	MaxCallDepth   uint32
	// MaxSteps bounds the instructions executed since the last Start,
	// counted across Step and Run calls, and is Run's budget when it is
	// called with 0; 0 means unlimited. Reaching it surfaces
	// STEP_LIMIT_EXCEEDED and leaves the engine PAUSED rather than ERROR.
	// Step, Run and Start all refuse a PAUSED engine, so execution does
	// not continue from there; Stop or Reset are the only ways out.
	MaxSteps uint64
	// HeapSize is the size in bytes of the engine's memory arena.
	HeapSize int
	// CheckedArithmetic selects OVERFLOW errors over silent two's
	// complement wraparound for INT32 ADD/SUB/MUL/NEG. UINT32 arithmetic
	// always wraps. Wrap is the spec's recommended default.
	CheckedArithmetic bool
	EnableTracing     bool
	Trace             TraceSink
	Logger            *zap.SugaredLogger
}

// DefaultConfig returns the engine defaults referenced by spec section
// 6's "TAC engine defaults supplied via a default_config value".
func DefaultConfig() Config {
	return Config{
		MaxTemporaries: 256,
		MaxVariables:   256,
		MaxCallDepth:   64,
		MaxSteps:       0,
		HeapSize:       32 * 1024,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxTemporaries == 0 {
		c.MaxTemporaries = d.MaxTemporaries
	}
	if c.MaxVariables == 0 {
		c.MaxVariables = d.MaxVariables
	}
	if c.MaxCallDepth == 0 {
		c.MaxCallDepth = d.MaxCallDepth
	}
	if c.HeapSize == 0 {
		c.HeapSize = d.HeapSize
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop().Sugar()
	}
	return c
}
