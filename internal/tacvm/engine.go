// Package tacvm is the register-based TAC (three-address code) bytecode
// interpreter: a typed Value model, a temporary/variable register file,
// a bump/free-list heap, a bounded call stack, and a small state machine
// (CREATED → LOADED → RUNNING → {PAUSED | HALTED | ERROR}) gating which
// operations are legal when. There is no teacher analog for this
// package — it is built fresh, in the teacher's idiom: constructor
// injection, *zap.SugaredLogger, a dedicated pkg/errors.EngineError
// hierarchy, and an explicit Config rather than package-level state.
package tacvm

import (
	"github.com/iamNilotpal/cc0/internal/tacstore"
	"github.com/iamNilotpal/cc0/pkg/errors"
	"go.uber.org/zap"
)

// Engine is the TAC interpreter. It is not safe for concurrent use —
// spec section 5 specifies the entire core as single-threaded
// cooperative, so Engine takes no internal lock.
type Engine struct {
	cfg   Config
	log   *zap.SugaredLogger
	state State

	code []tacstore.Instruction
	pc   uint32

	steps     uint64
	temps     []Value
	vars      []Value
	callStack []uint32
	heap      *heap
}

// Open allocates a new engine in CREATED.
func Open(cfg Config) (*Engine, error) {
	cfg = cfg.withDefaults()
	return &Engine{
		cfg:   cfg,
		log:   cfg.Logger,
		state: StateCreated,
		temps: make([]Value, cfg.MaxTemporaries),
		vars:  make([]Value, cfg.MaxVariables),
		heap:  newHeap(cfg.HeapSize),
	}, nil
}

// Close releases the engine's resources. Legal in any state.
func (e *Engine) Close() error {
	e.code = nil
	e.temps = nil
	e.vars = nil
	e.callStack = nil
	e.heap = nil
	return nil
}

func (e *Engine) err(code errors.ErrorCode, msg string, opcode tacstore.Opcode) *errors.EngineError {
	return errors.NewEngineError(nil, code, msg).
		WithPC(int(e.pc)).WithState(e.state.String()).WithOpcode(opcodeName(opcode))
}

// LoadCode copies insns into the engine and enters LOADED. Legal from
// CREATED, LOADED, HALTED, or ERROR — never while RUNNING.
func (e *Engine) LoadCode(insns []tacstore.Instruction) error {
	if e.state == StateRunning {
		return e.err(errors.ErrorCodeBusy, "cannot load code while RUNNING", tacstore.OpNop)
	}
	if len(insns) == 0 {
		return e.err(errors.ErrorCodeInvalidInput, "load_code requires at least one instruction", tacstore.OpNop)
	}

	e.code = make([]tacstore.Instruction, len(insns))
	copy(e.code, insns)
	e.state = StateLoaded
	return nil
}

// Start resets step/call accounting, sets PC to entryPC, and enters
// RUNNING. Legal from LOADED or HALTED.
func (e *Engine) Start(entryPC uint32) error {
	if e.state != StateLoaded && e.state != StateHalted {
		return e.err(errors.ErrorCodeBusy, "start requires LOADED or HALTED", tacstore.OpNop).
			WithDetail("state", e.state.String())
	}
	if entryPC >= uint32(len(e.code)) {
		return e.err(errors.ErrorCodeInvalidAddress, "entry_pc out of range", tacstore.OpNop)
	}

	e.pc = entryPC
	e.steps = 0
	e.callStack = e.callStack[:0]
	e.state = StateRunning
	return nil
}

// Stop transitions RUNNING or PAUSED to HALTED without executing
// further instructions.
func (e *Engine) Stop() error {
	if e.state == StateRunning || e.state == StatePaused {
		e.state = StateHalted
	}
	return nil
}

// Reset clears temporaries, variables, the heap, and the call stack, and
// returns to LOADED. Legal from any state except CREATED.
func (e *Engine) Reset() error {
	if e.state == StateCreated {
		return e.err(errors.ErrorCodeBusy, "reset requires code to have been loaded first", tacstore.OpNop)
	}

	for i := range e.temps {
		e.temps[i] = Value{}
	}
	for i := range e.vars {
		e.vars[i] = Value{}
	}
	e.heap.reset()
	e.callStack = e.callStack[:0]
	e.pc = 0
	e.steps = 0
	e.state = StateLoaded
	return nil
}

// GetState returns the engine's current lifecycle state.
func (e *Engine) GetState() State { return e.state }

// GetStepCount returns the number of instructions executed since the
// last Start or Reset.
func (e *Engine) GetStepCount() uint64 { return e.steps }

// GetTemporary reads temporary id. Legal in any state.
func (e *Engine) GetTemporary(id uint32) (Value, error) {
	if id >= uint32(len(e.temps)) {
		return Value{}, e.err(errors.ErrorCodeInvalidOperand, "temporary id out of range", tacstore.OpNop)
	}
	return e.temps[id], nil
}

// SetTemporary writes temporary id. Legal in any state.
func (e *Engine) SetTemporary(id uint32, v Value) error {
	if id >= uint32(len(e.temps)) {
		return e.err(errors.ErrorCodeInvalidOperand, "temporary id out of range", tacstore.OpNop)
	}
	e.temps[id] = v
	return nil
}

// GetVariable reads variable id. Legal in any state.
func (e *Engine) GetVariable(id uint32) (Value, error) {
	if id >= uint32(len(e.vars)) {
		return Value{}, e.err(errors.ErrorCodeInvalidOperand, "variable id out of range", tacstore.OpNop)
	}
	return e.vars[id], nil
}

// SetVariable writes variable id. Legal in any state.
func (e *Engine) SetVariable(id uint32, v Value) error {
	if id >= uint32(len(e.vars)) {
		return e.err(errors.ErrorCodeInvalidOperand, "variable id out of range", tacstore.OpNop)
	}
	e.vars[id] = v
	return nil
}

// AllocMemory reserves size bytes in the engine heap, returning 0 on
// exhaustion. Legal in any state.
func (e *Engine) AllocMemory(size uint32) uint32 {
	return e.heap.alloc(size)
}

// FreeMemory releases a prior allocation.
func (e *Engine) FreeMemory(addr uint32) error {
	if !e.heap.free(addr) {
		return e.err(errors.ErrorCodeInvalidAddress, "free of unknown address", tacstore.OpNop).
			WithOperand("addr")
	}
	return nil
}

// ReadMemory copies n bytes starting at addr into buf.
func (e *Engine) ReadMemory(addr uint32, buf []byte) error {
	if !e.heap.read(addr, buf) {
		return e.err(errors.ErrorCodeInvalidAddress, "read outside a live allocation", tacstore.OpNop)
	}
	return nil
}

// WriteMemory copies data into the heap starting at addr.
func (e *Engine) WriteMemory(addr uint32, data []byte) error {
	if !e.heap.write(addr, data) {
		return e.err(errors.ErrorCodeInvalidAddress, "write outside a live allocation", tacstore.OpNop)
	}
	return nil
}

// Step executes exactly one instruction. Legal only while RUNNING.
func (e *Engine) Step() error {
	if e.state != StateRunning {
		return e.err(errors.ErrorCodeNotRunning, "step requires RUNNING", tacstore.OpNop)
	}
	return e.step()
}

// Run executes instructions until HALTED, ERROR, or budget instructions
// have been executed (budget == 0 uses Config.MaxSteps as the budget;
// both zero means unbounded). Legal only while RUNNING.
func (e *Engine) Run(budget uint64) error {
	if e.state != StateRunning {
		return e.err(errors.ErrorCodeNotRunning, "run requires RUNNING", tacstore.OpNop)
	}

	limit := budget
	if limit == 0 {
		limit = e.cfg.MaxSteps
	}

	var executed uint64
	for e.state == StateRunning {
		if limit > 0 && executed >= limit {
			e.state = StatePaused
			return e.err(errors.ErrorCodeStepLimitExceeded, "run budget exhausted", tacstore.OpNop)
		}
		if err := e.step(); err != nil {
			return err
		}
		executed++
	}
	return nil
}

// step executes one instruction assuming the caller already verified
// state == RUNNING.
//
// Every jump/call target is range-checked against len(e.code) at the
// point it is computed (see jumpTarget), and a return pops a pc that a
// CALL pushed as its own pc+1, so the only way pc can reach len(e.code)
// here is falling past the last instruction, directly or by returning
// from a CALL that was the last instruction. That is a normal program
// end, not a fault.
func (e *Engine) step() error {
	if e.pc >= uint32(len(e.code)) {
		e.state = StateHalted
		return nil
	}

	ins := e.code[e.pc]
	result, nextPC, err := e.execute(ins)
	if err != nil {
		e.state = StateError
		return err
	}

	if e.cfg.EnableTracing && e.cfg.Trace != nil {
		e.trace(ins, result)
	}

	e.steps++

	switch {
	case e.state == StateHalted:
		// OpHalt already set state; leave PC where it landed.
	case nextPC != nil:
		e.pc = *nextPC
	default:
		e.pc++
	}

	if e.state == StateRunning && e.cfg.MaxSteps > 0 && e.steps >= e.cfg.MaxSteps {
		e.state = StatePaused
		return e.err(errors.ErrorCodeStepLimitExceeded, "max_steps reached", ins.Opcode)
	}

	return nil
}

func (e *Engine) trace(ins tacstore.Instruction, result Value) {
	defer func() { _ = recover() }() // a sink failure never changes engine state
	e.cfg.Trace(TraceEvent{
		PC: e.pc, Opcode: ins.Opcode, Dest: ins.Dest, Src1: ins.Src1, Src2: ins.Src2, Result: result,
	})
}
