package tacvm

import (
	"math"

	"github.com/iamNilotpal/cc0/internal/tacstore"
	"github.com/iamNilotpal/cc0/pkg/errors"
)

func opcodeName(op tacstore.Opcode) string {
	switch op {
	case tacstore.OpNop:
		return "NOP"
	case tacstore.OpMove:
		return "MOVE"
	case tacstore.OpAdd:
		return "ADD"
	case tacstore.OpSub:
		return "SUB"
	case tacstore.OpMul:
		return "MUL"
	case tacstore.OpDiv:
		return "DIV"
	case tacstore.OpMod:
		return "MOD"
	case tacstore.OpNeg:
		return "NEG"
	case tacstore.OpCmpEq:
		return "CMP_EQ"
	case tacstore.OpCmpNe:
		return "CMP_NE"
	case tacstore.OpCmpLt:
		return "CMP_LT"
	case tacstore.OpCmpLe:
		return "CMP_LE"
	case tacstore.OpCmpGt:
		return "CMP_GT"
	case tacstore.OpCmpGe:
		return "CMP_GE"
	case tacstore.OpAnd:
		return "AND"
	case tacstore.OpOr:
		return "OR"
	case tacstore.OpXor:
		return "XOR"
	case tacstore.OpNot:
		return "NOT"
	case tacstore.OpShl:
		return "SHL"
	case tacstore.OpShr:
		return "SHR"
	case tacstore.OpJump:
		return "JUMP"
	case tacstore.OpJumpIfZero:
		return "JUMP_IF_ZERO"
	case tacstore.OpJumpIfNonZero:
		return "JUMP_IF_NONZERO"
	case tacstore.OpCall:
		return "CALL"
	case tacstore.OpReturn:
		return "RETURN"
	case tacstore.OpLoad:
		return "LOAD"
	case tacstore.OpStore:
		return "STORE"
	case tacstore.OpHalt:
		return "HALT"
	default:
		return "UNKNOWN"
	}
}

// decodeOperand resolves an operand to a runtime Value. CONSTANT payloads
// are interpreted as float32 bit patterns when ins carries FlagFloat,
// int32 otherwise; TEMPORARY/VARIABLE carry whatever ValueTag was last
// stored into that slot.
func (e *Engine) decodeOperand(ins tacstore.Instruction, op tacstore.Operand) (Value, error) {
	switch op.Tag {
	case tacstore.OperandNone:
		return Value{}, nil
	case tacstore.OperandConstant:
		if ins.Flags&FlagFloat != 0 {
			return Value{Tag: ValueFloat32, F32: math.Float32frombits(uint32(op.Payload))}, nil
		}
		return intValue(op.Payload), nil
	case tacstore.OperandLabel:
		return intValue(op.Payload), nil
	case tacstore.OperandTemporary:
		id := uint32(op.Payload)
		if id >= uint32(len(e.temps)) {
			return Value{}, e.err(errors.ErrorCodeInvalidOperand, "temporary id out of range", ins.Opcode)
		}
		return e.temps[id], nil
	case tacstore.OperandVariable:
		id := uint32(op.Payload)
		if id >= uint32(len(e.vars)) {
			return Value{}, e.err(errors.ErrorCodeInvalidOperand, "variable id out of range", ins.Opcode)
		}
		return e.vars[id], nil
	default:
		return Value{}, e.err(errors.ErrorCodeInvalidOperand, "unrecognized operand tag", ins.Opcode)
	}
}

// storeResult writes v into the slot named by a TEMPORARY/VARIABLE
// destination operand. OperandNone discards the result.
func (e *Engine) storeResult(ins tacstore.Instruction, dest tacstore.Operand, v Value) error {
	switch dest.Tag {
	case tacstore.OperandNone:
		return nil
	case tacstore.OperandTemporary:
		id := uint32(dest.Payload)
		if id >= uint32(len(e.temps)) {
			return e.err(errors.ErrorCodeInvalidOperand, "temporary id out of range", ins.Opcode)
		}
		e.temps[id] = v
		return nil
	case tacstore.OperandVariable:
		id := uint32(dest.Payload)
		if id >= uint32(len(e.vars)) {
			return e.err(errors.ErrorCodeInvalidOperand, "variable id out of range", ins.Opcode)
		}
		e.vars[id] = v
		return nil
	default:
		return e.err(errors.ErrorCodeInvalidOperand, "destination operand must be a register", ins.Opcode)
	}
}

// execute runs ins, returning the value it produced (for tracing), an
// explicit next PC when control flow redirected (nil means "fall
// through to PC+1" handled by the caller), and any execution error.
func (e *Engine) execute(ins tacstore.Instruction) (Value, *uint32, error) {
	switch ins.Opcode {
	case tacstore.OpNop:
		return Value{}, nil, nil

	case tacstore.OpMove:
		v, err := e.decodeOperand(ins, ins.Src1)
		if err != nil {
			return Value{}, nil, err
		}
		return v, nil, e.storeResult(ins, ins.Dest, v)

	case tacstore.OpAdd, tacstore.OpSub, tacstore.OpMul, tacstore.OpDiv, tacstore.OpMod:
		return e.executeArith(ins)

	case tacstore.OpNeg:
		return e.executeNeg(ins)

	case tacstore.OpCmpEq, tacstore.OpCmpNe, tacstore.OpCmpLt, tacstore.OpCmpLe, tacstore.OpCmpGt, tacstore.OpCmpGe:
		return e.executeCompare(ins)

	case tacstore.OpAnd, tacstore.OpOr, tacstore.OpXor, tacstore.OpShl, tacstore.OpShr:
		return e.executeBitwise(ins)

	case tacstore.OpNot:
		return e.executeNot(ins)

	case tacstore.OpJump:
		target, err := e.jumpTarget(ins, ins.Src1)
		if err != nil {
			return Value{}, nil, err
		}
		return Value{}, &target, nil

	case tacstore.OpJumpIfZero, tacstore.OpJumpIfNonZero:
		return e.executeConditionalJump(ins)

	case tacstore.OpCall:
		return e.executeCall(ins)

	case tacstore.OpReturn:
		return e.executeReturn(ins)

	case tacstore.OpLoad:
		return e.executeLoad(ins)

	case tacstore.OpStore:
		return e.executeStore(ins)

	case tacstore.OpHalt:
		e.state = StateHalted
		return Value{}, nil, nil

	default:
		return Value{}, nil, e.err(errors.ErrorCodeInvalidInstruction, "unrecognized opcode", ins.Opcode)
	}
}

func (e *Engine) jumpTarget(ins tacstore.Instruction, op tacstore.Operand) (uint32, error) {
	v, err := e.decodeOperand(ins, op)
	if err != nil {
		return 0, err
	}
	i, ok := v.asInt32()
	if !ok || i < 0 {
		return 0, e.err(errors.ErrorCodeInvalidOperand, "jump target must be an integer PC", ins.Opcode)
	}
	target := uint32(i)
	if target >= uint32(len(e.code)) {
		return 0, e.err(errors.ErrorCodeInvalidAddress, "jump target outside loaded code", ins.Opcode).
			WithDetail("target", target)
	}
	return target, nil
}

func (e *Engine) executeConditionalJump(ins tacstore.Instruction) (Value, *uint32, error) {
	cond, err := e.decodeOperand(ins, ins.Src1)
	if err != nil {
		return Value{}, nil, err
	}
	zero, ok := cond.isZero()
	if !ok {
		return Value{}, nil, e.err(errors.ErrorCodeInvalidOperand, "jump condition must be an integer", ins.Opcode)
	}

	branch := zero
	if ins.Opcode == tacstore.OpJumpIfNonZero {
		branch = !zero
	}
	if !branch {
		return cond, nil, nil
	}

	target, err := e.jumpTarget(ins, ins.Src2)
	if err != nil {
		return Value{}, nil, err
	}
	return cond, &target, nil
}

func (e *Engine) executeCall(ins tacstore.Instruction) (Value, *uint32, error) {
	target, err := e.jumpTarget(ins, ins.Src1)
	if err != nil {
		return Value{}, nil, err
	}
	if uint32(len(e.callStack)) >= e.cfg.MaxCallDepth {
		return Value{}, nil, e.err(errors.ErrorCodeStackOverflow, "call stack depth limit reached", ins.Opcode)
	}
	e.callStack = append(e.callStack, e.pc+1)
	return Value{}, &target, nil
}

func (e *Engine) executeReturn(ins tacstore.Instruction) (Value, *uint32, error) {
	if len(e.callStack) == 0 {
		return Value{}, nil, e.err(errors.ErrorCodeStackUnderflow, "return with empty call stack", ins.Opcode)
	}
	n := len(e.callStack) - 1
	target := e.callStack[n]
	e.callStack = e.callStack[:n]
	return Value{}, &target, nil
}

// memWidth resolves the Src2/width operand of LOAD/STORE to a byte count
// in {1, 2, 4}.
func (e *Engine) memWidth(ins tacstore.Instruction, op tacstore.Operand) (int, error) {
	v, err := e.decodeOperand(ins, op)
	if err != nil {
		return 0, err
	}
	w, ok := v.asInt32()
	if !ok || (w != 1 && w != 2 && w != 4) {
		return 0, e.err(errors.ErrorCodeInvalidOperand, "memory width must be 1, 2, or 4", ins.Opcode)
	}
	return int(w), nil
}

func (e *Engine) executeLoad(ins tacstore.Instruction) (Value, *uint32, error) {
	addrV, err := e.decodeOperand(ins, ins.Src1)
	if err != nil {
		return Value{}, nil, err
	}
	addr, ok := addrV.asInt32()
	if !ok {
		return Value{}, nil, e.err(errors.ErrorCodeInvalidOperand, "load address must be an integer", ins.Opcode)
	}
	width, err := e.memWidth(ins, ins.Src2)
	if err != nil {
		return Value{}, nil, err
	}

	buf := make([]byte, width)
	if err := e.ReadMemory(uint32(addr), buf); err != nil {
		return Value{}, nil, err
	}

	var out int32
	for i := width - 1; i >= 0; i-- {
		out = out<<8 | int32(buf[i])
	}
	v := intValue(out)
	return v, nil, e.storeResult(ins, ins.Dest, v)
}

func (e *Engine) executeStore(ins tacstore.Instruction) (Value, *uint32, error) {
	addrV, err := e.decodeOperand(ins, ins.Dest)
	if err != nil {
		return Value{}, nil, err
	}
	addr, ok := addrV.asInt32()
	if !ok {
		return Value{}, nil, e.err(errors.ErrorCodeInvalidOperand, "store address must be an integer", ins.Opcode)
	}
	val, err := e.decodeOperand(ins, ins.Src1)
	if err != nil {
		return Value{}, nil, err
	}
	width, err := e.memWidth(ins, ins.Src2)
	if err != nil {
		return Value{}, nil, err
	}
	raw, ok := val.asInt32()
	if !ok {
		return Value{}, nil, e.err(errors.ErrorCodeInvalidOperand, "store value must be an integer", ins.Opcode)
	}

	buf := make([]byte, width)
	for i := 0; i < width; i++ {
		buf[i] = byte(raw >> (8 * i))
	}
	if err := e.WriteMemory(uint32(addr), buf); err != nil {
		return Value{}, nil, err
	}
	return val, nil, nil
}
