package tacvm

import (
	"math"

	"github.com/iamNilotpal/cc0/internal/tacstore"
	"github.com/iamNilotpal/cc0/pkg/errors"
)

func (e *Engine) operandPair(ins tacstore.Instruction) (Value, Value, error) {
	a, err := e.decodeOperand(ins, ins.Src1)
	if err != nil {
		return Value{}, Value{}, err
	}
	b, err := e.decodeOperand(ins, ins.Src2)
	if err != nil {
		return Value{}, Value{}, err
	}
	if a.Tag != b.Tag {
		return Value{}, Value{}, e.err(errors.ErrorCodeTypeMismatch, "operands must share a numeric tag", ins.Opcode).
			WithOperand(a.Tag.String() + " vs " + b.Tag.String())
	}
	return a, b, nil
}

func (e *Engine) executeArith(ins tacstore.Instruction) (Value, *uint32, error) {
	a, b, err := e.operandPair(ins)
	if err != nil {
		return Value{}, nil, err
	}

	var result Value
	switch a.Tag {
	case ValueInt32:
		result, err = e.arithInt32(ins, a.I32, b.I32)
	case ValueUint32:
		result, err = e.arithUint32(ins, a.U32, b.U32)
	case ValueFloat32:
		result, err = e.arithFloat32(ins, a.F32, b.F32)
	default:
		return Value{}, nil, e.err(errors.ErrorCodeTypeMismatch, "arithmetic requires a numeric operand tag", ins.Opcode)
	}
	if err != nil {
		return Value{}, nil, err
	}
	return result, nil, e.storeResult(ins, ins.Dest, result)
}

func (e *Engine) arithInt32(ins tacstore.Instruction, a, b int32) (Value, error) {
	switch ins.Opcode {
	case tacstore.OpAdd:
		if e.cfg.CheckedArithmetic {
			sum := a + b
			if ((a ^ sum) & (b ^ sum)) < 0 {
				return Value{}, e.err(errors.ErrorCodeOverflow, "int32 addition overflowed", ins.Opcode)
			}
			return intValue(sum), nil
		}
		return intValue(a + b), nil
	case tacstore.OpSub:
		if e.cfg.CheckedArithmetic {
			diff := a - b
			if ((a ^ b) & (a ^ diff)) < 0 {
				return Value{}, e.err(errors.ErrorCodeOverflow, "int32 subtraction overflowed", ins.Opcode)
			}
			return intValue(diff), nil
		}
		return intValue(a - b), nil
	case tacstore.OpMul:
		if e.cfg.CheckedArithmetic && a != 0 {
			prod := a * b
			if prod/a != b {
				return Value{}, e.err(errors.ErrorCodeOverflow, "int32 multiplication overflowed", ins.Opcode)
			}
			return intValue(prod), nil
		}
		return intValue(a * b), nil
	case tacstore.OpDiv:
		if b == 0 {
			return Value{}, e.err(errors.ErrorCodeDivisionByZero, "integer division by zero", ins.Opcode)
		}
		return intValue(a / b), nil
	case tacstore.OpMod:
		if b == 0 {
			return Value{}, e.err(errors.ErrorCodeDivisionByZero, "integer modulo by zero", ins.Opcode)
		}
		return intValue(a % b), nil
	default:
		return Value{}, e.err(errors.ErrorCodeInvalidInstruction, "not an arithmetic opcode", ins.Opcode)
	}
}

func (e *Engine) arithUint32(ins tacstore.Instruction, a, b uint32) (Value, error) {
	switch ins.Opcode {
	case tacstore.OpAdd:
		return Value{Tag: ValueUint32, U32: a + b}, nil
	case tacstore.OpSub:
		return Value{Tag: ValueUint32, U32: a - b}, nil
	case tacstore.OpMul:
		return Value{Tag: ValueUint32, U32: a * b}, nil
	case tacstore.OpDiv:
		if b == 0 {
			return Value{}, e.err(errors.ErrorCodeDivisionByZero, "integer division by zero", ins.Opcode)
		}
		return Value{Tag: ValueUint32, U32: a / b}, nil
	case tacstore.OpMod:
		if b == 0 {
			return Value{}, e.err(errors.ErrorCodeDivisionByZero, "integer modulo by zero", ins.Opcode)
		}
		return Value{Tag: ValueUint32, U32: a % b}, nil
	default:
		return Value{}, e.err(errors.ErrorCodeInvalidInstruction, "not an arithmetic opcode", ins.Opcode)
	}
}

func (e *Engine) arithFloat32(ins tacstore.Instruction, a, b float32) (Value, error) {
	var r float32
	switch ins.Opcode {
	case tacstore.OpAdd:
		r = a + b
	case tacstore.OpSub:
		r = a - b
	case tacstore.OpMul:
		r = a * b
	case tacstore.OpDiv:
		r = a / b // IEEE inf/NaN on zero divisor, not an error
	case tacstore.OpMod:
		r = float32(math.Mod(float64(a), float64(b)))
	default:
		return Value{}, e.err(errors.ErrorCodeInvalidInstruction, "not an arithmetic opcode", ins.Opcode)
	}
	return Value{Tag: ValueFloat32, F32: r}, nil
}

func (e *Engine) executeNeg(ins tacstore.Instruction) (Value, *uint32, error) {
	v, err := e.decodeOperand(ins, ins.Src1)
	if err != nil {
		return Value{}, nil, err
	}

	var result Value
	switch v.Tag {
	case ValueInt32:
		if e.cfg.CheckedArithmetic && v.I32 == math.MinInt32 {
			return Value{}, nil, e.err(errors.ErrorCodeOverflow, "int32 negation overflowed", ins.Opcode)
		}
		result = intValue(-v.I32)
	case ValueFloat32:
		result = Value{Tag: ValueFloat32, F32: -v.F32}
	default:
		return Value{}, nil, e.err(errors.ErrorCodeTypeMismatch, "negate requires INT32 or FLOAT32", ins.Opcode)
	}
	return result, nil, e.storeResult(ins, ins.Dest, result)
}

func (e *Engine) executeCompare(ins tacstore.Instruction) (Value, *uint32, error) {
	a, b, err := e.operandPair(ins)
	if err != nil {
		return Value{}, nil, err
	}

	var cmp int
	switch a.Tag {
	case ValueInt32:
		cmp = compareOrdered(a.I32, b.I32)
	case ValueUint32:
		cmp = compareOrdered(a.U32, b.U32)
	case ValueFloat32:
		cmp = compareOrdered(a.F32, b.F32)
	case ValueBool:
		cmp = compareOrdered(boolToInt(a.Bool), boolToInt(b.Bool))
	default:
		return Value{}, nil, e.err(errors.ErrorCodeTypeMismatch, "comparison requires a comparable operand tag", ins.Opcode)
	}

	var ok bool
	switch ins.Opcode {
	case tacstore.OpCmpEq:
		ok = cmp == 0
	case tacstore.OpCmpNe:
		ok = cmp != 0
	case tacstore.OpCmpLt:
		ok = cmp < 0
	case tacstore.OpCmpLe:
		ok = cmp <= 0
	case tacstore.OpCmpGt:
		ok = cmp > 0
	case tacstore.OpCmpGe:
		ok = cmp >= 0
	}

	result := boolResultAsInt(ok)
	return result, nil, e.storeResult(ins, ins.Dest, result)
}

// boolResultAsInt represents a comparison's result as Int32 0/1 rather
// than Bool, so it can feed JUMP_IF_ZERO/JUMP_IF_NONZERO directly
// without an extra conversion opcode.
func boolResultAsInt(ok bool) Value {
	if ok {
		return intValue(1)
	}
	return intValue(0)
}

func boolToInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

type ordered interface {
	~int32 | ~uint32 | ~float32
}

func compareOrdered[T ordered](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (e *Engine) executeBitwise(ins tacstore.Instruction) (Value, *uint32, error) {
	a, b, err := e.operandPair(ins)
	if err != nil {
		return Value{}, nil, err
	}

	var result Value
	switch a.Tag {
	case ValueInt32:
		result, err = e.bitwiseInt32(ins, a.I32, b.I32)
	case ValueUint32:
		result = e.bitwiseUint32(ins, a.U32, b.U32)
	default:
		return Value{}, nil, e.err(errors.ErrorCodeTypeMismatch, "bitwise ops require an integer operand tag", ins.Opcode)
	}
	if err != nil {
		return Value{}, nil, err
	}
	return result, nil, e.storeResult(ins, ins.Dest, result)
}

func (e *Engine) bitwiseInt32(ins tacstore.Instruction, a, b int32) (Value, error) {
	switch ins.Opcode {
	case tacstore.OpAnd:
		return intValue(a & b), nil
	case tacstore.OpOr:
		return intValue(a | b), nil
	case tacstore.OpXor:
		return intValue(a ^ b), nil
	case tacstore.OpShl:
		return intValue(a << uint32(b&31)), nil
	case tacstore.OpShr:
		return intValue(a >> uint32(b&31)), nil
	default:
		return Value{}, e.err(errors.ErrorCodeInvalidInstruction, "not a bitwise opcode", ins.Opcode)
	}
}

func (e *Engine) bitwiseUint32(ins tacstore.Instruction, a, b uint32) Value {
	switch ins.Opcode {
	case tacstore.OpAnd:
		return Value{Tag: ValueUint32, U32: a & b}
	case tacstore.OpOr:
		return Value{Tag: ValueUint32, U32: a | b}
	case tacstore.OpXor:
		return Value{Tag: ValueUint32, U32: a ^ b}
	case tacstore.OpShl:
		return Value{Tag: ValueUint32, U32: a << (b & 31)}
	case tacstore.OpShr:
		return Value{Tag: ValueUint32, U32: a >> (b & 31)}
	default:
		return Value{}
	}
}

func (e *Engine) executeNot(ins tacstore.Instruction) (Value, *uint32, error) {
	v, err := e.decodeOperand(ins, ins.Src1)
	if err != nil {
		return Value{}, nil, err
	}

	var result Value
	switch v.Tag {
	case ValueInt32:
		result = intValue(^v.I32)
	case ValueUint32:
		result = Value{Tag: ValueUint32, U32: ^v.U32}
	default:
		return Value{}, nil, e.err(errors.ErrorCodeTypeMismatch, "NOT requires an integer operand tag", ins.Opcode)
	}
	return result, nil, e.storeResult(ins, ins.Dest, result)
}
