package tacvm

import "fmt"

// ValueTag identifies which field of a Value is live. The engine never
// promotes between tags implicitly — an ADD between an Int32 and a
// Float32 is TYPE_MISMATCH, not an automatic conversion.
type ValueTag uint8

const (
	ValueNone ValueTag = iota
	ValueInt32
	ValueUint32
	ValueFloat32
	ValuePointer
	ValueBool
)

func (t ValueTag) String() string {
	switch t {
	case ValueInt32:
		return "INT32"
	case ValueUint32:
		return "UINT32"
	case ValueFloat32:
		return "FLOAT32"
	case ValuePointer:
		return "POINTER"
	case ValueBool:
		return "BOOL"
	default:
		return "NONE"
	}
}

// Value is the engine's tagged runtime value: a temporary, a variable
// slot, or an intermediate arithmetic result. Exactly one field is
// meaningful at a time, selected by Tag.
type Value struct {
	Tag   ValueTag
	I32   int32
	U32   uint32
	F32   float32
	Ptr   uint32 // address into the engine heap; 0 is never a live pointer
	Bool  bool
}

func (v Value) String() string {
	switch v.Tag {
	case ValueInt32:
		return fmt.Sprintf("int32(%d)", v.I32)
	case ValueUint32:
		return fmt.Sprintf("uint32(%d)", v.U32)
	case ValueFloat32:
		return fmt.Sprintf("float32(%g)", v.F32)
	case ValuePointer:
		return fmt.Sprintf("ptr(0x%x)", v.Ptr)
	case ValueBool:
		return fmt.Sprintf("bool(%t)", v.Bool)
	default:
		return "none"
	}
}

func intValue(i int32) Value { return Value{Tag: ValueInt32, I32: i} }

// asInt32 extracts the value as a plain int32 for control-flow and
// memory opcodes, which operate on integer representations regardless
// of signedness tag. Returns false for NONE/FLOAT32/BOOL.
func (v Value) asInt32() (int32, bool) {
	switch v.Tag {
	case ValueInt32:
		return v.I32, true
	case ValueUint32:
		return int32(v.U32), true
	case ValuePointer:
		return int32(v.Ptr), true
	default:
		return 0, false
	}
}

// isZero reports whether v is the integer zero, for JUMP_IF_ZERO/
// JUMP_IF_NONZERO condition evaluation.
func (v Value) isZero() (bool, bool) {
	i, ok := v.asInt32()
	if !ok {
		return false, false
	}
	return i == 0, true
}
