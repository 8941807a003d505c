package tacvm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/cc0/internal/tacstore"
	"github.com/iamNilotpal/cc0/pkg/errors"
)

func constOp(v int32) tacstore.Operand {
	return tacstore.Operand{Tag: tacstore.OperandConstant, Payload: v}
}

func varOp(id int32) tacstore.Operand {
	return tacstore.Operand{Tag: tacstore.OperandVariable, Payload: id}
}

func tempOp(id int32) tacstore.Operand {
	return tacstore.Operand{Tag: tacstore.OperandTemporary, Payload: id}
}

func labelOp(pc int32) tacstore.Operand {
	return tacstore.Operand{Tag: tacstore.OperandLabel, Payload: pc}
}

func TestRun_AddIntoVariableThenHalt(t *testing.T) {
	t.Parallel()

	e, err := Open(DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })

	require.NoError(t, e.LoadCode([]tacstore.Instruction{
		{Opcode: tacstore.OpAdd, Dest: varOp(0), Src1: constOp(10), Src2: constOp(32)},
		{Opcode: tacstore.OpHalt},
	}))
	require.NoError(t, e.Start(0))
	require.NoError(t, e.Run(0))

	require.Equal(t, StateHalted, e.GetState())
	v, err := e.GetVariable(0)
	require.NoError(t, err)
	require.Equal(t, int32(42), v.I32)
}

func TestStep_StackUnderflowEntersErrorState(t *testing.T) {
	t.Parallel()

	e, err := Open(DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })

	require.NoError(t, e.LoadCode([]tacstore.Instruction{{Opcode: tacstore.OpReturn}}))
	require.NoError(t, e.Start(0))

	err = e.Step()
	require.Error(t, err)

	engErr, ok := errors.AsEngineError(err)
	require.True(t, ok)
	require.Equal(t, errors.ErrorCodeStackUnderflow, engErr.Code())
	require.Equal(t, StateError, e.GetState())
}

func TestStep_DivisionByZero(t *testing.T) {
	t.Parallel()

	e, err := Open(DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })

	require.NoError(t, e.LoadCode([]tacstore.Instruction{
		{Opcode: tacstore.OpDiv, Dest: varOp(0), Src1: constOp(10), Src2: constOp(0)},
	}))
	require.NoError(t, e.Start(0))

	err = e.Step()
	require.Error(t, err)

	engErr, ok := errors.AsEngineError(err)
	require.True(t, ok)
	require.Equal(t, errors.ErrorCodeDivisionByZero, engErr.Code())
}

func TestJumpIfZero_Branches(t *testing.T) {
	t.Parallel()

	e, err := Open(DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })

	// var0 = 0; if var0 == 0 jump to pc 3 (skip the "wrong" store); halt.
	require.NoError(t, e.LoadCode([]tacstore.Instruction{
		{Opcode: tacstore.OpMove, Dest: varOp(0), Src1: constOp(0)},
		{Opcode: tacstore.OpJumpIfZero, Src1: varOp(0), Src2: labelOp(3)},
		{Opcode: tacstore.OpMove, Dest: varOp(1), Src1: constOp(999)},
		{Opcode: tacstore.OpHalt},
	}))
	require.NoError(t, e.Start(0))
	require.NoError(t, e.Run(0))

	v, err := e.GetVariable(1)
	require.NoError(t, err)
	require.Equal(t, int32(0), v.I32) // never written
}

func TestRun_FallsOffEndOfCodeHaltsWithoutError(t *testing.T) {
	t.Parallel()

	e, err := Open(DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })

	// t0 = 0; if t0 == 0 jump pc4; t1 = 999; jump pc5; t1 = 42; t2 = 100.
	// No terminal halt — the run must still end HALTED, not ERROR.
	require.NoError(t, e.LoadCode([]tacstore.Instruction{
		{Opcode: tacstore.OpMove, Dest: tempOp(0), Src1: constOp(0)},
		{Opcode: tacstore.OpJumpIfZero, Src1: tempOp(0), Src2: labelOp(4)},
		{Opcode: tacstore.OpMove, Dest: tempOp(1), Src1: constOp(999)},
		{Opcode: tacstore.OpJump, Src1: labelOp(5)},
		{Opcode: tacstore.OpMove, Dest: tempOp(1), Src1: constOp(42)},
		{Opcode: tacstore.OpMove, Dest: tempOp(2), Src1: constOp(100)},
	}))
	require.NoError(t, e.Start(0))
	require.NoError(t, e.Run(0))

	require.Equal(t, StateHalted, e.GetState())

	t1, err := e.GetTemporary(1)
	require.NoError(t, err)
	require.Equal(t, int32(42), t1.I32)

	t2, err := e.GetTemporary(2)
	require.NoError(t, err)
	require.Equal(t, int32(100), t2.I32)
}

func TestCallReturn_RoundTrips(t *testing.T) {
	t.Parallel()

	e, err := Open(DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })

	// pc0: CALL pc2 ; pc1: HALT ; pc2: MOVE var0=7 ; pc3: RETURN
	require.NoError(t, e.LoadCode([]tacstore.Instruction{
		{Opcode: tacstore.OpCall, Src1: labelOp(2)},
		{Opcode: tacstore.OpHalt},
		{Opcode: tacstore.OpMove, Dest: varOp(0), Src1: constOp(7)},
		{Opcode: tacstore.OpReturn},
	}))
	require.NoError(t, e.Start(0))
	require.NoError(t, e.Run(0))

	require.Equal(t, StateHalted, e.GetState())
	v, err := e.GetVariable(0)
	require.NoError(t, err)
	require.Equal(t, int32(7), v.I32)
}

func TestAllocWriteReadMemory_RoundTrips(t *testing.T) {
	t.Parallel()

	e, err := Open(DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })

	addr := e.AllocMemory(4)
	require.NotZero(t, addr)

	require.NoError(t, e.WriteMemory(addr, []byte{1, 2, 3, 4}))
	buf := make([]byte, 4)
	require.NoError(t, e.ReadMemory(addr, buf))
	require.Equal(t, []byte{1, 2, 3, 4}, buf)

	require.NoError(t, e.FreeMemory(addr))
	require.Error(t, e.ReadMemory(addr, buf))
}

func TestRun_StepLimitPausesEngine(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.MaxSteps = 1
	e, err := Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })

	require.NoError(t, e.LoadCode([]tacstore.Instruction{
		{Opcode: tacstore.OpNop},
		{Opcode: tacstore.OpNop},
		{Opcode: tacstore.OpHalt},
	}))
	require.NoError(t, e.Start(0))

	err = e.Run(0)
	require.Error(t, err)

	engErr, ok := errors.AsEngineError(err)
	require.True(t, ok)
	require.Equal(t, errors.ErrorCodeStepLimitExceeded, engErr.Code())
	require.Equal(t, StatePaused, e.GetState())
}

func TestReset_ReturnsToLoadedAndClearsState(t *testing.T) {
	t.Parallel()

	e, err := Open(DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })

	require.NoError(t, e.LoadCode([]tacstore.Instruction{
		{Opcode: tacstore.OpMove, Dest: varOp(0), Src1: constOp(5)},
		{Opcode: tacstore.OpHalt},
	}))
	require.NoError(t, e.Start(0))
	require.NoError(t, e.Run(0))
	require.NoError(t, e.Reset())

	require.Equal(t, StateLoaded, e.GetState())
	v, err := e.GetVariable(0)
	require.NoError(t, err)
	require.Equal(t, Value{}, v)
}
