package compiler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/cc0/internal/tacstore"
	"github.com/iamNilotpal/cc0/internal/tacvm"
	"github.com/iamNilotpal/cc0/internal/tstore"
	"github.com/iamNilotpal/cc0/pkg/options"
)

func newTestInstance(t *testing.T) *Instance {
	t.Helper()
	inst, err := NewInstance(
		context.Background(), "compiler-test", options.WithDataDir(t.TempDir()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = inst.Close(context.Background()) })
	return inst
}

func TestIntern_RoundTripsThroughLookupString(t *testing.T) {
	t.Parallel()

	inst := newTestInstance(t)
	offset, err := inst.Intern("hello.c")
	require.NoError(t, err)

	got, err := inst.LookupString(offset)
	require.NoError(t, err)
	require.Equal(t, "hello.c", got)
}

func TestParse_BuildsProgramFromEmittedTokens(t *testing.T) {
	t.Parallel()

	inst := newTestInstance(t)

	_, err := inst.EmitToken(tstore.Token{Kind: 1, Line: 1})
	require.NoError(t, err)
	_, err = inst.EmitToken(tstore.Token{Kind: tstore.KindEOF, Line: 1})
	require.NoError(t, err)

	progIdx, err := inst.Parse()
	require.NoError(t, err)
	require.NotZero(t, progIdx)
}

func TestLoadProgramAndRun_HaltsWithExpectedVariable(t *testing.T) {
	t.Parallel()

	inst := newTestInstance(t)

	err := inst.LoadProgram([]tacstore.Instruction{
		{
			Opcode: tacstore.OpAdd,
			Dest:   tacstore.Operand{Tag: tacstore.OperandVariable, Payload: 0},
			Src1:   tacstore.Operand{Tag: tacstore.OperandConstant, Payload: 10},
			Src2:   tacstore.Operand{Tag: tacstore.OperandConstant, Payload: 32},
		},
		{Opcode: tacstore.OpHalt},
	})
	require.NoError(t, err)

	vm := inst.VM()
	require.NoError(t, vm.Start(0))
	require.NoError(t, vm.Run(0))
	require.Equal(t, tacvm.StateHalted, vm.GetState())

	v, err := vm.GetVariable(0)
	require.NoError(t, err)
	require.Equal(t, int32(42), v.I32)
}
