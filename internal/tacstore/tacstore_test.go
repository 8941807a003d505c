package tacstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/cc0/pkg/logger"
)

func TestAdd_GetRoundTrips(t *testing.T) {
	t.Parallel()

	st, err := Open(context.Background(), &Config{
		DataDir: t.TempDir(), FileName: "code.tac", Logger: logger.Nop(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	ins := Instruction{
		Opcode: OpAdd,
		Dest:   Operand{Tag: OperandTemporary, Payload: 1},
		Src1:   Operand{Tag: OperandConstant, Payload: 10},
		Src2:   Operand{Tag: OperandConstant, Payload: -3},
	}

	idx, err := st.Add(ins)
	require.NoError(t, err)

	got, err := st.Get(idx)
	require.NoError(t, err)
	require.Equal(t, ins, got)
}

func TestEncode_NegativePayloadRoundTrips(t *testing.T) {
	t.Parallel()

	st, err := Open(context.Background(), &Config{
		DataDir: t.TempDir(), FileName: "code.tac", Logger: logger.Nop(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	idx, err := st.Add(Instruction{Opcode: OpMove, Dest: Operand{Tag: OperandVariable, Payload: -100}})
	require.NoError(t, err)

	got, err := st.Get(idx)
	require.NoError(t, err)
	require.Equal(t, int32(-100), got.Dest.Payload)
}
