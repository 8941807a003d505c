// Package tacstore is the TAC (three-address code) instruction record
// store: an append-only, 1-based-indexed file of fixed-size instruction
// records, identical in mechanics to aststore (itself built on
// internal/recstore) per spec section 4.5's "same shape as AST store".
package tacstore

import (
	"context"

	"github.com/iamNilotpal/cc0/internal/recstore"
	"github.com/iamNilotpal/cc0/pkg/errors"
	"go.uber.org/zap"
)

// OperandTag enumerates the kinds of operand a TAC instruction can carry.
type OperandTag uint8

const (
	OperandNone OperandTag = iota
	OperandTemporary
	OperandVariable
	OperandConstant
	OperandLabel
)

// Operand is a tagged slot inside an instruction. Payload's meaning
// depends on Tag: a TEMPORARY/VARIABLE id, a raw CONSTANT value, or a
// LABEL target program counter.
type Operand struct {
	Tag     OperandTag
	Payload int32
}

// Opcode enumerates the TAC instruction set the engine understands.
type Opcode uint16

const (
	OpNop Opcode = iota
	OpMove
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpNeg
	OpCmpEq
	OpCmpNe
	OpCmpLt
	OpCmpLe
	OpCmpGt
	OpCmpGe
	OpAnd
	OpOr
	OpXor
	OpNot
	OpShl
	OpShr
	OpJump
	OpJumpIfZero
	OpJumpIfNonZero
	OpCall
	OpReturn
	OpLoad  // Dest = *Src1 (engine heap), width implied by Src2 (byte count)
	OpStore // *Dest = Src1 (engine heap), width implied by Src2 (byte count)
	OpHalt
)

// Instruction is the in-memory form of a TAC instruction record: an
// opcode, up to three operands (destination plus two sources), and a
// flags word reserved for per-opcode modifiers (e.g. a future signed/
// unsigned distinction for comparisons).
type Instruction struct {
	Opcode Opcode
	Flags  uint16
	Dest   Operand
	Src1   Operand
	Src2   Operand
}

// Store is the TAC instruction record store.
type Store = recstore.Store[Instruction]

// Config carries the parameters needed to open a Store.
type Config struct {
	DataDir  string
	FileName string
	Logger   *zap.SugaredLogger
}

// Open opens (or creates) the TAC store file.
func Open(ctx context.Context, cfg *Config) (*Store, error) {
	if cfg == nil || cfg.DataDir == "" || cfg.FileName == "" || cfg.Logger == nil {
		return nil, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "tacstore configuration is required",
		).WithField("config").WithRule("required").WithProvided(cfg)
	}

	return recstore.Open(ctx, &recstore.Config[Instruction]{
		DataDir: cfg.DataDir, FileName: cfg.FileName, Logger: cfg.Logger, Codec: instructionCodec{},
	})
}
