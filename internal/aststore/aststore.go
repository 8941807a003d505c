// Package aststore is the AST node record store. It is a thin instantiation
// of internal/recstore.Store[Node] — all of the file mechanics (Add,
// Update, Get, Count, positioned I/O) live there; this package supplies
// only the AST node's wire layout and the AST_FREE/NodeType vocabulary.
package aststore

import (
	"context"

	"github.com/iamNilotpal/cc0/internal/recstore"
	"github.com/iamNilotpal/cc0/pkg/errors"
	"go.uber.org/zap"
)

// NodeType enumerates the small set of AST node kinds. AST_FREE marks a
// reusable slot left behind by the buffer cache's delete.
type NodeType uint16

const (
	TypeFree NodeType = iota
	TypeProgram
	TypeFunction
	TypeTypedef
	TypeDeclaration
	TypeStatement
	TypeExpression
	TypeEOF
)

// Node is the in-memory form of an AST node record. O1/O2 are AST-node
// indices used for children/siblings; their meaning is defined by the
// parser, opaque to the store itself.
type Node struct {
	Type       NodeType
	TokenIndex uint32
	O1         uint32
	O2         uint32
}

// Store is the AST node record store.
type Store = recstore.Store[Node]

// Config carries the parameters needed to open a Store.
type Config struct {
	DataDir  string
	FileName string
	Logger   *zap.SugaredLogger
}

// Open opens (or creates) the AST store file.
func Open(ctx context.Context, cfg *Config) (*Store, error) {
	if cfg == nil || cfg.DataDir == "" || cfg.FileName == "" || cfg.Logger == nil {
		return nil, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "aststore configuration is required",
		).WithField("config").WithRule("required").WithProvided(cfg)
	}

	return recstore.Open(ctx, &recstore.Config[Node]{
		DataDir: cfg.DataDir, FileName: cfg.FileName, Logger: cfg.Logger, Codec: nodeCodec{},
	})
}
