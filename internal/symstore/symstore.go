// Package symstore is the symbol-table record store. Like aststore, it is
// a thin instantiation of internal/recstore.Store[Entry]; the fields of a
// symbol entry are opaque to the cache that fronts this store — it only
// ever reads or writes a whole Entry.
package symstore

import (
	"context"

	"github.com/iamNilotpal/cc0/internal/recstore"
	"github.com/iamNilotpal/cc0/pkg/errors"
	"go.uber.org/zap"
)

// Entry is the in-memory form of a symbol-table record.
type Entry struct {
	Name    uint16 // S-store offset of the symbol's name.
	Kind    uint16
	TypeRef uint16
	Scope   uint16
	Value   int32
}

// Store is the symbol-table record store.
type Store = recstore.Store[Entry]

// Config carries the parameters needed to open a Store.
type Config struct {
	DataDir  string
	FileName string
	Logger   *zap.SugaredLogger
}

// Open opens (or creates) the symbol store file.
func Open(ctx context.Context, cfg *Config) (*Store, error) {
	if cfg == nil || cfg.DataDir == "" || cfg.FileName == "" || cfg.Logger == nil {
		return nil, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "symstore configuration is required",
		).WithField("config").WithRule("required").WithProvided(cfg)
	}

	return recstore.Open(ctx, &recstore.Config[Entry]{
		DataDir: cfg.DataDir, FileName: cfg.FileName, Logger: cfg.Logger, Codec: entryCodec{},
	})
}
