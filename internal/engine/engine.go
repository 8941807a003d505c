// Package engine provides Engine, the central coordinator for a cc0
// compilation run. It orchestrates the interaction between the five
// on-disk stores (S/T/AST/Sym/TAC), the buffer cache fronting AST/Sym,
// and the TAC engine:
//   - Stores: own the append-only record files.
//   - Cache: the write-back LRU buffer over the AST and symbol stores.
//   - TAC engine: the register-based bytecode interpreter.
//
// Engine implements thread-safe lifecycle management with atomic
// close-once semantics, following the same shape the storage engine
// this package replaced used for its own three subsystems.
package engine

import (
	"context"
	stdErrors "errors"
	"path/filepath"
	"sync/atomic"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/iamNilotpal/cc0/internal/aststore"
	"github.com/iamNilotpal/cc0/internal/hbcache"
	"github.com/iamNilotpal/cc0/internal/sstore"
	"github.com/iamNilotpal/cc0/internal/symstore"
	"github.com/iamNilotpal/cc0/internal/tacstore"
	"github.com/iamNilotpal/cc0/internal/tacvm"
	"github.com/iamNilotpal/cc0/internal/tstore"
	"github.com/iamNilotpal/cc0/pkg/options"
)

// ErrEngineClosed is returned when attempting to perform operations on
// a closed Engine.
var ErrEngineClosed = stdErrors.New("operation failed: cannot access closed engine")

// Engine is the main compiler-pipeline handle that coordinates all
// subsystems. It acts as the primary entry point for a compilation run
// and manages the lifecycle of every store, the buffer cache, and the
// TAC engine.
type Engine struct {
	options *options.Options
	log     *zap.SugaredLogger
	closed  atomic.Bool

	Strings *sstore.Store
	Tokens  *tstore.Store
	AST     *aststore.Store
	Symbols *symstore.Store
	Code    *tacstore.Store

	Cache *hbcache.Cache
	VM    *tacvm.Engine
}

// Config holds all the parameters needed to initialize a new Engine.
type Config struct {
	Options *options.Options
	Logger  *zap.SugaredLogger
}

// New opens every store, constructs the buffer cache over the AST and
// symbol stores, and allocates a TAC engine, in that order — each
// subsystem is independent of the ones after it, so a failure partway
// through tears down only what was already opened.
func New(ctx context.Context, config *Config) (*Engine, error) {
	opts := config.Options
	log := config.Logger
	storeDir := filepath.Join(opts.DataDir, opts.StoreOptions.Directory)

	strings, err := sstore.Open(ctx, &sstore.Config{
		DataDir: storeDir, FileName: opts.StoreOptions.SStoreFile,
		Logger: log, HashBuckets: opts.CacheOptions.HashBuckets,
	})
	if err != nil {
		return nil, err
	}

	tokens, err := tstore.Open(ctx, &tstore.Config{
		DataDir: storeDir, FileName: opts.StoreOptions.TStoreFile, Logger: log,
	})
	if err != nil {
		_ = strings.Close()
		return nil, err
	}

	ast, err := aststore.Open(ctx, &aststore.Config{
		DataDir: storeDir, FileName: opts.StoreOptions.ASTStoreFile, Logger: log,
	})
	if err != nil {
		_ = tokens.Close()
		_ = strings.Close()
		return nil, err
	}

	symbols, err := symstore.Open(ctx, &symstore.Config{
		DataDir: storeDir, FileName: opts.StoreOptions.SymStoreFile, Logger: log,
	})
	if err != nil {
		_ = ast.Close()
		_ = tokens.Close()
		_ = strings.Close()
		return nil, err
	}

	code, err := tacstore.Open(ctx, &tacstore.Config{
		DataDir: storeDir, FileName: opts.StoreOptions.TACStoreFile, Logger: log,
	})
	if err != nil {
		_ = symbols.Close()
		_ = ast.Close()
		_ = tokens.Close()
		_ = strings.Close()
		return nil, err
	}

	cache, err := hbcache.New(hbcache.Config{
		Slots: opts.CacheOptions.NSlots, Buckets: opts.CacheOptions.HashBuckets, Logger: log,
	}, ast, symbols)
	if err != nil {
		_ = code.Close()
		_ = symbols.Close()
		_ = ast.Close()
		_ = tokens.Close()
		_ = strings.Close()
		return nil, err
	}

	vm, err := tacvm.Open(tacvm.Config{
		MaxTemporaries:    opts.EngineOptions.MaxTemporaries,
		MaxVariables:      opts.EngineOptions.MaxVariables,
		MaxCallDepth:      opts.EngineOptions.MaxCallDepth,
		MaxSteps:          opts.EngineOptions.MaxSteps,
		HeapSize:          int(opts.EngineOptions.HeapSize),
		EnableTracing:     opts.EngineOptions.EnableTracing,
		CheckedArithmetic: opts.EngineOptions.CheckedArithmetic,
		Logger:            log,
	})
	if err != nil {
		_ = code.Close()
		_ = symbols.Close()
		_ = ast.Close()
		_ = tokens.Close()
		_ = strings.Close()
		return nil, err
	}

	return &Engine{
		options: opts,
		log:     log,
		Strings: strings,
		Tokens:  tokens,
		AST:     ast,
		Symbols: symbols,
		Code:    code,
		Cache:   cache,
		VM:      vm,
	}, nil
}

// Close flushes the buffer cache and releases every subsystem, even if
// one of them fails, aggregating every error encountered via multierr
// rather than stopping at the first one.
func (p *Engine) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return ErrEngineClosed
	}

	var err error
	err = multierr.Append(err, p.Cache.End())
	err = multierr.Append(err, p.VM.Close())
	err = multierr.Append(err, p.Code.Close())
	err = multierr.Append(err, p.Symbols.Close())
	err = multierr.Append(err, p.AST.Close())
	err = multierr.Append(err, p.Tokens.Close())
	err = multierr.Append(err, p.Strings.Close())
	return err
}
