// Package options provides data structures and functions for configuring
// the cc0 compiler pipeline. It defines the parameters that control where
// the on-disk stores live, how big the buffer cache's slot pool is, and how
// the TAC engine is bounded — the three axes a memory-constrained deployment
// actually needs to tune.
package options

import (
	"strings"
)

// storeOptions controls where the five append-only stores live on disk and
// what their file names are. Every store is a single file — there is no
// segment rotation in this pipeline, unlike a log-structured key/value
// store, because each store is written exactly once per compilation pass.
type storeOptions struct {
	// Directory is the subdirectory (relative to DataDir) holding every
	// store file.
	//
	// Default: "store"
	Directory string `json:"directory"`

	// SStoreFile is the filename of the interned-string arena.
	//
	// Default: "strings.sst"
	SStoreFile string `json:"sstoreFile"`

	// TStoreFile is the filename of the token record sequence.
	//
	// Default: "tokens.tst"
	TStoreFile string `json:"tstoreFile"`

	// ASTStoreFile is the filename of the AST node record store.
	//
	// Default: "ast.ast"
	ASTStoreFile string `json:"astStoreFile"`

	// SymStoreFile is the filename of the symbol-table record store.
	//
	// Default: "symbols.sym"
	SymStoreFile string `json:"symStoreFile"`

	// TACStoreFile is the filename of the three-address-code instruction
	// store.
	//
	// Default: "code.tac"
	TACStoreFile string `json:"tacStoreFile"`
}

// cacheOptions controls the buffer cache (HB) that fronts the AST and
// symbol stores.
type cacheOptions struct {
	// NSlots is the fixed number of resident records the cache holds at
	// once (spec's N_SLOTS). Must be a positive integer: WithCacheSlots
	// ignores values below 1, and hbcache.New replaces a zero or negative
	// count with its own 64-slot default.
	//
	// Default: 64
	NSlots int `json:"nSlots"`

	// HashBuckets is the number of chains in the cache's lookup hash
	// table. Must be a power of two so index-mod-buckets stays a cheap
	// mask.
	//
	// Default: 128
	HashBuckets int `json:"hashBuckets"`
}

// engineOptions controls the TAC engine's resource limits.
type engineOptions struct {
	// MaxTemporaries bounds the number of distinct TEMPORARY operand ids
	// the engine will address.
	//
	// Default: 256
	MaxTemporaries uint32 `json:"maxTemporaries"`

	// MaxVariables bounds the number of distinct VARIABLE operand ids the
	// engine will address.
	//
	// Default: 256
	MaxVariables uint32 `json:"maxVariables"`

	// MaxCallDepth bounds the engine's call stack. A CALL past this depth
	// fails with STACK_OVERFLOW instead of growing unbounded.
	//
	// Default: 256
	MaxCallDepth uint32 `json:"maxCallDepth"`

	// MaxSteps bounds how many instructions the engine executes after a
	// Start, counted across Step and Run calls, before returning
	// STEP_LIMIT_EXCEEDED. Zero means unlimited.
	//
	// Default: 0
	MaxSteps uint64 `json:"maxSteps"`

	// HeapSize is the number of bytes available to the engine's bump/
	// free-list allocator.
	//
	// Default: 65536 (64 KiB)
	HeapSize uint32 `json:"heapSize"`

	// EnableTracing turns on per-instruction trace events delivered to an
	// injected sink. Disabled by default since tracing is a debugging aid,
	// not a steady-state cost a constrained target should pay.
	//
	// Default: false
	EnableTracing bool `json:"enableTracing"`

	// CheckedArithmetic switches integer arithmetic from wrap-on-overflow
	// (Go's native behavior for fixed-width integers) to returning
	// ErrorCodeOverflow. Spec section 9 leaves this as an explicit choice;
	// wrap is the default for compatibility with the tests that accept
	// either behavior.
	//
	// Default: false
	CheckedArithmetic bool `json:"checkedArithmetic"`
}

// Options defines the full configuration surface for a cc0 pipeline
// instance: where stores live, how the buffer cache is sized, and how the
// TAC engine is bounded.
type Options struct {
	// DataDir is the base path under which the store directory is
	// created.
	//
	// Default: "/var/lib/cc0"
	DataDir string `json:"dataDir"`

	// StoreOptions configures the on-disk store file layout.
	StoreOptions *storeOptions `json:"storeOptions"`

	// CacheOptions configures the buffer cache's slot pool and hash
	// table.
	CacheOptions *cacheOptions `json:"cacheOptions"`

	// EngineOptions configures the TAC engine's resource limits.
	EngineOptions *engineOptions `json:"engineOptions"`
}

// OptionFunc is a function type that modifies the pipeline's configuration.
type OptionFunc func(*Options)

// WithDefaultOptions resets every field back to its documented default.
func WithDefaultOptions() OptionFunc {
	return func(o *Options) {
		opts := NewDefaultOptions()
		*o = opts
	}
}

// WithDataDir sets the base directory the pipeline stores everything
// under.
func WithDataDir(directory string) OptionFunc {
	return func(o *Options) {
		directory = strings.TrimSpace(directory)
		if directory != "" {
			o.DataDir = directory
		}
	}
}

// WithStoreDirectory sets the subdirectory (relative to DataDir) holding
// the store files.
func WithStoreDirectory(directory string) OptionFunc {
	return func(o *Options) {
		directory = strings.TrimSpace(directory)
		if directory != "" {
			o.StoreOptions.Directory = directory
		}
	}
}

// WithCacheSlots sets the buffer cache's fixed slot-pool size.
func WithCacheSlots(n int) OptionFunc {
	return func(o *Options) {
		if n > 0 {
			o.CacheOptions.NSlots = n
		}
	}
}

// WithHashBuckets sets the number of chains in the buffer cache's lookup
// hash table. Values that are not a power of two are rejected silently,
// the same way the other With* options ignore out-of-range values, to
// keep functional options composable without returning errors.
func WithHashBuckets(n int) OptionFunc {
	return func(o *Options) {
		if n > 0 && n&(n-1) == 0 {
			o.CacheOptions.HashBuckets = n
		}
	}
}

// WithMaxTemporaries sets the TAC engine's temporary-operand id bound.
func WithMaxTemporaries(n uint32) OptionFunc {
	return func(o *Options) {
		if n > 0 {
			o.EngineOptions.MaxTemporaries = n
		}
	}
}

// WithMaxVariables sets the TAC engine's variable-operand id bound.
func WithMaxVariables(n uint32) OptionFunc {
	return func(o *Options) {
		if n > 0 {
			o.EngineOptions.MaxVariables = n
		}
	}
}

// WithMaxCallDepth sets the TAC engine's call-stack depth bound.
func WithMaxCallDepth(n uint32) OptionFunc {
	return func(o *Options) {
		if n > 0 {
			o.EngineOptions.MaxCallDepth = n
		}
	}
}

// WithMaxSteps sets the TAC engine's default step budget. Zero means
// unlimited.
func WithMaxSteps(n uint64) OptionFunc {
	return func(o *Options) {
		o.EngineOptions.MaxSteps = n
	}
}

// WithHeapSize sets the TAC engine's heap allocator arena size in bytes.
func WithHeapSize(n uint32) OptionFunc {
	return func(o *Options) {
		if n > 0 {
			o.EngineOptions.HeapSize = n
		}
	}
}

// WithTracing enables or disables per-instruction trace events.
func WithTracing(enabled bool) OptionFunc {
	return func(o *Options) {
		o.EngineOptions.EnableTracing = enabled
	}
}

// WithCheckedArithmetic enables or disables overflow-checked integer
// arithmetic in the TAC engine.
func WithCheckedArithmetic(enabled bool) OptionFunc {
	return func(o *Options) {
		o.EngineOptions.CheckedArithmetic = enabled
	}
}
