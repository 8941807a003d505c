package options

const (
	// DefaultDataDir is the default base directory cc0 stores everything
	// under when no override is given.
	DefaultDataDir = "/var/lib/cc0"

	// DefaultStoreDirectory is the default subdirectory (relative to
	// DataDir) holding the S/T/AST/Sym/TAC store files.
	DefaultStoreDirectory = "store"

	// Default store file names. Frozen alongside the record layouts they
	// hold, so an existing data directory keeps working across runs.
	DefaultSStoreFile = "strings.sst"
	DefaultTStoreFile = "tokens.tst"
	DefaultASTFile    = "ast.ast"
	DefaultSymFile    = "symbols.sym"
	DefaultTACFile    = "code.tac"

	// DefaultNSlots is the buffer cache's slot-pool size (spec N_SLOTS).
	DefaultNSlots = 64

	// DefaultHashBuckets is the buffer cache's hash-table width; a power
	// of two so slot lookup stays a mask-and-index.
	DefaultHashBuckets = 128

	// DefaultMaxTemporaries bounds the number of TAC temporaries.
	DefaultMaxTemporaries uint32 = 256

	// DefaultMaxVariables bounds the number of TAC variables.
	DefaultMaxVariables uint32 = 256

	// DefaultMaxCallDepth bounds the TAC engine's call stack.
	DefaultMaxCallDepth uint32 = 256

	// DefaultMaxSteps is unlimited by default (0 means "no limit" per
	// spec).
	DefaultMaxSteps uint64 = 0

	// DefaultHeapSize is the TAC engine heap allocator's arena size: 64
	// KiB, comfortably inside the "few tens of kilobytes of RAM" target
	// envelope this whole pipeline is designed for.
	DefaultHeapSize uint32 = 64 * 1024
)

// NewDefaultOptions returns a fresh Options value populated with every
// documented default. Each call allocates its own nested structs so
// mutating the result of one call never affects another caller's copy.
func NewDefaultOptions() Options {
	return Options{
		DataDir: DefaultDataDir,
		StoreOptions: &storeOptions{
			Directory:    DefaultStoreDirectory,
			SStoreFile:   DefaultSStoreFile,
			TStoreFile:   DefaultTStoreFile,
			ASTStoreFile: DefaultASTFile,
			SymStoreFile: DefaultSymFile,
			TACStoreFile: DefaultTACFile,
		},
		CacheOptions: &cacheOptions{
			NSlots:      DefaultNSlots,
			HashBuckets: DefaultHashBuckets,
		},
		EngineOptions: &engineOptions{
			MaxTemporaries:    DefaultMaxTemporaries,
			MaxVariables:      DefaultMaxVariables,
			MaxCallDepth:      DefaultMaxCallDepth,
			MaxSteps:          DefaultMaxSteps,
			HeapSize:          DefaultHeapSize,
			EnableTracing:     false,
			CheckedArithmetic: false,
		},
	}
}
