package errors

// SymbolError provides specialized error handling for symbol-table
// operations. This structure extends the base error system with
// symbol-specific context while properly supporting method chaining
// through all base error methods.
type SymbolError struct {
	// Embed the base error to inherit all standard error functionality
	// including error chaining, structured details, and error codes.
	*baseError

	// Identifies which symbol name was being processed when the error
	// occurred. This is particularly valuable for debugging because it
	// tells you exactly which declaration was involved in the failed
	// operation.
	name string

	// Indicates which record index was involved, if applicable. This
	// helps correlate symbol errors with specific on-disk records.
	recordIndex uint32

	// Describes what symbol-table operation was being performed when the
	// error occurred (e.g., "Get", "Add", "Update"). This context helps
	// understand the system state and caller actions that led to the
	// error.
	operation string

	// Captures the number of records in the symbol table at the time of
	// the error. This information helps diagnose capacity-related issues
	// and provides context about the scale of the system when problems
	// occur.
	tableSize int
}

// NewSymbolError creates a new symbol-specific error with the provided
// context. This constructor follows the same pattern as other error types
// in the system, taking a causing error, error code, and descriptive
// message.
func NewSymbolError(err error, code ErrorCode, msg string) *SymbolError {
	return &SymbolError{
		baseError: NewBaseError(err, code, msg),
	}
}

// Override base error methods to return *SymbolError instead of *baseError.

// WithMessage updates the error message while maintaining the SymbolError type.
func (se *SymbolError) WithMessage(msg string) *SymbolError {
	se.baseError.WithMessage(msg)
	return se
}

// WithCode sets the error code while preserving the SymbolError type.
func (se *SymbolError) WithCode(code ErrorCode) *SymbolError {
	se.baseError.WithCode(code)
	return se
}

// WithDetail adds contextual information while maintaining the SymbolError type.
func (se *SymbolError) WithDetail(key string, value any) *SymbolError {
	se.baseError.WithDetail(key, value)
	return se
}

// Symbol-specific methods that add domain-specific context to the error.

// WithName records which symbol name was being processed when the error occurred.
func (se *SymbolError) WithName(name string) *SymbolError {
	se.name = name
	return se
}

// WithRecordIndex captures which on-disk record was involved in the error.
func (se *SymbolError) WithRecordIndex(idx uint32) *SymbolError {
	se.recordIndex = idx
	return se
}

// WithOperation records what symbol-table operation was being performed.
func (se *SymbolError) WithOperation(operation string) *SymbolError {
	se.operation = operation
	return se
}

// WithTableSize captures the size of the symbol table when the error occurred.
func (se *SymbolError) WithTableSize(size int) *SymbolError {
	se.tableSize = size
	return se
}

// Getter methods provide access to the SymbolError-specific context.

// Name returns the symbol name that was being processed when the error occurred.
func (se *SymbolError) Name() string {
	return se.name
}

// RecordIndex returns the on-disk record index associated with the error.
func (se *SymbolError) RecordIndex() uint32 {
	return se.recordIndex
}

// Operation returns the name of the operation that was being performed.
func (se *SymbolError) Operation() string {
	return se.operation
}

// TableSize returns the size of the symbol table when the error occurred.
func (se *SymbolError) TableSize() int {
	return se.tableSize
}

// NewSymbolNotFoundError creates a specialized error for a missing record index.
func NewSymbolNotFoundError(idx uint32) *SymbolError {
	return NewSymbolError(nil, ErrorCodeSymbolNotFound, "symbol record not found").
		WithRecordIndex(idx).
		WithOperation("Get")
}

// NewSymbolInvalidIndexError creates an error for an out-of-range record index.
func NewSymbolInvalidIndexError(idx uint32, tableSize int) *SymbolError {
	return NewSymbolError(nil, ErrorCodeSymbolInvalidIndex, "record index out of range").
		WithRecordIndex(idx).
		WithTableSize(tableSize).
		WithOperation("Get")
}
