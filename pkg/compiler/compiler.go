// Package compiler provides Instance, the top-level entry point for a
// cc0 compilation run. It wraps the internal pipeline engine (stores,
// buffer cache, TAC VM) behind a small domain-shaped API, the same way
// the teacher's pkg/ignite wrapped its storage engine behind Set/Get/
// Delete: callers never reach into internal/* directly.
package compiler

import (
	"context"

	"github.com/iamNilotpal/cc0/internal/engine"
	"github.com/iamNilotpal/cc0/internal/parser"
	"github.com/iamNilotpal/cc0/internal/tacstore"
	"github.com/iamNilotpal/cc0/internal/tacvm"
	"github.com/iamNilotpal/cc0/internal/tstore"
	"github.com/iamNilotpal/cc0/pkg/logger"
	"github.com/iamNilotpal/cc0/pkg/options"
)

// Instance is the primary entry point for driving a cc0 compilation:
// interning strings, appending/consuming tokens, parsing into AST
// through the buffer cache, and loading/running TAC on the engine. It
// encapsulates the underlying pipeline engine and the resolved options
// that configured it.
type Instance struct {
	engine  *engine.Engine
	options *options.Options
}

// NewInstance opens every store, the buffer cache, and the TAC engine
// for a single compilation unit rooted at opts.DataDir, applying any
// functional options on top of the package defaults.
func NewInstance(ctx context.Context, service string, opts ...options.OptionFunc) (*Instance, error) {
	log := logger.New(service)

	defaultOpts := options.NewDefaultOptions()
	for _, opt := range opts {
		opt(&defaultOpts)
	}

	eng, err := engine.New(ctx, &engine.Config{Logger: log, Options: &defaultOpts})
	if err != nil {
		return nil, err
	}

	return &Instance{engine: eng, options: &defaultOpts}, nil
}

// Intern stores str in the string arena, returning its offset. Interning
// the same string twice returns the same offset.
func (i *Instance) Intern(str string) (uint16, error) {
	return i.engine.Strings.Intern(str)
}

// LookupString resolves an interned-string offset back to its text.
func (i *Instance) LookupString(offset uint16) (string, error) {
	return i.engine.Strings.Get(offset)
}

// EmitToken appends a token record to the token store, returning its
// 1-based index.
func (i *Instance) EmitToken(tok tstore.Token) (uint32, error) {
	return i.engine.Tokens.Append(tok)
}

// Tokens exposes the token store's read cursor for a caller that wants to
// drive it directly rather than through Parse.
func (i *Instance) Tokens() *tstore.Store {
	return i.engine.Tokens
}

// Parse runs the skeleton parser over the token store, materializing
// nodes through the buffer cache, and returns the root AST_PROGRAM
// index.
func (i *Instance) Parse() (uint32, error) {
	return parser.SkeletonParse(i.engine.Tokens, i.engine.Cache)
}

// LoadProgram appends code to the TAC store and loads it into the TAC
// engine, ready to Start/Run.
func (i *Instance) LoadProgram(code []tacstore.Instruction) error {
	for _, instr := range code {
		if _, err := i.engine.Code.Add(instr); err != nil {
			return err
		}
	}
	return i.engine.VM.LoadCode(code)
}

// VM exposes the underlying TAC engine for callers that need direct
// control.
func (i *Instance) VM() *tacvm.Engine {
	return i.engine.VM
}

// Options returns the resolved configuration this instance was opened
// with.
func (i *Instance) Options() *options.Options {
	return i.options
}

// Close flushes the buffer cache and releases every store and the TAC
// engine, aggregating any errors encountered.
func (i *Instance) Close(ctx context.Context) error {
	return i.engine.Close()
}
