// Package tstore implements the T-store: the append-only sequence of
// fixed-size token records produced by the lexer. Unlike the AST/Sym/TAC
// stores it is read sequentially by a cursor as well as by index, so it
// wraps internal/recstore with cursor state instead of exposing the bare
// Add/Get surface directly.
package tstore

import (
	"context"
	stdErrors "errors"
	"sync"
	"sync/atomic"

	"github.com/iamNilotpal/cc0/internal/recstore"
	"github.com/iamNilotpal/cc0/pkg/errors"
	"go.uber.org/zap"
)

// Kind enumerates the small set of token kinds the store itself needs to
// recognize; the lexer is free to use any other value for identifiers and
// literals. KindEOF marks the end of the token sequence; tstore does not
// itself check that the last record appended is KindEOF.
type Kind uint16

const (
	KindEOF Kind = 0
)

// Token is the in-memory form of a token record.
type Token struct {
	Kind         Kind
	FileOffset   uint16 // S-store offset of the source file name, or NoOffset.
	Line         uint32
	LexemeOffset uint16 // S-store offset of the token's lexeme text.
}

var ErrClosed = stdErrors.New("tstore: operation failed: store is closed")

// Store is the cursor-bearing token sequence.
type Store struct {
	mu     sync.Mutex
	log    *zap.SugaredLogger
	recs   *recstore.Store[Token]
	cursor uint32 // next index Next() will read; 1-based like every other store.
	closed atomic.Bool
}

// Config carries the parameters needed to open a Store.
type Config struct {
	DataDir  string
	FileName string
	Logger   *zap.SugaredLogger
}

// Open opens (or creates) the token store file.
func Open(ctx context.Context, cfg *Config) (*Store, error) {
	if cfg == nil || cfg.DataDir == "" || cfg.FileName == "" || cfg.Logger == nil {
		return nil, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "tstore configuration is required",
		).WithField("config").WithRule("required").WithProvided(cfg)
	}

	recs, err := recstore.Open(ctx, &recstore.Config[Token]{
		DataDir: cfg.DataDir, FileName: cfg.FileName, Logger: cfg.Logger, Codec: tokenCodec{},
	})
	if err != nil {
		return nil, err
	}

	return &Store{log: cfg.Logger, recs: recs, cursor: 1}, nil
}

// Append writes a new token record at the end of the store.
func (s *Store) Append(tok Token) (uint32, error) {
	if s.closed.Load() {
		return 0, ErrClosed
	}
	return s.recs.Add(tok)
}

// Next reads the token at the current cursor and advances it by one.
// Reading past the last record is a caller error — every well-formed
// token stream ends with a KindEOF record that a caller should stop on
// before calling Next again.
func (s *Store) Next() (Token, error) {
	var zero Token
	if s.closed.Load() {
		return zero, ErrClosed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tok, err := s.recs.Get(s.cursor)
	if err != nil {
		return zero, err
	}

	s.cursor++
	return tok, nil
}

// SetCursor repositions the read cursor to the given 1-based record index.
func (s *Store) SetCursor(idx uint32) error {
	if s.closed.Load() {
		return ErrClosed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cursor = idx
	return nil
}

// GetCursor returns the current read cursor.
func (s *Store) GetCursor() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Count returns the number of token records written so far.
func (s *Store) Count() uint32 {
	return s.recs.Count()
}

// Close flushes and closes the underlying store.
func (s *Store) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	return s.recs.Close()
}
