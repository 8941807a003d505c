// Package parser defines the interfaces a recursive-descent C parser
// would consume, plus one minimal SkeletonParse that exercises the
// AST-store + buffer-cache wiring end to end without implementing a
// full grammar. A real grammar is explicitly out of scope — spec
// section 4.7 scopes the parser to "consumes a token cursor, produces
// AST nodes through the buffer cache" and nothing further.
package parser

import (
	"github.com/iamNilotpal/cc0/internal/aststore"
	"github.com/iamNilotpal/cc0/internal/hbcache"
	"github.com/iamNilotpal/cc0/internal/tstore"
)

// TokenSource is the read side of the T-store a parser consumes. It is
// the subset of *tstore.Store a parser needs, named so a parser can be
// tested against a fake token stream without opening a real file.
type TokenSource interface {
	Next() (tstore.Token, error)
	GetCursor() uint32
	SetCursor(idx uint32) error
}

// NodeBuilder is the subset of *hbcache.Cache a parser uses to
// materialize AST nodes. Every node a parser creates goes through the
// cache, never directly through *aststore.Store, so the cache's
// write-back and eviction discipline stays the single path to the file.
type NodeBuilder interface {
	NewAST() (hbcache.Handle, uint32, error)
	SetAST(h hbcache.Handle, node aststore.Node) error
}

// SkeletonParse walks src until KindEOF, materializing a single
// AST_PROGRAM node whose O1 points at an AST_EOF leaf. It does not
// attempt to recognize any C grammar; it exists to prove out the
// token-cursor → buffer-cache → AST-store path a real parser would
// build on.
func SkeletonParse(src TokenSource, nb NodeBuilder) (uint32, error) {
	eofHandle, eofIdx, err := nb.NewAST()
	if err != nil {
		return 0, err
	}

	var lastTokenIdx uint32
	for {
		cursorBefore := src.GetCursor()
		tok, err := src.Next()
		if err != nil {
			return 0, err
		}
		lastTokenIdx = cursorBefore
		if tok.Kind == tstore.KindEOF {
			break
		}
	}

	if err := nb.SetAST(eofHandle, aststore.Node{Type: aststore.TypeEOF, TokenIndex: lastTokenIdx}); err != nil {
		return 0, err
	}

	progHandle, progIdx, err := nb.NewAST()
	if err != nil {
		return 0, err
	}
	if err := nb.SetAST(progHandle, aststore.Node{Type: aststore.TypeProgram, O1: eofIdx}); err != nil {
		return 0, err
	}

	return progIdx, nil
}
