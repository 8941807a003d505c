// Command cc0t pretty-prints a token store against its companion string
// store, emitting a C-preprocessor-style `# <line> "<file>"` directive
// whenever the current token's source file changes.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/iamNilotpal/cc0/internal/sstore"
	"github.com/iamNilotpal/cc0/internal/tstore"
	"github.com/iamNilotpal/cc0/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	verbose := pflag.BoolP("verbose", "v", false, "print token fields in addition to lexemes")
	pflag.Parse()

	if pflag.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "usage: cc0t <sstorefile> <tokenfile> [-v]")
		return 1
	}

	sstorePath := pflag.Arg(0)
	tstorePath := pflag.Arg(1)

	log := logger.New("cc0t")
	ctx := context.Background()

	strs, err := sstore.Open(ctx, &sstore.Config{
		DataDir: filepath.Dir(sstorePath), FileName: filepath.Base(sstorePath), Logger: log,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "cc0t: open string store: %v\n", err)
		return 1
	}
	defer strs.Close()

	toks, err := tstore.Open(ctx, &tstore.Config{
		DataDir: filepath.Dir(tstorePath), FileName: filepath.Base(tstorePath), Logger: log,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "cc0t: open token store: %v\n", err)
		return 1
	}
	defer toks.Close()

	if err := printTokens(strs, toks, *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "cc0t: %v\n", err)
		return 1
	}
	return 0
}

func printTokens(strs *sstore.Store, toks *tstore.Store, verbose bool) error {
	var currentFile string
	for {
		tok, err := toks.Next()
		if err != nil {
			return err
		}

		file, err := strs.Get(tok.FileOffset)
		if err != nil {
			file = "<unknown>"
		}
		if file != currentFile {
			fmt.Printf("# %d %q\n", tok.Line, file)
			currentFile = file
		}

		lexeme, err := strs.Get(tok.LexemeOffset)
		if err != nil {
			lexeme = ""
		}

		if verbose {
			fmt.Printf("kind=%-4d line=%-6d lexeme=%q\n", tok.Kind, tok.Line, lexeme)
		} else {
			fmt.Printf("%q\n", lexeme)
		}

		if tok.Kind == tstore.KindEOF {
			break
		}
	}
	return nil
}
