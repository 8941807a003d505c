// Command cc1 builds an AST from a token stream through the buffer
// cache, optionally dropping into an interactive TAC debugger or
// dumping the resolved configuration.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/peterh/liner"
	"github.com/spf13/pflag"

	"github.com/iamNilotpal/cc0/internal/aststore"
	"github.com/iamNilotpal/cc0/internal/hbcache"
	"github.com/iamNilotpal/cc0/internal/parser"
	"github.com/iamNilotpal/cc0/internal/sstore"
	"github.com/iamNilotpal/cc0/internal/symstore"
	"github.com/iamNilotpal/cc0/internal/tacstore"
	"github.com/iamNilotpal/cc0/internal/tacvm"
	"github.com/iamNilotpal/cc0/internal/tstore"
	"github.com/iamNilotpal/cc0/pkg/logger"
	"github.com/iamNilotpal/cc0/pkg/options"
)

func main() {
	os.Exit(run())
}

func run() int {
	debug := pflag.Bool("debug", false, "drop into an interactive TAC stepper after parsing")
	dumpConfig := pflag.String("dump-config", "", "write the resolved configuration to this path and exit")
	pflag.Parse()

	if pflag.NArg() != 4 {
		fmt.Fprintln(os.Stderr, "usage: cc1 <sstorefile> <tokenfile> <astfile> <symfile> [-debug] [-dump-config path]")
		return 1
	}

	opts := options.NewDefaultOptions()
	if *dumpConfig != "" {
		if err := options.SaveSnapshot(&opts, *dumpConfig); err != nil {
			fmt.Fprintf(os.Stderr, "cc1: dump config: %v\n", err)
			return 1
		}
		return 0
	}

	log := logger.New("cc1")
	ctx := context.Background()

	storeArg := func(i int) (dir, name string) {
		p := pflag.Arg(i)
		return filepath.Dir(p), filepath.Base(p)
	}

	sDir, sName := storeArg(0)
	strs, err := sstore.Open(ctx, &sstore.Config{DataDir: sDir, FileName: sName, Logger: log})
	if err != nil {
		fmt.Fprintf(os.Stderr, "cc1: open string store: %v\n", err)
		return 1
	}
	defer strs.Close()

	tDir, tName := storeArg(1)
	toks, err := tstore.Open(ctx, &tstore.Config{DataDir: tDir, FileName: tName, Logger: log})
	if err != nil {
		fmt.Fprintf(os.Stderr, "cc1: open token store: %v\n", err)
		return 1
	}
	defer toks.Close()

	aDir, aName := storeArg(2)
	ast, err := aststore.Open(ctx, &aststore.Config{DataDir: aDir, FileName: aName, Logger: log})
	if err != nil {
		fmt.Fprintf(os.Stderr, "cc1: open AST store: %v\n", err)
		return 1
	}
	defer ast.Close()

	ymDir, ymName := storeArg(3)
	syms, err := symstore.Open(ctx, &symstore.Config{DataDir: ymDir, FileName: ymName, Logger: log})
	if err != nil {
		fmt.Fprintf(os.Stderr, "cc1: open symbol store: %v\n", err)
		return 1
	}
	defer syms.Close()

	cache, err := hbcache.New(hbcache.Config{
		Slots: opts.CacheOptions.NSlots, Buckets: opts.CacheOptions.HashBuckets, Logger: log,
	}, ast, syms)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cc1: open buffer cache: %v\n", err)
		return 1
	}

	progIdx, err := parser.SkeletonParse(toks, cache)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cc1: parse: %v\n", err)
		return 1
	}
	if err := cache.End(); err != nil {
		fmt.Fprintf(os.Stderr, "cc1: flush cache: %v\n", err)
		return 1
	}
	fmt.Printf("parsed program: root=%d tokens=%d\n", progIdx, toks.Count())

	if *debug {
		if err := debugREPL(opts); err != nil {
			fmt.Fprintf(os.Stderr, "cc1: debugger: %v\n", err)
			return 1
		}
	}
	return 0
}

// debugREPL opens a fresh TAC engine seeded with a trivial demonstration
// program (cc1's external interface carries no TAC file argument) and
// lets the user single-step it with step/continue/print/quit.
func debugREPL(opts options.Options) error {
	vm, err := tacvm.Open(tacvm.Config{
		MaxTemporaries: opts.EngineOptions.MaxTemporaries,
		MaxVariables:   opts.EngineOptions.MaxVariables,
		MaxCallDepth:   opts.EngineOptions.MaxCallDepth,
		MaxSteps:       opts.EngineOptions.MaxSteps,
		HeapSize:       int(opts.EngineOptions.HeapSize),
		Logger:         logger.New("cc1-debug"),
	})
	if err != nil {
		return err
	}
	defer vm.Close()

	demo := []tacstore.Instruction{
		{Opcode: tacstore.OpMove, Dest: tacstore.Operand{Tag: tacstore.OperandVariable, Payload: 0}, Src1: tacstore.Operand{Tag: tacstore.OperandConstant, Payload: 1}},
		{Opcode: tacstore.OpAdd, Dest: tacstore.Operand{Tag: tacstore.OperandVariable, Payload: 0}, Src1: tacstore.Operand{Tag: tacstore.OperandVariable, Payload: 0}, Src2: tacstore.Operand{Tag: tacstore.OperandConstant, Payload: 1}},
		{Opcode: tacstore.OpHalt},
	}
	if err := vm.LoadCode(demo); err != nil {
		return err
	}
	if err := vm.Start(0); err != nil {
		return err
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	fmt.Println("cc1 TAC debugger — step, continue, print t<N>, print v<N>, quit")
	for {
		cmd, err := line.Prompt("cc1-debug> ")
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				return nil
			}
			return err
		}
		line.AppendHistory(cmd)

		switch {
		case cmd == "quit" || cmd == "q":
			return nil
		case cmd == "step":
			if err := vm.Step(); err != nil {
				fmt.Println("error:", err)
			}
			fmt.Println("state:", vm.GetState(), "steps:", vm.GetStepCount())
		case cmd == "continue":
			if err := vm.Run(0); err != nil {
				fmt.Println("error:", err)
			}
			fmt.Println("state:", vm.GetState())
		default:
			var n uint32
			if _, err := fmt.Sscanf(cmd, "print t%d", &n); err == nil {
				v, err := vm.GetTemporary(n)
				printValue("t", n, v, err)
				continue
			}
			if _, err := fmt.Sscanf(cmd, "print v%d", &n); err == nil {
				v, err := vm.GetVariable(n)
				printValue("v", n, v, err)
				continue
			}
			fmt.Println("unknown command:", cmd)
		}
	}
}

func printValue(kind string, n uint32, v tacvm.Value, err error) {
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Printf("%s%d = %s\n", kind, n, v)
}
