// Entry point for the lox interpreter.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
	"strings"

	"github.com/chzyer/readline"

	"github.com/loxlang/golox/interpreter"
	"github.com/loxlang/golox/parser"
	"github.com/loxlang/golox/resolver"
)

var (
	cmd = flag.String("c", "", "Program passed in as string")

	cpuProfile = flag.String("cpuprofile", "", "Write a CPU profile to the specified file before exiting.")
	memProfile = flag.String("memprofile", "", "Write an allocation profile to the file before exiting.")
	traceFile  = flag.String("trace", "", "Write an execution trace to the specified file before exiting.")
)

// nolint:revive
func Usage() {
	fmt.Fprintf(os.Stderr, "Usage: lox [options] [script]\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
}

func main() {
	log.SetFlags(0)

	flag.Usage = Usage
	flag.Parse()

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			log.Fatalf("failed to create CPU profile: %s", err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				log.Fatalf("failed to close CPU profile: %s", err)
			}
		}()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatalf("failed to start CPU profile: %s", err)
		}
		defer pprof.StopCPUProfile()
	}
	if *memProfile != "" {
		defer func() {
			f, err := os.Create(*memProfile)
			if err != nil {
				log.Fatalf("failed to create memory profile: %s", err)
			}
			defer func() {
				if err := f.Close(); err != nil {
					log.Fatalf("failed to close memory profile: %s", err)
				}
			}()
			runtime.GC()
			if err := pprof.WriteHeapProfile(f); err != nil {
				log.Fatalf("failed to start memory profile: %s", err)
			}
		}()
	}
	if *traceFile != "" {
		f, err := os.Create(*traceFile)
		if err != nil {
			log.Fatalf("failed to create trace output file: %s", err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				log.Fatalf("failed to close trace file: %s", err)
			}
		}()

		if err := trace.Start(f); err != nil {
			log.Fatalf("failed to start trace: %s", err)
		}
		defer trace.Stop()
	}

	if *cmd != "" {
		hadErr, hadRuntimeErr := runSource("<cmd>", []byte(*cmd), interpreter.New())
		os.Exit(exitCode(hadErr, hadRuntimeErr))
	}

	switch len(flag.Args()) {
	case 0:
		runREPL()
	case 1:
		os.Exit(runFile(flag.Arg(0)))
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func exitCode(hadErr, hadRuntimeErr bool) int {
	switch {
	case hadRuntimeErr:
		return 70
	case hadErr:
		return 65
	default:
		return 0
	}
}

// runSource parses, resolves and interprets src, reporting any errors to stderr.
// It returns whether a static (scan/parse/resolve) error or a runtime error occurred, respectively.
func runSource(filename string, src []byte, interp *interpreter.Interpreter) (hadErr, hadRuntimeErr bool) {
	program, err := parser.Parse(filename, src)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return true, false
	}

	locals, err := resolver.Resolve(program)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return true, false
	}

	if err := interp.Interpret(program, locals); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return false, true
	}

	return false, false
}

func runFile(name string) int {
	src, err := os.ReadFile(name)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	hadErr, hadRuntimeErr := runSource(name, src, interpreter.New())
	return exitCode(hadErr, hadRuntimeErr)
}

// runREPL reads and runs one line at a time until EOF or a blank line is entered. Each line's static-error flag is
// independent of the others; a runtime error doesn't end the session, but it does leave hadRuntimeErr set so that the
// final exit code reflects it.
func runREPL() {
	cfg := &readline.Config{
		Prompt: ">>> ",
	}

	homeDir, err := os.UserHomeDir()
	if err == nil {
		cfg.HistoryFile = path.Join(homeDir, ".lox_history")
	} else {
		fmt.Fprintf(os.Stderr, "Can't get current user's home directory (%s). Command history will not be saved.\n", err)
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		log.Fatalf("running Lox REPL: %s", err)
	}
	defer rl.Close()

	fmt.Fprintln(os.Stderr, "Welcome to Lox!")

	interp := interpreter.New(interpreter.WithREPLMode())
	var hadRuntimeErr bool
	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			if errors.Is(err, io.EOF) {
				break
			}
			log.Fatalf("unexpected error from readline: %s", err)
		}
		if strings.TrimSpace(line) == "" {
			break
		}
		_, lineHadRuntimeErr := runSource("<stdin>", []byte(line), interp)
		hadRuntimeErr = hadRuntimeErr || lineHadRuntimeErr
	}

	if hadRuntimeErr {
		os.Exit(70)
	}
}
