package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"
	"pkt.systems/version"
)

func init() {
	version.SetDefaultModule("github.com/sfu-bigdata/go-mdocx")
}

func main() {
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	_, _ = maxprocs.Set(maxprocs.Logger(procsLogger(hasVerboseFlag(os.Args[1:]), os.Stderr)))

	ctx, stop := notifyContext(context.Background())
	code := run(ctx, os.Args, DefaultEnv())
	stop()
	os.Exit(code)
}

// procsLogger returns the automaxprocs logger: silent unless verbose.
func procsLogger(verbose bool, w io.Writer) func(string, ...interface{}) {
	if !verbose {
		return func(string, ...interface{}) {}
	}
	return func(format string, args ...interface{}) {
		fmt.Fprintf(w, format+"\n", args...)
	}
}

// hasVerboseFlag scans raw arguments for -v or --verbose before any command
// parses them.
func hasVerboseFlag(args []string) bool {
	for _, a := range args {
		if a == "--" {
			return false
		}
		if a == "-v" || a == "--verbose" {
			return true
		}
	}
	return false
}

// run dispatches a command and returns the process exit code.
func run(ctx context.Context, args []string, env *Environment) int {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	cmd, rest := args[1], args[2:]
	var err error
	switch cmd {
	case "convert":
		err = runConvertCmd(ctx, rest, env)
	case "inspect":
		err = runInspect(ctx, rest, env)
	case "config":
		err = runConfigCmd(rest, env)
	case "doctor":
		return runDoctorCmd(rest, env)
	case "completion":
		err = runCompletion(rest, env)
	case "version", "--version":
		runVersion(env)
	case "help", "-h", "--help":
		runHelp(rest, env)
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage(env.Stderr)
		return ExitUsage
	}

	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err))
		return exitCodeFor(err)
	}
	return ExitSuccess
}

func runVersion(env *Environment) {
	fmt.Fprintln(env.Stdout, "mdocx", version.Current())
	fmt.Fprintln(env.Stdout, version.Module())
}
