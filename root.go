package main

// Notes on program structure
// --------------------------
//
// httpchat uses subcommands to invoke specific functionalities of the program.
// Each subcommand is implemented by a function named after the command, in a
// file of the same name (e.g. the "help" command is implemented by the help
// function in help.go).
//
// The usage message for each command is declared by a constant starting with
// the command name and followed by the suffix "Usage". For example, the usage
// message for the "help" command is declared by the constant helpUsage.
//
// The usage message contains a "Usage:	httpchat <command>" section presenting
// the structure of the command. Note the tabulation separating "Usage:" and
// "httpchat".
//
// Commands write to the stdout and stderr variables rather than directly to
// the standard output and error of the process.

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/stealthrocket/httpchat/internal/httpchat"
)

const rootUsage = `httpchat - HTTP/1.1 chat server

   httpchat is a chat application served by its own implementation of the
   HTTP/1.1 protocol. Anonymous users post messages, edit and delete their own
   messages, react with emojis and pick a nickname.

Example:

   $ httpchat serve --address 127.0.0.1:8080 --static-root ./www
   {"level":"info","address":"127.0.0.1:8080","message":"listening"}
   ...

   $ httpchat get messages
   MESSAGE ID                            AUTHOR      NICKNAME  UPDATED  CONTENT
   ...

For a list of commands available, run 'httpchat help'.`

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// root is the httpchat entrypoint.
func root(ctx context.Context, args ...string) int {
	httpchat.ConfigPath = httpchat.DefaultConfigPath
	if path := os.Getenv("HTTPCHATCONFIG"); path != "" {
		httpchat.ConfigPath = httpchat.Path(path)
	}

	// Options are only parsed up to the command name, the following ones are
	// parsed by the command.
	flagSet := newFlagSet("httpchat", helpUsage)
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			flagSet.printUsage()
			return 0
		}
		return exitStatus("", usageError("httpchat: %s", err))
	}
	var err error
	if args = flagSet.Args(); len(args) == 0 {
		fmt.Fprintln(stdout, rootUsage)
		return 0
	}

	cmd, args := args[0], args[1:]
	switch cmd {
	case "config":
		err = config(ctx, args)
	case "get":
		err = get(ctx, args)
	case "help":
		err = help(ctx, args)
	case "serve":
		err = serve(ctx, args)
	case "version":
		err = version(ctx, args)
	default:
		err = unknown(ctx, cmd)
	}
	return exitStatus(cmd, err)
}

func exitStatus(cmd string, err error) int {
	var code exitCode
	var use usage

	switch {
	case err == nil:
		return 0
	case errors.As(err, &code):
		return int(code)
	case errors.As(err, &use):
		fmt.Fprintf(stderr, "%s\n", use)
		return 2
	default:
		fmt.Fprintf(stderr, "ERR: httpchat %s: %s\n", cmd, err)
		return 1
	}
}

// exitCode is an error type returned from command functions to indicate the
// exit code that should be returned by the program.
type exitCode int

func (e exitCode) Error() string {
	return fmt.Sprintf("exit: %d", e)
}

// usage is an error type returned from command functions to indicate a usage
// error.
//
// Usage errors cause the program to exit with status code 2.
type usage string

func usageError(msg string, args ...any) error {
	return usage(fmt.Sprintf(msg, args...))
}

func (e usage) Error() string {
	return string(e)
}

func setEnum[T ~string](enum *T, typ string, value string, options ...string) error {
	for _, option := range options {
		if option == value {
			*enum = T(option)
			return nil
		}
	}
	return fmt.Errorf("unsupported %s: %q (not one of %s)", typ, value, strings.Join(options, ", "))
}

type outputFormat string

func (o outputFormat) String() string {
	return string(o)
}

func (o *outputFormat) Set(value string) error {
	return setEnum(o, "output format", value, "text", "json", "yaml")
}

type storeDriver string

func (d storeDriver) String() string {
	return string(d)
}

func (d *storeDriver) Set(value string) error {
	return setEnum(d, "store driver", value, httpchat.MemoryDriver, httpchat.DirDriver, httpchat.MongoDriver)
}

type logFormat string

func (f logFormat) String() string {
	return string(f)
}

func (f *logFormat) Set(value string) error {
	return setEnum(f, "log format", value, "json", "console")
}

// commandFlags is the set of options of a command, along with the usage
// message printed when the help option is passed.
type commandFlags struct {
	*flag.FlagSet
	usage string
}

func newFlagSet(cmd, usage string) *commandFlags {
	f := &commandFlags{
		FlagSet: flag.NewFlagSet(cmd, flag.ContinueOnError),
		usage:   strings.TrimSpace(usage),
	}
	// Parsing errors are reported by the caller, the usage message is only
	// printed for the help option.
	f.SetOutput(io.Discard)
	f.Usage = func() {}
	customVar(f, &httpchat.ConfigPath, "c", "config")
	return f
}

func (f *commandFlags) printUsage() {
	fmt.Fprintln(stdout, f.usage)
}

// parseFlags is a greedy parser which consumes all options known to f and
// returns the remaining arguments.
//
// When the help option is passed, the usage message is printed and the
// returned error is exitCode(0).
func parseFlags(f *commandFlags, args []string) ([]string, error) {
	var unknownArgs []string
	for {
		if err := f.Parse(args); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				f.printUsage()
				return nil, exitCode(0)
			}
			return nil, usageError("%s: %s", f.Name(), err)
		}
		if args = f.Args(); len(args) == 0 {
			return unknownArgs, nil
		}
		i := slices.IndexFunc(args, func(s string) bool {
			return strings.HasPrefix(s, "-")
		})
		if i < 0 {
			i = len(args)
		} else if args[i] == "-" {
			i++
		}
		if i == 0 {
			// A "--" separator, the arguments after it are not options.
			return append(unknownArgs, args...), nil
		}
		unknownArgs = append(unknownArgs, args[:i]...)
		args = args[i:]
	}
}

func boolVar(f *commandFlags, dst *bool, name string, alias ...string) {
	f.BoolVar(dst, name, *dst, "")
	for _, name := range alias {
		f.BoolVar(dst, name, *dst, "")
	}
}

func stringVar(f *commandFlags, dst *string, name string, alias ...string) {
	f.StringVar(dst, name, *dst, "")
	for _, name := range alias {
		f.StringVar(dst, name, *dst, "")
	}
}

func customVar(f *commandFlags, dst flag.Value, name string, alias ...string) {
	f.Var(dst, name, "")
	for _, name := range alias {
		f.Var(dst, name, "")
	}
}
