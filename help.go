package main

import (
	"context"
	"fmt"
	"strings"
)

const helpUsage = `
Usage:	httpchat <command> [options]

Server Commands:
   serve    Run the chat server

Inspection Commands:
   get      Display the messages or the routes of the server

Other Commands:
   config   Show the httpchat configuration
   help     Show usage information about httpchat commands
   version  Show the httpchat version information

Global Options:
   -c, --config path  Path to the httpchat configuration file (overrides HTTPCHATCONFIG)
   -h, --help         Show usage information

For a description of each command, run 'httpchat help <command>'.`

func help(ctx context.Context, args []string) error {
	flagSet := newFlagSet("httpchat help", helpUsage)

	args, err := parseFlags(flagSet, args)
	if err != nil {
		return err
	}

	var cmd string
	var msg string

	if len(args) > 0 {
		cmd = args[0]
	}

	switch cmd {
	case "config":
		msg = configUsage
	case "get":
		msg = getUsage
	case "help", "":
		msg = helpUsage
	case "serve":
		msg = serveUsage
	case "version":
		msg = versionUsage
	default:
		return usageError("httpchat help %s: unknown command", cmd)
	}

	fmt.Fprintln(stdout, strings.TrimSpace(msg))
	return nil
}
