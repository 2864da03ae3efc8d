package main

import (
	"context"
)

const unknownCommand = `httpchat %s: unknown command
For a list of commands available, run 'httpchat help'.`

func unknown(ctx context.Context, cmd string) error {
	return usageError(unknownCommand, cmd)
}
