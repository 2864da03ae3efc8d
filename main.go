package main

import (
	"context"
	"io"
	"log"
	"os"
)

func init() {
	// Libraries writing to the standard logger would interleave with the
	// structured logs of the server.
	log.SetOutput(io.Discard)
}

func main() {
	os.Exit(root(context.Background(), os.Args[1:]...))
}
