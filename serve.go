package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/stealthrocket/httpchat/internal/http1"
	"github.com/stealthrocket/httpchat/internal/httpchat"
)

const serveUsage = `
Usage:	httpchat serve [options]

   The serve sub-command runs the chat server until it receives SIGINT or
   SIGTERM. It then stops accepting connections and waits for the requests
   being served to complete.

   Options set on the command line override the values of the configuration
   file.

Example:

   $ httpchat serve --store dir --log-format console
   ...

Options:
   -a, --address addr        Address to listen on (default 0.0.0.0:8080)
   -c, --config path         Path to the httpchat configuration file (overrides HTTPCHATCONFIG)
   -h, --help                Show this usage information
       --log-format format   Format of the logs, one of: json, console
       --log-level level     Minimum level of the logs (e.g. debug, info, warn)
       --static-root path    Directory containing the public directory of static files
       --store driver        Storage of chat messages, one of: memory, dir, mongo
`

func serve(ctx context.Context, args []string) error {
	var (
		address    string
		driver     storeDriver
		staticRoot httpchat.Path
		logLevel   string
		logFmt     logFormat
	)

	flagSet := newFlagSet("httpchat serve", serveUsage)
	stringVar(flagSet, &address, "a", "address")
	customVar(flagSet, &driver, "store")
	customVar(flagSet, &staticRoot, "static-root")
	stringVar(flagSet, &logLevel, "log-level")
	customVar(flagSet, &logFmt, "log-format")

	args, err := parseFlags(flagSet, args)
	if err != nil {
		return err
	}
	if len(args) != 0 {
		return usageError("httpchat serve: unexpected arguments: %q", args)
	}

	config, err := httpchat.LoadConfig()
	if err != nil {
		return err
	}
	if address != "" {
		config.Server.Address = address
	}
	if driver != "" {
		config.Store.Driver = string(driver)
	}
	if staticRoot != "" {
		config.Static.Root = staticRoot
	}
	if logLevel != "" {
		config.Log.Level = logLevel
	}
	if logFmt != "" {
		config.Log.Format = string(logFmt)
	}
	if err := config.Validate(); err != nil {
		return err
	}

	log, err := config.NewLogger(stderr)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := config.OpenStore(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(context.WithoutCancel(ctx)); err != nil {
			log.Warn().Err(err).Msg("closing message store")
		}
	}()

	router, err := config.NewRouter(store)
	if err != nil {
		return err
	}

	l, err := http1.Listen(ctx, config.Server.Address)
	if err != nil {
		return err
	}

	err = config.NewServer(router, log).Serve(ctx, l)
	log.Info().Msg("server stopped")
	return err
}
