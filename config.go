package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/stealthrocket/httpchat/internal/httpchat"
)

const configUsage = `
Usage:	httpchat config [options]

   The config sub-command prints the configuration of httpchat. The text format
   shows the content of the configuration file, or the defaults when the file
   does not exist. The json and yaml formats show the effective configuration.

Options:
   -c, --config path    Path to the httpchat configuration file (overrides HTTPCHATCONFIG)
   -h, --help           Show this usage information
   -o, --output format  Output format, one of: text, json, yaml
`

func config(ctx context.Context, args []string) error {
	output := outputFormat("text")

	flagSet := newFlagSet("httpchat config", configUsage)
	customVar(flagSet, &output, "o", "output")

	args, err := parseFlags(flagSet, args)
	if err != nil {
		return err
	}
	if len(args) != 0 {
		return usageError("httpchat config: unexpected arguments: %q", args)
	}

	config, err := httpchat.LoadConfig()
	if err != nil {
		return err
	}

	switch output {
	case "json":
		e := json.NewEncoder(stdout)
		e.SetEscapeHTML(false)
		e.SetIndent("", "  ")
		return e.Encode(config)
	case "yaml":
		e := yaml.NewEncoder(stdout)
		e.SetIndent(2)
		if err := e.Encode(config); err != nil {
			return err
		}
		return e.Close()
	default:
		r, _, err := httpchat.OpenConfig()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		defer r.Close()
		_, err = io.Copy(stdout, r)
		return err
	}
}
