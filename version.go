package main

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/stealthrocket/httpchat/internal/print/jsonprint"
	"github.com/stealthrocket/httpchat/internal/print/yamlprint"
	"github.com/stealthrocket/httpchat/internal/stream"
)

const versionUsage = `
Usage:	httpchat version [options]

   The version sub-command prints the version of httpchat, and the source
   revision it was built from when available.

Options:
   -h, --help           Show this usage information
   -o, --output format  Output format, one of: text, json, yaml
`

type versionInfo struct {
	Version   string `json:"version" yaml:"version"`
	Revision  string `json:"revision,omitempty" yaml:"revision,omitempty"`
	Modified  bool   `json:"modified,omitempty" yaml:"modified,omitempty"`
	GoVersion string `json:"goVersion" yaml:"goVersion"`
}

func (v *versionInfo) String() string {
	if v.Revision == "" {
		return v.Version
	}
	rev := v.Revision
	if len(rev) > 12 {
		rev = rev[:12]
	}
	if v.Modified {
		rev += "-dirty"
	}
	return v.Version + " (" + rev + ")"
}

func version(ctx context.Context, args []string) error {
	output := outputFormat("text")

	flagSet := newFlagSet("httpchat version", versionUsage)
	customVar(flagSet, &output, "o", "output")

	args, err := parseFlags(flagSet, args)
	if err != nil {
		return err
	}
	if len(args) != 0 {
		return usageError("httpchat version: unexpected arguments: %q", args)
	}

	info := currentVersion()
	switch output {
	case "json":
		return stream.WriteAll(jsonprint.NewWriter[*versionInfo](stdout), []*versionInfo{info})
	case "yaml":
		return stream.WriteAll(yamlprint.NewWriter[*versionInfo](stdout), []*versionInfo{info})
	default:
		_, err := fmt.Fprintf(stdout, "httpchat %s\n", info)
		return err
	}
}

// currentVersion reads the version of the main module and the version control
// settings recorded by the go toolchain in the binary.
func currentVersion() *versionInfo {
	v := &versionInfo{Version: "devel", GoVersion: runtime.Version()}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return v
	}
	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		v.Version = info.Main.Version
	}
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			v.Revision = setting.Value
		case "vcs.modified":
			v.Modified = setting.Value == "true"
		}
	}
	return v
}
