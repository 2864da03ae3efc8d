package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/stealthrocket/httpchat/internal/chat"
	"github.com/stealthrocket/httpchat/internal/http1"
	"github.com/stealthrocket/httpchat/internal/httpchat"
	"github.com/stealthrocket/httpchat/internal/print/jsonprint"
	"github.com/stealthrocket/httpchat/internal/print/textprint"
	"github.com/stealthrocket/httpchat/internal/print/yamlprint"
	"github.com/stealthrocket/httpchat/internal/stream"
)

const getUsage = `
Usage:	httpchat get <resource type> [options]

   The get sub-command displays the state of the chat server. The command must
   be followed by the name of resources to display, which must be one of
   messages or routes.
   (the command also accepts singulars and abbreviations of the resource names)

   Messages are read from the store of the configuration, routes are the ones
   served by the 'httpchat serve' command.

Examples:

   $ httpchat get routes
   METHOD  PATH           MATCH
   GET     /hello         exact
   GET     /public        prefix
   ...

   $ httpchat get messages -o json
   {
     "author": "7ffe4ed8-a9a2-4d4f-8d38-4a2a9e1bf5c1",
     "id": "ee3e8fd9-b2f1-4e5a-9b6e-0e3a3a1f52b0",
     "content": "hello",
     "updated": false,
     "reactions": {}
   }

Options:
   -c, --config path    Path to the httpchat configuration file (overrides HTTPCHATCONFIG)
   -h, --help           Show this usage information
   -o, --output format  Output format, one of: text, json, yaml
   -q, --quiet          Only display the resource ids
`

type resource struct {
	typ string
	alt []string
	get func(ctx context.Context, config *httpchat.Config, output outputFormat, quiet bool) error
}

var resources = [...]resource{
	{
		typ: "message",
		alt: []string{"msg", "msgs", "messages"},
		get: getMessages,
	},

	{
		typ: "route",
		alt: []string{"rt", "routes"},
		get: getRoutes,
	},
}

func get(ctx context.Context, args []string) error {
	var (
		output = outputFormat("text")
		quiet  = false
	)

	flagSet := newFlagSet("httpchat get", getUsage)
	customVar(flagSet, &output, "o", "output")
	boolVar(flagSet, &quiet, "q", "quiet")

	args, err := parseFlags(flagSet, args)
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return usageError(`Expected exactly one resource type as argument` + useCmd("get"))
	}
	resource, err := findResource("get", args[0])
	if err != nil {
		return usage(err.Error())
	}
	config, err := httpchat.LoadConfig()
	if err != nil {
		return err
	}
	return resource.get(ctx, config, output, quiet)
}

func getMessages(ctx context.Context, config *httpchat.Config, output outputFormat, quiet bool) error {
	store, err := config.OpenStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close(ctx)

	messages, err := store.FindAll(ctx)
	if err != nil {
		return err
	}

	type message struct {
		ID        string              `text:"MESSAGE ID"`
		Author    string              `text:"AUTHOR"`
		Nickname  string              `text:"NICKNAME"`
		Updated   bool                `text:"UPDATED"`
		Reactions map[string][]string `text:"REACTIONS"`
		Content   string              `text:"CONTENT"`
	}

	var writer stream.WriteCloser[*chat.Message]
	switch output {
	case "json":
		writer = jsonprint.NewWriter[*chat.Message](stdout)
	case "yaml":
		writer = yamlprint.NewWriter[*chat.Message](stdout)
	default:
		writer = newTableWriter(stdout, quiet, func(m *chat.Message) message {
			return message{
				ID:        m.ID,
				Author:    m.Author,
				Nickname:  m.Nickname,
				Updated:   m.Updated,
				Reactions: m.Reactions,
				Content:   m.Content,
			}
		})
	}
	return stream.WriteAll(writer, messages)
}

type routeInfo struct {
	Method string `json:"method" yaml:"method" text:"METHOD"`
	Path   string `json:"path" yaml:"path" text:"PATH"`
	Match  string `json:"match" yaml:"match" text:"MATCH"`
}

func getRoutes(ctx context.Context, config *httpchat.Config, output outputFormat, quiet bool) error {
	router, err := config.NewRouter(chat.NewMemoryStore())
	if err != nil {
		return err
	}

	routes := router.Routes()
	infos := make([]routeInfo, len(routes))
	for i, r := range routes {
		infos[i] = newRouteInfo(r)
	}

	var writer stream.WriteCloser[routeInfo]
	switch output {
	case "json":
		writer = jsonprint.NewWriter[routeInfo](stdout)
	case "yaml":
		writer = yamlprint.NewWriter[routeInfo](stdout)
	default:
		writer = newTableWriter(stdout, quiet, func(r routeInfo) routeInfo { return r })
	}
	return stream.WriteAll(writer, infos)
}

func newRouteInfo(r http1.Route) routeInfo {
	match := "prefix"
	if r.Exact {
		match = "exact"
	}
	return routeInfo{Method: r.Method, Path: r.Path, Match: match}
}

// newTableWriter returns a writer printing values of T2 as rows of a table
// after converting them to T1. When quiet is true, only the first column is
// printed, without the header.
func newTableWriter[T1, T2 any](w io.Writer, quiet bool, conv func(T2) T1) stream.WriteCloser[T2] {
	var opts []textprint.TableOption[T1]
	if quiet {
		opts = append(opts,
			textprint.Header[T1](false),
			textprint.List[T1](true),
		)
	}
	return &convertWriter[T1, T2]{
		writer:  textprint.NewTableWriter[T1](w, opts...),
		convert: conv,
	}
}

type convertWriter[T1, T2 any] struct {
	writer  stream.WriteCloser[T1]
	convert func(T2) T1
	buffer  []T1
}

func (w *convertWriter[T1, T2]) Write(values []T2) (int, error) {
	w.buffer = w.buffer[:0]
	for _, v := range values {
		w.buffer = append(w.buffer, w.convert(v))
	}
	return w.writer.Write(w.buffer)
}

func (w *convertWriter[T1, T2]) Close() error {
	return w.writer.Close()
}

func findResource(cmd, typ string) (*resource, error) {
	for i, resource := range resources {
		if resource.typ == typ {
			return &resources[i], nil
		}
		for _, alt := range resource.alt {
			if alt == typ {
				return &resources[i], nil
			}
		}
	}

	var matchingResources []*resource
	for i, resource := range resources {
		if prefixLength(resource.typ, typ) > 1 || prefixLength(typ, resource.typ) > 1 {
			matchingResources = append(matchingResources, &resources[i])
		}
	}
	if len(matchingResources) == 0 {
		return nil, fmt.Errorf(`no resources matching '%s'%s`, typ, useCmd(cmd))
	}

	var resourceTypes strings.Builder
	for _, r := range matchingResources {
		resourceTypes.WriteString("\n  ")
		resourceTypes.WriteString(r.typ)
	}

	return nil, fmt.Errorf("no resources matching '%s'\n\nDid you mean?%s", typ, &resourceTypes)
}

func prefixLength(base, prefix string) int {
	n := 0
	for n < len(base) && n < len(prefix) && base[n] == prefix[n] {
		n++
	}
	return n
}

func useCmd(cmd string) string {
	s := new(strings.Builder)
	s.WriteString("\n\n")
	s.WriteString(`Use 'httpchat ` + cmd + ` <resource type>' where the supported resource types are:`)
	for _, r := range resources {
		s.WriteString("\n   ")
		s.WriteString(r.typ)
	}
	return s.String()
}
