package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stealthrocket/httpchat/internal/assert"
	"github.com/stealthrocket/httpchat/internal/chat"
	"github.com/stealthrocket/httpchat/internal/httpchat"
)

var getTests = tests{
	"show the get command help with the short option": func(t *testing.T) {
		stdout, stderr, exitCode := execute(t, "get", "-h")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\thttpchat get <resource type> [options]\n")
		assert.Equal(t, stderr, "")
	},

	"passing an unsupported flag reports the error without the usage": func(t *testing.T) {
		stdout, stderr, exitCode := execute(t, "get", "routes", "--whatever")
		assert.Equal(t, exitCode, 2)
		assert.Equal(t, stdout, "")
		assert.Equal(t, stderr, "httpchat get: flag provided but not defined: -whatever\n")
	},

	"get without a resource type causes an error": func(t *testing.T) {
		stdout, stderr, exitCode := execute(t, "get")
		assert.Equal(t, exitCode, 2)
		assert.Equal(t, stdout, "")
		assert.HasPrefix(t, stderr, "Expected exactly one resource type as argument\n")
	},

	"get with an unknown resource type causes an error": func(t *testing.T) {
		stdout, stderr, exitCode := execute(t, "get", "whatever")
		assert.Equal(t, exitCode, 2)
		assert.Equal(t, stdout, "")
		assert.HasPrefix(t, stderr, "no resources matching 'whatever'\n")
	},

	"get with an ambiguous resource type suggests resource types": func(t *testing.T) {
		_, stderr, exitCode := execute(t, "get", "messg")
		assert.Equal(t, exitCode, 2)
		assert.Contains(t, stderr, "Did you mean?\n  message\n")
	},

	"get routes shows the route table": func(t *testing.T) {
		stdout, stderr, exitCode := execute(t, "get", "routes")
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, stderr, "")

		lines := strings.Split(strings.TrimSuffix(stdout, "\n"), "\n")
		assert.Equal(t, len(lines), 12)
		assert.EqualAll(t, strings.Fields(lines[0]), []string{"METHOD", "PATH", "MATCH"})
		assert.EqualAll(t, strings.Fields(lines[1]), []string{"GET", "/hello", "exact"})
		assert.EqualAll(t, strings.Fields(lines[2]), []string{"GET", "/public", "prefix"})
		assert.EqualAll(t, strings.Fields(lines[11]), []string{"PATCH", "/api/nickname", "exact"})
	},

	"get routes in json": func(t *testing.T) {
		stdout, stderr, exitCode := execute(t, "get", "rt", "-o", "json")
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, stderr, "")

		routes := decodeAll[routeInfo](t, stdout)
		assert.Equal(t, len(routes), 11)
		assert.Equal(t, routes[4], routeInfo{Method: "POST", Path: "/api/chats", Match: "exact"})
		assert.Equal(t, routes[6], routeInfo{Method: "PATCH", Path: "/api/chats", Match: "prefix"})
	},

	"get messages of an empty store shows only the header": func(t *testing.T) {
		stdout, stderr, exitCode := execute(t, "get", "messages")
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, stderr, "")
		assert.EqualAll(t, strings.Fields(stdout), []string{"MESSAGE", "ID", "AUTHOR", "NICKNAME", "UPDATED", "REACTIONS", "CONTENT"})
	},

	"get messages lists the messages in insertion order": func(t *testing.T) {
		insertMessages(t,
			&chat.Message{ID: "m1", Author: "alice", Content: "hello"},
			&chat.Message{ID: "m2", Author: "bob", Content: "world", Nickname: "Bobby"},
		)

		stdout, stderr, exitCode := execute(t, "get", "msg", "-q")
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, stderr, "")
		assert.Equal(t, stdout, "m1\nm2\n")

		stdout, stderr, exitCode = execute(t, "get", "messages", "-o", "json")
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, stderr, "")

		messages := decodeAll[chat.Message](t, stdout)
		assert.Equal(t, len(messages), 2)
		assert.Equal(t, messages[0].Content, "hello")
		assert.Equal(t, messages[1].Nickname, "Bobby")
	},

	"get messages in yaml": func(t *testing.T) {
		insertMessages(t, &chat.Message{ID: "m1", Author: "alice", Content: "hello"})

		stdout, stderr, exitCode := execute(t, "get", "messages", "-o", "yaml")
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, stderr, "")
		assert.Contains(t, stdout, "content: hello\n")
	},
}

// insertMessages writes messages to the store of the test configuration.
func insertMessages(t *testing.T, messages ...*chat.Message) {
	t.Helper()
	ctx := context.Background()

	prev := httpchat.ConfigPath
	httpchat.ConfigPath = httpchat.Path(os.Getenv("HTTPCHATCONFIG"))
	defer func() { httpchat.ConfigPath = prev }()

	config, err := httpchat.LoadConfig()
	assert.OK(t, err)

	store, err := config.OpenStore(ctx)
	assert.OK(t, err)
	defer store.Close(ctx)

	for _, m := range messages {
		assert.OK(t, store.Insert(ctx, m))
	}
}

func decodeAll[T any](t *testing.T, s string) (values []T) {
	t.Helper()
	d := json.NewDecoder(strings.NewReader(s))
	for {
		var v T
		if err := d.Decode(&v); err != nil {
			if err == io.EOF {
				return values
			}
			t.Fatal(err)
		}
		values = append(values, v)
	}
}
