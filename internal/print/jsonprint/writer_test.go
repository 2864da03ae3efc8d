package jsonprint_test

import (
	"bytes"
	"testing"

	"github.com/stealthrocket/httpchat/internal/assert"
	"github.com/stealthrocket/httpchat/internal/chat"
	"github.com/stealthrocket/httpchat/internal/print/jsonprint"
	"github.com/stealthrocket/httpchat/internal/stream"
)

func TestWriteNothing(t *testing.T) {
	b := new(bytes.Buffer)
	w := jsonprint.NewWriter[*chat.Message](b)
	assert.OK(t, w.Close())
	assert.Equal(t, b.String(), "")
}

func TestWriteMessages(t *testing.T) {
	b := new(bytes.Buffer)
	w := jsonprint.NewWriter[*chat.Message](b)
	assert.OK(t, stream.WriteAll(w, []*chat.Message{
		{
			Author:    "alice",
			ID:        "m1",
			Content:   "&lt;b&gt;hi&lt;/b&gt;",
			Reactions: map[string][]string{"👍": {"bob"}},
			Nickname:  "Al",
		},
		{
			Author:    "bob",
			ID:        "m2",
			Content:   "hello",
			Updated:   true,
			Reactions: map[string][]string{},
		},
	}))
	assert.Equal(t, b.String(), `{
  "author": "alice",
  "id": "m1",
  "content": "&lt;b&gt;hi&lt;/b&gt;",
  "updated": false,
  "reactions": {
    "👍": [
      "bob"
    ]
  },
  "nickname": "Al"
}
{
  "author": "bob",
  "id": "m2",
  "content": "hello",
  "updated": true,
  "reactions": {}
}
`)
}

func TestWriteInvalidValue(t *testing.T) {
	b := new(bytes.Buffer)
	w := jsonprint.NewWriter[any](b)

	n, err := w.Write([]any{
		map[string]int{"a": 1},
		make(chan int),
		map[string]int{"b": 2},
	})
	assert.Equal(t, n, 1)
	assert.NotEqual(t, err, nil)
	assert.Equal(t, b.String(), "{\n  \"a\": 1\n}\n")
}
