package main

import (
	"context"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"golang.org/x/net/nettest"

	"github.com/stealthrocket/httpchat/internal/assert"
)

var serveTests = tests{
	"show the serve command help with the short option": func(t *testing.T) {
		stdout, stderr, exitCode := execute(t, "serve", "-h")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\thttpchat serve [options]\n")
		assert.Equal(t, stderr, "")
	},

	"passing an unsupported store driver causes an error": func(t *testing.T) {
		stdout, stderr, exitCode := execute(t, "serve", "--store", "sqlite")
		assert.Equal(t, exitCode, 2)
		assert.Equal(t, stdout, "")
		assert.HasPrefix(t, stderr, "httpchat serve: invalid value \"sqlite\" for flag -store")
	},

	"passing an invalid log level causes an error": func(t *testing.T) {
		_, stderr, exitCode := execute(t, "serve", "--log-level", "loud")
		assert.Equal(t, exitCode, 1)
		assert.HasPrefix(t, stderr, "ERR: httpchat serve: ")
	},

	"the server answers requests until the context is canceled": func(t *testing.T) {
		address := freeAddress(t)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		type result struct {
			stderr   string
			exitCode int
		}
		done := make(chan result, 1)
		go func() {
			_, stderr, exitCode := executeContext(t, ctx, "serve", "-a", address, "--store", "memory")
			done <- result{stderr, exitCode}
		}()

		res := getHello(t, address)
		assert.HasPrefix(t, res, "HTTP/1.1 200 OK\r\n")
		assert.Equal(t, res[strings.Index(res, "\r\n\r\n")+4:], "hello")

		cancel()
		select {
		case r := <-done:
			assert.Equal(t, r.exitCode, 0)
			assert.Contains(t, r.stderr, `"message":"listening"`)
			assert.Contains(t, r.stderr, `"path":"/hello"`)
			assert.Contains(t, r.stderr, `"message":"server stopped"`)
		case <-time.After(10 * time.Second):
			t.Fatal("timeout waiting for the server to stop")
		}
	},
}

func freeAddress(t *testing.T) string {
	t.Helper()
	l, err := nettest.NewLocalListener("tcp")
	assert.OK(t, err)
	address := l.Addr().String()
	assert.OK(t, l.Close())
	return address
}

// getHello sends a request to the hello endpoint of the server at address,
// retrying until the server accepts connections.
func getHello(t *testing.T, address string) string {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)

	for {
		conn, err := net.Dial("tcp", address)
		if err != nil {
			if time.Now().After(deadline) {
				t.Fatal(err)
			}
			time.Sleep(10 * time.Millisecond)
			continue
		}
		defer conn.Close()

		_, err = io.WriteString(conn, "GET /hello HTTP/1.1\r\nHost: "+address+"\r\n\r\n")
		assert.OK(t, err)

		b, err := io.ReadAll(conn)
		assert.OK(t, err)
		return string(b)
	}
}
