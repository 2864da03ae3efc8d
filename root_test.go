package main

import (
	"testing"

	"github.com/stealthrocket/httpchat/internal/assert"
)

var rootTests = tests{
	"running without a command shows the program description": func(t *testing.T) {
		stdout, stderr, exitCode := execute(t)
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "httpchat - HTTP/1.1 chat server\n")
		assert.Equal(t, stderr, "")
	},

	"the help option shows the list of commands": func(t *testing.T) {
		stdout, stderr, exitCode := execute(t, "-h")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\thttpchat <command> ")
		assert.Equal(t, stderr, "")
	},

	"passing an unsupported flag causes an error": func(t *testing.T) {
		stdout, stderr, exitCode := execute(t, "--whatever")
		assert.Equal(t, exitCode, 2)
		assert.Equal(t, stdout, "")
		assert.HasPrefix(t, stderr, "httpchat: flag provided but not defined: -whatever")
	},
}
