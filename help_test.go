package main

import (
	"testing"

	"github.com/stealthrocket/httpchat/internal/assert"
)

var helpTests = tests{
	"calling help with an unknown command causes an error": func(t *testing.T) {
		stdout, stderr, exitCode := execute(t, "help", "whatever")
		assert.Equal(t, exitCode, 2)
		assert.Equal(t, stdout, "")
		assert.Equal(t, stderr, "httpchat help whatever: unknown command\n")
	},

	"passing an unsupported flag to the command causes an error": func(t *testing.T) {
		_, _, exitCode := execute(t, "help", "-_")
		assert.Equal(t, exitCode, 2)
	},

	"show the help command help with the short option": func(t *testing.T) {
		stdout, stderr, exitCode := execute(t, "help", "-h")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\thttpchat <command> ")
		assert.Equal(t, stderr, "")
	},

	"show the help command help with the long option": func(t *testing.T) {
		stdout, stderr, exitCode := execute(t, "help", "--help")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\thttpchat <command> ")
		assert.Equal(t, stderr, "")
	},

	"httpchat help config": func(t *testing.T) {
		stdout, stderr, exitCode := execute(t, "help", "config")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\thttpchat config ")
		assert.Equal(t, stderr, "")
	},

	"httpchat help get": func(t *testing.T) {
		stdout, stderr, exitCode := execute(t, "help", "get")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\thttpchat get ")
		assert.Equal(t, stderr, "")
	},

	"httpchat help help": func(t *testing.T) {
		stdout, stderr, exitCode := execute(t, "help", "help")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\thttpchat <command> ")
		assert.Equal(t, stderr, "")
	},

	"httpchat help serve": func(t *testing.T) {
		stdout, stderr, exitCode := execute(t, "help", "serve")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\thttpchat serve ")
		assert.Equal(t, stderr, "")
	},

	"httpchat help version": func(t *testing.T) {
		stdout, stderr, exitCode := execute(t, "help", "version")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\thttpchat version")
		assert.Equal(t, stderr, "")
	},
}
