package main

import (
	"encoding/json"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/stealthrocket/httpchat/internal/assert"
	"github.com/stealthrocket/httpchat/internal/httpchat"
)

var configTests = tests{
	"show the config command help with the short option": func(t *testing.T) {
		stdout, stderr, exitCode := execute(t, "config", "-h")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\thttpchat config [options]\n")
		assert.Equal(t, stderr, "")
	},

	"the text output shows the content of the configuration file": func(t *testing.T) {
		stdout, stderr, exitCode := execute(t, "config")
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, stderr, "")
		assert.Contains(t, stdout, "driver: dir\n")
	},

	"the json output shows the effective configuration": func(t *testing.T) {
		stdout, stderr, exitCode := execute(t, "config", "-o", "json")
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, stderr, "")

		var config httpchat.Config
		assert.OK(t, json.Unmarshal([]byte(stdout), &config))
		assert.Equal(t, config.Store.Driver, httpchat.DirDriver)
		assert.Equal(t, config.Server.Address, httpchat.DefaultConfig().Server.Address)
	},

	"the yaml output shows the effective configuration": func(t *testing.T) {
		stdout, stderr, exitCode := execute(t, "config", "--output", "yaml")
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, stderr, "")

		config := new(httpchat.Config)
		assert.OK(t, yaml.Unmarshal([]byte(stdout), config))
		assert.Equal(t, config.Store.Driver, httpchat.DirDriver)
		assert.Equal(t, config.Log.Format, "json")
	},

	"the configuration path can be set with an option": func(t *testing.T) {
		stdout, stderr, exitCode := execute(t, "config", "-c", "/path/does/not/exist.yaml", "-o", "yaml")
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, stderr, "")
		assert.Contains(t, stdout, "driver: memory\n")
	},

	"passing an unsupported output format causes an error": func(t *testing.T) {
		stdout, stderr, exitCode := execute(t, "config", "-o", "xml")
		assert.Equal(t, exitCode, 2)
		assert.Equal(t, stdout, "")
		assert.HasPrefix(t, stderr, "httpchat config: invalid value \"xml\" for flag -o")
	},

	"passing arguments causes an error": func(t *testing.T) {
		_, stderr, exitCode := execute(t, "config", "whatever")
		assert.Equal(t, exitCode, 2)
		assert.HasPrefix(t, stderr, "httpchat config: unexpected arguments")
	},
}
