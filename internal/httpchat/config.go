// Package httpchat assembles the chat server from its configuration.
package httpchat

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is the location of the configuration file when none
	// was set on the command line or the environment.
	DefaultConfigPath    = "~/.httpchat/config.yaml"
	defaultStoreLocation = "~/.httpchat/messages"
)

// ConfigPath is the path to the httpchat configuration.
var ConfigPath Path = DefaultConfigPath

// Path represents a path on the file system.
//
// The special prefix "~/" represents the home directory of the user that the
// program is running as.
type Path string

func (p Path) String() string {
	return string(p)
}

func (p *Path) Set(s string) error {
	*p = Path(s)
	return nil
}

// Resolve returns the path with the "~/" prefix expanded.
func (p Path) Resolve() (string, error) {
	s := string(p)
	if !strings.HasPrefix(s, "~/") {
		return s, nil
	}
	home, ok := os.LookupEnv("HOME")
	if !ok {
		u, err := user.Current()
		if err != nil {
			return "", err
		}
		home = u.HomeDir
	}
	return filepath.Join(home, s[2:]), nil
}

// LoadConfig opens and reads the configuration file.
func LoadConfig() (*Config, error) {
	r, _, err := OpenConfig()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return ReadConfig(r)
}

// OpenConfig opens the configuration file. If the file does not exist, the
// returned reader exposes the default configuration.
func OpenConfig() (io.ReadCloser, string, error) {
	path, err := ConfigPath.Resolve()
	if err != nil {
		return nil, path, err
	}
	f, err := os.Open(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, path, err
		}
		c := DefaultConfig()
		b, _ := yaml.Marshal(c)
		return io.NopCloser(bytes.NewReader(b)), path, nil
	}
	return f, path, nil
}

// ReadConfig reads and parses configuration. Unknown fields are errors, and
// fields absent from the input keep their default value.
func ReadConfig(r io.Reader) (*Config, error) {
	c := DefaultConfig()
	d := yaml.NewDecoder(r)
	d.KnownFields(true)
	if err := d.Decode(c); err != nil {
		if errors.Is(err, io.EOF) {
			return c, nil
		}
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// DefaultConfig is the default configuration.
func DefaultConfig() *Config {
	c := new(Config)
	c.Server.Address = "0.0.0.0:8080"
	c.Server.ReadTimeout = 10 * time.Second
	c.Server.MaxRequestSize = 1024 * 1024
	c.Server.AcceptBurst = 1
	c.Static.Root = "."
	c.Store.Driver = MemoryDriver
	c.Store.Location = defaultStoreLocation
	c.Store.Mongo.Database = "cse312"
	c.Store.Mongo.Collection = "chat"
	c.Log.Level = "info"
	c.Log.Format = "json"
	return c
}

const (
	MemoryDriver = "memory"
	DirDriver    = "dir"
	MongoDriver  = "mongo"
)

// Config is httpchat configuration.
type Config struct {
	Server struct {
		Address        string        `json:"address" yaml:"address"`
		ReadTimeout    time.Duration `json:"readTimeout" yaml:"readTimeout"`
		MaxRequestSize int           `json:"maxRequestSize" yaml:"maxRequestSize"`
		AcceptRate     float64       `json:"acceptRate" yaml:"acceptRate"`
		AcceptBurst    int           `json:"acceptBurst" yaml:"acceptBurst"`
	} `json:"server" yaml:"server"`
	Static struct {
		Root Path `json:"root" yaml:"root"`
		Gzip bool `json:"gzip" yaml:"gzip"`
	} `json:"static" yaml:"static"`
	Store struct {
		Driver   string `json:"driver" yaml:"driver"`
		Location Path   `json:"location" yaml:"location"`
		Mongo    struct {
			URI        string `json:"uri,omitempty" yaml:"uri,omitempty"`
			Database   string `json:"database" yaml:"database"`
			Collection string `json:"collection" yaml:"collection"`
		} `json:"mongo" yaml:"mongo"`
	} `json:"store" yaml:"store"`
	Log struct {
		Level  string `json:"level" yaml:"level"`
		Format string `json:"format" yaml:"format"`
	} `json:"log" yaml:"log"`
}

// Validate checks the consistency of the configuration.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case MemoryDriver, DirDriver, MongoDriver:
	default:
		return fmt.Errorf("invalid store driver: %q (must be one of %s, %s, %s)",
			c.Store.Driver, MemoryDriver, DirDriver, MongoDriver)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format: %q (must be json or console)", c.Log.Format)
	}
	if c.Server.ReadTimeout < 0 {
		return fmt.Errorf("invalid read timeout: %s", c.Server.ReadTimeout)
	}
	if c.Server.MaxRequestSize < 0 {
		return fmt.Errorf("invalid max request size: %d", c.Server.MaxRequestSize)
	}
	if c.Server.AcceptRate < 0 {
		return fmt.Errorf("invalid accept rate: %g", c.Server.AcceptRate)
	}
	return nil
}

// MongoURI returns the URI of the MongoDB server. When none was configured,
// the host is "mongo" if the DOCKER_DB environment variable is "true", and
// "localhost" otherwise.
func (c *Config) MongoURI() string {
	if c.Store.Mongo.URI != "" {
		return c.Store.Mongo.URI
	}
	host := "localhost"
	if os.Getenv("DOCKER_DB") == "true" {
		host = "mongo"
	}
	return "mongodb://" + host + ":27017"
}
