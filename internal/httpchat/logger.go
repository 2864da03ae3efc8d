package httpchat

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger constructs the logger of the server writing to w.
func (c *Config) NewLogger(w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil {
		return zerolog.Nop(), err
	}
	if c.Log.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}
