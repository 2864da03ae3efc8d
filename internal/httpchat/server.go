package httpchat

import (
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/stealthrocket/httpchat/internal/http1"
)

// NewServer constructs a server dispatching requests to router.
func (c *Config) NewServer(router *http1.Router, log zerolog.Logger) *http1.Server {
	s := &http1.Server{
		Router:         router,
		Log:            log,
		ReadTimeout:    c.Server.ReadTimeout,
		MaxRequestSize: c.Server.MaxRequestSize,
	}
	if c.Server.AcceptRate > 0 {
		burst := c.Server.AcceptBurst
		if burst < 1 {
			burst = 1
		}
		s.AcceptLimit = rate.NewLimiter(rate.Limit(c.Server.AcceptRate), burst)
	}
	return s
}
