package http1

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Server accepts connections and serves one request on each of them, every
// connection being handled by its own goroutine.
type Server struct {
	Router *Router
	Log    zerolog.Logger

	// ReadTimeout bounds the time spent reading a request. Zero means no
	// timeout.
	ReadTimeout time.Duration

	// MaxRequestSize is the limit on the size of requests. Zero means no
	// limit.
	MaxRequestSize int

	// AcceptLimit throttles the rate at which connections are accepted. A
	// nil limiter does not throttle.
	AcceptLimit *rate.Limiter
}

// Serve accepts connections on l until ctx is canceled or accepting fails.
// It waits for the connections being served to complete before returning.
// The listener is closed when Serve returns.
//
// Connections in flight when ctx is canceled are not interrupted, they keep
// the values of ctx but not its cancellation.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	connCtx := context.WithoutCancel(ctx)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		<-ctx.Done()
		if err := l.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			s.Log.Warn().Err(err).Msg("closing listener")
		}
		return nil
	})

	err := s.accept(ctx, connCtx, group, l)
	cancel()
	_ = group.Wait()

	if errors.Is(err, net.ErrClosed) || errors.Is(err, context.Canceled) {
		err = nil
	}
	return err
}

func (s *Server) accept(ctx, connCtx context.Context, group *errgroup.Group, l net.Listener) error {
	s.Log.Info().Str("address", l.Addr().String()).Msg("listening")

	for {
		if s.AcceptLimit != nil {
			if err := s.AcceptLimit.Wait(ctx); err != nil {
				return err
			}
		}

		conn, err := l.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				s.Log.Warn().Err(err).Msg("accepting connection")
				continue
			}
			return err
		}

		c := NewConn(conn, s.Router, s.Log)
		c.readTimeout = s.ReadTimeout
		c.maxRequestSize = s.MaxRequestSize

		group.Go(func() error {
			if err := c.Serve(connCtx); err != nil {
				c.log.Debug().Err(err).Msg("connection")
			}
			return nil
		})
	}
}
