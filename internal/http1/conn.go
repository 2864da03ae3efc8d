package http1

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

const (
	// ReadBufferSize is the size of the reads issued on connections.
	ReadBufferSize = 2048

	// MaxHeaderSize is the limit on the size of a request header block.
	MaxHeaderSize = 64 * 1024
)

var (
	ErrHeaderTooLarge = errors.New("http request header too large")
	ErrBodyTooLarge   = errors.New("http request body too large")
)

// ReadMessage reads one HTTP request from r.
//
// The header block is read until the first blank line; if it carries a
// Content-Length header the read continues until that many body bytes have
// been received. Bytes that arrive in the same reads as the message are kept
// in the returned buffer. maxSize bounds the total size of the message, zero
// means no limit.
func ReadMessage(r io.Reader, maxSize int) ([]byte, error) {
	buf := make([]byte, 0, ReadBufferSize)
	end := -1
	length := 0
	eof := false

	for {
		if end < 0 {
			if i := bytes.Index(buf, blankLine); i >= 0 {
				end = i + len(blankLine)
				n, err := parseContentLength(buf[:i])
				if err != nil {
					return buf, parseError(buf, "%s", err)
				}
				length = n
				if maxSize > 0 && (length > maxSize || end > maxSize-length) {
					return buf, ErrBodyTooLarge
				}
			} else if len(buf) > MaxHeaderSize {
				return buf, ErrHeaderTooLarge
			}
		}
		if end >= 0 && len(buf)-end >= length {
			return buf, nil
		}

		if eof {
			switch {
			case len(buf) == 0:
				return nil, io.EOF
			case end < 0:
				return buf, parseError(buf, "connection closed before the end of the header block")
			default:
				return buf, io.ErrUnexpectedEOF
			}
		}

		if len(buf) == cap(buf) {
			buf = append(buf, make([]byte, ReadBufferSize)...)[:len(buf)]
		}
		n, err := r.Read(buf[len(buf):cap(buf)])
		buf = buf[:len(buf)+n]

		if err != nil {
			if err != io.EOF {
				return buf, err
			}
			eof = true
		}
	}
}

// parseContentLength looks for a Content-Length header in the header block.
// The name is compared without case so framing works for any client, even
// though the parsed request exposes header names verbatim.
func parseContentLength(header []byte) (int, error) {
	_, fields := splitLine(header)
	for len(fields) > 0 {
		var line []byte
		line, fields = splitLine(fields)
		name, value, ok := bytes.Cut(line, headerSep)
		if !ok || !bytes.EqualFold(name, []byte(contentLength)) {
			continue
		}
		n, err := strconv.Atoi(string(bytes.TrimSpace(value)))
		if err != nil {
			return 0, fmt.Errorf("malformed content-length header: %w", err)
		}
		if n < 0 {
			return 0, fmt.Errorf("malformed content-length header: %d", n)
		}
		return n, nil
	}
	return 0, nil
}

// Conn handles the single request/response exchange of an accepted
// connection. It is the sink that responses are written to.
type Conn struct {
	conn           net.Conn
	router         *Router
	log            zerolog.Logger
	readTimeout    time.Duration
	maxRequestSize int
	written        int
}

// NewConn constructs a Conn serving the connection with the router.
func NewConn(conn net.Conn, router *Router, log zerolog.Logger) *Conn {
	return &Conn{
		conn:   conn,
		router: router,
		log:    log.With().Str("remote", conn.RemoteAddr().String()).Logger(),
	}
}

// SendAll writes data to the connection.
func (c *Conn) SendAll(data []byte) error {
	n, err := c.conn.Write(data)
	c.written += n
	return err
}

// Serve reads one request, routes it and closes the connection.
func (c *Conn) Serve(ctx context.Context) error {
	defer c.conn.Close()

	if c.readTimeout > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.readTimeout)); err != nil {
			return err
		}
	}

	data, err := ReadMessage(c.conn, c.maxRequestSize)
	if err != nil {
		return c.readError(err)
	}

	req, err := ParseRequest(data)
	if err != nil {
		return c.readError(err)
	}

	start := time.Now()
	res, err := c.router.RouteRequest(ctx, req, c)

	event := c.log.Info()
	if err != nil {
		event = c.log.Error().Err(err)
	}
	event.
		Str("method", req.Method).
		Str("path", req.Path).
		Int("status", res.StatusCode()).
		Int("bytes", c.written).
		Dur("duration", time.Since(start)).
		Msg("request")
	return nil
}

func (c *Conn) readError(err error) error {
	var res *Response
	var parseErr *ParseError

	switch {
	case err == io.EOF:
		return nil
	case errors.Is(err, ErrBodyTooLarge):
		res = NewResponse().SetStatus(413, "Payload Too Large").Text("Payload Too Large")
	case errors.Is(err, ErrHeaderTooLarge):
		res = NewResponse().SetStatus(431, "Request Header Fields Too Large").Text("Request Header Fields Too Large")
	case errors.As(err, &parseErr), errors.Is(err, io.ErrUnexpectedEOF):
		res = NewResponse().SetStatus(400, "Bad Request").Text("Malformed request")
	default:
		c.log.Debug().Err(err).Msg("reading request")
		return err
	}

	c.log.Debug().Err(err).Int("status", res.StatusCode()).Msg("rejecting request")
	return c.SendAll(res.Serialize())
}
