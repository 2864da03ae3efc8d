package http1

import (
	"bytes"
	"fmt"
	"strings"
)

var (
	crlf           = []byte("\r\n")
	blankLine      = []byte("\r\n\r\n")
	headerSep      = []byte(":")
	cookieHeader   = "Cookie"
	contentLength  = "Content-Length"
	requestLineSep = " "
)

// Request is an HTTP/1.x request decoded from the bytes received on a
// connection.
//
// Header names are kept as they appeared on the wire, no case folding is
// applied. When a header is repeated, the last value wins.
type Request struct {
	Method      string
	Path        string
	HTTPVersion string
	Headers     map[string]string
	Cookies     map[string]string
	Body        []byte
}

// Header returns the value of the header with the exact name, and whether it
// was present in the request.
func (req *Request) Header(name string) (string, bool) {
	v, ok := req.Headers[name]
	return v, ok
}

// Cookie returns the value of the named cookie, or the empty string if the
// request did not carry it.
func (req *Request) Cookie(name string) string {
	return req.Cookies[name]
}

// ParseError is returned when the bytes of a request cannot be decoded.
type ParseError struct {
	Reason string
	Input  []byte
}

func (e *ParseError) Error() string {
	return "malformed http request: " + e.Reason
}

func parseError(data []byte, msg string, args ...any) error {
	return &ParseError{Reason: fmt.Sprintf(msg, args...), Input: data}
}

// ParseRequest decodes one complete HTTP message.
//
// The input is split on the first "\r\n\r\n" sequence, everything that
// follows is the body and is kept verbatim, even if it contains another blank
// line or disagrees with the Content-Length header.
func ParseRequest(data []byte) (*Request, error) {
	header, body, ok := splitMessage(data)
	if !ok {
		return nil, parseError(data, "missing blank line after the header block")
	}

	requestLine, fields := splitLine(header)
	method, path, version, err := parseRequestLine(requestLine)
	if err != nil {
		return nil, parseError(data, "%s", err)
	}

	req := &Request{
		Method:      method,
		Path:        path,
		HTTPVersion: version,
		Headers:     make(map[string]string),
		Cookies:     make(map[string]string),
		Body:        append([]byte{}, body...),
	}

	for len(fields) > 0 {
		var line []byte
		line, fields = splitLine(fields)
		if len(line) == 0 {
			continue
		}
		name, value, ok := bytes.Cut(line, headerSep)
		if !ok {
			return nil, parseError(data, "header line without a colon: %q", line)
		}
		req.Headers[string(name)] = string(trimLeadingSpace(value))
	}

	if cookies, ok := req.Headers[cookieHeader]; ok {
		parseCookies(req.Cookies, cookies)
	}
	return req, nil
}

func parseRequestLine(line []byte) (method, path, version string, err error) {
	parts := strings.SplitN(string(line), requestLineSep, 3)
	if len(parts) != 3 {
		return "", "", "", fmt.Errorf("request line must have three parts: %q", line)
	}
	method, path, version = parts[0], parts[1], parts[2]
	if method == "" || path == "" || version == "" || strings.Contains(version, requestLineSep) {
		return "", "", "", fmt.Errorf("invalid request line: %q", line)
	}
	return method, path, version, nil
}

// parseCookies fills cookies with the name=value pairs of a Cookie header.
//
// Segments are split on ";" and then on the first "=". The whitespace that
// follows a ";" is dropped so "id=123; theme=dark" yields the names "id" and
// "theme"; nothing else is trimmed.
func parseCookies(cookies map[string]string, header string) {
	for _, segment := range strings.Split(header, ";") {
		segment = strings.TrimLeft(segment, " \t")
		if segment == "" {
			continue
		}
		name, value, _ := strings.Cut(segment, "=")
		cookies[name] = value
	}
}

// trimLeadingSpace removes the whitespace that immediately follows the colon
// of a header line. Trailing whitespace is part of the value.
func trimLeadingSpace(b []byte) []byte {
	return bytes.TrimLeft(b, " \t")
}

func splitMessage(b []byte) (header, body []byte, ok bool) {
	i := bytes.Index(b, blankLine)
	if i < 0 {
		return b, nil, false
	}
	return b[:i], b[i+len(blankLine):], true
}

func splitLine(b []byte) (line, next []byte) {
	line, next, _ = bytes.Cut(b, crlf)
	return line, next
}
