package http1

import (
	"bytes"
	"encoding/json"
	"strconv"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const (
	DefaultHTTPVersion = "HTTP/1.1"
	DefaultContentType = "text/plain; charset=utf-8"
	JSONContentType    = "application/json"
)

// Cookie names that are rendered as bare directives in the Set-Cookie header,
// without a value.
var directiveCookies = [...]string{
	"HttpOnly",
	"Secure",
}

func isDirective(name string) bool {
	return slices.Contains(directiveCookies[:], name)
}

type field struct {
	name  string
	value string
}

// fields is a list of name/value pairs which preserves insertion order.
// Setting a name that already exists replaces its value in place.
type fields []field

func (f fields) index(name string) int {
	return slices.IndexFunc(f, func(x field) bool { return x.name == name })
}

func (f *fields) set(name, value string) {
	if i := f.index(name); i >= 0 {
		(*f)[i].value = value
	} else {
		*f = append(*f, field{name: name, value: value})
	}
}

func (f fields) get(name string) (string, bool) {
	if i := f.index(name); i >= 0 {
		return f[i].value, true
	}
	return "", false
}

// Response is a builder for HTTP responses.
//
// Methods mutate the response and return it so calls can be chained:
//
//	res := http1.NewResponse().
//		SetStatus(403, "Forbidden").
//		Text("No session cookie found")
//
// A response is built for a single request; Serialize produces its wire
// representation.
type Response struct {
	httpVersion   string
	statusCode    int
	statusMessage string
	headers       fields
	cookies       fields
	body          []byte
}

// NewResponse returns a "200 OK" response with an empty plain text body.
func NewResponse() *Response {
	res := &Response{
		httpVersion:   DefaultHTTPVersion,
		statusCode:    200,
		statusMessage: "OK",
	}
	res.headers.set("Content-Type", DefaultContentType)
	res.headers.set(contentLength, "0")
	res.headers.set("X-Content-Type-Options", "nosniff")
	return res
}

// SetStatus sets the status line. The code is not validated.
func (res *Response) SetStatus(code int, message string) *Response {
	res.statusCode, res.statusMessage = code, message
	return res
}

// SetHeader sets a single header, replacing its value if it was already set.
func (res *Response) SetHeader(name, value string) *Response {
	res.headers.set(name, value)
	return res
}

// SetHeaders merges the headers into the response. Names not yet present are
// appended in lexical order.
func (res *Response) SetHeaders(headers map[string]string) *Response {
	names := maps.Keys(headers)
	slices.Sort(names)
	for _, name := range names {
		res.headers.set(name, headers[name])
	}
	return res
}

// SetCookie sets a single cookie entry. For directive names (HttpOnly,
// Secure) the value is ignored.
func (res *Response) SetCookie(name, value string) *Response {
	res.cookies.set(name, value)
	return res
}

// SetCookies merges the cookie entries into the response. Names not yet
// present are appended in lexical order.
func (res *Response) SetCookies(cookies map[string]string) *Response {
	names := maps.Keys(cookies)
	slices.Sort(names)
	for _, name := range names {
		res.cookies.set(name, cookies[name])
	}
	return res
}

// Bytes appends data to the body.
func (res *Response) Bytes(data []byte) *Response {
	res.body = append(res.body, data...)
	return res.updateContentLength()
}

// Text appends s to the body.
func (res *Response) Text(s string) *Response {
	res.body = append(res.body, s...)
	return res.updateContentLength()
}

// JSON replaces the body with the compact JSON encoding of v and sets the
// content type to application/json.
//
// HTML characters are not escaped by the encoder, content that must be safe
// to embed in a page is expected to be escaped before it reaches the
// response.
func (res *Response) JSON(v any) (*Response, error) {
	b := new(bytes.Buffer)
	e := json.NewEncoder(b)
	e.SetEscapeHTML(false)
	if err := e.Encode(v); err != nil {
		return res, err
	}
	res.body = bytes.TrimSuffix(b.Bytes(), []byte("\n"))
	res.headers.set("Content-Type", JSONContentType)
	return res.updateContentLength(), nil
}

func (res *Response) updateContentLength() *Response {
	res.headers.set(contentLength, strconv.Itoa(len(res.body)))
	return res
}

// StatusCode returns the status code of the response.
func (res *Response) StatusCode() int { return res.statusCode }

// StatusMessage returns the reason phrase of the status line.
func (res *Response) StatusMessage() string { return res.statusMessage }

// Body returns the body of the response. The slice is not a copy.
func (res *Response) Body() []byte { return res.body }

// Header returns the value of a header and whether it was set.
func (res *Response) Header(name string) (string, bool) { return res.headers.get(name) }

// Cookie returns the value of a cookie entry and whether it was set.
func (res *Response) Cookie(name string) (string, bool) { return res.cookies.get(name) }

// Serialize returns the wire representation of the response.
//
// Headers are written in the order they were first set. All cookie entries
// are folded into a single Set-Cookie header, separated by "; ". Calling
// Serialize does not modify the response.
func (res *Response) Serialize() []byte {
	b := make([]byte, 0, 128+len(res.body))
	b = append(b, res.httpVersion...)
	b = append(b, ' ')
	b = strconv.AppendInt(b, int64(res.statusCode), 10)
	b = append(b, ' ')
	b = append(b, res.statusMessage...)
	b = append(b, crlf...)

	for _, h := range res.headers {
		b = append(b, h.name...)
		b = append(b, ": "...)
		b = append(b, h.value...)
		b = append(b, crlf...)
	}

	if len(res.cookies) > 0 {
		b = append(b, "Set-Cookie: "...)
		for i, c := range res.cookies {
			if i != 0 {
				b = append(b, "; "...)
			}
			b = append(b, c.name...)
			if !isDirective(c.name) {
				b = append(b, '=')
				b = append(b, c.value...)
			}
		}
		b = append(b, crlf...)
	}

	b = append(b, crlf...)
	return append(b, res.body...)
}
