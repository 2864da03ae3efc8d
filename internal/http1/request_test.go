package http1_test

import (
	"testing"

	"github.com/stealthrocket/httpchat/internal/assert"
	"github.com/stealthrocket/httpchat/internal/http1"
)

func TestParseRequest(t *testing.T) {
	tests := []struct {
		scenario string
		input    string
		method   string
		path     string
		version  string
		headers  map[string]string
		cookies  map[string]string
		body     string
	}{
		{
			scenario: "request without a body",
			input:    "GET / HTTP/1.1\r\nHost: localhost:8080\r\nConnection: keep-alive\r\n\r\n",
			method:   "GET",
			path:     "/",
			version:  "HTTP/1.1",
			headers: map[string]string{
				"Host":       "localhost:8080",
				"Connection": "keep-alive",
			},
			cookies: map[string]string{},
			body:    "",
		},

		{
			scenario: "request without headers",
			input:    "GET /hello HTTP/1.0\r\n\r\n",
			method:   "GET",
			path:     "/hello",
			version:  "HTTP/1.0",
			headers:  map[string]string{},
			cookies:  map[string]string{},
		},

		{
			scenario: "post request with a json body and cookies",
			input: "POST /api/chats HTTP/1.1\r\n" +
				"Host: localhost:8080\r\n" +
				"Content-Type: application/json\r\n" +
				"Content-Length: 18\r\n" +
				"Cookie: id=123; theme=dark\r\n" +
				"Origin: http://localhost:8080\r\n" +
				"\r\n" +
				`{"content":"asdf"}`,
			method:  "POST",
			path:    "/api/chats",
			version: "HTTP/1.1",
			headers: map[string]string{
				"Host":           "localhost:8080",
				"Content-Type":   "application/json",
				"Content-Length": "18",
				"Cookie":         "id=123; theme=dark",
				"Origin":         "http://localhost:8080",
			},
			cookies: map[string]string{
				"id":    "123",
				"theme": "dark",
			},
			body: `{"content":"asdf"}`,
		},

		{
			scenario: "only the first blank line separates the header from the body",
			input:    "POST /x HTTP/1.1\r\nA: 1\r\n\r\nB: 2\r\n\r\nrest",
			method:   "POST",
			path:     "/x",
			version:  "HTTP/1.1",
			headers:  map[string]string{"A": "1"},
			cookies:  map[string]string{},
			body:     "B: 2\r\n\r\nrest",
		},

		{
			scenario: "duplicate headers keep the last value",
			input:    "GET / HTTP/1.1\r\nX-Test: one\r\nX-Test: two\r\n\r\n",
			method:   "GET",
			path:     "/",
			version:  "HTTP/1.1",
			headers:  map[string]string{"X-Test": "two"},
			cookies:  map[string]string{},
		},

		{
			scenario: "header names are not case folded",
			input:    "GET / HTTP/1.1\r\nhost: a\r\nHOST: b\r\n\r\n",
			method:   "GET",
			path:     "/",
			version:  "HTTP/1.1",
			headers:  map[string]string{"host": "a", "HOST": "b"},
			cookies:  map[string]string{},
		},

		{
			scenario: "only the whitespace after the colon is trimmed",
			input:    "GET / HTTP/1.1\r\nX-Value:   a: b  \r\n\r\n",
			method:   "GET",
			path:     "/",
			version:  "HTTP/1.1",
			headers:  map[string]string{"X-Value": "a: b  "},
			cookies:  map[string]string{},
		},

		{
			scenario: "cookie values may contain equal signs",
			input:    "GET / HTTP/1.1\r\nCookie: session=abc==; flag\r\n\r\n",
			method:   "GET",
			path:     "/",
			version:  "HTTP/1.1",
			headers:  map[string]string{"Cookie": "session=abc==; flag"},
			cookies:  map[string]string{"session": "abc==", "flag": ""},
		},

		{
			scenario: "the body is not validated against the content length",
			input:    "POST / HTTP/1.1\r\nContent-Length: 2\r\n\r\nhello",
			method:   "POST",
			path:     "/",
			version:  "HTTP/1.1",
			headers:  map[string]string{"Content-Length": "2"},
			cookies:  map[string]string{},
			body:     "hello",
		},
	}

	for _, test := range tests {
		t.Run(test.scenario, func(t *testing.T) {
			req, err := http1.ParseRequest([]byte(test.input))
			assert.OK(t, err)
			assert.Equal(t, req.Method, test.method)
			assert.Equal(t, req.Path, test.path)
			assert.Equal(t, req.HTTPVersion, test.version)
			assert.DeepEqual(t, req.Headers, test.headers)
			assert.DeepEqual(t, req.Cookies, test.cookies)
			assert.Equal(t, string(req.Body), test.body)
		})
	}
}

func TestParseRequestError(t *testing.T) {
	tests := []struct {
		scenario string
		input    string
	}{
		{
			scenario: "empty input",
			input:    "",
		},

		{
			scenario: "missing blank line",
			input:    "GET / HTTP/1.1\r\nHost: localhost\r\n",
		},

		{
			scenario: "request line with two parts",
			input:    "GET /\r\n\r\n",
		},

		{
			scenario: "request line with four parts",
			input:    "GET / HTTP/1.1 extra\r\n\r\n",
		},

		{
			scenario: "request line with an empty method",
			input:    " / HTTP/1.1\r\n\r\n",
		},

		{
			scenario: "header line without a colon",
			input:    "GET / HTTP/1.1\r\nHost localhost\r\n\r\n",
		},
	}

	for _, test := range tests {
		t.Run(test.scenario, func(t *testing.T) {
			_, err := http1.ParseRequest([]byte(test.input))
			parseErr := assert.ErrorAs[*http1.ParseError](t, err)
			assert.Equal(t, string(parseErr.Input), test.input)
		})
	}
}

func TestRequestLookups(t *testing.T) {
	req, err := http1.ParseRequest([]byte("GET / HTTP/1.1\r\nCookie: session=1234\r\n\r\n"))
	assert.OK(t, err)

	v, ok := req.Header("Cookie")
	assert.Equal(t, ok, true)
	assert.Equal(t, v, "session=1234")

	_, ok = req.Header("cookie")
	assert.Equal(t, ok, false)

	assert.Equal(t, req.Cookie("session"), "1234")
	assert.Equal(t, req.Cookie("other"), "")
}
