// Package static serves the files of the public directory and renders the
// HTML pages of the application.
package static

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"path"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/stealthrocket/httpchat/internal/http1"
)

const (
	// LayoutPath is the location of the layout that pages are rendered in.
	LayoutPath = "public/layout/layout.html"

	// ContentPlaceholder is the token of the layout replaced by the page.
	ContentPlaceholder = "{{content}}"

	htmlContentType = "text/html"
)

var mimeTypes = map[string]string{
	"html": "text/html",
	"css":  "text/css",
	"js":   "text/javascript",
	"jpeg": "image/jpeg",
	"jpg":  "image/jpg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
	"ico":  "image/x-icon",
}

// ContentType returns the MIME type of a file based on its extension.
func ContentType(name string) string {
	ext := strings.TrimPrefix(path.Ext(name), ".")
	if contentType, ok := mimeTypes[ext]; ok {
		return contentType
	}
	return http1.DefaultContentType
}

// Files serves the content of a file system.
type Files struct {
	FS fs.FS
	// When Gzip is true, responses are compressed if the client advertises
	// support for gzip encoding.
	Gzip bool
}

// ServeFile handles GET /public/..., the file is located by removing the
// leading slash from the request path.
func (f *Files) ServeFile(ctx context.Context, req *http1.Request) (*http1.Response, error) {
	name := strings.TrimPrefix(req.Path, "/")
	data, err := f.readFile(name)
	if err != nil {
		return nil, err
	}
	res := http1.NewResponse().SetHeader("Content-Type", ContentType(name))
	return f.write(req, res, data)
}

// Index handles GET /.
func (f *Files) Index(ctx context.Context, req *http1.Request) (*http1.Response, error) {
	return f.Render(req, "public/index.html")
}

// Chat handles GET /chat.
func (f *Files) Chat(ctx context.Context, req *http1.Request) (*http1.Response, error) {
	return f.Render(req, "public/chat.html")
}

// Render responds with the page inserted in place of the content placeholder
// of the layout.
func (f *Files) Render(req *http1.Request, page string) (*http1.Response, error) {
	content, err := f.readFile(page)
	if err != nil {
		return nil, err
	}
	layout, err := f.readFile(LayoutPath)
	if err != nil {
		return nil, err
	}
	data := bytes.ReplaceAll(layout, []byte(ContentPlaceholder), content)
	res := http1.NewResponse().SetHeader("Content-Type", htmlContentType)
	return f.write(req, res, data)
}

func (f *Files) readFile(name string) ([]byte, error) {
	if !fs.ValidPath(name) {
		return nil, http1.NotFound("File not found")
	}
	info, err := fs.Stat(f.FS, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, http1.NotFound("File not found")
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, http1.NotFound("File not found")
	}
	return fs.ReadFile(f.FS, name)
}

func (f *Files) write(req *http1.Request, res *http1.Response, data []byte) (*http1.Response, error) {
	if !f.Gzip || !acceptsGzip(req) {
		return res.Bytes(data), nil
	}
	b := new(bytes.Buffer)
	w := gzip.NewWriter(b)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return res.
		SetHeader("Content-Encoding", "gzip").
		SetHeader("Vary", "Accept-Encoding").
		Bytes(b.Bytes()), nil
}

func acceptsGzip(req *http1.Request) bool {
	value, ok := req.Header("Accept-Encoding")
	if !ok {
		return false
	}
	for _, coding := range strings.Split(value, ",") {
		coding, _, _ = strings.Cut(coding, ";")
		if strings.EqualFold(strings.TrimSpace(coding), "gzip") {
			return true
		}
	}
	return false
}
