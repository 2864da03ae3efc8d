package httpchat

import (
	"context"
	"os"

	"github.com/stealthrocket/httpchat/internal/chat"
	"github.com/stealthrocket/httpchat/internal/http1"
	"github.com/stealthrocket/httpchat/internal/static"
)

// Hello is the handler of GET /hello.
func Hello(ctx context.Context, req *http1.Request) (*http1.Response, error) {
	return http1.NewResponse().Text("hello"), nil
}

// NewRouter constructs the router of the application, serving static files
// from the configured root and chat messages from store.
func (c *Config) NewRouter(store chat.Store) (*http1.Router, error) {
	root, err := c.Static.Root.Resolve()
	if err != nil {
		return nil, err
	}
	files := &static.Files{FS: os.DirFS(root), Gzip: c.Static.Gzip}
	return NewRouter(files, &chat.Handlers{Store: store}), nil
}

// NewRouter returns a router with the default route table. The order of the
// routes determines which one handles a request matching more than one.
func NewRouter(files *static.Files, messages *chat.Handlers) *http1.Router {
	router := new(http1.Router)
	router.AddRoute("GET", "/hello", http1.HandlerFunc(Hello), true)

	router.AddRoute("GET", "/public", http1.HandlerFunc(files.ServeFile), false)
	router.AddRoute("GET", "/", http1.HandlerFunc(files.Index), true)
	router.AddRoute("GET", "/chat", http1.HandlerFunc(files.Chat), true)

	router.AddRoute("POST", "/api/chats", http1.HandlerFunc(messages.CreateMessage), true)
	router.AddRoute("GET", "/api/chats", http1.HandlerFunc(messages.ListMessages), true)
	router.AddRoute("PATCH", "/api/chats", http1.HandlerFunc(messages.UpdateMessage), false)
	router.AddRoute("DELETE", "/api/chats", http1.HandlerFunc(messages.DeleteMessage), false)

	router.AddRoute("PATCH", "/api/reaction", http1.HandlerFunc(messages.AddReaction), false)
	router.AddRoute("DELETE", "/api/reaction", http1.HandlerFunc(messages.RemoveReaction), false)
	router.AddRoute("PATCH", "/api/nickname", http1.HandlerFunc(messages.ChangeNickname), true)
	return router
}
