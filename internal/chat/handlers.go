package chat

import (
	"context"
	"encoding/json"
	"errors"
	"html"
	"strings"

	"github.com/google/uuid"
	"github.com/rivo/uniseg"

	"github.com/stealthrocket/httpchat/internal/http1"
)

const (
	// SessionCookie is the name of the cookie identifying the author of
	// messages.
	SessionCookie = "session"

	// SessionMaxAge is the lifetime of the session cookie, in seconds.
	SessionMaxAge = "3600"
)

// Handlers implements the chat API on top of a Store.
type Handlers struct {
	Store Store
	// NewID generates session and message identifiers. It defaults to
	// uuid.NewString.
	NewID func() string
}

func (h *Handlers) newID() string {
	if h.NewID != nil {
		return h.NewID()
	}
	return uuid.NewString()
}

// session returns the session of the request, minting a new one if the
// request carried no session cookie.
func (h *Handlers) session(req *http1.Request) string {
	if id := req.Cookie(SessionCookie); id != "" {
		return id
	}
	return h.newID()
}

// requireSession returns the session of the request, or a 403 error if the
// request carried no session cookie.
func requireSession(req *http1.Request) (string, error) {
	if id := req.Cookie(SessionCookie); id != "" {
		return id, nil
	}
	return "", http1.Forbidden("No session cookie found")
}

func withSession(res *http1.Response, session string) *http1.Response {
	return res.SetCookie(SessionCookie, session).SetCookie("Max-Age", SessionMaxAge)
}

// messageID returns the trailing segment of the request path.
func messageID(req *http1.Request) string {
	return req.Path[strings.LastIndexByte(req.Path, '/')+1:]
}

func decodeBody(req *http1.Request, v any) error {
	if err := json.Unmarshal(req.Body, v); err != nil {
		return http1.BadRequest("Invalid JSON body")
	}
	return nil
}

func storeError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return http1.NotFound("Message not found")
	case errors.Is(err, ErrDuplicateReaction):
		return http1.Forbidden("reacting with same emoji as before")
	case errors.Is(err, ErrNoReaction):
		return http1.Forbidden("reaction not found")
	default:
		return err
	}
}

type contentBody struct {
	Content *string `json:"content"`
}

type emojiBody struct {
	Emoji string `json:"emoji"`
}

type nicknameBody struct {
	Nickname *string `json:"nickname"`
}

// CreateMessage handles POST /api/chats.
func (h *Handlers) CreateMessage(ctx context.Context, req *http1.Request) (*http1.Response, error) {
	var body contentBody
	if err := decodeBody(req, &body); err != nil {
		return nil, err
	}
	if body.Content == nil {
		return nil, http1.BadRequest("Invalid JSON body")
	}

	session := h.session(req)
	msg := &Message{
		Author:    session,
		ID:        h.newID(),
		Content:   html.EscapeString(*body.Content),
		Reactions: make(map[string][]string),
	}
	if err := h.Store.Insert(ctx, msg); err != nil {
		return nil, err
	}
	return withSession(http1.NewResponse().Text("message sent"), session), nil
}

type messageList struct {
	Messages []*Message `json:"messages"`
}

// ListMessages handles GET /api/chats.
func (h *Handlers) ListMessages(ctx context.Context, req *http1.Request) (*http1.Response, error) {
	messages, err := h.Store.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []*Message{}
	}
	for _, msg := range messages {
		if msg.Reactions == nil {
			msg.Reactions = make(map[string][]string)
		}
	}
	return http1.NewResponse().JSON(messageList{Messages: messages})
}

// owned looks up the message targeted by the request and verifies that the
// session of the request is its author.
func (h *Handlers) owned(ctx context.Context, req *http1.Request) (session, id string, err error) {
	session, err = requireSession(req)
	if err != nil {
		return "", "", err
	}
	id = messageID(req)
	msg, err := h.Store.Find(ctx, id)
	if err != nil {
		return "", "", storeError(err)
	}
	if msg.Author != session {
		return "", "", http1.Forbidden("Session cookie ID does not match owner")
	}
	return session, id, nil
}

// UpdateMessage handles PATCH /api/chats/{id}.
func (h *Handlers) UpdateMessage(ctx context.Context, req *http1.Request) (*http1.Response, error) {
	session, id, err := h.owned(ctx, req)
	if err != nil {
		return nil, err
	}
	var body contentBody
	if err := decodeBody(req, &body); err != nil {
		return nil, err
	}
	if body.Content == nil {
		return nil, http1.BadRequest("Invalid JSON body")
	}

	content, updated := html.EscapeString(*body.Content), true
	if err := h.Store.Update(ctx, id, Update{Content: &content, Updated: &updated}); err != nil {
		return nil, storeError(err)
	}
	return withSession(http1.NewResponse().Text("message updated"), session), nil
}

// DeleteMessage handles DELETE /api/chats/{id}.
func (h *Handlers) DeleteMessage(ctx context.Context, req *http1.Request) (*http1.Response, error) {
	session, id, err := h.owned(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := h.Store.Delete(ctx, id); err != nil {
		return nil, storeError(err)
	}
	return withSession(http1.NewResponse().Text("message deleted"), session), nil
}

func decodeEmoji(req *http1.Request) (string, error) {
	var body emojiBody
	if err := decodeBody(req, &body); err != nil {
		return "", err
	}
	if body.Emoji == "" {
		return "", http1.BadRequest("Invalid JSON body")
	}
	// A reaction is a single user-perceived character, which may be made of
	// several code points (skin tones, flags, ZWJ sequences).
	if uniseg.GraphemeClusterCount(body.Emoji) != 1 {
		return "", http1.BadRequest("Invalid emoji")
	}
	// Emojis are keys of the reactions object, some backends reject keys
	// with these characters.
	if strings.Contains(body.Emoji, ".") || strings.HasPrefix(body.Emoji, "$") {
		return "", http1.BadRequest("Invalid emoji")
	}
	return body.Emoji, nil
}

// AddReaction handles PATCH /api/reaction/{id}.
func (h *Handlers) AddReaction(ctx context.Context, req *http1.Request) (*http1.Response, error) {
	emoji, err := decodeEmoji(req)
	if err != nil {
		return nil, err
	}
	session := h.session(req)
	if err := h.Store.AddReaction(ctx, messageID(req), emoji, session); err != nil {
		return nil, storeError(err)
	}
	return withSession(http1.NewResponse().Text("emoji added"), session), nil
}

// RemoveReaction handles DELETE /api/reaction/{id}.
func (h *Handlers) RemoveReaction(ctx context.Context, req *http1.Request) (*http1.Response, error) {
	session, err := requireSession(req)
	if err != nil {
		return nil, err
	}
	emoji, err := decodeEmoji(req)
	if err != nil {
		return nil, err
	}
	if err := h.Store.RemoveReaction(ctx, messageID(req), emoji, session); err != nil {
		return nil, storeError(err)
	}
	return withSession(http1.NewResponse().Text("emoji removed"), session), nil
}

// ChangeNickname handles PATCH /api/nickname.
func (h *Handlers) ChangeNickname(ctx context.Context, req *http1.Request) (*http1.Response, error) {
	var body nicknameBody
	if err := decodeBody(req, &body); err != nil {
		return nil, err
	}
	if body.Nickname == nil {
		return nil, http1.BadRequest("Invalid JSON body")
	}
	session := h.session(req)
	if _, err := h.Store.SetNickname(ctx, session, html.EscapeString(*body.Nickname)); err != nil {
		return nil, err
	}
	return withSession(http1.NewResponse().Text("nickname updated"), session), nil
}
