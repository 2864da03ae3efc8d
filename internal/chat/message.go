// Package chat implements the chat application served by httpchat: messages
// posted by anonymous sessions, which their authors may edit, delete and
// react to.
package chat

import "golang.org/x/exp/slices"

// Message is a chat message as stored and as returned by the list endpoint.
type Message struct {
	Author    string              `json:"author" bson:"author" text:"AUTHOR"`
	ID        string              `json:"id" bson:"id" text:"MESSAGE ID"`
	Content   string              `json:"content" bson:"content" text:"CONTENT"`
	Updated   bool                `json:"updated" bson:"updated" text:"UPDATED"`
	Reactions map[string][]string `json:"reactions" bson:"reactions" text:"REACTIONS"`
	Nickname  string              `json:"nickname,omitempty" bson:"nickname,omitempty" text:"NICKNAME"`
}

// Clone returns a deep copy of the message.
func (m *Message) Clone() *Message {
	c := *m
	c.Reactions = make(map[string][]string, len(m.Reactions))
	for emoji, authors := range m.Reactions {
		c.Reactions[emoji] = slices.Clone(authors)
	}
	return &c
}

// Update describes the fields modified by Store.Update. Nil fields are left
// unchanged.
type Update struct {
	Content *string
	Updated *bool
}

func (u Update) apply(m *Message) {
	if u.Content != nil {
		m.Content = *u.Content
	}
	if u.Updated != nil {
		m.Updated = *u.Updated
	}
}

func addReaction(m *Message, emoji, author string) error {
	if m.Reactions == nil {
		m.Reactions = make(map[string][]string)
	}
	if slices.Contains(m.Reactions[emoji], author) {
		return ErrDuplicateReaction
	}
	m.Reactions[emoji] = append(m.Reactions[emoji], author)
	return nil
}

func removeReaction(m *Message, emoji, author string) error {
	authors := m.Reactions[emoji]
	i := slices.Index(authors, author)
	if i < 0 {
		return ErrNoReaction
	}
	if authors = slices.Delete(authors, i, i+1); len(authors) == 0 {
		delete(m.Reactions, emoji)
	} else {
		m.Reactions[emoji] = authors
	}
	return nil
}
