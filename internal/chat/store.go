package chat

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/exp/slices"
)

var (
	// ErrNotFound is returned by Store methods when no message has the id
	// they were given.
	ErrNotFound = errors.New("message not found")

	// ErrDuplicateReaction is returned by Store.AddReaction when the author
	// already reacted to the message with the same emoji.
	ErrDuplicateReaction = errors.New("duplicate reaction")

	// ErrNoReaction is returned by Store.RemoveReaction when the author had
	// not reacted to the message with the emoji.
	ErrNoReaction = errors.New("reaction not found")
)

// Store is the persistence layer of chat messages.
//
// Each method is atomic with respect to the message it modifies; in
// particular, checking and adding a reaction cannot interleave with another
// reaction to the same message. There are no transactions across messages.
//
// Store instances must be safe to use concurrently from multiple goroutines.
type Store interface {
	// Inserts a new message.
	Insert(ctx context.Context, msg *Message) error

	// Returns the message with the given id, or ErrNotFound.
	Find(ctx context.Context, id string) (*Message, error)

	// Returns all messages, in the order they were inserted.
	FindAll(ctx context.Context) ([]*Message, error)

	// Modifies the fields of a message, or returns ErrNotFound.
	Update(ctx context.Context, id string, update Update) error

	// Deletes a message, or returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	// Records the reaction of author to a message with emoji.
	AddReaction(ctx context.Context, id, emoji, author string) error

	// Removes the reaction of author to a message with emoji. Emojis left
	// without authors are removed from the message reactions.
	RemoveReaction(ctx context.Context, id, emoji, author string) error

	// Sets the nickname of all messages posted by author, returning the
	// number of messages that were changed.
	SetNickname(ctx context.Context, author, nickname string) (int, error)

	// Releases resources held by the store.
	Close(ctx context.Context) error
}

// NewMemoryStore returns a Store which keeps messages in memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{index: make(map[string]int)}
}

// MemoryStore is an in-memory implementation of Store.
type MemoryStore struct {
	mutex    sync.Mutex
	messages []*Message
	index    map[string]int
}

func (s *MemoryStore) Insert(ctx context.Context, msg *Message) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if _, exists := s.index[msg.ID]; exists {
		return errors.New("duplicate message id: " + msg.ID)
	}
	s.index[msg.ID] = len(s.messages)
	s.messages = append(s.messages, msg.Clone())
	return nil
}

func (s *MemoryStore) Find(ctx context.Context, id string) (*Message, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	m, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	return m.Clone(), nil
}

func (s *MemoryStore) FindAll(ctx context.Context) ([]*Message, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	messages := make([]*Message, len(s.messages))
	for i, m := range s.messages {
		messages[i] = m.Clone()
	}
	return messages, nil
}

func (s *MemoryStore) Update(ctx context.Context, id string, update Update) error {
	return s.modify(id, func(m *Message) error {
		update.apply(m)
		return nil
	})
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	i, ok := s.index[id]
	if !ok {
		return ErrNotFound
	}
	s.messages = slices.Delete(s.messages, i, i+1)
	delete(s.index, id)
	for j := i; j < len(s.messages); j++ {
		s.index[s.messages[j].ID] = j
	}
	return nil
}

func (s *MemoryStore) AddReaction(ctx context.Context, id, emoji, author string) error {
	return s.modify(id, func(m *Message) error {
		return addReaction(m, emoji, author)
	})
}

func (s *MemoryStore) RemoveReaction(ctx context.Context, id, emoji, author string) error {
	return s.modify(id, func(m *Message) error {
		return removeReaction(m, emoji, author)
	})
}

func (s *MemoryStore) SetNickname(ctx context.Context, author, nickname string) (int, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	n := 0
	for _, m := range s.messages {
		if m.Author == author {
			m.Nickname = nickname
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}

func (s *MemoryStore) lookup(id string) (*Message, error) {
	i, ok := s.index[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s.messages[i], nil
}

// modify applies f to a copy of the message and commits the copy only if f
// succeeded.
func (s *MemoryStore) modify(id string, f func(*Message) error) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	m, err := s.lookup(id)
	if err != nil {
		return err
	}
	c := m.Clone()
	if err := f(c); err != nil {
		return err
	}
	s.messages[s.index[id]] = c
	return nil
}
