package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"golang.org/x/exp/slices"

	"github.com/stealthrocket/httpchat/internal/object"
)

const messagesPrefix = "messages"

// ObjectStore is an implementation of Store saving each message as a JSON
// document in an object store.
//
// Read-modify-write sequences are serialized by a mutex, the store must not
// be shared with other processes writing to the same location.
type ObjectStore struct {
	objects object.Store
	mutex   sync.Mutex
	now     func() time.Time
	lastSeq int64
}

// document is the representation of messages in the object store. The
// sequence number preserves the insertion order.
type document struct {
	Seq int64 `json:"seq"`
	*Message
}

// NewObjectStore returns a Store saving messages to objects.
func NewObjectStore(objects object.Store) *ObjectStore {
	return &ObjectStore{objects: objects, now: time.Now}
}

func (s *ObjectStore) Insert(ctx context.Context, msg *Message) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, err := s.read(ctx, msg.ID); err == nil {
		return fmt.Errorf("duplicate message id: %s", msg.ID)
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	seq := s.now().UnixNano()
	if seq <= s.lastSeq {
		seq = s.lastSeq + 1
	}
	s.lastSeq = seq
	return s.write(ctx, &document{Seq: seq, Message: msg})
}

func (s *ObjectStore) Find(ctx context.Context, id string) (*Message, error) {
	doc, err := s.read(ctx, id)
	if err != nil {
		return nil, err
	}
	return doc.Message, nil
}

func (s *ObjectStore) FindAll(ctx context.Context) ([]*Message, error) {
	objects, err := s.objects.ListObjects(ctx, messagesPrefix)
	if err != nil {
		return nil, err
	}

	docs := make([]*document, 0, len(objects))
	for _, obj := range objects {
		id := strings.TrimSuffix(path.Base(obj.Name), ".json")
		doc, err := s.read(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue // deleted since listing
			}
			return nil, err
		}
		docs = append(docs, doc)
	}

	slices.SortStableFunc(docs, func(a, b *document) bool { return a.Seq < b.Seq })

	messages := make([]*Message, len(docs))
	for i, doc := range docs {
		messages[i] = doc.Message
	}
	return messages, nil
}

func (s *ObjectStore) Update(ctx context.Context, id string, update Update) error {
	return s.modify(ctx, id, func(m *Message) error {
		update.apply(m)
		return nil
	})
}

func (s *ObjectStore) Delete(ctx context.Context, id string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, err := s.read(ctx, id); err != nil {
		return err
	}
	return s.objects.DeleteObject(ctx, objectName(id))
}

func (s *ObjectStore) AddReaction(ctx context.Context, id, emoji, author string) error {
	return s.modify(ctx, id, func(m *Message) error {
		return addReaction(m, emoji, author)
	})
}

func (s *ObjectStore) RemoveReaction(ctx context.Context, id, emoji, author string) error {
	return s.modify(ctx, id, func(m *Message) error {
		return removeReaction(m, emoji, author)
	})
}

func (s *ObjectStore) SetNickname(ctx context.Context, author, nickname string) (int, error) {
	messages, err := s.FindAll(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, m := range messages {
		if m.Author != author {
			continue
		}
		err := s.modify(ctx, m.ID, func(m *Message) error {
			m.Nickname = nickname
			return nil
		})
		switch {
		case err == nil:
			n++
		case !errors.Is(err, ErrNotFound):
			return n, err
		}
	}
	return n, nil
}

func (s *ObjectStore) Close(ctx context.Context) error {
	return nil
}

func (s *ObjectStore) modify(ctx context.Context, id string, f func(*Message) error) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	doc, err := s.read(ctx, id)
	if err != nil {
		return err
	}
	if err := f(doc.Message); err != nil {
		return err
	}
	return s.write(ctx, doc)
}

func (s *ObjectStore) read(ctx context.Context, id string) (*document, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	r, err := s.objects.ReadObject(ctx, objectName(id))
	if err != nil {
		if errors.Is(err, object.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer r.Close()

	doc := &document{Message: new(Message)}
	if err := json.NewDecoder(r).Decode(doc); err != nil {
		return nil, fmt.Errorf("decoding message %s: %w", id, err)
	}
	if doc.Reactions == nil {
		doc.Reactions = make(map[string][]string)
	}
	return doc, nil
}

func (s *ObjectStore) write(ctx context.Context, doc *document) error {
	if !validID(doc.ID) {
		return fmt.Errorf("invalid message id: %q", doc.ID)
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return s.objects.PutObject(ctx, objectName(doc.ID), bytes.NewReader(b))
}

func objectName(id string) string {
	return path.Join(messagesPrefix, id+".json")
}

func validID(id string) bool {
	return id != "" && !strings.ContainsAny(id, "/\\") && !strings.HasPrefix(id, ".")
}
