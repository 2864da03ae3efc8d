package httpchat

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/stealthrocket/httpchat/internal/chat"
	"github.com/stealthrocket/httpchat/internal/object"
)

// OpenStore opens the chat store selected by the configuration.
func (c *Config) OpenStore(ctx context.Context) (chat.Store, error) {
	switch c.Store.Driver {
	case MemoryDriver:
		return chat.NewMemoryStore(), nil

	case DirDriver:
		path, err := c.Store.Location.Resolve()
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(path, 0777); err != nil {
			if !errors.Is(err, fs.ErrExist) {
				return nil, err
			}
		}
		objects, err := object.DirStore(path)
		if err != nil {
			return nil, err
		}
		return chat.NewObjectStore(objects), nil

	case MongoDriver:
		return chat.OpenMongoStore(ctx, c.MongoURI(), c.Store.Mongo.Database, c.Store.Mongo.Collection)

	default:
		return nil, fmt.Errorf("invalid store driver: %q", c.Store.Driver)
	}
}
