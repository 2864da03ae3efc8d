package chat

import "context"

func (s *MongoStore) Drop(ctx context.Context) error {
	return s.collection.Drop(ctx)
}
