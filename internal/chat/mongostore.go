package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MongoStore is an implementation of Store backed by a MongoDB collection.
//
// Modifications of a message are expressed as single update operations so
// their atomicity is the one of MongoDB document updates.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// OpenMongoStore connects to the MongoDB server at uri and returns a store
// using the collection of the database.
func OpenMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", uri, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("connecting to %s: %w", uri, err)
	}
	return &MongoStore{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

func (s *MongoStore) Insert(ctx context.Context, msg *Message) error {
	if msg.Reactions == nil {
		msg = msg.Clone()
	}
	_, err := s.collection.InsertOne(ctx, msg)
	return err
}

func (s *MongoStore) Find(ctx context.Context, id string) (*Message, error) {
	msg := new(Message)
	err := s.collection.FindOne(ctx, bson.M{"id": id}).Decode(msg)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if msg.Reactions == nil {
		msg.Reactions = make(map[string][]string)
	}
	return msg, nil
}

func (s *MongoStore) FindAll(ctx context.Context) ([]*Message, error) {
	// Object ids generated by the driver grow with the insertion time.
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	var messages []*Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	for _, msg := range messages {
		if msg.Reactions == nil {
			msg.Reactions = make(map[string][]string)
		}
	}
	return messages, nil
}

func (s *MongoStore) Update(ctx context.Context, id string, update Update) error {
	set := bson.M{}
	if update.Content != nil {
		set["content"] = *update.Content
	}
	if update.Updated != nil {
		set["updated"] = *update.Updated
	}
	if len(set) == 0 {
		_, err := s.Find(ctx, id)
		return err
	}
	res, err := s.collection.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := s.collection.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) AddReaction(ctx context.Context, id, emoji, author string) error {
	field, err := reactionField(emoji)
	if err != nil {
		return err
	}
	res, err := s.collection.UpdateOne(ctx,
		bson.M{"id": id, field: bson.M{"$ne": author}},
		bson.M{"$push": bson.M{field: author}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return s.explainMiss(ctx, id, ErrDuplicateReaction)
	}
	return nil
}

func (s *MongoStore) RemoveReaction(ctx context.Context, id, emoji, author string) error {
	field, err := reactionField(emoji)
	if err != nil {
		return err
	}
	res, err := s.collection.UpdateOne(ctx,
		bson.M{"id": id, field: author},
		bson.M{"$pull": bson.M{field: author}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return s.explainMiss(ctx, id, ErrNoReaction)
	}
	_, err = s.collection.UpdateOne(ctx,
		bson.M{"id": id, field: bson.M{"$size": 0}},
		bson.M{"$unset": bson.M{field: ""}},
	)
	return err
}

func (s *MongoStore) SetNickname(ctx context.Context, author, nickname string) (int, error) {
	res, err := s.collection.UpdateMany(ctx,
		bson.M{"author": author},
		bson.M{"$set": bson.M{"nickname": nickname}},
	)
	if err != nil {
		return 0, err
	}
	return int(res.MatchedCount), nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// explainMiss determines whether a conditional update matched no document
// because the message does not exist, or because of the condition.
func (s *MongoStore) explainMiss(ctx context.Context, id string, conditionErr error) error {
	n, err := s.collection.CountDocuments(ctx, bson.M{"id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return conditionErr
}

// reactionField returns the path of the reaction list of emoji within a
// message document. Emojis are used as keys of the reactions sub-document,
// which MongoDB does not allow to contain dots or start with a dollar sign.
func reactionField(emoji string) (string, error) {
	if emoji == "" || strings.Contains(emoji, ".") || strings.HasPrefix(emoji, "$") {
		return "", fmt.Errorf("invalid emoji: %q", emoji)
	}
	return "reactions." + emoji, nil
}
