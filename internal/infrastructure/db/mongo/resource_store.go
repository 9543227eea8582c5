package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// resourceStore implements ports.ResourceRepository[T] over a collection of
// documents D. D must carry its id as `bson:"_id,omitempty"` so that zero ids
// are left for the server to assign.
type resourceStore[T any, D any] struct {
	coll     *mongo.Collection
	notFound error
	conflict error
	toDoc    func(*T) D
	fromDoc  func(*D) *T
	idOf     func(*T) string
	setID    func(*T, string)
}

func (s *resourceStore[T, D]) List(ctx context.Context) ([]*T, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.coll.Name(), err)
	}
	var docs []D
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list %s: %w", s.coll.Name(), err)
	}

	out := make([]*T, 0, len(docs))
	for i := range docs {
		out = append(out, s.fromDoc(&docs[i]))
	}
	return out, nil
}

// FindByID reports an unparsable id the same way as a missing one.
func (s *resourceStore[T, D]) FindByID(ctx context.Context, id string) (*T, error) {
	oid, ok := parseID(id)
	if !ok {
		return nil, s.notFound
	}
	return s.findOne(ctx, bson.M{"_id": oid})
}

func (s *resourceStore[T, D]) findOne(ctx context.Context, filter bson.M) (*T, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc D
	if err := s.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, s.notFound
		}
		return nil, fmt.Errorf("find %s: %w", s.coll.Name(), err)
	}
	return s.fromDoc(&doc), nil
}

func (s *resourceStore[T, D]) Create(ctx context.Context, entity *T) (*T, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := s.coll.InsertOne(ctx, s.toDoc(entity))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, s.conflict
		}
		return nil, fmt.Errorf("insert %s: %w", s.coll.Name(), err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("insert %s: unexpected id type %T", s.coll.Name(), res.InsertedID)
	}
	created := *entity
	s.setID(&created, oid.Hex())
	return &created, nil
}

// Update replaces the stored document with entity.
func (s *resourceStore[T, D]) Update(ctx context.Context, entity *T) (*T, error) {
	oid, ok := parseID(s.idOf(entity))
	if !ok {
		return nil, s.notFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": oid}, s.toDoc(entity))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, s.conflict
		}
		return nil, fmt.Errorf("replace %s: %w", s.coll.Name(), err)
	}
	if res.MatchedCount == 0 {
		return nil, s.notFound
	}

	updated := *entity
	return &updated, nil
}

func (s *resourceStore[T, D]) Delete(ctx context.Context, id string) error {
	oid, ok := parseID(id)
	if !ok {
		return s.notFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete %s: %w", s.coll.Name(), err)
	}
	if res.DeletedCount == 0 {
		return s.notFound
	}
	return nil
}

func parseID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return oid, true
}
