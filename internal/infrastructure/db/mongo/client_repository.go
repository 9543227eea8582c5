package mongo

import (
	"context"
	"time"

	"github.com/biblioteca/library-system/internal/core/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const clientsCollection = "clients"

type clientDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	LastName    string             `bson:"last_name"`
	Email       string             `bson:"email"`
	PhoneNumber string             `bson:"phone_number"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

// ClientRepository implements ports.ClientRepository using MongoDB.
type ClientRepository struct {
	resourceStore[domain.Client, clientDocument]
}

func NewClientRepository(db *mongo.Database) *ClientRepository {
	return &ClientRepository{resourceStore[domain.Client, clientDocument]{
		coll:     db.Collection(clientsCollection),
		notFound: domain.ErrClientNotFound,
		conflict: domain.ErrClientEmailTaken,
		toDoc:    clientToDocument,
		fromDoc:  clientFromDocument,
		idOf:     func(c *domain.Client) string { return c.ID },
		setID:    func(c *domain.Client, id string) { c.ID = id },
	}}
}

func (r *ClientRepository) FindByEmail(ctx context.Context, email string) (*domain.Client, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// EnsureIndexes creates the unique email index on the clients collection.
func (r *ClientRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func clientToDocument(c *domain.Client) clientDocument {
	return clientDocument{
		Name:        c.Name,
		LastName:    c.LastName,
		Email:       c.Email,
		PhoneNumber: c.PhoneNumber,
		CreatedAt:   c.CreatedAt.UTC(),
		UpdatedAt:   c.UpdatedAt.UTC(),
	}
}

func clientFromDocument(d *clientDocument) *domain.Client {
	return &domain.Client{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		LastName:    d.LastName,
		Email:       d.Email,
		PhoneNumber: d.PhoneNumber,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}
