package mongo

import (
	"context"
	"time"

	"github.com/biblioteca/library-system/internal/core/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const booksCollection = "books"

type bookDocument struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	Title           string             `bson:"title"`
	Author          string             `bson:"author"`
	Editorial       string             `bson:"editorial"`
	ISBN            string             `bson:"isbn"`
	PublicationDate string             `bson:"publication_date"`
	Price           float64            `bson:"price"`
	Status          string             `bson:"status"`
	ClientID        string             `bson:"client_id,omitempty"`
	ClientName      string             `bson:"client_name,omitempty"`
	CreatedAt       time.Time          `bson:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at"`
}

// BookRepository implements ports.BookRepository using MongoDB.
type BookRepository struct {
	resourceStore[domain.Book, bookDocument]
}

func NewBookRepository(db *mongo.Database) *BookRepository {
	return &BookRepository{resourceStore[domain.Book, bookDocument]{
		coll:     db.Collection(booksCollection),
		notFound: domain.ErrBookNotFound,
		conflict: domain.ErrConflict,
		toDoc:    bookToDocument,
		fromDoc:  bookFromDocument,
		idOf:     func(b *domain.Book) string { return b.ID },
		setID:    func(b *domain.Book, id string) { b.ID = id },
	}}
}

// EnsureIndexes creates lookup indexes on the books collection.
func (r *BookRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "isbn", Value: 1}}},
		{Keys: bson.D{{Key: "client_id", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}

func bookToDocument(b *domain.Book) bookDocument {
	return bookDocument{
		Title:           b.Title,
		Author:          b.Author,
		Editorial:       b.Editorial,
		ISBN:            b.ISBN,
		PublicationDate: b.PublicationDate,
		Price:           b.Price,
		Status:          string(b.Status),
		ClientID:        b.ClientID,
		ClientName:      b.ClientName,
		CreatedAt:       b.CreatedAt.UTC(),
		UpdatedAt:       b.UpdatedAt.UTC(),
	}
}

func bookFromDocument(d *bookDocument) *domain.Book {
	return &domain.Book{
		ID:              d.ID.Hex(),
		Title:           d.Title,
		Author:          d.Author,
		Editorial:       d.Editorial,
		ISBN:            d.ISBN,
		PublicationDate: d.PublicationDate,
		Price:           d.Price,
		Status:          domain.BookStatus(d.Status),
		ClientID:        d.ClientID,
		ClientName:      d.ClientName,
		CreatedAt:       d.CreatedAt.UTC(),
		UpdatedAt:       d.UpdatedAt.UTC(),
	}
}
