package domain

import "time"

// BookStatus is the circulation state of a book.
type BookStatus string

const (
	BookAvailable BookStatus = "available"
	BookLoaned    BookStatus = "loaned"
	BookReserved  BookStatus = "reserved"
)

// PublicationDateLayout is the accepted format for Book.PublicationDate.
const PublicationDateLayout = "2006-01-02"

// Valid reports whether s is a known status.
func (s BookStatus) Valid() bool {
	switch s {
	case BookAvailable, BookLoaned, BookReserved:
		return true
	}
	return false
}

// Book is a catalogue entry. ClientID optionally links the client currently
// holding the book; ClientName is derived from that client.
type Book struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Author          string     `json:"author"`
	Editorial       string     `json:"editorial"`
	ISBN            string     `json:"isbn"`
	PublicationDate string     `json:"publication_date"`
	Price           float64    `json:"price"`
	Status          BookStatus `json:"status"`
	ClientID        string     `json:"client_id,omitempty"`
	ClientName      string     `json:"client_name,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
