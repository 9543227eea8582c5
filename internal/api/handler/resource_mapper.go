package handler

import (
	"time"

	"github.com/biblioteca/library-system/internal/core/domain"
	"github.com/biblioteca/library-system/internal/core/ports"
)

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func (r bookRequest) toInput() ports.BookInput {
	return ports.BookInput{
		Title:           r.Title,
		Author:          r.Author,
		Editorial:       r.Editorial,
		ISBN:            r.ISBN,
		PublicationDate: r.PublicationDate,
		Price:           r.Price,
		Status:          r.Status,
		ClientID:        r.ClientID,
	}
}

func toBookResponse(b *domain.Book) bookResponse {
	return bookResponse{
		ID:              b.ID,
		Title:           b.Title,
		Author:          b.Author,
		Editorial:       b.Editorial,
		ISBN:            b.ISBN,
		PublicationDate: b.PublicationDate,
		Price:           b.Price,
		Status:          string(b.Status),
		ClientID:        b.ClientID,
		ClientName:      b.ClientName,
		CreatedAt:       formatTime(b.CreatedAt),
		UpdatedAt:       formatTime(b.UpdatedAt),
	}
}

func toBookResponses(books []*domain.Book) []bookResponse {
	out := make([]bookResponse, 0, len(books))
	for _, b := range books {
		out = append(out, toBookResponse(b))
	}
	return out
}

func (r clientRequest) toInput() ports.ClientInput {
	return ports.ClientInput{
		Name:        r.Name,
		LastName:    r.LastName,
		Email:       r.Email,
		PhoneNumber: r.PhoneNumber,
	}
}

func toClientResponse(c *domain.Client) clientResponse {
	return clientResponse{
		ID:          c.ID,
		Name:        c.Name,
		LastName:    c.LastName,
		Email:       c.Email,
		PhoneNumber: c.PhoneNumber,
		CreatedAt:   formatTime(c.CreatedAt),
		UpdatedAt:   formatTime(c.UpdatedAt),
	}
}

func toClientResponses(clients []*domain.Client) []clientResponse {
	out := make([]clientResponse, 0, len(clients))
	for _, c := range clients {
		out = append(out, toClientResponse(c))
	}
	return out
}
