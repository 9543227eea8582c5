package handler

// --- Request / Response types ---

type bookRequest struct {
	Title           string  `json:"title" validate:"required"`
	Author          string  `json:"author" validate:"required"`
	Editorial       string  `json:"editorial"`
	ISBN            string  `json:"isbn"`
	PublicationDate string  `json:"publication_date" validate:"omitempty,datetime=2006-01-02"`
	Price           float64 `json:"price" validate:"gte=0"`
	Status          string  `json:"status" validate:"omitempty,oneof=available loaned reserved"`
	ClientID        string  `json:"client_id"`
}

type bookResponse struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	Author          string  `json:"author"`
	Editorial       string  `json:"editorial"`
	ISBN            string  `json:"isbn"`
	PublicationDate string  `json:"publication_date"`
	Price           float64 `json:"price"`
	Status          string  `json:"status"`
	ClientID        string  `json:"client_id,omitempty"`
	ClientName      string  `json:"client_name,omitempty"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

type clientRequest struct {
	Name        string `json:"name" validate:"required"`
	LastName    string `json:"last_name"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phone_number"`
}

type clientResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}
