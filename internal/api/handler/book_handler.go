package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/biblioteca/library-system/internal/core/ports"
)

const bookResource = "book"

// BookHandler handles HTTP requests for the book catalogue.
type BookHandler struct {
	service ports.BookService
}

func NewBookHandler(service ports.BookService) *BookHandler {
	return &BookHandler{service: service}
}

// List handles GET /v1/books.
//
// @Summary      List books
// @Tags         books
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   bookResponse
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /v1/books [get]
func (h *BookHandler) List(c echo.Context) error {
	books, err := h.service.List(c.Request().Context())
	observe(bookResource, "list", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBookResponses(books))
}

// Get handles GET /v1/books/:id.
//
// @Summary      Get a book
// @Tags         books
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Book id"
// @Success      200  {object}  bookResponse
// @Failure      404  {object}  map[string]string
// @Router       /v1/books/{id} [get]
func (h *BookHandler) Get(c echo.Context) error {
	book, err := h.service.Get(c.Request().Context(), c.Param("id"))
	observe(bookResource, "get", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBookResponse(book))
}

// Create handles POST /v1/books.
//
// @Summary      Create a book
// @Tags         books
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      bookRequest  true  "Book details"
// @Success      201   {object}  bookResponse
// @Failure      400   {object}  map[string]string
// @Router       /v1/books [post]
func (h *BookHandler) Create(c echo.Context) error {
	var req bookRequest
	if err := bindAndValidate(c, &req); err != nil {
		observe(bookResource, "create", err)
		return err
	}

	book, err := h.service.Create(c.Request().Context(), req.toInput())
	observe(bookResource, "create", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toBookResponse(book))
}

// Update handles PUT /v1/books/:id. Every writable field is replaced.
//
// @Summary      Update a book
// @Tags         books
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string       true  "Book id"
// @Param        body  body      bookRequest  true  "Book details"
// @Success      200   {object}  bookResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /v1/books/{id} [put]
func (h *BookHandler) Update(c echo.Context) error {
	var req bookRequest
	if err := bindAndValidate(c, &req); err != nil {
		observe(bookResource, "update", err)
		return err
	}

	book, err := h.service.Update(c.Request().Context(), c.Param("id"), req.toInput())
	observe(bookResource, "update", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBookResponse(book))
}

// Delete handles DELETE /v1/books/:id.
//
// @Summary      Delete a book
// @Tags         books
// @Security     BearerAuth
// @Param        id   path  string  true  "Book id"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /v1/books/{id} [delete]
func (h *BookHandler) Delete(c echo.Context) error {
	err := h.service.Delete(c.Request().Context(), c.Param("id"))
	observe(bookResource, "delete", err)
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
