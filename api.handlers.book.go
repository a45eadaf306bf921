package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// ListBooks serves the paginated books listing. Requests carrying the
// `author_id` or `available` query parameters are served by FilterBooks.
//
// @Summary      List books or filter them by author and availability
// @Tags         books
// @Produce      json
// @Param        offset  query  int  false  "rows to skip"
// @Param        limit  query  int  false  "max rows to return"
// @Param        author_id  query  int  false  "books of this author only"
// @Param        available  query  bool  false  "books with or without loans"
// @Success      200  {object}  APIResponse
// @Failure      400  {object}  APIError
// @Failure      500  {object}  APIError
// @Router       /books [get]
func (api *APIHandler) ListBooks(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if IsBookFilterRequest(r.URL.Query()) {
		api.FilterBooks(w, r, ps)
		return
	}
	page, ok := api.readPage(w, r)
	if !ok {
		return
	}
	books, err := api.libraryService.ListBooks(r.Context(), page)
	if err != nil {
		api.sendServiceError(w, r, EntityBook, "list", err)
		return
	}
	total := len(books)
	api.sendSuccess(w, r, http.StatusOK, "Books fetched successfully.", &total, books)
}

// FilterBooks returns every book matching the author and availability criteria.
// A book is available when no loan references it.
//
// @Summary      Filter books by author and availability
// @Tags         books
// @Produce      json
// @Param        author_id  query  int  false  "books of this author only"
// @Param        available  query  bool  false  "books with or without loans"
// @Success      200  {object}  APIResponse
// @Failure      400  {object}  APIError
// @Failure      500  {object}  APIError
// @Router       /search/books [get]
func (api *APIHandler) FilterBooks(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	filter, err := ParseBookFilter(r.URL.Query())
	if err != nil {
		api.sendError(w, r, http.StatusBadRequest, err.Error(), err)
		return
	}
	books, err := api.libraryService.FilterBooks(r.Context(), filter)
	if err != nil {
		api.sendServiceError(w, r, EntityBook, "filter", err)
		return
	}
	total := len(books)
	api.sendSuccess(w, r, http.StatusOK, "Books fetched successfully.", &total, books)
}

// GetBook godoc
// @Summary      Get a book with its author and loans
// @Tags         books
// @Produce      json
// @Param        id  path  int  true  "book id"
// @Success      200  {object}  APIResponse
// @Failure      400  {object}  APIError
// @Failure      404  {object}  APIError
// @Failure      500  {object}  APIError
// @Router       /books/{id} [get]
func (api *APIHandler) GetBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := api.readID(w, r, ps, EntityBook)
	if !ok {
		return
	}
	book, err := api.libraryService.GetBook(r.Context(), id)
	if err != nil {
		api.sendServiceError(w, r, EntityBook, "get", err)
		return
	}
	api.sendSuccess(w, r, http.StatusOK, "Book fetched successfully.", nil, book)
}

// CreateBook godoc
// @Summary      Create a book
// @Tags         books
// @Accept       json
// @Produce      json
// @Param        book  body  BookCreate  true  "book"
// @Success      201  {object}  APIResponse
// @Failure      400  {object}  APIError
// @Failure      409  {object}  APIError
// @Failure      500  {object}  APIError
// @Router       /books [post]
func (api *APIHandler) CreateBook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in BookCreate
	if !api.readPayload(w, r, EntityBook, "create", &in) {
		return
	}
	book, err := api.libraryService.CreateBook(r.Context(), in)
	if err != nil {
		api.sendServiceError(w, r, EntityBook, "create", err)
		return
	}
	api.GetLoggerFromContext(r.Context()).Info("success to create book", zap.Int64("book.id", book.ID), zap.Int64("author.id", book.AuthorID))
	api.sendSuccess(w, r, http.StatusCreated, "Book created successfully.", nil, book)
}

// UpdateBook godoc
// @Summary      Partially update a book
// @Tags         books
// @Accept       json
// @Produce      json
// @Param        id  path  int  true  "book id"
// @Param        book  body  BookUpdate  true  "fields to change"
// @Success      200  {object}  APIResponse
// @Failure      400  {object}  APIError
// @Failure      404  {object}  APIError
// @Failure      409  {object}  APIError
// @Failure      500  {object}  APIError
// @Router       /books/{id} [put]
func (api *APIHandler) UpdateBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := api.readID(w, r, ps, EntityBook)
	if !ok {
		return
	}
	var in BookUpdate
	if !api.readPayload(w, r, EntityBook, "update", &in) {
		return
	}
	book, err := api.libraryService.UpdateBook(r.Context(), id, in)
	if err != nil {
		api.sendServiceError(w, r, EntityBook, "update", err)
		return
	}
	api.GetLoggerFromContext(r.Context()).Info("success to update book", zap.Int64("book.id", id))
	api.sendSuccess(w, r, http.StatusOK, "Book updated successfully.", nil, book)
}

// DeleteBook godoc
// @Summary      Delete a book
// @Tags         books
// @Produce      json
// @Param        id  path  int  true  "book id"
// @Success      200  {object}  APIResponse
// @Failure      400  {object}  APIError
// @Failure      404  {object}  APIError
// @Failure      409  {object}  APIError
// @Failure      500  {object}  APIError
// @Router       /books/{id} [delete]
func (api *APIHandler) DeleteBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := api.readID(w, r, ps, EntityBook)
	if !ok {
		return
	}
	book, err := api.libraryService.DeleteBook(r.Context(), id)
	if err != nil {
		api.sendServiceError(w, r, EntityBook, "delete", err)
		return
	}
	api.GetLoggerFromContext(r.Context()).Info("success to delete book", zap.Int64("book.id", id))
	api.sendSuccess(w, r, http.StatusOK, "Book deleted successfully.", nil, book)
}
