package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// ListAuthors godoc
// @Summary      List authors with their books
// @Tags         authors
// @Produce      json
// @Param        offset  query  int  false  "rows to skip"
// @Param        limit  query  int  false  "max rows to return"
// @Success      200  {object}  APIResponse
// @Failure      400  {object}  APIError
// @Failure      500  {object}  APIError
// @Router       /authors [get]
func (api *APIHandler) ListAuthors(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page, ok := api.readPage(w, r)
	if !ok {
		return
	}
	authors, err := api.libraryService.ListAuthors(r.Context(), page)
	if err != nil {
		api.sendServiceError(w, r, EntityAuthor, "list", err)
		return
	}
	total := len(authors)
	api.sendSuccess(w, r, http.StatusOK, "Authors fetched successfully.", &total, authors)
}

// GetAuthor godoc
// @Summary      Get an author with its books
// @Tags         authors
// @Produce      json
// @Param        id  path  int  true  "author id"
// @Success      200  {object}  APIResponse
// @Failure      400  {object}  APIError
// @Failure      404  {object}  APIError
// @Failure      500  {object}  APIError
// @Router       /authors/{id} [get]
func (api *APIHandler) GetAuthor(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := api.readID(w, r, ps, EntityAuthor)
	if !ok {
		return
	}
	author, err := api.libraryService.GetAuthor(r.Context(), id)
	if err != nil {
		api.sendServiceError(w, r, EntityAuthor, "get", err)
		return
	}
	api.sendSuccess(w, r, http.StatusOK, "Author fetched successfully.", nil, author)
}

// CreateAuthor godoc
// @Summary      Create an author
// @Tags         authors
// @Accept       json
// @Produce      json
// @Param        author  body  AuthorCreate  true  "author"
// @Success      201  {object}  APIResponse
// @Failure      400  {object}  APIError
// @Failure      500  {object}  APIError
// @Router       /authors [post]
func (api *APIHandler) CreateAuthor(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in AuthorCreate
	if !api.readPayload(w, r, EntityAuthor, "create", &in) {
		return
	}
	author, err := api.libraryService.CreateAuthor(r.Context(), in)
	if err != nil {
		api.sendServiceError(w, r, EntityAuthor, "create", err)
		return
	}
	api.GetLoggerFromContext(r.Context()).Info("success to create author", zap.Int64("author.id", author.ID))
	api.sendSuccess(w, r, http.StatusCreated, "Author created successfully.", nil, author)
}

// UpdateAuthor godoc
// @Summary      Partially update an author
// @Tags         authors
// @Accept       json
// @Produce      json
// @Param        id  path  int  true  "author id"
// @Param        author  body  AuthorUpdate  true  "fields to change"
// @Success      200  {object}  APIResponse
// @Failure      400  {object}  APIError
// @Failure      404  {object}  APIError
// @Failure      500  {object}  APIError
// @Router       /authors/{id} [put]
func (api *APIHandler) UpdateAuthor(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := api.readID(w, r, ps, EntityAuthor)
	if !ok {
		return
	}
	var in AuthorUpdate
	if !api.readPayload(w, r, EntityAuthor, "update", &in) {
		return
	}
	author, err := api.libraryService.UpdateAuthor(r.Context(), id, in)
	if err != nil {
		api.sendServiceError(w, r, EntityAuthor, "update", err)
		return
	}
	api.GetLoggerFromContext(r.Context()).Info("success to update author", zap.Int64("author.id", id))
	api.sendSuccess(w, r, http.StatusOK, "Author updated successfully.", nil, author)
}

// DeleteAuthor godoc
// @Summary      Delete an author
// @Tags         authors
// @Produce      json
// @Param        id  path  int  true  "author id"
// @Success      200  {object}  APIResponse
// @Failure      400  {object}  APIError
// @Failure      404  {object}  APIError
// @Failure      409  {object}  APIError
// @Failure      500  {object}  APIError
// @Router       /authors/{id} [delete]
func (api *APIHandler) DeleteAuthor(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := api.readID(w, r, ps, EntityAuthor)
	if !ok {
		return
	}
	author, err := api.libraryService.DeleteAuthor(r.Context(), id)
	if err != nil {
		api.sendServiceError(w, r, EntityAuthor, "delete", err)
		return
	}
	api.GetLoggerFromContext(r.Context()).Info("success to delete author", zap.Int64("author.id", id))
	api.sendSuccess(w, r, http.StatusOK, "Author deleted successfully.", nil, author)
}
