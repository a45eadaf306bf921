package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// ListBorrowers godoc
// @Summary      List borrowers with their loans
// @Tags         borrowers
// @Produce      json
// @Param        offset  query  int  false  "rows to skip"
// @Param        limit  query  int  false  "max rows to return"
// @Success      200  {object}  APIResponse
// @Failure      400  {object}  APIError
// @Failure      500  {object}  APIError
// @Router       /borrowers [get]
func (api *APIHandler) ListBorrowers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page, ok := api.readPage(w, r)
	if !ok {
		return
	}
	borrowers, err := api.libraryService.ListBorrowers(r.Context(), page)
	if err != nil {
		api.sendServiceError(w, r, EntityBorrower, "list", err)
		return
	}
	total := len(borrowers)
	api.sendSuccess(w, r, http.StatusOK, "Borrowers fetched successfully.", &total, borrowers)
}

// GetBorrower godoc
// @Summary      Get a borrower with its loans
// @Tags         borrowers
// @Produce      json
// @Param        id  path  int  true  "borrower id"
// @Success      200  {object}  APIResponse
// @Failure      400  {object}  APIError
// @Failure      404  {object}  APIError
// @Failure      500  {object}  APIError
// @Router       /borrowers/{id} [get]
func (api *APIHandler) GetBorrower(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := api.readID(w, r, ps, EntityBorrower)
	if !ok {
		return
	}
	borrower, err := api.libraryService.GetBorrower(r.Context(), id)
	if err != nil {
		api.sendServiceError(w, r, EntityBorrower, "get", err)
		return
	}
	api.sendSuccess(w, r, http.StatusOK, "Borrower fetched successfully.", nil, borrower)
}

// CreateBorrower godoc
// @Summary      Create a borrower
// @Tags         borrowers
// @Accept       json
// @Produce      json
// @Param        borrower  body  BorrowerCreate  true  "borrower"
// @Success      201  {object}  APIResponse
// @Failure      400  {object}  APIError
// @Failure      500  {object}  APIError
// @Router       /borrowers [post]
func (api *APIHandler) CreateBorrower(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in BorrowerCreate
	if !api.readPayload(w, r, EntityBorrower, "create", &in) {
		return
	}
	borrower, err := api.libraryService.CreateBorrower(r.Context(), in)
	if err != nil {
		api.sendServiceError(w, r, EntityBorrower, "create", err)
		return
	}
	api.GetLoggerFromContext(r.Context()).Info("success to create borrower", zap.Int64("borrower.id", borrower.ID))
	api.sendSuccess(w, r, http.StatusCreated, "Borrower created successfully.", nil, borrower)
}

// UpdateBorrower godoc
// @Summary      Partially update a borrower
// @Tags         borrowers
// @Accept       json
// @Produce      json
// @Param        id  path  int  true  "borrower id"
// @Param        borrower  body  BorrowerUpdate  true  "fields to change"
// @Success      200  {object}  APIResponse
// @Failure      400  {object}  APIError
// @Failure      404  {object}  APIError
// @Failure      500  {object}  APIError
// @Router       /borrowers/{id} [put]
func (api *APIHandler) UpdateBorrower(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := api.readID(w, r, ps, EntityBorrower)
	if !ok {
		return
	}
	var in BorrowerUpdate
	if !api.readPayload(w, r, EntityBorrower, "update", &in) {
		return
	}
	borrower, err := api.libraryService.UpdateBorrower(r.Context(), id, in)
	if err != nil {
		api.sendServiceError(w, r, EntityBorrower, "update", err)
		return
	}
	api.GetLoggerFromContext(r.Context()).Info("success to update borrower", zap.Int64("borrower.id", id))
	api.sendSuccess(w, r, http.StatusOK, "Borrower updated successfully.", nil, borrower)
}

// DeleteBorrower godoc
// @Summary      Delete a borrower
// @Tags         borrowers
// @Produce      json
// @Param        id  path  int  true  "borrower id"
// @Success      200  {object}  APIResponse
// @Failure      400  {object}  APIError
// @Failure      404  {object}  APIError
// @Failure      409  {object}  APIError
// @Failure      500  {object}  APIError
// @Router       /borrowers/{id} [delete]
func (api *APIHandler) DeleteBorrower(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := api.readID(w, r, ps, EntityBorrower)
	if !ok {
		return
	}
	borrower, err := api.libraryService.DeleteBorrower(r.Context(), id)
	if err != nil {
		api.sendServiceError(w, r, EntityBorrower, "delete", err)
		return
	}
	api.GetLoggerFromContext(r.Context()).Info("success to delete borrower", zap.Int64("borrower.id", id))
	api.sendSuccess(w, r, http.StatusOK, "Borrower deleted successfully.", nil, borrower)
}
