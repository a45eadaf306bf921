package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// ListLoans godoc
// @Summary      List loans with their book and borrower
// @Tags         loans
// @Produce      json
// @Param        offset  query  int  false  "rows to skip"
// @Param        limit  query  int  false  "max rows to return"
// @Success      200  {object}  APIResponse
// @Failure      400  {object}  APIError
// @Failure      500  {object}  APIError
// @Router       /loans [get]
func (api *APIHandler) ListLoans(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page, ok := api.readPage(w, r)
	if !ok {
		return
	}
	loans, err := api.libraryService.ListLoans(r.Context(), page)
	if err != nil {
		api.sendServiceError(w, r, EntityLoan, "list", err)
		return
	}
	total := len(loans)
	api.sendSuccess(w, r, http.StatusOK, "Loans fetched successfully.", &total, loans)
}

// GetLoan godoc
// @Summary      Get a loan with its book and borrower
// @Tags         loans
// @Produce      json
// @Param        id  path  int  true  "loan id"
// @Success      200  {object}  APIResponse
// @Failure      400  {object}  APIError
// @Failure      404  {object}  APIError
// @Failure      500  {object}  APIError
// @Router       /loans/{id} [get]
func (api *APIHandler) GetLoan(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := api.readID(w, r, ps, EntityLoan)
	if !ok {
		return
	}
	loan, err := api.libraryService.GetLoan(r.Context(), id)
	if err != nil {
		api.sendServiceError(w, r, EntityLoan, "get", err)
		return
	}
	api.sendSuccess(w, r, http.StatusOK, "Loan fetched successfully.", nil, loan)
}

// CreateLoan registers a loan. Unknown book or borrower ids are
// rejected by the storage and reported as a conflict.
//
// @Summary      Create a loan
// @Tags         loans
// @Accept       json
// @Produce      json
// @Param        loan  body  LoanCreate  true  "loan"
// @Success      201  {object}  APIResponse
// @Failure      400  {object}  APIError
// @Failure      409  {object}  APIError
// @Failure      500  {object}  APIError
// @Router       /loans [post]
func (api *APIHandler) CreateLoan(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in LoanCreate
	if !api.readPayload(w, r, EntityLoan, "create", &in) {
		return
	}
	loan, err := api.libraryService.CreateLoan(r.Context(), in)
	if err != nil {
		api.sendServiceError(w, r, EntityLoan, "create", err)
		return
	}
	api.GetLoggerFromContext(r.Context()).Info("success to create loan",
		zap.Int64("loan.id", loan.ID),
		zap.Int64("book.id", loan.BookID),
		zap.Int64("borrower.id", loan.BorrowerID),
	)
	api.sendSuccess(w, r, http.StatusCreated, "Loan created successfully.", nil, loan)
}

// UpdateLoan godoc
// @Summary      Partially update a loan
// @Tags         loans
// @Accept       json
// @Produce      json
// @Param        id  path  int  true  "loan id"
// @Param        loan  body  LoanUpdate  true  "fields to change"
// @Success      200  {object}  APIResponse
// @Failure      400  {object}  APIError
// @Failure      404  {object}  APIError
// @Failure      409  {object}  APIError
// @Failure      500  {object}  APIError
// @Router       /loans/{id} [put]
func (api *APIHandler) UpdateLoan(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := api.readID(w, r, ps, EntityLoan)
	if !ok {
		return
	}
	var in LoanUpdate
	if !api.readPayload(w, r, EntityLoan, "update", &in) {
		return
	}
	loan, err := api.libraryService.UpdateLoan(r.Context(), id, in)
	if err != nil {
		api.sendServiceError(w, r, EntityLoan, "update", err)
		return
	}
	api.GetLoggerFromContext(r.Context()).Info("success to update loan", zap.Int64("loan.id", id))
	api.sendSuccess(w, r, http.StatusOK, "Loan updated successfully.", nil, loan)
}

// DeleteLoan godoc
// @Summary      Delete a loan
// @Tags         loans
// @Produce      json
// @Param        id  path  int  true  "loan id"
// @Success      200  {object}  APIResponse
// @Failure      400  {object}  APIError
// @Failure      404  {object}  APIError
// @Failure      500  {object}  APIError
// @Router       /loans/{id} [delete]
func (api *APIHandler) DeleteLoan(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := api.readID(w, r, ps, EntityLoan)
	if !ok {
		return
	}
	loan, err := api.libraryService.DeleteLoan(r.Context(), id)
	if err != nil {
		api.sendServiceError(w, r, EntityLoan, "delete", err)
		return
	}
	api.GetLoggerFromContext(r.Context()).Info("success to delete loan", zap.Int64("loan.id", id))
	api.sendSuccess(w, r, http.StatusOK, "Loan deleted successfully.", nil, loan)
}
