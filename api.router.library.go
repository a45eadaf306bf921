package main

import (
	"github.com/julienschmidt/httprouter"
)

// SetupLibraryRoutes injects the authors, books, borrowers and loans endpoints.
func (api *APIHandler) SetupLibraryRoutes(router *httprouter.Router, m *MiddlewareMap) *httprouter.Router {
	router.RedirectTrailingSlash = true
	router.GET("/", m.public(api.Index))
	router.GET("/status", m.public(api.Status))

	router.GET("/authors", m.public(api.ListAuthors))
	router.POST("/authors", m.public(api.CreateAuthor))
	router.GET("/authors/:id", m.public(api.GetAuthor))
	router.PUT("/authors/:id", m.public(api.UpdateAuthor))
	router.DELETE("/authors/:id", m.public(api.DeleteAuthor))

	router.GET("/books", m.public(api.ListBooks))
	router.POST("/books", m.public(api.CreateBook))
	router.GET("/books/:id", m.public(api.GetBook))
	router.PUT("/books/:id", m.public(api.UpdateBook))
	router.DELETE("/books/:id", m.public(api.DeleteBook))
	router.GET("/search/books", m.public(api.FilterBooks))

	router.GET("/borrowers", m.public(api.ListBorrowers))
	router.POST("/borrowers", m.public(api.CreateBorrower))
	router.GET("/borrowers/:id", m.public(api.GetBorrower))
	router.PUT("/borrowers/:id", m.public(api.UpdateBorrower))
	router.DELETE("/borrowers/:id", m.public(api.DeleteBorrower))

	router.GET("/loans", m.public(api.ListLoans))
	router.POST("/loans", m.public(api.CreateLoan))
	router.GET("/loans/:id", m.public(api.GetLoan))
	router.PUT("/loans/:id", m.public(api.UpdateLoan))
	router.DELETE("/loans/:id", m.public(api.DeleteLoan))
	return router
}
