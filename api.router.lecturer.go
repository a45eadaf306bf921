package main

import (
	"github.com/julienschmidt/httprouter"
)

// SetupLecturerRoutes injects the lecturers registry endpoints. They are
// served by their own server so `/` does not collide with the library index.
func (api *APIHandler) SetupLecturerRoutes(router *httprouter.Router, m *MiddlewareMap) *httprouter.Router {
	router.RedirectTrailingSlash = true
	router.NotFound = api.NotFound()
	router.GET("/", m.lecturers(api.LecturersIndex))
	router.GET("/lecturers", m.lecturers(api.ListLecturers))
	router.GET("/get-by-id/:id", m.lecturers(api.GetLecturer))
	router.POST("/create-lecturer/:id", m.lecturers(api.CreateLecturer))
	return router
}
