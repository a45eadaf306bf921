package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

func (api *APIHandler) sendLecturerResponse(w http.ResponseWriter, r *http.Request, status int, resp LecturerResponse) {
	if err := WriteJSON(w, status, resp); err != nil {
		api.GetLoggerFromContext(r.Context()).Error("failed to send lecturer response", zap.Error(err))
	}
}

func lecturerID(ps httprouter.Params) (int, error) {
	return strconv.Atoi(ps.ByName("id"))
}

// LecturersIndex tells the lecturers server is up.
func (api *APIHandler) LecturersIndex(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	api.sendLecturerResponse(w, r, http.StatusOK, LecturerResponse{Message: "Server running"})
}

func (api *APIHandler) ListLecturers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	api.sendLecturerResponse(w, r, http.StatusOK, LecturerResponse{Message: "Query success", Data: api.lecturers.List()})
}

func (api *APIHandler) GetLecturer(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := lecturerID(ps)
	if err != nil {
		api.sendLecturerResponse(w, r, http.StatusBadRequest, LecturerResponse{Message: "lecturer id provided is not valid"})
		return
	}
	lecturer, err := api.lecturers.Get(id)
	if errors.Is(err, ErrLecturerNotFound) {
		api.GetLoggerFromContext(r.Context()).Info("lecturer does not exist", zap.Int("lecturer.id", id))
		api.sendLecturerResponse(w, r, http.StatusNotFound, LecturerResponse{Message: "lecturer not found"})
		return
	}
	api.sendLecturerResponse(w, r, http.StatusOK, LecturerResponse{Message: "Query success", Data: lecturer})
}

// CreateLecturer registers a lecturer under the id given in the path.
// An already used id is reported and the registry is left untouched.
func (api *APIHandler) CreateLecturer(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	logger := api.GetLoggerFromContext(r.Context())
	id, err := lecturerID(ps)
	if err != nil {
		api.sendLecturerResponse(w, r, http.StatusBadRequest, LecturerResponse{Message: "lecturer id provided is not valid"})
		return
	}
	var in LecturerCreate
	if err = DecodeRequestBody(r, &in); err != nil {
		logger.Error("failed to decode lecturer", zap.Int("lecturer.id", id), zap.Error(err))
		api.sendLecturerResponse(w, r, http.StatusBadRequest, LecturerResponse{Message: "invalid request body"})
		return
	}
	if err = in.Validate(); err != nil {
		api.sendLecturerResponse(w, r, http.StatusBadRequest, LecturerResponse{Message: err.Error()})
		return
	}
	lecturer, err := api.lecturers.Create(id, in.Lecturer())
	if errors.Is(err, ErrLecturerAlreadyExists) {
		logger.Info("lecturer already exists", zap.Int("lecturer.id", id))
		api.sendLecturerResponse(w, r, http.StatusConflict, LecturerResponse{Message: "Lecturer already exists"})
		return
	}
	logger.Info("success to create lecturer", zap.Int("lecturer.id", id))
	api.sendLecturerResponse(w, r, http.StatusCreated, LecturerResponse{Message: "Lecturer created successfully", Data: lecturer})
}
