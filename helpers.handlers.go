package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// validator is implemented by every create and update payload.
type validator interface {
	Validate() error
}

// titleCase turns an entity name like `book` into `Book`.
func titleCase(entity string) string {
	if entity == "" {
		return entity
	}
	return strings.ToUpper(entity[:1]) + entity[1:]
}

// sendError logs err and sends it with the given status to the client.
func (api *APIHandler) sendError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	logger := api.GetLoggerFromContext(r.Context())
	logger.Error(message, zap.Int("response.status", status), zap.Error(err))
	errResp := NewAPIError(requestID, status, message, EmptyData)
	if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
		logger.Error("failed to send error response", zap.Error(err))
	}
}

// sendServiceError translates a library service error into the matching response.
// Missing records give 404, broken references or constraints give 409 and anything else 500.
func (api *APIHandler) sendServiceError(w http.ResponseWriter, r *http.Request, entity, action string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		api.sendError(w, r, http.StatusNotFound, titleCase(entity)+" not found", err)
	case errors.Is(err, ErrConstraintViolation):
		api.sendError(w, r, http.StatusConflict, fmt.Sprintf("failed to %s the %s: %v", action, entity, err), err)
	default:
		api.sendError(w, r, http.StatusInternalServerError, fmt.Sprintf("failed to %s the %s", action, entity), err)
	}
}

// sendSuccess sends data into the library api envelope.
func (api *APIHandler) sendSuccess(w http.ResponseWriter, r *http.Request, status int, message string, total *int, data interface{}) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	resp := GenericResponse(requestID, status, message, total, data)
	if err := WriteResponse(r.Context(), w, resp); err != nil {
		api.GetLoggerFromContext(r.Context()).Error("failed to send response", zap.Error(err))
	}
}

// readPayload decodes and validates the request body into in. It sends
// a 400 response and returns false when the payload is not acceptable.
func (api *APIHandler) readPayload(w http.ResponseWriter, r *http.Request, entity, action string, in validator) bool {
	if err := DecodeRequestBody(r, in); err != nil {
		api.sendError(w, r, http.StatusBadRequest, fmt.Sprintf("failed to %s the %s: invalid request body", action, entity), err)
		return false
	}
	if err := in.Validate(); err != nil {
		api.sendError(w, r, http.StatusBadRequest, fmt.Sprintf("failed to %s the %s: %v", action, entity, err), err)
		return false
	}
	return true
}

// readID parses the `id` route parameter. It sends a 400 response and returns false on failure.
func (api *APIHandler) readID(w http.ResponseWriter, r *http.Request, ps httprouter.Params, entity string) (int64, bool) {
	id, err := ParseIDParam(ps)
	if err != nil {
		api.sendError(w, r, http.StatusBadRequest, entity+" id provided is not valid", err)
		return 0, false
	}
	return id, true
}

// readPage parses the `offset` and `limit` query parameters. It sends a 400 response and returns false on failure.
func (api *APIHandler) readPage(w http.ResponseWriter, r *http.Request) (Page, bool) {
	page, err := ParsePage(r.URL.Query(), api.config.Library.DefaultLimit, api.config.Library.MaxLimit)
	if err != nil {
		api.sendError(w, r, http.StatusBadRequest, err.Error(), err)
		return page, false
	}
	return page, true
}
