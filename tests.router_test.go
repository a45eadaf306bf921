package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRouters builds the library and lecturers routers wrapped by their middlewares chains.
func newTestRouters(api *APIHandler) (*httprouter.Router, *httprouter.Router) {
	m := NewMiddlewareMap(api.MiddlewaresStacks())
	return api.SetupRoutes(httprouter.New(), m), api.SetupLecturerRoutes(httprouter.New(), m)
}

func call(router http.Handler, method, target string) *http.Response {
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Result()
}

// TestLibraryRoutes ensures each library endpoint is served through the public chain.
func TestLibraryRoutes(t *testing.T) {
	storage, _, books, _, _ := newMockStorage()
	var filtered bool
	books.FilterFunc = func(context.Context, BookFilter) ([]Book, error) {
		filtered = true
		return []Book{}, nil
	}
	api := newTestAPIHandler(storage, nil, nil)
	router, _ := newTestRouters(api)

	tests := []struct {
		method string
		target string
		status int
	}{
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/status", http.StatusOK},
		{http.MethodGet, "/authors", http.StatusOK},
		{http.MethodGet, "/authors/1", http.StatusNotFound},
		{http.MethodGet, "/books", http.StatusOK},
		{http.MethodGet, "/books/abc", http.StatusBadRequest},
		{http.MethodGet, "/borrowers?limit=0", http.StatusOK},
		{http.MethodGet, "/loans", http.StatusOK},
		{http.MethodDelete, "/loans/2", http.StatusNotFound},
		{http.MethodPost, "/borrowers", http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.method+" "+tc.target, func(t *testing.T) {
			res := call(router, tc.method, tc.target)
			defer res.Body.Close()
			assert.Equal(t, tc.status, res.StatusCode)
			assert.NotEmpty(t, res.Header.Get("X-Request-ID"))
			assert.Equal(t, "*", res.Header.Get("Access-Control-Allow-Origin"))
		})
	}

	t.Run("search books", func(t *testing.T) {
		res := call(router, http.MethodGet, "/search/books?author_id=1")
		res.Body.Close()
		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.True(t, filtered)
	})

	t.Run("unknown route", func(t *testing.T) {
		res := call(router, http.MethodGet, "/unknown")
		res.Body.Close()
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
	})

	assert.Equal(t, uint64(len(tests)+1), api.stats.called)
}

// TestLibraryRoutes_Maintenance ensures the maintenance mode only affects the library endpoints.
func TestLibraryRoutes_Maintenance(t *testing.T) {
	storage, _, _, _, _ := newMockStorage()
	api := newTestAPIHandler(storage, nil, nil)
	router, lecturerRouter := newTestRouters(api)

	res := call(router, http.MethodGet, "/ops/maintenance?status=enable&msg=moving")
	res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	res = call(router, http.MethodGet, "/authors")
	res.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)

	res = call(lecturerRouter, http.MethodGet, "/lecturers")
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res = call(router, http.MethodGet, "/ops/maintenance?status=disable")
	res.Body.Close()
	res = call(router, http.MethodGet, "/authors")
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestOpsRoutes(t *testing.T) {
	storage, _, _, _, _ := newMockStorage()
	api := newTestAPIHandler(storage, nil, nil)
	router, _ := newTestRouters(api)

	for _, target := range []string{"/ops/configs", "/ops/stats", "/ops/maintenance", "/ops/debug/vars", "/ops/journal"} {
		res := call(router, http.MethodGet, target)
		res.Body.Close()
		assert.Equal(t, http.StatusOK, res.StatusCode, target)
	}

	res := call(router, http.MethodGet, "/ops/debug/pprof/heap")
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	// ops calls are not counted as public requests.
	assert.Equal(t, uint64(0), api.stats.called)
}

// TestOpsRoutes_Disabled ensures ops endpoints are not exposed when disabled.
func TestOpsRoutes_Disabled(t *testing.T) {
	storage, _, _, _, _ := newMockStorage()
	api := newTestAPIHandler(storage, nil, nil)
	api.config.OpsEndpointsEnable = false
	router, _ := newTestRouters(api)
	res := call(router, http.MethodGet, "/ops/stats")
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestSwaggerRoute(t *testing.T) {
	storage, _, _, _, _ := newMockStorage()
	api := newTestAPIHandler(storage, nil, nil)
	router, _ := newTestRouters(api)
	res := call(router, http.MethodGet, "/swagger/doc.json")
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	data, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Library Management API")
}

// TestSwaggerDocMatchesRoutes ensures every documented operation is served
// and every library endpoint is documented.
func TestSwaggerDocMatchesRoutes(t *testing.T) {
	storage, _, _, _, _ := newMockStorage()
	api := newTestAPIHandler(storage, nil, nil)
	router, _ := newTestRouters(api)
	res := call(router, http.MethodGet, "/swagger/doc.json")
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var doc struct {
		Paths map[string]map[string]struct {
			Responses map[string]interface{} `json:"responses"`
		} `json:"paths"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&doc))

	operations := 0
	for path, methods := range doc.Paths {
		for method, op := range methods {
			operations++
			handle, _, _ := router.Lookup(strings.ToUpper(method), strings.ReplaceAll(path, "{id}", "1"))
			assert.NotNil(t, handle, "%s %s", method, path)
			assert.Contains(t, op.Responses, "500", "%s %s", method, path)
		}
	}
	// 5 operations for each of the 4 entities plus the books search.
	assert.Equal(t, 21, operations)
}

// TestLecturerRoutes ensures the lecturers endpoints are served by their own router.
func TestLecturerRoutes(t *testing.T) {
	storage, _, _, _, _ := newMockStorage()
	api := newTestAPIHandler(storage, nil, nil)
	_, router := newTestRouters(api)

	tests := []struct {
		method string
		target string
		status int
	}{
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/lecturers", http.StatusOK},
		{http.MethodGet, "/get-by-id/3", http.StatusOK},
		{http.MethodGet, "/get-by-id/9", http.StatusNotFound},
		{http.MethodPost, "/create-lecturer/9", http.StatusBadRequest},
		{http.MethodGet, "/authors", http.StatusNotFound},
	}
	for _, tc := range tests {
		res := call(router, tc.method, tc.target)
		res.Body.Close()
		assert.Equal(t, tc.status, res.StatusCode, tc.method+" "+tc.target)
	}
}
