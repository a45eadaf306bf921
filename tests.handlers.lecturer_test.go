package main

import (
	"net/http"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLecturersIndexHandler(t *testing.T) {
	storage, _, _, _, _ := newMockStorage()
	api := newTestAPIHandler(storage, nil, nil)
	m := decodeBody(t, serve(api.LecturersIndex, http.MethodGet, "/", "", nil))
	assert.Equal(t, "Server running", m["message"])
	_, ok := m["data"]
	assert.False(t, ok)
}

// TestListLecturersHandler ensures the registry starts with the default lecturers.
func TestListLecturersHandler(t *testing.T) {
	storage, _, _, _, _ := newMockStorage()
	api := newTestAPIHandler(storage, nil, nil)
	res := serve(api.ListLecturers, http.MethodGet, "/lecturers", "", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	m := decodeBody(t, res)
	assert.Equal(t, "Query success", m["message"])
	data := m["data"].(map[string]interface{})
	assert.Len(t, data, 3)
	first := data["1"].(map[string]interface{})
	assert.Equal(t, "Wesonga", first["name"])
	assert.Equal(t, "IT", first["course"])
	assert.Equal(t, float64(99000), first["salary"])
}

func TestGetLecturerHandler(t *testing.T) {
	storage, _, _, _, _ := newMockStorage()
	api := newTestAPIHandler(storage, nil, nil)

	res := serve(api.GetLecturer, http.MethodGet, "/get-by-id/2", "", idParam("2"))
	assert.Equal(t, http.StatusOK, res.StatusCode)
	m := decodeBody(t, res)
	assert.Equal(t, "Gavuna", m["data"].(map[string]interface{})["name"])

	res = serve(api.GetLecturer, http.MethodGet, "/get-by-id/42", "", idParam("42"))
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	m = decodeBody(t, res)
	assert.Equal(t, "lecturer not found", m["message"])

	res = serve(api.GetLecturer, http.MethodGet, "/get-by-id/x", "", idParam("x"))
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	res.Body.Close()
}

// TestCreateLecturerHandler ensures a taken id is refused and leaves the record untouched.
func TestCreateLecturerHandler(t *testing.T) {
	storage, _, _, _, _ := newMockStorage()
	api := newTestAPIHandler(storage, nil, nil)

	t.Run("should pass: new id", func(t *testing.T) {
		res := serve(api.CreateLecturer, http.MethodPost, "/create-lecturer/4", `{"name":"Otieno","course":"Law","salary":95000}`, idParam("4"))
		assert.Equal(t, http.StatusCreated, res.StatusCode)
		m := decodeBody(t, res)
		assert.Equal(t, "Lecturer created successfully", m["message"])
		assert.Equal(t, 4, api.lecturers.Len())
	})

	t.Run("should fail: taken id", func(t *testing.T) {
		res := serve(api.CreateLecturer, http.MethodPost, "/create-lecturer/1", `{"name":"Other","course":"Art","salary":1}`, idParam("1"))
		assert.Equal(t, http.StatusConflict, res.StatusCode)
		m := decodeBody(t, res)
		assert.Equal(t, "Lecturer already exists", m["message"])
		l, err := api.lecturers.Get(1)
		require.NoError(t, err)
		assert.Equal(t, "Wesonga", l.Name)
	})

	t.Run("should fail: missing salary", func(t *testing.T) {
		res := serve(api.CreateLecturer, http.MethodPost, "/create-lecturer/5", `{"name":"Otieno","course":"Law"}`, idParam("5"))
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		m := decodeBody(t, res)
		assert.Equal(t, "salary is required", m["message"])
	})

	t.Run("should pass: zero salary", func(t *testing.T) {
		res := serve(api.CreateLecturer, http.MethodPost, "/create-lecturer/6", `{"name":"Volunteer","course":"Music","salary":0}`, idParam("6"))
		assert.Equal(t, http.StatusCreated, res.StatusCode)
		res.Body.Close()
	})
}

// TestLecturerRegistry_ConcurrentCreate ensures only one caller wins a given id.
func TestLecturerRegistry_ConcurrentCreate(t *testing.T) {
	registry := NewLecturerRegistry(nil)
	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if _, err := registry.Create(1, Lecturer{Name: strconv.Itoa(n)}); err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, created)
	assert.Equal(t, 1, registry.Len())
}

func TestLecturerRegistry_Close(t *testing.T) {
	registry := NewLecturerRegistry(DefaultLecturers())
	registry.Close()
	assert.Equal(t, 0, registry.Len())
	_, err := registry.Get(1)
	assert.ErrorIs(t, err, ErrLecturerNotFound)
}
