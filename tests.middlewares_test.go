package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMiddlewaresStacks ensures we get the public, lecturers and ops middlewares
// stacks with exact number of elements in those stacks.
func TestMiddlewaresStacks(t *testing.T) {
	storage, _, _, _, _ := newMockStorage()
	api := newTestAPIHandler(storage, nil, nil)
	pub, lecturers, ops := api.MiddlewaresStacks()
	assert.Equal(t, 9, len(*pub))
	assert.Equal(t, 7, len(*lecturers))
	assert.Equal(t, 3, len(*ops))
}

// TestChain ensures each middleware in the stack is called as well the handler.
func TestChain(t *testing.T) {
	var ca, cb, cc, ch bool
	queue := make(chan int, 4)

	middlewareA := func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			queue <- 1
			ca = true
			next(w, r, ps)
		}
	}
	middlewareB := func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			queue <- 2
			cb = true
			next(w, r, ps)
		}
	}
	middlewareC := func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			queue <- 3
			cc = true
			next(w, r, ps)
		}
	}
	middlewares := Middlewares{
		middlewareA,
		middlewareB,
		middlewareC,
	}

	handler := func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		queue <- 4
		ch = true
	}

	chained := (&middlewares).Chain(handler)
	req := httptest.NewRequest("GET", "/books", nil)
	w := httptest.NewRecorder()
	chained(w, req, nil)

	t.Run("check calling", func(t *testing.T) {
		assert.Equal(t, true, ca)
		assert.Equal(t, true, cb)
		assert.Equal(t, true, cc)
		assert.Equal(t, true, ch)
	})

	t.Run("check ordering", func(t *testing.T) {
		assert.Equal(t, 1, <-queue)
		assert.Equal(t, 2, <-queue)
		assert.Equal(t, 3, <-queue)
		assert.Equal(t, 4, <-queue)
	})
}

// TestRequestsCounterMiddleware ensures the request counter increment.
func TestRequestsCounterMiddleware(t *testing.T) {
	storage, _, _, _, _ := newMockStorage()
	api := newTestAPIHandler(storage, nil, nil)
	var num uint64
	handler := func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
		num = GetRequestNumberFromContext(req.Context())
	}
	wrapped := api.RequestsCounterMiddleware(handler)
	wrapped(httptest.NewRecorder(), httptest.NewRequest("GET", "/books", nil), nil)
	wrapped(httptest.NewRecorder(), httptest.NewRequest("GET", "/books", nil), nil)
	assert.Equal(t, uint64(2), num)
	assert.Equal(t, uint64(2), api.stats.called)
}

// TestRequestIDMiddleware ensures an invalid received id is replaced.
func TestRequestIDMiddleware(t *testing.T) {
	storage, _, _, _, _ := newMockStorage()
	api := newTestAPIHandler(storage, nil, nil)
	var got string
	wrapped := api.RequestIDMiddleware(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		got = GetValueFromContext(r.Context(), RequestIDContextKey)
	})

	req := httptest.NewRequest("GET", "/authors", nil)
	req.Header.Set("X-Request-ID", "r:forged")
	w := httptest.NewRecorder()
	wrapped(w, req, nil)
	assert.Equal(t, "r:test", got)
	assert.Equal(t, "r:test", w.Header().Get("X-Request-ID"))

	api.idsHandler = NewIDsHandler()
	id := api.idsHandler.Generate(RequestIDPrefix)
	req.Header.Set("X-Request-ID", id)
	wrapped(httptest.NewRecorder(), req, nil)
	assert.Equal(t, id, got)
}

func TestStatsMiddleware(t *testing.T) {
	storage, _, _, _, _ := newMockStorage()
	api := newTestAPIHandler(storage, nil, nil)
	wrapped := api.StatsMiddleware(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusTeapot)
	})
	wrapped(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil), nil)
	wrapped(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil), nil)
	assert.Equal(t, uint64(2), api.stats.status[http.StatusTeapot])
}

// TestMaintenanceModeMiddleware ensures requests are rejected while under maintenance.
func TestMaintenanceModeMiddleware(t *testing.T) {
	storage, _, _, _, _ := newMockStorage()
	api := newTestAPIHandler(storage, nil, nil)
	var called bool
	wrapped := api.MaintenanceModeMiddleware(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		called = true
	})

	res := serve(wrapped, http.MethodGet, "/books", "", nil)
	assert.True(t, called)
	res.Body.Close()

	called = false
	api.mode.message = "database upgrade"
	api.mode.enabled.Store(true)
	res = serve(wrapped, http.MethodGet, "/books", "", nil)
	assert.False(t, called)
	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
	m := decodeBody(t, res)
	assert.Equal(t, "service currently unavailable.", m["message"])
	assert.Equal(t, "database upgrade", m["data"].(map[string]interface{})["reason"])
}

// TestRateLimitMiddleware ensures a source ip beyond its burst gets 429.
func TestRateLimitMiddleware(t *testing.T) {
	storage, _, _, _, _ := newMockStorage()
	api := newTestAPIHandler(storage, nil, nil)
	api.limiters = newIPLimiters(NewMockClocker(), 0.0001, 2, time.Minute)
	wrapped := api.RateLimitMiddleware(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusOK)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("GET", "/books", nil)
		req.RemoteAddr = "10.1.1.1:4000"
		w := httptest.NewRecorder()
		wrapped(w, req, nil)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	req := httptest.NewRequest("GET", "/books", nil)
	req.RemoteAddr = "10.1.1.2:4000"
	w := httptest.NewRecorder()
	wrapped(w, req, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimitMiddleware_Disabled(t *testing.T) {
	limiters := newIPLimiters(NewMockClocker(), 0, 0, 0)
	for i := 0; i < 100; i++ {
		require.True(t, limiters.allow("10.0.0.1"))
	}
	assert.Equal(t, 0, limiters.size())
}

// TestRateLimitMiddleware_ForwardedHeaders ensures a caller rotating forwarding
// headers is still limited on its connection address.
func TestRateLimitMiddleware_ForwardedHeaders(t *testing.T) {
	storage, _, _, _, _ := newMockStorage()
	api := newTestAPIHandler(storage, nil, nil)
	api.limiters = newIPLimiters(NewMockClocker(), 0.0001, 2, time.Minute)
	wrapped := api.RateLimitMiddleware(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusOK)
	})

	codes := make([]int, 0, 20)
	for i := 0; i < 20; i++ {
		req := httptest.NewRequest("GET", "/books", nil)
		req.RemoteAddr = "10.1.1.1:4000"
		req.Header.Set("X-Real-IP", fmt.Sprintf("10.0.0.%d", i+1))
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("172.16.0.%d", i+1))
		w := httptest.NewRecorder()
		wrapped(w, req, nil)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, http.StatusOK, codes[0])
	assert.Equal(t, http.StatusOK, codes[1])
	for _, code := range codes[2:] {
		assert.Equal(t, http.StatusTooManyRequests, code)
	}
	assert.Equal(t, 1, api.limiters.size())
}

func TestRateLimitMiddleware_TrustProxy(t *testing.T) {
	storage, _, _, _, _ := newMockStorage()
	api := newTestAPIHandler(storage, nil, nil)
	api.config.Server.TrustProxy = true
	api.limiters = newIPLimiters(NewMockClocker(), 0.0001, 1, time.Minute)
	wrapped := api.RateLimitMiddleware(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusOK)
	})

	send := func(realIP string) int {
		req := httptest.NewRequest("GET", "/books", nil)
		req.RemoteAddr = "192.168.0.1:4000"
		req.Header.Set("X-Real-IP", realIP)
		w := httptest.NewRecorder()
		wrapped(w, req, nil)
		return w.Code
	}
	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.2"))
	assert.Equal(t, 2, api.limiters.size())
}

// TestIPLimiters_Evict ensures idle buckets are dropped and active ones kept.
func TestIPLimiters_Evict(t *testing.T) {
	clock := NewMockClocker()
	limiters := newIPLimiters(clock, 1, 1, time.Minute)
	start := clock.Now()

	require.True(t, limiters.allow("10.0.0.1"))
	clock.MockNow = start.Add(45 * time.Second)
	require.True(t, limiters.allow("10.0.0.2"))
	assert.Equal(t, 2, limiters.size())

	clock.MockNow = start.Add(90 * time.Second)
	assert.Equal(t, 1, limiters.evict())
	assert.Equal(t, 1, limiters.size())

	clock.MockNow = start.Add(10 * time.Minute)
	assert.Equal(t, 1, limiters.evict())
	assert.Equal(t, 0, limiters.size())
}

func TestIPLimiters_SweepStops(t *testing.T) {
	limiters := newIPLimiters(NewMockClocker(), 1, 1, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- limiters.Sweep(ctx, time.Millisecond) }()
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("sweep did not stop on cancel")
	}
}

func TestPanicRecoveryMiddleware(t *testing.T) {
	storage, _, _, _, _ := newMockStorage()
	api := newTestAPIHandler(storage, nil, nil)
	wrapped := api.PanicRecoveryMiddleware(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		panic("boom")
	})
	res := serve(wrapped, http.MethodGet, "/books", "", nil)
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	m := decodeBody(t, res)
	assert.Equal(t, "failed to process the request.", m["message"])
}

type failingConnProvider struct{}

func (failingConnProvider) Connx(context.Context) (*sqlx.Conn, error) {
	return nil, errors.New("sql: database is closed")
}

// TestDBConnMiddleware ensures requests are refused when no connection can be reserved.
func TestDBConnMiddleware(t *testing.T) {
	storage, _, _, _, _ := newMockStorage()
	api := newTestAPIHandler(storage, nil, nil)
	var called bool
	wrapped := api.DBConnMiddleware(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		called = true
		assert.Nil(t, GetDBConnFromContext(r.Context()))
	})

	res := serve(wrapped, http.MethodGet, "/books", "", nil)
	res.Body.Close()
	assert.True(t, called)

	called = false
	api.db = failingConnProvider{}
	res = serve(wrapped, http.MethodGet, "/books", "", nil)
	assert.False(t, called)
	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
	m := decodeBody(t, res)
	assert.Equal(t, "storage currently unavailable.", m["message"])
}
