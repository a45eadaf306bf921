package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/julienschmidt/httprouter"
)

var (
	ErrNotFound               = errors.New("record not found")
	ErrConstraintViolation    = errors.New("constraint violation")
	ErrLecturerNotFound       = errors.New("lecturer not found")
	ErrLecturerAlreadyExists  = errors.New("lecturer already exists")
	ErrMissingRequestBody     = errors.New("missing request body")
	ErrInvalidQueryParameters = errors.New("invalid query parameters")
)

type (
	ContextKey        string
	missingFieldError string
	invalidFieldError string
)

const (
	RequestIDPrefix         string     = "r"
	RequestIDContextKey     ContextKey = "request.id"
	RequestNumberContextKey ContextKey = "request.number"
	DBConnContextKey        ContextKey = "db-conn"
)

func (m missingFieldError) Error() string {
	return string(m) + " is required"
}

func (m invalidFieldError) Error() string {
	return string(m) + " is not valid"
}

// GetValueFromContext returns the value of a given key in the context
// if this key is not available, it returns an empty string.
func GetValueFromContext(ctx context.Context, contextKey ContextKey) string {
	if val := ctx.Value(contextKey); val != nil {
		return val.(string)
	}
	return ""
}

// GetRequestNumberFromContext returns the request number set in
// the context. if not previously set then it returns 0.
func GetRequestNumberFromContext(ctx context.Context) uint64 {
	if val := ctx.Value(RequestNumberContextKey); val != nil {
		return val.(uint64)
	}
	return 0
}

// GetDBConnFromContext returns the database connection reserved for the
// ongoing request by the DBConnMiddleware. It returns nil when none was set.
func GetDBConnFromContext(ctx context.Context) *sqlx.Conn {
	if conn, ok := ctx.Value(DBConnContextKey).(*sqlx.Conn); ok {
		return conn
	}
	return nil
}

// DecodeRequestBody is a helper function to read the JSON content of a creation or update request.
func DecodeRequestBody(r *http.Request, v interface{}) error {
	if r.Body == nil || r.Body == http.NoBody {
		return ErrMissingRequestBody
	}
	return json.NewDecoder(r.Body).Decode(v)
}

// ParseIDParam extracts the `id` route parameter as a positive integer.
func ParseIDParam(ps httprouter.Params) (int64, error) {
	id, err := strconv.ParseInt(ps.ByName("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id parameter %q", ps.ByName("id"))
	}
	return id, nil
}

// ParsePage reads the `offset` and `limit` query parameters. An absent limit
// falls back to defaultLimit. An explicit `limit=0` is kept and means an empty page.
func ParsePage(q url.Values, defaultLimit, maxLimit uint) (Page, error) {
	page := Page{Offset: 0, Limit: defaultLimit}
	if v := q.Get("offset"); v != "" {
		offset, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return page, fmt.Errorf("%w: offset must be a non-negative integer", ErrInvalidQueryParameters)
		}
		page.Offset = uint(offset)
	}
	if q.Has("limit") {
		limit, err := strconv.ParseUint(q.Get("limit"), 10, 32)
		if err != nil {
			return page, fmt.Errorf("%w: limit must be a non-negative integer", ErrInvalidQueryParameters)
		}
		page.Limit = uint(limit)
	}
	if maxLimit > 0 && page.Limit > maxLimit {
		page.Limit = maxLimit
	}
	return page, nil
}

// IsBookFilterRequest tells whether a books listing request targets the filtered query.
func IsBookFilterRequest(q url.Values) bool {
	return q.Has("author_id") || q.Has("available")
}

// ParseBookFilter reads the `author_id` and `available` query parameters.
// Empty values are treated as not provided.
func ParseBookFilter(q url.Values) (BookFilter, error) {
	var filter BookFilter
	if v := q.Get("author_id"); v != "" {
		authorID, err := strconv.ParseInt(v, 10, 64)
		if err != nil || authorID < 0 {
			return filter, fmt.Errorf("%w: author_id must be a non-negative integer", ErrInvalidQueryParameters)
		}
		filter.AuthorID = &authorID
	}
	if v := q.Get("available"); v != "" {
		available, err := strconv.ParseBool(strings.ToLower(v))
		if err != nil {
			return filter, fmt.Errorf("%w: available must be a boolean", ErrInvalidQueryParameters)
		}
		filter.Available = &available
	}
	return filter, nil
}

// GetRequestSourceIP helps find the source IP of the caller.
func GetRequestSourceIP(r *http.Request) string {
	// Get IP from the X-REAL-IP header
	ip := r.Header.Get("X-REAL-IP")
	netIP := net.ParseIP(ip)
	if netIP != nil {
		return ip
	}

	// Get IP from X-FORWARDED-FOR header
	ips := r.Header.Get("X-FORWARDED-FOR")
	splitIps := strings.Split(ips, ",")
	for _, ip := range splitIps {
		ip = strings.TrimSpace(ip)
		netIP = net.ParseIP(ip)
		if netIP != nil {
			return ip
		}
	}

	return GetRemoteAddrIP(r)
}

// GetRemoteAddrIP returns the IP of the connection peer, ignoring any forwarding header.
func GetRemoteAddrIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return ""
	}
	if net.ParseIP(ip) != nil {
		return ip
	}
	return ""
}

// IsAppRunningInDocker checks the existence of the .dockerenv
// file at the root directory and returns a boolean result.
func IsAppRunningInDocker() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	return false
}
