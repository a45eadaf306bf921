package main

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Statistics holds app stats for ops.
type Statistics struct {
	version   string
	container bool
	runtime   string
	platform  string
	called    uint64
	started   time.Time
	status    map[int]uint64
	mu        *sync.RWMutex
}

// Maintenance holds app maintenance mode infos.
type Maintenance struct {
	enabled atomic.Bool
	mu      sync.RWMutex
	message string
	started time.Time
}

// ConnProvider hands out a dedicated connection from the database pool.
type ConnProvider interface {
	Connx(ctx context.Context) (*sqlx.Conn, error)
}

// APIHandler defines the API handler.
type APIHandler struct {
	logger         *zap.Logger
	config         *Config
	stats          *Statistics
	mode           *Maintenance
	clock          Clocker
	idsHandler     UIDHandler
	libraryService LibraryServiceProvider
	lecturers      *LecturerRegistry
	journal        JournalStorage
	db             ConnProvider
	limiters       *ipLimiters
}

// NewAPIHandler provides a new instance of APIHandler.
func NewAPIHandler(
	logger *zap.Logger,
	config *Config,
	stats *Statistics,
	clock Clocker,
	idsHandler UIDHandler,
	ls LibraryServiceProvider,
	lecturers *LecturerRegistry,
	journal JournalStorage,
	db ConnProvider,
) *APIHandler {
	m := &Maintenance{}
	m.enabled.Store(false)
	stats.status = make(map[int]uint64)
	stats.mu = &sync.RWMutex{}
	if config == nil {
		config = &Config{}
	}
	if journal == nil {
		journal = nopJournalStorage{}
	}
	return &APIHandler{
		logger:         logger,
		config:         config,
		stats:          stats,
		mode:           m,
		clock:          clock,
		idsHandler:     idsHandler,
		libraryService: ls,
		lecturers:      lecturers,
		journal:        journal,
		db:             db,
		limiters:       newIPLimiters(clock, config.Server.RateLimit, config.Server.RateBurst, config.Server.RateIdleTTL),
	}
}
