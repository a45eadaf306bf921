package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type AppProvider interface {
	Run() error
	Serve(srv *http.Server, name string) func() error
	Stop(context.Context, context.Context) func() error
}

type App struct {
	logger         *zap.Logger
	config         *Config
	servers        map[string]*http.Server
	cleanups       cleanupStack
	stoppers       []func()
	queueConsumers []func(context.Context) error
}

const (
	libraryServerName  = "library"
	lecturerServerName = "lecturers"
)

// NewApp provides an instance of App.
//
//nolint:funlen
func NewApp() (AppProvider, error) {
	config, err := LoadAndInitConfigs(GitCommit, GitTag, BuildTime)
	if err != nil {
		return nil, fmt.Errorf("failed to setup app configuration: %s", err)
	}

	clock := NewClock(config.IsProduction)

	// ensure the logs folder exists and setup the logging module.
	err = os.MkdirAll(config.LogFolder, 0o700)
	if err != nil {
		return nil, fmt.Errorf("failed to create logging folder: %s", err)
	}
	logWriter := NewRSyncWriter(config, clock)
	logger, flusher := SetupLogging(config, logWriter, NewTickClock(clock))
	var cleanups cleanupStack
	cleanups.push(func() {
		if cerr := logWriter.Close(); cerr != nil {
			fmt.Println("error during closing of log file: ", cerr)
		}
	})
	cleanups.push(func() {
		if ferr := flusher(); ferr != nil {
			fmt.Println("error during logs flushing: ", ferr)
		}
	})
	abort := func(err error) (AppProvider, error) {
		logger.Error("failed to setup app", zap.Error(err))
		cleanups.run()
		return nil, err
	}

	// Setup the connection pool to postgres then the tables.
	db, err := GetPostgresClient(context.Background(), &config.Postgres)
	if err != nil {
		return abort(fmt.Errorf("failed to connect to postgres server: %s", err))
	}
	cleanups.push(func() { _ = db.Close() })
	if err = EnsureSchema(context.Background(), db); err != nil {
		return abort(err)
	}

	// Setup the change journal. Without it writes are not recorded anywhere.
	var queue Queuer = NewNopQueue()
	var journal JournalStorage = nopJournalStorage{}
	var consumers []func(context.Context) error
	var stoppers []func()
	if config.Journal.Enable {
		redisClient, rerr := GetRedisClient(&config.Redis)
		if rerr != nil {
			return abort(fmt.Errorf("failed to connect to redis server: %s", rerr))
		}
		boltDBClient, berr := GetBoltDBClient(&config.BoltDB)
		if berr != nil {
			_ = redisClient.Close()
			return abort(fmt.Errorf("failed to connect to boltDB server: %s", berr))
		}
		boltJournal := NewBoltJournalStorage(logger, &config.BoltDB, boltDBClient)
		queue = NewRedisQueue(redisClient)
		journal = boltJournal
		journalConsumer := NewJournalConsumer(logger, queue, boltJournal)
		consumers = append(consumers, func(ctx context.Context) error {
			return journalConsumer.Consume(ctx, CreateQueue, UpdateQueue, DeleteQueue)
		})
		// closing redis unblocks the consumer waiting on the queues.
		stoppers = append(stoppers, func() { _ = redisClient.Close() })
		cleanups.push(func() { _ = boltDBClient.Close() })
	}

	// Setup the repository and api services and routing.
	storage := NewPostgresStorage(logger, db)
	libraryService := NewLibraryService(logger, clock, storage, queue)
	lecturers := NewLecturerRegistry(DefaultLecturers())
	cleanups.push(lecturers.Close)

	apiService := NewAPIHandler(
		logger,
		config,
		&Statistics{
			version:   config.GitTag,
			container: IsAppRunningInDocker(),
			started:   clock.Now(),
			runtime:   runtime.Version(),
			platform:  runtime.GOOS + "/" + runtime.GOARCH,
		},
		clock,
		NewIDsHandler(),
		libraryService,
		lecturers,
		journal,
		db,
	)

	// Drop the rate limiters of idle source ips.
	consumers = append(consumers, func(ctx context.Context) error {
		return apiService.limiters.Sweep(ctx, time.Minute)
	})

	// Use git commit in case the tag is not set.
	if config.GitTag == "" {
		apiService.stats.version = config.GitCommit
	}

	// Build the map of middlewares stacks.
	m := NewMiddlewareMap(apiService.MiddlewaresStacks())

	// Configure the endpoints with their handlers and middlewares.
	router := apiService.SetupRoutes(httprouter.New(), m)
	servers := map[string]*http.Server{
		libraryServerName: newServer(config.Server.Host, config.Server.Port, router, &config.Server),
	}
	if config.Lecturers.Enable {
		lecturerRouter := apiService.SetupLecturerRoutes(httprouter.New(), m)
		servers[lecturerServerName] = newServer(config.Lecturers.Host, config.Lecturers.Port, lecturerRouter, &config.Server)
	}

	return &App{
		logger:         logger,
		config:         config,
		servers:        servers,
		cleanups:       cleanups,
		stoppers:       stoppers,
		queueConsumers: consumers,
	}, nil
}

// newServer builds a server definition with the router wrapped by the default http timeout handler.
func newServer(host, port string, router http.Handler, config *ServerConfig) *http.Server {
	handler := router
	if config.RequestTimeout > 0 {
		handler = http.TimeoutHandler(
			router,
			config.RequestTimeout,
			"Timeout. Processing taking too long. Please reach out to support.")
	}
	return &http.Server{
		Addr:           fmt.Sprintf("%s:%s", host, port),
		Handler:        handler,
		ReadTimeout:    config.ReadTimeout,
		WriteTimeout:   config.WriteTimeout,
		MaxHeaderBytes: 1 << 20, // Max headers size : 1MB
	}
}

// Run starts the api web servers, the queue consumers and a goroutine which is responsible to stop them.
func (app *App) Run() error {
	defer app.Clean()
	nCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(nCtx)

	app.ConsumeQueues(gCtx, g)
	for name, srv := range app.servers {
		g.Go(app.Serve(srv, name))
	}
	g.Go(app.Stop(nCtx, gCtx))

	err := g.Wait()
	app.logger.Info("api servers stopped", zap.Error(err))
	return err
}

// Clean calls all registered cleanups functions.
func (app *App) Clean() {
	app.cleanups.run()
}

// cleanupStack holds release functions. The last pushed runs first.
type cleanupStack []func()

func (c *cleanupStack) push(f func()) {
	*c = append(*c, f)
}

func (c cleanupStack) run() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

// Serve starts an api web server. It returned error
// will be caught by the errorgroup.
func (app *App) Serve(srv *http.Server, name string) func() error {
	return func() error {
		app.logger.Info("api server starting",
			zap.String("app.server", name),
			zap.String("app.address", srv.Addr),
		)
		err := srv.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		return err
	}
}

// Stop listens for the group context and triggers the servers graceful shutdown.
// It states the reason of its call. We proceed with a brutal shutdown if the
// the graceful did not complete successfully. We explicitly return `nil` to
// allow the errorgroup catches only the `Serve` method result.
func (app *App) Stop(nCtx, gCtx context.Context) func() error {
	return func() error {
		<-gCtx.Done()

		if nCtx.Err() != nil {
			app.logger.Info("api servers stopping. reason: requested to stop")
		} else {
			app.logger.Info("api servers stopping. reason: errored at running")
		}

		for name, srv := range app.servers {
			app.shutdown(name, srv)
		}
		for _, f := range app.stoppers {
			f()
		}
		return nil
	}
}

func (app *App) shutdown(name string, srv *http.Server) {
	logger := app.logger.With(zap.String("app.server", name))
	sCtx, cancel := context.WithTimeout(context.Background(), app.config.Server.ShutdownTimeout)
	defer cancel()
	err := srv.Shutdown(sCtx)
	switch {
	case err == nil, errors.Is(err, http.ErrServerClosed):
		logger.Info("api server graceful shutdown succeeded")
		return
	case errors.Is(err, context.DeadlineExceeded):
		logger.Info("api server graceful shutdown timed out")
	default:
		logger.Info("api server graceful shutdown failed", zap.Error(err))
	}
	logger.Info("api server going to force shutdown", zap.Error(srv.Close()))
}

// ConsumeQueues runs the queue consumers and background sweepers into separate controlled goroutines.
func (app *App) ConsumeQueues(gCtx context.Context, g *errgroup.Group) {
	for _, consume := range app.queueConsumers {
		consume := consume
		g.Go(func() error {
			return consume(gCtx)
		})
	}
}
