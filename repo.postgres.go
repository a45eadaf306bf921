package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the `pgx` driver
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

const (
	dialectPostgres = "postgres"
	tableAuthors    = "authors"
	tableBooks      = "books"
	tableBorrowers  = "borrowers"
	tableLoans      = "loans"
	colID           = "id"
	colName         = "name"
	colTitle        = "title"
	colPubDate      = "publication_date"
	colAuthorID     = "author_id"
	colBookID       = "book_id"
	colBorrowerID   = "borrower_id"
	colReturnDate   = "return_date"
)

// integrityViolationClass is the SQLSTATE class of integrity constraint violations.
const integrityViolationClass = "23"

var dialect = goqu.Dialect(dialectPostgres)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS authors (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_authors_name ON authors (name)`,
	`CREATE TABLE IF NOT EXISTS books (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		publication_date DATE NOT NULL,
		author_id BIGINT NOT NULL REFERENCES authors (id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_books_title ON books (title)`,
	`CREATE INDEX IF NOT EXISTS idx_books_author_id ON books (author_id)`,
	`CREATE TABLE IF NOT EXISTS borrowers (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_borrowers_name ON borrowers (name)`,
	`CREATE TABLE IF NOT EXISTS loans (
		id BIGSERIAL PRIMARY KEY,
		book_id BIGINT NOT NULL REFERENCES books (id),
		borrower_id BIGINT NOT NULL REFERENCES borrowers (id),
		return_date DATE NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_loans_book_id ON loans (book_id)`,
	`CREATE INDEX IF NOT EXISTS idx_loans_borrower_id ON loans (borrower_id)`,
}

// DBExecutor is satisfied by both the pool (*sqlx.DB) and a
// single reserved connection (*sqlx.Conn).
type DBExecutor interface {
	sqlx.QueryerContext
	sqlx.ExecerContext
}

// GetPostgresClient opens the connection pool with the configured driver
// then tests it before handing it over.
func GetPostgresClient(ctx context.Context, config *PostgresConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open(config.Driver, config.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open the database: %w", err)
	}
	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)
	db.SetConnMaxIdleTime(config.ConnMaxIdleTime)

	pCtx, cancel := context.WithTimeout(ctx, config.PingTimeout)
	defer cancel()
	if err = db.PingContext(pCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("test connection failed: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the library tables when they do not exist yet.
func EnsureSchema(ctx context.Context, db DBExecutor) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// postgresStorage holds what every entity storage needs to run statements.
type postgresStorage struct {
	logger *zap.Logger
	db     *sqlx.DB
}

// NewPostgresStorage provides the Postgres-backed storages of all library entities.
func NewPostgresStorage(logger *zap.Logger, db *sqlx.DB) *Storage {
	ps := &postgresStorage{logger: logger, db: db}
	return &Storage{
		Authors:   &postgresAuthorStorage{ps},
		Books:     &postgresBookStorage{ps},
		Borrowers: &postgresBorrowerStorage{ps},
		Loans:     &postgresLoanStorage{ps},
	}
}

// executor returns the connection reserved for the request if any, otherwise the pool.
func (ps *postgresStorage) executor(ctx context.Context) DBExecutor {
	if conn := GetDBConnFromContext(ctx); conn != nil {
		return conn
	}
	return ps.db
}

type sqlBuilder interface {
	ToSQL() (string, []interface{}, error)
}

// get runs a statement expected to yield a single row and scans it into dest.
func (ps *postgresStorage) get(ctx context.Context, dest interface{}, stmt sqlBuilder) error {
	query, args, err := stmt.ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	ps.logger.Debug("storage: executing query", zap.String("query", query))
	err = sqlx.GetContext(ctx, ps.executor(ctx), dest, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return translateError(err)
}

// list runs a statement expected to yield many rows and scans them into dest.
func (ps *postgresStorage) list(ctx context.Context, dest interface{}, stmt sqlBuilder) error {
	query, args, err := stmt.ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	ps.logger.Debug("storage: executing query", zap.String("query", query))
	return translateError(sqlx.SelectContext(ctx, ps.executor(ctx), dest, query, args...))
}

// translateError maps integrity constraint failures raised by
// either driver into ErrConstraintViolation.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Class() == integrityViolationClass {
		return fmt.Errorf("%w: %s", ErrConstraintViolation, pqErr.Message)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, integrityViolationClass) {
		return fmt.Errorf("%w: %s", ErrConstraintViolation, pgErr.Message)
	}
	return err
}

// selectPage applies the page window on a select statement.
// goqu drops `LIMIT 0` so callers must short-circuit empty pages.
func selectPage(ds *goqu.SelectDataset, page Page) *goqu.SelectDataset {
	return ds.Order(goqu.C(colID).Asc()).Offset(page.Offset).Limit(page.Limit)
}
