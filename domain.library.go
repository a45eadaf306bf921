package main

import (
	"context"
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire and storage format of calendar dates.
const DateLayout = "2006-01-02"

// Date is a calendar date without time of day. It is encoded
// as `YYYY-MM-DD` in JSON and stored into DATE columns.
type Date struct {
	time.Time
}

// NewDate builds a Date at midnight UTC of the given day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a `YYYY-MM-DD` string into a Date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected format YYYY-MM-DD", s)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(DateLayout) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler. A JSON null leaves the date untouched.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		return nil
	}
	parsed, err := ParseDate(strings.Trim(s, `"`))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Scan implements sql.Scanner. Both lib/pq and pgx return DATE columns as time.Time.
func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		*d = NewDate(v.Year(), v.Month(), v.Day())
		return nil
	case string:
		parsed, err := ParseDate(v[:min(len(v), len(DateLayout))])
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case []byte:
		return d.Scan(string(v))
	}
	return fmt.Errorf("cannot scan %T into Date", src)
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.Format(DateLayout), nil
}

// Author represents an author entity. It owns zero or more books.
type Author struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Book represents a book entity written by exactly one author.
type Book struct {
	ID              int64  `json:"id" db:"id"`
	Title           string `json:"title" db:"title"`
	PublicationDate Date   `json:"publication_date" db:"publication_date"`
	AuthorID        int64  `json:"author_id" db:"author_id"`
}

// Borrower represents a library member who can borrow books.
type Borrower struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Loan links a book to a borrower until its return date. A book
// referenced by at least one loan is considered unavailable.
type Loan struct {
	ID         int64 `json:"id" db:"id"`
	BookID     int64 `json:"book_id" db:"book_id"`
	BorrowerID int64 `json:"borrower_id" db:"borrower_id"`
	ReturnDate Date  `json:"return_date" db:"return_date"`
}

// Page holds the offset/limit window of a list operation.
// A zero Limit means an empty page.
type Page struct {
	Offset uint
	Limit  uint
}

// BookFilter holds the optional predicates of the filtered books query.
type BookFilter struct {
	AuthorID  *int64
	Available *bool
}

// AuthorStorage defines possible operations on author entity.
type AuthorStorage interface {
	List(ctx context.Context, page Page) ([]Author, error)
	GetOne(ctx context.Context, id int64) (Author, error)
	GetMany(ctx context.Context, ids []int64) ([]Author, error)
	Add(ctx context.Context, author Author) (Author, error)
	Update(ctx context.Context, author Author) (Author, error)
	Delete(ctx context.Context, id int64) (Author, error)
}

// BookStorage defines possible operations on book entity.
type BookStorage interface {
	List(ctx context.Context, page Page) ([]Book, error)
	Filter(ctx context.Context, filter BookFilter) ([]Book, error)
	GetOne(ctx context.Context, id int64) (Book, error)
	GetMany(ctx context.Context, ids []int64) ([]Book, error)
	ListByAuthors(ctx context.Context, authorIDs []int64) ([]Book, error)
	Add(ctx context.Context, book Book) (Book, error)
	Update(ctx context.Context, book Book) (Book, error)
	Delete(ctx context.Context, id int64) (Book, error)
}

// BorrowerStorage defines possible operations on borrower entity.
type BorrowerStorage interface {
	List(ctx context.Context, page Page) ([]Borrower, error)
	GetOne(ctx context.Context, id int64) (Borrower, error)
	GetMany(ctx context.Context, ids []int64) ([]Borrower, error)
	Add(ctx context.Context, borrower Borrower) (Borrower, error)
	Update(ctx context.Context, borrower Borrower) (Borrower, error)
	Delete(ctx context.Context, id int64) (Borrower, error)
}

// LoanStorage defines possible operations on loan entity.
type LoanStorage interface {
	List(ctx context.Context, page Page) ([]Loan, error)
	GetOne(ctx context.Context, id int64) (Loan, error)
	ListByBooks(ctx context.Context, bookIDs []int64) ([]Loan, error)
	ListByBorrowers(ctx context.Context, borrowerIDs []int64) ([]Loan, error)
	Add(ctx context.Context, loan Loan) (Loan, error)
	Update(ctx context.Context, loan Loan) (Loan, error)
	Delete(ctx context.Context, id int64) (Loan, error)
}

// Storage groups the entity storages backing the library.
type Storage struct {
	Authors   AuthorStorage
	Books     BookStorage
	Borrowers BorrowerStorage
	Loans     LoanStorage
}
