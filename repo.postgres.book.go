package main

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
)

var bookColumns = []interface{}{colID, colTitle, colPubDate, colAuthorID}

type postgresBookStorage struct {
	*postgresStorage
}

// List retrieves a window of books ordered by id.
func (s *postgresBookStorage) List(ctx context.Context, page Page) ([]Book, error) {
	books := []Book{}
	if page.Limit == 0 {
		return books, nil
	}
	stmt := selectPage(dialect.From(tableBooks).Select(bookColumns...), page).Prepared(true)
	err := s.list(ctx, &books, stmt)
	return books, err
}

// Filter retrieves every book matching all the provided predicates.
func (s *postgresBookStorage) Filter(ctx context.Context, filter BookFilter) ([]Book, error) {
	books := []Book{}
	stmt := dialect.From(tableBooks).Select(bookColumns...).Order(goqu.C(colID).Asc())
	if predicates := bookFilterExpressions(filter); len(predicates) > 0 {
		stmt = stmt.Where(goqu.And(predicates...))
	}
	err := s.list(ctx, &books, stmt.Prepared(true))
	return books, err
}

// bookFilterExpressions composes the conjunctive predicates of the books filter.
// Availability is derived from the presence of the book in the loans table.
func bookFilterExpressions(filter BookFilter) []exp.Expression {
	predicates := make([]exp.Expression, 0, 2)
	if filter.AuthorID != nil && *filter.AuthorID != 0 {
		predicates = append(predicates, goqu.C(colAuthorID).Eq(*filter.AuthorID))
	}
	if filter.Available != nil {
		loanedBooks := dialect.From(tableLoans).Select(colBookID)
		if *filter.Available {
			predicates = append(predicates, goqu.C(colID).NotIn(loanedBooks))
		} else {
			predicates = append(predicates, goqu.C(colID).In(loanedBooks))
		}
	}
	return predicates
}

// GetOne retrieves a book record based on its ID.
func (s *postgresBookStorage) GetOne(ctx context.Context, id int64) (Book, error) {
	var book Book
	stmt := dialect.From(tableBooks).Select(bookColumns...).Where(goqu.C(colID).Eq(id)).Prepared(true)
	err := s.get(ctx, &book, stmt)
	return book, err
}

// GetMany retrieves the books matching the given IDs.
func (s *postgresBookStorage) GetMany(ctx context.Context, ids []int64) ([]Book, error) {
	books := []Book{}
	if len(ids) == 0 {
		return books, nil
	}
	stmt := dialect.From(tableBooks).Select(bookColumns...).
		Where(goqu.C(colID).In(ids)).
		Order(goqu.C(colID).Asc()).
		Prepared(true)
	err := s.list(ctx, &books, stmt)
	return books, err
}

// ListByAuthors retrieves the books written by any of the given authors.
func (s *postgresBookStorage) ListByAuthors(ctx context.Context, authorIDs []int64) ([]Book, error) {
	books := []Book{}
	if len(authorIDs) == 0 {
		return books, nil
	}
	stmt := dialect.From(tableBooks).Select(bookColumns...).
		Where(goqu.C(colAuthorID).In(authorIDs)).
		Order(goqu.C(colID).Asc()).
		Prepared(true)
	err := s.list(ctx, &books, stmt)
	return books, err
}

// Add inserts a new book record and returns it with its assigned ID.
func (s *postgresBookStorage) Add(ctx context.Context, book Book) (Book, error) {
	var created Book
	stmt := dialect.Insert(tableBooks).
		Rows(bookRecord(book)).
		Returning(bookColumns...).
		Prepared(true)
	err := s.get(ctx, &created, stmt)
	return created, err
}

// Update replaces the stored fields of an existing book record.
func (s *postgresBookStorage) Update(ctx context.Context, book Book) (Book, error) {
	var updated Book
	stmt := dialect.Update(tableBooks).
		Set(bookRecord(book)).
		Where(goqu.C(colID).Eq(book.ID)).
		Returning(bookColumns...).
		Prepared(true)
	err := s.get(ctx, &updated, stmt)
	return updated, err
}

// Delete removes a book record and returns it as it was.
func (s *postgresBookStorage) Delete(ctx context.Context, id int64) (Book, error) {
	var deleted Book
	stmt := dialect.Delete(tableBooks).
		Where(goqu.C(colID).Eq(id)).
		Returning(bookColumns...).
		Prepared(true)
	err := s.get(ctx, &deleted, stmt)
	return deleted, err
}

func bookRecord(book Book) goqu.Record {
	return goqu.Record{
		colTitle:    book.Title,
		colPubDate:  book.PublicationDate,
		colAuthorID: book.AuthorID,
	}
}
