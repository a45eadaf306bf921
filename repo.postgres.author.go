package main

import (
	"context"

	"github.com/doug-martin/goqu/v9"
)

var authorColumns = []interface{}{colID, colName}

type postgresAuthorStorage struct {
	*postgresStorage
}

// List retrieves a window of authors ordered by id.
func (s *postgresAuthorStorage) List(ctx context.Context, page Page) ([]Author, error) {
	authors := []Author{}
	if page.Limit == 0 {
		return authors, nil
	}
	stmt := selectPage(dialect.From(tableAuthors).Select(authorColumns...), page).Prepared(true)
	err := s.list(ctx, &authors, stmt)
	return authors, err
}

// GetOne retrieves an author record based on its ID.
func (s *postgresAuthorStorage) GetOne(ctx context.Context, id int64) (Author, error) {
	var author Author
	stmt := dialect.From(tableAuthors).Select(authorColumns...).Where(goqu.C(colID).Eq(id)).Prepared(true)
	err := s.get(ctx, &author, stmt)
	return author, err
}

// GetMany retrieves the authors matching the given IDs.
func (s *postgresAuthorStorage) GetMany(ctx context.Context, ids []int64) ([]Author, error) {
	authors := []Author{}
	if len(ids) == 0 {
		return authors, nil
	}
	stmt := dialect.From(tableAuthors).Select(authorColumns...).
		Where(goqu.C(colID).In(ids)).
		Order(goqu.C(colID).Asc()).
		Prepared(true)
	err := s.list(ctx, &authors, stmt)
	return authors, err
}

// Add inserts a new author record and returns it with its assigned ID.
func (s *postgresAuthorStorage) Add(ctx context.Context, author Author) (Author, error) {
	var created Author
	stmt := dialect.Insert(tableAuthors).
		Rows(goqu.Record{colName: author.Name}).
		Returning(authorColumns...).
		Prepared(true)
	err := s.get(ctx, &created, stmt)
	return created, err
}

// Update replaces the stored fields of an existing author record.
func (s *postgresAuthorStorage) Update(ctx context.Context, author Author) (Author, error) {
	var updated Author
	stmt := dialect.Update(tableAuthors).
		Set(goqu.Record{colName: author.Name}).
		Where(goqu.C(colID).Eq(author.ID)).
		Returning(authorColumns...).
		Prepared(true)
	err := s.get(ctx, &updated, stmt)
	return updated, err
}

// Delete removes an author record and returns it as it was.
func (s *postgresAuthorStorage) Delete(ctx context.Context, id int64) (Author, error) {
	var deleted Author
	stmt := dialect.Delete(tableAuthors).
		Where(goqu.C(colID).Eq(id)).
		Returning(authorColumns...).
		Prepared(true)
	err := s.get(ctx, &deleted, stmt)
	return deleted, err
}
