package main

import (
	"context"

	"github.com/doug-martin/goqu/v9"
)

var borrowerColumns = []interface{}{colID, colName}

type postgresBorrowerStorage struct {
	*postgresStorage
}

// List retrieves a window of borrowers ordered by id.
func (s *postgresBorrowerStorage) List(ctx context.Context, page Page) ([]Borrower, error) {
	borrowers := []Borrower{}
	if page.Limit == 0 {
		return borrowers, nil
	}
	stmt := selectPage(dialect.From(tableBorrowers).Select(borrowerColumns...), page).Prepared(true)
	err := s.list(ctx, &borrowers, stmt)
	return borrowers, err
}

// GetOne retrieves a borrower record based on its ID.
func (s *postgresBorrowerStorage) GetOne(ctx context.Context, id int64) (Borrower, error) {
	var borrower Borrower
	stmt := dialect.From(tableBorrowers).Select(borrowerColumns...).Where(goqu.C(colID).Eq(id)).Prepared(true)
	err := s.get(ctx, &borrower, stmt)
	return borrower, err
}

// GetMany retrieves the borrowers matching the given IDs.
func (s *postgresBorrowerStorage) GetMany(ctx context.Context, ids []int64) ([]Borrower, error) {
	borrowers := []Borrower{}
	if len(ids) == 0 {
		return borrowers, nil
	}
	stmt := dialect.From(tableBorrowers).Select(borrowerColumns...).
		Where(goqu.C(colID).In(ids)).
		Order(goqu.C(colID).Asc()).
		Prepared(true)
	err := s.list(ctx, &borrowers, stmt)
	return borrowers, err
}

// Add inserts a new borrower record and returns it with its assigned ID.
func (s *postgresBorrowerStorage) Add(ctx context.Context, borrower Borrower) (Borrower, error) {
	var created Borrower
	stmt := dialect.Insert(tableBorrowers).
		Rows(goqu.Record{colName: borrower.Name}).
		Returning(borrowerColumns...).
		Prepared(true)
	err := s.get(ctx, &created, stmt)
	return created, err
}

// Update replaces the stored fields of an existing borrower record.
func (s *postgresBorrowerStorage) Update(ctx context.Context, borrower Borrower) (Borrower, error) {
	var updated Borrower
	stmt := dialect.Update(tableBorrowers).
		Set(goqu.Record{colName: borrower.Name}).
		Where(goqu.C(colID).Eq(borrower.ID)).
		Returning(borrowerColumns...).
		Prepared(true)
	err := s.get(ctx, &updated, stmt)
	return updated, err
}

// Delete removes a borrower record and returns it as it was.
func (s *postgresBorrowerStorage) Delete(ctx context.Context, id int64) (Borrower, error) {
	var deleted Borrower
	stmt := dialect.Delete(tableBorrowers).
		Where(goqu.C(colID).Eq(id)).
		Returning(borrowerColumns...).
		Prepared(true)
	err := s.get(ctx, &deleted, stmt)
	return deleted, err
}
