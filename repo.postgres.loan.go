package main

import (
	"context"

	"github.com/doug-martin/goqu/v9"
)

var loanColumns = []interface{}{colID, colBookID, colBorrowerID, colReturnDate}

type postgresLoanStorage struct {
	*postgresStorage
}

// List retrieves a window of loans ordered by id.
func (s *postgresLoanStorage) List(ctx context.Context, page Page) ([]Loan, error) {
	loans := []Loan{}
	if page.Limit == 0 {
		return loans, nil
	}
	stmt := selectPage(dialect.From(tableLoans).Select(loanColumns...), page).Prepared(true)
	err := s.list(ctx, &loans, stmt)
	return loans, err
}

// GetOne retrieves a loan record based on its ID.
func (s *postgresLoanStorage) GetOne(ctx context.Context, id int64) (Loan, error) {
	var loan Loan
	stmt := dialect.From(tableLoans).Select(loanColumns...).Where(goqu.C(colID).Eq(id)).Prepared(true)
	err := s.get(ctx, &loan, stmt)
	return loan, err
}

// ListByBooks retrieves the loans referencing any of the given books.
func (s *postgresLoanStorage) ListByBooks(ctx context.Context, bookIDs []int64) ([]Loan, error) {
	return s.listBy(ctx, colBookID, bookIDs)
}

// ListByBorrowers retrieves the loans held by any of the given borrowers.
func (s *postgresLoanStorage) ListByBorrowers(ctx context.Context, borrowerIDs []int64) ([]Loan, error) {
	return s.listBy(ctx, colBorrowerID, borrowerIDs)
}

func (s *postgresLoanStorage) listBy(ctx context.Context, column string, ids []int64) ([]Loan, error) {
	loans := []Loan{}
	if len(ids) == 0 {
		return loans, nil
	}
	stmt := dialect.From(tableLoans).Select(loanColumns...).
		Where(goqu.C(column).In(ids)).
		Order(goqu.C(colID).Asc()).
		Prepared(true)
	err := s.list(ctx, &loans, stmt)
	return loans, err
}

// Add inserts a new loan record and returns it with its assigned ID.
func (s *postgresLoanStorage) Add(ctx context.Context, loan Loan) (Loan, error) {
	var created Loan
	stmt := dialect.Insert(tableLoans).
		Rows(loanRecord(loan)).
		Returning(loanColumns...).
		Prepared(true)
	err := s.get(ctx, &created, stmt)
	return created, err
}

// Update replaces the stored fields of an existing loan record.
func (s *postgresLoanStorage) Update(ctx context.Context, loan Loan) (Loan, error) {
	var updated Loan
	stmt := dialect.Update(tableLoans).
		Set(loanRecord(loan)).
		Where(goqu.C(colID).Eq(loan.ID)).
		Returning(loanColumns...).
		Prepared(true)
	err := s.get(ctx, &updated, stmt)
	return updated, err
}

// Delete removes a loan record and returns it as it was.
func (s *postgresLoanStorage) Delete(ctx context.Context, id int64) (Loan, error) {
	var deleted Loan
	stmt := dialect.Delete(tableLoans).
		Where(goqu.C(colID).Eq(id)).
		Returning(loanColumns...).
		Prepared(true)
	err := s.get(ctx, &deleted, stmt)
	return deleted, err
}

func loanRecord(loan Loan) goqu.Record {
	return goqu.Record{
		colBookID:     loan.BookID,
		colBorrowerID: loan.BorrowerID,
		colReturnDate: loan.ReturnDate,
	}
}
