package main

import (
	"context"
	"fmt"
)

// Projections embed related entities one level deep. Embedded values are plain
// entities, never projections, so author->book->loan->book cycles cannot occur.
// Related rows are loaded with one batch query per relation.

func (ls *LibraryService) authorProjection(ctx context.Context, author Author) (AuthorResponse, error) {
	resps, err := ls.authorsProjection(ctx, []Author{author})
	if err != nil {
		return AuthorResponse{}, err
	}
	return resps[0], nil
}

func (ls *LibraryService) authorsProjection(ctx context.Context, authors []Author) ([]AuthorResponse, error) {
	resps := make([]AuthorResponse, 0, len(authors))
	if len(authors) == 0 {
		return resps, nil
	}
	ids := make([]int64, 0, len(authors))
	for _, a := range authors {
		ids = append(ids, a.ID)
	}
	books, err := ls.storage.Books.ListByAuthors(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load authors books: %w", err)
	}
	byAuthor := make(map[int64][]Book, len(authors))
	for _, b := range books {
		byAuthor[b.AuthorID] = append(byAuthor[b.AuthorID], b)
	}
	for _, a := range authors {
		resps = append(resps, AuthorResponse{Author: a, Books: nonNil(byAuthor[a.ID])})
	}
	return resps, nil
}

func (ls *LibraryService) bookProjection(ctx context.Context, book Book) (BookResponse, error) {
	resps, err := ls.booksProjection(ctx, []Book{book})
	if err != nil {
		return BookResponse{}, err
	}
	return resps[0], nil
}

func (ls *LibraryService) booksProjection(ctx context.Context, books []Book) ([]BookResponse, error) {
	resps := make([]BookResponse, 0, len(books))
	if len(books) == 0 {
		return resps, nil
	}
	bookIDs := make([]int64, 0, len(books))
	authorIDs := make([]int64, 0, len(books))
	for _, b := range books {
		bookIDs = append(bookIDs, b.ID)
		authorIDs = append(authorIDs, b.AuthorID)
	}
	authors, err := ls.storage.Authors.GetMany(ctx, unique(authorIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to load books authors: %w", err)
	}
	loans, err := ls.storage.Loans.ListByBooks(ctx, bookIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load books loans: %w", err)
	}
	authorsByID := make(map[int64]Author, len(authors))
	for _, a := range authors {
		authorsByID[a.ID] = a
	}
	loansByBook := make(map[int64][]Loan, len(books))
	for _, l := range loans {
		loansByBook[l.BookID] = append(loansByBook[l.BookID], l)
	}
	for _, b := range books {
		resp := BookResponse{Book: b, Loans: nonNil(loansByBook[b.ID])}
		if a, ok := authorsByID[b.AuthorID]; ok {
			resp.Author = &a
		}
		resps = append(resps, resp)
	}
	return resps, nil
}

func (ls *LibraryService) borrowerProjection(ctx context.Context, borrower Borrower) (BorrowerResponse, error) {
	resps, err := ls.borrowersProjection(ctx, []Borrower{borrower})
	if err != nil {
		return BorrowerResponse{}, err
	}
	return resps[0], nil
}

func (ls *LibraryService) borrowersProjection(ctx context.Context, borrowers []Borrower) ([]BorrowerResponse, error) {
	resps := make([]BorrowerResponse, 0, len(borrowers))
	if len(borrowers) == 0 {
		return resps, nil
	}
	ids := make([]int64, 0, len(borrowers))
	for _, b := range borrowers {
		ids = append(ids, b.ID)
	}
	loans, err := ls.storage.Loans.ListByBorrowers(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load borrowers loans: %w", err)
	}
	byBorrower := make(map[int64][]Loan, len(borrowers))
	for _, l := range loans {
		byBorrower[l.BorrowerID] = append(byBorrower[l.BorrowerID], l)
	}
	for _, b := range borrowers {
		resps = append(resps, BorrowerResponse{Borrower: b, Loans: nonNil(byBorrower[b.ID])})
	}
	return resps, nil
}

func (ls *LibraryService) loanProjection(ctx context.Context, loan Loan) (LoanResponse, error) {
	resps, err := ls.loansProjection(ctx, []Loan{loan})
	if err != nil {
		return LoanResponse{}, err
	}
	return resps[0], nil
}

func (ls *LibraryService) loansProjection(ctx context.Context, loans []Loan) ([]LoanResponse, error) {
	resps := make([]LoanResponse, 0, len(loans))
	if len(loans) == 0 {
		return resps, nil
	}
	bookIDs := make([]int64, 0, len(loans))
	borrowerIDs := make([]int64, 0, len(loans))
	for _, l := range loans {
		bookIDs = append(bookIDs, l.BookID)
		borrowerIDs = append(borrowerIDs, l.BorrowerID)
	}
	books, err := ls.storage.Books.GetMany(ctx, unique(bookIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to load loans books: %w", err)
	}
	borrowers, err := ls.storage.Borrowers.GetMany(ctx, unique(borrowerIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to load loans borrowers: %w", err)
	}
	booksByID := make(map[int64]Book, len(books))
	for _, b := range books {
		booksByID[b.ID] = b
	}
	borrowersByID := make(map[int64]Borrower, len(borrowers))
	for _, b := range borrowers {
		borrowersByID[b.ID] = b
	}
	for _, l := range loans {
		resp := LoanResponse{Loan: l}
		if b, ok := booksByID[l.BookID]; ok {
			resp.Book = &b
		}
		if b, ok := borrowersByID[l.BorrowerID]; ok {
			resp.Borrower = &b
		}
		resps = append(resps, resp)
	}
	return resps, nil
}

// unique returns ids without duplicates, keeping the first occurrence order.
func unique(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// nonNil makes sure empty relations are encoded as `[]` instead of `null`.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
