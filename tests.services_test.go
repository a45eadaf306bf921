package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// TestLibraryService_BooksProjection ensures related rows are loaded once per relation.
func TestLibraryService_BooksProjection(t *testing.T) {
	storage, authors, books, _, loans := newMockStorage()
	books.ListFunc = func(_ context.Context, page Page) ([]Book, error) {
		return []Book{
			{ID: 1, Title: "A", AuthorID: 10},
			{ID: 2, Title: "B", AuthorID: 10},
			{ID: 3, Title: "C", AuthorID: 11},
		}, nil
	}
	var authorsCalls int
	var authorIDs []int64
	authors.GetManyFunc = func(_ context.Context, ids []int64) ([]Author, error) {
		authorsCalls++
		authorIDs = ids
		return []Author{{ID: 10, Name: "X"}, {ID: 11, Name: "Y"}}, nil
	}
	loans.ListByBooksFunc = func(_ context.Context, ids []int64) ([]Loan, error) {
		assert.Equal(t, []int64{1, 2, 3}, ids)
		return []Loan{{ID: 5, BookID: 2, BorrowerID: 1}}, nil
	}
	ls := NewLibraryService(zap.NewNop(), NewMockClocker(), storage, NewNopQueue())

	resps, err := ls.ListBooks(context.Background(), Page{Limit: 10})
	require.NoError(t, err)
	require.Len(t, resps, 3)
	assert.Equal(t, 1, authorsCalls)
	assert.Equal(t, []int64{10, 11}, authorIDs)
	assert.Equal(t, "X", resps[0].Author.Name)
	assert.Equal(t, "Y", resps[2].Author.Name)
	assert.Empty(t, resps[0].Loans)
	assert.NotNil(t, resps[0].Loans)
	require.Len(t, resps[1].Loans, 1)
	assert.Equal(t, int64(5), resps[1].Loans[0].ID)
}

func TestLibraryService_EmptyListing(t *testing.T) {
	storage, authors, _, _, _ := newMockStorage()
	authors.GetManyFunc = func(context.Context, []int64) ([]Author, error) {
		t.Fatal("no relation should be loaded for an empty page")
		return nil, nil
	}
	ls := NewLibraryService(zap.NewNop(), NewMockClocker(), storage, NewNopQueue())
	resps, err := ls.ListBooks(context.Background(), Page{Limit: 0})
	require.NoError(t, err)
	assert.NotNil(t, resps)
	assert.Empty(t, resps)
}

// TestLibraryService_UpdateBorrower ensures an empty partial update stores the record unchanged.
func TestLibraryService_UpdateBorrower(t *testing.T) {
	storage, _, _, borrowers, _ := newMockStorage()
	borrowers.GetOneFunc = func(_ context.Context, id int64) (Borrower, error) {
		return Borrower{ID: id, Name: "Same"}, nil
	}
	var stored Borrower
	borrowers.UpdateFunc = func(_ context.Context, b Borrower) (Borrower, error) {
		stored = b
		return b, nil
	}
	queue := NewMockQueuer()
	ls := NewLibraryService(zap.NewNop(), NewMockClocker(), storage, queue)

	resp, err := ls.UpdateBorrower(context.Background(), 3, BorrowerUpdate{})
	require.NoError(t, err)
	assert.Equal(t, Borrower{ID: 3, Name: "Same"}, stored)
	assert.Equal(t, "Same", resp.Name)

	events := queue.Events(UpdateQueue)
	require.Len(t, events, 1)
	assert.Equal(t, EntityBorrower, events[0].Entity)
	assert.Equal(t, UpdateQueue, events[0].Action)
	assert.Equal(t, NewMockClocker().Now(), events[0].At)
	assert.JSONEq(t, `{"id":3,"name":"Same"}`, string(events[0].Data))
}

// TestLibraryService_DeleteLoan ensures the returned projection is the one before deletion.
func TestLibraryService_DeleteLoan(t *testing.T) {
	storage, _, books, borrowers, loans := newMockStorage()
	loan := Loan{ID: 4, BookID: 1, BorrowerID: 2, ReturnDate: NewDate(2024, 6, 1)}
	loans.GetOneFunc = func(context.Context, int64) (Loan, error) { return loan, nil }
	books.GetManyFunc = func(context.Context, []int64) ([]Book, error) {
		return []Book{{ID: 1, Title: "Borrowed"}}, nil
	}
	borrowers.GetManyFunc = func(context.Context, []int64) ([]Borrower, error) {
		return []Borrower{{ID: 2, Name: "Reader"}}, nil
	}
	var deleted bool
	loans.DeleteFunc = func(_ context.Context, id int64) (Loan, error) {
		deleted = true
		return loan, nil
	}
	ls := NewLibraryService(zap.NewNop(), NewMockClocker(), storage, NewNopQueue())

	resp, err := ls.DeleteLoan(context.Background(), 4)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, loan, resp.Loan)
	require.NotNil(t, resp.Book)
	require.NotNil(t, resp.Borrower)
	assert.Equal(t, "Borrowed", resp.Book.Title)
	assert.Equal(t, "Reader", resp.Borrower.Name)
}

// TestLibraryService_PublishFailure ensures a failing queue never fails a write.
func TestLibraryService_PublishFailure(t *testing.T) {
	storage, authors, _, _, _ := newMockStorage()
	authors.AddFunc = func(_ context.Context, a Author) (Author, error) {
		a.ID = 1
		return a, nil
	}
	queue := NewMockQueuer()
	queue.err = errors.New("redis: connection refused")
	ls := NewLibraryService(zap.NewNop(), NewMockClocker(), storage, queue)

	resp, err := ls.CreateAuthor(context.Background(), AuthorCreate{Name: "Writer"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.ID)
	assert.Empty(t, resp.Books)
}

// TestLibraryService_AuthorCycle ensures embedded books never embed their author back.
func TestLibraryService_AuthorCycle(t *testing.T) {
	storage, authors, books, _, _ := newMockStorage()
	authors.GetOneFunc = func(_ context.Context, id int64) (Author, error) {
		return Author{ID: id, Name: "Self"}, nil
	}
	books.ListByAuthorsFunc = func(_ context.Context, ids []int64) ([]Book, error) {
		return []Book{{ID: 1, AuthorID: ids[0]}, {ID: 2, AuthorID: ids[0]}}, nil
	}
	ls := NewLibraryService(zap.NewNop(), NewMockClocker(), storage, NewNopQueue())
	resp, err := ls.GetAuthor(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, resp.Books, 2)
	assert.IsType(t, Book{}, resp.Books[0])
}
