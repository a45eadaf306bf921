package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Entity names used for journaling.
const (
	EntityAuthor   = "author"
	EntityBook     = "book"
	EntityBorrower = "borrower"
	EntityLoan     = "loan"
)

type LibraryServiceProvider interface {
	ListAuthors(ctx context.Context, page Page) ([]AuthorResponse, error)
	GetAuthor(ctx context.Context, id int64) (AuthorResponse, error)
	CreateAuthor(ctx context.Context, in AuthorCreate) (AuthorResponse, error)
	UpdateAuthor(ctx context.Context, id int64, in AuthorUpdate) (AuthorResponse, error)
	DeleteAuthor(ctx context.Context, id int64) (AuthorResponse, error)

	ListBooks(ctx context.Context, page Page) ([]BookResponse, error)
	FilterBooks(ctx context.Context, filter BookFilter) ([]BookResponse, error)
	GetBook(ctx context.Context, id int64) (BookResponse, error)
	CreateBook(ctx context.Context, in BookCreate) (BookResponse, error)
	UpdateBook(ctx context.Context, id int64, in BookUpdate) (BookResponse, error)
	DeleteBook(ctx context.Context, id int64) (BookResponse, error)

	ListBorrowers(ctx context.Context, page Page) ([]BorrowerResponse, error)
	GetBorrower(ctx context.Context, id int64) (BorrowerResponse, error)
	CreateBorrower(ctx context.Context, in BorrowerCreate) (BorrowerResponse, error)
	UpdateBorrower(ctx context.Context, id int64, in BorrowerUpdate) (BorrowerResponse, error)
	DeleteBorrower(ctx context.Context, id int64) (BorrowerResponse, error)

	ListLoans(ctx context.Context, page Page) ([]LoanResponse, error)
	GetLoan(ctx context.Context, id int64) (LoanResponse, error)
	CreateLoan(ctx context.Context, in LoanCreate) (LoanResponse, error)
	UpdateLoan(ctx context.Context, id int64, in LoanUpdate) (LoanResponse, error)
	DeleteLoan(ctx context.Context, id int64) (LoanResponse, error)
}

type LibraryService struct {
	logger  *zap.Logger
	clock   Clocker
	storage *Storage
	queue   Queuer
}

func NewLibraryService(logger *zap.Logger, clock Clocker, storage *Storage, queue Queuer) LibraryServiceProvider {
	return &LibraryService{
		logger:  logger,
		clock:   clock,
		storage: storage,
		queue:   queue,
	}
}

// publish pushes a change event to the journal queue. A failure
// is logged only since the write already succeeded in storage.
func (ls *LibraryService) publish(ctx context.Context, qid, entity string, id int64, data interface{}) {
	event, err := NewChangeEvent(entity, qid, id, data, ls.clock.Now())
	if err == nil {
		err = ls.queue.Push(ctx, qid, event)
	}
	if err != nil {
		ls.logger.Error("service: failed to push change event to queue",
			zap.String("qid", qid),
			zap.String("entity", entity),
			zap.Int64("entity.id", id),
			zap.Error(err),
		)
	}
}

func (ls *LibraryService) ListAuthors(ctx context.Context, page Page) ([]AuthorResponse, error) {
	authors, err := ls.storage.Authors.List(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list authors: %w", err)
	}
	return ls.authorsProjection(ctx, authors)
}

func (ls *LibraryService) GetAuthor(ctx context.Context, id int64) (AuthorResponse, error) {
	author, err := ls.storage.Authors.GetOne(ctx, id)
	if err != nil {
		return AuthorResponse{}, err
	}
	return ls.authorProjection(ctx, author)
}

func (ls *LibraryService) CreateAuthor(ctx context.Context, in AuthorCreate) (AuthorResponse, error) {
	author, err := ls.storage.Authors.Add(ctx, in.Author())
	if err != nil {
		return AuthorResponse{}, err
	}
	ls.publish(ctx, CreateQueue, EntityAuthor, author.ID, author)
	return AuthorResponse{Author: author, Books: []Book{}}, nil
}

func (ls *LibraryService) UpdateAuthor(ctx context.Context, id int64, in AuthorUpdate) (AuthorResponse, error) {
	author, err := ls.storage.Authors.GetOne(ctx, id)
	if err != nil {
		return AuthorResponse{}, err
	}
	in.Apply(&author)
	author, err = ls.storage.Authors.Update(ctx, author)
	if err != nil {
		return AuthorResponse{}, err
	}
	ls.publish(ctx, UpdateQueue, EntityAuthor, author.ID, author)
	return ls.authorProjection(ctx, author)
}

func (ls *LibraryService) DeleteAuthor(ctx context.Context, id int64) (AuthorResponse, error) {
	resp, err := ls.GetAuthor(ctx, id)
	if err != nil {
		return resp, err
	}
	if _, err = ls.storage.Authors.Delete(ctx, id); err != nil {
		return AuthorResponse{}, err
	}
	ls.publish(ctx, DeleteQueue, EntityAuthor, id, resp.Author)
	return resp, nil
}

func (ls *LibraryService) ListBooks(ctx context.Context, page Page) ([]BookResponse, error) {
	books, err := ls.storage.Books.List(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	return ls.booksProjection(ctx, books)
}

func (ls *LibraryService) FilterBooks(ctx context.Context, filter BookFilter) ([]BookResponse, error) {
	books, err := ls.storage.Books.Filter(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to filter books: %w", err)
	}
	return ls.booksProjection(ctx, books)
}

func (ls *LibraryService) GetBook(ctx context.Context, id int64) (BookResponse, error) {
	book, err := ls.storage.Books.GetOne(ctx, id)
	if err != nil {
		return BookResponse{}, err
	}
	return ls.bookProjection(ctx, book)
}

func (ls *LibraryService) CreateBook(ctx context.Context, in BookCreate) (BookResponse, error) {
	book, err := ls.storage.Books.Add(ctx, in.Book())
	if err != nil {
		return BookResponse{}, err
	}
	ls.publish(ctx, CreateQueue, EntityBook, book.ID, book)
	return ls.bookProjection(ctx, book)
}

func (ls *LibraryService) UpdateBook(ctx context.Context, id int64, in BookUpdate) (BookResponse, error) {
	book, err := ls.storage.Books.GetOne(ctx, id)
	if err != nil {
		return BookResponse{}, err
	}
	in.Apply(&book)
	book, err = ls.storage.Books.Update(ctx, book)
	if err != nil {
		return BookResponse{}, err
	}
	ls.publish(ctx, UpdateQueue, EntityBook, book.ID, book)
	return ls.bookProjection(ctx, book)
}

func (ls *LibraryService) DeleteBook(ctx context.Context, id int64) (BookResponse, error) {
	resp, err := ls.GetBook(ctx, id)
	if err != nil {
		return resp, err
	}
	if _, err = ls.storage.Books.Delete(ctx, id); err != nil {
		return BookResponse{}, err
	}
	ls.publish(ctx, DeleteQueue, EntityBook, id, resp.Book)
	return resp, nil
}

func (ls *LibraryService) ListBorrowers(ctx context.Context, page Page) ([]BorrowerResponse, error) {
	borrowers, err := ls.storage.Borrowers.List(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list borrowers: %w", err)
	}
	return ls.borrowersProjection(ctx, borrowers)
}

func (ls *LibraryService) GetBorrower(ctx context.Context, id int64) (BorrowerResponse, error) {
	borrower, err := ls.storage.Borrowers.GetOne(ctx, id)
	if err != nil {
		return BorrowerResponse{}, err
	}
	return ls.borrowerProjection(ctx, borrower)
}

func (ls *LibraryService) CreateBorrower(ctx context.Context, in BorrowerCreate) (BorrowerResponse, error) {
	borrower, err := ls.storage.Borrowers.Add(ctx, in.Borrower())
	if err != nil {
		return BorrowerResponse{}, err
	}
	ls.publish(ctx, CreateQueue, EntityBorrower, borrower.ID, borrower)
	return BorrowerResponse{Borrower: borrower, Loans: []Loan{}}, nil
}

func (ls *LibraryService) UpdateBorrower(ctx context.Context, id int64, in BorrowerUpdate) (BorrowerResponse, error) {
	borrower, err := ls.storage.Borrowers.GetOne(ctx, id)
	if err != nil {
		return BorrowerResponse{}, err
	}
	in.Apply(&borrower)
	borrower, err = ls.storage.Borrowers.Update(ctx, borrower)
	if err != nil {
		return BorrowerResponse{}, err
	}
	ls.publish(ctx, UpdateQueue, EntityBorrower, borrower.ID, borrower)
	return ls.borrowerProjection(ctx, borrower)
}

func (ls *LibraryService) DeleteBorrower(ctx context.Context, id int64) (BorrowerResponse, error) {
	resp, err := ls.GetBorrower(ctx, id)
	if err != nil {
		return resp, err
	}
	if _, err = ls.storage.Borrowers.Delete(ctx, id); err != nil {
		return BorrowerResponse{}, err
	}
	ls.publish(ctx, DeleteQueue, EntityBorrower, id, resp.Borrower)
	return resp, nil
}

func (ls *LibraryService) ListLoans(ctx context.Context, page Page) ([]LoanResponse, error) {
	loans, err := ls.storage.Loans.List(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	return ls.loansProjection(ctx, loans)
}

func (ls *LibraryService) GetLoan(ctx context.Context, id int64) (LoanResponse, error) {
	loan, err := ls.storage.Loans.GetOne(ctx, id)
	if err != nil {
		return LoanResponse{}, err
	}
	return ls.loanProjection(ctx, loan)
}

func (ls *LibraryService) CreateLoan(ctx context.Context, in LoanCreate) (LoanResponse, error) {
	loan, err := ls.storage.Loans.Add(ctx, in.Loan())
	if err != nil {
		return LoanResponse{}, err
	}
	ls.publish(ctx, CreateQueue, EntityLoan, loan.ID, loan)
	return ls.loanProjection(ctx, loan)
}

func (ls *LibraryService) UpdateLoan(ctx context.Context, id int64, in LoanUpdate) (LoanResponse, error) {
	loan, err := ls.storage.Loans.GetOne(ctx, id)
	if err != nil {
		return LoanResponse{}, err
	}
	in.Apply(&loan)
	loan, err = ls.storage.Loans.Update(ctx, loan)
	if err != nil {
		return LoanResponse{}, err
	}
	ls.publish(ctx, UpdateQueue, EntityLoan, loan.ID, loan)
	return ls.loanProjection(ctx, loan)
}

func (ls *LibraryService) DeleteLoan(ctx context.Context, id int64) (LoanResponse, error) {
	resp, err := ls.GetLoan(ctx, id)
	if err != nil {
		return resp, err
	}
	if _, err = ls.storage.Loans.Delete(ctx, id); err != nil {
		return LoanResponse{}, err
	}
	ls.publish(ctx, DeleteQueue, EntityLoan, id, resp.Loan)
	return resp, nil
}
