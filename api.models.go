package main

import (
	"strings"
)

// AuthorCreate is the payload accepted to create an author.
type AuthorCreate struct {
	Name string `json:"name"`
}

// AuthorUpdate is the payload accepted to partially update an author.
// A nil field means the stored value is kept.
type AuthorUpdate struct {
	Name *string `json:"name"`
}

// BookCreate is the payload accepted to create a book.
type BookCreate struct {
	Title           string `json:"title"`
	PublicationDate Date   `json:"publication_date" swaggertype:"string" format:"date" example:"2020-01-01"`
	AuthorID        int64  `json:"author_id"`
}

// BookUpdate is the payload accepted to partially update a book.
type BookUpdate struct {
	Title           *string `json:"title"`
	PublicationDate *Date   `json:"publication_date" swaggertype:"string" format:"date" example:"2020-01-01"`
	AuthorID        *int64  `json:"author_id"`
}

// BorrowerCreate is the payload accepted to create a borrower.
type BorrowerCreate struct {
	Name string `json:"name"`
}

// BorrowerUpdate is the payload accepted to partially update a borrower.
type BorrowerUpdate struct {
	Name *string `json:"name"`
}

// LoanCreate is the payload accepted to create a loan.
type LoanCreate struct {
	BookID     int64 `json:"book_id"`
	BorrowerID int64 `json:"borrower_id"`
	ReturnDate Date  `json:"return_date" swaggertype:"string" format:"date" example:"2020-01-01"`
}

// LoanUpdate is the payload accepted to partially update a loan.
type LoanUpdate struct {
	BookID     *int64 `json:"book_id"`
	BorrowerID *int64 `json:"borrower_id"`
	ReturnDate *Date  `json:"return_date" swaggertype:"string" format:"date" example:"2020-01-01"`
}

// AuthorResponse is the author projection with its books embedded.
type AuthorResponse struct {
	Author
	Books []Book `json:"books"`
}

// BookResponse is the book projection with its author and loans embedded.
type BookResponse struct {
	Book
	Author *Author `json:"author"`
	Loans  []Loan  `json:"loans"`
}

// BorrowerResponse is the borrower projection with its loans embedded.
type BorrowerResponse struct {
	Borrower
	Loans []Loan `json:"loans"`
}

// LoanResponse is the loan projection with its book and borrower embedded.
type LoanResponse struct {
	Loan
	Book     *Book     `json:"book"`
	Borrower *Borrower `json:"borrower"`
}

func (in AuthorCreate) Validate() error {
	if len(strings.TrimSpace(in.Name)) == 0 {
		return missingFieldError("name")
	}
	return nil
}

func (in AuthorCreate) Author() Author {
	return Author{Name: in.Name}
}

func (in AuthorUpdate) Validate() error {
	if in.Name != nil && len(strings.TrimSpace(*in.Name)) == 0 {
		return invalidFieldError("name")
	}
	return nil
}

// Apply overwrites the author fields provided in the payload.
func (in AuthorUpdate) Apply(a *Author) {
	if in.Name != nil {
		a.Name = *in.Name
	}
}

func (in BookCreate) Validate() error {
	if len(strings.TrimSpace(in.Title)) == 0 {
		return missingFieldError("title")
	}
	if in.PublicationDate.IsZero() {
		return missingFieldError("publication_date")
	}
	if in.AuthorID == 0 {
		return missingFieldError("author_id")
	}
	if in.AuthorID < 0 {
		return invalidFieldError("author_id")
	}
	return nil
}

func (in BookCreate) Book() Book {
	return Book{Title: in.Title, PublicationDate: in.PublicationDate, AuthorID: in.AuthorID}
}

func (in BookUpdate) Validate() error {
	if in.Title != nil && len(strings.TrimSpace(*in.Title)) == 0 {
		return invalidFieldError("title")
	}
	if in.PublicationDate != nil && in.PublicationDate.IsZero() {
		return invalidFieldError("publication_date")
	}
	if in.AuthorID != nil && *in.AuthorID < 1 {
		return invalidFieldError("author_id")
	}
	return nil
}

// Apply overwrites the book fields provided in the payload.
func (in BookUpdate) Apply(b *Book) {
	if in.Title != nil {
		b.Title = *in.Title
	}
	if in.PublicationDate != nil {
		b.PublicationDate = *in.PublicationDate
	}
	if in.AuthorID != nil {
		b.AuthorID = *in.AuthorID
	}
}

func (in BorrowerCreate) Validate() error {
	if len(strings.TrimSpace(in.Name)) == 0 {
		return missingFieldError("name")
	}
	return nil
}

func (in BorrowerCreate) Borrower() Borrower {
	return Borrower{Name: in.Name}
}

func (in BorrowerUpdate) Validate() error {
	if in.Name != nil && len(strings.TrimSpace(*in.Name)) == 0 {
		return invalidFieldError("name")
	}
	return nil
}

// Apply overwrites the borrower fields provided in the payload.
func (in BorrowerUpdate) Apply(b *Borrower) {
	if in.Name != nil {
		b.Name = *in.Name
	}
}

func (in LoanCreate) Validate() error {
	if in.BookID == 0 {
		return missingFieldError("book_id")
	}
	if in.BookID < 0 {
		return invalidFieldError("book_id")
	}
	if in.BorrowerID == 0 {
		return missingFieldError("borrower_id")
	}
	if in.BorrowerID < 0 {
		return invalidFieldError("borrower_id")
	}
	if in.ReturnDate.IsZero() {
		return missingFieldError("return_date")
	}
	return nil
}

func (in LoanCreate) Loan() Loan {
	return Loan{BookID: in.BookID, BorrowerID: in.BorrowerID, ReturnDate: in.ReturnDate}
}

func (in LoanUpdate) Validate() error {
	if in.BookID != nil && *in.BookID < 1 {
		return invalidFieldError("book_id")
	}
	if in.BorrowerID != nil && *in.BorrowerID < 1 {
		return invalidFieldError("borrower_id")
	}
	if in.ReturnDate != nil && in.ReturnDate.IsZero() {
		return invalidFieldError("return_date")
	}
	return nil
}

// Apply overwrites the loan fields provided in the payload.
func (in LoanUpdate) Apply(l *Loan) {
	if in.BookID != nil {
		l.BookID = *in.BookID
	}
	if in.BorrowerID != nil {
		l.BorrowerID = *in.BorrowerID
	}
	if in.ReturnDate != nil {
		l.ReturnDate = *in.ReturnDate
	}
}
