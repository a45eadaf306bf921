package main

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_JSON(t *testing.T) {
	var in BookUpdate
	require.NoError(t, json.Unmarshal([]byte(`{"publication_date":"2020-02-29"}`), &in))
	require.NotNil(t, in.PublicationDate)
	assert.Equal(t, NewDate(2020, time.February, 29), *in.PublicationDate)

	var out BookCreate
	require.NoError(t, json.Unmarshal([]byte(`{"publication_date":null}`), &out))
	assert.True(t, out.PublicationDate.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`{"publication_date":"2020-02-30"}`), &out))

	data, err := json.Marshal(Loan{ID: 1, ReturnDate: NewDate(2024, time.December, 1)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"book_id":0,"borrower_id":0,"return_date":"2024-12-01"}`, string(data))
}

// TestDate_Scan ensures both drivers date representations are read.
func TestDate_Scan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2021, 3, 4, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2021-03-04", d.String())
	require.NoError(t, d.Scan([]byte("2021-03-05")))
	assert.Equal(t, "2021-03-05", d.String())
	require.NoError(t, d.Scan("2021-03-06T00:00:00Z"))
	assert.Equal(t, "2021-03-06", d.String())
	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())
	assert.Error(t, d.Scan(42))

	v, err := NewDate(2021, 3, 7).Value()
	require.NoError(t, err)
	assert.Equal(t, "2021-03-07", v)
}

func TestPayloadsValidate(t *testing.T) {
	blank := "  "
	negative := int64(-1)
	tests := []struct {
		name string
		in   validator
		err  string
	}{
		{"author create ok", AuthorCreate{Name: "A"}, ""},
		{"author create blank", AuthorCreate{Name: blank}, "name is required"},
		{"author update empty", AuthorUpdate{}, ""},
		{"author update blank", AuthorUpdate{Name: &blank}, "name is not valid"},
		{"book create blank title", BookCreate{Title: blank, PublicationDate: NewDate(2000, 1, 1), AuthorID: 1}, "title is required"},
		{"book update blank title", BookUpdate{Title: &blank}, "title is not valid"},
		{"book create negative author", BookCreate{Title: "T", PublicationDate: NewDate(2000, 1, 1), AuthorID: -2}, "author_id is not valid"},
		{"book update negative author", BookUpdate{AuthorID: &negative}, "author_id is not valid"},
		{"borrower create blank", BorrowerCreate{}, "name is required"},
		{"borrower update empty", BorrowerUpdate{}, ""},
		{"borrower update blank", BorrowerUpdate{Name: &blank}, "name is not valid"},
		{"loan create missing book", LoanCreate{BorrowerID: 1, ReturnDate: NewDate(2000, 1, 1)}, "book_id is required"},
		{"loan create missing borrower", LoanCreate{BookID: 1, ReturnDate: NewDate(2000, 1, 1)}, "borrower_id is required"},
		{"loan update empty", LoanUpdate{}, ""},
		{"lecturer missing course", LecturerCreate{Name: "N"}, "course is required"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.in.Validate()
			if tc.err == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tc.err)
		})
	}
}

func TestBookUpdate_Apply(t *testing.T) {
	book := Book{ID: 1, Title: "Old", PublicationDate: NewDate(1990, 1, 1), AuthorID: 3}
	BookUpdate{}.Apply(&book)
	assert.Equal(t, Book{ID: 1, Title: "Old", PublicationDate: NewDate(1990, 1, 1), AuthorID: 3}, book)

	title, author := "New", int64(4)
	BookUpdate{Title: &title, AuthorID: &author}.Apply(&book)
	assert.Equal(t, Book{ID: 1, Title: "New", PublicationDate: NewDate(1990, 1, 1), AuthorID: 4}, book)
}
