package main

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// This file contains mocks definitions needed to perform unit tests.
// A storage mock without the function set returns empty results.

type MockAuthorStorage struct {
	ListFunc    func(ctx context.Context, page Page) ([]Author, error)
	GetOneFunc  func(ctx context.Context, id int64) (Author, error)
	GetManyFunc func(ctx context.Context, ids []int64) ([]Author, error)
	AddFunc     func(ctx context.Context, author Author) (Author, error)
	UpdateFunc  func(ctx context.Context, author Author) (Author, error)
	DeleteFunc  func(ctx context.Context, id int64) (Author, error)
}

func (m *MockAuthorStorage) List(ctx context.Context, page Page) ([]Author, error) {
	if m.ListFunc == nil {
		return []Author{}, nil
	}
	return m.ListFunc(ctx, page)
}

func (m *MockAuthorStorage) GetOne(ctx context.Context, id int64) (Author, error) {
	if m.GetOneFunc == nil {
		return Author{}, ErrNotFound
	}
	return m.GetOneFunc(ctx, id)
}

func (m *MockAuthorStorage) GetMany(ctx context.Context, ids []int64) ([]Author, error) {
	if m.GetManyFunc == nil {
		return []Author{}, nil
	}
	return m.GetManyFunc(ctx, ids)
}

func (m *MockAuthorStorage) Add(ctx context.Context, author Author) (Author, error) {
	return m.AddFunc(ctx, author)
}

func (m *MockAuthorStorage) Update(ctx context.Context, author Author) (Author, error) {
	return m.UpdateFunc(ctx, author)
}

func (m *MockAuthorStorage) Delete(ctx context.Context, id int64) (Author, error) {
	return m.DeleteFunc(ctx, id)
}

type MockBookStorage struct {
	ListFunc          func(ctx context.Context, page Page) ([]Book, error)
	FilterFunc        func(ctx context.Context, filter BookFilter) ([]Book, error)
	GetOneFunc        func(ctx context.Context, id int64) (Book, error)
	GetManyFunc       func(ctx context.Context, ids []int64) ([]Book, error)
	ListByAuthorsFunc func(ctx context.Context, authorIDs []int64) ([]Book, error)
	AddFunc           func(ctx context.Context, book Book) (Book, error)
	UpdateFunc        func(ctx context.Context, book Book) (Book, error)
	DeleteFunc        func(ctx context.Context, id int64) (Book, error)
}

func (m *MockBookStorage) List(ctx context.Context, page Page) ([]Book, error) {
	if m.ListFunc == nil {
		return []Book{}, nil
	}
	return m.ListFunc(ctx, page)
}

func (m *MockBookStorage) Filter(ctx context.Context, filter BookFilter) ([]Book, error) {
	if m.FilterFunc == nil {
		return []Book{}, nil
	}
	return m.FilterFunc(ctx, filter)
}

func (m *MockBookStorage) GetOne(ctx context.Context, id int64) (Book, error) {
	if m.GetOneFunc == nil {
		return Book{}, ErrNotFound
	}
	return m.GetOneFunc(ctx, id)
}

func (m *MockBookStorage) GetMany(ctx context.Context, ids []int64) ([]Book, error) {
	if m.GetManyFunc == nil {
		return []Book{}, nil
	}
	return m.GetManyFunc(ctx, ids)
}

func (m *MockBookStorage) ListByAuthors(ctx context.Context, authorIDs []int64) ([]Book, error) {
	if m.ListByAuthorsFunc == nil {
		return []Book{}, nil
	}
	return m.ListByAuthorsFunc(ctx, authorIDs)
}

func (m *MockBookStorage) Add(ctx context.Context, book Book) (Book, error) {
	return m.AddFunc(ctx, book)
}

func (m *MockBookStorage) Update(ctx context.Context, book Book) (Book, error) {
	return m.UpdateFunc(ctx, book)
}

func (m *MockBookStorage) Delete(ctx context.Context, id int64) (Book, error) {
	return m.DeleteFunc(ctx, id)
}

type MockBorrowerStorage struct {
	ListFunc    func(ctx context.Context, page Page) ([]Borrower, error)
	GetOneFunc  func(ctx context.Context, id int64) (Borrower, error)
	GetManyFunc func(ctx context.Context, ids []int64) ([]Borrower, error)
	AddFunc     func(ctx context.Context, borrower Borrower) (Borrower, error)
	UpdateFunc  func(ctx context.Context, borrower Borrower) (Borrower, error)
	DeleteFunc  func(ctx context.Context, id int64) (Borrower, error)
}

func (m *MockBorrowerStorage) List(ctx context.Context, page Page) ([]Borrower, error) {
	if m.ListFunc == nil {
		return []Borrower{}, nil
	}
	return m.ListFunc(ctx, page)
}

func (m *MockBorrowerStorage) GetOne(ctx context.Context, id int64) (Borrower, error) {
	if m.GetOneFunc == nil {
		return Borrower{}, ErrNotFound
	}
	return m.GetOneFunc(ctx, id)
}

func (m *MockBorrowerStorage) GetMany(ctx context.Context, ids []int64) ([]Borrower, error) {
	if m.GetManyFunc == nil {
		return []Borrower{}, nil
	}
	return m.GetManyFunc(ctx, ids)
}

func (m *MockBorrowerStorage) Add(ctx context.Context, borrower Borrower) (Borrower, error) {
	return m.AddFunc(ctx, borrower)
}

func (m *MockBorrowerStorage) Update(ctx context.Context, borrower Borrower) (Borrower, error) {
	return m.UpdateFunc(ctx, borrower)
}

func (m *MockBorrowerStorage) Delete(ctx context.Context, id int64) (Borrower, error) {
	return m.DeleteFunc(ctx, id)
}

type MockLoanStorage struct {
	ListFunc            func(ctx context.Context, page Page) ([]Loan, error)
	GetOneFunc          func(ctx context.Context, id int64) (Loan, error)
	ListByBooksFunc     func(ctx context.Context, bookIDs []int64) ([]Loan, error)
	ListByBorrowersFunc func(ctx context.Context, borrowerIDs []int64) ([]Loan, error)
	AddFunc             func(ctx context.Context, loan Loan) (Loan, error)
	UpdateFunc          func(ctx context.Context, loan Loan) (Loan, error)
	DeleteFunc          func(ctx context.Context, id int64) (Loan, error)
}

func (m *MockLoanStorage) List(ctx context.Context, page Page) ([]Loan, error) {
	if m.ListFunc == nil {
		return []Loan{}, nil
	}
	return m.ListFunc(ctx, page)
}

func (m *MockLoanStorage) GetOne(ctx context.Context, id int64) (Loan, error) {
	if m.GetOneFunc == nil {
		return Loan{}, ErrNotFound
	}
	return m.GetOneFunc(ctx, id)
}

func (m *MockLoanStorage) ListByBooks(ctx context.Context, bookIDs []int64) ([]Loan, error) {
	if m.ListByBooksFunc == nil {
		return []Loan{}, nil
	}
	return m.ListByBooksFunc(ctx, bookIDs)
}

func (m *MockLoanStorage) ListByBorrowers(ctx context.Context, borrowerIDs []int64) ([]Loan, error) {
	if m.ListByBorrowersFunc == nil {
		return []Loan{}, nil
	}
	return m.ListByBorrowersFunc(ctx, borrowerIDs)
}

func (m *MockLoanStorage) Add(ctx context.Context, loan Loan) (Loan, error) {
	return m.AddFunc(ctx, loan)
}

func (m *MockLoanStorage) Update(ctx context.Context, loan Loan) (Loan, error) {
	return m.UpdateFunc(ctx, loan)
}

func (m *MockLoanStorage) Delete(ctx context.Context, id int64) (Loan, error) {
	return m.DeleteFunc(ctx, id)
}

// newMockStorage groups empty storage mocks. Tests set the functions they need.
func newMockStorage() (*Storage, *MockAuthorStorage, *MockBookStorage, *MockBorrowerStorage, *MockLoanStorage) {
	authors, books, borrowers, loans := &MockAuthorStorage{}, &MockBookStorage{}, &MockBorrowerStorage{}, &MockLoanStorage{}
	return &Storage{Authors: authors, Books: books, Borrowers: borrowers, Loans: loans}, authors, books, borrowers, loans
}

// MockQueuer records every pushed event per queue id.
type MockQueuer struct {
	mu     sync.Mutex
	events map[string][]ChangeEvent
	err    error
}

func NewMockQueuer() *MockQueuer {
	return &MockQueuer{events: make(map[string][]ChangeEvent)}
}

func (mq *MockQueuer) Push(_ context.Context, qid string, event ChangeEvent) error {
	if mq.err != nil {
		return mq.err
	}
	mq.mu.Lock()
	mq.events[qid] = append(mq.events[qid], event)
	mq.mu.Unlock()
	return nil
}

func (mq *MockQueuer) Pop(ctx context.Context, _ ...string) (string, ChangeEvent, error) {
	<-ctx.Done()
	return "", ChangeEvent{}, ctx.Err()
}

func (mq *MockQueuer) Events(qid string) []ChangeEvent {
	mq.mu.Lock()
	defer mq.mu.Unlock()
	return mq.events[qid]
}

// MockJournalStorage serves predefined journal entries.
type MockJournalStorage struct {
	entries []JournalEntry
	err     error
}

func (mj *MockJournalStorage) Append(_ context.Context, event ChangeEvent) (uint64, error) {
	seq := uint64(len(mj.entries) + 1)
	mj.entries = append(mj.entries, JournalEntry{Seq: seq, ChangeEvent: event})
	return seq, nil
}

func (mj *MockJournalStorage) Latest(_ context.Context, limit int) ([]JournalEntry, error) {
	if mj.err != nil {
		return nil, mj.err
	}
	entries := []JournalEntry{}
	for i := len(mj.entries) - 1; i >= 0 && len(entries) < limit; i-- {
		entries = append(entries, mj.entries[i])
	}
	return entries, nil
}

// MockClocker implements a fake Clocker.
type MockClocker struct {
	MockNow time.Time
}

// NewMockClocker returns a mocked instance with fixed time.
func NewMockClocker() *MockClocker {
	return &MockClocker{time.Date(2023, 0o7, 0o2, 0o0, 0o0, 0o0, 0o00000000, time.UTC)}
}

// Now returns an already defined time to be used as mock. This
// equals to `Sun, 02 Jul 2023 00:00:00 UTC` in time.RFC1123 format.
func (mck *MockClocker) Now() time.Time {
	return mck.MockNow
}

// MockUIDHandler implements a fake UIDHandler.
type MockUIDHandler struct {
	MockedUID string
	Valid     bool
}

// NewMockUIDHandler returns a mocked instance with predictable id.
func NewMockUIDHandler(id string, valid bool) *MockUIDHandler {
	return &MockUIDHandler{MockedUID: id, Valid: valid}
}

// Generate constructs a predictable id to be used as mock.
func (muid *MockUIDHandler) Generate(prefix string) string {
	return prefix + ":" + muid.MockedUID
}

// IsValid mocks IsValid behavior by providing configured status.
func (muid *MockUIDHandler) IsValid(_, _ string) bool {
	return muid.Valid
}

// testConfig returns the settings used by the handlers tests.
func testConfig() *Config {
	return &Config{
		OpsEndpointsEnable: true,
		Library:            LibraryConfig{DefaultLimit: 100, MaxLimit: 1000},
		Journal:            JournalConfig{DefaultLimit: 50},
		Lecturers:          LecturersConfig{Enable: true},
	}
}

// newTestAPIHandler builds an api handler backed by the library service over storage.
func newTestAPIHandler(storage *Storage, queue Queuer, journal JournalStorage) *APIHandler {
	clock := NewMockClocker()
	if queue == nil {
		queue = NewNopQueue()
	}
	ls := NewLibraryService(zap.NewNop(), clock, storage, queue)
	return NewAPIHandler(
		zap.NewNop(),
		testConfig(),
		&Statistics{started: clock.Now()},
		clock,
		NewMockUIDHandler("test", false),
		ls,
		NewLecturerRegistry(DefaultLecturers()),
		journal,
		nil,
	)
}
