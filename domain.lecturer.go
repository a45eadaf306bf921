package main

import (
	"sync"
)

// Lecturer is a record of the in-memory lecturers registry.
type Lecturer struct {
	Name   string `json:"name"`
	Course string `json:"course"`
	Salary int    `json:"salary"`
}

// LecturerCreate is the expected payload to register a lecturer.
type LecturerCreate struct {
	Name   string `json:"name"`
	Course string `json:"course"`
	Salary *int   `json:"salary"`
}

func (in LecturerCreate) Validate() error {
	if in.Name == "" {
		return missingFieldError("name")
	}
	if in.Course == "" {
		return missingFieldError("course")
	}
	if in.Salary == nil {
		return missingFieldError("salary")
	}
	return nil
}

func (in LecturerCreate) Lecturer() Lecturer {
	return Lecturer{Name: in.Name, Course: in.Course, Salary: *in.Salary}
}

// LecturerRegistry is a process lifetime store of lecturers keyed by id.
// It is safe for concurrent use.
type LecturerRegistry struct {
	mu        sync.RWMutex
	lecturers map[int]Lecturer
}

// NewLecturerRegistry provides a registry filled with the given lecturers.
func NewLecturerRegistry(seed map[int]Lecturer) *LecturerRegistry {
	lecturers := make(map[int]Lecturer, len(seed))
	for id, l := range seed {
		lecturers[id] = l
	}
	return &LecturerRegistry{lecturers: lecturers}
}

// DefaultLecturers returns the records the registry starts with.
func DefaultLecturers() map[int]Lecturer {
	return map[int]Lecturer{
		1: {Name: "Wesonga", Course: "IT", Salary: 99000},
		2: {Name: "Gavuna", Course: "Medicine", Salary: 100000},
		3: {Name: "Kabuye", Course: "Engineering", Salary: 110000},
	}
}

// List returns a snapshot of all registered lecturers.
func (lr *LecturerRegistry) List() map[int]Lecturer {
	lr.mu.RLock()
	defer lr.mu.RUnlock()
	out := make(map[int]Lecturer, len(lr.lecturers))
	for id, l := range lr.lecturers {
		out[id] = l
	}
	return out
}

func (lr *LecturerRegistry) Get(id int) (Lecturer, error) {
	lr.mu.RLock()
	defer lr.mu.RUnlock()
	l, ok := lr.lecturers[id]
	if !ok {
		return Lecturer{}, ErrLecturerNotFound
	}
	return l, nil
}

// Create registers l under id. The registry is left untouched if the id is taken.
func (lr *LecturerRegistry) Create(id int, l Lecturer) (Lecturer, error) {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	if lr.lecturers == nil {
		lr.lecturers = make(map[int]Lecturer)
	}
	if _, ok := lr.lecturers[id]; ok {
		return Lecturer{}, ErrLecturerAlreadyExists
	}
	lr.lecturers[id] = l
	return l, nil
}

func (lr *LecturerRegistry) Len() int {
	lr.mu.RLock()
	defer lr.mu.RUnlock()
	return len(lr.lecturers)
}

// Close drops every record. The registry can still be used afterwards and starts empty.
func (lr *LecturerRegistry) Close() {
	lr.mu.Lock()
	lr.lecturers = nil
	lr.mu.Unlock()
}
