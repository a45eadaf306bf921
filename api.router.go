package main

import (
	"github.com/julienschmidt/httprouter"
)

// MiddlewareMap contains the middlewares chains to use for the
// library, the lecturers and the ops requests.
type MiddlewareMap struct {
	public    func(httprouter.Handle) httprouter.Handle
	lecturers func(httprouter.Handle) httprouter.Handle
	ops       func(httprouter.Handle) httprouter.Handle
}

// NewMiddlewareMap builds the chains map from the middlewares stacks.
func NewMiddlewareMap(public, lecturers, ops *Middlewares) *MiddlewareMap {
	return &MiddlewareMap{
		public:    public.Chain,
		lecturers: lecturers.Chain,
		ops:       ops.Chain,
	}
}
