package store

import (
	"errors"
	"net/http"
)

// Sentinel errors, matched with errors.Is.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

// NotFoundError names the missing resource.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }
func (e *NotFoundError) StatusCode() int { return http.StatusNotFound }
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ConflictError reports a uniqueness clash, e.g. a duplicate slug.
type ConflictError struct {
	Message    string
	ResourceID string
}

func (e *ConflictError) Error() string { return e.Message }
func (e *ConflictError) StatusCode() int { return http.StatusConflict }
func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

func notFound(msg string) error { return &NotFoundError{Message: msg} }
