package domain

import (
	"errors"
	"fmt"
)

// ErrorKind identifies which rule rejected an operation.
type ErrorKind int

const (
	// KindAlreadyExists: a beer with the same name is already stored.
	KindAlreadyExists ErrorKind = iota + 1
	// KindNotFound: no beer matches the given id or name.
	KindNotFound
	// KindExceedsCapacity: a restock would push quantity above max.
	KindExceedsCapacity
	// KindInsufficientStock: a consumption would push quantity below zero.
	KindInsufficientStock
)

func (k ErrorKind) String() string {
	switch k {
	case KindAlreadyExists:
		return "already_exists"
	case KindNotFound:
		return "not_found"
	case KindExceedsCapacity:
		return "exceeds_capacity"
	case KindInsufficientStock:
		return "insufficient_stock"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by the inventory core. Only the
// fields relevant to Kind are populated: Name for AlreadyExists and
// NotFound-by-name, ID for NotFound-by-id, Available for the two stock kinds.
type Error struct {
	Kind      ErrorKind
	Name      string
	ID        string
	Available int
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindAlreadyExists:
		return fmt.Sprintf("a beer already exists with name %s", e.Name)
	case KindNotFound:
		if e.ID != "" {
			return fmt.Sprintf("invalid id %s", e.ID)
		}
		return fmt.Sprintf("invalid name %s", e.Name)
	case KindExceedsCapacity:
		return fmt.Sprintf("space available for %d beer(s)", e.Available)
	case KindInsufficientStock:
		return fmt.Sprintf("only available %d beer(s)", e.Available)
	default:
		return "unknown inventory error"
	}
}

// Is matches any *Error of the same kind, so the sentinels below work with
// errors.Is regardless of payload.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

var (
	ErrAlreadyExists     = &Error{Kind: KindAlreadyExists}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrExceedsCapacity   = &Error{Kind: KindExceedsCapacity}
	ErrInsufficientStock = &Error{Kind: KindInsufficientStock}
)

func AlreadyExists(name string) *Error {
	return &Error{Kind: KindAlreadyExists, Name: name}
}

func NotFoundID(id string) *Error {
	return &Error{Kind: KindNotFound, ID: id}
}

func NotFoundName(name string) *Error {
	return &Error{Kind: KindNotFound, Name: name}
}

func ExceedsCapacity(available int) *Error {
	return &Error{Kind: KindExceedsCapacity, Available: available}
}

func InsufficientStock(available int) *Error {
	return &Error{Kind: KindInsufficientStock, Available: available}
}

// AsError extracts the domain error from an error chain, or nil.
func AsError(err error) *Error {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}
