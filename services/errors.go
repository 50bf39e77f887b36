package services

import (
	"errors"

	"trxflow/models"
)

// Kind classifies a failure the caller can act on.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindPermission
	KindNotFound
	KindConflict
	KindDuplicate
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindPermission:
		return "permission"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindDuplicate:
		return "duplicate"
	default:
		return "unknown"
	}
}

// Error is returned for every rejected operation. Status is set on conflicts
// and holds the record's status at the time of the check.
type Error struct {
	Kind    Kind
	Message string
	Status  models.TransactionStatus
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches on Kind so callers can write errors.Is(err, services.ErrConflict).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

var (
	ErrValidation = &Error{Kind: KindValidation}
	ErrPermission = &Error{Kind: KindPermission}
	ErrNotFound   = &Error{Kind: KindNotFound}
	ErrConflict   = &Error{Kind: KindConflict}
	ErrDuplicate  = &Error{Kind: KindDuplicate}

	ErrTransactionNotFound = &Error{Kind: KindNotFound, Message: "transaction not found"}
)

// KindOf returns the Kind of err, or 0 when err is not a *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func validationError(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

func permissionError(msg string) error {
	return &Error{Kind: KindPermission, Message: msg}
}

func conflictError(msg string, current models.TransactionStatus) error {
	return &Error{Kind: KindConflict, Message: msg + "; current status: " + string(current), Status: current}
}

func duplicateError(msg string) error {
	return &Error{Kind: KindDuplicate, Message: msg}
}
