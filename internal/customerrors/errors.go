package customerrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error so the request boundary can decide how to surface it.
type Kind int

const (
	Internal Kind = iota
	Validation
	Duplicate
	Auth
	Permission
	NotFound
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case Duplicate:
		return "duplicate"
	case Auth:
		return "auth"
	case Permission:
		return "permission"
	case NotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Error is an application error carrying a user-facing message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrUsernameTaken      = &Error{Kind: Duplicate, Message: "a user with this username already exists"}
	ErrEmailTaken         = &Error{Kind: Duplicate, Message: "a user with this email already exists"}
	ErrDuplicateUser      = &Error{Kind: Duplicate, Message: "username or email already exists"}
	ErrInvalidCredentials = &Error{Kind: Auth, Message: "invalid username or password"}
	ErrLoginRequired      = &Error{Kind: Permission, Message: "please log in to continue"}
	ErrNotOwner           = &Error{Kind: Permission, Message: "only the owner can change this listing"}
	ErrUserNotFound       = &Error{Kind: NotFound, Message: "user not found"}
	ErrListingNotFound    = &Error{Kind: NotFound, Message: "listing not found"}
	ErrCategoryNotFound   = &Error{Kind: NotFound, Message: "category not found"}
)

// Validationf builds a Validation error with a formatted message.
func Validationf(format string, args ...interface{}) *Error {
	return &Error{Kind: Validation, Message: fmt.Sprintf(format, args...)}
}

// KindOf reports the Kind of err, looking through wrapped errors.
// Errors that are not *Error are Internal.
func KindOf(err error) Kind {
	var customErr *Error
	if errors.As(err, &customErr) {
		return customErr.Kind
	}
	return Internal
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message returns the user-facing message for err. Internal errors get a
// generic message so that storage details never reach a page.
func Message(err error) string {
	var customErr *Error
	if errors.As(err, &customErr) {
		return customErr.Message
	}
	return "something went wrong, please try again"
}
