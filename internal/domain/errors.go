package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a domain failure so the HTTP layer can map it to one status code.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindUnauthorized
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is a failure whose Message is safe to show to clients.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Validation builds a 400-class error with the given message.
func Validation(msg string) *Error { return newError(KindValidation, msg) }

// MissingFields builds the validation error used when required body fields are absent.
func MissingFields(fields ...string) *Error {
	return Validation("Missing required fields: " + strings.Join(fields, ", "))
}

// Action names the mutation attempted on a guarded resource.
type Action string

const (
	ActionUpdate Action = "Updating"
	ActionDelete Action = "Deleting"
)

// ForbiddenError is returned when the requester is neither owner nor admin.
type ForbiddenError struct {
	Action   Action
	Resource string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("%s %s is forbidden", e.Action, e.Resource)
}

var (
	ErrTaskNotFound = newError(KindNotFound, "Task not found")
	ErrNotOwner     = newError(KindUnauthorized, "Task not related to user")
	ErrTaskTooDeep  = newError(KindValidation, "Subtasks are nested too deeply")

	ErrCategoryNotFound = newError(KindNotFound, "Category not found")
	ErrCategoryExists   = newError(KindConflict, "Such category already exist")
	ErrCategoryInUse    = newError(KindConflict, "Category cant be delete because it has related tasks")

	ErrCommentNotFound = newError(KindNotFound, "Comment not found")

	ErrBusinessNotFound   = newError(KindNotFound, "Business not found")
	ErrBusinessEmailTaken = newError(KindConflict, "Business with this email already exists")

	ErrUserNotFound       = newError(KindNotFound, "User not found")
	ErrRoleNotFound       = newError(KindNotFound, "Role not found")
	ErrEmailInUse         = newError(KindConflict, "Email already in use")
	ErrInvalidCredentials = newError(KindUnauthorized, "Invalid username or password")
	ErrInvalidPassword    = newError(KindUnauthorized, "Invalid password")
	ErrInvalidToken       = newError(KindUnauthorized, "Invalid or expired token.")
)

// KindOf reports the Kind carried by err. Guard failures are Unauthorized;
// anything unrecognized is Internal.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	var fe *ForbiddenError
	if errors.As(err, &fe) {
		return KindUnauthorized
	}
	return KindInternal
}
