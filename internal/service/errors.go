// Package service holds the business rules of the application. Handlers only
// translate between HTTP and the methods defined here.
package service

import (
	"errors"
	"net/http"
	"unicode"
	"unicode/utf8"
)

// Kind classifies every error a service returns to its caller
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindQuotaExceeded
	KindConflict
)

func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation, KindQuotaExceeded, KindConflict:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	}

	return http.StatusInternalServerError
}

// Error is an error whose message is safe to show to the client
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrEmailTaken         = &Error{KindConflict, "Email already in use"}
	ErrInvalidCredentials = &Error{KindUnauthenticated, "Invalid email or password"}
	ErrAccountBlocked     = &Error{KindForbidden, "Your account has been blocked"}
	ErrUnauthenticated    = &Error{KindUnauthenticated, "Authentication required"}
	ErrForbidden          = &Error{KindForbidden, "You don't have access to this resource"}
	ErrRegistrationClosed = &Error{KindForbidden, "Registration is disabled"}
	ErrSelfAction         = &Error{KindForbidden, "You can't do this to your own account"}
	ErrNotFound           = &Error{KindNotFound, "Not found"}
	ErrInvalidToken       = &Error{KindNotFound, "Token is invalid or expired"}
	ErrParentNotFound     = &Error{KindNotFound, "Parent folder not found"}
	ErrNotAFolder         = &Error{KindValidation, "Parent is not a folder"}
	ErrDuplicateName      = &Error{KindConflict, "A folder with this name already exists"}
	ErrQuotaExceeded      = &Error{KindQuotaExceeded, "Storage quota exceeded"}
	ErrFileTooLarge       = &Error{KindValidation, "File exceeds the maximum upload size"}
	ErrIsAFolder          = &Error{KindValidation, "Folders can't be downloaded"}
	ErrNotFoundOnDisk     = &Error{KindNotFound, "File not found on disk"}
	ErrPasswordRequired   = &Error{KindUnauthenticated, "Password required"}
	ErrInvalidPassword    = &Error{KindUnauthenticated, "Invalid password"}
	ErrNotBrowsable       = &Error{KindValidation, "This share can't be browsed"}
)

// Validation returns a KindValidation error carrying msg
func Validation(msg string) *Error {
	return &Error{KindValidation, capitalize(msg)}
}

// KindOf returns the kind of err, or KindInternal if err isn't a service error
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindInternal
}

func capitalize(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 {
		return s
	}

	return string(unicode.ToUpper(r)) + s[n:]
}
