package apierror

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrIsBeingUsed   = errors.New("is being used")
	ErrValidation    = errors.New("invalid input")
)

// NotFound returns an error matching ErrNotFound with a formatted message.
func NotFound(format string, args ...any) error {
	return &kindError{kind: ErrNotFound, msg: fmt.Sprintf(format, args...)}
}

// AlreadyExists returns an error matching ErrAlreadyExists.
func AlreadyExists(format string, args ...any) error {
	return &kindError{kind: ErrAlreadyExists, msg: fmt.Sprintf(format, args...)}
}

// BeingUsed returns an error matching ErrIsBeingUsed.
func BeingUsed(format string, args ...any) error {
	return &kindError{kind: ErrIsBeingUsed, msg: fmt.Sprintf(format, args...)}
}

// Invalid returns an error matching ErrValidation.
func Invalid(format string, args ...any) error {
	return &kindError{kind: ErrValidation, msg: fmt.Sprintf(format, args...)}
}

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string        { return e.msg }
func (e *kindError) Is(target error) bool { return target == e.kind }

// MissingIDsError lists the component ids of a composition that did not
// resolve to an active row. It matches ErrNotFound.
type MissingIDsError struct {
	Entity string
	IDs    []string
}

func (e *MissingIDsError) Error() string {
	return fmt.Sprintf("%s not found, idList=[%s]", e.Entity, strings.Join(e.IDs, ","))
}

func (e *MissingIDsError) Is(target error) bool { return target == ErrNotFound }

func IsNotFound(err error) bool      { return errors.Is(err, ErrNotFound) }
func IsAlreadyExists(err error) bool { return errors.Is(err, ErrAlreadyExists) }
func IsBeingUsed(err error) bool     { return errors.Is(err, ErrIsBeingUsed) }
func IsValidation(err error) bool    { return errors.Is(err, ErrValidation) }
