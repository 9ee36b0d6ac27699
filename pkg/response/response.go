package response

import (
	"errors"
)

type Error struct {
	Code int
	Tag  string
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Is(target error) bool {
	var t *Error
	ok := errors.As(target, &t)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Tag == t.Tag && e.Err.Error() == t.Err.Error()
}

func NewError(code int, err string) error {
	return &Error{Code: code, Err: errors.New(err)}
}

// NewTaggedError attaches a machine-readable tag that handlers send back as "code".
func NewTaggedError(code int, tag string, err string) error {
	return &Error{Code: code, Tag: tag, Err: errors.New(err)}
}
