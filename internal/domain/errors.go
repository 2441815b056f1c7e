package domain

import "errors"

// ErrRejected is the root of every "interaction prevented" error. A
// rejected command leaves the state untouched; callers report it as
// information rather than a failure.
var ErrRejected = errors.New("rejected")

// IsRejected reports whether err (or anything it wraps) is a rejection.
func IsRejected(err error) bool {
	return errors.Is(err, ErrRejected)
}

type rejection struct {
	msg string
}

func (r *rejection) Error() string { return r.msg }

func (r *rejection) Unwrap() error { return ErrRejected }

// NewRejection creates a sentinel error that matches ErrRejected.
func NewRejection(msg string) error {
	return &rejection{msg: msg}
}
