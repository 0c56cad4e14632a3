package qr

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by Generator.Generate matches exactly one of them
// through errors.Is.
var (
	ErrInvalidSize      = errors.New("invalid size")
	ErrInvalidFormat    = errors.New("invalid format")
	ErrNetwork          = errors.New("network error")
	ErrFilesystem       = errors.New("filesystem error")
	ErrGenerationFailed = errors.New("failed to create QR code")
)

// Error pairs an error kind with its cause.
type Error struct {
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	case e.Msg != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Kind.Error()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: cause}
}

// classify makes sure err carries one of the known kinds, wrapping anything else
// as ErrGenerationFailed.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var qerr *Error
	if errors.As(err, &qerr) {
		return err
	}
	return newError(ErrGenerationFailed, "", err)
}
