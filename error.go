package j1939

import (
	"errors"
	"fmt"
)

type unrecoverableError struct {
	error
}

func (e unrecoverableError) Error() string {
	if e.error == nil {
		return "unrecoverable error"
	}
	return e.error.Error()
}

func (e unrecoverableError) Unwrap() error {
	return e.error
}

// Unrecoverable wraps an error that must abort the running step, e.g. a broken adapter
func Unrecoverable(err error) error {
	return unrecoverableError{err}
}

// IsRecoverable checks if error is an instance of `unrecoverableError`
func IsRecoverable(err error) bool {
	var u unrecoverableError
	return !errors.As(err, &u)
}

var (
	ErrNilTransport     = errors.New("transport is nil")
	ErrTransportClosed  = errors.New("transport closed")
	ErrUnexpectedPacket = errors.New("unexpected packet type")
	ErrAborted          = errors.New("step aborted")

	// errNoResponse is only used to drive DS retries, callers see NoResponse
	errNoResponse = errors.New("no response")
)

// DecodeError is returned when a payload cannot be decoded into a message
type DecodeError struct {
	PGN    PGN
	Source Address
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s from %s: %s", e.PGN, e.Source, e.Reason)
}

// TypeError is returned when a decoded message is not of the kind the caller asked for
type TypeError struct {
	PGN    PGN
	Source Address
	Got    string
	Want   string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("%s from %s decoded as %s, want %s", e.PGN, e.Source, e.Got, e.Want)
}

func (e *TypeError) Unwrap() error {
	return ErrUnexpectedPacket
}
