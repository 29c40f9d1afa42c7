package tz

import (
	"errors"
	"fmt"
)

// Sentinel errors for the three failure classes of the engine. Concrete
// errors wrap one of these so callers can branch with errors.Is.
var (
	ErrMalformedInput = errors.New("malformed input")
	ErrUnknownZone    = errors.New("unknown zone")
	ErrInvalidWindow  = errors.New("invalid window")
)

// InputError reports a date or time string that does not have the required shape.
type InputError struct {
	Field string
	Value string
	err   error
}

func malformed(field, value string, err error) error {
	return &InputError{Field: field, Value: value, err: err}
}

// Error returns a string representation of the input error, implementing the error interface.
func (e *InputError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s %q: %v: %v", e.Field, e.Value, ErrMalformedInput, e.err)
	}
	return fmt.Sprintf("%s %q: %v", e.Field, e.Value, ErrMalformedInput)
}

func (e *InputError) Unwrap() []error {
	if e.err == nil {
		return []error{ErrMalformedInput}
	}
	return []error{ErrMalformedInput, e.err}
}

// ZoneError reports a zone identifier the timezone database does not know.
type ZoneError struct {
	Zone string
	err  error
}

// Error returns a string representation of the zone error, implementing the error interface.
func (e *ZoneError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("zone %q: %v: %v", e.Zone, ErrUnknownZone, e.err)
	}
	return fmt.Sprintf("zone %q: %v", e.Zone, ErrUnknownZone)
}

func (e *ZoneError) Unwrap() []error {
	if e.err == nil {
		return []error{ErrUnknownZone}
	}
	return []error{ErrUnknownZone, e.err}
}

// WindowError reports a meeting span whose end is not strictly after its start.
type WindowError struct {
	Start string
	End   string
}

// Error returns a string representation of the window error, implementing the error interface.
func (e *WindowError) Error() string {
	return fmt.Sprintf("end %s is not after start %s: %v", e.End, e.Start, ErrInvalidWindow)
}

func (e *WindowError) Unwrap() error { return ErrInvalidWindow }
