// Package plan checks a whole meeting request and renders every candidate,
// withholding all output when any part of the request is invalid.
package plan

import (
	"errors"
	"fmt"
	"strings"

	"mtgplan/internal/format"
	appLog "mtgplan/internal/log"
	"mtgplan/internal/model"
	"mtgplan/internal/tz"
)

// Request is everything the shell collected for one rendering.
type Request struct {
	Base         model.Participant
	Candidates   []model.Candidate
	Participants []model.Participant
	Use24h       bool
}

// ItemError ties a validation failure to the 1-based position of the
// candidate or participant it concerns.
type ItemError struct {
	Kind  string // "candidate" or "participant"
	Index int
	Err   error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("%s %d: %v", e.Kind, e.Index, e.Err)
}

func (e *ItemError) Unwrap() error { return e.Err }

// Validate reports every problem in req at once, joined with errors.Join.
func Validate(req Request) error {
	var errs []error

	if _, err := tz.LoadZone(req.Base.Zone); err != nil {
		errs = append(errs, fmt.Errorf("base: %w", err))
	}
	if len(req.Candidates) == 0 {
		errs = append(errs, errors.New("no candidates"))
	}
	for i, c := range req.Candidates {
		if err := tz.ValidateWindow(c.Date, c.Start, c.End); err != nil {
			errs = append(errs, &ItemError{Kind: "candidate", Index: i + 1, Err: err})
		}
	}
	for i, p := range req.Participants {
		if _, err := tz.LoadZone(p.Zone); err != nil {
			errs = append(errs, &ItemError{Kind: "participant", Index: i + 1, Err: err})
		}
	}

	return errors.Join(errs...)
}

// Lines renders one line per candidate, joined with newlines.
func Lines(f *format.Formatter, req Request) (string, error) {
	return render(req, "lines", func(c model.Candidate) (string, error) {
		return f.Line(req.Base.Zone, req.Base.Label, c, req.Participants, req.Use24h)
	}, "\n")
}

// Tables renders one titled table per candidate, separated by blank lines.
func Tables(f *format.Formatter, req Request) (string, error) {
	return render(req, "tables", func(c model.Candidate) (string, error) {
		table, err := f.Table(req.Base.Zone, c, req.Participants)
		if err != nil {
			return "", err
		}
		title := fmt.Sprintf("%s %s-%s %s", c.Date, c.Start, c.End, req.Base.Label)
		return title + "\n" + table, nil
	}, "\n\n")
}

func render(req Request, kind string, one func(model.Candidate) (string, error), sep string) (string, error) {
	if err := Validate(req); err != nil {
		appLog.Debug("plan rejected", "kind", kind, "err", err.Error())
		return "", err
	}

	out := make([]string, 0, len(req.Candidates))
	for i, c := range req.Candidates {
		s, err := one(c)
		if err != nil {
			return "", &ItemError{Kind: "candidate", Index: i + 1, Err: err}
		}
		out = append(out, s)
	}

	appLog.Debug("plan rendered",
		"kind", kind,
		"base", req.Base.Zone,
		"candidates", len(req.Candidates),
		"participants", len(req.Participants),
	)
	return strings.Join(out, sep), nil
}
