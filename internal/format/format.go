// Package format renders resolved meeting slots as text for email: one line
// per candidate, or an aligned table per candidate.
package format

import (
	"fmt"
	"time"

	"mtgplan/internal/model"
	"mtgplan/internal/tz"
)

const (
	headLayout   = "Jan 2, 2006 (Mon)"
	layout24h    = "15:04"
	layout12h    = "3:04 PM"
	localLayout  = "2006-01-02 15:04"
	segmentSep   = " / "
	headSep      = ": "
	defaultRange = "–"
)

// Options tunes a Formatter. The zero value gives the default rendering.
type Options struct {
	// Table holds curated abbreviations; nil means tz.DefaultTable().
	Table tz.Table
	// Detect decides standard vs daylight for curated zones; nil means
	// tz.DetectByDatabase.
	Detect tz.DSTDetector
	// RangeSeparator joins start and end times; empty means an en dash.
	RangeSeparator string
	// ShowLabels prefixes every segment with its city label.
	ShowLabels bool
}

// Formatter turns candidates into text. It is immutable and safe for
// concurrent use.
type Formatter struct {
	abbr       *tz.Abbreviator
	rangeSep   string
	showLabels bool
}

// New returns a Formatter configured by opts.
func New(opts Options) *Formatter {
	table := opts.Table
	if table == nil {
		table = tz.DefaultTable()
	}
	sep := opts.RangeSeparator
	if sep == "" {
		sep = defaultRange
	}
	return &Formatter{
		abbr:       tz.NewAbbreviator(table, opts.Detect),
		rangeSep:   sep,
		showLabels: opts.ShowLabels,
	}
}

var defaultFormatter = New(Options{})

// FormatLine renders c with the default Formatter.
func FormatLine(baseZone, baseLabel string, c model.Candidate, participants []model.Participant, use24h bool) (string, error) {
	return defaultFormatter.Line(baseZone, baseLabel, c, participants, use24h)
}

// FormatTable renders c as a table with the default Formatter.
func FormatTable(baseZone string, c model.Candidate, participants []model.Participant) (string, error) {
	return defaultFormatter.Table(baseZone, c, participants)
}

// zoned is a participant whose zone has been loaded.
type zoned struct {
	model.Participant
	loc *time.Location
}

// resolved is a candidate after parsing and resolution in the base zone.
type resolved struct {
	base   *time.Location
	window tz.Window
}

// resolve checks c and loads every zone before any text is produced, so a
// failing candidate never yields partial output.
func resolve(baseZone string, c model.Candidate, participants []model.Participant) (resolved, []zoned, error) {
	base, err := tz.LoadZone(baseZone)
	if err != nil {
		return resolved{}, nil, err
	}
	w, err := tz.ResolveWindowIn(c.Date, c.Start, c.End, base)
	if err != nil {
		return resolved{}, nil, err
	}

	zs := make([]zoned, 0, len(participants))
	for _, p := range participants {
		loc, err := tz.LoadZone(p.Zone)
		if err != nil {
			return resolved{}, nil, fmt.Errorf("participant %q: %w", p.Label, err)
		}
		zs = append(zs, zoned{Participant: p, loc: loc})
	}
	return resolved{base: base, window: w}, zs, nil
}
