package tz

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

const (
	// DateLayout is the textual form of a CivilDate.
	DateLayout = "2006-01-02"
	// ClockLayout is the textual form of a ClockTime.
	ClockLayout = "15:04"
)

var (
	timeShapeRe = regexp.MustCompile(`^\d{2}:\d{2}$`)
	dateShapeRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// CivilDate is a calendar date without a zone.
type CivilDate struct {
	Year  int
	Month time.Month
	Day   int
}

// String formats d as yyyy-MM-dd.
func (d CivilDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// ClockTime is a time of day with minute precision.
type ClockTime struct {
	Hour   int
	Minute int
}

// String formats c as HH:mm.
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// ParseDate parses a yyyy-MM-dd string. The date must exist in the
// Gregorian calendar; 2026-02-30 is rejected rather than normalized.
func ParseDate(s string) (CivilDate, error) {
	if !dateShapeRe.MatchString(s) {
		return CivilDate{}, malformed("date", s, nil)
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return CivilDate{}, malformed("date", s, err)
	}
	y, m, d := t.Date()
	return CivilDate{Year: y, Month: m, Day: d}, nil
}

// ParseClock parses an HH:mm string. Unlike IsValidTimeShape it also bounds
// the fields, so "99:99" fails here with ErrMalformedInput.
func ParseClock(s string) (ClockTime, error) {
	if !IsValidTimeShape(s) {
		return ClockTime{}, malformed("time", s, nil)
	}
	h, _ := strconv.Atoi(s[:2])
	m, _ := strconv.Atoi(s[3:])
	if h > 23 || m > 59 {
		return ClockTime{}, malformed("time", s, fmt.Errorf("out of range"))
	}
	return ClockTime{Hour: h, Minute: m}, nil
}

// IsValidTimeShape reports whether s looks like HH:mm. It is a structural
// check only: "99:99" passes.
func IsValidTimeShape(s string) bool {
	return timeShapeRe.MatchString(s)
}

// CompareTimeOfDay compares two HH:mm strings by hour, then minute. The
// result is negative when a is earlier, zero when equal, positive when later.
// Inputs that are not time-shaped compare as plain strings.
func CompareTimeOfDay(a, b string) int {
	if !IsValidTimeShape(a) || !IsValidTimeShape(b) {
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
		return 0
	}
	ah, _ := strconv.Atoi(a[:2])
	am, _ := strconv.Atoi(a[3:])
	bh, _ := strconv.Atoi(b[:2])
	bm, _ := strconv.Atoi(b[3:])
	if ah != bh {
		return ah - bh
	}
	return am - bm
}

// ValidateWindow checks a candidate slot before conversion: the date and both
// times must parse, and end must be strictly after start.
func ValidateWindow(date, start, end string) error {
	if _, err := ParseDate(date); err != nil {
		return err
	}
	if _, err := ParseClock(start); err != nil {
		return err
	}
	if _, err := ParseClock(end); err != nil {
		return err
	}
	if CompareTimeOfDay(end, start) <= 0 {
		return &WindowError{Start: start, End: end}
	}
	return nil
}
