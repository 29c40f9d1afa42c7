// Package tz is the civil-time engine: it turns (date, time, zone) triples
// into instants and back, labels zones with their abbreviations, and
// measures calendar-day shifts between zones.
//
// Every function in this package is a pure function of its arguments.
package tz

import (
	"math"
	"time"

	// Embed the IANA database so results do not depend on the host's zoneinfo.
	_ "time/tzdata"
)

// Projection is the civil view of an instant in one zone.
type Projection struct {
	Date  CivilDate
	Clock ClockTime
	// OffsetMinutes is the signed UTC offset in effect, east positive.
	OffsetMinutes int
}

// Window is a meeting span. End is strictly after Start.
type Window struct {
	Start time.Time
	End   time.Time
}

// LoadZone looks up an IANA zone identifier. The empty string and "Local"
// are rejected: time.LoadLocation would map them to UTC and the host zone,
// and the engine never substitutes a zone for the one it was given.
func LoadZone(id string) (*time.Location, error) {
	if id == "" || id == "Local" {
		return nil, &ZoneError{Zone: id}
	}
	loc, err := time.LoadLocation(id)
	if err != nil {
		return nil, &ZoneError{Zone: id, err: err}
	}
	return loc, nil
}

// Resolve interprets date and clock as wall-clock time in zone and returns
// the instant it denotes. See ResolveIn for DST disambiguation.
func Resolve(date CivilDate, clock ClockTime, zone string) (time.Time, error) {
	loc, err := LoadZone(zone)
	if err != nil {
		return time.Time{}, err
	}
	return ResolveIn(date, clock, loc), nil
}

// ResolveIn interprets date and clock as wall-clock time in loc.
//
// Readings that occur twice (a DST fold) resolve to the earlier instant.
// Readings that do not exist (a DST gap) are read with the offset in effect
// before the transition, which lands them after the gap: 02:30 on a
// spring-forward night in New York becomes 03:30 EDT.
func ResolveIn(date CivilDate, clock ClockTime, loc *time.Location) time.Time {
	wall := time.Date(date.Year, date.Month, date.Day, clock.Hour, clock.Minute, 0, 0, time.UTC)

	var (
		best  time.Time
		found bool
	)
	for _, off := range nearbyOffsets(wall, loc) {
		t := wall.Add(-time.Duration(off) * time.Second).In(loc)
		if !sameWall(t, wall) {
			continue
		}
		if !found || t.Before(best) {
			best, found = t, true
		}
	}
	if found {
		return best
	}

	_, before := wall.Add(-24 * time.Hour).In(loc).Zone()
	return wall.Add(-time.Duration(before) * time.Second).In(loc)
}

// ResolveWindow checks a candidate slot (see ValidateWindow) and resolves it
// in zone. A window that collapses inside a DST gap is rejected too.
func ResolveWindow(date, start, end, zone string) (Window, error) {
	loc, err := LoadZone(zone)
	if err != nil {
		return Window{}, err
	}
	return ResolveWindowIn(date, start, end, loc)
}

// ResolveWindowIn is ResolveWindow with an already loaded location.
func ResolveWindowIn(date, start, end string, loc *time.Location) (Window, error) {
	if err := ValidateWindow(date, start, end); err != nil {
		return Window{}, err
	}
	d, _ := ParseDate(date)
	s, _ := ParseClock(start)
	e, _ := ParseClock(end)

	w := Window{Start: ResolveIn(d, s, loc), End: ResolveIn(d, e, loc)}
	if !w.End.After(w.Start) {
		return Window{}, &WindowError{Start: start, End: end}
	}
	return w, nil
}

// nearbyOffsets returns the offsets loc uses around the instant that has
// wall as its UTC reading. Real offsets stay within ±14h, so a day either
// side covers both sides of any single transition.
func nearbyOffsets(wall time.Time, loc *time.Location) []int {
	_, before := wall.Add(-24 * time.Hour).In(loc).Zone()
	_, at := wall.In(loc).Zone()
	_, after := wall.Add(24 * time.Hour).In(loc).Zone()
	return []int{before, at, after}
}

func sameWall(t, wall time.Time) bool {
	ty, tm, td := t.Date()
	wy, wm, wd := wall.Date()
	return ty == wy && tm == wm && td == wd && t.Hour() == wall.Hour() && t.Minute() == wall.Minute()
}

// Project returns the civil date, time and UTC offset zone assigns to instant.
func Project(instant time.Time, zone string) (Projection, error) {
	loc, err := LoadZone(zone)
	if err != nil {
		return Projection{}, err
	}
	return ProjectIn(instant, loc), nil
}

// ProjectIn is Project with an already loaded location. Offsets with a
// seconds component (pre-1900 local mean time) are truncated to minutes.
func ProjectIn(instant time.Time, loc *time.Location) Projection {
	t := instant.In(loc)
	y, m, d := t.Date()
	_, off := t.Zone()
	return Projection{
		Date:          CivilDate{Year: y, Month: m, Day: d},
		Clock:         ClockTime{Hour: t.Hour(), Minute: t.Minute()},
		OffsetMinutes: off / 60,
	}
}

// StartOfDay returns the first instant of t's calendar day in t's location.
// Zones whose midnight falls in a gap start the day at the first valid reading.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return ResolveIn(CivilDate{Year: y, Month: m, Day: d}, ClockTime{}, t.Location())
}

// ShiftDays returns the calendar-day difference other − base between two
// start-of-day instants, each read in its own location. The civil dates are
// moved onto UTC before subtracting, so DST and fractional offsets cannot
// leak into the count; math.Round (ties away from zero) absorbs any remainder.
func ShiftDays(baseMidnight, otherMidnight time.Time) int {
	by, bm, bd := baseMidnight.Date()
	oy, om, od := otherMidnight.Date()
	b := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	o := time.Date(oy, om, od, 0, 0, 0, 0, time.UTC)
	return int(math.Round(o.Sub(b).Hours() / 24))
}
