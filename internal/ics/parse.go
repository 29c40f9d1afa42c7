package ics

import (
	"bytes"
	"sort"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/pkg/errors"

	appLog "mtgplan/internal/log"
	"mtgplan/internal/model"
	"mtgplan/internal/tz"
)

// ParseCandidates reads the VEVENTs in an ICS payload and re-expresses each
// one as a candidate in baseZone, sorted by start.
//
//   - DTSTART/DTEND zones are handled by the library (TZID or UTC).
//   - All-day events, events that do not start and end on the same
//     base-zone date, and events whose wall reading in the base zone names
//     a different instant (the second pass through a fall-back hour) cannot
//     be expressed as a candidate and are skipped.
func ParseCandidates(body []byte, baseZone string) ([]model.Candidate, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}
	loc, err := tz.LoadZone(baseZone)
	if err != nil {
		return nil, err
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "parse ICS")
	}

	type slot struct {
		start time.Time
		c     model.Candidate
	}
	slots := make([]slot, 0)

	for _, ve := range cal.Events() {
		uid := ""
		if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil {
			uid = p.Value
		}
		if isAllDay(ve) {
			appLog.Info("ics event skipped", "uid", uid, "reason", "all-day")
			continue
		}

		start, err := ve.GetStartAt()
		if err != nil {
			appLog.Error("ics event skipped", err, "uid", uid)
			continue
		}
		end, err := ve.GetEndAt()
		if err != nil {
			appLog.Error("ics event skipped", err, "uid", uid)
			continue
		}

		s, e := start.In(loc), end.In(loc)
		if !e.After(s) || s.Format(tz.DateLayout) != e.Format(tz.DateLayout) {
			appLog.Info("ics event skipped", "uid", uid, "reason", "spans dates",
				"start", s.Format(time.RFC3339), "end", e.Format(time.RFC3339))
			continue
		}

		if !readsBack(s, loc) || !readsBack(e, loc) {
			appLog.Info("ics event skipped", "uid", uid, "reason", "repeated local time",
				"start", s.Format(time.RFC3339), "end", e.Format(time.RFC3339))
			continue
		}

		slots = append(slots, slot{start: s, c: model.Candidate{
			Date:  s.Format(tz.DateLayout),
			Start: s.Format(tz.ClockLayout),
			End:   e.Format(tz.ClockLayout),
		}})
	}

	sort.SliceStable(slots, func(i, j int) bool { return slots[i].start.Before(slots[j].start) })

	out := make([]model.Candidate, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.c)
	}
	appLog.Info("ics parse completed", "events", len(cal.Events()), "candidates", len(out))
	return out, nil
}

// isAllDay reports whether DTSTART is a DATE value (VALUE=DATE or no time part).
func isAllDay(ve *ical.VEvent) bool {
	p := ve.GetProperty(ical.ComponentPropertyDtStart)
	if p == nil {
		return false
	}
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

// readsBack reports whether the wall reading of t in loc resolves to t again.
func readsBack(t time.Time, loc *time.Location) bool {
	p := tz.ProjectIn(t, loc)
	return tz.ResolveIn(p.Date, p.Clock, loc).Equal(t.Truncate(time.Minute))
}
