package format

import (
	"fmt"
	"strings"
	"time"

	"mtgplan/internal/model"
	"mtgplan/internal/tz"
)

// Line renders one candidate as
//
//	Jan 19, 2026 (Mon): 8:00 PM–9:00 PM JST / 6:00 AM–7:00 AM EST
//
// The head date and the first segment are in baseZone; one segment follows
// per participant, in order, with a " (+1d)"/" (-1d)" suffix when the start
// falls on a different local date than in baseZone.
func (f *Formatter) Line(baseZone, baseLabel string, c model.Candidate, participants []model.Participant, use24h bool) (string, error) {
	r, zs, err := resolve(baseZone, c, participants)
	if err != nil {
		return "", err
	}

	start, end := r.window.Start, r.window.End
	head := start.Format(headLayout)

	segments := make([]string, 0, len(zs)+1)
	segments = append(segments, f.segment(baseLabel, start, end, f.abbr.AbbreviateIn(start, r.base, baseZone), 0, use24h))

	baseDay := tz.StartOfDay(start)
	for _, p := range zs {
		s, e := start.In(p.loc), end.In(p.loc)
		shift := tz.ShiftDays(baseDay, tz.StartOfDay(s))
		segments = append(segments, f.segment(p.Label, s, e, f.abbr.AbbreviateIn(s, p.loc, p.Zone), shift, use24h))
	}

	return head + headSep + strings.Join(segments, segmentSep), nil
}

func (f *Formatter) segment(label string, s, e time.Time, abbr string, shift int, use24h bool) string {
	var b strings.Builder
	if f.showLabels && label != "" {
		b.WriteString(label)
		b.WriteByte(' ')
	}
	b.WriteString(clock(s, use24h))
	b.WriteString(f.rangeSep)
	b.WriteString(clock(e, use24h))
	b.WriteByte(' ')
	b.WriteString(abbr)
	if shift != 0 {
		fmt.Fprintf(&b, " (%+dd)", shift)
	}
	return b.String()
}

func clock(t time.Time, use24h bool) string {
	if use24h {
		return t.Format(layout24h)
	}
	return t.Format(layout12h)
}
