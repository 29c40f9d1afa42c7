package ics

import (
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"mtgplan/internal/format"
	appLog "mtgplan/internal/log"
	"mtgplan/internal/plan"
	"mtgplan/internal/tz"
)

const productID = "-//mtgplan//Meeting Planner//EN"

// InviteOptions controls the generated calendar.
type InviteOptions struct {
	// Summary is the event title; empty means "Meeting".
	Summary string
	// Organizer is an e-mail address; empty leaves ORGANIZER out.
	Organizer string
	// Now stamps DTSTAMP; nil means time.Now.
	Now func() time.Time
	// NewUID generates event UIDs; nil means random UUIDs.
	NewUID func() string
}

// BuildInvite renders every candidate of req as a VEVENT in a single
// METHOD:REQUEST calendar with CRLF line endings. Times are written in UTC
// and each DESCRIPTION
// carries the candidate's formatted line, so recipients whose client ignores
// the event still see their local times.
func BuildInvite(f *format.Formatter, req plan.Request, opts InviteOptions) (string, error) {
	if err := plan.Validate(req); err != nil {
		return "", err
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	newUID := func() string { return uuid.NewString() }
	if opts.NewUID != nil {
		newUID = opts.NewUID
	}
	summary := opts.Summary
	if summary == "" {
		summary = "Meeting"
	}

	cal := ical.NewCalendar()
	cal.SetProductId(productID)
	cal.SetMethod(ical.MethodRequest)

	stamp := now().UTC()
	for _, c := range req.Candidates {
		w, err := tz.ResolveWindow(c.Date, c.Start, c.End, req.Base.Zone)
		if err != nil {
			return "", err
		}
		line, err := f.Line(req.Base.Zone, req.Base.Label, c, req.Participants, req.Use24h)
		if err != nil {
			return "", err
		}

		ev := cal.AddEvent(newUID() + "@mtgplan")
		ev.SetDtStampTime(stamp)
		ev.SetStartAt(w.Start)
		ev.SetEndAt(w.End)
		ev.SetSummary(summary)
		ev.SetDescription(line)
		if opts.Organizer != "" {
			ev.SetOrganizer("mailto:" + opts.Organizer)
		}
	}

	appLog.Info("ics invite built", "base", req.Base.Zone, "events", len(req.Candidates))
	return cal.Serialize(ical.WithNewLineWindows), nil
}
