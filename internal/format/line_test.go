package format

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mtgplan/internal/model"
	"mtgplan/internal/tz"
)

var (
	tokyo    = model.Participant{Label: "Tokyo", Zone: "Asia/Tokyo"}
	newYork  = model.Participant{Label: "New York", Zone: "America/New_York"}
	london   = model.Participant{Label: "London", Zone: "Europe/London"}
	sydney   = model.Participant{Label: "Sydney", Zone: "Australia/Sydney"}
	bengal   = model.Participant{Label: "Bangalore", Zone: "Asia/Kolkata"}
	kathmand = model.Participant{Label: "Kathmandu", Zone: "Asia/Kathmandu"}
)

func TestFormatLine(t *testing.T) {
	cases := []struct {
		name         string
		base         model.Participant
		candidate    model.Candidate
		participants []model.Participant
		use24h       bool
		want         string
	}{
		{
			name:         "tokyo evening is the same new york morning",
			base:         tokyo,
			candidate:    model.Candidate{Date: "2026-01-19", Start: "20:00", End: "21:00"},
			participants: []model.Participant{newYork},
			want:         "Jan 19, 2026 (Mon): 8:00 PM–9:00 PM JST / 6:00 AM–7:00 AM EST",
		},
		{
			name:         "tokyo early morning rolls back a day",
			base:         tokyo,
			candidate:    model.Candidate{Date: "2026-01-19", Start: "08:00", End: "09:00"},
			participants: []model.Participant{newYork},
			want:         "Jan 19, 2026 (Mon): 8:00 AM–9:00 AM JST / 6:00 PM–7:00 PM EST (-1d)",
		},
		{
			name:         "new york evening rolls forward",
			base:         newYork,
			candidate:    model.Candidate{Date: "2026-01-19", Start: "20:00", End: "21:00"},
			participants: []model.Participant{tokyo, london},
			use24h:       true,
			want:         "Jan 19, 2026 (Mon): 20:00–21:00 EST / 10:00–11:00 JST (+1d) / 01:00–02:00 GMT (+1d)",
		},
		{
			name:         "summer labels",
			base:         newYork,
			candidate:    model.Candidate{Date: "2026-07-01", Start: "09:00", End: "10:30"},
			participants: []model.Participant{london, sydney},
			use24h:       true,
			want:         "Jul 1, 2026 (Wed): 09:00–10:30 EDT / 14:00–15:30 BST / 23:00–00:30 AEST",
		},
		{
			name:         "fractional offsets",
			base:         newYork,
			candidate:    model.Candidate{Date: "2026-01-19", Start: "20:00", End: "21:00"},
			participants: []model.Participant{bengal, kathmand},
			use24h:       true,
			want:         "Jan 19, 2026 (Mon): 20:00–21:00 EST / 06:30–07:30 IST (+1d) / 06:45–07:45 +0545 (+1d)",
		},
		{
			name:      "no participants",
			base:      london,
			candidate: model.Candidate{Date: "2026-03-29", Start: "12:00", End: "13:00"},
			want:      "Mar 29, 2026 (Sun): 12:00 PM–1:00 PM BST",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := FormatLine(c.base.Zone, c.base.Label, c.candidate, c.participants, c.use24h)
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestFormatLine_ClockStyle(t *testing.T) {
	participants := []model.Participant{tokyo, london, sydney, bengal}
	ampm := regexp.MustCompile(`\b(AM|PM)\b`)
	// an hour of 13-23 followed by ":mm"
	bareHour := regexp.MustCompile(`(^|[^0-9])(1[3-9]|2[0-3]):[0-5][0-9]`)

	for _, start := range []string{"00:00", "06:15", "12:00", "13:45", "20:00", "22:30"} {
		c := model.Candidate{Date: "2026-05-04", Start: start, End: "23:59"}

		twelve, err := FormatLine("America/Chicago", "Chicago", c, participants, false)
		require.NoError(t, err)
		assert.False(t, bareHour.MatchString(twelve), "12h output has a 24h hour: %s", twelve)

		full, err := FormatLine("America/Chicago", "Chicago", c, participants, true)
		require.NoError(t, err)
		assert.False(t, ampm.MatchString(full), "24h output has AM/PM: %s", full)
	}
}

func TestFormatter_Options(t *testing.T) {
	f := New(Options{
		RangeSeparator: " to ",
		ShowLabels:     true,
		Detect:         tz.DetectByJanuary,
	})
	got, err := f.Line("Asia/Tokyo", "Tokyo", model.Candidate{Date: "2026-01-19", Start: "20:00", End: "21:00"},
		[]model.Participant{sydney}, true)
	require.NoError(t, err)
	// The January heuristic labels Sydney's summer as standard time.
	assert.Equal(t, "Jan 19, 2026 (Mon): Tokyo 20:00 to 21:00 JST / Sydney 22:00 to 23:00 AEST", got)

	f = New(Options{Table: tz.DefaultTable().Merge(tz.Table{"Asia/Kolkata": {Standard: "IST"}, "Asia/Kathmandu": {Standard: "NPT"}})})
	got, err = f.Line("Asia/Tokyo", "Tokyo", model.Candidate{Date: "2026-01-19", Start: "20:00", End: "21:00"},
		[]model.Participant{kathmand}, true)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(got, "16:45–17:45 NPT"), got)
}

func TestFormatLine_Errors(t *testing.T) {
	ok := model.Candidate{Date: "2026-01-19", Start: "20:00", End: "21:00"}
	cases := []struct {
		name         string
		base         string
		candidate    model.Candidate
		participants []model.Participant
		want         error
	}{
		{"unknown base", "Asia/Tokio", ok, nil, tz.ErrUnknownZone},
		{"empty base", "", ok, nil, tz.ErrUnknownZone},
		{"unknown participant", "Asia/Tokyo", ok, []model.Participant{newYork, {Label: "X", Zone: "X/Y"}}, tz.ErrUnknownZone},
		{"bad date", "Asia/Tokyo", model.Candidate{Date: "2026/01/19", Start: "20:00", End: "21:00"}, nil, tz.ErrMalformedInput},
		{"bad time", "Asia/Tokyo", model.Candidate{Date: "2026-01-19", Start: "8pm", End: "21:00"}, nil, tz.ErrMalformedInput},
		{"out of range time", "Asia/Tokyo", model.Candidate{Date: "2026-01-19", Start: "99:99", End: "99:99"}, nil, tz.ErrMalformedInput},
		{"reversed window", "Asia/Tokyo", model.Candidate{Date: "2026-01-19", Start: "21:00", End: "20:00"}, nil, tz.ErrInvalidWindow},
		{"empty window", "Asia/Tokyo", model.Candidate{Date: "2026-01-19", Start: "20:00", End: "20:00"}, nil, tz.ErrInvalidWindow},
		{"window across gap", "America/New_York", model.Candidate{Date: "2026-03-08", Start: "01:59", End: "02:00"}, nil, nil},
		// 02:30 does not exist and reads as 03:30 EDT, the same instant as the end.
		{"window collapsed by gap", "America/New_York", model.Candidate{Date: "2026-03-08", Start: "02:30", End: "03:30"}, nil, tz.ErrInvalidWindow},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := FormatLine(c.base, "Base", c.candidate, c.participants, false)
			if c.want == nil {
				require.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, c.want)
			assert.Empty(t, got, "no partial output on failure")
		})
	}
}
