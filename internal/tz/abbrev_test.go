package tz

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func abbreviateAt(t *testing.T, a *Abbreviator, date, clock, zone string) string {
	t.Helper()
	instant, err := Resolve(mustDate(t, date), mustClock(t, clock), zone)
	require.NoError(t, err)
	label, err := a.Abbreviate(instant, zone)
	require.NoError(t, err)
	return label
}

func TestAbbreviate_Curated(t *testing.T) {
	a := NewAbbreviator(DefaultTable(), nil)
	cases := []struct {
		date, zone, want string
	}{
		{"2026-07-01", "America/New_York", "EDT"},
		{"2026-01-15", "America/New_York", "EST"},
		{"2026-07-01", "Europe/London", "BST"},
		{"2026-01-15", "Europe/London", "GMT"},
		{"2026-07-01", "Europe/Berlin", "CEST"},
		{"2026-07-01", "America/Los_Angeles", "PDT"},
		{"2026-01-15", "America/Chicago", "CST"},
		{"2026-01-15", "Asia/Shanghai", "CST"},
		{"2026-01-15", "Australia/Sydney", "AEDT"},
		{"2026-07-01", "Australia/Sydney", "AEST"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, abbreviateAt(t, a, c.date, "12:00", c.zone), "%s on %s", c.zone, c.date)
	}
}

func TestAbbreviate_NoDaylightEntryIsConstant(t *testing.T) {
	a := NewAbbreviator(DefaultTable(), nil)
	for _, zone := range []string{"Asia/Tokyo", "Asia/Seoul", "Asia/Singapore", "Asia/Shanghai"} {
		want := DefaultTable()[zone].Standard
		for year := 1990; year <= 2040; year += 5 {
			for month := time.January; month <= time.December; month++ {
				instant := time.Date(year, month, 15, 12, 0, 0, 0, time.UTC)
				got, err := a.Abbreviate(instant, zone)
				require.NoError(t, err)
				assert.Equal(t, want, got, "%s at %s", zone, instant)
			}
		}
	}
}

func TestAbbreviate_JanuaryHeuristicInvertsSouthernHemisphere(t *testing.T) {
	a := NewAbbreviator(DefaultTable(), DetectByJanuary)

	// Northern Hemisphere agrees with the database.
	assert.Equal(t, "EDT", abbreviateAt(t, a, "2026-07-01", "12:00", "America/New_York"))
	assert.Equal(t, "EST", abbreviateAt(t, a, "2026-01-15", "12:00", "America/New_York"))

	// Sydney observes daylight time in January, so the heuristic flips.
	assert.Equal(t, "AEST", abbreviateAt(t, a, "2026-01-15", "12:00", "Australia/Sydney"))
	assert.Equal(t, "AEDT", abbreviateAt(t, a, "2026-07-01", "12:00", "Australia/Sydney"))
}

func TestAbbreviate_Fallbacks(t *testing.T) {
	a := NewAbbreviator(DefaultTable(), nil)

	// Not curated: the database abbreviation is used.
	assert.Equal(t, "IST", abbreviateAt(t, a, "2026-01-15", "12:00", "Asia/Kolkata"))
	assert.Equal(t, "+04", abbreviateAt(t, a, "2026-01-15", "12:00", "Asia/Dubai"))

	// A chain without the database step ends on the zone identifier.
	bare := NewAbbreviatorChain(Curated{Table: Table{}})
	assert.Equal(t, "Asia/Dubai", abbreviateAt(t, bare, "2026-01-15", "12:00", "Asia/Dubai"))
}

func TestAbbreviate_UnknownZone(t *testing.T) {
	a := NewAbbreviator(DefaultTable(), nil)
	_, err := a.Abbreviate(time.Now(), "Nowhere/Special")
	assert.ErrorIs(t, err, ErrUnknownZone)
}

func TestTable_Merge(t *testing.T) {
	base := DefaultTable()
	merged := base.Merge(Table{
		"Asia/Kolkata": {Standard: "IST"},
		"Asia/Tokyo":   {Standard: "JT"},
	})
	assert.Equal(t, "IST", merged["Asia/Kolkata"].Standard)
	assert.Equal(t, "JT", merged["Asia/Tokyo"].Standard)
	assert.Equal(t, "JST", base["Asia/Tokyo"].Standard, "receiver is not modified")
}
