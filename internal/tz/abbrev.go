package tz

import "time"

// AbbreviationEntry is a curated label pair for one zone. An empty Daylight
// means the zone is always labelled with Standard.
type AbbreviationEntry struct {
	Standard string `yaml:"standard" json:"standard"`
	Daylight string `yaml:"daylight,omitempty" json:"daylight,omitempty"`
}

// Table maps zone identifiers to curated labels. It is read-only once
// handed to an Abbreviator.
type Table map[string]AbbreviationEntry

// DefaultTable returns a fresh copy of the built-in curated labels.
func DefaultTable() Table {
	return Table{
		"Asia/Tokyo": {Standard: "JST"},

		"Europe/London": {Standard: "GMT", Daylight: "BST"},
		"Europe/Paris":  {Standard: "CET", Daylight: "CEST"},
		"Europe/Berlin": {Standard: "CET", Daylight: "CEST"},

		"America/New_York":    {Standard: "EST", Daylight: "EDT"},
		"America/Chicago":     {Standard: "CST", Daylight: "CDT"},
		"America/Los_Angeles": {Standard: "PST", Daylight: "PDT"},

		"Asia/Singapore":   {Standard: "SGT"},
		"Asia/Seoul":       {Standard: "KST"},
		"Asia/Shanghai":    {Standard: "CST"},
		"Australia/Sydney": {Standard: "AEST", Daylight: "AEDT"},
	}
}

// Merge returns a new table holding t's entries overridden by extra.
func (t Table) Merge(extra Table) Table {
	out := make(Table, len(t)+len(extra))
	for k, v := range t {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// DSTDetector reports whether daylight time is in effect at t, where t is
// already in the zone's location.
type DSTDetector func(t time.Time) bool

// DetectByDatabase asks the timezone database, which records a
// standard/daylight flag for every offset it knows.
func DetectByDatabase(t time.Time) bool {
	return t.IsDST()
}

// DetectByJanuary compares the offset at t with the offset at the same wall
// reading in January of the same year. It assumes January is winter, so it
// reports the opposite answer for Southern-Hemisphere zones.
func DetectByJanuary(t time.Time) bool {
	_, off := t.Zone()
	jan := time.Date(t.Year(), time.January, t.Day(), t.Hour(), t.Minute(), t.Second(), 0, t.Location())
	_, janOff := jan.Zone()
	return off != janOff
}

// Strategy is one step of the label fallback chain. It returns false when it
// has nothing to say about zone.
type Strategy interface {
	Abbreviate(t time.Time, zone string) (string, bool)
}

// StrategyFunc adapts a function to Strategy.
type StrategyFunc func(t time.Time, zone string) (string, bool)

// Abbreviate calls f.
func (f StrategyFunc) Abbreviate(t time.Time, zone string) (string, bool) { return f(t, zone) }

// Curated labels zones present in a Table.
type Curated struct {
	Table  Table
	Detect DSTDetector
}

// Abbreviate implements Strategy.
func (c Curated) Abbreviate(t time.Time, zone string) (string, bool) {
	entry, ok := c.Table[zone]
	if !ok || entry.Standard == "" {
		return "", false
	}
	if entry.Daylight == "" {
		return entry.Standard, true
	}
	detect := c.Detect
	if detect == nil {
		detect = DetectByDatabase
	}
	if detect(t) {
		return entry.Daylight, true
	}
	return entry.Standard, true
}

// DatabaseName uses the abbreviation stored in the timezone database, which
// for many zones is a numeric form such as "+04".
var DatabaseName = StrategyFunc(func(t time.Time, _ string) (string, bool) {
	name, _ := t.Zone()
	return name, name != ""
})

// ZoneID falls back to the identifier itself.
var ZoneID = StrategyFunc(func(t time.Time, zone string) (string, bool) {
	if zone != "" {
		return zone, true
	}
	return t.Location().String(), true
})

// Abbreviator resolves zone labels by walking an ordered list of strategies.
// It holds no mutable state and is safe for concurrent use.
type Abbreviator struct {
	chain []Strategy
}

// NewAbbreviator builds the standard chain: curated table, then the
// database name, then the zone identifier. A nil detect means DetectByDatabase.
func NewAbbreviator(table Table, detect DSTDetector) *Abbreviator {
	return NewAbbreviatorChain(Curated{Table: table, Detect: detect}, DatabaseName, ZoneID)
}

// NewAbbreviatorChain builds an Abbreviator from an explicit chain. ZoneID is
// always consulted last so the result is never empty.
func NewAbbreviatorChain(chain ...Strategy) *Abbreviator {
	c := make([]Strategy, 0, len(chain)+1)
	c = append(c, chain...)
	c = append(c, ZoneID)
	return &Abbreviator{chain: c}
}

// Abbreviate returns the short label in effect for zone at instant.
func (a *Abbreviator) Abbreviate(instant time.Time, zone string) (string, error) {
	loc, err := LoadZone(zone)
	if err != nil {
		return "", err
	}
	return a.AbbreviateIn(instant, loc, zone), nil
}

// AbbreviateIn is Abbreviate with an already loaded location.
func (a *Abbreviator) AbbreviateIn(instant time.Time, loc *time.Location, zone string) string {
	t := instant.In(loc)
	for _, s := range a.chain {
		if label, ok := s.Abbreviate(t, zone); ok && label != "" {
			return label
		}
	}
	return loc.String()
}
