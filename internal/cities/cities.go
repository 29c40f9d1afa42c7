// Package cities maps city names people type to IANA zone identifiers.
// It sits outside the conversion engine, which only ever sees zone ids.
package cities

import (
	"sort"
	"strings"

	"mtgplan/internal/model"
	"mtgplan/internal/tz"
)

// City is a selectable city.
type City struct {
	Label   string   `json:"label"`
	Zone    string   `json:"zone"`
	Aliases []string `json:"aliases,omitempty"`
}

var known = []City{
	{Label: "Tokyo", Zone: "Asia/Tokyo"},
	{Label: "New York", Zone: "America/New_York", Aliases: []string{"NYC", "New York City"}},
	{Label: "London", Zone: "Europe/London"},
	{Label: "Paris", Zone: "Europe/Paris"},
	{Label: "Berlin", Zone: "Europe/Berlin"},
	{Label: "Singapore", Zone: "Asia/Singapore"},
	{Label: "Sydney", Zone: "Australia/Sydney"},
	{Label: "Seoul", Zone: "Asia/Seoul"},
	{Label: "Los Angeles", Zone: "America/Los_Angeles", Aliases: []string{"LA"}},
	{Label: "San Francisco", Zone: "America/Los_Angeles", Aliases: []string{"SF"}},
	{Label: "Chicago", Zone: "America/Chicago"},
	{Label: "Toronto", Zone: "America/Toronto"},
	{Label: "Vancouver", Zone: "America/Vancouver"},
	{Label: "Bangalore", Zone: "Asia/Kolkata", Aliases: []string{"Bengaluru"}},
	{Label: "Delhi", Zone: "Asia/Kolkata", Aliases: []string{"New Delhi"}},
	{Label: "Dubai", Zone: "Asia/Dubai"},
	{Label: "Hong Kong", Zone: "Asia/Hong_Kong"},
	{Label: "Taipei", Zone: "Asia/Taipei"},
	{Label: "Shanghai", Zone: "Asia/Shanghai"},
}

var index = buildIndex()

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func buildIndex() map[string]City {
	idx := make(map[string]City, len(known)*2)
	for _, c := range known {
		idx[normalize(c.Label)] = c
		for _, a := range c.Aliases {
			idx[normalize(a)] = c
		}
	}
	return idx
}

// All returns the known cities sorted by label.
func All() []City {
	out := make([]City, len(known))
	copy(out, known)
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// Lookup finds a city by label or alias, ignoring case and extra spaces.
func Lookup(name string) (City, bool) {
	c, ok := index[normalize(name)]
	return c, ok
}

// Resolve turns user input into a participant. Accepted forms:
//
//	Tokyo                  known city or alias
//	Asia/Singapore, UTC    IANA identifier, labelled with itself
//	HQ=Europe/Berlin       explicit label and zone
//
// The zone is checked against the timezone database.
func Resolve(input string) (model.Participant, error) {
	input = strings.TrimSpace(input)
	if label, zone, ok := strings.Cut(input, "="); ok {
		p := model.Participant{Label: strings.TrimSpace(label), Zone: strings.TrimSpace(zone)}
		if _, err := tz.LoadZone(p.Zone); err != nil {
			return model.Participant{}, err
		}
		if p.Label == "" {
			p.Label = p.Zone
		}
		return p, nil
	}
	if c, ok := Lookup(input); ok {
		return model.Participant{Label: c.Label, Zone: c.Zone}, nil
	}
	if strings.Contains(input, "/") || input == "UTC" {
		if _, err := tz.LoadZone(input); err != nil {
			return model.Participant{}, err
		}
		return model.Participant{Label: input, Zone: input}, nil
	}
	return model.Participant{}, &tz.ZoneError{Zone: input}
}
