package model

// Participant is one attendee location: a display label and the IANA zone
// the label resolved to.
type Participant struct {
	Label string `yaml:"label" json:"label" validate:"required"`
	Zone  string `yaml:"zone" json:"zone" validate:"required"`
}

// Candidate is one proposed meeting slot, always read in the base zone.
// The fields keep the user's text (yyyy-MM-dd, HH:mm); parsing happens in
// the engine so malformed values surface as typed errors.
type Candidate struct {
	Date  string `json:"date" validate:"required,civildate"`
	Start string `json:"start" validate:"required,hhmm"`
	End   string `json:"end" validate:"required,hhmm"`
}

// Row is one rendered line of the participant table.
type Row struct {
	Label  string `json:"label"`
	Zone   string `json:"zone"`
	Local  string `json:"local"`  // "2006-01-02 15:04" in Zone
	Offset string `json:"offset"` // "UTC+9", "UTC+5:30"
}
